package config

import (
	"os"
	"path/filepath"
)

const RecentKey = "recent_folders"

// Preferences is the subset of fyne.Preferences the recent list needs.
type Preferences interface {
	StringList(key string) []string
	SetStringList(key string, value []string)
}

// Recent keeps the most recently opened folders, newest first, without
// duplicates.
type Recent struct {
	prefs Preferences
	limit int
}

func NewRecent(prefs Preferences, limit int) *Recent {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Recent{prefs: prefs, limit: limit}
}

func (r *Recent) List() []string {
	list := r.prefs.StringList(RecentKey)
	if len(list) > r.limit {
		list = list[:r.limit]
	}
	return list
}

// Add moves dir to the front and returns the updated list.
func (r *Recent) Add(dir string) []string {
	dir = filepath.Clean(dir)
	list := []string{dir}
	for _, d := range r.prefs.StringList(RecentKey) {
		if d != dir {
			list = append(list, d)
		}
	}
	if len(list) > r.limit {
		list = list[:r.limit]
	}
	r.prefs.SetStringList(RecentKey, list)
	return list
}

// Available lists the remembered folders that still exist.
func (r *Recent) Available() []string {
	var out []string
	for _, d := range r.List() {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			out = append(out, d)
		}
	}
	return out
}
