package browse

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Filter keeps files whose base name matches a regular expression anywhere.
// A nil Filter keeps everything.
type Filter struct {
	pattern string
	re      *regexp.Regexp
}

// NewFilter compiles pattern. An empty pattern yields a nil Filter.
func NewFilter(pattern string) (*Filter, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}
	return &Filter{pattern: pattern, re: re}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.pattern
}

func (f *Filter) Match(path string) bool {
	if f == nil {
		return true
	}
	return f.re.MatchString(filepath.Base(path))
}

// Apply returns the matching paths in their original order.
func (f *Filter) Apply(paths []string) []string {
	if f == nil {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
