package browse

import (
	"fmt"
	"path/filepath"
)

// Sequence is one side's folder listing and current index.
type Sequence struct {
	dir    string
	all    []string
	files  []string
	index  int
	filter *Filter
}

func (s *Sequence) Dir() string { return s.dir }
func (s *Sequence) Len() int    { return len(s.files) }
func (s *Sequence) Index() int  { return s.index }

// Files is the filtered listing.
func (s *Sequence) Files() []string { return s.files }

// Title is the folder base name, or fallback when no folder is open.
func (s *Sequence) Title(fallback string) string {
	if s.dir == "" {
		return fallback
	}
	return filepath.Base(s.dir)
}

// Current is the path at the index, or "" when there is none.
func (s *Sequence) Current() string {
	if s.index < 0 || s.index >= len(s.files) {
		return ""
	}
	return s.files[s.index]
}

// Open replaces the listing and rewinds to the first file.
func (s *Sequence) Open(dir string, files []string) {
	s.dir = dir
	s.all = files
	s.files = s.filter.Apply(files)
	s.index = 0
}

// Refresh replaces the listing of the open folder, staying on the current
// file when it survives.
func (s *Sequence) Refresh(files []string) {
	s.all = files
	s.reapply()
}

// SetFilter re-filters the listing, staying on the current file when it
// still matches.
func (s *Sequence) SetFilter(f *Filter) {
	s.filter = f
	s.reapply()
}

func (s *Sequence) reapply() {
	current := s.Current()
	s.files = s.filter.Apply(s.all)
	s.index = 0
	for i, p := range s.files {
		if p == current {
			s.index = i
			break
		}
	}
}

// Next advances by one unless already on the last file.
func (s *Sequence) Next() bool {
	if s.index >= len(s.files)-1 {
		return false
	}
	s.index++
	return true
}

// Prev steps back by one unless already on the first file.
func (s *Sequence) Prev() bool {
	if s.index <= 0 {
		return false
	}
	s.index--
	return true
}

// Step moves s forward (delta > 0) or backward and reports whether it moved.
func (s *Sequence) Step(delta int) bool {
	if delta > 0 {
		return s.Next()
	}
	if delta < 0 {
		return s.Prev()
	}
	return false
}

// StepBoth moves both sequences; it reports true if either moved.
func StepBoth(a, b *Sequence, delta int) bool {
	movedA := a.Step(delta)
	movedB := b.Step(delta)
	return movedA || movedB
}

// Status renders "L: i/n | R: j/m", or "0 / 0" when both sides are empty.
func Status(left, right *Sequence) string {
	if left.Len() == 0 && right.Len() == 0 {
		return "0 / 0"
	}
	return fmt.Sprintf("L: %s | R: %s", position(left), position(right))
}

func position(s *Sequence) string {
	if s.Len() == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", s.index+1, s.Len())
}
