package decode

import (
	"fmt"
	"path/filepath"
)

// ErrorKind classifies decode failures.
type ErrorKind int

const (
	// UnreadableFile means the codec failed or produced no image.
	UnreadableFile ErrorKind = iota
	// UnsupportedShape means the decoded array has a dimensionality,
	// channel count or sample type outside the supported set.
	UnsupportedShape
)

func (k ErrorKind) String() string {
	switch k {
	case UnreadableFile:
		return "unreadable file"
	case UnsupportedShape:
		return "unsupported shape"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by Decoder for every failed decode.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	name := filepath.Base(e.Path)
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", name, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", name, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &decode.Error{Kind: decode.UnsupportedShape}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Path == "" || t.Path == e.Path)
}
