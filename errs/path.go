package errs

import (
	"errors"
	"fmt"
	"strings"
)

// PathError annotates an error with the location where it happened.
//
// The path is accumulated from the inside out: each composed layer (sequence
// element, tuple slot, named field, reference) prepends its own segment while
// the error propagates to the caller.
type PathError struct {
	Path []string
	Err  error
}

// Error renders the path followed by the cause, e.g. "left[2].0: not enough data".
func (e *PathError) Error() string {
	if len(e.Path) == 0 {
		return e.Err.Error()
	}

	return e.PathString() + ": " + e.Err.Error()
}

// PathString renders only the path. Index ("[i]") and slot (".N") segments
// attach directly to their predecessor, named segments are dot-separated.
func (e *PathError) PathString() string {
	var b strings.Builder
	for i, seg := range e.Path {
		if i > 0 && !strings.HasPrefix(seg, "[") && !strings.HasPrefix(seg, ".") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}

	return b.String()
}

// Unwrap returns the annotated cause.
func (e *PathError) Unwrap() error {
	return e.Err
}

// Context prepends segment to the path carried by err.
//
// A nil err stays nil, so Context can wrap any call result directly:
//
//	return errs.Context(inner.PackAs(w, v), "left")
func Context(err error, segment string) error {
	if err == nil {
		return nil
	}

	if pe, ok := err.(*PathError); ok {
		path := make([]string, 0, len(pe.Path)+1)
		path = append(path, segment)
		path = append(path, pe.Path...)

		return &PathError{Path: path, Err: pe.Err}
	}

	return &PathError{Path: []string{segment}, Err: err}
}

// Index annotates err with a sequence position.
func Index(err error, i int) error {
	if err == nil {
		return nil
	}

	return Context(err, fmt.Sprintf("[%d]", i))
}

// Slot annotates err with a tuple position.
func Slot(err error, i int) error {
	if err == nil {
		return nil
	}

	return Context(err, fmt.Sprintf(".%d", i))
}

// Path returns the rendered path of the outermost PathError in err's chain,
// or "" when err carries none.
func Path(err error) string {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.PathString()
	}

	return ""
}
