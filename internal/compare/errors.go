package compare

import (
	"errors"
	"fmt"

	"github.com/dshills/bufferlab/internal/engine/buffer"
)

// ErrNoEngines is returned when a runner has no engines to compare.
var ErrNoEngines = errors.New("no engines to compare")

// ParseError reports malformed operation text.
type ParseError struct {
	Pos     int // byte offset of the offending word
	Word    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ops: %s at offset %d: %s", e.Message, e.Pos, e.Word)
}

// Divergence reports the first step at which an engine disagreed with the
// reference engine or broke its own invariants.
type Divergence struct {
	Step       int // 1-based; 0 for a final-state comparison
	Op         Op
	Kind       buffer.Kind
	Reference  buffer.Kind
	Text       string
	WantText   string
	Cursor     int
	WantCursor int
	Invariant  error
}

func (d *Divergence) Error() string {
	where := "final state"
	if d.Step > 0 {
		where = fmt.Sprintf("step %d (%s)", d.Step, d.Op)
	}
	if d.Invariant != nil {
		return fmt.Sprintf("%s: %s engine invariant: %v", where, d.Kind, d.Invariant)
	}
	return fmt.Sprintf("%s: %s engine has %q@%d, %s engine has %q@%d",
		where, d.Kind, d.Text, d.Cursor, d.Reference, d.WantText, d.WantCursor)
}

// Unwrap returns the invariant error, if any.
func (d *Divergence) Unwrap() error {
	return d.Invariant
}
