package arraybuf

import (
	"fmt"
	"iter"
	"slices"

	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/engine/tracking"
)

// Option configures a Buffer.
type Option func(*Buffer)

// WithDisplayWidth sets the minimum number of display tokens.
func WithDisplayWidth(width int) Option {
	return func(b *Buffer) {
		if width >= 0 {
			b.width = width
		}
	}
}

// WithHistoryLimit sets the size of the operation journal.
func WithHistoryLimit(limit int) Option {
	return func(b *Buffer) {
		b.historyLimit = limit
	}
}

// Buffer is the contiguous-array engine.
type Buffer struct {
	cells  []rune
	cursor int

	width        int
	historyLimit int
	ops          *tracking.Tracker
}

var (
	_ buffer.Buffer    = (*Buffer)(nil)
	_ buffer.Validator = (*Buffer)(nil)
)

// New creates a buffer holding text with the cursor at its end.
func New(text string, opts ...Option) *Buffer {
	b := &Buffer{
		cells: []rune(text),
		width: buffer.DefaultDisplayWidth,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.cursor = len(b.cells)
	b.ops = tracking.NewTracker(tracking.WithHistoryLimit(b.historyLimit))
	return b
}

// Insert shifts the cells at and after the cursor right by one.
func (b *Buffer) Insert(ch rune) {
	shifts := len(b.cells) - b.cursor
	b.cells = slices.Insert(b.cells, b.cursor, ch)
	b.cursor++
	b.ops.Record(tracking.Operation{
		Kind:        tracking.OpInsert,
		Description: fmt.Sprintf("Inserted %q (with %d shifts)", ch, shifts),
		Chars:       1,
		Shifts:      shifts,
	})
}

// DeleteLeft removes the cell before the cursor, shifting the tail left.
func (b *Buffer) DeleteLeft() {
	if b.cursor == 0 {
		b.noop(tracking.OpDeleteLeft, "Cannot delete at beginning")
		return
	}
	shifts := len(b.cells) - b.cursor
	b.cells = slices.Delete(b.cells, b.cursor-1, b.cursor)
	b.cursor--
	b.ops.Record(tracking.Operation{
		Kind:        tracking.OpDeleteLeft,
		Description: fmt.Sprintf("Deleted character (with %d shifts)", shifts),
		Chars:       1,
		Shifts:      shifts,
	})
}

// DeleteRight removes the cell at the cursor, shifting the tail left.
func (b *Buffer) DeleteRight() {
	if b.cursor == len(b.cells) {
		b.noop(tracking.OpDeleteRight, "Cannot delete at end")
		return
	}
	shifts := len(b.cells) - b.cursor - 1
	b.cells = slices.Delete(b.cells, b.cursor, b.cursor+1)
	b.ops.Record(tracking.Operation{
		Kind:        tracking.OpDeleteRight,
		Description: fmt.Sprintf("Deleted character to the right (with %d shifts)", shifts),
		Chars:       1,
		Shifts:      shifts,
	})
}

// MoveLeft decrements the cursor index.
func (b *Buffer) MoveLeft() {
	if b.cursor == 0 {
		b.noop(tracking.OpMoveLeft, "Cursor already at start")
		return
	}
	b.cursor--
	b.ops.Record(tracking.Operation{Kind: tracking.OpMoveLeft, Description: "Moved cursor left"})
}

// MoveRight increments the cursor index.
func (b *Buffer) MoveRight() {
	if b.cursor == len(b.cells) {
		b.noop(tracking.OpMoveRight, "Cursor already at end")
		return
	}
	b.cursor++
	b.ops.Record(tracking.Operation{Kind: tracking.OpMoveRight, Description: "Moved cursor right"})
}

// Clear drops every cell.
func (b *Buffer) Clear() {
	n := len(b.cells)
	b.cells = b.cells[:0]
	b.cursor = 0
	b.ops.Record(tracking.Operation{Kind: tracking.OpClear, Description: "Cleared all text", Chars: n})
}

func (b *Buffer) noop(kind tracking.OpKind, desc string) {
	b.ops.Record(tracking.Operation{Kind: kind, Description: desc, NoOp: true})
}

// Text returns the content.
func (b *Buffer) Text() string { return string(b.cells) }

// Cursor returns the cursor index.
func (b *Buffer) Cursor() int { return b.cursor }

// Len returns the number of cells.
func (b *Buffer) Len() int { return len(b.cells) }

// MemoryEstimate returns the number of cells; the array carries no overhead.
func (b *Buffer) MemoryEstimate() int { return len(b.cells) }

// Kind reports buffer.KindArray.
func (b *Buffer) Kind() buffer.Kind { return buffer.KindArray }

// DisplayTokens yields one token per cell, marking the cell at the cursor.
func (b *Buffer) DisplayTokens() iter.Seq[buffer.Token] {
	cells := func(yield func(buffer.Token) bool) {
		for i, c := range b.cells {
			if !yield(buffer.Cell(c, i == b.cursor)) {
				return
			}
		}
	}
	return buffer.Pad(cells, b.width)
}

// Validate checks that the cursor lies within the cells.
func (b *Buffer) Validate() error {
	if b.cursor < 0 || b.cursor > len(b.cells) {
		return fmt.Errorf("%w: cursor %d, length %d", buffer.ErrCursorRange, b.cursor, len(b.cells))
	}
	return nil
}

// OperationCount returns the number of recorded operations.
func (b *Buffer) OperationCount() int { return b.ops.Count() }

// LastOperation describes the most recent operation.
func (b *Buffer) LastOperation() string { return b.ops.Last() }

// ResetOperationTracking clears the telemetry.
func (b *Buffer) ResetOperationTracking() { b.ops.Reset() }

// RecentOperations returns up to n journal entries.
func (b *Buffer) RecentOperations(n int) []tracking.Operation { return b.ops.Recent(n) }

// OperationSummary returns telemetry totals.
func (b *Buffer) OperationSummary() tracking.Summary { return b.ops.Summary() }
