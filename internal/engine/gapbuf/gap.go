package gapbuf

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/engine/tracking"
)

// Default gap configuration.
const (
	DefaultGapSize         = 10
	DefaultExpansionFactor = 2.0
)

// maxGapSize bounds growth so huge factors cannot overflow int.
const maxGapSize = math.MaxInt32

// Option configures a Buffer.
type Option func(*Buffer)

// WithGapSize sets the initial gap size. Values below 1 keep the default.
func WithGapSize(size int) Option {
	return func(b *Buffer) {
		if size >= 1 {
			b.gapSize = size
		}
	}
}

// WithExpansionFactor sets the growth factor, clamped to at least 1.
func WithExpansionFactor(f float64) Option {
	return func(b *Buffer) {
		b.factor = clampFactor(f)
	}
}

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

// Buffer is the gap-buffer engine.
type Buffer struct {
	before []rune
	after  []rune // reversed: the last element sits next to the gap

	gapSize int
	gapUsed int
	factor  float64

	width        int
	historyLimit int
	ops          *tracking.Tracker
}

var (
	_ buffer.Buffer       = (*Buffer)(nil)
	_ buffer.GapInspector = (*Buffer)(nil)
	_ buffer.Validator    = (*Buffer)(nil)
)

// New creates a buffer whose text lies entirely before a fresh gap.
func New(text string, opts ...Option) *Buffer {
	b := &Buffer{
		before:  []rune(text),
		gapSize: DefaultGapSize,
		factor:  DefaultExpansionFactor,
		width:   buffer.DefaultDisplayWidth,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ops = tracking.NewTracker(tracking.WithHistoryLimit(b.historyLimit))
	return b
}

func clampFactor(f float64) float64 {
	if math.IsNaN(f) || f < 1 {
		return 1
	}
	return f
}

// grow multiplies the gap size by the expansion factor and frees the gap.
func (b *Buffer) grow() {
	size := math.Ceil(float64(b.gapSize) * b.factor)
	if size > maxGapSize {
		size = maxGapSize
	}
	b.gapSize = int(size)
	b.gapUsed = 0
}

// Insert appends ch before the gap, growing the gap first if exhausted.
func (b *Buffer) Insert(ch rune) {
	op := tracking.Operation{Kind: tracking.OpInsert, Chars: 1}
	if b.gapUsed >= b.gapSize {
		old := b.gapSize
		b.grow()
		op.Shifts = len(b.after)
		op.Event = tracking.EventGapGrow
		op.Description = fmt.Sprintf("Inserted %q (gap expanded from %d to %d, %d shifts)", ch, old, b.gapSize, op.Shifts)
	} else {
		op.Description = fmt.Sprintf("Inserted %q (no shifting needed)", ch)
	}
	b.before = append(b.before, ch)
	b.gapUsed++
	b.ops.Record(op)
}

// DeleteLeft removes the last cell before the gap, returning its slot to
// the gap.
func (b *Buffer) DeleteLeft() {
	if len(b.before) == 0 {
		b.noop(tracking.OpDeleteLeft, "Cannot delete at beginning")
		return
	}
	b.before = b.before[:len(b.before)-1]
	b.gapUsed = max(0, b.gapUsed-1)
	b.ops.Record(tracking.Operation{Kind: tracking.OpDeleteLeft, Description: "Deleted character", Chars: 1})
}

// DeleteRight removes the first cell after the gap.
func (b *Buffer) DeleteRight() {
	if len(b.after) == 0 {
		b.noop(tracking.OpDeleteRight, "Cannot delete at end")
		return
	}
	b.after = b.after[:len(b.after)-1]
	b.ops.Record(tracking.Operation{Kind: tracking.OpDeleteRight, Description: "Deleted character to the right", Chars: 1})
}

// MoveLeft carries the last cell before the gap to the other side.
func (b *Buffer) MoveLeft() {
	if len(b.before) == 0 {
		b.noop(tracking.OpMoveLeft, "Cursor already at start")
		return
	}
	last := len(b.before) - 1
	b.after = append(b.after, b.before[last])
	b.before = b.before[:last]
	b.ops.Record(tracking.Operation{Kind: tracking.OpMoveLeft, Description: "Moved cursor left"})
}

// MoveRight carries the first cell after the gap to the other side.
func (b *Buffer) MoveRight() {
	if len(b.after) == 0 {
		b.noop(tracking.OpMoveRight, "Cursor already at end")
		return
	}
	last := len(b.after) - 1
	b.before = append(b.before, b.after[last])
	b.after = b.after[:last]
	b.ops.Record(tracking.Operation{Kind: tracking.OpMoveRight, Description: "Moved cursor right"})
}

// Clear empties both sides and frees the gap. The gap keeps its size.
func (b *Buffer) Clear() {
	n := b.Len()
	b.before = b.before[:0]
	b.after = b.after[:0]
	b.gapUsed = 0
	b.ops.Record(tracking.Operation{Kind: tracking.OpClear, Description: "Cleared all text", Chars: n})
}

func (b *Buffer) noop(kind tracking.OpKind, desc string) {
	b.ops.Record(tracking.Operation{Kind: kind, Description: desc, NoOp: true})
}

// Text joins the cells before and after the gap.
func (b *Buffer) Text() string {
	out := make([]rune, 0, b.Len())
	out = append(out, b.before...)
	for i := len(b.after) - 1; i >= 0; i-- {
		out = append(out, b.after[i])
	}
	return string(out)
}

// Cursor returns the number of cells before the gap.
func (b *Buffer) Cursor() int { return len(b.before) }

// Len returns the number of cells.
func (b *Buffer) Len() int { return len(b.before) + len(b.after) }

// MemoryEstimate returns cells plus the full gap size.
func (b *Buffer) MemoryEstimate() int { return b.Len() + b.gapSize }

// Kind reports buffer.KindGap.
func (b *Buffer) Kind() buffer.Kind { return buffer.KindGap }

// GapInfo returns the gap size, occupancy and expansion factor.
func (b *Buffer) GapInfo() buffer.GapInfo {
	return buffer.GapInfo{Size: b.gapSize, Used: b.gapUsed, ExpansionFactor: b.factor}
}

// SetExpansionFactor sets the growth factor, clamped to at least 1.
// It is configuration, not a contract operation, and is not counted.
func (b *Buffer) SetExpansionFactor(f float64) {
	b.factor = clampFactor(f)
}

// DisplayTokens yields the cells before the gap, one empty token per free
// gap slot, then the cells after the gap. The gap marks the cursor, so no
// cursor token is emitted.
func (b *Buffer) DisplayTokens() iter.Seq[buffer.Token] {
	slots := func(yield func(buffer.Token) bool) {
		for _, c := range b.before {
			if !yield(buffer.Char(c)) {
				return
			}
		}
		for range b.gapSize - b.gapUsed {
			if !yield(buffer.Empty()) {
				return
			}
		}
		for _, c := range slices.Backward(b.after) {
			if !yield(buffer.Char(c)) {
				return
			}
		}
	}
	return buffer.Pad(slots, b.width)
}

// Validate checks gap occupancy and the expansion factor.
func (b *Buffer) Validate() error {
	if b.gapUsed < 0 || b.gapUsed > b.gapSize {
		return fmt.Errorf("%w: used %d of %d", buffer.ErrGapOverflow, b.gapUsed, b.gapSize)
	}
	if b.factor < 1 {
		return fmt.Errorf("expansion factor %v below 1", b.factor)
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
