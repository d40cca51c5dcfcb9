package buffer

import (
	"iter"

	"github.com/dshills/bufferlab/internal/engine/tracking"
)

// Kind identifies a buffer engine.
type Kind uint8

const (
	KindArray  Kind = iota // contiguous array
	KindLinked             // doubly-linked chain of fixed-capacity nodes
	KindGap                // gap buffer
)

// Kinds lists every engine kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindArray, KindLinked, KindGap}
}

// String returns the short name of the kind.
func (k Kind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindLinked:
		return "linked"
	case KindGap:
		return "gap"
	default:
		return "unknown"
	}
}

// Buffer is the editing contract implemented by every engine.
// Implementations are not safe for concurrent use.
type Buffer interface {
	// Insert inserts ch before the cursor and advances the cursor.
	Insert(ch rune)

	// DeleteLeft removes the cell before the cursor. No-op at 0.
	DeleteLeft()

	// DeleteRight removes the cell at the cursor. No-op at the end.
	DeleteRight()

	// MoveLeft moves the cursor one cell left. No-op at 0.
	MoveLeft()

	// MoveRight moves the cursor one cell right. No-op at the end.
	MoveRight()

	// Clear empties the buffer and puts the cursor at 0.
	Clear()

	// Text returns the full content.
	Text() string

	// Cursor returns the 0-based cell offset of the cursor.
	Cursor() int

	// Len returns the number of cells.
	Len() int

	// DisplayTokens returns the storage slots as view tokens.
	DisplayTokens() iter.Seq[Token]

	// MemoryEstimate returns the engine's cost model in abstract units.
	MemoryEstimate() int

	// OperationCount returns the number of contract operations since the
	// last ResetOperationTracking.
	OperationCount() int

	// LastOperation describes the most recent contract operation.
	LastOperation() string

	// ResetOperationTracking clears the telemetry.
	ResetOperationTracking()

	// RecentOperations returns up to n journal entries, oldest first.
	RecentOperations(n int) []tracking.Operation

	// OperationSummary returns totals over the recorded operations.
	OperationSummary() tracking.Summary

	// Kind reports which engine backs the buffer.
	Kind() Kind
}

// GapInfo describes the gap of a gap buffer.
type GapInfo struct {
	Size            int
	Used            int
	ExpansionFactor float64
}

// Free returns the number of unused gap slots.
func (g GapInfo) Free() int {
	return g.Size - g.Used
}

// GapInspector is implemented by engines that keep a gap.
type GapInspector interface {
	GapInfo() GapInfo

	// SetExpansionFactor sets the multiplicative growth factor.
	// Values below 1 are clamped to 1.
	SetExpansionFactor(f float64)
}

// NodeInspector is implemented by engines built from linked nodes.
type NodeInspector interface {
	NodeCount() int
	NodeLens() []int
	NodeCapacity() int
}

// Validator is implemented by engines that can check their own structural
// invariants. Validate returns nil when the structure is consistent.
type Validator interface {
	Validate() error
}

// InsertString inserts every rune of s in order.
func InsertString(b Buffer, s string) {
	for _, r := range s {
		b.Insert(r)
	}
}
