package tracking

import "fmt"

// OpKind identifies a buffer contract operation.
type OpKind uint8

const (
	// OpInsert inserts one cell before the cursor.
	OpInsert OpKind = iota

	// OpDeleteLeft removes the cell before the cursor.
	OpDeleteLeft

	// OpDeleteRight removes the cell at the cursor.
	OpDeleteRight

	// OpMoveLeft moves the cursor one cell left.
	OpMoveLeft

	// OpMoveRight moves the cursor one cell right.
	OpMoveRight

	// OpClear empties the buffer.
	OpClear
)

// String returns the operation name used in journals and scripts.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDeleteLeft:
		return "delete-left"
	case OpDeleteRight:
		return "delete-right"
	case OpMoveLeft:
		return "move-left"
	case OpMoveRight:
		return "move-right"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// IsEdit reports whether the operation can change the text.
func (k OpKind) IsEdit() bool {
	return k == OpInsert || k == OpDeleteLeft || k == OpDeleteRight || k == OpClear
}

// Event tags a structural side effect of an operation.
type Event string

// Structural events reported by the engines.
const (
	EventNone       Event = ""
	EventGapGrow    Event = "gap-grow"
	EventNodeAlloc  Event = "node-alloc"
	EventNodeSplit  Event = "node-split"
	EventNodeRemove Event = "node-remove"
)

// Operation is one journal entry.
type Operation struct {
	// Kind is the contract operation that was issued.
	Kind OpKind

	// Description is the human-readable summary exposed as the last operation.
	Description string

	// Chars is the number of cells inserted or removed.
	Chars int

	// Shifts is the number of cells the engine had to move to apply the edit.
	Shifts int

	// NoOp is set when the operation hit a boundary and changed nothing.
	NoOp bool

	// Event is the structural side effect, if any.
	Event Event
}

// String returns a compact representation of the operation.
func (o Operation) String() string {
	s := fmt.Sprintf("%s: %s", o.Kind, o.Description)
	if o.Event != EventNone {
		s += " [" + string(o.Event) + "]"
	}
	return s
}

// Summary aggregates recorded operations.
type Summary struct {
	Operations int
	Edits      int
	Inserted   int
	Deleted    int
	Moves      int
	Clears     int
	Shifts     int
	NoOps      int
	Events     map[Event]int
}

// add folds one operation into the summary.
func (s *Summary) add(op Operation) {
	s.Operations++
	switch op.Kind {
	case OpInsert:
		s.Inserted += op.Chars
	case OpDeleteLeft, OpDeleteRight:
		s.Deleted += op.Chars
	case OpMoveLeft, OpMoveRight:
		if !op.NoOp {
			s.Moves++
		}
	case OpClear:
		s.Clears++
		s.Deleted += op.Chars
	}
	s.Shifts += op.Shifts
	if op.NoOp {
		s.NoOps++
	} else if op.Kind.IsEdit() {
		s.Edits++
	}
	if op.Event != EventNone {
		if s.Events == nil {
			s.Events = make(map[Event]int)
		}
		s.Events[op.Event]++
	}
}
