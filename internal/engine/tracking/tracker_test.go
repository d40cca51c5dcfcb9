package tracking

import (
	"fmt"
	"testing"
)

func TestOpKind_String(t *testing.T) {
	tests := []struct {
		kind     OpKind
		expected string
	}{
		{OpInsert, "insert"},
		{OpDeleteLeft, "delete-left"},
		{OpDeleteRight, "delete-right"},
		{OpMoveLeft, "move-left"},
		{OpMoveRight, "move-right"},
		{OpClear, "clear"},
		{OpKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("OpKind(%d).String() = %q, expected %q", tt.kind, got, tt.expected)
		}
	}
}

func TestOpKind_IsEdit(t *testing.T) {
	if !OpInsert.IsEdit() || !OpClear.IsEdit() || !OpDeleteRight.IsEdit() {
		t.Error("insert, clear and delete-right should be edits")
	}
	if OpMoveLeft.IsEdit() || OpMoveRight.IsEdit() {
		t.Error("moves should not be edits")
	}
}

func TestTracker_RecordAndLast(t *testing.T) {
	tr := NewTracker()

	if tr.Count() != 0 {
		t.Errorf("expected count 0, got %d", tr.Count())
	}
	if tr.Last() != "" {
		t.Errorf("expected empty last operation, got %q", tr.Last())
	}

	tr.Record(Operation{Kind: OpInsert, Description: "Inserted 'a'", Chars: 1})
	tr.Record(Operation{Kind: OpMoveLeft, Description: "Moved cursor left"})

	if tr.Count() != 2 {
		t.Errorf("expected count 2, got %d", tr.Count())
	}
	if tr.Last() != "Moved cursor left" {
		t.Errorf("expected last 'Moved cursor left', got %q", tr.Last())
	}
}

func TestTracker_RecentWrapsRing(t *testing.T) {
	tr := NewTracker(WithHistoryLimit(3))

	for i := 0; i < 5; i++ {
		tr.Record(Operation{Kind: OpInsert, Description: fmt.Sprintf("op%d", i), Chars: 1})
	}

	if tr.Count() != 5 {
		t.Errorf("expected count 5, got %d", tr.Count())
	}

	recent := tr.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("expected 3 journal entries, got %d", len(recent))
	}
	for i, want := range []string{"op2", "op3", "op4"} {
		if recent[i].Description != want {
			t.Errorf("recent[%d] = %q, expected %q", i, recent[i].Description, want)
		}
	}

	last2 := tr.Recent(2)
	if len(last2) != 2 || last2[0].Description != "op3" || last2[1].Description != "op4" {
		t.Errorf("Recent(2) = %v", last2)
	}
}

func TestTracker_Summary(t *testing.T) {
	tr := NewTracker()

	tr.Record(Operation{Kind: OpInsert, Description: "a", Chars: 1, Shifts: 2})
	tr.Record(Operation{Kind: OpInsert, Description: "b", Chars: 1, Event: EventGapGrow})
	tr.Record(Operation{Kind: OpDeleteLeft, Description: "c", Chars: 1, Shifts: 1})
	tr.Record(Operation{Kind: OpDeleteRight, Description: "d", NoOp: true})
	tr.Record(Operation{Kind: OpMoveLeft, Description: "e"})
	tr.Record(Operation{Kind: OpMoveRight, Description: "f", NoOp: true})
	tr.Record(Operation{Kind: OpClear, Description: "g", Chars: 1})

	s := tr.Summary()
	if s.Operations != 7 {
		t.Errorf("Operations = %d, expected 7", s.Operations)
	}
	if s.Edits != 4 {
		t.Errorf("Edits = %d, expected 4", s.Edits)
	}
	if s.Inserted != 2 {
		t.Errorf("Inserted = %d, expected 2", s.Inserted)
	}
	if s.Deleted != 2 {
		t.Errorf("Deleted = %d, expected 2", s.Deleted)
	}
	if s.Moves != 1 {
		t.Errorf("Moves = %d, expected 1", s.Moves)
	}
	if s.Clears != 1 {
		t.Errorf("Clears = %d, expected 1", s.Clears)
	}
	if s.Shifts != 3 {
		t.Errorf("Shifts = %d, expected 3", s.Shifts)
	}
	if s.NoOps != 2 {
		t.Errorf("NoOps = %d, expected 2", s.NoOps)
	}
	if s.Events[EventGapGrow] != 1 {
		t.Errorf("gap-grow events = %d, expected 1", s.Events[EventGapGrow])
	}

	// The returned map is a copy.
	s.Events[EventGapGrow] = 10
	if tr.Summary().Events[EventGapGrow] != 1 {
		t.Error("Summary should return a copy of the event totals")
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(WithHistoryLimit(2))
	tr.Record(Operation{Kind: OpInsert, Description: "x", Chars: 1})
	tr.Record(Operation{Kind: OpInsert, Description: "y", Chars: 1})
	tr.Record(Operation{Kind: OpInsert, Description: "z", Chars: 1})

	tr.Reset()

	if tr.Count() != 0 || tr.Last() != "" {
		t.Errorf("reset tracker: count=%d last=%q", tr.Count(), tr.Last())
	}
	if len(tr.Recent(0)) != 0 {
		t.Error("reset tracker should have an empty journal")
	}
	if tr.Summary().Operations != 0 {
		t.Error("reset tracker should have zero totals")
	}

	tr.Record(Operation{Kind: OpClear, Description: "Cleared all text"})
	if tr.Count() != 1 || tr.Recent(0)[0].Description != "Cleared all text" {
		t.Error("tracker should record normally after reset")
	}
}

func TestOperation_String(t *testing.T) {
	op := Operation{Kind: OpInsert, Description: "Inserted 'k'", Event: EventNodeSplit}
	if got := op.String(); got != "insert: Inserted 'k' [node-split]" {
		t.Errorf("String() = %q", got)
	}
}
