package tracking

// DefaultHistoryLimit is the default number of operations kept in the journal.
const DefaultHistoryLimit = 1000

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithHistoryLimit sets the number of operations kept in the journal.
// Non-positive values keep the default.
func WithHistoryLimit(limit int) TrackerOption {
	return func(t *Tracker) {
		if limit > 0 {
			t.limit = limit
		}
	}
}

// Tracker counts operations and journals the most recent ones.
type Tracker struct {
	count int
	last  string

	// Recent operations in a ring buffer
	ring  []Operation
	head  int // Index of oldest entry
	size  int // Number of entries
	limit int

	totals Summary
}

// NewTracker creates a tracker with an empty journal.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{limit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record counts op and appends it to the journal.
func (t *Tracker) Record(op Operation) {
	t.count++
	t.last = op.Description
	t.totals.add(op)

	if t.ring == nil {
		// Allocated lazily so idle buffers stay small.
		t.ring = make([]Operation, t.limit)
	}
	idx := (t.head + t.size) % t.limit
	if t.size < t.limit {
		t.size++
	} else {
		t.head = (t.head + 1) % t.limit
	}
	t.ring[idx] = op
}

// Count returns the number of operations recorded since the last reset.
func (t *Tracker) Count() int {
	return t.count
}

// Last returns the description of the most recent operation.
func (t *Tracker) Last() string {
	return t.last
}

// Recent returns up to n of the most recent operations in chronological order.
// A non-positive n returns the whole journal.
func (t *Tracker) Recent(n int) []Operation {
	if n <= 0 || n > t.size {
		n = t.size
	}
	result := make([]Operation, n)
	for i := 0; i < n; i++ {
		idx := (t.head + t.size - n + i) % t.limit
		result[i] = t.ring[idx]
	}
	return result
}

// Summary returns totals over every operation recorded since the last reset.
func (t *Tracker) Summary() Summary {
	s := t.totals
	if s.Events != nil {
		events := make(map[Event]int, len(s.Events))
		for k, v := range s.Events {
			events[k] = v
		}
		s.Events = events
	}
	return s
}

// Reset clears the count, last description, journal and totals.
func (t *Tracker) Reset() {
	t.count = 0
	t.last = ""
	t.head = 0
	t.size = 0
	t.totals = Summary{}
	for i := range t.ring {
		t.ring[i] = Operation{}
	}
}
