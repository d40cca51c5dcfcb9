// Package tracking records the operation telemetry every buffer engine maintains.
//
// A [Tracker] counts contract operations, remembers the description of the
// most recent one, and keeps a bounded journal of [Operation] records so a
// caller can inspect how much work (element shifts, node splits, gap growth)
// each edit cost.
//
// # Usage
//
//	t := tracking.NewTracker(tracking.WithHistoryLimit(100))
//
//	t.Record(tracking.Operation{
//	    Kind:        tracking.OpInsert,
//	    Description: "Inserted 'H' (with 3 shifts)",
//	    Chars:       1,
//	    Shifts:      3,
//	})
//
//	t.Count() // 1
//	t.Last()  // "Inserted 'H' (with 3 shifts)"
//
// # Summaries
//
// [Tracker.Summary] aggregates the journal into totals (inserted and deleted
// characters, moves, shifts, structural events) for display by a caller.
// Totals cover every recorded operation, not only the ones still held in the
// bounded journal.
//
// A Tracker is owned by exactly one buffer and is not safe for concurrent use.
package tracking
