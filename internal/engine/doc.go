// Package engine constructs text-buffer engines by kind.
//
// Three engines implement buffer.Buffer:
//
//   - arraybuf: a contiguous slice; inserts and deletes shift the tail
//   - linkbuf: a chain of fixed-capacity nodes stored in an arena
//   - gapbuf: a gap buffer whose gap grows by a configurable factor
//
// Every engine produces the same text and cursor for the same sequence of
// operations. They differ only in memory layout, display tokens and the
// telemetry they record.
//
// # Basic Usage
//
//	b, err := engine.New(buffer.KindGap, engine.WithContent("Hello"))
//	if err != nil {
//	    return err
//	}
//	b.MoveLeft()
//	b.Insert('!')
//	b.Text()   // "Hell!o"
//	b.Cursor() // 5
//
// # Selection
//
// The kind is fixed at construction. ParseKind maps user input such as
// "linkedlist" or "gapbuffer" to a buffer.Kind.
//
// # Concurrency
//
// Engines are not safe for concurrent use. Each instance belongs to one
// caller.
package engine
