// Package buffer defines the cursor-based editing contract shared by every
// text-buffer engine, together with the display-token vocabulary handed to
// view layers.
//
// # Contract
//
// A [Buffer] holds an ordered sequence of cells (runes treated as opaque
// units) and a cursor c with 0 <= c <= Len(). Every mutation is synchronous
// and total: operations at a boundary (delete-left at 0, delete-right at the
// end, moves past either end) are silent no-ops.
//
//	b.Insert('H')
//	b.Insert('i')
//	b.MoveLeft()
//	b.Insert('!')
//	b.Text()   // "H!i"
//	b.Cursor() // 2
//
// Engines must agree on Text and Cursor for any operation history; how they
// store cells, what they report as MemoryEstimate, and which tokens they emit
// are engine specific.
//
// # Display Tokens
//
// DisplayTokens yields one [Token] per storage slot. The sequence is rebuilt
// on every call and padded with empty-slot tokens to the engine's display
// width (DefaultDisplayWidth unless configured). Padding is cosmetic and never
// affects Text or Cursor.
//
// # Optional Capabilities
//
// Engines expose structure through small interfaces that callers discover
// with a type assertion: [GapInspector], [NodeInspector] and [Validator].
package buffer
