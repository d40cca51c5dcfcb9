// Package gapbuf implements the contract as a gap buffer: the cells before
// the cursor, an unused gap, and the cells after the cursor.
//
// Insertions consume gap slots. When the gap is exhausted its size is
// multiplied by the expansion factor (default 2) and the whole grown gap
// becomes available again; the cells after the gap are preserved. Cursor
// moves carry one cell across the gap and never change its occupancy.
//
//	b := gapbuf.New("", gapbuf.WithGapSize(10))
//	for _, r := range "0123456789" {
//	    b.Insert(r)
//	}
//	b.GapInfo() // {Size: 10, Used: 10, ExpansionFactor: 2}
//	b.Insert('!')
//	b.GapInfo() // {Size: 20, Used: 1, ExpansionFactor: 2}
package gapbuf
