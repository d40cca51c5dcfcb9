// Package arraybuf implements the contract as one contiguous slice of cells.
//
// The cursor is an index into the slice. Insert and delete shift every cell
// after the cursor (O(n)); cursor moves adjust the index (O(1)). The memory
// estimate is simply the number of cells.
package arraybuf
