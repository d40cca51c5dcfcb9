package buffer

import "errors"

// Errors returned by Validator implementations.
var (
	// ErrCursorRange indicates the cursor lies outside [0, Len()].
	ErrCursorRange = errors.New("cursor out of range")

	// ErrNodeOverflow indicates a node holds more cells than its capacity.
	ErrNodeOverflow = errors.New("node exceeds capacity")

	// ErrEmptyNode indicates an empty node in a chain of more than one node.
	ErrEmptyNode = errors.New("empty node in chain")

	// ErrBrokenLink indicates next/prev links that disagree.
	ErrBrokenLink = errors.New("broken node link")

	// ErrGapOverflow indicates gap occupancy outside [0, gap size].
	ErrGapOverflow = errors.New("gap occupancy out of range")
)
