// Package compare drives several engines with the same operations and
// reports where they disagree.
//
// Operations are written as whitespace-separated words:
//
//	left  <        move the cursor left
//	right >        move the cursor right
//	bs backspace   delete left
//	del delete     delete right
//	clear          clear the buffer
//	"text"         insert each rune (Go string quoting)
//	'c'            insert one rune
//	word           any other word inserts its runes
//
// For example `Hello left left left X` yields "HelXlo" with the cursor at 4.
//
// A Runner applies the parsed operations to one session per engine in
// lockstep and checks text and cursor against the first engine after every
// step.
package compare
