package buffer

import (
	"iter"
	"strings"

	"github.com/rivo/uniseg"
)

// DefaultDisplayWidth is the minimum number of tokens an engine emits.
const DefaultDisplayWidth = 100

// TokenKind classifies a display token.
type TokenKind uint8

const (
	TokenChar      TokenKind = iota // plain cell
	TokenCursor                     // cell under the cursor
	TokenEmpty                      // unused array or gap slot
	TokenSeparator                  // boundary between linked nodes
)

// Glyphs used by Token.String.
const (
	EmptyGlyph     = "_"
	SeparatorGlyph = "→"
)

// Token is one visual slot handed to a view layer.
type Token struct {
	Kind TokenKind
	Cell rune // set for TokenChar and TokenCursor
}

// Char returns a plain cell token.
func Char(r rune) Token { return Token{Kind: TokenChar, Cell: r} }

// CursorAt returns a cursor-marked cell token.
func CursorAt(r rune) Token { return Token{Kind: TokenCursor, Cell: r} }

// Empty returns an empty-slot token.
func Empty() Token { return Token{Kind: TokenEmpty} }

// Separator returns a node-separator token.
func Separator() Token { return Token{Kind: TokenSeparator} }

// Cell returns c as a cursor token when marked, otherwise as a plain token.
func Cell(c rune, marked bool) Token {
	if marked {
		return CursorAt(c)
	}
	return Char(c)
}

// String renders the token: "x", "[x]", "_" or "→".
func (t Token) String() string {
	switch t.Kind {
	case TokenChar:
		return string(t.Cell)
	case TokenCursor:
		return "[" + string(t.Cell) + "]"
	case TokenEmpty:
		return EmptyGlyph
	case TokenSeparator:
		return SeparatorGlyph
	default:
		return ""
	}
}

// Width returns the number of terminal columns the rendered token occupies.
func (t Token) Width() int {
	return uniseg.StringWidth(t.String())
}

// Pad yields every token of seq followed by empty-slot tokens until at least
// width tokens have been produced.
func Pad(seq iter.Seq[Token], width int) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		n := 0
		for tok := range seq {
			if !yield(tok) {
				return
			}
			n++
		}
		for ; n < width; n++ {
			if !yield(Empty()) {
				return
			}
		}
	}
}

// TrimEmpty yields seq without its trailing run of empty-slot tokens.
// Empty slots followed by any other token are kept.
func TrimEmpty(seq iter.Seq[Token]) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		pending := 0
		for tok := range seq {
			if tok.Kind == TokenEmpty {
				pending++
				continue
			}
			for ; pending > 0; pending-- {
				if !yield(Empty()) {
					return
				}
			}
			if !yield(tok) {
				return
			}
		}
	}
}

// Render concatenates the rendered tokens of seq.
func Render(seq iter.Seq[Token]) string {
	var sb strings.Builder
	for tok := range seq {
		sb.WriteString(tok.String())
	}
	return sb.String()
}

// Collect returns the tokens of seq as a slice.
func Collect(seq iter.Seq[Token]) []Token {
	var out []Token
	for tok := range seq {
		out = append(out, tok)
	}
	return out
}

// Count returns how many tokens of kind seq contains.
func Count(seq iter.Seq[Token], kind TokenKind) int {
	n := 0
	for tok := range seq {
		if tok.Kind == kind {
			n++
		}
	}
	return n
}
