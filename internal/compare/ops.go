package compare

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/engine/tracking"
)

// Op is one contract operation. Char is used only by inserts.
type Op struct {
	Kind tracking.OpKind
	Char rune
}

// Insert returns an insert operation for ch.
func Insert(ch rune) Op {
	return Op{Kind: tracking.OpInsert, Char: ch}
}

var keywords = map[string]tracking.OpKind{
	"left":      tracking.OpMoveLeft,
	"<":         tracking.OpMoveLeft,
	"right":     tracking.OpMoveRight,
	">":         tracking.OpMoveRight,
	"bs":        tracking.OpDeleteLeft,
	"backspace": tracking.OpDeleteLeft,
	"del":       tracking.OpDeleteRight,
	"delete":    tracking.OpDeleteRight,
	"clear":     tracking.OpClear,
}

// String renders the operation in the syntax ParseOps accepts.
func (o Op) String() string {
	switch o.Kind {
	case tracking.OpInsert:
		return strconv.QuoteRune(o.Char)
	case tracking.OpDeleteLeft:
		return "bs"
	case tracking.OpDeleteRight:
		return "del"
	case tracking.OpMoveLeft:
		return "left"
	case tracking.OpMoveRight:
		return "right"
	case tracking.OpClear:
		return "clear"
	default:
		return "?"
	}
}

// Apply performs the operation on b.
func (o Op) Apply(b buffer.Buffer) {
	switch o.Kind {
	case tracking.OpInsert:
		b.Insert(o.Char)
	case tracking.OpDeleteLeft:
		b.DeleteLeft()
	case tracking.OpDeleteRight:
		b.DeleteRight()
	case tracking.OpMoveLeft:
		b.MoveLeft()
	case tracking.OpMoveRight:
		b.MoveRight()
	case tracking.OpClear:
		b.Clear()
	}
}

// Apply performs ops on b in order.
func Apply(b buffer.Buffer, ops []Op) {
	for _, op := range ops {
		op.Apply(b)
	}
}

// Format renders ops so that ParseOps(Format(ops)) returns them again.
// Runs of inserts become one quoted string.
func Format(ops []Op) string {
	var words []string
	var run []rune
	flush := func() {
		if len(run) > 0 {
			words = append(words, strconv.Quote(string(run)))
			run = run[:0]
		}
	}
	for _, op := range ops {
		if op.Kind == tracking.OpInsert {
			run = append(run, op.Char)
			continue
		}
		flush()
		words = append(words, op.String())
	}
	flush()
	return strings.Join(words, " ")
}

// ParseOps parses operation text.
func ParseOps(src string) ([]Op, error) {
	var ops []Op
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		if r == '"' || r == '\'' {
			end, err := scanQuoted(src, i)
			if err != nil {
				return nil, err
			}
			lit := src[i:end]
			text, uerr := strconv.Unquote(lit)
			if uerr != nil {
				return nil, &ParseError{Pos: i, Word: lit, Message: "invalid quoted text"}
			}
			for _, c := range text {
				ops = append(ops, Insert(c))
			}
			i = end
			continue
		}

		end := i
		for end < len(src) {
			r, size := utf8.DecodeRuneInString(src[end:])
			if unicode.IsSpace(r) {
				break
			}
			end += size
		}
		word := src[i:end]
		if !utf8.ValidString(word) {
			return nil, &ParseError{Pos: i, Word: word, Message: "invalid UTF-8"}
		}
		if kind, ok := keywords[strings.ToLower(word)]; ok {
			ops = append(ops, Op{Kind: kind})
		} else {
			for _, c := range word {
				ops = append(ops, Insert(c))
			}
		}
		i = end
	}
	return ops, nil
}

// scanQuoted returns the offset just past the literal starting at start.
func scanQuoted(src string, start int) (int, error) {
	quote := src[start]
	for j := start + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1, nil
		case '\n':
			if quote == '\'' {
				return 0, &ParseError{Pos: start, Word: src[start:j], Message: "unterminated rune literal"}
			}
		}
	}
	return 0, &ParseError{Pos: start, Word: src[start:], Message: "unterminated quoted text"}
}
