package compare

import (
	"errors"
	"slices"
	"testing"

	"github.com/dshills/bufferlab/internal/engine/arraybuf"
	"github.com/dshills/bufferlab/internal/engine/tracking"
)

func ins(s string) []Op {
	var ops []Op
	for _, r := range s {
		ops = append(ops, Insert(r))
	}
	return ops
}

func op(kind tracking.OpKind) Op { return Op{Kind: kind} }

func TestParseOps(t *testing.T) {
	left, right := op(tracking.OpMoveLeft), op(tracking.OpMoveRight)
	bs, del, clr := op(tracking.OpDeleteLeft), op(tracking.OpDeleteRight), op(tracking.OpClear)

	tests := []struct {
		name     string
		input    string
		expected []Op
	}{
		{"empty", "", nil},
		{"blank", "  \t\n", nil},
		{"bare word", "Hello", ins("Hello")},
		{"keywords", "left < right > bs backspace del delete clear",
			[]Op{left, left, right, right, bs, bs, del, del, clr}},
		{"case insensitive", "LEFT Clear", []Op{left, clr}},
		{"quoted", `"a b"`, ins("a b")},
		{"quoted keyword", `"left"`, ins("left")},
		{"escapes", `"\t\"x"`, ins("\t\"x")},
		{"rune", `' '`, ins(" ")},
		{"unicode", "日本 'é'", ins("日本é")},
		{"mixed", `Hello left left left X`, slices.Concat(ins("Hello"), []Op{left, left, left}, ins("X"))},
		{"adjacent literal", `"ab"cd`, ins("abcd")},
		{"apostrophe inside word", "don't", ins("don't")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOps(tt.input)
			if err != nil {
				t.Fatalf("ParseOps(%q) error: %v", tt.input, err)
			}
			if !slices.Equal(got, tt.expected) {
				t.Errorf("ParseOps(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseOps_Errors(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{`"open`, 0},
		{`ab 'x`, 3},
		{`''`, 0},
		{`'ab'`, 0},
		{`"bad \q"`, 0},
		{"left \xff", 5},
	}

	for _, tt := range tests {
		_, err := ParseOps(tt.input)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseOps(%q): expected *ParseError, got %v", tt.input, err)
			continue
		}
		if perr.Pos != tt.pos {
			t.Errorf("ParseOps(%q): Pos = %d, expected %d", tt.input, perr.Pos, tt.pos)
		}
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		"Hello left left left X",
		`"a b" del bs clear 'x' right`,
		`"\"quoted\"" left`,
		"",
	}

	for _, in := range inputs {
		ops, err := ParseOps(in)
		if err != nil {
			t.Fatal(err)
		}
		again, err := ParseOps(Format(ops))
		if err != nil {
			t.Fatalf("Format(%q) = %q does not parse: %v", in, Format(ops), err)
		}
		if !slices.Equal(ops, again) {
			t.Errorf("round trip of %q: %v != %v", in, ops, again)
		}
	}

	if got := Format(slices.Concat(ins("ab"), []Op{op(tracking.OpMoveLeft)}, ins("c"))); got != `"ab" left "c"` {
		t.Errorf("Format = %q", got)
	}
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op       Op
		expected string
	}{
		{Insert('a'), "'a'"},
		{Insert('\n'), `'\n'`},
		{op(tracking.OpDeleteLeft), "bs"},
		{op(tracking.OpDeleteRight), "del"},
		{op(tracking.OpMoveLeft), "left"},
		{op(tracking.OpMoveRight), "right"},
		{op(tracking.OpClear), "clear"},
		{Op{Kind: tracking.OpKind(42)}, "?"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.expected {
			t.Errorf("String() = %q, expected %q", got, tt.expected)
		}
	}
}

func TestApply(t *testing.T) {
	ops, _ := ParseOps("Hello left left left X")
	b := arraybuf.New("")
	Apply(b, ops)

	if b.Text() != "HelXlo" || b.Cursor() != 4 {
		t.Errorf("text=%q cursor=%d", b.Text(), b.Cursor())
	}
	if b.OperationCount() != len(ops) {
		t.Errorf("expected %d operations, got %d", len(ops), b.OperationCount())
	}
}
