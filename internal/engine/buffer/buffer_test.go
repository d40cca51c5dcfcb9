package buffer

import (
	"slices"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindArray, "array"},
		{KindLinked, "linked"},
		{KindGap, "gap"},
		{Kind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Kind(%d).String() = %q, expected %q", tt.kind, got, tt.expected)
		}
	}
}

func TestKinds(t *testing.T) {
	if got := Kinds(); !slices.Equal(got, []Kind{KindArray, KindLinked, KindGap}) {
		t.Errorf("Kinds() = %v", got)
	}
}

func TestToken_String(t *testing.T) {
	tests := []struct {
		name     string
		tok      Token
		expected string
	}{
		{"char", Char('a'), "a"},
		{"cursor", CursorAt('b'), "[b]"},
		{"empty", Empty(), "_"},
		{"separator", Separator(), "→"},
		{"unknown", Token{Kind: TokenKind(9)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestToken_Width(t *testing.T) {
	if w := Char('a').Width(); w != 1 {
		t.Errorf("Char('a').Width() = %d, expected 1", w)
	}
	if w := CursorAt('a').Width(); w != 3 {
		t.Errorf("CursorAt('a').Width() = %d, expected 3", w)
	}
	if w := Char('日').Width(); w != 2 {
		t.Errorf("Char('日').Width() = %d, expected 2", w)
	}
}

func TestCell(t *testing.T) {
	if Cell('x', true) != CursorAt('x') {
		t.Error("marked cell should be a cursor token")
	}
	if Cell('x', false) != Char('x') {
		t.Error("unmarked cell should be a char token")
	}
}

func TestPad(t *testing.T) {
	src := slices.Values([]Token{Char('a'), CursorAt('b')})

	got := Collect(Pad(src, 5))
	if len(got) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(got))
	}
	if Render(slices.Values(got)) != "a[b]___" {
		t.Errorf("Render = %q", Render(slices.Values(got)))
	}

	// Sequences longer than the width are not truncated.
	long := Collect(Pad(src, 1))
	if len(long) != 2 {
		t.Errorf("expected 2 tokens, got %d", len(long))
	}
}

func TestPad_StopsEarly(t *testing.T) {
	n := 0
	for range Pad(slices.Values([]Token{Char('a')}), 100) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected to stop after 3 tokens, got %d", n)
	}
}

func TestTrimEmpty(t *testing.T) {
	tests := []struct {
		name     string
		toks     []Token
		expected string
	}{
		{"padding", []Token{Char('a'), Empty(), Empty()}, "a"},
		{"typed underscores", []Token{Char('x'), Char('_'), Char('_'), Empty()}, "x__"},
		{"inner slots", []Token{Char('a'), Empty(), Char('b'), Empty()}, "a_b"},
		{"all empty", []Token{Empty(), Empty()}, ""},
		{"cursor last", []Token{Char('a'), CursorAt('b')}, "a[b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(TrimEmpty(slices.Values(tt.toks))); got != tt.expected {
				t.Errorf("Render(TrimEmpty) = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestCount(t *testing.T) {
	seq := slices.Values([]Token{Char('a'), Separator(), Char('b'), Empty(), Separator()})
	if got := Count(seq, TokenSeparator); got != 2 {
		t.Errorf("Count(separator) = %d, expected 2", got)
	}
	if got := Count(seq, TokenCursor); got != 0 {
		t.Errorf("Count(cursor) = %d, expected 0", got)
	}
}

func TestStats(t *testing.T) {
	tests := []struct {
		text     string
		expected TextStats
	}{
		{"", TextStats{}},
		{"Hello", TextStats{Chars: 5, Words: 1, Lines: 1}},
		{"Data Structures", TextStats{Chars: 15, Words: 2, Lines: 1}},
		{"a b\nc", TextStats{Chars: 5, Words: 3, Lines: 2}},
		{"   ", TextStats{Chars: 3, Words: 0, Lines: 1}},
		{"日本", TextStats{Chars: 2, Words: 1, Lines: 1}},
	}

	for _, tt := range tests {
		if got := Stats(tt.text); got != tt.expected {
			t.Errorf("Stats(%q) = %+v, expected %+v", tt.text, got, tt.expected)
		}
	}
}

func TestGapInfo_Free(t *testing.T) {
	g := GapInfo{Size: 20, Used: 7}
	if g.Free() != 13 {
		t.Errorf("Free() = %d, expected 13", g.Free())
	}
}
