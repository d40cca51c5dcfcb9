package buffer

import (
	"strings"
	"unicode/utf8"
)

// TextStats summarizes text content for display.
type TextStats struct {
	Chars int
	Words int
	Lines int
}

// Stats computes character, word and line counts of text.
// Empty text has zero lines.
func Stats(text string) TextStats {
	if text == "" {
		return TextStats{}
	}
	return TextStats{
		Chars: utf8.RuneCountInString(text),
		Words: len(strings.Fields(text)),
		Lines: strings.Count(text, "\n") + 1,
	}
}
