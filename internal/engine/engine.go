package engine

import (
	"fmt"
	"strings"

	"github.com/dshills/bufferlab/internal/engine/arraybuf"
	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/engine/gapbuf"
	"github.com/dshills/bufferlab/internal/engine/linkbuf"
)

// New creates an engine of the given kind.
func New(kind buffer.Kind, opts ...Option) (buffer.Buffer, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	switch kind {
	case buffer.KindArray:
		return arraybuf.New(s.content,
			arraybuf.WithDisplayWidth(s.displayWidth),
			arraybuf.WithHistoryLimit(s.historyLimit),
		), nil
	case buffer.KindLinked:
		return linkbuf.New(s.content,
			linkbuf.WithDisplayWidth(s.displayWidth),
			linkbuf.WithHistoryLimit(s.historyLimit),
		), nil
	case buffer.KindGap:
		return gapbuf.New(s.content,
			gapbuf.WithGapSize(s.gapSize),
			gapbuf.WithExpansionFactor(s.factor),
			gapbuf.WithDisplayWidth(s.displayWidth),
			gapbuf.WithHistoryLimit(s.historyLimit),
		), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// ParseKind maps a user-facing name to a kind. Matching ignores case.
func ParseKind(name string) (buffer.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "array":
		return buffer.KindArray, nil
	case "linked", "linkedlist", "linked-list":
		return buffer.KindLinked, nil
	case "gap", "gapbuffer", "gap-buffer":
		return buffer.KindGap, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// MemoryBreakdown splits an engine's memory estimate into its parts.
type MemoryBreakdown struct {
	Kind     buffer.Kind
	Chars    int
	Nodes    int
	Pointers int
	GapSize  int
	GapUsed  int
	Total    int
}

// Breakdown reports where b's memory estimate comes from.
func Breakdown(b buffer.Buffer) MemoryBreakdown {
	m := MemoryBreakdown{
		Kind:  b.Kind(),
		Chars: b.Len(),
		Total: b.MemoryEstimate(),
	}
	if ni, ok := b.(buffer.NodeInspector); ok {
		m.Nodes = ni.NodeCount()
		m.Pointers = 2 * m.Nodes
	}
	if gi, ok := b.(buffer.GapInspector); ok {
		g := gi.GapInfo()
		m.GapSize = g.Size
		m.GapUsed = g.Used
	}
	return m
}
