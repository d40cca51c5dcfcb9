package engine

import (
	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/engine/gapbuf"
	"github.com/dshills/bufferlab/internal/engine/tracking"
)

// Default configuration values.
const (
	DefaultDisplayWidth    = buffer.DefaultDisplayWidth
	DefaultHistoryLimit    = tracking.DefaultHistoryLimit
	DefaultGapSize         = gapbuf.DefaultGapSize
	DefaultExpansionFactor = gapbuf.DefaultExpansionFactor
)

// settings collects construction options for any engine kind.
type settings struct {
	content      string
	displayWidth int
	historyLimit int
	gapSize      int
	factor       float64
}

func defaultSettings() settings {
	return settings{
		displayWidth: DefaultDisplayWidth,
		historyLimit: DefaultHistoryLimit,
		gapSize:      DefaultGapSize,
		factor:       DefaultExpansionFactor,
	}
}

// Option configures an engine during creation.
type Option func(*settings)

// WithContent sets the initial text. The cursor starts at its end.
func WithContent(content string) Option {
	return func(s *settings) {
		s.content = content
	}
}

// WithDisplayWidth sets the minimum number of display tokens.
func WithDisplayWidth(width int) Option {
	return func(s *settings) {
		if width >= 0 {
			s.displayWidth = width
		}
	}
}

// WithHistoryLimit sets the number of operations kept in the journal.
func WithHistoryLimit(limit int) Option {
	return func(s *settings) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithGapSize sets the initial gap size. Ignored by non-gap engines.
func WithGapSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.gapSize = size
		}
	}
}

// WithExpansionFactor sets the gap growth factor. Ignored by non-gap engines.
// The gap engine clamps it to at least 1.
func WithExpansionFactor(f float64) Option {
	return func(s *settings) {
		s.factor = f
	}
}
