// Package session pairs one buffer engine with an identity, a logger and
// point-in-time snapshots.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/bufferlab/internal/engine"
	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/engine/tracking"
	"github.com/dshills/bufferlab/internal/logging"
)

// DefaultRecent is the number of journal entries a snapshot carries.
const DefaultRecent = 20

// Session owns one engine. It is not safe for concurrent use.
type Session struct {
	id      string
	buf     buffer.Buffer
	log     *logging.Logger
	created time.Time
	now     func() time.Time
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	id         string
	logger     *logging.Logger
	engineOpts []engine.Option
	now        func() time.Time
}

// WithID sets the session ID instead of generating one.
func WithID(id string) Option {
	return func(o *sessionOptions) {
		o.id = id
	}
}

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *sessionOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEngineOptions passes options to the engine constructor.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *sessionOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *sessionOptions) {
		o.now = now
	}
}

// New creates a session around a new engine of the given kind. Engine
// options given through WithEngineOptions are applied; Wrap ignores them.
func New(kind buffer.Kind, opts ...Option) (*Session, error) {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	buf, err := engine.New(kind, o.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s := Wrap(buf, opts...)
	s.log.Debug("session created with %d cells", buf.Len())
	return s, nil
}

// Wrap creates a session around an existing engine.
func Wrap(buf buffer.Buffer, opts ...Option) *Session {
	o := sessionOptions{logger: logging.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.New().String()
	}
	return &Session{
		id:      o.id,
		buf:     buf,
		created: o.now(),
		now:     o.now,
		log: o.logger.WithFields(map[string]any{
			"session": o.id,
			"engine":  buf.Kind().String(),
		}),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Kind returns the engine kind.
func (s *Session) Kind() buffer.Kind { return s.buf.Kind() }

// Buffer returns the engine.
func (s *Session) Buffer() buffer.Buffer { return s.buf }

// Logger returns the session logger.
func (s *Session) Logger() *logging.Logger { return s.log }

// Created returns when the session was created.
func (s *Session) Created() time.Time { return s.created }

// Type inserts each rune of text.
func (s *Session) Type(text string) {
	buffer.InsertString(s.buf, text)
	s.log.Debug("typed %q", text)
}

// ResetTracking clears the engine telemetry.
func (s *Session) ResetTracking() {
	s.buf.ResetOperationTracking()
	s.log.Debug("operation tracking reset")
}

// Validate checks the engine's structural invariants when it can.
func (s *Session) Validate() error {
	v, ok := s.buf.(buffer.Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		s.log.Error("invariant violated: %v", err)
		return fmt.Errorf("session %s: %w", s.id, err)
	}
	return nil
}

// Snapshot is a read-only copy of a session's observable state.
type Snapshot struct {
	SessionID     string
	Kind          buffer.Kind
	Taken         time.Time
	Text          string
	Cursor        int
	Len           int
	Stats         buffer.TextStats
	Tokens        string
	Visible       string // Tokens without trailing empty slots
	Memory        engine.MemoryBreakdown
	Operations    int
	LastOperation string
	Summary       tracking.Summary
	Recent        []tracking.Operation
	Gap           *buffer.GapInfo
	NodeLens      []int
}

// Snapshot captures the session's state with up to recent journal
// entries. recent <= 0 uses DefaultRecent.
func (s *Session) Snapshot(recent int) Snapshot {
	if recent <= 0 {
		recent = DefaultRecent
	}
	text := s.buf.Text()
	snap := Snapshot{
		SessionID:     s.id,
		Kind:          s.buf.Kind(),
		Taken:         s.now(),
		Text:          text,
		Cursor:        s.buf.Cursor(),
		Len:           s.buf.Len(),
		Stats:         buffer.Stats(text),
		Tokens:        buffer.Render(s.buf.DisplayTokens()),
		Visible:       buffer.Render(buffer.TrimEmpty(s.buf.DisplayTokens())),
		Memory:        engine.Breakdown(s.buf),
		Operations:    s.buf.OperationCount(),
		LastOperation: s.buf.LastOperation(),
		Summary:       s.buf.OperationSummary(),
		Recent:        s.buf.RecentOperations(recent),
	}
	if gi, ok := s.buf.(buffer.GapInspector); ok {
		g := gi.GapInfo()
		snap.Gap = &g
	}
	if ni, ok := s.buf.(buffer.NodeInspector); ok {
		snap.NodeLens = ni.NodeLens()
	}
	return snap
}
