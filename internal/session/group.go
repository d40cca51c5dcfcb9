package session

import (
	"github.com/dshills/bufferlab/internal/engine/buffer"
)

// Group holds one session per engine kind, driven side by side.
type Group struct {
	sessions []*Session
}

// NewGroup creates a session for each kind with the same options. Pass
// WithID only to single sessions; it would be shared across the group.
func NewGroup(kinds []buffer.Kind, opts ...Option) (*Group, error) {
	sessions := make([]*Session, 0, len(kinds))
	for _, k := range kinds {
		s, err := New(k, opts...)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return GroupOf(sessions...), nil
}

// GroupOf groups existing sessions.
func GroupOf(sessions ...*Session) *Group {
	return &Group{sessions: sessions}
}

// Sessions returns the sessions in construction order.
func (g *Group) Sessions() []*Session {
	return g.sessions
}

// Get returns the session for kind.
func (g *Group) Get(kind buffer.Kind) (*Session, bool) {
	for _, s := range g.sessions {
		if s.Kind() == kind {
			return s, true
		}
	}
	return nil, false
}

// Each calls fn with every session's buffer.
func (g *Group) Each(fn func(buffer.Buffer)) {
	for _, s := range g.sessions {
		fn(s.buf)
	}
}

// Type inserts text into every session.
func (g *Group) Type(text string) {
	for _, s := range g.sessions {
		s.Type(text)
	}
}

// Snapshots captures every session.
func (g *Group) Snapshots(recent int) []Snapshot {
	out := make([]Snapshot, len(g.sessions))
	for i, s := range g.sessions {
		out[i] = s.Snapshot(recent)
	}
	return out
}
