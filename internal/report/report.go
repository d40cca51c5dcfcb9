// Package report renders sessions and comparison runs as JSON.
//
// Documents are built incrementally with sjson so optional sections (gap,
// nodes, divergences) appear only when present. Format pretty-prints and
// optionally colorizes output; Field reads values back with gjson paths.
package report

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/bufferlab/internal/compare"
	"github.com/dshills/bufferlab/internal/session"
)

// builder accumulates sjson writes and keeps the first error.
type builder struct {
	js  []byte
	err error
}

func newBuilder() *builder {
	return &builder{js: []byte(`{}`)}
}

func (b *builder) set(path string, value any) {
	if b.err != nil {
		return
	}
	b.js, b.err = sjson.SetBytes(b.js, path, value)
	if b.err != nil {
		b.err = fmt.Errorf("report: setting %s: %w", path, b.err)
	}
}

func (b *builder) setRaw(path string, raw []byte) {
	if b.err != nil {
		return
	}
	b.js, b.err = sjson.SetRawBytes(b.js, path, raw)
	if b.err != nil {
		b.err = fmt.Errorf("report: setting %s: %w", path, b.err)
	}
}

func (b *builder) bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.js, nil
}

// Snapshot renders one session snapshot.
func Snapshot(s session.Snapshot) ([]byte, error) {
	b := newBuilder()
	b.set("session", s.SessionID)
	b.set("engine", s.Kind.String())
	b.set("taken", s.Taken.UTC().Format(time.RFC3339Nano))
	b.set("text", s.Text)
	b.set("cursor", s.Cursor)
	b.set("len", s.Len)
	b.set("tokens", s.Tokens)
	b.set("visible", s.Visible)

	b.set("stats.chars", s.Stats.Chars)
	b.set("stats.words", s.Stats.Words)
	b.set("stats.lines", s.Stats.Lines)

	b.set("memory.chars", s.Memory.Chars)
	b.set("memory.nodes", s.Memory.Nodes)
	b.set("memory.pointers", s.Memory.Pointers)
	b.set("memory.gapSize", s.Memory.GapSize)
	b.set("memory.gapUsed", s.Memory.GapUsed)
	b.set("memory.total", s.Memory.Total)

	b.set("operations.count", s.Operations)
	b.set("operations.last", s.LastOperation)

	sum := s.Summary
	b.set("operations.summary.edits", sum.Edits)
	b.set("operations.summary.inserted", sum.Inserted)
	b.set("operations.summary.deleted", sum.Deleted)
	b.set("operations.summary.moves", sum.Moves)
	b.set("operations.summary.clears", sum.Clears)
	b.set("operations.summary.shifts", sum.Shifts)
	b.set("operations.summary.noops", sum.NoOps)
	b.setRaw("operations.summary.events", []byte(`{}`))
	for _, ev := range slices.Sorted(maps.Keys(sum.Events)) {
		b.set("operations.summary.events."+string(ev), sum.Events[ev])
	}

	b.setRaw("operations.recent", []byte(`[]`))
	for i, op := range s.Recent {
		p := fmt.Sprintf("operations.recent.%d.", i)
		b.set(p+"kind", op.Kind.String())
		b.set(p+"description", op.Description)
		b.set(p+"chars", op.Chars)
		b.set(p+"shifts", op.Shifts)
		b.set(p+"noop", op.NoOp)
		if op.Event != "" {
			b.set(p+"event", string(op.Event))
		}
	}

	if s.Gap != nil {
		b.set("gap.size", s.Gap.Size)
		b.set("gap.used", s.Gap.Used)
		b.set("gap.free", s.Gap.Free())
		b.set("gap.expansionFactor", s.Gap.ExpansionFactor)
	}
	if s.NodeLens != nil {
		b.set("nodes", s.NodeLens)
	}
	return b.bytes()
}

// Run renders a comparison result with a snapshot per engine.
func Run(res *compare.Result) ([]byte, error) {
	b := newBuilder()
	b.set("ops", compare.Format(res.Ops))
	b.set("steps", res.Steps)
	b.set("elapsedMs", float64(res.Elapsed.Microseconds())/1000)
	b.set("equivalent", res.Equivalent())

	b.setRaw("divergences", []byte(`[]`))
	for i, d := range res.Divergences {
		p := fmt.Sprintf("divergences.%d.", i)
		b.set(p+"step", d.Step)
		if d.Step > 0 {
			b.set(p+"op", d.Op.String())
		}
		b.set(p+"engine", d.Kind.String())
		b.set(p+"reference", d.Reference.String())
		b.set(p+"text", d.Text)
		b.set(p+"cursor", d.Cursor)
		b.set(p+"wantText", d.WantText)
		b.set(p+"wantCursor", d.WantCursor)
		if d.Invariant != nil {
			b.set(p+"invariant", d.Invariant.Error())
		}
	}

	engines, err := Snapshots(res.Snapshots)
	if err != nil {
		return nil, err
	}
	b.setRaw("engines", engines)
	return b.bytes()
}

// Snapshots renders several snapshots as a JSON array.
func Snapshots(snaps []session.Snapshot) ([]byte, error) {
	b := &builder{js: []byte(`[]`)}
	for _, snap := range snaps {
		js, err := Snapshot(snap)
		if err != nil {
			return nil, err
		}
		b.setRaw("-1", js)
	}
	return b.bytes()
}

// Format pretty-prints js, with terminal colors when color is set.
func Format(js []byte, color bool) []byte {
	out := pretty.Pretty(js)
	if color {
		out = pretty.Color(out, nil)
	}
	return out
}

// Field returns the value at a gjson path.
func Field(js []byte, path string) gjson.Result {
	return gjson.GetBytes(js, path)
}
