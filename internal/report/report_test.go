package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/bufferlab/internal/compare"
	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/engine/tracking"
	"github.com/dshills/bufferlab/internal/logging"
	"github.com/dshills/bufferlab/internal/session"
)

func newSession(t *testing.T, kind buffer.Kind) *session.Session {
	t.Helper()
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s, err := session.New(kind,
		session.WithID("s-"+kind.String()),
		session.WithClock(func() time.Time { return at }),
		session.WithLogger(logging.Discard()),
	)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSnapshot_Linked(t *testing.T) {
	s := newSession(t, buffer.KindLinked)
	s.Type("abcdef")

	js, err := Snapshot(s.Snapshot(0))
	if err != nil {
		t.Fatal(err)
	}
	if !gjson.ValidBytes(js) {
		t.Fatalf("invalid JSON: %s", js)
	}

	tests := []struct {
		path     string
		expected string
	}{
		{"session", "s-linked"},
		{"engine", "linked"},
		{"taken", "2024-05-06T07:08:09Z"},
		{"text", "abcdef"},
		{"cursor", "6"},
		{"len", "6"},
		{"stats.words", "1"},
		{"memory.nodes", "2"},
		{"memory.total", "10"},
		{"operations.count", "6"},
		{"operations.recent.#", "6"},
		{"operations.recent.0.kind", "insert"},
		{"operations.summary.inserted", "6"},
		{"operations.summary.edits", "6"},
		{"nodes", "[5,1]"},
	}
	for _, tt := range tests {
		if got := Field(js, tt.path).String(); got != tt.expected {
			t.Errorf("%s = %q, expected %q", tt.path, got, tt.expected)
		}
	}

	if Field(js, "gap").Exists() {
		t.Error("linked snapshot should not carry a gap section")
	}
	if n := Field(js, "operations.summary.events.node-alloc").Int(); n != 2 {
		t.Errorf("node-alloc events = %d, expected 2", n)
	}
}

func TestSnapshot_Gap(t *testing.T) {
	s := newSession(t, buffer.KindGap)
	s.Type("hi")

	js, err := Snapshot(s.Snapshot(0))
	if err != nil {
		t.Fatal(err)
	}
	if got := Field(js, "gap.size").Int(); got != 10 {
		t.Errorf("gap.size = %d, expected 10", got)
	}
	if got := Field(js, "gap.used").Int(); got != 2 {
		t.Errorf("gap.used = %d, expected 2", got)
	}
	if got := Field(js, "gap.free").Int(); got != 8 {
		t.Errorf("gap.free = %d, expected 8", got)
	}
	if got := Field(js, "gap.expansionFactor").Float(); got != 2 {
		t.Errorf("gap.expansionFactor = %v, expected 2", got)
	}
	if Field(js, "nodes").Exists() {
		t.Error("gap snapshot should not carry node lengths")
	}
	if got := Field(js, "operations.last").String(); !strings.HasPrefix(got, "Inserted 'i'") {
		t.Errorf("operations.last = %q", got)
	}
}

func TestSnapshot_RecentOmitsEmptyEvent(t *testing.T) {
	s := newSession(t, buffer.KindArray)
	s.Type("a")
	s.Buffer().MoveLeft()

	js, err := Snapshot(s.Snapshot(0))
	if err != nil {
		t.Fatal(err)
	}
	if Field(js, "operations.recent.1.event").Exists() {
		t.Error("operations without an event should omit the field")
	}
	if got := Field(js, "operations.recent.1.kind").String(); got != "move-left" {
		t.Errorf("recent.1.kind = %q", got)
	}
	if !Field(js, "operations.summary.events").IsObject() {
		t.Error("events should always be an object")
	}
}

func TestRun_Equivalent(t *testing.T) {
	res, err := compare.NewRunner(compare.WithLogger(logging.Discard())).RunString(context.Background(), "abc left")
	if err != nil {
		t.Fatal(err)
	}

	js, err := Run(res)
	if err != nil {
		t.Fatal(err)
	}
	if !Field(js, "equivalent").Bool() {
		t.Error("expected equivalent run")
	}
	if got := Field(js, "steps").Int(); got != 4 {
		t.Errorf("steps = %d, expected 4", got)
	}
	if got := Field(js, "divergences.#").Int(); got != 0 {
		t.Errorf("divergences = %d, expected 0", got)
	}
	if got := Field(js, "engines.#.engine").String(); got != `["array","linked","gap"]` {
		t.Errorf("engines = %s", got)
	}
	if got := Field(js, "engines.#.cursor").String(); got != "[2,2,2]" {
		t.Errorf("cursors = %s", got)
	}

	// The op list round-trips through the parser.
	ops, err := compare.ParseOps(Field(js, "ops").String())
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 4 {
		t.Errorf("expected 4 ops, got %d", len(ops))
	}
}

func TestRun_Divergences(t *testing.T) {
	res := &compare.Result{
		Steps: 3,
		Divergences: []*compare.Divergence{
			{
				Step:       2,
				Op:         compare.Op{Kind: tracking.OpDeleteRight},
				Kind:       buffer.KindGap,
				Reference:  buffer.KindArray,
				Text:       "abc",
				Cursor:     2,
				WantText:   "ab",
				WantCursor: 2,
			},
			{
				Kind:      buffer.KindLinked,
				Reference: buffer.KindArray,
				Invariant: buffer.ErrBrokenLink,
			},
		},
	}

	js, err := Run(res)
	if err != nil {
		t.Fatal(err)
	}
	if Field(js, "equivalent").Bool() {
		t.Error("expected a non-equivalent run")
	}
	if got := Field(js, "divergences.0.engine").String(); got != "gap" {
		t.Errorf("divergences.0.engine = %q", got)
	}
	if got := Field(js, "divergences.0.wantText").String(); got != "ab" {
		t.Errorf("divergences.0.wantText = %q", got)
	}
	if !Field(js, "divergences.0.op").Exists() {
		t.Error("step divergences should name the op")
	}
	if Field(js, "divergences.1.op").Exists() {
		t.Error("final-state divergences should not name an op")
	}
	if got := Field(js, "divergences.1.invariant").String(); got != buffer.ErrBrokenLink.Error() {
		t.Errorf("divergences.1.invariant = %q", got)
	}
	if got := Field(js, "engines.#").Int(); got != 0 {
		t.Errorf("engines = %d, expected 0", got)
	}
}

func TestSnapshots(t *testing.T) {
	g, err := session.NewGroup(buffer.Kinds(), session.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range g.Sessions() {
		s.Type("xy")
	}

	js, err := Snapshots(g.Snapshots(0))
	if err != nil {
		t.Fatal(err)
	}
	if got := Field(js, "#.text").String(); got != `["xy","xy","xy"]` {
		t.Errorf("texts = %s", got)
	}

	empty, err := Snapshots(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(empty) != "[]" {
		t.Errorf("Snapshots(nil) = %s", empty)
	}
}

func TestFormat(t *testing.T) {
	js := []byte(`{"a":1,"b":[true]}`)

	plain := Format(js, false)
	if !bytes.Contains(plain, []byte("\n  \"a\": 1")) {
		t.Errorf("expected indented output, got %s", plain)
	}
	if bytes.Contains(plain, []byte("\x1b[")) {
		t.Error("plain output should not contain escape codes")
	}

	colored := Format(js, true)
	if !bytes.Contains(colored, []byte("\x1b[")) {
		t.Error("colored output should contain escape codes")
	}
}
