package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/bufferlab/internal/engine"
	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/session"
)

func newRuntime(t *testing.T, kind buffer.Kind, opts ...Option) *Runtime {
	t.Helper()
	s, err := session.New(kind, session.WithEngineOptions(engine.WithDisplayWidth(0)))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	r := New(s, append([]Option{WithOutput(&out)}, opts...)...)
	t.Cleanup(r.Close)
	return r
}

func TestRuntime_ScenarioOnEveryEngine(t *testing.T) {
	code := `
buf.insert("Hello")
assert(buf.text() == "Hello" and buf.cursor() == 5)
buf.move_left(3)
buf.insert("X")
assert(buf.text() == "HeXllo", buf.text())
assert(buf.cursor() == 3)
buf.move_left(10)
buf.delete_left()
assert(buf.text() == "HeXllo" and buf.cursor() == 0)
local before = buf.op_count()
buf.clear()
assert(buf.text() == "" and buf.cursor() == 0)
assert(buf.op_count() == before + 1)
assert(buf.last_op() == "Cleared all text")
assert(buf.validate())
`
	for _, k := range buffer.Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			r := newRuntime(t, k)
			if err := r.RunString(context.Background(), code); err != nil {
				t.Fatalf("RunString() error: %v", err)
			}
			if r.Session().Buffer().Kind() != k {
				t.Errorf("wrong engine %s", r.Session().Buffer().Kind())
			}
		})
	}
}

func TestRuntime_Inspectors(t *testing.T) {
	tests := []struct {
		kind buffer.Kind
		code string
	}{
		{buffer.KindGap, `
local buf = require("buf")
for i = 1, 11 do buf.insert("x") end
local g = buf.gap()
assert(g.size == 20 and g.used == 1 and g.free == 19 and g.factor == 2)
assert(buf.set_expansion_factor(3))
assert(buf.gap().factor == 3)
assert(buf.nodes() == nil)
assert(buf.memory() == 31)
`},
		{buffer.KindLinked, `
buf.insert("abcdef")
local n = buf.nodes()
assert(#n == 2 and n[1] == 5 and n[2] == 1)
assert(buf.tokens() == "abcde→f")
assert(buf.gap() == nil)
assert(buf.set_expansion_factor(3) == false)
assert(buf.kind() == "linked")
`},
		{buffer.KindArray, `
buf.insert("a b\nc")
local s = buf.stats()
assert(s.chars == 5 and s.words == 3 and s.lines == 2)
assert(buf.len() == 5)
buf.move_left(2)
buf.delete_right(2)
assert(buf.text() == "a b")
buf.reset_tracking()
assert(buf.op_count() == 0 and buf.last_op() == "")
`},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			r := newRuntime(t, tt.kind)
			if err := r.RunString(context.Background(), tt.code); err != nil {
				t.Fatalf("RunString() error: %v", err)
			}
		})
	}
}

func TestRuntime_Print(t *testing.T) {
	s, _ := session.New(buffer.KindArray)
	var out bytes.Buffer
	r := New(s, WithOutput(&out))
	defer r.Close()

	if err := r.RunString(context.Background(), `buf.insert("hi") print(buf.text(), buf.cursor())`); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hi\t2\n" {
		t.Errorf("print output = %q", out.String())
	}
}

func TestRuntime_Sandbox(t *testing.T) {
	blocked := []string{
		`return io.open("/etc/passwd")`,
		`return os.exit(1)`,
		`dofile("/tmp/x.lua")`,
		`loadstring("return 1")()`,
		`require("os")`,
	}

	for _, code := range blocked {
		r := newRuntime(t, buffer.KindArray)
		if err := r.RunString(context.Background(), code); err == nil {
			t.Errorf("RunString(%q) should fail in the sandbox", code)
		}
	}
}

func TestRuntime_ScriptError(t *testing.T) {
	r := newRuntime(t, buffer.KindArray)
	err := r.RunString(context.Background(), `buf.move_left(-1)`)
	if err == nil || !strings.Contains(err.Error(), "count must be >= 0") {
		t.Errorf("expected an argument error, got %v", err)
	}

	err = r.RunString(context.Background(), `assert(false, "nope")`)
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected assertion failure, got %v", err)
	}
}

func TestRuntime_Timeout(t *testing.T) {
	r := newRuntime(t, buffer.KindArray, WithTimeout(50*time.Millisecond))

	err := r.RunString(context.Background(), `while true do buf.len() end`)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestRuntime_TimeoutInsideRepeatedMove(t *testing.T) {
	r := newRuntime(t, buffer.KindGap, WithTimeout(50*time.Millisecond))

	start := time.Now()
	err := r.RunString(context.Background(), `buf.move_left(3e9)`)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("count loop ignored the timeout, ran for %s", elapsed)
	}
	if n := r.Session().Buffer().OperationCount(); n >= 3e9 {
		t.Errorf("expected the loop to stop early, ran %d operations", n)
	}
}

func TestRuntime_Cancelled(t *testing.T) {
	r := newRuntime(t, buffer.KindArray)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.RunString(ctx, `while true do end`)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRuntime_RunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.lua")
	if err := os.WriteFile(path, []byte(`buf.insert("from file")`), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newRuntime(t, buffer.KindGap)
	if err := r.RunFile(context.Background(), path); err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	if got := r.Session().Buffer().Text(); got != "from file" {
		t.Errorf("Text() = %q", got)
	}

	if err := r.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRuntime_Closed(t *testing.T) {
	s, _ := session.New(buffer.KindArray)
	r := New(s)
	r.Close()
	r.Close()

	if err := r.RunString(context.Background(), `x = 1`); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
