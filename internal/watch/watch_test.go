package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/bufferlab/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// start runs w in the background and returns the delivered events.
func start(t *testing.T, w *Watcher) <-chan Event {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	events := make(chan Event, 16)
	go w.Run(ctx, func(_ context.Context, ev Event) error {
		events <- ev
		return nil
	})
	// Give the loop a moment to start selecting.
	time.Sleep(20 * time.Millisecond)
	return events
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op       Op
		expected string
	}{
		{0, "none"},
		{OpWrite, "write"},
		{OpCreate | OpWrite, "create|write"},
		{OpRemove | OpRename, "remove|rename"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.expected {
			t.Errorf("Op(%d).String() = %q, expected %q", tt.op, got, tt.expected)
		}
	}
}

func TestConvertOp(t *testing.T) {
	got := convertOp(fsnotify.Create | fsnotify.Write | fsnotify.Chmod)
	if got != OpCreate|OpWrite {
		t.Errorf("convertOp = %s", got)
	}
	if convertOp(fsnotify.Chmod) != 0 {
		t.Error("chmod should not map to an operation")
	}
}

func TestNew_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(filepath.Join(dir, "missing.lua"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	_, err = New(dir)
	if !errors.Is(err, ErrNotFile) {
		t.Errorf("expected ErrNotFile, got %v", err)
	}
}

func TestWatcher_DeliversCoalescedWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.lua")
	writeFile(t, path, "buf.insert('a')")

	w, err := New(path, WithDebounce(100*time.Millisecond), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	events := start(t, w)

	for range 5 {
		writeFile(t, path, "buf.insert('b')")
	}

	select {
	case ev := <-events:
		if ev.Path != w.Path() {
			t.Errorf("Path = %q, expected %q", ev.Path, w.Path())
		}
		if !ev.Op.Has(OpWrite) && !ev.Op.Has(OpCreate) {
			t.Errorf("unexpected op %s", ev.Op)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	select {
	case ev := <-events:
		t.Errorf("burst should coalesce into one event, got another: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ops.lua")
	writeFile(t, path, "")

	w, err := New(path, WithDebounce(20*time.Millisecond), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	events := start(t, w)

	writeFile(t, filepath.Join(dir, "other.lua"), "x")
	select {
	case ev := <-events:
		t.Fatalf("sibling change delivered: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}

	writeFile(t, path, "y")
	select {
	case <-events:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for target change")
	}
}

func TestWatcher_HandlerErrorDoesNotStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.lua")
	writeFile(t, path, "")

	w, err := New(path, WithDebounce(20*time.Millisecond), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	calls := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(context.Context, Event) error {
		calls <- struct{}{}
		return errors.New("boom")
	})
	time.Sleep(20 * time.Millisecond)

	for i := range 2 {
		writeFile(t, path, "change")
		select {
		case <-calls:
		case <-time.After(3 * time.Second):
			t.Fatalf("call %d: timed out", i+1)
		}
	}
}

func TestWatcher_RunStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.lua")
	writeFile(t, path, "")

	w, err := New(path, WithLogger(logging.Discard()))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(context.Context, Event) error { return nil }) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run after cancel = %v, expected nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	done2 := make(chan error, 1)
	go func() { done2 <- w.Run(context.Background(), func(context.Context, Event) error { return nil }) }()
	w.Close()
	select {
	case err := <-done2:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Run after Close = %v, expected ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}
