// Package watch reruns work when a file changes on disk.
//
// A Watcher observes the directory holding its target so that editors which
// save by writing a temporary file and renaming it over the original are
// still seen. Bursts of events for the target are coalesced into one
// callback after a quiet period.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/bufferlab/internal/logging"
)

// DefaultDebounce is the quiet period before a change is delivered.
const DefaultDebounce = 100 * time.Millisecond

var (
	// ErrClosed is returned by Run once the watcher has been closed.
	ErrClosed = errors.New("watcher closed")

	// ErrNotFile indicates the target is a directory.
	ErrNotFile = errors.New("watch target is not a regular file")
)

// Op is a set of file operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Has reports whether o contains every bit of other.
func (o Op) Has(other Op) bool {
	return o&other == other
}

// String returns the operation names joined with '|'.
func (o Op) String() string {
	if o == 0 {
		return "none"
	}
	names := []struct {
		op   Op
		name string
	}{
		{OpCreate, "create"},
		{OpWrite, "write"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
	}
	s := ""
	for _, n := range names {
		if o.Has(n.op) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

// Event describes a coalesced change to the target.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler is called once per coalesced change. A returned error is logged
// and does not stop the watcher.
type Handler func(ctx context.Context, ev Event) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher delivers debounced change events for a single file.
type Watcher struct {
	fsw   *fsnotify.Watcher
	path  string
	delay time.Duration
	log   *logging.Logger
}

// New watches path, which must exist and be a regular file.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotFile)
	}

	w := &Watcher{
		path:  abs,
		delay: DefaultDebounce,
		log:   logging.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("watch")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w.fsw = fsw
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close releases the underlying notifier. Run returns ErrClosed afterwards.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers changes to fn until ctx is done or the watcher is closed.
// Cancellation returns nil.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			op, relevant := w.filter(fsEvent)
			if !relevant {
				continue
			}
			pending.Path = w.path
			pending.Op |= op
			pending.Time = time.Now()
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			ev := pending
			pending = Event{}
			w.log.Debug("%s changed (%s)", ev.Path, ev.Op)
			if err := fn(ctx, ev); err != nil {
				w.log.Warn("handler failed: %v", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			w.log.Warn("notify error: %v", err)
		}
	}
}

// filter keeps writes and creations of the target. Removal and renames
// away are logged only; the editor's replacement arrives as a create.
func (w *Watcher) filter(ev fsnotify.Event) (Op, bool) {
	if filepath.Clean(ev.Name) != w.path {
		return 0, false
	}
	op := convertOp(ev.Op)
	if op.Has(OpWrite) || op.Has(OpCreate) {
		return op, true
	}
	if op != 0 {
		w.log.Debug("ignoring %s of %s", op, ev.Name)
	}
	return 0, false
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
