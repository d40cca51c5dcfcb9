package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/bufferlab/internal/logging"
	"github.com/dshills/bufferlab/internal/session"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// Runtime is a sandboxed Lua state bound to one session.
//
// gopher-lua states are not goroutine-safe; the mutex serializes runs.
type Runtime struct {
	mu      sync.Mutex
	L       *lua.LState
	sess    *session.Session
	timeout time.Duration
	log     *logging.Logger
	out     io.Writer
	closed  bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout sets the per-run time budget.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the runtime logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// WithOutput redirects Lua print output. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

// New creates a sandboxed runtime over sess.
func New(sess *session.Session, opts ...Option) *Runtime {
	r := &Runtime{
		sess:    sess,
		timeout: DefaultTimeout,
		log:     sess.Logger(),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("script")

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	installSandbox(r.L)
	r.L.SetGlobal("print", r.L.NewFunction(r.print))

	mod := newBufferModule(sess.Buffer())
	r.L.SetGlobal("buf", mod.table(r.L))
	r.L.PreloadModule("buf", func(L *lua.LState) int {
		L.Push(L.GetGlobal("buf"))
		return 1
	})
	return r
}

// openSafeLibraries opens only the libraries scripts need.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// io, os and debug are never opened.
}

// installSandbox removes loaders that reach the file system.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}
}

// print writes its arguments tab-separated, like Lua's own print.
func (r *Runtime) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

// Session returns the session the runtime drives.
func (r *Runtime) Session() *session.Session { return r.sess }

// RunString executes code within the runtime's timeout.
func (r *Runtime) RunString(ctx context.Context, code string) error {
	return r.run(ctx, "<string>", func() error { return r.L.DoString(code) })
}

// RunFile executes the Lua file at path within the runtime's timeout.
func (r *Runtime) RunFile(ctx context.Context, path string) error {
	return r.run(ctx, path, func() error { return r.L.DoFile(path) })
}

func (r *Runtime) run(ctx context.Context, name string, fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic in %s: %v", name, p)
		}
		if err != nil {
			r.log.Error("script %s failed: %v", name, err)
			return
		}
		r.log.Debug("script %s finished in %s", name, time.Since(start))
	}()

	if err := fn(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return fmt.Errorf("%s: %w after %s", name, ErrTimeout, r.timeout)
			}
			return fmt.Errorf("%s: %w", name, ctxErr)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Close releases the Lua state.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}
