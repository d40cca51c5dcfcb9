package compare

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/logging"
	"github.com/dshills/bufferlab/internal/session"
)

// Runner applies operations to several engines in lockstep.
type Runner struct {
	kinds       []buffer.Kind
	sessionOpts []session.Option
	log         *logging.Logger
	validate    bool
	recent      int
	preset      string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithKinds sets the engines to compare. The first is the reference.
func WithKinds(kinds ...buffer.Kind) RunnerOption {
	return func(r *Runner) {
		r.kinds = kinds
	}
}

// WithSessionOptions passes options to every session.
func WithSessionOptions(opts ...session.Option) RunnerOption {
	return func(r *Runner) {
		r.sessionOpts = append(r.sessionOpts, opts...)
	}
}

// WithLogger sets the runner logger.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithValidation checks engine invariants after every step.
func WithValidation(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.validate = enabled
	}
}

// WithRecent sets how many journal entries each snapshot keeps.
func WithRecent(n int) RunnerOption {
	return func(r *Runner) {
		r.recent = n
	}
}

// WithPreset types text into every engine before the first step. The
// preset is recorded in each engine's telemetry but is not a step.
func WithPreset(text string) RunnerOption {
	return func(r *Runner) {
		r.preset = text
	}
}

// NewRunner creates a runner over every engine kind.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		kinds:    buffer.Kinds(),
		log:      logging.Discard(),
		validate: true,
		recent:   session.DefaultRecent,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("compare")
	return r
}

// Result is the outcome of one run.
type Result struct {
	Ops         []Op
	Steps       int
	Elapsed     time.Duration
	Snapshots   []session.Snapshot
	Divergences []*Divergence
}

// Equivalent reports whether every engine agreed at every step.
func (r *Result) Equivalent() bool {
	return len(r.Divergences) == 0
}

// Err joins the divergences into one error, or returns nil.
func (r *Result) Err() error {
	errs := make([]error, len(r.Divergences))
	for i, d := range r.Divergences {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// RunString parses src and runs it.
func (r *Runner) RunString(ctx context.Context, src string) (*Result, error) {
	ops, err := ParseOps(src)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, ops)
}

// Run applies ops to fresh sessions. Each engine is reported at most once,
// at its first divergence. The context is checked between steps.
func (r *Runner) Run(ctx context.Context, ops []Op) (*Result, error) {
	group, err := session.NewGroup(r.kinds, slices.Concat(r.sessionOpts, []session.Option{session.WithLogger(r.log)})...)
	if err != nil {
		return nil, err
	}
	if r.preset != "" {
		group.Type(r.preset)
	}
	return r.RunGroup(ctx, group, ops)
}

// RunGroup applies ops to existing sessions.
func (r *Runner) RunGroup(ctx context.Context, group *session.Group, ops []Op) (*Result, error) {
	sessions := group.Sessions()
	if len(sessions) == 0 {
		return nil, ErrNoEngines
	}

	start := time.Now()
	res := &Result{Ops: ops}
	diverged := make(map[buffer.Kind]bool)
	ref := sessions[0].Buffer()

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		group.Each(op.Apply)
		res.Steps++

		wantText, wantCursor := ref.Text(), ref.Cursor()
		for _, s := range sessions {
			b := s.Buffer()
			if diverged[b.Kind()] {
				continue
			}
			d := &Divergence{
				Step:       i + 1,
				Op:         op,
				Kind:       b.Kind(),
				Reference:  ref.Kind(),
				WantText:   wantText,
				WantCursor: wantCursor,
			}
			if r.validate {
				d.Invariant = s.Validate()
			}
			if b != ref {
				d.Text, d.Cursor = b.Text(), b.Cursor()
			} else {
				d.Text, d.Cursor = wantText, wantCursor
			}
			if d.Invariant == nil && d.Text == wantText && d.Cursor == wantCursor {
				continue
			}
			diverged[b.Kind()] = true
			res.Divergences = append(res.Divergences, d)
			r.log.Warn("%v", d)
		}
	}

	res.Elapsed = time.Since(start)
	res.Snapshots = group.Snapshots(r.recent)
	r.log.Info("ran %d operations on %d engines, %d divergences", res.Steps, len(sessions), len(res.Divergences))
	return res, nil
}

// CompareSnapshots checks the final text and cursor of each snapshot
// against the first. Runs that are not step-driven, such as scripts, use
// it instead of Run.
func CompareSnapshots(snaps []session.Snapshot) []*Divergence {
	if len(snaps) == 0 {
		return nil
	}
	ref := snaps[0]
	var out []*Divergence
	for _, s := range snaps[1:] {
		if s.Text == ref.Text && s.Cursor == ref.Cursor {
			continue
		}
		out = append(out, &Divergence{
			Kind:       s.Kind,
			Reference:  ref.Kind,
			Text:       s.Text,
			Cursor:     s.Cursor,
			WantText:   ref.Text,
			WantCursor: ref.Cursor,
		})
	}
	return out
}
