// Package main is the entry point for bufferlab.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/dshills/bufferlab/internal/compare"
	"github.com/dshills/bufferlab/internal/config"
	"github.com/dshills/bufferlab/internal/logging"
	"github.com/dshills/bufferlab/internal/report"
	"github.com/dshills/bufferlab/internal/script"
	"github.com/dshills/bufferlab/internal/session"
	"github.com/dshills/bufferlab/internal/watch"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	// errDiverged marks a run whose engines disagreed.
	errDiverged = errors.New("engines diverged")

	// errNoField is returned when -field names a missing report value.
	errNoField = errors.New("no such report field")
)

type options struct {
	configPath  string
	engine      string
	ops         string
	text        string
	script      string
	watch       bool
	json        bool
	field       string
	logLevel    string
	recent      int
	showVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bufferlab", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts, err := parseFlags(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "bufferlab %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	if (opts.ops == "") == (opts.script == "") {
		fmt.Fprintln(stderr, "Error: exactly one of -ops or -script is required")
		fs.Usage()
		return 2
	}
	if opts.watch && opts.script == "" {
		fmt.Fprintln(stderr, "Error: -watch requires -script")
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel(), Output: stderr, Prefix: "bufferlab"})
	logging.SetDefault(log)
	if cfg.Source != "" {
		log.Debug("loaded configuration from %s", cfg.Source)
	}

	c, err := newCLI(cfg, opts, log, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.watch {
		if err := c.watch(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := c.exec(ctx); err != nil {
		if !errors.Is(err, errDiverged) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var opts options

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (default "+config.DefaultFile+" if present)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.engine, "engine", "", "Engine to run: array, linked, gap or all")
	fs.StringVar(&opts.engine, "e", "", "Engine to run (shorthand)")
	fs.StringVar(&opts.ops, "ops", "", "Operations to apply, e.g. 'Hello left left X bs'")
	fs.StringVar(&opts.text, "text", "", "Text typed into every engine before the operations or script")
	fs.StringVar(&opts.script, "script", "", "Lua script to run against each engine")
	fs.BoolVar(&opts.watch, "watch", false, "Rerun the script whenever it changes")
	fs.BoolVar(&opts.json, "json", false, "Write a JSON report")
	fs.StringVar(&opts.field, "field", "", "Print one value of the JSON report, e.g. engines.#.memory.total")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.IntVar(&opts.recent, "recent", session.DefaultRecent, "Journal entries to include per engine")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "bufferlab - compare text buffer engines\n\n")
		fmt.Fprintf(out, "Usage: bufferlab [options] (-ops OPS | -script FILE)\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  bufferlab -ops 'Hello left left left X'        Run on every engine\n")
		fmt.Fprintf(out, "  bufferlab -e gap -ops '\"abcdefghijk\"' -json    Gap buffer report\n")
		fmt.Fprintf(out, "  bufferlab -text Hello -ops 'left bs' -field engines.#.text\n")
		fmt.Fprintf(out, "  bufferlab -script edit.lua -watch             Rerun on save\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "Error: unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return opts, errors.New("unexpected arguments")
	}

	if opts.logLevel != "" {
		if _, ok := logging.ParseLevel(opts.logLevel); !ok {
			fmt.Fprintf(fs.Output(), "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
			return opts, errors.New("invalid log level")
		}
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	loadOpts := []config.Option{config.WithFile(opts.configPath)}
	if opts.engine != "" {
		loadOpts = append(loadOpts, config.WithOverride("engine.kind", opts.engine))
	}
	if opts.logLevel != "" {
		loadOpts = append(loadOpts, config.WithOverride("logging.level", opts.logLevel))
	}
	return config.Load(loadOpts...)
}

// cli holds the resolved settings for one invocation.
type cli struct {
	cfg    *config.Config
	opts   options
	log    *logging.Logger
	out    io.Writer
	color  bool
	runner *compare.Runner
}

func newCLI(cfg *config.Config, opts options, log *logging.Logger, out io.Writer) (*cli, error) {
	kinds, err := cfg.EngineKinds()
	if err != nil {
		return nil, err
	}
	return &cli{
		cfg:   cfg,
		opts:  opts,
		log:   log,
		out:   out,
		color: (opts.json || opts.field != "") && isTerminal(out),
		runner: compare.NewRunner(
			compare.WithKinds(kinds...),
			compare.WithSessionOptions(session.WithEngineOptions(cfg.EngineOptions()...)),
			compare.WithLogger(log),
			compare.WithRecent(opts.recent),
			compare.WithPreset(opts.text),
		),
	}, nil
}

// exec runs the operations or script once and writes the result.
func (c *cli) exec(ctx context.Context) error {
	var (
		res *compare.Result
		err error
	)
	if c.opts.script != "" {
		res, err = c.runScript(ctx)
	} else {
		res, err = c.runner.RunString(ctx, c.opts.ops)
	}
	if err != nil {
		return err
	}
	if err := c.write(res); err != nil {
		return err
	}
	if !res.Equivalent() {
		return errDiverged
	}
	return nil
}

// runScript runs the script once per engine in fresh sessions and
// compares the final states.
func (c *cli) runScript(ctx context.Context) (*compare.Result, error) {
	kinds, err := c.cfg.EngineKinds()
	if err != nil {
		return nil, err
	}
	group, err := session.NewGroup(kinds,
		session.WithLogger(c.log),
		session.WithEngineOptions(c.cfg.EngineOptions()...),
	)
	if err != nil {
		return nil, err
	}
	if c.opts.text != "" {
		group.Type(c.opts.text)
	}

	// Script output would corrupt a JSON report.
	var scriptOut io.Writer = c.out
	if c.opts.json || c.opts.field != "" {
		scriptOut = io.Discard
	}

	start := time.Now()
	for _, s := range group.Sessions() {
		rt := script.New(s,
			script.WithTimeout(c.cfg.Script.Timeout),
			script.WithLogger(c.log),
			script.WithOutput(scriptOut),
		)
		err := rt.RunFile(ctx, c.opts.script)
		rt.Close()
		if err != nil {
			return nil, fmt.Errorf("%s engine: %w", s.Kind(), err)
		}
	}

	snaps := group.Snapshots(c.opts.recent)
	res := &compare.Result{
		Elapsed:     time.Since(start),
		Snapshots:   snaps,
		Divergences: compare.CompareSnapshots(snaps),
	}
	for _, d := range res.Divergences {
		c.log.Warn("%v", d)
	}
	return res, nil
}

// watch reruns the script on every change until ctx is done.
func (c *cli) watch(ctx context.Context) error {
	w, err := watch.New(c.opts.script, watch.WithLogger(c.log))
	if err != nil {
		return err
	}
	defer w.Close()

	c.rerun(ctx)
	c.log.Info("watching %s", w.Path())
	return w.Run(ctx, func(ctx context.Context, ev watch.Event) error {
		c.log.Info("%s changed, rerunning", ev.Path)
		c.rerun(ctx)
		return nil
	})
}

func (c *cli) rerun(ctx context.Context) {
	if err := c.exec(ctx); err != nil && !errors.Is(err, errDiverged) {
		c.log.Error("%v", err)
	}
}

func (c *cli) write(res *compare.Result) error {
	if !c.opts.json && c.opts.field == "" {
		writeText(c.out, res, c.opts.script != "")
		return nil
	}

	js, err := report.Run(res)
	if err != nil {
		return err
	}
	if c.opts.field != "" {
		v := report.Field(js, c.opts.field)
		if !v.Exists() {
			return fmt.Errorf("%w: %s", errNoField, c.opts.field)
		}
		if v.IsObject() || v.IsArray() {
			_, err = c.out.Write(report.Format([]byte(v.Raw), c.color))
			return err
		}
		_, err = fmt.Fprintln(c.out, v.String())
		return err
	}
	_, err = c.out.Write(report.Format(js, c.color))
	return err
}

func writeText(w io.Writer, res *compare.Result, scripted bool) {
	for _, s := range res.Snapshots {
		fmt.Fprintf(w, "%-7s %q  cursor %d/%d  memory %d  ops %d (%d edits)\n",
			s.Kind, s.Text, s.Cursor, s.Len, s.Memory.Total, s.Operations, s.Summary.Edits)
		fmt.Fprintf(w, "        %s\n", s.Visible)
		if s.LastOperation != "" {
			fmt.Fprintf(w, "        last: %s\n", s.LastOperation)
		}
		if s.Gap != nil {
			fmt.Fprintf(w, "        gap: size %d, used %d, factor %g\n", s.Gap.Size, s.Gap.Used, s.Gap.ExpansionFactor)
		}
		if s.NodeLens != nil {
			fmt.Fprintf(w, "        nodes: %v\n", s.NodeLens)
		}
	}

	if res.Equivalent() {
		elapsed := res.Elapsed.Round(time.Microsecond)
		if scripted && len(res.Snapshots) > 0 {
			fmt.Fprintf(w, "engines agree (script, %d operations per engine, %s)\n", res.Snapshots[0].Operations, elapsed)
			return
		}
		fmt.Fprintf(w, "engines agree (%d operations, %s)\n", res.Steps, elapsed)
		return
	}
	for _, d := range res.Divergences {
		fmt.Fprintf(w, "DIVERGED: %v\n", d)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
