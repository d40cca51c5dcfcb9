package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/bufferlab/internal/config/loader"
	"github.com/dshills/bufferlab/internal/engine"
	"github.com/dshills/bufferlab/internal/engine/buffer"
	"github.com/dshills/bufferlab/internal/logging"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "bufferlab.toml"

// KindAll selects every engine.
const KindAll = "all"

// Config holds validated bufferlab settings.
type Config struct {
	Engine   EngineConfig
	Gap      GapConfig
	Tracking TrackingConfig
	Script   ScriptConfig
	Logging  LoggingConfig

	// Source is the file that was read, empty when none existed.
	Source string
}

// EngineConfig selects engines and their display width.
type EngineConfig struct {
	Kind         string
	DisplayWidth int
}

// GapConfig configures the gap engine.
type GapConfig struct {
	InitialSize     int
	ExpansionFactor float64
}

// TrackingConfig configures the operation journal.
type TrackingConfig struct {
	HistoryLimit int
}

// ScriptConfig configures Lua scenario execution.
type ScriptConfig struct {
	Timeout time.Duration
}

// LoggingConfig configures the harness logger.
type LoggingConfig struct {
	Level string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine:   EngineConfig{Kind: KindAll, DisplayWidth: engine.DefaultDisplayWidth},
		Gap:      GapConfig{InitialSize: engine.DefaultGapSize, ExpansionFactor: engine.DefaultExpansionFactor},
		Tracking: TrackingConfig{HistoryLimit: engine.DefaultHistoryLimit},
		Script:   ScriptConfig{Timeout: 5 * time.Second},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// defaultMap renders Default as the lowest configuration layer.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"engine": map[string]any{
			"kind":         d.Engine.Kind,
			"displayWidth": d.Engine.DisplayWidth,
		},
		"gap": map[string]any{
			"initialSize":     d.Gap.InitialSize,
			"expansionFactor": d.Gap.ExpansionFactor,
		},
		"tracking": map[string]any{
			"historyLimit": d.Tracking.HistoryLimit,
		},
		"script": map[string]any{
			"timeout": d.Script.Timeout,
		},
		"logging": map[string]any{
			"level": d.Logging.Level,
		},
	}
}

type options struct {
	path      string
	explicit  bool
	fs        loader.FileSystem
	env       loader.Loader
	overrides map[string]any
}

// Option configures Load.
type Option func(*options)

// WithFile reads path instead of DefaultFile. A named file must exist.
func WithFile(path string) Option {
	return func(o *options) {
		if path != "" {
			o.path = path
			o.explicit = true
		}
	}
}

// WithFileSystem reads the file through fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnv replaces the environment layer. Nil disables it.
func WithEnv(l loader.Loader) Option {
	return func(o *options) {
		o.env = l
	}
}

// WithOverride sets a value above every other layer, as command-line
// flags do.
func WithOverride(path string, value any) Option {
	return func(o *options) {
		o.overrides = loader.DeepMerge(o.overrides, nest(path, value))
	}
}

func nest(path string, value any) map[string]any {
	parts := strings.Split(path, ".")
	out := map[string]any{parts[len(parts)-1]: value}
	for i := len(parts) - 2; i >= 0; i-- {
		out = map[string]any{parts[i]: out}
	}
	return out
}

// Load layers defaults, the TOML file, the environment and overrides, then
// decodes and validates the result.
func Load(opts ...Option) (*Config, error) {
	o := options{
		path: DefaultFile,
		fs:   loader.OSFS{},
		env:  loader.NewEnvLoader(loader.DefaultEnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged := defaultMap()

	file, err := loader.NewTOMLLoaderWithFS(o.fs, o.path).Load()
	if err != nil {
		return nil, err
	}
	if file == nil && o.explicit {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, o.path)
	}
	merged = loader.DeepMerge(merged, file)

	if o.env != nil {
		env, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, env)
	}
	merged = loader.DeepMerge(merged, o.overrides)

	cfg, err := Decode(NewSettings(merged))
	if err != nil {
		return nil, err
	}
	if file != nil {
		cfg.Source = o.path
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode reads every known setting from s.
func Decode(s *Settings) (*Config, error) {
	cfg := &Config{}
	var err error
	if cfg.Engine.Kind, err = s.GetString("engine.kind"); err != nil {
		return nil, err
	}
	if cfg.Engine.DisplayWidth, err = s.GetInt("engine.displayWidth"); err != nil {
		return nil, err
	}
	if cfg.Gap.InitialSize, err = s.GetInt("gap.initialSize"); err != nil {
		return nil, err
	}
	if cfg.Gap.ExpansionFactor, err = s.GetFloat("gap.expansionFactor"); err != nil {
		return nil, err
	}
	if cfg.Tracking.HistoryLimit, err = s.GetInt("tracking.historyLimit"); err != nil {
		return nil, err
	}
	if cfg.Script.Timeout, err = s.GetDuration("script.timeout"); err != nil {
		return nil, err
	}
	if cfg.Logging.Level, err = s.GetString("logging.level"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and joins all failures.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := c.EngineKinds(); err != nil {
		fail("engine.kind", "unknown engine %q", c.Engine.Kind)
	}
	if c.Engine.DisplayWidth < 0 {
		fail("engine.displayWidth", "must be >= 0, got %d", c.Engine.DisplayWidth)
	}
	if c.Gap.InitialSize < 1 {
		fail("gap.initialSize", "must be >= 1, got %d", c.Gap.InitialSize)
	}
	if !(c.Gap.ExpansionFactor >= 1) {
		fail("gap.expansionFactor", "must be >= 1, got %v", c.Gap.ExpansionFactor)
	}
	if c.Tracking.HistoryLimit < 1 {
		fail("tracking.historyLimit", "must be >= 1, got %d", c.Tracking.HistoryLimit)
	}
	if c.Script.Timeout <= 0 {
		fail("script.timeout", "must be positive, got %s", c.Script.Timeout)
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		fail("logging.level", "unknown level %q", c.Logging.Level)
	}
	return errors.Join(errs...)
}

// EngineKinds resolves Engine.Kind to the engines it selects.
func (c *Config) EngineKinds() ([]buffer.Kind, error) {
	if strings.EqualFold(strings.TrimSpace(c.Engine.Kind), KindAll) {
		return buffer.Kinds(), nil
	}
	k, err := engine.ParseKind(c.Engine.Kind)
	if err != nil {
		return nil, err
	}
	return []buffer.Kind{k}, nil
}

// EngineOptions converts the settings into engine construction options.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithDisplayWidth(c.Engine.DisplayWidth),
		engine.WithHistoryLimit(c.Tracking.HistoryLimit),
		engine.WithGapSize(c.Gap.InitialSize),
		engine.WithExpansionFactor(c.Gap.ExpansionFactor),
	}
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}
