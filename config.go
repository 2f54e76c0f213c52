package observe

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/podhmo/go-observe/evaluator"
	"github.com/podhmo/go-observe/observation"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the evaluator and the observation
// runtime of an Engine. It can be loaded from YAML:
//
//	strict: true
//	boundFunctions: false
//	maxEffectRunCount: 10
//	logLevel: debug
//	metrics: true
type Config struct {
	// Strict makes member access on null or undefined fail instead of
	// yielding undefined.
	Strict bool `yaml:"strict"`

	// BoundFunctions binds functions read from an object to that object.
	BoundFunctions bool `yaml:"boundFunctions"`

	// MaxEffectRunCount is how often an effect may re-run itself in a row.
	MaxEffectRunCount int `yaml:"maxEffectRunCount"`

	// LogLevel is one of debug, info, warn, error. Empty keeps the logger's
	// own level.
	LogLevel string `yaml:"logLevel"`

	// Metrics enables Prometheus collectors.
	Metrics bool `yaml:"metrics"`

	// Logger is the shared logger for all components. When nil a logger is
	// derived from LogLevel.
	Logger *slog.Logger `yaml:"-"`

	// Registerer receives the collectors when Metrics is set. The default is
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer `yaml:"-"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{MaxEffectRunCount: observation.DefaultMaxRunCount}
}

// LoadConfig reads a YAML configuration. Unknown fields are rejected and
// missing ones keep their defaults.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that cannot be used as they are.
func (c *Config) Validate() error {
	if c.MaxEffectRunCount < 0 {
		return fmt.Errorf("maxEffectRunCount must not be negative, got %d", c.MaxEffectRunCount)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return lvl, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return lvl, fmt.Errorf("invalid logLevel %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.LogLevel == "" {
		return slog.Default()
	}
	lvl, err := c.level()
	if err != nil {
		return slog.Default()
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// EvaluatorOptions translates c into evaluator options.
func (c *Config) EvaluatorOptions() []evaluator.Option {
	return []evaluator.Option{
		evaluator.WithStrict(c.Strict),
		evaluator.WithBoundFunctions(c.BoundFunctions),
		evaluator.WithLogger(c.logger()),
	}
}

// RuntimeOptions translates c into observation runtime options. Metrics are
// registered here, so call it once per Registerer.
func (c *Config) RuntimeOptions() []observation.Option {
	opts := []observation.Option{observation.WithLogger(c.logger())}
	if c.MaxEffectRunCount > 0 {
		opts = append(opts, observation.WithMaxRunCount(c.MaxEffectRunCount))
	}
	if c.Metrics {
		reg := c.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		opts = append(opts, observation.WithMetrics(observation.NewMetrics(reg)))
	}
	return opts
}
