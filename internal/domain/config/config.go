// Package config reads linework.toml, the engine's single configuration
// file. Settings are split into sections mirroring the subsystems they
// feed; anything absent falls back to a default, anything present is
// validated before the engine starts.
package config

import (
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/felixgeelhaar/linework/internal/domain/expr"
	"github.com/felixgeelhaar/linework/internal/domain/snap"
)

// Log levels accepted by the log section.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Config holds every setting the engine reads.
type Config struct {
	Log         LogConfig
	Snap        SnapConfig
	Expressions ExpressionsConfig
	Scripts     ScriptsConfig
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is the minimum severity that gets emitted
	Level string
}

// SnapConfig controls snap candidate resolution.
type SnapConfig struct {
	// Tolerance is the default snap radius in canvas units
	Tolerance float64

	// Intersections enables intersection candidates
	Intersections bool
}

// ExpressionsConfig bounds expression evaluation.
type ExpressionsConfig struct {
	// Timeout bounds a single evaluation
	Timeout time.Duration

	// MaxResultItems bounds the size of a produced sequence
	MaxResultItems int
}

// ScriptsConfig locates construction scripts on disk.
type ScriptsConfig struct {
	// Dir is the directory scripts and their expression modules load from
	Dir string
}

// Default returns the configuration used when linework.toml is absent.
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: LevelInfo},
		Snap: SnapConfig{Tolerance: 8, Intersections: true},
		Expressions: ExpressionsConfig{
			Timeout:        100 * time.Millisecond,
			MaxResultItems: 1024,
		},
		Scripts: ScriptsConfig{Dir: "."},
	}
}

// rawConfig is the TOML representation. Pointer fields distinguish an
// absent setting from an explicit zero or false.
type rawConfig struct {
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
	Snap struct {
		Tolerance     *float64 `toml:"tolerance"`
		Intersections *bool    `toml:"intersections"`
	} `toml:"snap"`
	Expressions struct {
		Timeout        string `toml:"timeout"`
		MaxResultItems *int   `toml:"max_result_items"`
	} `toml:"expressions"`
	Scripts struct {
		Dir string `toml:"dir"`
	} `toml:"scripts"`
}

// Parse reads TOML bytes into a validated configuration. Absent settings
// keep their defaults. path only labels errors.
func Parse(path string, data []byte) (*Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, NewParseError(path, err)
	}

	cfg := Default()
	if raw.Log.Level != "" {
		cfg.Log.Level = raw.Log.Level
	}
	if raw.Snap.Tolerance != nil {
		cfg.Snap.Tolerance = *raw.Snap.Tolerance
	}
	if raw.Snap.Intersections != nil {
		cfg.Snap.Intersections = *raw.Snap.Intersections
	}
	if raw.Expressions.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Expressions.Timeout)
		if err != nil {
			return nil, NewInvalidError("expressions.timeout",
				fmt.Sprintf("%q is not a duration", raw.Expressions.Timeout),
				`use a Go duration such as "100ms" or "2s"`)
		}
		cfg.Expressions.Timeout = timeout
	}
	if raw.Expressions.MaxResultItems != nil {
		cfg.Expressions.MaxResultItems = *raw.Expressions.MaxResultItems
	}
	if raw.Scripts.Dir != "" {
		cfg.Scripts.Dir = raw.Scripts.Dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting that parsed.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return NewInvalidError("log.level",
			fmt.Sprintf("unknown log level %q", c.Log.Level),
			`use one of "debug", "info", "warn", "error"`)
	}
	if c.Snap.Tolerance <= 0 {
		return NewInvalidError("snap.tolerance",
			fmt.Sprintf("snap tolerance must be positive, got %g", c.Snap.Tolerance),
			"pick a small positive radius, for example 8")
	}
	if c.Expressions.Timeout <= 0 {
		return NewInvalidError("expressions.timeout",
			"expression timeout must be positive",
			`use a short bound such as "100ms"`)
	}
	if c.Expressions.MaxResultItems <= 0 {
		return NewInvalidError("expressions.max_result_items",
			"expression result bound must be positive",
			"use a bound such as 1024")
	}
	return nil
}

// EvalConfig maps the expressions section onto the evaluator's options.
func (c *Config) EvalConfig() expr.Config {
	return expr.Config{
		Timeout:        c.Expressions.Timeout,
		MaxResultItems: c.Expressions.MaxResultItems,
	}
}

// SnapOptions maps the snap section onto the resolver's options.
func (c *Config) SnapOptions() snap.Config {
	return snap.Config{Intersections: c.Snap.Intersections}
}
