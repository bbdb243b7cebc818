package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/plus3/sigecs/ecs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Stress  StressConfig  `toml:"stress" yaml:"stress"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Profile ProfileConfig `toml:"profile" yaml:"profile"`
}

type StressConfig struct {
	Duration       time.Duration `toml:"duration" yaml:"duration"`
	Entities       int           `toml:"entities" yaml:"entities"`               // initial population
	MaxEntities    int           `toml:"max_entities" yaml:"max_entities"`       // coordinator capacity
	ChurnPerFrame  int           `toml:"churn_per_frame" yaml:"churn_per_frame"` // random mutations between frames
	Seed           uint64        `toml:"seed" yaml:"seed"`
	GCPauseMetrics bool          `toml:"gc_pause_metrics" yaml:"gc_pause_metrics"`
	Script         string        `toml:"script" yaml:"script"` // optional Lua file run as an extra system
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type ProfileConfig struct {
	Mode string `toml:"mode" yaml:"mode"` // "", "cpu", "mem" or "allocs"
	Path string `toml:"path" yaml:"path"`
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml", "":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Stress: StressConfig{
			Duration:      10 * time.Second,
			Entities:      10000,
			MaxEntities:   ecs.MaxEntities,
			ChurnPerFrame: 100,
			Seed:          1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error
	s := c.Stress

	if s.Duration <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("stress.duration must be positive, got %s", s.Duration))
	}
	if s.MaxEntities < 1 || s.MaxEntities > ecs.MaxEntities {
		errs = multierr.Append(errs, fmt.Errorf("stress.max_entities must be in [1, %d], got %d", ecs.MaxEntities, s.MaxEntities))
	}
	if s.Entities < 0 || s.Entities > s.MaxEntities {
		errs = multierr.Append(errs, fmt.Errorf("stress.entities must be in [0, max_entities], got %d", s.Entities))
	}
	if s.ChurnPerFrame < 0 {
		errs = multierr.Append(errs, fmt.Errorf("stress.churn_per_frame must not be negative, got %d", s.ChurnPerFrame))
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	switch c.Profile.Mode {
	case "", "cpu", "mem", "allocs":
	default:
		errs = multierr.Append(errs, fmt.Errorf("profile.mode must be cpu, mem or allocs, got %q", c.Profile.Mode))
	}

	return errs
}

// NewLogger builds the zap logger described by cfg. Unknown levels fall back
// to info.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
