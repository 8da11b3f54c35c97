// Package config loads the run settings from flags, SPECREPORT_* environment
// variables and an optional specreport.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ansel1/specreport/output/format"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "SPECREPORT"
	FileName  = "specreport"
)

// Config holds the settings of one run.
type Config struct {
	InFile   string `mapstructure:"file"`     // Read the event stream from a file instead of stdin
	OutFile  string `mapstructure:"outfile"`  // Capture every input line
	JSONFile string `mapstructure:"jsonfile"` // Capture lifecycle event lines only

	Replay bool    `mapstructure:"replay"`
	Rate   float64 `mapstructure:"rate"`

	NoTTY   bool `mapstructure:"notty"`
	NoColor bool `mapstructure:"nocolor"`
	Width   int  `mapstructure:"width"`

	SlowThreshold     time.Duration `mapstructure:"slow"`
	VerySlowThreshold time.Duration `mapstructure:"veryslow"`

	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Rate:              1.0,
		Width:             format.LineWidth,
		SlowThreshold:     format.DefaultSlowThreshold,
		VerySlowThreshold: format.DefaultVerySlowThreshold,
	}
}

var (
	ErrReplayWithoutFile = errors.New("--replay requires --file")
	ErrNegativeRate      = errors.New("--rate must be >= 0")
	ErrThresholds        = errors.New("thresholds must satisfy 0 < slow <= veryslow")
	ErrWidth             = errors.New("--width must be > 0")
)

// Validate checks flag combinations and value ranges.
func (c *Config) Validate() error {
	if c.Replay && c.InFile == "" {
		return ErrReplayWithoutFile
	}
	if c.Rate < 0 {
		return ErrNegativeRate
	}
	if c.SlowThreshold <= 0 || c.VerySlowThreshold < c.SlowThreshold {
		return fmt.Errorf("%w: slow=%s veryslow=%s", ErrThresholds, c.SlowThreshold, c.VerySlowThreshold)
	}
	if c.Width <= 0 {
		return ErrWidth
	}
	return nil
}

var keys = []string{
	"file", "outfile", "jsonfile", "replay", "rate", "notty", "nocolor",
	"width", "slow", "veryslow", "debug", "config",
}

// RegisterFlags adds the run flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("file", "f", d.InFile, "Read from file instead of stdin")
	fs.String("outfile", d.OutFile, "Save all input to the specified file")
	fs.String("jsonfile", d.JSONFile, "Save lifecycle events to the specified file")
	fs.Bool("replay", d.Replay, "Replay events with timing from the original run (requires --file)")
	fs.Float64("rate", d.Rate, "Replay rate multiplier (0=instant, 1=original speed, 0.5=2x speed)")
	fs.Bool("notty", d.NoTTY, "Don't use the TUI, print the plain report")
	fs.Bool("nocolor", d.NoColor, "Disable colors")
	fs.Int("width", d.Width, "Width of the summary banner")
	fs.Duration("slow", d.SlowThreshold, "Tests taking at least this long get a yellow duration")
	fs.Duration("veryslow", d.VerySlowThreshold, "Tests taking longer than this get a red duration")
	fs.Bool("debug", d.Debug, "Log diagnostics to stderr")
	fs.String("config", d.ConfigFile, "Config file (default ./specreport.yaml)")
}

// Load resolves the configuration. fs must carry the flags added by
// RegisterFlags; flags the user set win over the environment, which wins over
// the config file.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	d := Default()
	v.SetDefault("rate", d.Rate)
	v.SetDefault("width", d.Width)
	v.SetDefault("slow", d.SlowThreshold)
	v.SetDefault("veryslow", d.VerySlowThreshold)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags to config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := d
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
