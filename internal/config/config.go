// Package config resolves runtime settings from defaults, an optional TOML
// file, the environment and command line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"twinview/internal/logger"
	"twinview/internal/viewport"
)

var (
	ErrInvalidLevel         = errors.New("invalid log level")
	ErrInvalidFormat        = errors.New("invalid log format")
	ErrInvalidInterpolation = errors.New("invalid interpolation")
)

const (
	AppDir       = "twinview"
	FileName     = "config.toml"
	DefaultLimit = 5
)

type Config struct {
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LeftDir       string `toml:"left_dir"`
	RightDir      string `toml:"right_dir"`
	Filter        string `toml:"filter"`
	Interpolation string `toml:"interpolation"`
	Workers       int    `toml:"workers"`
	RecentLimit   int    `toml:"recent_limit"`
}

func Default() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     "console",
		Interpolation: viewport.Bilinear.String(),
		Workers:       runtime.GOMAXPROCS(0),
		RecentLimit:   DefaultLimit,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/twinview/config.toml or the platform
// equivalent. It is empty when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppDir, FileName)
}

// LoadFile decodes path over cfg. A missing file is only an error when
// required.
func LoadFile(path string, cfg *Config, required bool) error {
	if path == "" {
		return nil
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

// ApplyEnv reads LOG_LEVEL, DEBUG=1 (when LOG_LEVEL is unset) and
// TWINVIEW_WORKERS.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if level := getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	} else if getenv("DEBUG") == "1" {
		cfg.LogLevel = "debug"
	}
	if w := getenv("TWINVIEW_WORKERS"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("TWINVIEW_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.LogFormat)
	}
	if _, ok := viewport.ParseInterpolation(c.Interpolation); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidInterpolation, c.Interpolation)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("recent_limit must be at least 1, got %d", c.RecentLimit)
	}
	return nil
}

func (c Config) Level() logger.LogLevel {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

func (c Config) InterpolationMode() viewport.Interpolation {
	mode, _ := viewport.ParseInterpolation(c.Interpolation)
	return mode
}

// Flags holds command line overrides until Resolve merges them.
type Flags struct {
	fs   *pflag.FlagSet
	path string
	cfg  Config
}

func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()

	fs.StringVar(&f.path, "config", "", "config file (default "+DefaultPath()+")")
	fs.StringVar(&f.cfg.LogLevel, "log-level", d.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&f.cfg.LogFormat, "log-format", d.LogFormat, "log format: console or json")
	fs.StringVar(&f.cfg.LeftDir, "left", "", "folder to open on the left")
	fs.StringVar(&f.cfg.RightDir, "right", "", "folder to open on the right")
	fs.StringVar(&f.cfg.Filter, "filter", "", "regular expression applied to file names")
	fs.StringVar(&f.cfg.Interpolation, "interpolation", d.Interpolation, "nearest or bilinear")
	fs.IntVar(&f.cfg.Workers, "workers", d.Workers, "normalization workers per image")
	fs.IntVar(&f.cfg.RecentLimit, "recent-limit", d.RecentLimit, "number of recent folders to remember")
	return f
}

// Resolve builds the effective configuration. Only flags set explicitly on
// the command line override the file and environment.
func (f *Flags) Resolve(getenv func(string) string) (Config, error) {
	cfg := Default()

	path, required := f.path, f.path != ""
	if !required {
		path = DefaultPath()
	}
	if err := LoadFile(path, &cfg, required); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	f.fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "log-level":
			cfg.LogLevel = f.cfg.LogLevel
		case "log-format":
			cfg.LogFormat = f.cfg.LogFormat
		case "left":
			cfg.LeftDir = f.cfg.LeftDir
		case "right":
			cfg.RightDir = f.cfg.RightDir
		case "filter":
			cfg.Filter = f.cfg.Filter
		case "interpolation":
			cfg.Interpolation = f.cfg.Interpolation
		case "workers":
			cfg.Workers = f.cfg.Workers
		case "recent-limit":
			cfg.RecentLimit = f.cfg.RecentLimit
		}
	})

	return cfg, cfg.Validate()
}
