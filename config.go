package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"gregoryjjb/ringtool/puzzles"
)

// ErrValidation is shared with puzzles so every bad input matches one sentinel.
var ErrValidation = puzzles.ErrValidation

const (
	DefaultConfigName    = "ringtool.toml"
	DefaultDataDirName   = ".ringtool"
	DefaultHost          = "127.0.0.1"
	DefaultPort          = "1225"
	DefaultHistorySize   = 32
	DefaultProgressEvery = puzzles.DefaultProgressEvery
)

// Flags are the command line overrides; empty fields fall through to the
// environment and then the config file.
type Flags struct {
	ConfigPath string
	Host       string
	Port       string
	DataDir    string
	LogLevel   string
}

type tomlConfig struct {
	DataDir       string                    `toml:"data_dir"`
	HistorySize   int                       `toml:"history_size"`
	ProgressEvery int                       `toml:"progress_every"`
	LogLevel      string                    `toml:"log_level"`
	Defaults      map[string]puzzles.Params `toml:"defaults"`
}

type Config struct {
	flags  Flags
	getenv func(string) string
	toml   tomlConfig

	path     string
	dataDir  string
	logLevel zerolog.Level
}

func NewConfig(fsys RingFS, flags Flags, getenv func(string) string) (*Config, error) {
	c := &Config{
		flags:  flags,
		getenv: getenv,
	}

	path, explicit := flags.ConfigPath, true
	if path == "" {
		path = getenv("RINGTOOL_CONFIG")
	}
	if path == "" {
		path, explicit = DefaultConfigName, false
	}

	abs, err := fsys.Abs(path)
	if err != nil {
		return nil, err
	}
	c.path = abs

	if err := c.load(fsys); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			c.path = ""
		} else {
			return nil, err
		}
	}

	if err := c.resolve(fsys); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) load(fsys RingFS) error {
	f, err := fsys.Open(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := toml.NewDecoder(f).DisallowUnknownFields()
	if err := d.Decode(&c.toml); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s: %s", ErrValidation, c.path, strict.String())
		}
		return fmt.Errorf("config %s: %w", c.path, err)
	}
	return nil
}

func (c *Config) resolve(fsys RingFS) error {
	dir := firstNonEmpty(c.flags.DataDir, c.getenv("RINGTOOL_DATA_DIR"))
	if dir == "" && c.toml.DataDir != "" {
		dir = c.toml.DataDir
		// relative to the config file, not the working directory
		if !filepath.IsAbs(dir) && c.path != "" {
			dir = filepath.Join(filepath.Dir(c.path), dir)
		}
	}
	if dir == "" {
		home, err := fsys.HomeDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		dir = filepath.Join(home, DefaultDataDirName)
	}
	abs, err := fsys.Abs(dir)
	if err != nil {
		return err
	}
	c.dataDir = abs

	level := firstNonEmpty(c.flags.LogLevel, c.getenv("LOG_LEVEL"), c.toml.LogLevel, "info")
	c.logLevel, err = zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: log level %q", ErrValidation, level)
	}

	if c.toml.HistorySize < 0 {
		return fmt.Errorf("%w: history_size must not be negative", ErrValidation)
	}
	if c.toml.ProgressEvery < 0 {
		return fmt.Errorf("%w: progress_every must not be negative", ErrValidation)
	}

	if _, err := strconv.Atoi(c.Port()); err != nil {
		return fmt.Errorf("%w: port %q", ErrValidation, c.Port())
	}

	for name, params := range c.toml.Defaults {
		pz, err := puzzles.Lookup(name)
		if err != nil {
			return fmt.Errorf("%w: [defaults.%s]: %w", ErrValidation, name, err)
		}
		if err := pz.Validate(params); err != nil {
			return fmt.Errorf("[defaults.%s]: %w", name, err)
		}
	}
	return nil
}

// Path of the config file that was read, empty if none was.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Host() string {
	return firstNonEmpty(c.flags.Host, c.getenv("HOST"), DefaultHost)
}

func (c *Config) Port() string {
	return firstNonEmpty(c.flags.Port, c.getenv("PORT"), DefaultPort)
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Host(), c.Port())
}

func (c *Config) DataDir() string {
	return c.dataDir
}

func (c *Config) HistorySize() int {
	if c.toml.HistorySize == 0 {
		return DefaultHistorySize
	}
	return c.toml.HistorySize
}

func (c *Config) ProgressEvery() int {
	if c.toml.ProgressEvery == 0 {
		return DefaultProgressEvery
	}
	return c.toml.ProgressEvery
}

func (c *Config) LogLevel() zerolog.Level {
	return c.logLevel
}

// PuzzleDefaults returns the configured overrides for a puzzle, possibly nil.
func (c *Config) PuzzleDefaults(name string) puzzles.Params {
	return c.toml.Defaults[name]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
