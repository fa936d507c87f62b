package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath   string `yaml:"db_path" env:"STREAKCITY_DB"`
	User     string `yaml:"user" env:"STREAKCITY_USER"`
	Timezone string `yaml:"timezone" env:"STREAKCITY_TZ"`

	MinimalMode bool `yaml:"minimal_mode" env:"STREAKCITY_MINIMAL_MODE"`
	FlatTaskXP  int  `yaml:"flat_task_xp" env:"STREAKCITY_FLAT_TASK_XP"`

	Log  LogConfig  `yaml:"log" envPrefix:"STREAKCITY_LOG_"`
	Sync SyncConfig `yaml:"sync" envPrefix:"STREAKCITY_SYNC_"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	// File receives log output; empty means stderr.
	File string `yaml:"file" env:"FILE"`
}

type SyncConfig struct {
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	DSN      string        `yaml:"dsn" env:"DSN"`
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`
}

const (
	DefaultUser     = "main_user"
	DefaultDebounce = 500 * time.Millisecond
)

func Default() Config {
	return Config{
		User:       DefaultUser,
		FlatTaskXP: 10,
		Log:        LogConfig{Level: "warn", Format: "text"},
		Sync:       SyncConfig{Debounce: DefaultDebounce},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "streakcity", "config.yaml"), nil
}

// Load reads defaults, then the YAML file at path, then environment
// overrides. A missing file is only an error when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	c.User = strings.TrimSpace(c.User)
	if c.User == "" {
		return errors.New("config: user is required")
	}
	if c.FlatTaskXP <= 0 {
		return fmt.Errorf("config: flat_task_xp must be positive, got %d", c.FlatTaskXP)
	}
	if c.Sync.Debounce < 0 {
		return fmt.Errorf("config: sync.debounce must not be negative, got %s", c.Sync.Debounce)
	}
	if c.Sync.Enabled && strings.TrimSpace(c.Sync.DSN) == "" {
		return errors.New("config: sync.enabled requires sync.dsn")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, defaulting to the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}
