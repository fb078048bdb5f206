// Package config resolves taskdesk settings from defaults, a TOML file, the
// environment and command-line flags (in that order of precedence, lowest first).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	AppName        = "taskdesk"
	ConfigFileName = "config.toml"
	LogFileName    = "taskdesk.log"

	DefaultBaseURL      = "http://localhost:8080/"
	DefaultTimeout      = 15 * time.Second
	DefaultRefetchDelay = 500 * time.Millisecond
	DefaultServeAddr    = ":8080"
	DefaultFormat       = "json"
)

type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RefetchDelay time.Duration
	LogFile      string
	Format       string
	Theme        string
	Glyphs       string
	Debug        bool

	Serve ServeConfig

	// Path is the config file that was read, if any.
	Path string
}

type ServeConfig struct {
	Addr string
	DB   string
}

// fileConfig mirrors config.toml. Durations are strings ("15s", "500ms").
type fileConfig struct {
	BaseURL      *string `toml:"base_url"`
	Timeout      *string `toml:"timeout"`
	RefetchDelay *string `toml:"refetch_delay"`
	LogFile      *string `toml:"log_file"`
	Format       *string `toml:"format"`
	Theme        *string `toml:"theme"`
	Glyphs       *string `toml:"glyphs"`
	Debug        *bool   `toml:"debug"`
	Serve        struct {
		Addr *string `toml:"addr"`
		DB   *string `toml:"db"`
	} `toml:"serve"`
}

func Defaults() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		RefetchDelay: DefaultRefetchDelay,
		LogFile:      filepath.Join(DefaultStateDir(), LogFileName),
		Format:       DefaultFormat,
		Theme:        "auto",
		Glyphs:       "unicode",
		Serve: ServeConfig{
			Addr: DefaultServeAddr,
			DB:   filepath.Join(DefaultStateDir(), "tasks.sqlite"),
		},
	}
}

// Load builds a Config from defaults, the config file and the environment.
// When path is empty the default location is used and a missing file is not an error.
// Flags are applied by the caller afterwards (see Overrides.Apply).
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = filepath.Join(DefaultConfigDir(), ConfigFileName)
	}
	err := loadFile(cfg, path)
	switch {
	case err == nil:
		cfg.Path = path
	case !explicit && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.RefetchDelay != nil {
		d, err := time.ParseDuration(*fc.RefetchDelay)
		if err != nil {
			return fmt.Errorf("refetch_delay: %w", err)
		}
		cfg.RefetchDelay = d
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Format != nil {
		cfg.Format = *fc.Format
	}
	if fc.Theme != nil {
		cfg.Theme = *fc.Theme
	}
	if fc.Glyphs != nil {
		cfg.Glyphs = *fc.Glyphs
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if fc.Serve.Addr != nil {
		cfg.Serve.Addr = *fc.Serve.Addr
	}
	if fc.Serve.DB != nil {
		cfg.Serve.DB = *fc.Serve.DB
	}
	return nil
}

func loadEnv(cfg *Config) error {
	if v := env("TASKDESK_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := env("TASKDESK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TASKDESK_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := env("TASKDESK_REFETCH_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TASKDESK_REFETCH_DELAY: %w", err)
		}
		cfg.RefetchDelay = d
	}
	if v := env("TASKDESK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := env("TASKDESK_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := env("TASKDESK_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := env("TASKDESK_GLYPHS"); v != "" {
		cfg.Glyphs = v
	}
	if v := env("TASKDESK_SERVE_ADDR"); v != "" {
		cfg.Serve.Addr = v
	}
	if v := env("TASKDESK_DB"); v != "" {
		cfg.Serve.DB = v
	}
	return nil
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RefetchDelay < 0 {
		return fmt.Errorf("refetch_delay must not be negative, got %s", c.RefetchDelay)
	}
	switch c.Format {
	case "json", "table":
	default:
		return fmt.Errorf("unknown format: %s", c.Format)
	}
	return nil
}

// Overrides holds flag values; zero values mean "not set".
type Overrides struct {
	BaseURL string
	Timeout time.Duration
	LogFile string
	Format  string
	Debug   bool
}

func (o Overrides) Apply(c *Config) {
	if strings.TrimSpace(o.BaseURL) != "" {
		c.BaseURL = strings.TrimSpace(o.BaseURL)
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if strings.TrimSpace(o.LogFile) != "" {
		c.LogFile = strings.TrimSpace(o.LogFile)
	}
	if strings.TrimSpace(o.Format) != "" {
		c.Format = strings.TrimSpace(o.Format)
	}
	if o.Debug {
		c.Debug = true
	}
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := env("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultStateDir uses XDG_STATE_HOME if set, otherwise $HOME/.local/state.
func DefaultStateDir() string {
	if xdg := env("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".local", "state", AppName)
}

func env(k string) string {
	return strings.TrimSpace(os.Getenv(k))
}
