// Package config loads taskdeck settings from defaults, ~/.taskdeck/config.yaml,
// .env files and TASKDECK_* environment variables, in increasing precedence.
// Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix   = "TASKDECK"
	envDir      = "TASKDECK_CONFIG_DIR"
	fileName    = "config.yaml"
	logFileName = "taskdeck.log"
)

type Config struct {
	API   APIConfig   `mapstructure:"api"`
	Focus FocusConfig `mapstructure:"focus"`
	Lang  string      `mapstructure:"lang"`
	Log   LogConfig   `mapstructure:"log"`
}

type APIConfig struct {
	URL         string        `mapstructure:"url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Mock        bool          `mapstructure:"mock"`
	MockLatency time.Duration `mapstructure:"mock_latency"`
}

type FocusConfig struct {
	Work     time.Duration `mapstructure:"work"`
	Break    time.Duration `mapstructure:"break"`
	Sessions int           `mapstructure:"sessions"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File is where the TUI writes its log. Empty means <config dir>/taskdeck.log.
	File string `mapstructure:"file"`
}

var defaults = map[string]any{
	"api.url":          "http://localhost:8080/api",
	"api.timeout":      "10s",
	"api.mock":         false,
	"api.mock_latency": "300ms",
	"focus.work":       "25m",
	"focus.break":      "5m",
	"focus.sessions":   4,
	"lang":             "en",
	"log.level":        "info",
	"log.file":         "",
}

// Dir is the directory holding config.yaml and the TUI log.
func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.taskdeck).
	if v := strings.TrimSpace(os.Getenv(envDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskdeck"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the configuration from Dir.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads dir/config.yaml (optional) and the environment. Variables
// from ./.env and dir/.env are exported first without overriding variables
// that are already set.
func LoadFrom(dir string) (*Config, error) {
	loadDotEnv(".env", filepath.Join(dir, ".env"))

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if strings.TrimSpace(cfg.Log.File) == "" {
		cfg.Log.File = filepath.Join(dir, logFileName)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.url: %q is not an absolute URL", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout: must be positive (got %s)", c.API.Timeout)
	}
	if c.API.MockLatency < 0 {
		return fmt.Errorf("api.mock_latency: must not be negative (got %s)", c.API.MockLatency)
	}
	if c.Focus.Work < time.Second || c.Focus.Break < time.Second {
		return errors.New("focus.work and focus.break must be at least 1s")
	}
	if c.Focus.Sessions < 1 {
		return fmt.Errorf("focus.sessions: must be at least 1 (got %d)", c.Focus.Sessions)
	}
	switch c.Lang {
	case "en", "fr":
	default:
		return fmt.Errorf("lang: unsupported language %q (want en or fr)", c.Lang)
	}
	return nil
}

// Setting is one resolved key/value pair, used by `taskdeck config show`.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Settings flattens c into dotted keys, sorted.
func (c *Config) Settings() []Setting {
	m := map[string]string{
		"api.url":          c.API.URL,
		"api.timeout":      c.API.Timeout.String(),
		"api.mock":         fmt.Sprint(c.API.Mock),
		"api.mock_latency": c.API.MockLatency.String(),
		"focus.work":       c.Focus.Work.String(),
		"focus.break":      c.Focus.Break.String(),
		"focus.sessions":   fmt.Sprint(c.Focus.Sessions),
		"lang":             c.Lang,
		"log.level":        c.Log.Level,
		"log.file":         c.Log.File,
	}
	out := make([]Setting, 0, len(m))
	for k, v := range m {
		out = append(out, Setting{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
