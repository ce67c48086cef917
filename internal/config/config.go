// Package config resolves runtime settings. Sources, lowest precedence first: built-in
// defaults, an optional YAML file, a .env file, the process environment. Command-line
// flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"shoplist/internal/store"
)

// EnvConfigPath names the YAML file when --config isn't given.
const EnvConfigPath = "SHOPLIST_CONFIG"

type Config struct {
	BotToken string `yaml:"bot_token"`
	// ChatID pins the bot to one chat; 0 serves whichever chat writes first.
	ChatID int64 `yaml:"chat_id"`

	DataPath   string `yaml:"data_path"`
	Backend    string `yaml:"backend"`
	ImportJSON string `yaml:"import_json"`

	RenderDelay  time.Duration `yaml:"render_delay"`
	Timezone     string        `yaml:"timezone"`
	SaveAttempts int           `yaml:"save_attempts"`
	CallTimeout  time.Duration `yaml:"call_timeout"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`
}

func Default() Config {
	return Config{
		DataPath:     "products.json",
		Backend:      string(store.BackendJSON),
		RenderDelay:  500 * time.Millisecond,
		Timezone:     "Local",
		SaveAttempts: 2,
		CallTimeout:  10 * time.Second,
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// Load resolves the configuration. path may be empty, in which case SHOPLIST_CONFIG is
// consulted; a missing file is only an error when one was named explicitly. The result
// is not validated: callers apply their flags and then call Validate.
func Load(path string) (Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (Config, error) {
	cfg := Default()

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
	}

	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"BOT_TOKEN":             &c.BotToken,
		"SHOPLIST_DATA":         &c.DataPath,
		"SHOPLIST_BACKEND":      &c.Backend,
		"SHOPLIST_IMPORT_JSON":  &c.ImportJSON,
		"SHOPLIST_TIMEZONE":     &c.Timezone,
		"SHOPLIST_LOG_LEVEL":    &c.LogLevel,
		"SHOPLIST_LOG_FORMAT":   &c.LogFormat,
		"SHOPLIST_METRICS_ADDR": &c.MetricsAddr,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("SHOPLIST_CHAT_ID"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SHOPLIST_CHAT_ID: %w", err)
		}
		c.ChatID = n
	}
	if v, ok := lookup("SHOPLIST_SAVE_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHOPLIST_SAVE_ATTEMPTS: %w", err)
		}
		c.SaveAttempts = n
	}
	durations := map[string]*time.Duration{
		"SHOPLIST_RENDER_DELAY": &c.RenderDelay,
		"SHOPLIST_CALL_TIMEOUT": &c.CallTimeout,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// lookup treats set-but-blank variables as unset.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return errors.New("data_path must not be empty")
	}
	if _, err := store.ParseBackend(c.Backend); err != nil {
		return err
	}
	if c.RenderDelay < 0 {
		return fmt.Errorf("render_delay must not be negative: %s", c.RenderDelay)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("call_timeout must not be negative: %s", c.CallTimeout)
	}
	if c.SaveAttempts < 1 {
		return fmt.Errorf("save_attempts must be at least 1: %d", c.SaveAttempts)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil || strings.TrimSpace(c.LogLevel) == "" {
		return fmt.Errorf("unknown log_level: %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format: %q", c.LogFormat)
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return loc, nil
}

// StoreOptions describes the gateway this configuration selects.
func (c Config) StoreOptions() (store.Options, error) {
	b, err := store.ParseBackend(c.Backend)
	if err != nil {
		return store.Options{}, err
	}
	return store.Options{Backend: b, Path: c.DataPath, ImportJSON: c.ImportJSON}, nil
}
