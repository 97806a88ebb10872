package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when the merged config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix prefixes every environment variable reviser reads.
const EnvPrefix = "REVISER_"

// Config represents the reviser configuration.
type Config struct {
	Manifest       string        `mapstructure:"manifest" json:"manifest" validate:"required"`
	Development    bool          `mapstructure:"development" json:"development"`
	PatchSource    bool          `mapstructure:"patchSource" json:"patchSource"`
	CacheFile      string        `mapstructure:"cacheFile" json:"cacheFile" validate:"required,excludesall=/\\"`
	StateDir       string        `mapstructure:"stateDir" json:"stateDir,omitempty"`
	VCSTimeout     time.Duration `mapstructure:"vcsTimeout" json:"vcsTimeout" validate:"gt=0"`
	LogLevel       string        `mapstructure:"logLevel" json:"logLevel" validate:"oneof=debug info warn error"`
	OnRevised      string        `mapstructure:"onRevised" json:"onRevised,omitempty"`
	CommandTimeout time.Duration `mapstructure:"commandTimeout" json:"commandTimeout" validate:"gt=0"`
	Watch          WatchConfig   `mapstructure:"watch" json:"watch"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" json:"debounce" validate:"gt=0"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Manifest:       "reviser.yaml",
		Development:    false,
		PatchSource:    true,
		CacheFile:      "LATEST_COMMIT",
		VCSTimeout:     5 * time.Second,
		LogLevel:       "info",
		CommandTimeout: 30 * time.Second,
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
	}
}

// keys maps each config key to its environment variable suffix.
var keys = []struct {
	key, env string
}{
	{"manifest", "MANIFEST"},
	{"development", "DEVELOPMENT"},
	{"patchSource", "PATCH_SOURCE"},
	{"cacheFile", "CACHE_FILE"},
	{"stateDir", "STATE_DIR"},
	{"vcsTimeout", "VCS_TIMEOUT"},
	{"logLevel", "LOG_LEVEL"},
	{"onRevised", "ON_REVISED"},
	{"commandTimeout", "COMMAND_TIMEOUT"},
	{"watch.debounce", "WATCH_DEBOUNCE"},
}

// Keys returns every settable config key.
func Keys() []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.key
	}
	return out
}

// ConfigDir returns the platform-appropriate config directory for reviser.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reviser"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "reviser"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "reviser"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "reviser"), nil
	default:
		return filepath.Join(home, ".config", "reviser"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile returns the defaults overlaid with the config file, ignoring the
// environment. A missing file yields the defaults.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	v, err := newViper(path, false)
	if err != nil {
		return Config{}, err
	}
	return decode(v)
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg as the indented JSON written to the config file.
// Durations are written as strings so the file stays hand-editable.
func Marshal(cfg Config) ([]byte, error) {
	data, err := json.MarshalIndent(fileView(cfg), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return append(data, '\n'), nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only set flags should be present).
func Load(overrides map[string]string) (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	v, err := newViper(path, true)
	if err != nil {
		return Config{}, err
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if !isKey(key) {
			return Config{}, fmt.Errorf("unknown config key: %s", key)
		}
		v.Set(key, value)
	}
	cfg, err := decode(v)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its field constraints.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func newViper(path string, withEnv bool) (*viper.Viper, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("development", d.Development)
	v.SetDefault("patchSource", d.PatchSource)
	v.SetDefault("cacheFile", d.CacheFile)
	v.SetDefault("stateDir", d.StateDir)
	v.SetDefault("vcsTimeout", d.VCSTimeout)
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("onRevised", d.OnRevised)
	v.SetDefault("commandTimeout", d.CommandTimeout)
	v.SetDefault("watch.debounce", d.Watch.Debounce)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if withEnv {
		for _, k := range keys {
			if err := v.BindEnv(k.key, EnvPrefix+k.env); err != nil {
				return nil, fmt.Errorf("binding env for %s: %w", k.key, err)
			}
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func fileView(cfg Config) map[string]any {
	m := map[string]any{
		"manifest":       cfg.Manifest,
		"development":    cfg.Development,
		"patchSource":    cfg.PatchSource,
		"cacheFile":      cfg.CacheFile,
		"vcsTimeout":     cfg.VCSTimeout.String(),
		"logLevel":       cfg.LogLevel,
		"commandTimeout": cfg.CommandTimeout.String(),
		"watch": map[string]any{
			"debounce": cfg.Watch.Debounce.String(),
		},
	}
	if cfg.StateDir != "" {
		m["stateDir"] = cfg.StateDir
	}
	if cfg.OnRevised != "" {
		m["onRevised"] = cfg.OnRevised
	}
	return m
}

func isKey(key string) bool {
	for _, k := range keys {
		if k.key == key {
			return true
		}
	}
	return false
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "manifest":
		cfg.Manifest = value
	case "development":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("development must be a boolean: %w", err)
		}
		cfg.Development = b
	case "patchSource":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("patchSource must be a boolean: %w", err)
		}
		cfg.PatchSource = b
	case "cacheFile":
		cfg.CacheFile = value
	case "stateDir":
		cfg.StateDir = value
	case "vcsTimeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("vcsTimeout must be a duration: %w", err)
		}
		cfg.VCSTimeout = d
	case "logLevel":
		cfg.LogLevel = strings.ToLower(value)
	case "onRevised":
		cfg.OnRevised = value
	case "commandTimeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("commandTimeout must be a duration: %w", err)
		}
		cfg.CommandTimeout = d
	case "watch.debounce":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("watch.debounce must be a duration: %w", err)
		}
		cfg.Watch.Debounce = d
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
