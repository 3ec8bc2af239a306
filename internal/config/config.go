package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dshills/clihelper/internal/providers"
	"gopkg.in/yaml.v3"
)

// Config represents the clihelper configuration.
type Config struct {
	Provider       string        `yaml:"provider"`
	Model          string        `yaml:"model,omitempty"`
	BaseURL        string        `yaml:"baseURL,omitempty"`
	MaxTokens      int           `yaml:"maxTokens"`
	Temperature    float64       `yaml:"temperature"`
	HistoryLines   int           `yaml:"historyLines"`
	TimeoutSeconds int           `yaml:"timeoutSeconds"`
	Retries        int           `yaml:"retries"`
	Format         string        `yaml:"format"`
	LogLevel       string        `yaml:"logLevel"`
	Cache          CacheConfig   `yaml:"cache"`
	Privacy        PrivacyConfig `yaml:"privacy"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool `yaml:"redactSecrets"`
}

// Default returns a Config with all defaults applied. Model is left empty and
// resolved from the provider by Load.
func Default() Config {
	return Config{
		Provider:       "anthropic",
		MaxTokens:      300,
		Temperature:    0,
		HistoryLines:   10,
		TimeoutSeconds: 60,
		Retries:        0,
		Format:         "text",
		LogLevel:       "warn",
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
	}
}

// Timeout returns the completion call timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks field values that would otherwise fail later at call time.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return errors.Newf("unsupported output format: %s (use text or json)", c.Format)
	}
	if c.MaxTokens <= 0 {
		return errors.Newf("maxTokens must be positive, got %d", c.MaxTokens)
	}
	if c.HistoryLines < 0 {
		return errors.Newf("historyLines must not be negative, got %d", c.HistoryLines)
	}
	if c.Retries < 0 {
		return errors.Newf("retries must not be negative, got %d", c.Retries)
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for clihelper.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clihelper"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "clihelper"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "clihelper"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "clihelper"), nil
	default:
		return filepath.Join(home, ".config", "clihelper"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func readFile() ([]byte, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading config file")
	}
	return data, nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	var cfg Config
	data, err := readFile()
	if err != nil || data == nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parsing config file")
	}
	return cfg, nil
}

// LoadEditable returns defaults overlaid with the config file, without env or
// flag overrides. It is the starting point for `config set`.
func LoadEditable() (Config, error) {
	cfg := Default()
	if err := overlayFile(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	if err := overlayFile(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	mergeOverrides(&cfg, overrides)

	if cfg.Model == "" {
		cfg.Model = providers.DefaultModel(cfg.Provider)
	}
	return cfg, nil
}

// overlayFile decodes the config file on top of dst. Keys absent from the
// file keep their current values, so booleans set to false are honored.
func overlayFile(dst *Config) error {
	data, err := readFile()
	if err != nil || data == nil {
		return err
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return errors.Wrap(err, "parsing config file")
	}
	return nil
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("CLIHELPER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CLIHELPER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CLIHELPER_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("CLIHELPER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	ints := []struct {
		env string
		dst *int
	}{
		{"CLIHELPER_MAX_TOKENS", &cfg.MaxTokens},
		{"CLIHELPER_HISTORY_LINES", &cfg.HistoryLines},
		{"CLIHELPER_TIMEOUT", &cfg.TimeoutSeconds},
		{"CLIHELPER_RETRIES", &cfg.Retries},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s must be an integer", i.env)
		}
		*i.dst = n
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["logLevel"]; ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := overrides["historyLines"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HistoryLines = n
		}
	}
	if v, ok := overrides["maxTokens"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v, ok := overrides["cache"]; ok && v == "off" {
		cfg.Cache.Enabled = false
	}
	if v, ok := overrides["redact"]; ok && v == "off" {
		cfg.Privacy.RedactSecrets = false
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "baseURL":
		cfg.BaseURL = value
	case "format":
		cfg.Format = value
	case "logLevel":
		cfg.LogLevel = value
	case "cache.dir":
		cfg.Cache.Dir = value
	case "maxTokens":
		return setInt(&cfg.MaxTokens, key, value)
	case "historyLines":
		return setInt(&cfg.HistoryLines, key, value)
	case "timeoutSeconds":
		return setInt(&cfg.TimeoutSeconds, key, value)
	case "retries":
		return setInt(&cfg.Retries, key, value)
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Wrap(err, "temperature must be a number")
		}
		cfg.Temperature = f
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "privacy.redactSecrets":
		return setBool(&cfg.Privacy.RedactSecrets, key, value)
	default:
		return errors.Newf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return errors.Wrapf(err, "%s must be an integer", key)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return errors.Wrapf(err, "%s must be true or false", key)
	}
	*dst = b
	return nil
}
