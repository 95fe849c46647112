// Package config loads textfill settings from a YAML or JSON file with
// TEXTFILL_* environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing file is fine.
const DefaultPath = "textfill.yaml"

// Config is the full settings tree.
type Config struct {
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	LogLevel  string        `yaml:"log_level"`
	Retry     Retry         `yaml:"retry"`
	Selection Selection     `yaml:"selection"`
	Redis     Redis         `yaml:"redis"`
	Service   Service       `yaml:"service"`
}

// Selection tunes how commands and selections are read from the host.
type Selection struct {
	// Source is "auto" (page, then document), "page" or "document".
	Source string `yaml:"source"`
	// EnvelopeKeys replaces the fields a wrapped UI command may sit under.
	EnvelopeKeys []string `yaml:"envelope_keys"`
}

// Retry configures the transport-error backoff around the generation client.
type Retry struct {
	Attempts  int           `yaml:"attempts"`
	BaseDelay time.Duration `yaml:"base_delay"`
}

// Redis enables the per-document distributed lock when Addr is set.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Prefix   string        `yaml:"prefix"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
	LockWait time.Duration `yaml:"lock_wait"`
}

// Service configures `textfill serve`.
type Service struct {
	Addr          string `yaml:"addr"`
	Backend       string `yaml:"backend"` // qwen | openai | gemini
	Model         string `yaml:"model"`
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	MaxInput      int    `yaml:"max_input"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Timeout:  60 * time.Second,
		LogLevel: "info",
		Retry: Retry{
			Attempts:  1,
			BaseDelay: 500 * time.Millisecond,
		},
		Selection: Selection{
			Source: "auto",
		},
		Redis: Redis{
			Prefix:   "textfill:",
			LockTTL:  2 * time.Minute,
			LockWait: 10 * time.Second,
		},
		Service: Service{
			Addr:          ":8080",
			Backend:       "qwen",
			MaxConcurrent: 8,
			MaxInput:      4096,
		},
	}
}

// envKeys maps environment variables to dotted config keys.
var envKeys = map[string]string{
	"TEXTFILL_ENDPOINT":               "endpoint",
	"TEXTFILL_TIMEOUT":                "timeout",
	"TEXTFILL_LOG_LEVEL":              "log_level",
	"TEXTFILL_RETRY_ATTEMPTS":         "retry.attempts",
	"TEXTFILL_RETRY_BASE_DELAY":       "retry.base_delay",
	"TEXTFILL_SELECTION_SOURCE":       "selection.source",
	"TEXTFILL_REDIS_ADDR":             "redis.addr",
	"TEXTFILL_REDIS_PREFIX":           "redis.prefix",
	"TEXTFILL_SERVICE_ADDR":           "service.addr",
	"TEXTFILL_SERVICE_BACKEND":        "service.backend",
	"TEXTFILL_SERVICE_MODEL":          "service.model",
	"TEXTFILL_SERVICE_BASE_URL":       "service.base_url",
	"TEXTFILL_SERVICE_MAX_CONCURRENT": "service.max_concurrent",
	"TEXTFILL_API_KEY":                "service.api_key",
}

// Load reads path (YAML, or JSON by extension) over the defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if strings.EqualFold(filepath.Ext(path), ".json") {
				if err := json.Unmarshal(data, &raw); err != nil {
					return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
				}
			} else if err := yaml.Unmarshal(data, &raw); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	for env, key := range envKeys {
		if val, ok := os.LookupEnv(env); ok {
			setPath(raw, key, val)
		}
	}

	cfg := Default()
	if cfg.Service.APIKey == "" {
		cfg.Service.APIKey = firstEnv("DASHSCOPE_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY")
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1")
	}
	switch strings.ToLower(c.Selection.Source) {
	case "", "auto", "page", "document":
	default:
		return fmt.Errorf("unknown selection.source %q", c.Selection.Source)
	}
	switch strings.ToLower(c.Service.Backend) {
	case "qwen", "openai", "gemini":
	default:
		return fmt.Errorf("unknown service.backend %q", c.Service.Backend)
	}
	return nil
}

func setPath(raw map[string]any, key, val string) {
	parts := strings.Split(key, ".")
	m := raw
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
