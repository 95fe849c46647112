package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	want := Default()
	want.Service.APIKey = cfg.Service.APIKey
	assert.Equal(t, want, cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "textfill.yaml", `
endpoint: http://localhost:8080/api/generate
timeout: 15s
retry:
  attempts: 3
  base_delay: 250ms
redis:
  addr: localhost:6379
service:
  backend: gemini
  max_concurrent: "2"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api/generate", cfg.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, Retry{Attempts: 3, BaseDelay: 250 * time.Millisecond}, cfg.Retry)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "textfill:", cfg.Redis.Prefix, "unset keys keep their default")
	assert.Equal(t, "gemini", cfg.Service.Backend)
	assert.Equal(t, 2, cfg.Service.MaxConcurrent)
}

func TestLoad_Selection(t *testing.T) {
	path := write(t, "textfill.yaml", `
selection:
  source: document
  envelope_keys: [payload, pluginMessage]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "document", cfg.Selection.Source)
	assert.Equal(t, []string{"payload", "pluginMessage"}, cfg.Selection.EnvelopeKeys)

	t.Setenv("TEXTFILL_SELECTION_SOURCE", "page")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "page", cfg.Selection.Source)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "textfill.json", `{"log_level":"debug","retry":{"attempts":2,"base_delay":"1s"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := write(t, "textfill.yaml", "endpoint: http://file\nretry:\n  attempts: 2\n")
	t.Setenv("TEXTFILL_ENDPOINT", "http://env")
	t.Setenv("TEXTFILL_RETRY_ATTEMPTS", "4")
	t.Setenv("TEXTFILL_TIMEOUT", "5s")
	t.Setenv("TEXTFILL_API_KEY", "sk-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.Endpoint)
	assert.Equal(t, 4, cfg.Retry.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "sk-env", cfg.Service.APIKey)
}

func TestLoad_ProviderKeyFallback(t *testing.T) {
	t.Setenv("TEXTFILL_API_KEY", "")
	os.Unsetenv("TEXTFILL_API_KEY")
	t.Setenv("DASHSCOPE_API_KEY", "sk-dashscope")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-dashscope", cfg.Service.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":     "endpont: http://typo\n",
		"bad duration":    "timeout: soon\n",
		"zero attempts":   "retry:\n  attempts: 0\n",
		"unknown backend": "service:\n  backend: llama\n",
		"unknown source":  "selection:\n  source: layers\n",
		"bad yaml":        "retry: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, "textfill.yaml", content))
			assert.Error(t, err)
		})
	}
}
