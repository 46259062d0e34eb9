package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "BUDDY_ANTHROPIC_API_KEY", "BUDDY_PROVIDER", "BUDDY_DB", "BUDDY_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buddy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(New(filepath.Join(t.TempDir(), "missing.yaml")))
	// An explicitly named file that does not exist is an error.
	require.Error(t, err)
	assert.Nil(t, cfg)

	v := New("")
	v.SetConfigName("buddy-test-none")
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.EqualValues(t, 1024, cfg.MaxTokens)
	assert.True(t, cfg.Fallback)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, filepath.Join(DefaultDir(), "buddy.db"), cfg.DB)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
provider: openai
model: gpt-4o-mini
fallback: false
cache_size: 16
log:
  level: debug
  format: text
cors_origins: ["http://localhost:3000"]
`)
	t.Setenv("BUDDY_DB", "/tmp/env.db")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-1234567890")
	t.Setenv("BUDDY_LOG_LEVEL", "warn")

	cfg, err := Load(New(path))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.False(t, cfg.Fallback)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, "/tmp/env.db", cfg.DB)
	assert.Equal(t, "sk-ant-1234567890", cfg.AnthropicAPIKey)
	assert.Equal(t, "warn", cfg.Log.Level, "env overrides the file")
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)

	lc := cfg.LLM()
	assert.Equal(t, "openai", lc.Provider)
	assert.Equal(t, "sk-ant-1234567890", lc.AnthropicAPIKey)
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUDDY_PROVIDER", "openai")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("provider", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--provider", "static", "--log-level", "error"}))

	v := New("")
	v.SetConfigName("buddy-test-none")
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.Provider)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "provider: gemini\n")
	_, err := Load(New(path))
	assert.ErrorContains(t, err, "unknown provider")

	path = writeFile(t, "cache_size: 0\n")
	_, err = Load(New(path))
	assert.ErrorContains(t, err, "cache_size")
}

func TestYAMLRedactsKeys(t *testing.T) {
	cfg := Config{Provider: "anthropic", AnthropicAPIKey: "sk-ant-abcdefghijkl", OpenAIAPIKey: "short"}
	out, err := cfg.YAML()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, "sk-a****kl", got["anthropic_api_key"])
	assert.Equal(t, "****", got["openai_api_key"])
	assert.NotContains(t, string(out), "abcdefghijkl")
	assert.Equal(t, "sk-ant-abcdefghijkl", cfg.AnthropicAPIKey, "original is untouched")
}
