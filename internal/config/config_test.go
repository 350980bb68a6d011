package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "gpt-4o-mini", cfg.Generation.Model)
	assert.Equal(t, 3, cfg.Generation.QuestionsPerChunk)
	assert.Equal(t, 2000, cfg.Chunking.MaxChars)
	assert.Equal(t, 1, cfg.Pipeline.Workers)
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConfig))
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9999
generation:
  model: gpt-4o
  questions_per_chunk: 5
chunking:
  max_chars: 1500
cache:
  max_entries: 500
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, 5, cfg.Generation.QuestionsPerChunk)
	assert.Equal(t, 1500, cfg.Chunking.MaxChars)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	// Unspecified values keep defaults.
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  not yaml: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConfig))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DIALOGUEFORGE_MODEL", "env-model")
	t.Setenv("DIALOGUEFORGE_WORKERS", "4")
	t.Setenv("DIALOGUEFORGE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.Generation.Model)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoad_APIKeyFallback(t *testing.T) {
	t.Setenv("DIALOGUEFORGE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "conventional-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "conventional-key", cfg.Generation.APIKey)

	t.Setenv("DIALOGUEFORGE_API_KEY", "specific-key")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "specific-key", cfg.Generation.APIKey)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad database driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"bad style", func(c *Config) { c.Generation.Style = "debate" }},
		{"zero questions", func(c *Config) { c.Generation.QuestionsPerChunk = 0 }},
		{"too many questions", func(c *Config) { c.Generation.QuestionsPerChunk = domain.MaxQuestionsPerChunk + 1 }},
		{"negative temperature", func(c *Config) { c.Generation.Temperature = -0.1 }},
		{"huge temperature", func(c *Config) { c.Generation.Temperature = 2.5 }},
		{"zero max chars", func(c *Config) { c.Chunking.MaxChars = 0 }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindConfig))
		})
	}
}
