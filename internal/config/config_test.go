package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "env: production\n"))
	require.NoError(t, err)

	assert.Equal(t, 2390, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join("data", "readaloud.db"), cfg.Database.Path)
	assert.Equal(t, 3, cfg.Reader.RelatedTopicLimit)
	assert.Equal(t, 48, cfg.Reader.HistoryTitleLength)
	assert.Equal(t, "Kore", cfg.Reader.SpeechVoice)
}

func TestLoadParsesProviders(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
port: 8080
env: development
ai:
  providers:
    - id: gemini
      name: Gemini
      type: gemini
      api_key: test-key
      enabled: true
    - id: claude
      name: Claude
      type: anthropic
      api_key: other-key
      default_model: claude-haiku-4-5-20251001
      enabled: true
  solve_model:
    provider_id: claude
reader:
  generate_illustrations: true
  related_topic_limit: 5
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.True(t, cfg.Reader.GenerateIllustrations)
	assert.Equal(t, 5, cfg.Reader.RelatedTopicLimit)

	require.Len(t, cfg.AI.Providers, 2)
	claude := cfg.AI.ProviderByID("claude")
	require.NotNil(t, claude)
	assert.Equal(t, "anthropic", claude.Type)

	require.NotNil(t, cfg.AI.SolveModel)
	assert.Equal(t, "claude", cfg.AI.SolveModel.ProviderID)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("READALOUD_PORT", "9999")
	t.Setenv("READALOUD_ENV", "production")
	t.Setenv("READALOUD_DB_PATH", "/tmp/override.db")

	cfg, err := Load(writeConfig(t, "port: 8080\nenv: development\n"))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
}

func TestLoadGeminiProviderFromEnvKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, "env: development\n"))
	require.NoError(t, err)

	provider := cfg.AI.FirstEnabledProvider()
	require.NotNil(t, provider)
	assert.Equal(t, "gemini", provider.Type)
	assert.Equal(t, "env-key", provider.APIKey)
}

func TestLoadRejectsMysqlWithoutDSN(t *testing.T) {
	_, err := Load(writeConfig(t, "database:\n  driver: mysql\n"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	_, err := Load(writeConfig(t, "database:\n  driver: postgres\n"))
	assert.Error(t, err)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestProviderByIDIgnoresDisabled(t *testing.T) {
	cfg := AIConfig{Providers: []AIProvider{{ID: "x", Enabled: false}}}
	assert.Nil(t, cfg.ProviderByID("x"))
}
