package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	require.Equal(t, "http://localhost:5000/embed", cfg.Embedding.URL)
	require.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	require.Equal(t, 10000, cfg.Embedding.CacheSize)
	require.Equal(t, 120, cfg.Embedding.CacheTTLMinutes)
	require.Equal(t, "http://localhost:8000", cfg.Chroma.URL)
	require.Equal(t, "4b704b22-bbe9-4f7c-a8d2-9c5cb5e6cc1b", cfg.Chroma.CollectionID)
	require.Equal(t, 768, cfg.Chroma.Dimension)
	require.Equal(t, 20, cfg.Chroma.DefaultTopK)
	require.Equal(t, 20, cfg.Chroma.MaxTopK)
	require.Equal(t, "http://localhost:11434", cfg.LLM.URL)
	require.Equal(t, "deepseek-r1:1.5b", cfg.LLM.Model)
	require.Equal(t, 120, cfg.LLM.TimeoutSeconds)
	require.Zero(t, cfg.RateLimitSeconds)
	require.Empty(t, cfg.Warmup.CronSpec)
}

func TestLoad_FrontendURLEnvOverride(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://slainte.example.ie")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://slainte.example.ie", cfg.FrontendURL)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"port": 9090,
		"embedding": {"url": "http://embed:5000/embed", "direct": true},
		"chroma": {"default_top_k": 10},
		"llm": {"model": "llama3"},
		"warmup": {"cron_spec": "0 * * * *"},
		"rate_limit_seconds": 2
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "http://embed:5000/embed", cfg.Embedding.URL)
	require.True(t, cfg.Embedding.Direct)
	require.Equal(t, 10, cfg.Chroma.DefaultTopK)
	require.Equal(t, 20, cfg.Chroma.MaxTopK, "unset fields still get defaults")
	require.Equal(t, "llama3", cfg.LLM.Model)
	require.Equal(t, "0 * * * *", cfg.Warmup.CronSpec)
	require.Equal(t, 2, cfg.RateLimitSeconds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
