package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	FrontendURL string           `json:"frontend_url"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Embedding   EmbeddingConfig  `json:"embedding"`
	Chroma      ChromaConfig     `json:"chroma"`
	LLM         LLMConfig        `json:"llm"`
	Warmup      WarmupConfig     `json:"warmup"`
	// RateLimitSeconds throttles the chat endpoints per client; zero disables.
	RateLimitSeconds int `json:"rate_limit_seconds"`
}

type EmbeddingConfig struct {
	URL string `json:"url"`
	// Model is only sent in direct mode.
	Model string `json:"model"`
	// Direct talks straight to an Ollama-style embeddings endpoint instead
	// of the proxy service.
	Direct          bool `json:"direct"`
	CacheSize       int  `json:"cache_size"`
	CacheTTLMinutes int  `json:"cache_ttl_minutes"`
}

type ChromaConfig struct {
	URL string `json:"url"`
	// CollectionID is the collection UUID. The collection also has a human
	// name, but the API is always addressed by UUID.
	CollectionID    string `json:"collection_id"`
	Dimension       int    `json:"dimension"`
	DefaultTopK     int    `json:"default_top_k"`
	MaxTopK         int    `json:"max_top_k"`
	CacheSize       int    `json:"cache_size"`
	CacheTTLMinutes int    `json:"cache_ttl_minutes"`
}

type LLMConfig struct {
	URL            string `json:"url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type WarmupConfig struct {
	// CronSpec schedules the embedding cache warmup; empty disables it.
	CronSpec string `json:"cron_spec"`
}

// Load reads the JSON config at path and fills in defaults. An empty path
// yields a pure-default config, which targets loopback services.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if env := os.Getenv("FRONTEND_URL"); env != "" {
		cfg.FrontendURL = env
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:5173"
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Embedding.URL == "" {
		cfg.Embedding.URL = "http://localhost:5000/embed"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.CacheTTLMinutes == 0 {
		cfg.Embedding.CacheTTLMinutes = 120
	}
	if cfg.Chroma.URL == "" {
		cfg.Chroma.URL = "http://localhost:8000"
	}
	if cfg.Chroma.CollectionID == "" {
		cfg.Chroma.CollectionID = "4b704b22-bbe9-4f7c-a8d2-9c5cb5e6cc1b"
	}
	if cfg.Chroma.Dimension == 0 {
		cfg.Chroma.Dimension = 768
	}
	if cfg.Chroma.DefaultTopK == 0 {
		cfg.Chroma.DefaultTopK = 20
	}
	if cfg.Chroma.MaxTopK == 0 {
		cfg.Chroma.MaxTopK = 20
	}
	if cfg.Chroma.CacheSize == 0 {
		cfg.Chroma.CacheSize = 1000
	}
	if cfg.Chroma.CacheTTLMinutes == 0 {
		cfg.Chroma.CacheTTLMinutes = 30
	}
	if cfg.LLM.URL == "" {
		cfg.LLM.URL = "http://localhost:11434"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "deepseek-r1:1.5b"
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 120
	}
}
