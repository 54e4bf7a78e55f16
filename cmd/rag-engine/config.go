// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/rag-engine/internal/chat"
	"github.com/pdiddy/rag-engine/internal/chunk"
	"github.com/pdiddy/rag-engine/internal/corpus"
	"github.com/pdiddy/rag-engine/internal/rag"
	"github.com/pdiddy/rag-engine/internal/secrets"
	"github.com/pdiddy/rag-engine/pkg/types"
)

const (
	defaultCorpusPath = "knowledge_base.txt"
	defaultPersistDir = "./chroma_db"
)

func setDefaults() {
	viper.SetDefault("corpus.path", defaultCorpusPath)
	viper.SetDefault("corpus.include", corpus.DefaultInclude)

	viper.SetDefault("chunk.size", chunk.DefaultSize)
	viper.SetDefault("chunk.overlap", chunk.DefaultOverlap)

	viper.SetDefault("embedding.provider", types.ProviderHash)
	viper.SetDefault("embedding.device", "cpu")
	viper.SetDefault("embedding.normalize", true)
	viper.SetDefault("embedding.dimensions", 0)
	viper.SetDefault("embedding.batch_size", 16)
	viper.SetDefault("embedding.max_retries", 5)

	viper.SetDefault("store.persist_dir", defaultPersistDir)
	viper.SetDefault("store.force_rebuild", false)
	viper.SetDefault("store.top_k", rag.DefaultTopK)

	viper.SetDefault("chat.model", chat.DefaultModel)
	viper.SetDefault("chat.base_url", chat.DefaultBaseURL)
	viper.SetDefault("chat.temperature", 0)
	viper.SetDefault("chat.timeout", 2*time.Minute)
	viper.SetDefault("chat.max_retries", 5)
}

// loadConfig assembles the configuration from defaults, the config file,
// RAG_ENGINE_* environment variables and flags, then fills API keys from
// the environment and .secrets/.
func loadConfig() (types.Config, error) {
	cfg := types.Config{
		Corpus: types.CorpusConfig{
			Path:    viper.GetString("corpus.path"),
			Include: viper.GetStringSlice("corpus.include"),
		},
		Chunk: types.ChunkConfig{
			Size:    viper.GetInt("chunk.size"),
			Overlap: viper.GetInt("chunk.overlap"),
		},
		Embedding: types.EmbeddingConfig{
			Provider:   viper.GetString("embedding.provider"),
			Model:      viper.GetString("embedding.model"),
			Device:     viper.GetString("embedding.device"),
			Normalize:  viper.GetBool("embedding.normalize"),
			Dimensions: viper.GetInt("embedding.dimensions"),
			BatchSize:  viper.GetInt("embedding.batch_size"),
			BaseURL:    viper.GetString("embedding.base_url"),
			MaxRetries: viper.GetInt("embedding.max_retries"),
		},
		Store: types.StoreConfig{
			PersistDir:   viper.GetString("store.persist_dir"),
			ForceRebuild: viper.GetBool("store.force_rebuild"),
			TopK:         viper.GetInt("store.top_k"),
		},
		Chat: types.ChatConfig{
			Model:       viper.GetString("chat.model"),
			BaseURL:     viper.GetString("chat.base_url"),
			Temperature: float32(viper.GetFloat64("chat.temperature")),
			Timeout:     viper.GetDuration("chat.timeout"),
			MaxRetries:  viper.GetInt("chat.max_retries"),
		},
	}

	cfg.Embedding.APIKey = loadedSecrets.Resolve(viper.GetString("embedding.api_key"), secrets.OpenAI, secrets.DashScope)
	cfg.Chat.APIKey = loadedSecrets.Resolve(viper.GetString("chat.api_key"), secrets.DashScope, secrets.OpenAI)

	// Empty strings from a config file mean "not set".
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = defaultCorpusPath
	}
	if cfg.Store.PersistDir == "" {
		cfg.Store.PersistDir = defaultPersistDir
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = types.ProviderHash
	}
	if cfg.Store.TopK <= 0 {
		return types.Config{}, fmt.Errorf("store.top_k must be positive, got %d: %w", cfg.Store.TopK, types.ErrInvalidParameter)
	}
	return cfg, nil
}
