// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rag-engine/internal/chat"
	"github.com/pdiddy/rag-engine/internal/provision"
	"github.com/pdiddy/rag-engine/internal/secrets"
	"github.com/pdiddy/rag-engine/pkg/types"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	configureEnv()
	loadedSecrets = secrets.Set{}
	for _, k := range []secrets.Key{secrets.OpenAI, secrets.DashScope} {
		t.Setenv(k.Env, "")
	}
	t.Cleanup(viper.Reset)
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetConfig(t)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "knowledge_base.txt", cfg.Corpus.Path)
	assert.Equal(t, 500, cfg.Chunk.Size)
	assert.Equal(t, 50, cfg.Chunk.Overlap)
	assert.Equal(t, types.ProviderHash, cfg.Embedding.Provider)
	assert.Empty(t, cfg.Embedding.Model, "the backend picks its own default model")
	assert.True(t, cfg.Embedding.Normalize)
	assert.Equal(t, "./chroma_db", cfg.Store.PersistDir)
	assert.Equal(t, 4, cfg.Store.TopK)
	assert.False(t, cfg.Store.ForceRebuild)
	assert.Equal(t, chat.DefaultModel, cfg.Chat.Model)
	assert.Empty(t, cfg.Chat.APIKey)
}

func TestLoadConfig_EnvironmentAndSecrets(t *testing.T) {
	resetConfig(t)
	t.Setenv("RAG_ENGINE_CHUNK_SIZE", "300")
	t.Setenv("RAG_ENGINE_STORE_PERSIST_DIR", "/tmp/idx")
	t.Setenv("RAG_ENGINE_STORE_FORCE_REBUILD", "true")
	t.Setenv(secrets.DashScope.Env, "ds-env")
	loadedSecrets = secrets.Set{"openai-api-key": "sk-file"}

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Chunk.Size)
	assert.Equal(t, "/tmp/idx", cfg.Store.PersistDir)
	assert.True(t, cfg.Store.ForceRebuild)
	assert.Equal(t, "ds-env", cfg.Chat.APIKey)
	assert.Equal(t, "ds-env", cfg.Embedding.APIKey, "environment wins over secret files")
}

func TestLoadConfig_OpenAIProviderKeepsModelUnset(t *testing.T) {
	resetConfig(t)
	t.Setenv("RAG_ENGINE_EMBEDDING_PROVIDER", "openai")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.ProviderOpenAI, cfg.Embedding.Provider)
	assert.Empty(t, cfg.Embedding.Model)

	t.Setenv("RAG_ENGINE_EMBEDDING_MODEL", "text-embedding-3-large")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
}

func TestLoadConfig_RejectsNonPositiveTopK(t *testing.T) {
	for _, v := range []string{"0", "-2"} {
		t.Run(v, func(t *testing.T) {
			resetConfig(t)
			t.Setenv("RAG_ENGINE_STORE_TOP_K", v)

			_, err := loadConfig()
			assert.ErrorIs(t, err, types.ErrInvalidParameter)
		})
	}
}

func TestDescribe(t *testing.T) {
	corrupt := &types.CorruptStoreError{Path: "./chroma_db", Reasons: []error{errors.New("no entries")}}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"corrupt store", fmt.Errorf("acquiring: %w", corrupt), "Delete ./chroma_db"},
		{"missing corpus", fmt.Errorf("corpus x.txt: %w", types.ErrNotFound), "rag-engine generate"},
		{"empty corpus", types.ErrEmptyCorpus, "no usable UTF-8"},
		{"cancelled", context.Canceled, "interrupted"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, describe(tc.err), tc.want)
		})
	}
}

func TestFormatQueryOutput(t *testing.T) {
	hits := []types.SearchHit{
		{Chunk: types.Chunk{ID: "abc", Source: "kb.txt", Text: "Quantum\ncomputing"}, Distance: 0.125},
	}

	var buf bytes.Buffer
	require.NoError(t, formatQueryOutput(&buf, hits, false))
	assert.Contains(t, buf.String(), "0.1250")
	assert.Contains(t, buf.String(), "Quantum computing")
	assert.Contains(t, buf.String(), "1 results")

	buf.Reset()
	require.NoError(t, formatQueryOutput(&buf, nil, false))
	assert.Contains(t, buf.String(), "No results found.")

	buf.Reset()
	require.NoError(t, formatQueryOutput(&buf, hits, true))
	assert.Contains(t, buf.String(), `"distance": 0.125`)
	assert.Contains(t, buf.String(), `"source": "kb.txt"`)
}

func TestFormatReport(t *testing.T) {
	var buf bytes.Buffer
	r := provision.Report{PersistDir: "db", Entries: 7, Rebuilt: true, Recovered: true, Reasons: []string{"index at db has no entries"}}
	require.NoError(t, formatReport(&buf, r, "hash/fnv/cpu/normalize=true/dim=256", false))

	out := buf.String()
	assert.Contains(t, out, "rebuilt after recovery")
	assert.Contains(t, out, "entries:   7")
	assert.Contains(t, out, "has no entries")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "量子计...", truncate("量子计算机架构", 6))
}
