// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// CorpusConfig locates the source text for the knowledge store.
type CorpusConfig struct {
	// Path is a UTF-8 text file or a directory of text files.
	Path string `json:"path" yaml:"path"`

	// Include lists doublestar globs applied when Path is a directory
	// (default "**/*.txt" and "**/*.md").
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
}

// ChunkConfig holds the sliding-window chunker parameters.
type ChunkConfig struct {
	// Size is the maximum chunk length in characters (default 500).
	Size int `json:"size" yaml:"size"`

	// Overlap is the number of characters shared with the previous chunk
	// (default 50). Must be smaller than Size.
	Overlap int `json:"overlap" yaml:"overlap"`
}

// Embedding providers.
const (
	ProviderHash   = "hash"
	ProviderOpenAI = "openai"
)

// EmbeddingConfig identifies the designated embedding function. All fields
// except APIKey, BaseURL, BatchSize and MaxRetries contribute to the
// fingerprint recorded in a persisted index.
type EmbeddingConfig struct {
	// Provider selects the backend: "hash" (local, deterministic) or "openai"
	// (any OpenAI-compatible embeddings endpoint).
	Provider string `json:"provider" yaml:"provider"`

	// Model is the embedding model identifier (e.g. "text-embedding-3-small").
	Model string `json:"model" yaml:"model"`

	// Device is the execution target label (e.g. "cpu", "cuda").
	Device string `json:"device" yaml:"device"`

	// Normalize L2-normalizes every vector before it is stored or queried.
	Normalize bool `json:"normalize" yaml:"normalize"`

	// Dimensions is the vector length. Zero lets the provider decide.
	Dimensions int `json:"dimensions" yaml:"dimensions"`

	// BatchSize is the number of texts per embedding request (default 16).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// BaseURL overrides the API endpoint for the openai provider.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates against the openai provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Fingerprint returns the identity of the embedding function. Two indexes
// built with the same fingerprint hold comparable vectors.
func (c EmbeddingConfig) Fingerprint() string {
	device := c.Device
	if device == "" {
		device = "cpu"
	}
	return fmt.Sprintf("%s/%s/%s/normalize=%t/dim=%d",
		strings.ToLower(c.Provider), c.Model, strings.ToLower(device), c.Normalize, c.Dimensions)
}

// StoreConfig holds settings for the persisted embedding index.
type StoreConfig struct {
	// PersistDir is the directory holding the index (default "./chroma_db").
	PersistDir string `json:"persist_dir" yaml:"persist_dir"`

	// ForceRebuild discards any persisted index and rebuilds it.
	ForceRebuild bool `json:"force_rebuild" yaml:"force_rebuild"`

	// TopK is the default number of chunks returned by a query (default 4).
	TopK int `json:"top_k" yaml:"top_k"`
}

// ChatConfig holds settings for the chat-completion endpoint used to answer
// questions over retrieved context.
type ChatConfig struct {
	// Model is the chat model identifier.
	Model string `json:"model" yaml:"model"`

	// BaseURL is the OpenAI-compatible endpoint (e.g. DashScope compatible mode).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates against the endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature (default 0).
	Temperature float32 `json:"temperature" yaml:"temperature"`

	// Timeout bounds a single completion request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Config groups all configuration sections.
type Config struct {
	Corpus    CorpusConfig    `json:"corpus" yaml:"corpus"`
	Chunk     ChunkConfig     `json:"chunk" yaml:"chunk"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
}
