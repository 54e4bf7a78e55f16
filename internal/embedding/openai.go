// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/rag-engine/internal/httputil"
	"github.com/pdiddy/rag-engine/pkg/types"
)

const defaultOpenAIModel = "text-embedding-3-small"

// OpenAIClient calls an OpenAI-compatible embeddings endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIClient creates a client from cfg. An API key is required unless
// a custom BaseURL points at a keyless endpoint.
func NewOpenAIClient(cfg types.EmbeddingConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("embedding API key not set (embedding.api_key, OPENAI_API_KEY or .secrets/openai-api-key)")
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	dim := cfg.Dimensions
	if dim <= 0 {
		dim = 1536
		if model == "text-embedding-3-large" {
			dim = 3072
		}
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = httputil.NewRetryClient(0, cfg.MaxRetries)

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		dim:    dim,
	}, nil
}

// Dimensions returns the vector length.
func (c *OpenAIClient) Dimensions() int { return c.dim }

// EmbedBatch sends texts in one request and returns the vectors in input
// order.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	}
	if c.model != "text-embedding-ada-002" {
		req.Dimensions = c.dim
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("embeddings API: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embeddings API returned out-of-range index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		out[d.Index] = v
	}
	return out, nil
}
