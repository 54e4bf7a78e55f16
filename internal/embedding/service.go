// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding turns chunk text into vectors with one designated
// embedding function per knowledge store.
package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/rag-engine/pkg/types"
)

const defaultBatchSize = 16

// Embedder is the capability the provisioner needs: vectors for a batch of
// texts, and the identity of the function producing them.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Fingerprint() string
}

// Client is a single embedding backend.
type Client interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// ProgressFunc is called after each batch with the number of texts embedded
// so far and the total.
type ProgressFunc func(done, total int)

// Service batches requests to a Client and applies the configured
// normalization. It implements Embedder.
type Service struct {
	cfg        types.EmbeddingConfig
	client     Client
	onProgress ProgressFunc
}

// NewService creates the Service for cfg.Provider.
func NewService(cfg types.EmbeddingConfig) (*Service, error) {
	var (
		client Client
		err    error
	)

	switch strings.ToLower(cfg.Provider) {
	case types.ProviderHash, "":
		cfg.Provider = types.ProviderHash
		if cfg.Model == "" {
			cfg.Model = defaultHashModel
		}
		client = NewHashClient(cfg.Dimensions)
	case types.ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = defaultOpenAIModel
		}
		client, err = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q: %w", cfg.Provider, types.ErrInvalidParameter)
	}
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}

	return NewServiceWithClient(cfg, client), nil
}

// NewServiceWithClient wraps an existing client. cfg.Dimensions is replaced
// by the client's dimension so the fingerprint reflects what is stored.
func NewServiceWithClient(cfg types.EmbeddingConfig, client Client) *Service {
	cfg.Dimensions = client.Dimensions()
	return &Service{cfg: cfg, client: client}
}

// OnProgress registers a batch progress callback; nil removes it. It must
// not be called while Embed is running.
func (s *Service) OnProgress(fn ProgressFunc) {
	s.onProgress = fn
}

// Fingerprint identifies the embedding function (provider, model, device,
// normalization, dimension).
func (s *Service) Fingerprint() string {
	return s.cfg.Fingerprint()
}

// Dimensions returns the vector length.
func (s *Service) Dimensions() int {
	return s.client.Dimensions()
}

// Embed returns one vector per text, in order. Texts are sent in batches of
// cfg.BatchSize; the context is checked between batches.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return s.embed(ctx, texts, s.onProgress)
}

func (s *Service) embed(ctx context.Context, texts []string, onProgress ProgressFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	dim := s.client.Dimensions()
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+batchSize, len(texts))
		vecs, err := s.client.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embedding batch %d-%d: got %d vectors", start, end, len(vecs))
		}

		for i, v := range vecs {
			if len(v) != dim {
				return nil, fmt.Errorf("embedding text %d: dimension %d, want %d", start+i, len(v), dim)
			}
			if s.cfg.Normalize {
				Normalize(v)
			}
			out = append(out, v)
		}

		if onProgress != nil {
			onProgress(end, len(texts))
		}
	}

	return out, nil
}

// EmbedQuery embeds a single query string. It does not report progress.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty query: %w", types.ErrInvalidParameter)
	}
	vecs, err := s.embed(ctx, []string{text}, nil)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Normalize scales v to unit length in place. Zero vectors are left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
