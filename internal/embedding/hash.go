// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const (
	defaultHashDimensions = 256
	defaultHashModel      = "fnv"
)

// HashClient is a local, deterministic embedding backend based on feature
// hashing of lowercase word tokens. Han, Hiragana, Katakana and Hangul
// characters are hashed individually and as adjacent pairs so unsegmented
// text still produces useful overlap. It needs no network and is the
// default provider for tests and offline use.
type HashClient struct {
	dim int
}

// NewHashClient returns a HashClient producing vectors of length dim
// (default 256).
func NewHashClient(dim int) *HashClient {
	if dim <= 0 {
		dim = defaultHashDimensions
	}
	return &HashClient{dim: dim}
}

// Dimensions returns the vector length.
func (c *HashClient) Dimensions() int { return c.dim }

// EmbedBatch embeds each text independently.
func (c *HashClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = c.embed(t)
	}
	return out, nil
}

func (c *HashClient) embed(text string) []float32 {
	vec := make([]float32, c.dim)
	for _, tok := range tokens(text) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(c.dim))
		// The top bit picks the sign so collisions tend to cancel.
		if sum>>63 == 1 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}
	return vec
}

func isIdeographic(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

func tokens(text string) []string {
	var (
		out  []string
		word []rune
		prev rune
	)

	flush := func() {
		if len(word) > 0 {
			out = append(out, string(word))
			word = word[:0]
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case isIdeographic(r):
			flush()
			out = append(out, string(r))
			if prev != 0 {
				out = append(out, string([]rune{prev, r}))
			}
			prev = r
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, r)
		default:
			flush()
		}
		prev = 0
	}
	flush()
	return out
}
