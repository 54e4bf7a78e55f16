// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits a corpus into overlapping fixed-size character
// windows. Chunking is pure: the same corpus and parameters always yield the
// same chunk sequence.
package chunk

import (
	"crypto/sha256"
	"fmt"
	"iter"
	"strconv"

	"github.com/pdiddy/rag-engine/pkg/types"
)

// Default window parameters.
const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

// Sequence is a lazy, restartable sequence of chunks over a corpus.
type Sequence struct {
	corpus  types.Corpus
	size    int
	overlap int
}

// Split validates the window parameters and returns the chunk sequence of
// corpus. Windows hold at most size characters; each window starts
// size-overlap characters after the previous one. It fails with
// types.ErrInvalidParameter unless 0 <= overlap < size.
func Split(corpus types.Corpus, size, overlap int) (*Sequence, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size %d must be positive: %w", size, types.ErrInvalidParameter)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d): %w", overlap, size, types.ErrInvalidParameter)
	}
	return &Sequence{corpus: corpus, size: size, overlap: overlap}, nil
}

// All yields every chunk in document order. Each call walks the corpus
// again from the start.
func (s *Sequence) All() iter.Seq[types.Chunk] {
	return func(yield func(types.Chunk) bool) {
		step := s.size - s.overlap
		for _, doc := range s.corpus.Documents {
			runes := []rune(doc.Text)
			n := len(runes)
			for i, start := 0, 0; start < n; i, start = i+1, start+step {
				end := min(start+s.size, n)
				c := types.Chunk{
					ID:     ID(doc.Source, start),
					Source: doc.Source,
					Index:  i,
					Offset: start,
					Text:   string(runes[start:end]),
				}
				if !yield(c) {
					return
				}
				if end == n {
					break
				}
			}
		}
	}
}

// Collect materializes the sequence. It returns types.ErrEmptyCorpus when
// no chunk is produced, since an index over zero chunks is meaningless.
func (s *Sequence) Collect() ([]types.Chunk, error) {
	var chunks []types.Chunk
	for c := range s.All() {
		chunks = append(chunks, c)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunking %d document(s) produced no chunks: %w",
			s.corpus.Len(), types.ErrEmptyCorpus)
	}
	return chunks, nil
}

// ID returns the stable identifier of the chunk at offset in source.
func ID(source string, offset int) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(offset)))
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
