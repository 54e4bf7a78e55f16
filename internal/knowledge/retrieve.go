// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/pdiddy/rag-engine/pkg/types"
)

const chunkColumns = `id, source, chunk_index, char_offset, content`

// Search returns the k stored chunks closest to query by cosine distance,
// nearest first. Ties keep insertion order. Chunks whose embedding has zero
// magnitude are never returned.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]types.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, types.ErrInvalidParameter)
	}
	if len(query) != ix.info.Dimensions {
		return nil, fmt.Errorf("query dimension %d, index has %d: %w",
			len(query), ix.info.Dimensions, types.ErrInvalidParameter)
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT `+chunkColumns+`, embedding FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []types.SearchHit
	for rows.Next() {
		var (
			c    types.Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.Offset, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		vec, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		if len(vec) != len(query) {
			return nil, fmt.Errorf("chunk %s: embedding dimension %d, want %d", c.ID, len(vec), len(query))
		}
		d, ok := cosineDistance(query, vec)
		if !ok {
			continue
		}
		hits = append(hits, types.SearchHit{Chunk: c, Distance: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Get returns the chunk with the given id.
func (ix *Index) Get(ctx context.Context, id string) (types.Chunk, error) {
	var c types.Chunk
	err := ix.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id,
	).Scan(&c.ID, &c.Source, &c.Index, &c.Offset, &c.Text)
	if err == sql.ErrNoRows {
		return types.Chunk{}, fmt.Errorf("chunk %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return types.Chunk{}, fmt.Errorf("reading chunk %s: %w", id, err)
	}
	return c, nil
}

// Trace returns the chunk with the given id together with up to window
// neighbours on each side from the same source, in document order.
func (ix *Index) Trace(ctx context.Context, id string, window int) ([]types.Chunk, error) {
	if window < 0 {
		return nil, fmt.Errorf("window must not be negative, got %d: %w", window, types.ErrInvalidParameter)
	}
	c, err := ix.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks
		 WHERE source = ? AND chunk_index BETWEEN ? AND ?
		 ORDER BY chunk_index`,
		c.Source, c.Index-window, c.Index+window)
	if err != nil {
		return nil, fmt.Errorf("querying neighbours of %s: %w", id, err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// Chunks returns every stored chunk ordered by source and position.
func (ix *Index) Chunks(ctx context.Context) ([]types.Chunk, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks ORDER BY source, chunk_index`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

func scanChunks(rows *sql.Rows) ([]types.Chunk, error) {
	var out []types.Chunk
	for rows.Next() {
		var c types.Chunk
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.Offset, &c.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return out, nil
}
