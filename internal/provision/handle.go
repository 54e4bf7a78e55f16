// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provision

import (
	"context"
	"io"

	"github.com/pdiddy/rag-engine/internal/knowledge"
	"github.com/pdiddy/rag-engine/pkg/types"
)

// Report summarizes how a handle was acquired.
type Report struct {
	PersistDir string   `json:"persist_dir" yaml:"persist_dir"`
	Entries    int      `json:"entries" yaml:"entries"`
	Rebuilt    bool     `json:"rebuilt" yaml:"rebuilt"`
	Recovered  bool     `json:"recovered" yaml:"recovered"`
	Reasons    []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// Handle is a read-only view of a valid index. It is safe for concurrent
// use.
type Handle struct {
	index    *knowledge.Index
	embedder QueryEmbedder
	count    int
	report   Report
}

// Query embeds text with the store's embedding function and returns the k
// nearest chunks, nearest first.
func (h *Handle) Query(ctx context.Context, text string, k int) ([]types.SearchHit, error) {
	vec, err := h.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return h.index.Search(ctx, vec, k)
}

// Count returns the number of entries, fixed when the handle was acquired.
func (h *Handle) Count() int { return h.count }

// Trace returns the chunk id with up to window neighbours on each side.
func (h *Handle) Trace(ctx context.Context, id string, window int) ([]types.Chunk, error) {
	return h.index.Trace(ctx, id, window)
}

// Export writes every entry to w as YAML, or as JSON when asJSON is set.
func (h *Handle) Export(ctx context.Context, w io.Writer, asJSON bool) error {
	if asJSON {
		return h.index.ExportJSON(ctx, w)
	}
	return h.index.ExportYAML(ctx, w)
}

func (h *Handle) Info() knowledge.Info { return h.index.Info() }

func (h *Handle) Report() Report { return h.report }

// Close releases the underlying index.
func (h *Handle) Close() error {
	return h.index.Close()
}
