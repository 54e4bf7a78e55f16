// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provision decides, on each start, whether to reuse a persisted
// embedding index, build one from the corpus, or discard a broken one and
// build again. At most maxAttempts builds are tried before giving up with a
// *types.CorruptStoreError.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pdiddy/rag-engine/internal/chunk"
	"github.com/pdiddy/rag-engine/internal/corpus"
	"github.com/pdiddy/rag-engine/internal/embedding"
	"github.com/pdiddy/rag-engine/internal/knowledge"
	"github.com/pdiddy/rag-engine/pkg/types"
)

const (
	maxAttempts   = 2
	stagingSuffix = ".building"
	discardSuffix = ".discard"
)

// QueryEmbedder is the designated embedding function of a store. The same
// function embeds chunks at build time and queries afterwards.
type QueryEmbedder interface {
	embedding.Embedder
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Request names the corpus and the directory its index persists in.
type Request struct {
	CorpusPath   string
	PersistDir   string
	ForceRebuild bool
}

// Options tune how a corpus is turned into index entries.
type Options struct {
	ChunkSize int
	Overlap   int

	// Include filters files when the corpus path is a directory.
	Include []string

	Logger *slog.Logger
}

type buildFunc func(ctx context.Context, dir, fingerprint string, dims int, entries []knowledge.Entry) error

// Provisioner acquires store handles. It holds no state between calls;
// callers serialize AcquireStore for the same persist directory.
type Provisioner struct {
	embedder QueryEmbedder
	opts     Options
	log      *slog.Logger
	build    buildFunc
}

// New returns a Provisioner that embeds with emb. Zero chunk options fall
// back to chunk.DefaultSize and chunk.DefaultOverlap.
func New(emb QueryEmbedder, opts Options) *Provisioner {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = chunk.DefaultSize
		if opts.Overlap == 0 {
			opts.Overlap = chunk.DefaultOverlap
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Provisioner{
		embedder: emb,
		opts:     opts,
		log:      log,
		build:    knowledge.Build,
	}
}

// AcquireStore returns a handle over a valid index for req. An index that
// cannot be opened or holds no entries is rebuilt; if the rebuilt index is
// still unusable the result is a *types.CorruptStoreError listing every
// reason. Corpus errors (types.ErrNotFound, types.ErrEmptyCorpus,
// types.ErrInvalidParameter) and context cancellation are returned as is,
// before anything under req.PersistDir is touched.
func (p *Provisioner) AcquireStore(ctx context.Context, req Request) (*Handle, error) {
	if req.PersistDir == "" {
		return nil, fmt.Errorf("persist directory not set: %w", types.ErrInvalidParameter)
	}

	var (
		force   = req.ForceRebuild
		reasons []error
		report  = Report{PersistDir: req.PersistDir}
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rebuild := force
		if !rebuild {
			present, err := knowledge.HasEntries(req.PersistDir)
			if err != nil {
				return nil, err
			}
			if !present {
				p.log.Info("no persisted index", "dir", req.PersistDir)
				rebuild = true
			}
		}

		if rebuild {
			p.log.Info("building index", "dir", req.PersistDir, "corpus", req.CorpusPath, "attempt", attempt)
			if err := p.rebuild(ctx, req); err != nil {
				return nil, err
			}
			report.Rebuilt = true
		}

		h, reason, err := p.open(ctx, req.PersistDir)
		if err != nil {
			return nil, err
		}
		if reason == nil {
			report.Entries = h.count
			report.Recovered = len(reasons) > 0
			for _, r := range reasons {
				report.Reasons = append(report.Reasons, r.Error())
			}
			h.report = report
			p.log.Info("index ready", "dir", req.PersistDir, "entries", h.count,
				"rebuilt", report.Rebuilt, "recovered", report.Recovered)
			return h, nil
		}

		p.log.Warn("persisted index unusable", "dir", req.PersistDir, "attempt", attempt, "reason", reason)
		reasons = append(reasons, reason)
		force = true
	}

	p.log.Error("giving up on index", "dir", req.PersistDir, "attempts", maxAttempts)
	return nil, &types.CorruptStoreError{Path: req.PersistDir, Reasons: reasons}
}

// open opens dir and checks that it holds entries. A non-nil reason means
// the index is unusable and should be rebuilt; err is fatal.
func (p *Provisioner) open(ctx context.Context, dir string) (h *Handle, reason, err error) {
	ix, err := knowledge.Open(ctx, dir, p.embedder.Fingerprint())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		if errors.Is(err, knowledge.ErrOpen) {
			return nil, err, nil
		}
		return nil, nil, err
	}

	n, err := ix.Count(ctx)
	if err != nil {
		ix.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", knowledge.ErrOpen, err), nil
	}
	if n == 0 {
		ix.Close()
		return nil, fmt.Errorf("index at %s has no entries", dir), nil
	}

	return &Handle{index: ix, embedder: p.embedder, count: n}, nil, nil
}

// rebuild reads and chunks the corpus, embeds every chunk, writes the
// entries to a staging directory and then replaces dir with it. Corpus and
// embedding failures happen before dir is touched.
func (p *Provisioner) rebuild(ctx context.Context, req Request) error {
	c, err := corpus.IngestMatching(req.CorpusPath, p.opts.Include)
	if err != nil {
		return err
	}
	seq, err := chunk.Split(c, p.opts.ChunkSize, p.opts.Overlap)
	if err != nil {
		return err
	}
	chunks, err := seq.Collect()
	if err != nil {
		return err
	}
	p.log.Debug("chunked corpus", "documents", c.Len(), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vecs, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding corpus: %w", err)
	}
	if len(vecs) != len(chunks) {
		return fmt.Errorf("embedding corpus: got %d vectors for %d chunks", len(vecs), len(chunks))
	}

	entries := make([]knowledge.Entry, len(chunks))
	for i := range chunks {
		entries[i] = knowledge.Entry{Chunk: chunks[i], Embedding: vecs[i]}
	}

	staging := req.PersistDir + stagingSuffix
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("removing stale staging directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.build(ctx, staging, p.embedder.Fingerprint(), len(vecs[0]), entries); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("writing index: %w", err)
	}
	if err := ctx.Err(); err != nil {
		os.RemoveAll(staging)
		return err
	}

	return replaceDir(staging, req.PersistDir)
}

// replaceDir deletes dst completely and moves src into its place.
func replaceDir(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		discard := dst + discardSuffix
		if err := os.RemoveAll(discard); err != nil {
			return fmt.Errorf("removing stale discard directory: %w", err)
		}
		if err := os.Rename(dst, discard); err != nil {
			return fmt.Errorf("moving old index aside: %w", err)
		}
		if err := os.RemoveAll(discard); err != nil {
			return fmt.Errorf("deleting old index: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", dst, err)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("installing index: %w", err)
	}
	return nil
}
