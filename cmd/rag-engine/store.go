// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/rag-engine/internal/embedding"
	"github.com/pdiddy/rag-engine/internal/provision"
	"github.com/pdiddy/rag-engine/pkg/types"
)

// openStore is the composition root shared by every command that needs the
// index: it builds the embedder and provisioner from cfg and acquires the
// handle once. The caller closes the handle.
func openStore(cmd *cobra.Command, cfg types.Config) (*provision.Handle, error) {
	emb, err := embedding.NewService(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	progress := newEmbedProgress()
	emb.OnProgress(progress.update)
	defer func() {
		emb.OnProgress(nil)
		progress.finish()
	}()

	p := provision.New(emb, provision.Options{
		ChunkSize: cfg.Chunk.Size,
		Overlap:   cfg.Chunk.Overlap,
		Include:   cfg.Corpus.Include,
		Logger:    logger,
	})

	return p.AcquireStore(cmd.Context(), provision.Request{
		CorpusPath:   cfg.Corpus.Path,
		PersistDir:   cfg.Store.PersistDir,
		ForceRebuild: cfg.Store.ForceRebuild,
	})
}

// topK returns the -k flag when given, otherwise the configured default.
func topK(cmd *cobra.Command, cfg types.Config) int {
	if cmd.Flags().Changed("k") {
		k, _ := cmd.Flags().GetInt("k")
		return k
	}
	return cfg.Store.TopK
}
