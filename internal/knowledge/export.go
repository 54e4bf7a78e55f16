// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one chunk as written by ExportYAML and ExportJSON.
type ExportEntry struct {
	ID      string `json:"id" yaml:"id"`
	Source  string `json:"source" yaml:"source"`
	Index   int    `json:"index" yaml:"index"`
	Offset  int    `json:"offset" yaml:"offset"`
	Content string `json:"content" yaml:"content"`
}

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	Info    Info          `json:"index" yaml:"index"`
	Entries []ExportEntry `json:"entries" yaml:"entries"`
}

// ExportYAML writes every stored chunk to w as YAML.
func (ix *Index) ExportYAML(ctx context.Context, w io.Writer) error {
	doc, err := ix.export(ctx)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every stored chunk to w as indented JSON.
func (ix *Index) ExportJSON(ctx context.Context, w io.Writer) error {
	doc, err := ix.export(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (ix *Index) export(ctx context.Context) (Export, error) {
	chunks, err := ix.Chunks(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = ExportEntry{
			ID:      c.ID,
			Source:  c.Source,
			Index:   c.Index,
			Offset:  c.Offset,
			Content: c.Text,
		}
	}
	return Export{Info: ix.info, Entries: entries}, nil
}
