// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the rag-engine pipeline:
// configuration, corpus documents, chunks, search hits and the error
// taxonomy surfaced by provisioning.
package types

// Document is one source text of a Corpus.
type Document struct {
	// Source is the path the text was read from.
	Source string `json:"source" yaml:"source"`

	// Text is the UTF-8 content of the document.
	Text string `json:"text" yaml:"text"`
}

// Corpus is an ordered sequence of documents. It is never modified after
// ingestion.
type Corpus struct {
	Documents []Document `json:"documents" yaml:"documents"`
}

// Len returns the number of documents.
func (c Corpus) Len() int { return len(c.Documents) }

// Chunk is a contiguous window of one Document.
type Chunk struct {
	// ID is derived from Source and Offset and is stable across rebuilds.
	ID string `json:"id" yaml:"id"`

	// Source is the originating document path.
	Source string `json:"source" yaml:"source"`

	// Index is the zero-based position of the chunk within its document.
	Index int `json:"index" yaml:"index"`

	// Offset is the start position in characters within the document.
	Offset int `json:"offset" yaml:"offset"`

	// Text is the chunk content.
	Text string `json:"text" yaml:"text"`
}

// SearchHit is a chunk returned by a similarity query.
type SearchHit struct {
	Chunk `yaml:",inline"`

	// Distance is the cosine distance to the query (0 = same direction).
	Distance float64 `json:"distance" yaml:"distance"`
}
