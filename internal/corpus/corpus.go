// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus reads the source text that a knowledge store is built from.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/rag-engine/pkg/types"
)

// DefaultInclude is the set of globs used when a directory corpus is
// ingested without explicit include patterns.
var DefaultInclude = []string{"**/*.txt", "**/*.md"}

// Ingest reads the corpus at path. A regular file yields a single-document
// corpus. A directory yields one document per file matching DefaultInclude,
// in lexical path order.
//
// It returns types.ErrNotFound when path does not exist and
// types.ErrEmptyCorpus when no extractable text is found.
func Ingest(path string) (types.Corpus, error) {
	return IngestMatching(path, nil)
}

// IngestMatching is Ingest with explicit include globs for directory corpora.
// An empty include list falls back to DefaultInclude.
func IngestMatching(path string, include []string) (types.Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Corpus{}, fmt.Errorf("corpus %s: %w", path, types.ErrNotFound)
		}
		return types.Corpus{}, fmt.Errorf("stat corpus %s: %w", path, err)
	}

	if !info.IsDir() {
		doc, err := readDocument(path, path)
		if err != nil {
			return types.Corpus{}, err
		}
		return types.Corpus{Documents: []types.Document{doc}}, nil
	}

	if len(include) == 0 {
		include = DefaultInclude
	}

	files, err := matchFiles(path, include)
	if err != nil {
		return types.Corpus{}, err
	}

	var corpus types.Corpus
	for _, rel := range files {
		doc, err := readDocument(filepath.Join(path, rel), rel)
		if err != nil {
			// Blank files inside a directory are skipped; the corpus as a
			// whole must still contain text.
			if errors.Is(err, types.ErrEmptyCorpus) {
				continue
			}
			return types.Corpus{}, err
		}
		corpus.Documents = append(corpus.Documents, doc)
	}

	if corpus.Len() == 0 {
		return types.Corpus{}, fmt.Errorf("corpus %s: no text in %d matching file(s): %w",
			path, len(files), types.ErrEmptyCorpus)
	}
	return corpus, nil
}

func readDocument(path, source string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Document{}, fmt.Errorf("corpus %s: %w", path, types.ErrNotFound)
		}
		return types.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if !utf8.Valid(data) {
		return types.Document{}, fmt.Errorf("corpus %s: invalid UTF-8: %w", path, types.ErrEmptyCorpus)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return types.Document{}, fmt.Errorf("corpus %s: no extractable text: %w", path, types.ErrEmptyCorpus)
	}

	return types.Document{Source: filepath.ToSlash(source), Text: text}, nil
}

// matchFiles walks root and returns the slash-separated relative paths of
// regular files matching any include glob, sorted.
func matchFiles(root string, include []string) ([]string, error) {
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("include pattern %q: %w", pattern, types.ErrInvalidParameter)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range include {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				files = append(files, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus directory %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
