// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rag-engine/pkg/types"
)

const testFingerprint = "hash/fnv/cpu/normalize=true/dim=3"

// --- test helpers ---

func entry(source string, index int, text string, vec ...float32) Entry {
	return Entry{
		Chunk: types.Chunk{
			ID:     source + "#" + string(rune('a'+index)),
			Source: source,
			Index:  index,
			Offset: index * 10,
			Text:   text,
		},
		Embedding: vec,
	}
}

func testEntries() []Entry {
	return []Entry{
		entry("a.txt", 0, "alpha", 1, 0, 0),
		entry("a.txt", 1, "alpha beta", 1, 1, 0),
		entry("a.txt", 2, "beta", 0, 1, 0),
		entry("b.txt", 0, "gamma", 0, 0, 1),
		entry("a.txt", 3, "nothing", 0, 0, 0),
	}
}

func buildIndex(t *testing.T) (*Index, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "store")
	require.NoError(t, Build(context.Background(), dir, testFingerprint, 3, testEntries()))

	ix, err := Open(context.Background(), dir, testFingerprint)
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix, dir
}

// --- Build / Open ---

func TestBuildAndOpen(t *testing.T) {
	ix, dir := buildIndex(t)

	n, err := ix.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	info := ix.Info()
	assert.Equal(t, dir, info.Dir)
	assert.Equal(t, testFingerprint, info.Fingerprint)
	assert.Equal(t, 3, info.Dimensions)
	assert.False(t, info.CreatedAt.IsZero())

	ok, err := HasEntries(dir)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuild_EmptyIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	require.NoError(t, Build(context.Background(), dir, testFingerprint, 3, nil))

	ix, err := Open(context.Background(), dir, testFingerprint)
	require.NoError(t, err)
	defer ix.Close()

	n, err := ix.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuild_RefusesExistingIndex(t *testing.T) {
	_, dir := buildIndex(t)
	err := Build(context.Background(), dir, testFingerprint, 3, testEntries())
	assert.ErrorContains(t, err, "already exists")
}

func TestBuild_RejectsDimensionMismatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	err := Build(context.Background(), dir, testFingerprint, 3, []Entry{entry("a.txt", 0, "x", 1, 2)})
	assert.ErrorContains(t, err, "dimension")

	err = Build(context.Background(), filepath.Join(t.TempDir(), "other"), testFingerprint, 0, nil)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestOpen_Failures(t *testing.T) {
	_, built := buildIndex(t)

	garbage := t.TempDir()
	require.NoError(t, os.WriteFile(DBPath(garbage), []byte("this is not a database file at all"), 0o644))

	tests := []struct {
		name        string
		dir         string
		fingerprint string
	}{
		{"missing directory", filepath.Join(t.TempDir(), "nope"), testFingerprint},
		{"empty directory", t.TempDir(), testFingerprint},
		{"not a database", garbage, testFingerprint},
		{"different embedding", built, "openai/text-embedding-3-small/cpu/normalize=true/dim=3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ix, err := Open(context.Background(), tc.dir, tc.fingerprint)
			assert.ErrorIs(t, err, ErrOpen)
			assert.Nil(t, ix)
		})
	}
}

func TestHasEntries(t *testing.T) {
	ok, err := HasEntries(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	empty := t.TempDir()
	require.NoError(t, os.WriteFile(DBPath(empty), nil, 0o644))
	ok, err = HasEntries(empty)
	require.NoError(t, err)
	assert.False(t, ok)

	// A file where the index directory should be is present but unusable.
	file := filepath.Join(t.TempDir(), "db")
	require.NoError(t, os.WriteFile(file, []byte("stray"), 0o644))
	ok, err = HasEntries(file)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Open(context.Background(), file, testFingerprint)
	assert.ErrorIs(t, err, ErrOpen)
}

// --- Search ---

func TestSearch_Ordering(t *testing.T) {
	ix, _ := buildIndex(t)

	hits, err := ix.Search(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "alpha", hits[0].Text)
	assert.InDelta(t, 0, hits[0].Distance, 1e-9)
	assert.Equal(t, "alpha beta", hits[1].Text)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestSearch_SkipsZeroVectorsAndCapsAtCount(t *testing.T) {
	ix, _ := buildIndex(t)

	hits, err := ix.Search(context.Background(), []float32{0, 1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, hits, 4)
	for _, h := range hits {
		assert.NotEqual(t, "nothing", h.Text)
	}
}

func TestSearch_InvalidArguments(t *testing.T) {
	ix, _ := buildIndex(t)

	_, err := ix.Search(context.Background(), []float32{1, 0, 0}, 0)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	_, err = ix.Search(context.Background(), []float32{1, 0}, 1)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

// --- Trace ---

func TestTrace(t *testing.T) {
	ix, _ := buildIndex(t)

	chunks, err := ix.Trace(context.Background(), "a.txt#b", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{chunks[0].Index, chunks[1].Index, chunks[2].Index})

	chunks, err = ix.Trace(context.Background(), "b.txt#a", 2)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "gamma", chunks[0].Text)

	_, err = ix.Trace(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// --- Export ---

func TestExport(t *testing.T) {
	ix, _ := buildIndex(t)

	var jsonBuf bytes.Buffer
	require.NoError(t, ix.ExportJSON(context.Background(), &jsonBuf))
	var fromJSON Export
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))

	var yamlBuf bytes.Buffer
	require.NoError(t, ix.ExportYAML(context.Background(), &yamlBuf))
	var fromYAML Export
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))

	for _, doc := range []Export{fromJSON, fromYAML} {
		require.Len(t, doc.Entries, 5)
		assert.Equal(t, testFingerprint, doc.Info.Fingerprint)
		assert.Equal(t, "a.txt", doc.Entries[0].Source)
		assert.Equal(t, 0, doc.Entries[0].Index)
		assert.Equal(t, "b.txt", doc.Entries[4].Source)
	}
}

// --- encoding ---

func TestEmbeddingEncoding(t *testing.T) {
	vec := []float32{0.5, -1.25, 3}
	got, err := DecodeEmbedding(EncodeEmbedding(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	_, err = DecodeEmbedding([]byte{1, 2, 3})
	assert.Error(t, err)
}
