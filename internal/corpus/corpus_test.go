// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rag-engine/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIngest(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
		wantLen int
	}{
		{
			name: "single file",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "a.txt")
				writeFile(t, p, "hello world")
				return p
			},
			wantLen: 1,
		},
		{
			name: "missing path",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.txt")
			},
			wantErr: types.ErrNotFound,
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "empty.txt")
				writeFile(t, p, "")
				return p
			},
			wantErr: types.ErrEmptyCorpus,
		},
		{
			name: "whitespace only",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "blank.txt")
				writeFile(t, p, "  \n\t\n ")
				return p
			},
			wantErr: types.ErrEmptyCorpus,
		},
		{
			name: "invalid utf-8",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "bin.txt")
				writeFile(t, p, string([]byte{0xff, 0xfe, 0xfd}))
				return p
			},
			wantErr: types.ErrEmptyCorpus,
		},
		{
			name: "directory with no matches",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "image.png"), "not text")
				return dir
			},
			wantErr: types.ErrEmptyCorpus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Ingest(tt.setup(t))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, c.Len())
		})
	}
}

func TestIngest_Deterministic(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, p, "same content every time")

	first, err := Ingest(p)
	require.NoError(t, err)
	second, err := Ingest(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "same content every time", first.Documents[0].Text)
}

func TestIngest_DirectoryOrderAndFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "bravo")
	writeFile(t, filepath.Join(dir, "a.md"), "alpha")
	writeFile(t, filepath.Join(dir, "nested", "c.txt"), "charlie")
	writeFile(t, filepath.Join(dir, "skip.json"), `{"x":1}`)
	writeFile(t, filepath.Join(dir, "blank.txt"), "   ")
	writeFile(t, filepath.Join(dir, ".hidden", "d.txt"), "delta")

	c, err := Ingest(dir)
	require.NoError(t, err)

	var sources []string
	for _, d := range c.Documents {
		sources = append(sources, d.Source)
	}
	assert.Equal(t, []string{"a.md", "b.txt", "nested/c.txt"}, sources)
}

func TestIngestMatching_CustomInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes", "one.txt"), "one")
	writeFile(t, filepath.Join(dir, "other", "two.txt"), "two")

	c, err := IngestMatching(dir, []string{"notes/**"})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "notes/one.txt", c.Documents[0].Source)
}

func TestIngestMatching_BadPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")

	_, err := IngestMatching(dir, []string{"[unclosed"})
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestWriteSample(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data", "knowledge_base.txt")
	require.NoError(t, WriteSample(p))

	c, err := Ingest(p)
	require.NoError(t, err)
	assert.Contains(t, c.Documents[0].Text, "Quantum Computing")
	assert.Greater(t, len([]rune(c.Documents[0].Text)), 1000)
}
