package collect

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromDirectories_CollectsAcceptedFiles(t *testing.T) {
	// Given: a tree with accepted, rejected, and empty files
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "first document")
	writeFile(t, dir, "sub/b.py", "def main(): pass")
	writeFile(t, dir, "c.exe", "binary-ish")
	writeFile(t, dir, "empty.txt", "   \n")

	// When: collecting
	corpus := FromDirectories([]string{dir})

	// Then: only the accepted non-empty files survive, with dense ids
	require.Equal(t, 2, corpus.Len())
	for i, rec := range corpus.Records() {
		assert.Equal(t, IDPrefix+strconv.Itoa(i), rec.ID)
		assert.NotEmpty(t, rec.Text)
		assert.NotEmpty(t, rec.Origin)
	}
}

func TestFromDirectories_MissingDirectoryIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "real.txt", "kept")

	corpus := FromDirectories([]string{filepath.Join(dir, "absent"), dir})

	require.Equal(t, 1, corpus.Len())
	rec, ok := corpus.At(0)
	require.True(t, ok)
	assert.Equal(t, "kept", rec.Text)
}

func TestFromDirectories_InvalidUTF8Skipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0o644))
	writeFile(t, dir, "good.txt", "valid text")

	corpus := FromDirectories([]string{dir})

	require.Equal(t, 1, corpus.Len())
	rec, _ := corpus.At(0)
	assert.Equal(t, "valid text", rec.Text)
}

func TestFromDirectories_NoDirectoriesYieldsEmptyCorpus(t *testing.T) {
	corpus := FromDirectories(nil)
	assert.Equal(t, 0, corpus.Len())
	assert.Empty(t, corpus.Origins())
}

func TestFromDocuments_AssignsSyntheticOrigins(t *testing.T) {
	corpus := FromDocuments([]string{"first", "  ", "second"})

	require.Equal(t, 2, corpus.Len())

	first, ok := corpus.At(0)
	require.True(t, ok)
	assert.Equal(t, "doc_0", first.ID)
	assert.Equal(t, "first", first.Text)
	assert.Equal(t, "document_0", first.Origin)

	second, ok := corpus.At(1)
	require.True(t, ok)
	assert.Equal(t, "doc_1", second.ID)
	assert.Equal(t, "second", second.Text)
	assert.Equal(t, "document_1", second.Origin)
}

func TestFromDocuments_TrimsWhitespace(t *testing.T) {
	corpus := FromDocuments([]string{"  padded text \n"})
	rec, ok := corpus.At(0)
	require.True(t, ok)
	assert.Equal(t, "padded text", rec.Text)
}

func TestCorpus_ByID(t *testing.T) {
	corpus := FromDocuments([]string{"one", "two"})

	rec, ok := corpus.ByID("doc_1")
	require.True(t, ok)
	assert.Equal(t, "two", rec.Text)

	_, ok = corpus.ByID("doc_9")
	assert.False(t, ok)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		id      string
		ordinal int
		ok      bool
	}{
		{"doc_0", 0, true},
		{"doc_42", 42, true},
		{"doc_-1", 0, false},
		{"doc_x", 0, false},
		{"chunk_3", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n, ok := ParseID(tt.id)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.ordinal, n)
			}
		})
	}
}
