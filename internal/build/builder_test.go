package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrivd/retrivd/internal/collect"
	"github.com/retrivd/retrivd/internal/errors"
	"github.com/retrivd/retrivd/internal/retriever"
)

// fakeRetriever scripts the outcome of each build path.
type fakeRetriever struct {
	buildErr     error
	fromFileErr  error
	builtDocs    []retriever.Document
	stagedPaths  []string
	queryCount   int
	stagedExists []bool
}

func (f *fakeRetriever) Build(_ context.Context, docs []retriever.Document) error {
	if f.buildErr != nil {
		return f.buildErr
	}
	f.builtDocs = docs
	return nil
}

func (f *fakeRetriever) BuildFromFile(_ context.Context, path string) error {
	f.stagedPaths = append(f.stagedPaths, path)
	_, err := os.Stat(path)
	f.stagedExists = append(f.stagedExists, err == nil)
	return f.fromFileErr
}

func (f *fakeRetriever) Query(_ context.Context, _ string, _ int) ([]retriever.Hit, error) {
	f.queryCount++
	return nil, nil
}

func (f *fakeRetriever) Name() string { return "fake" }
func (f *fakeRetriever) Close() error { return nil }

func TestBuilder_PrimaryPathSucceeds(t *testing.T) {
	// Given: a backend whose bulk build works
	fake := &fakeRetriever{}
	corpus := collect.FromDocuments([]string{"alpha text", "beta text"})

	// When: building
	result, err := NewBuilder(t.TempDir()).Build(context.Background(), fake, corpus)
	require.NoError(t, err)

	// Then: no fallback ran and the result describes the corpus
	assert.False(t, result.UsedFallback)
	assert.Equal(t, 2, result.DocumentCount)
	assert.Equal(t, []string{"document_0", "document_1"}, result.Origins)
	assert.Len(t, fake.builtDocs, 2)
	assert.Empty(t, fake.stagedPaths)
	assert.Equal(t, 1, fake.queryCount, "smoke test runs once")
}

func TestBuilder_FallbackPathSucceeds(t *testing.T) {
	// Given: a backend whose bulk build fails but file build works
	fake := &fakeRetriever{buildErr: fmt.Errorf("bulk path exploded")}
	corpus := collect.FromDocuments([]string{"gamma text"})
	dir := t.TempDir()

	// When: building
	result, err := NewBuilder(dir).Build(context.Background(), fake, corpus)
	require.NoError(t, err)

	// Then: fallback produced the index and the artifact existed during it
	assert.True(t, result.UsedFallback)
	require.Len(t, fake.stagedPaths, 1)
	assert.True(t, fake.stagedExists[0], "staging artifact present during file build")
	assert.Equal(t, dir, filepath.Dir(fake.stagedPaths[0]))
}

func TestBuilder_StagingArtifactRemovedAfterBuild(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRetriever{buildErr: fmt.Errorf("bulk path exploded")}
	corpus := collect.FromDocuments([]string{"delta text"})

	_, err := NewBuilder(dir).Build(context.Background(), fake, corpus)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging artifact and lock removed on success")
}

func TestBuilder_StagingArtifactRemovedAfterFailure(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRetriever{
		buildErr:    fmt.Errorf("bulk path exploded"),
		fromFileErr: fmt.Errorf("file path exploded"),
	}
	corpus := collect.FromDocuments([]string{"epsilon text"})

	_, err := NewBuilder(dir).Build(context.Background(), fake, corpus)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging artifact and lock removed on failure")
}

func TestBuilder_BothPathsFailReportsBoth(t *testing.T) {
	fake := &fakeRetriever{
		buildErr:    fmt.Errorf("bulk path exploded"),
		fromFileErr: fmt.Errorf("file path exploded"),
	}
	corpus := collect.FromDocuments([]string{"zeta text"})

	result, err := NewBuilder(t.TempDir()).Build(context.Background(), fake, corpus)
	require.Error(t, err)
	assert.Nil(t, result)

	assert.True(t, errors.IsKind(err, errors.KindBuild))
	assert.Contains(t, err.Error(), "bulk path exploded")
	assert.Contains(t, err.Error(), "file path exploded")
	assert.Equal(t, 0, fake.queryCount, "no smoke test after failure")
}

func TestBuilder_EmptyCorpusBuildsWithoutSmokeTest(t *testing.T) {
	fake := &fakeRetriever{}
	corpus := collect.FromDocuments(nil)

	result, err := NewBuilder(t.TempDir()).Build(context.Background(), fake, corpus)
	require.NoError(t, err)

	assert.Equal(t, 0, result.DocumentCount)
	assert.Equal(t, 0, fake.queryCount)
}
