package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrivd/retrivd/internal/collect"
	"github.com/retrivd/retrivd/internal/retriever"
)

// stubRetriever tracks Close calls.
type stubRetriever struct {
	closed int
}

func (s *stubRetriever) Build(context.Context, []retriever.Document) error { return nil }
func (s *stubRetriever) BuildFromFile(context.Context, string) error       { return nil }
func (s *stubRetriever) Query(context.Context, string, int) ([]retriever.Hit, error) {
	return nil, nil
}
func (s *stubRetriever) Name() string { return "stub" }
func (s *stubRetriever) Close() error { s.closed++; return nil }

func TestSession_StartsUnconfigured(t *testing.T) {
	s := New()

	assert.Equal(t, Unconfigured, s.State())
	assert.False(t, s.CanIndex())
	assert.False(t, s.CanSearch())
	assert.Nil(t, s.Retriever())
	assert.Nil(t, s.Corpus())
}

func TestSession_ConfigureEnablesIndexing(t *testing.T) {
	s := New()

	s.Configure(retriever.DefaultConfig(), &stubRetriever{})

	assert.Equal(t, Configured, s.State())
	assert.True(t, s.CanIndex())
	assert.False(t, s.CanSearch(), "search requires an index")
}

func TestSession_CommitIndexEnablesSearch(t *testing.T) {
	s := New()
	s.Configure(retriever.DefaultConfig(), &stubRetriever{})

	s.CommitIndex(collect.FromDocuments([]string{"text"}))

	assert.Equal(t, Indexed, s.State())
	assert.True(t, s.CanSearch())
	assert.True(t, s.CanIndex(), "reindexing stays legal")
	require.NotNil(t, s.Corpus())
	assert.Equal(t, 1, s.Corpus().Len())
}

func TestSession_ReconfigureDiscardsIndexAndClosesBackend(t *testing.T) {
	// Given: an indexed session
	s := New()
	first := &stubRetriever{}
	s.Configure(retriever.DefaultConfig(), first)
	s.CommitIndex(collect.FromDocuments([]string{"text"}))

	// When: reconfiguring
	second := &stubRetriever{}
	s.Configure(retriever.DefaultConfig(), second)

	// Then: the old backend is closed and the index is gone
	assert.Equal(t, 1, first.closed)
	assert.Equal(t, Configured, s.State())
	assert.Nil(t, s.Corpus())
	assert.False(t, s.CanSearch())
	assert.Same(t, retriever.Retriever(second), s.Retriever())
}

func TestSession_CloseReleasesBackend(t *testing.T) {
	s := New()
	r := &stubRetriever{}
	s.Configure(retriever.DefaultConfig(), r)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, r.closed)
}

func TestSession_CloseWithoutBackend(t *testing.T) {
	assert.NoError(t, New().Close())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unconfigured", Unconfigured.String())
	assert.Equal(t, "configured", Configured.String())
	assert.Equal(t, "indexed", Indexed.String())
	assert.Equal(t, "unknown", State(99).String())
}
