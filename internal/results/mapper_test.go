package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrivd/retrivd/internal/collect"
	"github.com/retrivd/retrivd/internal/retriever"
)

func testCorpus() *collect.Corpus {
	return collect.FromDocuments([]string{"first text", "second text", "third text"})
}

func TestReconcile_StructuredHitKeepsOwnContent(t *testing.T) {
	hits := []retriever.Hit{
		{Kind: retriever.HitStructured, ID: "doc_1", Score: 0.9, Content: "second text"},
	}

	out := Reconcile(hits, testCorpus())

	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Index)
	assert.Equal(t, 0.9, out[0].Score)
	assert.Equal(t, "second text", out[0].Content)
	assert.Equal(t, "document_1", out[0].FilePath)
}

func TestReconcile_PairHitResolvesContentFromCorpus(t *testing.T) {
	hits := []retriever.Hit{
		{Kind: retriever.HitPair, ID: "doc_0", Score: 0.5},
	}

	out := Reconcile(hits, testCorpus())

	require.Len(t, out, 1)
	assert.Equal(t, "first text", out[0].Content)
	assert.Equal(t, "document_0", out[0].FilePath)
}

func TestReconcile_OrdinalHitResolvesByPosition(t *testing.T) {
	hits := []retriever.Hit{
		{Kind: retriever.HitOrdinal, Ordinal: 2, Score: 0.0},
	}

	out := Reconcile(hits, testCorpus())

	require.Len(t, out, 1)
	assert.Equal(t, "third text", out[0].Content)
	assert.Equal(t, "document_2", out[0].FilePath)
	assert.Equal(t, 0.0, out[0].Score)
}

func TestReconcile_UnresolvedPairDegradesToPlaceholder(t *testing.T) {
	hits := []retriever.Hit{
		{Kind: retriever.HitPair, ID: "doc_99", Score: 0.3},
	}

	out := Reconcile(hits, testCorpus())

	require.Len(t, out, 1)
	assert.Equal(t, "[content unavailable for doc_99]", out[0].Content)
	assert.Equal(t, "Unknown", out[0].FilePath)
	assert.Equal(t, 0.3, out[0].Score, "score survives degraded resolution")
}

func TestReconcile_OutOfRangeOrdinalOmitted(t *testing.T) {
	hits := []retriever.Hit{
		{Kind: retriever.HitOrdinal, Ordinal: 99},
		{Kind: retriever.HitPair, ID: "doc_0", Score: 0.1},
	}

	out := Reconcile(hits, testCorpus())

	require.Len(t, out, 1)
	assert.Equal(t, "first text", out[0].Content)
}

func TestReconcile_OrderPreservedVerbatim(t *testing.T) {
	// Given: hits deliberately not sorted by score
	hits := []retriever.Hit{
		{Kind: retriever.HitPair, ID: "doc_2", Score: 0.1},
		{Kind: retriever.HitPair, ID: "doc_0", Score: 0.9},
		{Kind: retriever.HitPair, ID: "doc_1", Score: 0.5},
	}

	out := Reconcile(hits, testCorpus())

	// Then: the backend's order is kept and indices are ranks
	require.Len(t, out, 3)
	assert.Equal(t, "third text", out[0].Content)
	assert.Equal(t, "first text", out[1].Content)
	assert.Equal(t, "second text", out[2].Content)
	for i, r := range out {
		assert.Equal(t, i, r.Index)
	}
}

func TestReconcile_MixedShapesInOneList(t *testing.T) {
	hits := []retriever.Hit{
		{Kind: retriever.HitStructured, ID: "doc_0", Score: 1.0, Content: "first text"},
		{Kind: retriever.HitPair, ID: "doc_1", Score: 0.8},
		{Kind: retriever.HitOrdinal, Ordinal: 2, Score: 0.0},
	}

	out := Reconcile(hits, testCorpus())

	require.Len(t, out, 3)
	assert.Equal(t, "first text", out[0].Content)
	assert.Equal(t, "second text", out[1].Content)
	assert.Equal(t, "third text", out[2].Content)
}

func TestReconcile_EmptyHits(t *testing.T) {
	out := Reconcile(nil, testCorpus())
	assert.Empty(t, out)
}
