package retriever

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// HybridRetriever fuses sparse and dense retrieval with weighted RRF.
// The two sub-indexes are built concurrently and queried with an expanded
// candidate window before fusion trims back to the requested limit.
type HybridRetriever struct {
	sparse *SparseRetriever
	dense  *DenseRetriever
	fusion *rrfFusion
}

// candidateMultiplier widens sub-queries so fusion sees enough overlap.
const candidateMultiplier = 3

// NewHybridRetriever creates a hybrid retriever over fresh sparse and
// dense backends.
func NewHybridRetriever(cfg Config, embedder Embedder) (*HybridRetriever, error) {
	sparse, err := NewSparseRetriever(cfg.Sparse)
	if err != nil {
		return nil, err
	}
	return &HybridRetriever{
		sparse: sparse,
		dense:  NewDenseRetriever(cfg.Dense, embedder),
		fusion: newRRFFusion(DefaultRRFConstant, cfg.FusionWeight),
	}, nil
}

// Build indexes the documents in both backends concurrently.
func (h *HybridRetriever) Build(ctx context.Context, docs []Document) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.sparse.Build(gctx, docs) })
	g.Go(func() error { return h.dense.Build(gctx, docs) })
	return g.Wait()
}

// BuildFromFile indexes documents from a JSONL staging artifact.
func (h *HybridRetriever) BuildFromFile(ctx context.Context, path string) error {
	docs, err := readStagingFile(path)
	if err != nil {
		return err
	}
	return h.Build(ctx, docs)
}

// Query runs both backends and fuses their rankings into pair hits.
func (h *HybridRetriever) Query(ctx context.Context, text string, limit int) ([]Hit, error) {
	window := limit * candidateMultiplier
	if window < limit {
		window = limit
	}

	sparseHits, err := h.sparse.Query(ctx, text, window)
	if err != nil {
		return nil, err
	}
	denseHits, err := h.dense.Query(ctx, text, window)
	if err != nil {
		return nil, err
	}

	// Ordinal hits carry no identifier and cannot be joined across sources.
	identified := denseHits[:0:0]
	for _, hit := range denseHits {
		if hit.Kind == HitOrdinal {
			slog.Debug("dropping ordinal hit from fusion",
				slog.Int("ordinal", hit.Ordinal))
			continue
		}
		identified = append(identified, hit)
	}

	fused := h.fusion.fuse(sparseHits, identified)
	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}

// Name returns the variant name.
func (h *HybridRetriever) Name() string { return string(TypeHybrid) }

// Close releases both backends.
func (h *HybridRetriever) Close() error {
	err := h.sparse.Close()
	if derr := h.dense.Close(); err == nil {
		err = derr
	}
	return err
}

// Verify interface implementation.
var _ Retriever = (*HybridRetriever)(nil)
