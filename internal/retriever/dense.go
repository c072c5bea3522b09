package retriever

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/coder/hnsw"
	"golang.org/x/sync/errgroup"
)

// HNSW tuning defaults, following the library's recommendations.
const (
	hnswM        = 16
	hnswEfSearch = 20
	hnswMl       = 0.25
)

// DenseRetriever provides embedding-based retrieval. Documents are embedded
// with a deterministic hash model and searched either through an HNSW graph
// (approximate) or an exact scan over the stored vectors.
type DenseRetriever struct {
	mu       sync.RWMutex
	embedder Embedder
	opts     DenseOptions

	graph   *hnsw.Graph[uint64]
	idMap   map[string]uint64 // document ID -> graph key
	keyMap  map[uint64]string // graph key -> document ID
	order   []string          // document IDs in insertion order
	vectors map[string][]float32

	closed bool
}

// NewDenseRetriever creates an embedding retriever with the given options.
// The embedder is wrapped with an LRU cache so repeated queries skip
// recomputation.
func NewDenseRetriever(opts DenseOptions, embedder Embedder) *DenseRetriever {
	return &DenseRetriever{
		embedder: NewCachedEmbedder(embedder, DefaultEmbeddingCacheSize),
		opts:     opts,
	}
}

// newGraph constructs an empty HNSW graph with cosine distance.
func newGraph() *hnsw.Graph[uint64] {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = hnswM
	g.EfSearch = hnswEfSearch
	g.Ml = hnswMl
	return g
}

// Build embeds and indexes the documents, replacing any previous index.
// Embeddings are computed concurrently; graph insertion stays sequential so
// graph keys follow document order.
func (d *DenseRetriever) Build(ctx context.Context, docs []Document) error {
	embeddings := make([][]float32, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, doc := range docs {
		g.Go(func() error {
			vec, err := d.embedder.Embed(gctx, doc.Content)
			if err != nil {
				return err
			}
			embeddings[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	graph := newGraph()
	idMap := make(map[string]uint64, len(docs))
	keyMap := make(map[uint64]string, len(docs))
	order := make([]string, 0, len(docs))
	vectors := make(map[string][]float32, len(docs))

	for i, doc := range docs {
		key := uint64(i)
		graph.Add(hnsw.MakeNode(key, embeddings[i]))
		idMap[doc.ID] = key
		keyMap[key] = doc.ID
		order = append(order, doc.ID)
		vectors[doc.ID] = embeddings[i]
	}

	d.graph = graph
	d.idMap = idMap
	d.keyMap = keyMap
	d.order = order
	d.vectors = vectors
	return nil
}

// BuildFromFile indexes documents from a JSONL staging artifact.
func (d *DenseRetriever) BuildFromFile(ctx context.Context, path string) error {
	docs, err := readStagingFile(path)
	if err != nil {
		return err
	}
	return d.Build(ctx, docs)
}

// Query embeds the text and returns the nearest documents as pair hits.
// A graph key with no surviving ID mapping degrades to an ordinal hit.
func (d *DenseRetriever) Query(ctx context.Context, text string, limit int) ([]Hit, error) {
	query, err := d.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.graph == nil || len(d.order) == 0 {
		return []Hit{}, nil
	}

	if d.opts.UseANN {
		return d.searchANN(query, limit)
	}
	return d.searchExact(query, limit), nil
}

// searchANN queries the HNSW graph.
func (d *DenseRetriever) searchANN(query []float32, limit int) ([]Hit, error) {
	nodes := d.graph.Search(query, limit)

	hits := make([]Hit, 0, len(nodes))
	for _, node := range nodes {
		id, ok := d.keyMap[node.Key]
		if !ok {
			// Orphaned key: report position only.
			slog.Debug("dense hit has no id mapping",
				slog.Uint64("key", node.Key))
			hits = append(hits, Hit{
				Kind:    HitOrdinal,
				Ordinal: int(node.Key),
				Score:   DefaultOrdinalScore,
			})
			continue
		}
		distance := d.graph.Distance(query, node.Value)
		hits = append(hits, Hit{
			Kind:  HitPair,
			ID:    id,
			Score: cosineDistanceToScore(distance),
		})
	}
	return hits, nil
}

// searchExact scans all stored vectors and returns the top matches.
func (d *DenseRetriever) searchExact(query []float32, limit int) []Hit {
	type scored struct {
		id    string
		score float64
	}

	all := make([]scored, 0, len(d.order))
	for _, id := range d.order {
		distance := hnsw.CosineDistance(query, d.vectors[id])
		all = append(all, scored{id: id, score: cosineDistanceToScore(distance)})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	hits := make([]Hit, 0, len(all))
	for _, s := range all {
		hits = append(hits, Hit{Kind: HitPair, ID: s.id, Score: s.score})
	}
	return hits
}

// Name returns the variant name.
func (d *DenseRetriever) Name() string { return string(TypeDense) }

// Close releases the index state.
func (d *DenseRetriever) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.graph = nil
	d.idMap = nil
	d.keyMap = nil
	d.order = nil
	d.vectors = nil
	return nil
}

// cosineDistanceToScore maps cosine distance (0..2) to similarity (0..1).
func cosineDistanceToScore(distance float32) float64 {
	score := 1 - float64(distance)/2
	if score < 0 {
		return 0
	}
	return score
}

// Verify interface implementation.
var _ Retriever = (*DenseRetriever)(nil)
