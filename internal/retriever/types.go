// Package retriever provides the pluggable retrieval backends for retrivd:
// sparse (BM25 via Bleve), dense (hash embeddings via HNSW), and hybrid
// (weighted Reciprocal Rank Fusion of both).
//
// The rest of the bridge treats a Retriever as opaque: it builds an index
// over documents, answers ranked queries, and reports hits in one of three
// shapes that the result mapper reconciles against the corpus.
package retriever

import (
	"context"
	"fmt"
)

// Type identifies a retriever variant.
type Type string

const (
	TypeSparse Type = "sparse"
	TypeDense  Type = "dense"
	TypeHybrid Type = "hybrid"
)

// Document is one indexable unit submitted to a backend.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"text"`
}

// HitKind discriminates the raw result shapes a backend may produce.
type HitKind int

const (
	// HitStructured carries its own identifier, score, and content.
	HitStructured HitKind = iota

	// HitPair carries an identifier and score; content is looked up
	// from the corpus by the result mapper.
	HitPair

	// HitOrdinal carries only a position into the indexed corpus with an
	// implicit score. Emitted when a backend has no richer structure left,
	// e.g. an orphaned internal id mapping.
	HitOrdinal
)

// DefaultOrdinalScore is the implicit score attached to ordinal hits.
const DefaultOrdinalScore = 0.0

// Hit is a single raw ranked result from a backend.
type Hit struct {
	Kind    HitKind
	ID      string  // Structured, Pair
	Score   float64 // Structured, Pair; DefaultOrdinalScore for Ordinal
	Content string  // Structured only
	Ordinal int     // Ordinal only
}

// SparseOptions configures the BM25 backend.
type SparseOptions struct {
	// K1 is the term frequency saturation parameter (default: 1.5).
	K1 float64

	// B is the length normalization parameter (default: 0.75).
	B float64

	// Epsilon is the IDF floor parameter (default: 0.25).
	Epsilon float64

	// StopWords are filtered during tokenization. Nil means the built-in set.
	StopWords []string

	// MinTokenLength is the minimum token length to index (default: 2).
	MinTokenLength int
}

// DefaultSparseOptions returns the default BM25 parameters.
func DefaultSparseOptions() SparseOptions {
	return SparseOptions{
		K1:             1.5,
		B:              0.75,
		Epsilon:        0.25,
		MinTokenLength: 2,
	}
}

// DenseOptions configures the embedding backend.
type DenseOptions struct {
	// Model is the embedding model identifier (default: "hash").
	Model string

	// Normalize controls unit-length normalization of embeddings.
	Normalize bool

	// MaxLength truncates input text to this many bytes before embedding.
	// Zero means no truncation.
	MaxLength int

	// UseANN enables approximate nearest-neighbor search via HNSW.
	// When false, queries scan stored vectors exactly.
	UseANN bool
}

// DefaultDenseOptions returns the default embedding parameters.
func DefaultDenseOptions() DenseOptions {
	return DenseOptions{
		Model:     ModelHash,
		Normalize: true,
		UseANN:    true,
	}
}

// Config selects and parameterizes exactly one retriever variant.
type Config struct {
	Type   Type
	Sparse SparseOptions
	Dense  DenseOptions

	// FusionWeight is the sparse share of the hybrid fused score (0.0-1.0).
	FusionWeight float64
}

// DefaultConfig returns a sparse configuration with default parameters.
func DefaultConfig() Config {
	return Config{
		Type:         TypeSparse,
		Sparse:       DefaultSparseOptions(),
		Dense:        DefaultDenseOptions(),
		FusionWeight: DefaultFusionWeight,
	}
}

// DefaultFusionWeight is the default sparse share in hybrid fusion.
const DefaultFusionWeight = 0.7

// Retriever indexes documents and answers ranked queries.
//
// Build and BuildFromFile replace any previous index wholesale. Query is
// only meaningful after a successful build.
type Retriever interface {
	// Build indexes the documents in one bulk operation.
	Build(ctx context.Context, docs []Document) error

	// BuildFromFile indexes documents from a JSONL staging artifact,
	// one {"id","text"} object per line.
	BuildFromFile(ctx context.Context, path string) error

	// Query returns up to limit hits ranked best-first.
	Query(ctx context.Context, text string, limit int) ([]Hit, error)

	// Name returns the variant name for diagnostics.
	Name() string

	// Close releases backend resources.
	Close() error
}

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = fmt.Errorf("retriever is closed")
