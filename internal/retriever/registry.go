package retriever

import (
	"log/slog"
	"strings"

	"github.com/retrivd/retrivd/internal/errors"
)

// embedderFactory constructs an embedder for a registered model.
type embedderFactory func(opts DenseOptions) Embedder

// embedderModels is the capability registry for embedding models,
// resolved at configuration time. Only the built-in hash model ships;
// a dense or hybrid request naming anything else is a ConfigError.
var embedderModels = map[string]embedderFactory{
	ModelHash: func(opts DenseOptions) Embedder { return NewHashEmbedder(opts) },
}

// ParseType normalizes a retriever type string. Unrecognized values map to
// sparse, with ok=false so the caller can fall back to default parameters.
func ParseType(s string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeSparse:
		return TypeSparse, true
	case TypeDense:
		return TypeDense, true
	case TypeHybrid:
		return TypeHybrid, true
	default:
		return TypeSparse, false
	}
}

// Open instantiates the retriever selected by cfg.
//
// Exactly one variant is created per call. An unrecognized type falls back
// to sparse with default parameters rather than erroring. A dense or hybrid
// configuration naming an unregistered embedding model returns a
// ConfigError identifying the missing capability and creates nothing.
func Open(cfg Config) (Retriever, Config, error) {
	if _, ok := ParseType(string(cfg.Type)); !ok || cfg.Type == "" {
		if cfg.Type != "" {
			slog.Warn("unknown retriever type, using sparse defaults",
				slog.String("retriever_type", string(cfg.Type)))
		}
		cfg = DefaultConfig()
	}

	switch cfg.Type {
	case TypeDense, TypeHybrid:
		model := cfg.Dense.Model
		if model == "" {
			model = ModelHash
			cfg.Dense.Model = model
		}
		factory, ok := embedderModels[model]
		if !ok {
			return nil, cfg, errors.Config(
				"embedding model \""+model+"\" is not available",
				nil).WithDetail("model", model)
		}
		embedder := factory(cfg.Dense)

		if cfg.Type == TypeDense {
			return NewDenseRetriever(cfg.Dense, embedder), cfg, nil
		}
		hybrid, err := NewHybridRetriever(cfg, embedder)
		if err != nil {
			return nil, cfg, errors.Config("failed to configure hybrid retriever", err)
		}
		return hybrid, cfg, nil

	default:
		sparse, err := NewSparseRetriever(cfg.Sparse)
		if err != nil {
			return nil, cfg, errors.Config("failed to configure sparse retriever", err)
		}
		return sparse, cfg, nil
	}
}
