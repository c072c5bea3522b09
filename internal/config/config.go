// Package config loads the optional retrivd runtime configuration.
//
// The config file is YAML. Every field has a working default; a missing
// file is not an error. Command-line flags override file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete retrivd configuration.
type Config struct {
	// LogLevel is the minimum diagnostic level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// DefaultRetriever is the retriever type used when a command omits one.
	DefaultRetriever string `yaml:"default_retriever"`

	// DefaultTopK is the result limit used when a search omits topK.
	DefaultTopK int `yaml:"default_top_k"`

	// StagingDir is the directory for fallback-build staging artifacts.
	// Empty means the system temp directory.
	StagingDir string `yaml:"staging_dir"`

	Sparse SparseConfig `yaml:"sparse"`
	Dense  DenseConfig  `yaml:"dense"`
	Hybrid HybridConfig `yaml:"hybrid"`
}

// SparseConfig holds default BM25 parameters.
type SparseConfig struct {
	// K1 is the term frequency saturation parameter.
	K1 float64 `yaml:"k1"`

	// B is the length normalization parameter.
	B float64 `yaml:"b"`

	// Epsilon is the IDF floor parameter.
	Epsilon float64 `yaml:"epsilon"`

	// StopWords are filtered during tokenization. Empty means the built-in set.
	StopWords []string `yaml:"stop_words"`

	// MinTokenLength is the minimum token length to index.
	MinTokenLength int `yaml:"min_token_length"`
}

// DenseConfig holds default embedding retrieval parameters.
type DenseConfig struct {
	// Model is the embedding model identifier.
	Model string `yaml:"model"`

	// Normalize controls unit-length normalization of embeddings.
	Normalize bool `yaml:"normalize"`

	// MaxLength truncates input text to this many bytes before embedding.
	// Zero means no truncation.
	MaxLength int `yaml:"max_length"`

	// UseANN enables approximate nearest-neighbor search.
	// When false, queries scan stored vectors exactly.
	UseANN bool `yaml:"use_ann"`
}

// HybridConfig holds default fusion parameters.
type HybridConfig struct {
	// FusionWeight is the sparse share of the fused score (0.0-1.0).
	// The dense share is 1 - FusionWeight.
	FusionWeight float64 `yaml:"fusion_weight"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel:         "info",
		DefaultRetriever: "sparse",
		DefaultTopK:      5,
		Sparse: SparseConfig{
			K1:             1.5,
			B:              0.75,
			Epsilon:        0.25,
			MinTokenLength: 2,
		},
		Dense: DenseConfig{
			Model:     "hash",
			Normalize: true,
			UseANN:    true,
		},
		Hybrid: HybridConfig{
			FusionWeight: 0.7,
		},
	}
}

// Load reads the config file at path, applying defaults for absent fields.
// An empty path or a nonexistent file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyBounds()
	return cfg, nil
}

// applyBounds corrects out-of-range values back to defaults.
func (c *Config) applyBounds() {
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = 5
	}
	if c.Sparse.K1 <= 0 {
		c.Sparse.K1 = 1.5
	}
	if c.Sparse.B < 0 || c.Sparse.B > 1 {
		c.Sparse.B = 0.75
	}
	if c.Sparse.Epsilon < 0 {
		c.Sparse.Epsilon = 0.25
	}
	if c.Sparse.MinTokenLength <= 0 {
		c.Sparse.MinTokenLength = 2
	}
	if c.Hybrid.FusionWeight < 0 || c.Hybrid.FusionWeight > 1 {
		c.Hybrid.FusionWeight = 0.7
	}
}
