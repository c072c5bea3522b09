package retriever

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ModelHash is the built-in deterministic hash embedding model.
const ModelHash = "hash"

// HashDimensions is the embedding dimension of the hash model.
const HashDimensions = 256

// Relative contribution of whole tokens vs character n-grams.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// Embedder maps text to fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	ModelName() string
}

// HashEmbedder generates embeddings by hashing tokens and character
// n-grams into a fixed-size vector. Deterministic, dependency-free, and
// fast; semantic quality is reduced compared to learned models.
type HashEmbedder struct {
	normalize bool
	maxLength int
}

// NewHashEmbedder creates a hash embedder from dense options.
func NewHashEmbedder(opts DenseOptions) *HashEmbedder {
	return &HashEmbedder{
		normalize: opts.Normalize,
		maxLength: opts.MaxLength,
	}
}

// Embed generates the embedding for a single text.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.maxLength > 0 && len(text) > e.maxLength {
		text = text[:e.maxLength]
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, HashDimensions), nil
	}

	vector := make([]float32, HashDimensions)

	for _, token := range Tokenize(trimmed, 1) {
		vector[hashToIndex(token, HashDimensions)] += tokenWeight
	}

	plain := stripNonAlnum(trimmed)
	for i := 0; i+ngramSize <= len(plain); i++ {
		vector[hashToIndex(plain[i:i+ngramSize], HashDimensions)] += ngramWeight
	}

	if e.normalize {
		normalizeInPlace(vector)
	}
	return vector, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int { return HashDimensions }

// ModelName returns the model identifier.
func (e *HashEmbedder) ModelName() string { return ModelHash }

// stripNonAlnum lowercases and removes everything but letters and digits.
func stripNonAlnum(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hashToIndex maps a string to a vector index via FNV-64.
func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

// normalizeInPlace scales a vector to unit length. Zero vectors are left as-is.
func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return
	}
	for i, val := range v {
		v[i] = float32(float64(val) / magnitude)
	}
}

// DefaultEmbeddingCacheSize bounds the embedding LRU cache.
const DefaultEmbeddingCacheSize = 1000

// CachedEmbedder wraps an Embedder with LRU caching so repeated texts
// (notably repeated queries) skip recomputation.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder creates a cached embedder wrapping inner.
func NewCachedEmbedder(inner Embedder, cacheSize int) *CachedEmbedder {
	if cacheSize <= 0 {
		cacheSize = DefaultEmbeddingCacheSize
	}
	cache, _ := lru.New[string, []float32](cacheSize)
	return &CachedEmbedder{inner: inner, cache: cache}
}

// cacheKey hashes text plus model name to a fixed-length key.
func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + c.inner.ModelName()))
	return hex.EncodeToString(sum[:])
}

// Embed returns the cached embedding if present, computing and caching otherwise.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}
	c.cache.Add(key, vec)
	return vec, nil
}

// Dimensions returns the embedding dimension of the inner embedder.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// ModelName returns the model identifier of the inner embedder.
func (c *CachedEmbedder) ModelName() string { return c.inner.ModelName() }
