package retriever

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	// textTokenizerName is the registry name of the bridge tokenizer.
	textTokenizerName = "retrivd_tokenizer"

	// textStopFilterName is the registry name of the stop word filter.
	textStopFilterName = "retrivd_stop"

	// textAnalyzerName is the registry name of the bridge analyzer.
	textAnalyzerName = "retrivd_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(textTokenizerName, textTokenizerConstructor)
	_ = registry.RegisterTokenFilter(textStopFilterName, textStopFilterConstructor)
}

// SparseRetriever provides BM25 keyword retrieval backed by an in-memory
// Bleve index. Each Build replaces the index wholesale.
type SparseRetriever struct {
	mu     sync.RWMutex
	index  bleve.Index
	opts   SparseOptions
	closed bool
}

// NewSparseRetriever creates a BM25 retriever with the given options.
func NewSparseRetriever(opts SparseOptions) (*SparseRetriever, error) {
	if opts.K1 <= 0 {
		opts.K1 = 1.5
	}
	if opts.B <= 0 {
		opts.B = 0.75
	}
	if opts.MinTokenLength <= 0 {
		opts.MinTokenLength = 2
	}
	return &SparseRetriever{opts: opts}, nil
}

// indexMapping builds the Bleve mapping with the bridge analyzer.
func indexMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()
	err := m.AddCustomAnalyzer(textAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": textTokenizerName,
		"token_filters": []string{
			lowercase.Name,
			textStopFilterName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add custom analyzer: %w", err)
	}
	m.DefaultAnalyzer = textAnalyzerName
	return m, nil
}

// bleveDocument is the document shape submitted to Bleve.
type bleveDocument struct {
	Content string `json:"content"`
}

// Build indexes the documents in one batch, replacing any previous index.
func (s *SparseRetriever) Build(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	m, err := indexMapping()
	if err != nil {
		return err
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, bleveDocument{Content: doc.Content}); err != nil {
			_ = idx.Close()
			return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	if s.index != nil {
		_ = s.index.Close()
	}
	s.index = idx
	return nil
}

// BuildFromFile indexes documents from a JSONL staging artifact.
func (s *SparseRetriever) BuildFromFile(ctx context.Context, path string) error {
	docs, err := readStagingFile(path)
	if err != nil {
		return err
	}
	return s.Build(ctx, docs)
}

// Query returns up to limit structured hits ranked by BM25 score.
func (s *SparseRetriever) Query(ctx context.Context, text string, limit int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.index == nil {
		return []Hit{}, nil
	}
	if strings.TrimSpace(text) == "" {
		return []Hit{}, nil
	}

	matchQuery := bleve.NewMatchQuery(text)
	matchQuery.SetField("content")

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = limit
	req.Fields = []string{"content"}

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		content, _ := h.Fields["content"].(string)
		hits = append(hits, Hit{
			Kind:    HitStructured,
			ID:      h.ID,
			Score:   h.Score,
			Content: content,
		})
	}
	return hits, nil
}

// Name returns the variant name.
func (s *SparseRetriever) Name() string { return string(TypeSparse) }

// Close releases the underlying index.
func (s *SparseRetriever) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

// readStagingFile parses a JSONL staging artifact into documents.
func readStagingFile(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open staging artifact: %w", err)
	}
	defer f.Close()

	var docs []Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStagingLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("malformed staging record: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read staging artifact: %w", err)
	}
	return docs, nil
}

// maxStagingLine bounds a single staged document record.
const maxStagingLine = 16 * 1024 * 1024

// Verify interface implementation.
var _ Retriever = (*SparseRetriever)(nil)

// textTokenizerConstructor creates the bridge tokenizer for Bleve.
func textTokenizerConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.Tokenizer, error) {
	return &bleveTextTokenizer{}, nil
}

// bleveTextTokenizer adapts Tokenize to Bleve's analysis interface.
type bleveTextTokenizer struct{}

// Tokenize implements analysis.Tokenizer.
func (t *bleveTextTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := Tokenize(text, 2)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0
	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), token)
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}
	return result
}

// textStopFilterConstructor creates the stop word filter for Bleve.
func textStopFilterConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.TokenFilter, error) {
	return &bleveStopFilter{stopWords: buildStopWordSet(DefaultStopWords)}, nil
}

// bleveStopFilter drops stop words from the token stream.
type bleveStopFilter struct {
	stopWords map[string]struct{}
}

// Filter implements analysis.TokenFilter.
func (f *bleveStopFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	result := make(analysis.TokenStream, 0, len(input))
	for _, token := range input {
		if _, isStop := f.stopWords[strings.ToLower(string(token.Term))]; !isStop {
			result = append(result, token)
		}
	}
	return result
}
