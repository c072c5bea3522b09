// Package results reconciles raw retriever hits against the corpus,
// recovering original text and origin for each ranked result.
package results

import (
	"fmt"
	"log/slog"

	"github.com/retrivd/retrivd/internal/collect"
	"github.com/retrivd/retrivd/internal/retriever"
)

// SearchResult is one reconciled result in wire shape.
type SearchResult struct {
	// Index is the 0-based rank in the order received from the backend.
	Index int `json:"index"`

	// Score is the backend score; scales differ between variants.
	Score float64 `json:"score"`

	// Content is the original document text.
	Content string `json:"content"`

	// FilePath is the document origin.
	FilePath string `json:"file_path"`
}

// Placeholder values used when an identifier cannot be resolved.
const unknownOrigin = "Unknown"

// placeholderContent renders the degraded-resolution content for an id.
func placeholderContent(id string) string {
	return fmt.Sprintf("[content unavailable for %s]", id)
}

// Reconcile maps raw hits onto search results, preserving the backend's
// rank order verbatim. Identifier problems degrade to placeholders; hits
// that cannot be resolved at all are logged and omitted. Reconcile never
// fails the whole query.
func Reconcile(hits []retriever.Hit, corpus *collect.Corpus) []SearchResult {
	out := make([]SearchResult, 0, len(hits))

	for rank, hit := range hits {
		switch hit.Kind {
		case retriever.HitStructured:
			origin := unknownOrigin
			if rec, ok := lookup(corpus, hit.ID); ok {
				origin = rec.Origin
			}
			content := hit.Content
			if content == "" {
				if rec, ok := lookup(corpus, hit.ID); ok {
					content = rec.Text
				} else {
					content = placeholderContent(hit.ID)
				}
			}
			out = append(out, SearchResult{
				Index:    rank,
				Score:    hit.Score,
				Content:  content,
				FilePath: origin,
			})

		case retriever.HitPair:
			rec, ok := lookup(corpus, hit.ID)
			if !ok {
				slog.Warn("result id did not resolve, substituting placeholder",
					slog.String("id", hit.ID))
				out = append(out, SearchResult{
					Index:    rank,
					Score:    hit.Score,
					Content:  placeholderContent(hit.ID),
					FilePath: unknownOrigin,
				})
				continue
			}
			out = append(out, SearchResult{
				Index:    rank,
				Score:    hit.Score,
				Content:  rec.Text,
				FilePath: rec.Origin,
			})

		case retriever.HitOrdinal:
			rec, ok := corpus.At(hit.Ordinal)
			if !ok {
				slog.Warn("ordinal hit out of range, omitting",
					slog.Int("ordinal", hit.Ordinal),
					slog.Int("corpus_size", corpus.Len()))
				continue
			}
			out = append(out, SearchResult{
				Index:    rank,
				Score:    hit.Score,
				Content:  rec.Text,
				FilePath: rec.Origin,
			})

		default:
			slog.Warn("unrecognized hit shape, omitting",
				slog.Int("kind", int(hit.Kind)))
		}
	}

	return out
}

// lookup resolves an identifier against the corpus: doc_<n> ids resolve by
// ordinal, anything else by exact id match.
func lookup(corpus *collect.Corpus, id string) (collect.Record, bool) {
	if n, ok := collect.ParseID(id); ok {
		return corpus.At(n)
	}
	return corpus.ByID(id)
}
