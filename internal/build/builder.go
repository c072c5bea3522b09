// Package build drives a retriever backend to index a corpus.
//
// The primary path is the backend's bulk in-memory build. If that fails,
// the corpus is serialized to a JSONL staging artifact on disk and the
// backend's file-based build runs against it; the artifact is removed on
// every exit path. Only if both paths fail does the build fail.
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/retrivd/retrivd/internal/collect"
	"github.com/retrivd/retrivd/internal/errors"
	"github.com/retrivd/retrivd/internal/retriever"
)

// Result reports a successful build.
type Result struct {
	// DocumentCount is the number of records indexed.
	DocumentCount int

	// Origins lists the origin of every indexed record in order.
	Origins []string

	// Duration is the wall-clock time of whichever path succeeded.
	Duration time.Duration

	// UsedFallback reports whether the file-staged path produced the index.
	UsedFallback bool
}

// Builder runs index builds against a retriever backend.
type Builder struct {
	// StagingDir hosts fallback staging artifacts. Empty means os.TempDir.
	StagingDir string
}

// NewBuilder creates a builder staging into dir (empty means os.TempDir).
func NewBuilder(dir string) *Builder {
	return &Builder{StagingDir: dir}
}

// Build indexes the corpus with r, falling back to the file-staged path if
// the bulk build fails. On success it runs one diagnostic smoke query whose
// outcome never affects the result.
func (b *Builder) Build(ctx context.Context, r retriever.Retriever, corpus *collect.Corpus) (*Result, error) {
	docs := make([]retriever.Document, 0, corpus.Len())
	for _, rec := range corpus.Records() {
		docs = append(docs, retriever.Document{ID: rec.ID, Content: rec.Text})
	}

	result := &Result{
		DocumentCount: corpus.Len(),
		Origins:       corpus.Origins(),
	}

	primaryStart := time.Now()
	primaryErr := r.Build(ctx, docs)
	if primaryErr == nil {
		result.Duration = time.Since(primaryStart)
		b.smokeTest(ctx, r, docs)
		return result, nil
	}

	slog.Warn("primary index build failed, trying file-staged fallback",
		slog.String("retriever", r.Name()),
		slog.String("error", primaryErr.Error()))

	fallbackStart := time.Now()
	fallbackErr := b.buildStaged(ctx, r, docs)
	if fallbackErr != nil {
		return nil, errors.Build(
			fmt.Sprintf("primary build failed: %v; fallback build failed: %v",
				primaryErr, fallbackErr),
			fallbackErr)
	}

	result.Duration = time.Since(fallbackStart)
	result.UsedFallback = true
	b.smokeTest(ctx, r, docs)
	return result, nil
}

// buildStaged serializes the documents to a staging artifact and runs the
// backend's file-based build. The artifact and its lock sidecar are removed
// whether or not the build succeeds.
func (b *Builder) buildStaged(ctx context.Context, r retriever.Retriever, docs []retriever.Document) error {
	dir := b.StagingDir
	if dir == "" {
		dir = os.TempDir()
	}

	f, err := os.CreateTemp(dir, "retrivd-staging-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create staging artifact: %w", err)
	}
	path := f.Name()
	lockPath := path + ".lock"
	defer func() {
		_ = os.Remove(path)
		_ = os.Remove(lockPath)
	}()

	// Guard against another bridge process sharing the staging directory.
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to lock staging artifact: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	enc := json.NewEncoder(f)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write staging record: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to flush staging artifact: %w", err)
	}

	slog.Debug("running file-staged build",
		slog.String("artifact", path),
		slog.Int("documents", len(docs)))

	return r.BuildFromFile(ctx, path)
}

// smokeTest runs one query with a term drawn from the corpus. Failures are
// diagnostic only.
func (b *Builder) smokeTest(ctx context.Context, r retriever.Retriever, docs []retriever.Document) {
	if len(docs) == 0 {
		return
	}

	term := docs[0].Content
	if tokens := retriever.Tokenize(docs[0].Content, 2); len(tokens) > 0 {
		term = tokens[0]
	}

	hits, err := r.Query(ctx, term, 1)
	if err != nil {
		slog.Warn("smoke-test query failed",
			slog.String("term", term),
			slog.String("error", err.Error()))
		return
	}
	slog.Debug("smoke-test query ok",
		slog.String("term", term),
		slog.Int("hits", len(hits)))
}
