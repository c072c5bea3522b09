package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/retrivd/retrivd/internal/build"
	"github.com/retrivd/retrivd/internal/collect"
	"github.com/retrivd/retrivd/internal/config"
	"github.com/retrivd/retrivd/internal/results"
	"github.com/retrivd/retrivd/internal/retriever"
	"github.com/retrivd/retrivd/internal/session"
)

// maxLineBytes bounds a single command line. Inline documents ride inside
// the command, so the limit is generous.
const maxLineBytes = 32 * 1024 * 1024

// Bridge is the command loop. Commands are processed strictly one at a
// time; a command's failure never terminates the loop. The loop exits only
// when the input stream closes.
type Bridge struct {
	cfg     *config.Config
	in      io.Reader
	out     io.Writer
	session *session.Session
	builder *build.Builder
	enc     *json.Encoder
}

// New creates a bridge reading commands from in and writing responses to out.
func New(cfg *config.Config, in io.Reader, out io.Writer) *Bridge {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Bridge{
		cfg:     cfg,
		in:      in,
		out:     out,
		session: session.New(),
		builder: build.NewBuilder(cfg.StagingDir),
		enc:     json.NewEncoder(out),
	}
}

// Run emits the readiness sentinel and processes commands until the input
// stream closes. Nothing a command does is fatal to the loop.
func (b *Bridge) Run(ctx context.Context) error {
	defer func() {
		if err := b.session.Close(); err != nil {
			slog.Warn("failed to close session", slog.String("error", err.Error()))
		}
	}()

	if _, err := fmt.Fprintln(b.out, ReadySentinel); err != nil {
		return fmt.Errorf("failed to write ready sentinel: %w", err)
	}
	slog.Info("bridge ready")

	scanner := bufio.NewScanner(b.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		b.respond(b.handle(ctx, line))
	}

	if err := scanner.Err(); err != nil {
		slog.Error("input stream error", slog.String("error", err.Error()))
		return err
	}
	slog.Info("input stream closed, exiting")
	return nil
}

// respond writes one response object as a single output line.
func (b *Bridge) respond(resp any) {
	if err := b.enc.Encode(resp); err != nil {
		slog.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// handle decodes and dispatches one command line. Panics are recovered
// into an error response so the loop survives.
func (b *Bridge) handle(ctx context.Context, line string) (resp any) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			slog.Error("panic while handling command",
				slog.Any("panic", r),
				slog.String("stack", stack))
			resp = IndexResponse{
				Status:     StatusError,
				Message:    fmt.Sprintf("internal error: %v", r),
				StackTrace: stack,
			}
		}
	}()

	var cmd Command
	if err := json.Unmarshal([]byte(line), &cmd); err != nil {
		slog.Warn("malformed command line", slog.String("error", err.Error()))
		return ErrorResponse{Error: "Invalid JSON command"}
	}

	switch cmd.Action {
	case ActionConfigure:
		return b.handleConfigure(cmd)
	case ActionIndex:
		return b.handleIndex(ctx, cmd)
	case ActionSearch:
		return b.handleSearch(ctx, cmd)
	default:
		return ErrorResponse{Error: fmt.Sprintf("Unknown action: %s", cmd.Action)}
	}
}

// handleConfigure installs a new retriever. Success invalidates any
// existing corpus and index; failure leaves prior state untouched.
func (b *Bridge) handleConfigure(cmd Command) any {
	cfg := b.retrieverConfig(cmd)

	r, resolved, err := retriever.Open(cfg)
	if err != nil {
		slog.Error("retriever configuration failed",
			slog.String("retriever_type", string(cfg.Type)),
			slog.String("error", err.Error()))
		return StatusResponse{Status: StatusError, Message: err.Error()}
	}

	b.session.Configure(resolved, r)
	return StatusResponse{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Retriever configured: %s", r.Name()),
	}
}

// handleIndex collects documents and builds the index. The corpus and
// session state advance only on build success.
func (b *Bridge) handleIndex(ctx context.Context, cmd Command) any {
	// The index command may (re)configure: always when the session is
	// unconfigured, and whenever the command carries retriever settings.
	if !b.session.CanIndex() || cmd.RetrieverType != "" || cmd.Options != nil {
		cfg := b.retrieverConfig(cmd)
		r, resolved, err := retriever.Open(cfg)
		if err != nil {
			return IndexResponse{Status: StatusError, Message: err.Error()}
		}
		b.session.Configure(resolved, r)
	}

	var corpus *collect.Corpus
	switch {
	case len(cmd.Directories) > 0:
		corpus = collect.FromDirectories(cmd.Directories)
	case len(cmd.Documents) > 0:
		corpus = collect.FromDocuments(cmd.Documents)
	default:
		corpus = collect.FromDocuments(nil)
	}

	if corpus.Len() == 0 {
		return IndexResponse{
			Status:     StatusWarning,
			Message:    "No documents found to index",
			TotalFiles: 0,
		}
	}

	result, err := b.builder.Build(ctx, b.session.Retriever(), corpus)
	if err != nil {
		slog.Error("index build failed", slog.String("error", err.Error()))
		return IndexResponse{Status: StatusError, Message: err.Error()}
	}

	b.session.CommitIndex(corpus)
	slog.Info("index built",
		slog.Int("documents", result.DocumentCount),
		slog.Bool("used_fallback", result.UsedFallback),
		slog.Duration("duration", result.Duration))

	return IndexResponse{
		Status:        StatusSuccess,
		TotalFiles:    result.DocumentCount,
		TimeTaken:     result.Duration.Seconds(),
		FilePaths:     result.Origins,
		DocumentCount: result.DocumentCount,
	}
}

// handleSearch runs a query against the indexed corpus.
func (b *Bridge) handleSearch(ctx context.Context, cmd Command) any {
	if !b.session.CanSearch() {
		return SearchResponse{
			Action:  "search_results",
			Results: []results.SearchResult{},
			Error:   "No documents have been indexed yet",
		}
	}

	query := strings.TrimSpace(cmd.Query)
	if query == "" {
		return SearchResponse{
			Action:  "search_results",
			Results: []results.SearchResult{},
			Error:   "Empty query provided",
		}
	}

	topK := b.cfg.DefaultTopK
	if cmd.TopK != nil && *cmd.TopK > 0 {
		topK = *cmd.TopK
	}

	start := time.Now()
	hits, err := b.session.Retriever().Query(ctx, query, topK)
	if err != nil {
		slog.Error("search failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return SearchResponse{
			Action:  "search_results",
			Results: []results.SearchResult{},
			Error:   err.Error(),
		}
	}

	mapped := results.Reconcile(hits, b.session.Corpus())
	return SearchResponse{
		Action:    "search_results",
		Results:   mapped,
		TimeTaken: time.Since(start).Seconds(),
	}
}

// retrieverConfig merges file defaults with a command's retriever fields.
func (b *Bridge) retrieverConfig(cmd Command) retriever.Config {
	cfg := retriever.Config{
		Type: retriever.TypeSparse,
		Sparse: retriever.SparseOptions{
			K1:             b.cfg.Sparse.K1,
			B:              b.cfg.Sparse.B,
			Epsilon:        b.cfg.Sparse.Epsilon,
			StopWords:      b.cfg.Sparse.StopWords,
			MinTokenLength: b.cfg.Sparse.MinTokenLength,
		},
		Dense: retriever.DenseOptions{
			Model:     b.cfg.Dense.Model,
			Normalize: b.cfg.Dense.Normalize,
			MaxLength: b.cfg.Dense.MaxLength,
			UseANN:    b.cfg.Dense.UseANN,
		},
		FusionWeight: b.cfg.Hybrid.FusionWeight,
	}

	if t, ok := retriever.ParseType(b.cfg.DefaultRetriever); ok {
		cfg.Type = t
	}
	if cmd.RetrieverType != "" {
		// Preserve the raw string so the registry can apply its permissive
		// fallback for unknown variants.
		cfg.Type = retriever.Type(strings.ToLower(strings.TrimSpace(cmd.RetrieverType)))
	}

	if o := cmd.Options; o != nil {
		if o.K1 != nil {
			cfg.Sparse.K1 = *o.K1
		}
		if o.B != nil {
			cfg.Sparse.B = *o.B
		}
		if o.Epsilon != nil {
			cfg.Sparse.Epsilon = *o.Epsilon
		}
	}

	if o := cmd.SparseOptions; o != nil {
		if o.K1 != nil {
			cfg.Sparse.K1 = *o.K1
		}
		if o.B != nil {
			cfg.Sparse.B = *o.B
		}
		if o.Epsilon != nil {
			cfg.Sparse.Epsilon = *o.Epsilon
		}
		if o.StopWords != nil {
			cfg.Sparse.StopWords = o.StopWords
		}
		if o.MinTokenLength != nil {
			cfg.Sparse.MinTokenLength = *o.MinTokenLength
		}
	}

	if o := cmd.DenseOptions; o != nil {
		if o.Model != nil {
			cfg.Dense.Model = *o.Model
		}
		if o.Normalize != nil {
			cfg.Dense.Normalize = *o.Normalize
		}
		if o.MaxLength != nil {
			cfg.Dense.MaxLength = *o.MaxLength
		}
		if o.UseANN != nil {
			cfg.Dense.UseANN = *o.UseANN
		}
	}

	if cmd.FusionWeight != nil {
		cfg.FusionWeight = *cmd.FusionWeight
	}

	return cfg
}
