// Package bridge implements the retrivd command loop: newline-delimited
// JSON commands on the input stream, one JSON response per line on the
// output stream, diagnostics on stderr only.
package bridge

import (
	"github.com/retrivd/retrivd/internal/results"
)

// Command actions.
const (
	ActionConfigure = "configure_retriever"
	ActionIndex     = "index"
	ActionSearch    = "search"
)

// ReadySentinel is the plain-text line emitted once on the output stream
// when the bridge is ready to accept commands.
const ReadySentinel = "RETRIV_READY"

// Response status values.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Command is one decoded input line. Fields are a union across the three
// actions; absent fields stay nil/zero.
type Command struct {
	Action string `json:"action"`

	// Shared: retriever selection.
	RetrieverType string `json:"retriever_type,omitempty"`

	// configure_retriever fields.
	SparseOptions *SparseOptions `json:"sparse_options,omitempty"`
	DenseOptions  *DenseOptions  `json:"dense_options,omitempty"`
	FusionWeight  *float64       `json:"fusion_weight,omitempty"`

	// index fields. Directories take precedence over Documents.
	Directories []string      `json:"directories,omitempty"`
	Documents   []string      `json:"documents,omitempty"`
	Options     *BM25Options  `json:"options,omitempty"`

	// search fields.
	Query string `json:"query,omitempty"`
	TopK  *int   `json:"topK,omitempty"`
}

// BM25Options is the inline parameter bag accepted by the index command.
// Pointer fields distinguish absent from zero.
type BM25Options struct {
	K1      *float64 `json:"k1,omitempty"`
	B       *float64 `json:"b,omitempty"`
	Epsilon *float64 `json:"epsilon,omitempty"`
}

// SparseOptions configures the sparse variant over the wire.
type SparseOptions struct {
	K1             *float64 `json:"k1,omitempty"`
	B              *float64 `json:"b,omitempty"`
	Epsilon        *float64 `json:"epsilon,omitempty"`
	StopWords      []string `json:"stop_words,omitempty"`
	MinTokenLength *int     `json:"min_token_length,omitempty"`
}

// DenseOptions configures the dense variant over the wire.
type DenseOptions struct {
	Model     *string `json:"model,omitempty"`
	Normalize *bool   `json:"normalize,omitempty"`
	MaxLength *int    `json:"max_length,omitempty"`
	UseANN    *bool   `json:"use_ann,omitempty"`
}

// StatusResponse answers configure_retriever.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// IndexResponse answers the index command.
type IndexResponse struct {
	Status        string   `json:"status"`
	Message       string   `json:"message,omitempty"`
	TotalFiles    int      `json:"total_files"`
	TimeTaken     float64  `json:"time_taken,omitempty"`
	FilePaths     []string `json:"file_paths,omitempty"`
	DocumentCount int      `json:"document_count,omitempty"`
	StackTrace    string   `json:"stack_trace,omitempty"`
}

// SearchResponse answers the search command.
type SearchResponse struct {
	Action    string                 `json:"action"`
	Results   []results.SearchResult `json:"results"`
	TimeTaken float64                `json:"time_taken,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// ErrorResponse answers protocol-level failures: malformed lines and
// unknown actions.
type ErrorResponse struct {
	Error string `json:"error"`
}
