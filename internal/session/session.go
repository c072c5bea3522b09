// Package session holds the bridge's retrieval state: the active retriever
// configuration, the indexed corpus snapshot, and the lifecycle state
// machine gating search.
package session

import (
	"log/slog"

	"github.com/retrivd/retrivd/internal/collect"
	"github.com/retrivd/retrivd/internal/retriever"
)

// State is the session lifecycle state.
type State int

const (
	// Unconfigured means no retriever has been selected.
	Unconfigured State = iota
	// Configured means a retriever exists but nothing is indexed.
	Configured
	// Indexed means a corpus has been successfully indexed.
	Indexed
)

// String returns the state name for diagnostics.
func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Indexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// Session owns the retrieval state for one bridge process. The machine
// cycles Unconfigured -> Configured -> Indexed for the process lifetime;
// there is no terminal state.
type Session struct {
	state     State
	config    retriever.Config
	retriever retriever.Retriever
	corpus    *collect.Corpus
}

// New creates an unconfigured session.
func New() *Session {
	return &Session{state: Unconfigured}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Config returns the active retriever configuration.
func (s *Session) Config() retriever.Config { return s.config }

// Retriever returns the active backend, or nil before configuration.
func (s *Session) Retriever() retriever.Retriever { return s.retriever }

// Corpus returns the indexed corpus snapshot, or nil before indexing.
func (s *Session) Corpus() *collect.Corpus { return s.corpus }

// Configure installs a new retriever, unconditionally discarding any
// existing corpus and index. The previous backend is closed.
func (s *Session) Configure(cfg retriever.Config, r retriever.Retriever) {
	if s.retriever != nil {
		if err := s.retriever.Close(); err != nil {
			slog.Warn("failed to close previous retriever",
				slog.String("error", err.Error()))
		}
	}
	s.config = cfg
	s.retriever = r
	s.corpus = nil
	s.state = Configured
	slog.Debug("session configured",
		slog.String("retriever", r.Name()))
}

// CommitIndex publishes the corpus after a successful build and moves the
// session to Indexed. Callers must not invoke it on a failed build; the
// previous corpus and state survive failures untouched.
func (s *Session) CommitIndex(corpus *collect.Corpus) {
	s.corpus = corpus
	s.state = Indexed
	slog.Debug("session indexed",
		slog.Int("documents", corpus.Len()))
}

// CanIndex reports whether an index command is legal in the current state.
func (s *Session) CanIndex() bool {
	return s.state == Configured || s.state == Indexed
}

// CanSearch reports whether search is legal in the current state.
func (s *Session) CanSearch() bool {
	return s.state == Indexed
}

// Close releases the active backend.
func (s *Session) Close() error {
	if s.retriever == nil {
		return nil
	}
	return s.retriever.Close()
}
