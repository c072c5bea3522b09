// Package errors provides structured error handling for retrivd.
//
// Every failure crossing a component boundary is a *BridgeError carrying a
// Kind from the bridge taxonomy: Config, Collection, Build, Search,
// Protocol, Internal. Collection errors are always recovered locally;
// everything else surfaces as a structured error response on the output
// stream. Nothing here is fatal to the process.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a bridge error.
type Kind string

const (
	// KindConfig indicates a retriever variant is unavailable or misconfigured.
	KindConfig Kind = "CONFIG"
	// KindCollection indicates a per-item document collection failure (recoverable).
	KindCollection Kind = "COLLECTION"
	// KindBuild indicates both the primary and fallback index builds failed.
	KindBuild Kind = "BUILD"
	// KindSearch indicates the backend query failed.
	KindSearch Kind = "SEARCH"
	// KindProtocol indicates a malformed command line or unknown action.
	KindProtocol Kind = "PROTOCOL"
	// KindInternal indicates an unexpected internal failure.
	KindInternal Kind = "INTERNAL"
)

// BridgeError is the structured error type for retrivd.
type BridgeError struct {
	// Kind is the error classification.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind, enabling errors.Is with a bare-kind target.
func (e *BridgeError) Is(target error) bool {
	if t, ok := target.(*BridgeError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *BridgeError) WithDetail(key, value string) *BridgeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new BridgeError with the given kind and message.
func New(kind Kind, message string, cause error) *BridgeError {
	return &BridgeError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// Newf creates a new BridgeError with a formatted message.
func Newf(kind Kind, format string, args ...any) *BridgeError {
	return &BridgeError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Config creates a retriever configuration error.
func Config(message string, cause error) *BridgeError {
	return New(KindConfig, message, cause)
}

// Collection creates a recoverable per-item collection error.
func Collection(message string, cause error) *BridgeError {
	return New(KindCollection, message, cause)
}

// Build creates an index build error.
func Build(message string, cause error) *BridgeError {
	return New(KindBuild, message, cause)
}

// Search creates a backend query error.
func Search(message string, cause error) *BridgeError {
	return New(KindSearch, message, cause)
}

// Protocol creates a protocol error.
func Protocol(message string) *BridgeError {
	return New(KindProtocol, message, nil)
}

// Internal creates an internal error.
func Internal(message string, cause error) *BridgeError {
	return New(KindInternal, message, cause)
}

// KindOf extracts the kind from an error chain.
// Returns KindInternal for errors that are not BridgeErrors.
func KindOf(err error) Kind {
	var be *BridgeError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// IsKind reports whether any error in the chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var be *BridgeError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
