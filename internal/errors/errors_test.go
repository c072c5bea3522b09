package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeError_Error(t *testing.T) {
	err := Build("both paths failed", nil)
	assert.Equal(t, "[BUILD] both paths failed", err.Error())
}

func TestBridgeError_UnwrapPreservesChain(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Build("fallback failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestBridgeError_IsMatchesByKind(t *testing.T) {
	err := Config("unknown model", nil)

	assert.True(t, stderrors.Is(err, &BridgeError{Kind: KindConfig}))
	assert.False(t, stderrors.Is(err, &BridgeError{Kind: KindBuild}))
}

func TestBridgeError_WithDetail(t *testing.T) {
	err := Config("unknown model", nil).WithDetail("model", "minilm")

	require.NotNil(t, err.Details)
	assert.Equal(t, "minilm", err.Details["model"])
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSearch, KindOf(Search("query failed", nil)))
	assert.Equal(t, KindBuild, KindOf(fmt.Errorf("wrapped: %w", Build("x", nil))))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("plain")))
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Protocol("bad line"))

	assert.True(t, IsKind(err, KindProtocol))
	assert.False(t, IsKind(err, KindConfig))
	assert.False(t, IsKind(fmt.Errorf("plain"), KindProtocol))
}

func TestNewf(t *testing.T) {
	err := Newf(KindSearch, "query %q failed", "cat")
	assert.Equal(t, `[SEARCH] query "cat" failed`, err.Error())
}
