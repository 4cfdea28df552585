package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesChain(t *testing.T) {
	t.Parallel()

	base := stderrors.New("connection refused")
	wrapped := Wrap(base, "token endpoint")

	require.EqualError(t, wrapped, "token endpoint: connection refused")
	require.ErrorIs(t, wrapped, base)

	var e *Error
	require.ErrorAs(t, wrapped, &e)
	require.Contains(t, e.StackTrace(), "errors_test.go")
}

func TestWrapNilIsNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, Wrap(nil, "anything"))
	require.NoError(t, Wrapf(nil, "anything %d", 1))
}

func TestWrapf(t *testing.T) {
	t.Parallel()

	base := stderrors.New("boom")
	err := Wrapf(base, "request %d", 42)
	require.EqualError(t, err, "request 42: boom")
	require.ErrorIs(t, err, base)
}

func TestNewCarriesStack(t *testing.T) {
	t.Parallel()

	err := New("standalone failure")
	require.EqualError(t, err, "standalone failure")

	var e *Error
	require.ErrorAs(t, err, &e)
	require.NotEmpty(t, e.StackTrace())
}
