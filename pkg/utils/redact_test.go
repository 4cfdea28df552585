package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactHeaders(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("Authorization", "Bearer secret-token")
	h.Set("Cookie", "session=abc")
	h.Set("X-Api-Key", "key-123")
	h.Set("Content-Type", "application/json")
	h.Add("Accept", "application/json")
	h.Add("Accept", "text/plain")

	out := RedactHeaders(h)

	require.Equal(t, "***REDACTED***", out.Get("Authorization"))
	require.Equal(t, "***REDACTED***", out.Get("Cookie"))
	require.Equal(t, "***REDACTED***", out.Get("X-Api-Key"))
	require.Equal(t, "application/json", out.Get("Content-Type"))
	require.Equal(t, []string{"application/json", "text/plain"}, out.Values("Accept"))

	// The original is untouched.
	require.Equal(t, "Bearer secret-token", h.Get("Authorization"))
}

func TestRedactHeadersNonCanonicalKey(t *testing.T) {
	t.Parallel()

	h := http.Header{"authorization": {"Bearer x"}}
	out := RedactHeaders(h)
	require.Equal(t, []string{"***REDACTED***"}, out["authorization"])
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()

	require.Equal(t, "***REDACTED***", MaskSecret(""))
	require.Equal(t, "***REDACTED***", MaskSecret("short"))
	require.Equal(t, "hu...r2", MaskSecret("hunter2"))
	require.Equal(t, "se...23", MaskSecret("secret-key-123"))
}

func TestHeaderMap(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Add("Accept", "application/json")
	h.Add("Accept", "text/plain")

	m := HeaderMap(h)
	require.Equal(t, "application/json", m["Content-Type"])
	require.Equal(t, "application/json, text/plain", m["Accept"])
}

func TestShellQuote(t *testing.T) {
	t.Parallel()

	require.Equal(t, "''", ShellQuote(""))
	require.Equal(t, "'plain'", ShellQuote("plain"))
	require.Equal(t, "'has space'", ShellQuote("has space"))
	require.Equal(t, `'it'\''s'`, ShellQuote("it's"))
}
