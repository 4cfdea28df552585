// Package utils holds small helpers shared by the hook handlers: header
// redaction for logs and shell quoting for reproduction strings.
package utils

import (
	"net/http"
	"strings"
)

// sensitiveHeaders are masked by RedactHeaders before a header set is logged
// or attached to a report.
var sensitiveHeaders = map[string]struct{}{
	"Authorization":       {},
	"Proxy-Authorization": {},
	"Cookie":              {},
	"Set-Cookie":          {},
	"X-Api-Key":           {},
}

const redactedValue = "***REDACTED***"

// RedactHeaders returns a copy of h with sensitive values masked. The input
// is never modified.
func RedactHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		if _, ok := sensitiveHeaders[http.CanonicalHeaderKey(k)]; ok {
			out[k] = []string{redactedValue}
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// MaskSecret keeps the first and last two characters of s and masks the
// rest. Short secrets are fully masked.
func MaskSecret(s string) string {
	if len(s) <= 6 {
		return redactedValue
	}
	return s[:2] + "..." + s[len(s)-2:]
}

// HeaderMap flattens an http.Header into a map with comma-joined values,
// convenient for structured log fields and JSON attachments.
func HeaderMap(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}
