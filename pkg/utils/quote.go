package utils

import "strings"

// ShellQuote wraps s in single quotes, escaping embedded single quotes so
// the result is safe to paste into a POSIX shell.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
