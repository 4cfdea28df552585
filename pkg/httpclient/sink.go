package httpclient

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileSink stores attachments as numbered files in a directory, for suites
// that run without a report framework. Safe for concurrent use.
type FileSink struct {
	dir string

	mu  sync.Mutex
	seq int
}

// NewFileSink creates the directory if needed and returns a sink writing
// into it.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Attach writes the blob as "<seq>-<name>.<ext>". Write failures are
// swallowed: attachments are diagnostics and must not fail the caller.
func (s *FileSink) Attach(name, mediaType string, body []byte) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	ext := ".txt"
	if mediaType == "application/json" {
		ext = ".json"
	}

	file := filepath.Join(s.dir, fmt.Sprintf("%04d-%s%s", seq, sanitizeName(name), ext))
	_ = os.WriteFile(file, body, 0o644)
}

func sanitizeName(name string) string {
	mapper := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}
	out := strings.Map(mapper, name)
	if len(out) > 80 {
		out = out[:80]
	}
	return out
}

// DiscardSink drops every attachment. Useful as a default when reproduction
// strings are enabled but no report store is configured.
type DiscardSink struct{}

// Attach does nothing.
func (DiscardSink) Attach(string, string, []byte) {}
