package httpclient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// memorySink collects attachments in memory for assertions.
type memorySink struct {
	mu          sync.Mutex
	attachments []attachment
}

type attachment struct {
	name      string
	mediaType string
	body      []byte
}

func (s *memorySink) Attach(name, mediaType string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, attachment{name, mediaType, body})
}

func (s *memorySink) all() []attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]attachment(nil), s.attachments...)
}

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	short := bytes.Repeat([]byte("a"), 100)
	require.Equal(t, string(short), TruncateBody(short))

	exact := bytes.Repeat([]byte("b"), maxHookBody)
	require.Equal(t, string(exact), TruncateBody(exact), "a body at the limit is untouched")

	long := bytes.Repeat([]byte("c"), 50000)
	got := TruncateBody(long)
	require.Len(t, got, maxHookBody+len(truncationMarker))
	require.True(t, strings.HasSuffix(got, truncationMarker))
	require.Equal(t, string(long[:maxHookBody]), strings.TrimSuffix(got, truncationMarker))
}

func TestCurlHandlerBuildsReproductionString(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	h := NewCurlHandler(sink)

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer it's-a-secret")

	h.HandleRequest(RequestEvent{
		ID:     "req-1",
		Method: http.MethodPost,
		URL:    "https://api.test/v2/pet",
		Header: header,
		Body:   []byte(`{"name":"test-pet"}`),
	})

	got := sink.all()
	require.Len(t, got, 1)
	require.Equal(t, "cURL: POST https://api.test/v2/pet", got[0].name)
	require.Equal(t, "text/plain", got[0].mediaType)

	cmd := string(got[0].body)
	require.True(t, strings.HasPrefix(cmd, "curl -X POST 'https://api.test/v2/pet'"))
	require.Contains(t, cmd, "-H 'Content-Type: application/json'")
	require.Contains(t, cmd, `-d '{"name":"test-pet"}'`)
	// Single quotes inside values survive shell quoting.
	require.Contains(t, cmd, `'Authorization: Bearer it'\''s-a-secret'`)
}

func TestAttachmentHandlerRedactsAndTruncates(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	h := NewAttachmentHandler(sink)

	header := http.Header{}
	header.Set("Authorization", "Bearer super-secret")
	header.Set("X-Env", "test")

	h.HandleRequest(RequestEvent{
		ID:     "req-7",
		Method: http.MethodGet,
		URL:    "https://api.test/v2/items",
		Header: header,
		Body:   bytes.Repeat([]byte("x"), 50000),
	})
	h.HandleResponse(ResponseEvent{
		ID:         "req-7",
		Method:     http.MethodGet,
		URL:        "https://api.test/v2/items",
		StatusCode: http.StatusOK,
		Elapsed:    250 * time.Millisecond,
		Body:       []byte(`[]`),
	})

	got := sink.all()
	require.Len(t, got, 2)

	var req map[string]any
	require.NoError(t, json.Unmarshal(got[0].body, &req))
	require.Equal(t, "req-7", req["request_id"])
	headers := req["headers"].(map[string]any)
	require.Equal(t, "***REDACTED***", headers["Authorization"], "credentials never land in attachments")
	require.Equal(t, "test", headers["X-Env"])
	require.True(t, strings.HasSuffix(req["body"].(string), truncationMarker))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(got[1].body, &resp))
	require.Equal(t, "req-7", resp["request_id"])
	require.EqualValues(t, http.StatusOK, resp["status_code"])
	require.EqualValues(t, 0.25, resp["elapsed_seconds"])
}

func TestFileSinkWritesNumberedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(dir, "attachments"))
	require.NoError(t, err)

	sink.Attach("Request: GET /items", "application/json", []byte(`{"a":1}`))
	sink.Attach("cURL: GET /items", "text/plain", []byte("curl ..."))

	entries, err := os.ReadDir(filepath.Join(dir, "attachments"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "0001-Request__GET__items.json", entries[0].Name())
	require.Equal(t, "0002-cURL__GET__items.txt", entries[1].Name())

	body, err := os.ReadFile(filepath.Join(dir, "attachments", entries[0].Name()))
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(body))
}

func TestMetricsHandlerRecordsOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	h := NewMetricsHandler(reg)

	h.HandleRequest(RequestEvent{Method: http.MethodGet})
	require.Equal(t, 1.0, testutil.ToFloat64(h.inFlight))

	h.HandleResponse(ResponseEvent{
		Method:     http.MethodGet,
		StatusCode: http.StatusOK,
		Elapsed:    10 * time.Millisecond,
	})
	h.HandleRequest(RequestEvent{Method: http.MethodPost})
	h.HandleResponse(ResponseEvent{
		Method:     http.MethodPost,
		StatusCode: http.StatusCreated,
		Elapsed:    20 * time.Millisecond,
	})

	require.Equal(t, 0.0, testutil.ToFloat64(h.inFlight))
	require.Equal(t, 1.0, testutil.ToFloat64(h.requests.WithLabelValues("GET", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(h.requests.WithLabelValues("POST", "201")))
}
