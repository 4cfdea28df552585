package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingHandler captures the events it sees, tagged with its name.
type recordingHandler struct {
	name string

	mu     sync.Mutex
	events []string
	reqIDs []string
}

func (h *recordingHandler) HandleRequest(ev RequestEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, h.name+":request")
	h.reqIDs = append(h.reqIDs, ev.ID)
}

func (h *recordingHandler) HandleResponse(ev ResponseEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, h.name+":response")
	h.reqIDs = append(h.reqIDs, ev.ID)
}

func TestExecuteMergesHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		BaseURL: srv.URL + "/",
		DefaultHeaders: map[string]string{
			"X-Env":    "test",
			"X-Shared": "default",
		},
	})
	t.Cleanup(c.Close)

	_, err := c.Execute(context.Background(), http.MethodGet, "/ping",
		WithHeader("X-Shared", "per-call"),
		WithHeader("X-Extra", "1"),
	)
	require.NoError(t, err)

	require.Equal(t, "test", got.Get("X-Env"))
	require.Equal(t, "per-call", got.Get("X-Shared"), "per-call headers win over defaults")
	require.Equal(t, "1", got.Get("X-Extra"))
	require.Contains(t, got.Get("User-Agent"), "client-lab/")
}

func TestExecuteJoinsBaseAndPath(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL + "/v2/"})
	t.Cleanup(c.Close)

	_, err := c.Execute(context.Background(), http.MethodGet, "items/42",
		WithQuery("limit", "5"),
		WithQueryParams(map[string]string{"userId": "1"}),
	)
	require.NoError(t, err)
	require.Equal(t, "/v2/items/42", gotPath)
	require.Contains(t, gotQuery, "limit=5")
	require.Contains(t, gotQuery, "userId=1")
}

func TestAuthProviderRunsPerRequest(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		BaseURL:      srv.URL,
		AuthProvider: &StaticTokenProvider{Token: "fixed-token"},
	})
	t.Cleanup(c.Close)

	_, err := c.Execute(context.Background(), http.MethodGet, "/secure")
	require.NoError(t, err)
	require.Equal(t, "Bearer fixed-token", gotAuth)
}

func TestHandlersRunInInsertionOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	var order []string
	mark := func(name string) Handler {
		return HandlerFunc{
			OnRequest:  func(RequestEvent) { order = append(order, name+":request") },
			OnResponse: func(ResponseEvent) { order = append(order, name+":response") },
		}
	}

	ids := &recordingHandler{name: "ids"}
	c := New(Config{
		BaseURL:  srv.URL,
		Handlers: []Handler{mark("first"), mark("second")},
	})
	t.Cleanup(c.Close)

	// Added after construction; the live session picks them up.
	c.AddHandler(mark("third")).AddHandler(ids)

	_, err := c.Execute(context.Background(), http.MethodGet, "/")
	require.NoError(t, err)

	require.Equal(t, []string{
		"first:request", "second:request", "third:request",
		"first:response", "second:response", "third:response",
	}, order, "hooks run in insertion order for both events")

	// Request and response events of one call share a correlation id.
	require.Len(t, ids.reqIDs, 2)
	require.Equal(t, ids.reqIDs[0], ids.reqIDs[1])
	require.NotEmpty(t, ids.reqIDs[0])
}

func TestHandlerPanicIsContained(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`ok`))
	}))
	t.Cleanup(srv.Close)

	after := &recordingHandler{name: "after"}
	c := New(Config{
		BaseURL: srv.URL,
		Handlers: []Handler{
			HandlerFunc{
				OnRequest:  func(RequestEvent) { panic("broken observer") },
				OnResponse: func(ResponseEvent) { panic("broken observer") },
			},
			after,
		},
	})
	t.Cleanup(c.Close)

	resp, err := c.Execute(context.Background(), http.MethodGet, "/")
	require.NoError(t, err, "a broken observer must never abort the request flow")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"after:request", "after:response"}, after.events)
}

func TestCloseIsIdempotentAndTerminal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})

	// Closing before any session exists is a no-op.
	c.Close()
	c.Close()

	_, err := c.Execute(context.Background(), http.MethodGet, "/")
	require.ErrorIs(t, err, ErrClientClosed)

	// A fresh client that made a request closes cleanly, twice.
	c2 := New(Config{BaseURL: srv.URL})
	_, err = c2.Execute(context.Background(), http.MethodGet, "/")
	require.NoError(t, err)
	c2.Close()
	c2.Close()
}

func TestResponseWrapper(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})
	t.Cleanup(c.Close)

	resp, err := c.Execute(context.Background(), http.MethodPost, "/things")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, `{"id":7}`, resp.BodyString())
	require.Positive(t, resp.Duration)

	m, err := resp.JSONMap()
	require.NoError(t, err)
	require.EqualValues(t, 7, m["id"])
}
