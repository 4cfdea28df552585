package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/milan604/client-lab/pkg/logger"
)

// RequestEvent is handed to handlers just before the transport call.
type RequestEvent struct {
	// Context is the request context; tracing handlers read the active span
	// from it. Handlers must not use it to cancel the request.
	Context context.Context
	// ID correlates this event with the matching ResponseEvent.
	ID     string
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// ResponseEvent is handed to handlers after a response has been received and
// its body fully read.
type ResponseEvent struct {
	Context    context.Context
	ID         string
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// Handler observes requests and responses. Handlers run in insertion order
// for both events and must not mutate what they observe; request mutation is
// the auth provider's job. A handler that fails while producing a diagnostic
// must contain the failure itself — one that panics is recovered by the
// dispatcher and logged, never allowed to abort the request flow.
type Handler interface {
	HandleRequest(ev RequestEvent)
	HandleResponse(ev ResponseEvent)
}

const (
	// maxHookBody bounds the body size handed to handler formatting logic.
	maxHookBody = 40000

	truncationMarker = "... [truncated]"
)

// TruncateBody renders a body for diagnostics, cutting it to 40000 bytes plus
// a trailing marker when it is larger. Handlers should route every body they
// format through this.
func TruncateBody(body []byte) string {
	if len(body) > maxHookBody {
		return string(body[:maxHookBody]) + truncationMarker
	}
	return string(body)
}

// dispatchRequest runs every handler's request callback, containing panics.
func dispatchRequest(log logger.LogManager, handlers []Handler, ev RequestEvent) {
	for _, h := range handlers {
		safeDispatch(log, func() { h.HandleRequest(ev) })
	}
}

// dispatchResponse runs every handler's response callback, containing panics.
func dispatchResponse(log logger.LogManager, handlers []Handler, ev ResponseEvent) {
	for _, h := range handlers {
		safeDispatch(log, func() { h.HandleResponse(ev) })
	}
}

func safeDispatch(log logger.LogManager, fn func()) {
	defer func() {
		if r := recover(); r != nil && log != nil {
			log.WarnF("hook handler panicked: %v", r)
		}
	}()
	fn()
}

// HandlerFunc adapts two plain functions into a Handler. Either may be nil.
type HandlerFunc struct {
	OnRequest  func(ev RequestEvent)
	OnResponse func(ev ResponseEvent)
}

func (h HandlerFunc) HandleRequest(ev RequestEvent) {
	if h.OnRequest != nil {
		h.OnRequest(ev)
	}
}

func (h HandlerFunc) HandleResponse(ev ResponseEvent) {
	if h.OnResponse != nil {
		h.OnResponse(ev)
	}
}

// AttachmentSink receives diagnostic blobs produced by handlers, typically a
// test-report store. Implementations must be safe for concurrent use.
type AttachmentSink interface {
	Attach(name, mediaType string, body []byte)
}

// attachError records a handler's internal failure as an attachment instead
// of propagating it.
func attachError(sink AttachmentSink, name string, err error) {
	if sink == nil {
		return
	}
	sink.Attach(name, "text/plain", []byte(fmt.Sprintf("diagnostic generation failed: %v", err)))
}
