package httpclient

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingHandler records request and response events on the OpenTelemetry
// span found in the event context. With no active span it is a no-op; the
// handler never starts spans of its own.
type TracingHandler struct{}

// NewTracingHandler creates a tracing hook.
func NewTracingHandler() *TracingHandler {
	return &TracingHandler{}
}

// HandleRequest adds an http.request event to the active span.
func (h *TracingHandler) HandleRequest(ev RequestEvent) {
	span := trace.SpanFromContext(ev.Context)
	span.AddEvent("http.request", trace.WithAttributes(
		attribute.String("http.request.method", ev.Method),
		attribute.String("url.full", ev.URL),
		attribute.String("request.id", ev.ID),
	))
}

// HandleResponse adds an http.response event to the active span.
func (h *TracingHandler) HandleResponse(ev ResponseEvent) {
	span := trace.SpanFromContext(ev.Context)
	span.AddEvent("http.response", trace.WithAttributes(
		attribute.Int("http.response.status_code", ev.StatusCode),
		attribute.Int64("http.response.duration_ms", ev.Elapsed.Milliseconds()),
		attribute.String("request.id", ev.ID),
	))
}
