package httpclient

import (
	"encoding/json"
	"fmt"

	"github.com/milan604/client-lab/pkg/utils"
)

// AttachmentHandler attaches structured JSON snapshots of every request and
// response to a test-report sink. Marshalling failures become error
// attachments, never propagated errors.
type AttachmentHandler struct {
	sink AttachmentSink
}

// NewAttachmentHandler creates a report-attachment hook writing to sink.
func NewAttachmentHandler(sink AttachmentSink) *AttachmentHandler {
	return &AttachmentHandler{sink: sink}
}

// HandleRequest attaches the outgoing request as a JSON blob.
func (h *AttachmentHandler) HandleRequest(ev RequestEvent) {
	info := map[string]any{
		"request_id": ev.ID,
		"method":     ev.Method,
		"url":        ev.URL,
		"headers":    utils.HeaderMap(utils.RedactHeaders(ev.Header)),
		"body":       TruncateBody(ev.Body),
	}

	blob, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		attachError(h.sink, "request attachment error", err)
		return
	}
	h.sink.Attach(fmt.Sprintf("Request: %s %s", ev.Method, ev.URL), "application/json", blob)
}

// HandleResponse attaches the received response as a JSON blob.
func (h *AttachmentHandler) HandleResponse(ev ResponseEvent) {
	info := map[string]any{
		"request_id":      ev.ID,
		"status_code":     ev.StatusCode,
		"elapsed_seconds": ev.Elapsed.Seconds(),
		"headers":         utils.HeaderMap(ev.Header),
		"body":            TruncateBody(ev.Body),
	}

	blob, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		attachError(h.sink, "response attachment error", err)
		return
	}
	h.sink.Attach(fmt.Sprintf("Response: %s %s", ev.Method, ev.URL), "application/json", blob)
}
