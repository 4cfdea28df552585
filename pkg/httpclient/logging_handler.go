package httpclient

import (
	"github.com/milan604/client-lab/pkg/logger"
	"github.com/milan604/client-lab/pkg/utils"
)

// LoggingHandler logs every request and response through the structured
// logger. Responses with status >= 400 log at WARN with the truncated body;
// everything else logs at INFO with body details at DEBUG.
type LoggingHandler struct {
	log logger.LogManager
}

// NewLoggingHandler creates a logging hook backed by l.
func NewLoggingHandler(l logger.LogManager) *LoggingHandler {
	return &LoggingHandler{log: l}
}

// HandleRequest logs the outgoing request.
func (h *LoggingHandler) HandleRequest(ev RequestEvent) {
	h.log.InfoFCtx(ev.Context, "request: %s %s", ev.Method, ev.URL)
	h.log.DebugFCtx(ev.Context, "request headers: %v body: %s",
		utils.HeaderMap(utils.RedactHeaders(ev.Header)), TruncateBody(ev.Body))
}

// HandleResponse logs the received response, WARN for 4xx/5xx.
func (h *LoggingHandler) HandleResponse(ev ResponseEvent) {
	if ev.StatusCode >= 400 {
		h.log.WarnFCtx(ev.Context, "response: %s %s -> %d in %s body: %s",
			ev.Method, ev.URL, ev.StatusCode, ev.Elapsed, TruncateBody(ev.Body))
		return
	}
	h.log.InfoFCtx(ev.Context, "response: %s %s -> %d in %s", ev.Method, ev.URL, ev.StatusCode, ev.Elapsed)
	h.log.DebugFCtx(ev.Context, "response body: %s", TruncateBody(ev.Body))
}
