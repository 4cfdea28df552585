package httpclient

import (
	"fmt"
	"sort"
	"strings"

	"github.com/milan604/client-lab/pkg/utils"
)

// CurlHandler turns every outgoing request into a curl invocation and hands
// it to the attachment sink, so a failed test case can be reproduced from a
// terminal. A failure while building the string is attached as an error
// record instead of being propagated; a broken observer must never abort the
// request flow.
type CurlHandler struct {
	sink AttachmentSink
}

// NewCurlHandler creates a reproduction-string hook writing to sink.
func NewCurlHandler(sink AttachmentSink) *CurlHandler {
	return &CurlHandler{sink: sink}
}

// HandleRequest attaches the curl command for the request.
func (h *CurlHandler) HandleRequest(ev RequestEvent) {
	defer func() {
		if r := recover(); r != nil {
			attachError(h.sink, "cURL generation error", fmt.Errorf("%v", r))
		}
	}()

	cmd := buildCurl(ev)
	h.sink.Attach(fmt.Sprintf("cURL: %s %s", ev.Method, ev.URL), "text/plain", []byte(cmd))
}

// HandleResponse is a no-op; a reproduction string only needs the request.
func (h *CurlHandler) HandleResponse(ResponseEvent) {}

func buildCurl(ev RequestEvent) string {
	var b strings.Builder
	b.WriteString("curl -X ")
	b.WriteString(ev.Method)
	b.WriteString(" ")
	b.WriteString(utils.ShellQuote(ev.URL))

	// Stable header order keeps attachments diffable between runs.
	keys := make([]string, 0, len(ev.Header))
	for k := range ev.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range ev.Header[k] {
			b.WriteString(" -H ")
			b.WriteString(utils.ShellQuote(k + ": " + v))
		}
	}

	if len(ev.Body) > 0 {
		b.WriteString(" -d ")
		b.WriteString(utils.ShellQuote(string(ev.Body)))
	}

	return b.String()
}
