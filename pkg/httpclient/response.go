package httpclient

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the raw result of an executed request. The body is read
// eagerly and the underlying stream closed, so a Response can be inspected
// any number of times.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// JSONMap returns the response body as a generic map.
func (r *Response) JSONMap() (map[string]any, error) {
	var m map[string]any
	err := r.JSON(&m)
	return m, err
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// BodyString returns the response body as a string.
func (r *Response) BodyString() string {
	return string(r.Body)
}
