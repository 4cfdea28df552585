package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
)

// Send is the unified high-level operation. In order: optional request-model
// serialization, header merge, transport execution (wrapped by the retry
// policy if one is supplied), expected-status assertion, optional
// response-model validation.
//
// The expected-status check runs after the retry policy has accepted a
// response, so a policy may itself retry on "wrong status" and the check is a
// hard assertion on whatever response survives.
func (c *Client) Send(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error) {
	ro := newRequestOptions(opts)

	body := ro.rawJSON
	if ro.requestModel != nil {
		if ro.rawJSON != nil {
			return nil, &ConflictingPayloadError{}
		}
		b, err := json.Marshal(ro.requestModel)
		if err != nil {
			return nil, fmt.Errorf("marshal request model: %w", err)
		}
		body = b
	}

	attempt := func() (*Response, error) {
		return c.execute(ctx, method, path, ro, body)
	}

	var resp *Response
	var err error
	if ro.retry != nil {
		resp, err = ro.retry(ctx, attempt)
	} else {
		resp, err = attempt()
	}
	if err != nil {
		return nil, err
	}

	if ro.expectedStatus != 0 && resp.StatusCode != ro.expectedStatus {
		return nil, &UnexpectedStatusError{
			Expected: ro.expectedStatus,
			Actual:   resp.StatusCode,
			Body:     resp.Body,
		}
	}

	if ro.responseModel != nil {
		if err := c.decodeResponseModel(resp, ro.responseModel); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// decodeResponseModel parses the body and validates it against the model's
// `validate` tags. The caller's pointer is only written on full success, so a
// validation failure never leaves a partially-constructed model behind.
func (c *Client) decodeResponseModel(resp *Response, model any) error {
	rv := reflect.ValueOf(model)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("response model must be a non-nil pointer, got %T", model)
	}

	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(resp.Body, tmp.Interface()); err != nil {
		return &ResponseValidationError{Body: resp.Body, Err: err}
	}
	if err := c.validator.ValidateStruct(tmp.Interface()); err != nil {
		return &ResponseValidationError{Body: resp.Body, Err: err}
	}

	rv.Elem().Set(tmp.Elem())
	return nil
}

// Get performs a GET request through the pipeline.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Send(ctx, http.MethodGet, path, opts...)
}

// Post performs a POST request through the pipeline.
func (c *Client) Post(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Send(ctx, http.MethodPost, path, opts...)
}

// Put performs a PUT request through the pipeline.
func (c *Client) Put(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Send(ctx, http.MethodPut, path, opts...)
}

// Patch performs a PATCH request through the pipeline.
func (c *Client) Patch(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Send(ctx, http.MethodPatch, path, opts...)
}

// Delete performs a DELETE request through the pipeline.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Send(ctx, http.MethodDelete, path, opts...)
}
