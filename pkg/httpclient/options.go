package httpclient

// requestOptions collects per-request parameters for Send and Execute.
type requestOptions struct {
	headers        map[string]string
	query          map[string]string
	requestModel   any
	rawJSON        []byte
	responseModel  any
	expectedStatus int
	retry          RetryPolicy
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

func newRequestOptions(opts []RequestOption) *requestOptions {
	ro := &requestOptions{
		headers: make(map[string]string),
		query:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(ro)
	}
	return ro
}

// WithHeader sets a per-request header. Per-request headers win over the
// client's default headers on conflict.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers[key] = value
	}
}

// WithHeaders merges several per-request headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithQuery sets a query parameter.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.query[key] = value
	}
}

// WithQueryParams sets multiple query parameters.
func WithQueryParams(params map[string]string) RequestOption {
	return func(o *requestOptions) {
		for k, v := range params {
			o.query[k] = v
		}
	}
}

// WithRequestModel serializes model to JSON and uses it as the request body.
// Field aliasing follows the model's json struct tags. Mutually exclusive
// with WithRawJSON.
func WithRequestModel(model any) RequestOption {
	return func(o *requestOptions) {
		o.requestModel = model
	}
}

// WithRawJSON uses an already-serialized JSON payload as the request body.
// Mutually exclusive with WithRequestModel.
func WithRawJSON(payload []byte) RequestOption {
	return func(o *requestOptions) {
		o.rawJSON = payload
	}
}

// WithResponseModel decodes and validates the response body into model,
// which must be a pointer to a struct. Validation uses the model's
// `validate` struct tags; a mismatch yields a ResponseValidationError and
// model is never left partially populated on the success path.
func WithResponseModel(model any) RequestOption {
	return func(o *requestOptions) {
		o.responseModel = model
	}
}

// WithExpectedStatus asserts the response status after any retry policy has
// accepted the response. A mismatch yields an UnexpectedStatusError.
func WithExpectedStatus(status int) RequestOption {
	return func(o *requestOptions) {
		o.expectedStatus = status
	}
}

// WithRetryPolicy wraps the transport call in the given policy for this
// request. The pipeline itself never retries.
func WithRetryPolicy(policy RetryPolicy) RequestOption {
	return func(o *requestOptions) {
		o.retry = policy
	}
}
