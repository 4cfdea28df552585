package httpclient

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Attempt performs the transport call once.
type Attempt func() (*Response, error)

// RetryPolicy wraps the transport call of a single Send. The policy decides,
// from the response value or a transport error, whether to retry, how many
// times, and with what delay; the pipeline has no retry logic of its own.
// A policy that gives up should return a *RetryExhaustedError wrapping the
// last observed response or error.
type RetryPolicy func(ctx context.Context, attempt Attempt) (*Response, error)

// RetryOn returns a predicate retrying on a transport error or on any of the
// given status codes.
func RetryOn(statuses ...int) func(*Response, error) bool {
	return func(resp *Response, err error) bool {
		if err != nil {
			return true
		}
		for _, s := range statuses {
			if resp.StatusCode == s {
				return true
			}
		}
		return false
	}
}

// MaxAttempts retries up to maxAttempts times (including the first) with
// exponential backoff starting at delay. A nil retryIf retries on transport
// errors and 5xx responses.
func MaxAttempts(maxAttempts int, delay time.Duration, retryIf func(*Response, error) bool) RetryPolicy {
	if retryIf == nil {
		retryIf = func(resp *Response, err error) bool {
			return err != nil || resp.StatusCode >= 500
		}
	}

	return func(ctx context.Context, attempt Attempt) (*Response, error) {
		var lastResp *Response
		var lastErr error

		for i := 0; i < maxAttempts; i++ {
			if i > 0 {
				wait := delay * time.Duration(1<<uint(i-1))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(wait):
				}
			}

			resp, err := attempt()
			if !retryIf(resp, err) {
				return resp, err
			}
			lastResp, lastErr = resp, err
		}

		return nil, &RetryExhaustedError{
			Attempts:     maxAttempts,
			LastResponse: lastResp,
			Err:          lastErr,
		}
	}
}

// WithRateLimit paces every attempt of the wrapped policy through limiter.
// Pass a nil policy to rate-limit a single attempt.
func WithRateLimit(policy RetryPolicy, limiter *rate.Limiter) RetryPolicy {
	return func(ctx context.Context, attempt Attempt) (*Response, error) {
		paced := func() (*Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return attempt()
		}
		if policy == nil {
			return paced()
		}
		return policy(ctx, paced)
	}
}

// WithCircuitBreaker routes every attempt of the wrapped policy through cb,
// so a flapping endpoint trips open instead of burning the retry budget.
// Pass a nil policy for a single guarded attempt.
func WithCircuitBreaker(policy RetryPolicy, cb *gobreaker.CircuitBreaker[*Response]) RetryPolicy {
	return func(ctx context.Context, attempt Attempt) (*Response, error) {
		guarded := func() (*Response, error) {
			return cb.Execute(func() (*Response, error) {
				return attempt()
			})
		}
		if policy == nil {
			return guarded()
		}
		return policy(ctx, guarded)
	}
}
