// Package retry wraps flaky external calls with a per-attempt timeout and a
// bounded retry count, collapsing every eventual failure into a single
// normalized RETRY_FAILED error.
//
// Worst-case latency is (Retries+1) x Timeout; callers composing this with an
// upstream request deadline must budget for that bound.
package retry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pagecraft/pagecraft/pkg/apierror"
)

// Default policy for provider calls.
const (
	DefaultRetries = 2
	DefaultTimeout = 8 * time.Second
)

// Options configures a retried operation. The zero value means defaults.
type Options struct {
	// Retries is the number of additional attempts after the first failure.
	// Negative means zero. Zero means DefaultRetries; use Once for a single
	// attempt.
	Retries int

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// ShortCircuit reports whether an attempt's error makes further retries
	// pointless (e.g. a client error from the wrapped call). When nil,
	// DefaultShortCircuit is used.
	ShortCircuit func(error) bool
}

// Once is a Retries value for exactly one attempt.
const Once = -1

// DefaultShortCircuit aborts retrying on a 400 or 429 from the wrapped
// operation: retrying a client error or a rate-limit rejection cannot
// succeed.
func DefaultShortCircuit(err error) bool {
	status := apierror.StatusOf(err)
	return status == http.StatusBadRequest || status == http.StatusTooManyRequests
}

// Do runs op, racing each attempt against the per-attempt timeout and
// retrying immediately on failure (no backoff). After the final attempt
// fails, or when ShortCircuit fires, it returns a 500 RETRY_FAILED error
// carrying the last underlying error.
//
// A timed-out attempt is abandoned, not cancelled: the attempt's context is
// cancelled, but if op ignores it and eventually returns, that result is
// discarded. Operations wrapped here are expected to be idempotent or
// side-effect-light.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts Options) (T, error) {
	var zero T

	retries := opts.Retries
	switch {
	case retries == 0:
		retries = DefaultRetries
	case retries < 0:
		retries = 0
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	shortCircuit := opts.ShortCircuit
	if shortCircuit == nil {
		shortCircuit = DefaultShortCircuit
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		val, err := runAttempt(ctx, op, timeout)
		if err == nil {
			return val, nil
		}
		lastErr = err

		// Parent cancellation means nobody is waiting for the answer.
		if ctx.Err() != nil {
			break
		}
		if shortCircuit(err) {
			break
		}
	}

	return zero, apierror.RetryFailed(lastErr)
}

type attemptResult[T any] struct {
	val T
	err error
}

// runAttempt races one invocation of op against the attempt timeout. The
// goroutine writes into a buffered channel so a late result after the timeout
// is dropped without leaking the goroutine.
func runAttempt[T any](ctx context.Context, op func(context.Context) (T, error), timeout time.Duration) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan attemptResult[T], 1)
	go func() {
		val, err := op(attemptCtx)
		ch <- attemptResult[T]{val: val, err: err}
	}()

	select {
	case res := <-ch:
		return res.val, res.err
	case <-attemptCtx.Done():
		var zero T
		return zero, fmt.Errorf("attempt abandoned after %s: %w", timeout, attemptCtx.Err())
	}
}
