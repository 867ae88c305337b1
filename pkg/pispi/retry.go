package pispi

import (
	"context"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// maxBackoff caps a single wait between attempts.
const maxBackoff = 10 * time.Second

// Retryable reports whether r is worth another attempt: transport failures,
// 5xx responses and 429.
func Retryable(r Result) bool {
	switch res := r.(type) {
	case ResultTransportError:
		return true
	case ResultHTTPError:
		return res.Status >= http.StatusInternalServerError || res.Status == http.StatusTooManyRequests
	default:
		return false
	}
}

// Retry calls fn until it returns a non-retryable Result or maxRetries retries
// are spent, waiting base, 2*base, 4*base... between attempts. The last Result
// is returned; a cancelled context yields a ResultTransportError.
func Retry(ctx context.Context, maxRetries uint64, base time.Duration, fn func(context.Context) Result) Result {
	if base <= 0 {
		base = DefaultRetryBase
	}
	backoff := retry.WithMaxRetries(maxRetries, retry.WithCappedDuration(maxBackoff, retry.NewExponential(base)))

	var last Result
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		last = fn(ctx)
		if Retryable(last) {
			return retry.RetryableError(last.Err())
		}
		return nil
	})
	if err != nil && ctx.Err() != nil {
		return ResultTransportError{Cause: ctx.Err()}
	}
	return last
}
