package groq

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRateLimited marks a 429 from the upstream provider. It is the only
	// error class the retry loop acts on.
	ErrRateLimited = errors.New("rate limited")

	// ErrRateLimitExhausted is returned once every allowed attempt has been
	// rate limited.
	ErrRateLimitExhausted = errors.New("rate limit exceeded repeatedly")
)

func IsRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// RetryPolicy decides, per attempt, how long to back off before trying
// again. It is deliberately independent of how the wait is scheduled.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 2 * time.Second}
}

// Backoff returns the delay to wait after a rate-limited attempt (0-based)
// and whether another attempt is allowed. The delay doubles each attempt.
func (p RetryPolicy) Backoff(attempt int) (time.Duration, bool) {
	if attempt >= p.MaxAttempts-1 {
		return 0, false
	}
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay, true
}

// CallWithRetry invokes call, retrying only on rate-limit errors. Any other
// failure propagates immediately. sleep is injectable so tests do not wait.
func CallWithRetry(ctx context.Context, policy RetryPolicy, sleep func(time.Duration), call func(context.Context) (string, error)) (string, error) {
	if sleep == nil {
		sleep = time.Sleep
	}
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}
		delay, ok := policy.Backoff(attempt)
		if !ok {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		sleep(delay)
	}
	return "", ErrRateLimitExhausted
}
