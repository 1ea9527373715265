// Package retry provides a bounded exponential-backoff executor for
// fallible store operations.
package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// Defaults applied when the corresponding Options field is zero.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxDelay    = 30 * time.Second
)

// Options configures an executor.
type Options struct {
	// MaxAttempts bounds the number of operation invocations, including
	// the first one.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt; it doubles per
	// subsequent attempt up to MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps a single backoff interval.
	MaxDelay time.Duration

	// DisableJitter makes the backoff schedule deterministic. The default
	// (jittered) schedule draws each wait uniformly from (0, ceiling] to
	// avoid synchronized retry storms across concurrent callers.
	DisableJitter bool

	// AttemptTimeout, when non-zero, bounds each individual attempt with
	// a context deadline so a hung attempt cannot stall the whole
	// operation.
	AttemptTimeout time.Duration

	// RetryIf decides whether an error is worth another attempt. Nil
	// retries every failure.
	RetryIf func(error) bool

	// Limiter, when set, throttles attempt starts process-wide.
	Limiter *rate.Limiter
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	return o
}

// backoff computes the wait before attempt+1 (attempt is 1-based).
func (o Options) backoff(attempt int, lastErr error) time.Duration {
	ceiling := o.BaseDelay << (attempt - 1)
	if ceiling > o.MaxDelay || ceiling <= 0 {
		ceiling = o.MaxDelay
	}

	d := ceiling
	if !o.DisableJitter {
		d = time.Duration(rand.Int64N(int64(ceiling))) + 1
	}

	// A server-provided retry-after hint overrides a shorter backoff.
	if hint, ok := store.RetryAfterHint(lastErr); ok && hint > d {
		d = hint
	}
	return d
}

// Do runs op until it succeeds, the attempt budget is exhausted, the error
// is classified non-retryable, or ctx is done. The returned attempt count
// includes the final invocation; the terminal error is the last attempt's
// error, unwrapped and unmodified.
func Do[T any](ctx context.Context, opts Options, op func(context.Context) (T, error)) (T, int, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				return zero, attempt - 1, err
			}
		} else if err := ctx.Err(); err != nil {
			return zero, attempt - 1, err
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if opts.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, opts.AttemptTimeout)
		}
		result, err := op(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if opts.RetryIf != nil && !opts.RetryIf(err) {
			return zero, attempt, err
		}
		if attempt == opts.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, attempt, lastErr
		case <-time.After(opts.backoff(attempt, err)):
		}
	}

	return zero, opts.MaxAttempts, lastErr
}
