package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxRetries      = 5
	DefaultInitialInterval = 500 * time.Millisecond
)

// RetryPolicy bounds how hard the initiator tries to reach its peer.
// Retries happen only while establishing the connection, never mid-game.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	// OnRetry is called before each new attempt with the last error.
	OnRetry func(err error, next time.Duration)
}

func (that RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	policy := backoff.NewExponentialBackOff()
	if that.InitialInterval > 0 {
		policy.InitialInterval = that.InitialInterval
	}

	return backoff.WithContext(backoff.WithMaxRetries(policy, that.MaxRetries), ctx)
}

// Retry runs dial until it succeeds, the policy gives up or ctx is done.
func Retry[T any](ctx context.Context, policy RetryPolicy, dial func(ctx context.Context) (T, error)) (T, error) {
	var result T

	operation := func() error {
		value, err := dial(ctx)
		if err != nil {
			return err
		}

		result = value

		return nil
	}

	if err := backoff.RetryNotify(operation, policy.backOff(ctx), policy.OnRetry); err != nil {
		return result, fmt.Errorf("could not connect after retries: %w", err)
	}

	return result, nil
}
