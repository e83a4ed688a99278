package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/medassist-labs/medchat/internal/logger"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 5 * time.Second
)

// Retryer runs an upstream call with bounded exponential backoff. Quota
// exhaustion is not retried here; it escapes immediately so the controller
// can rotate credentials instead of waiting out a depleted key.
type Retryer struct {
	maxAttempts  int
	initialDelay time.Duration
}

func NewRetryer(maxAttempts int, initialDelay time.Duration) *Retryer {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	if initialDelay <= 0 {
		initialDelay = defaultInitialDelay
	}
	return &Retryer{maxAttempts: maxAttempts, initialDelay: initialDelay}
}

// Execute runs op up to the configured attempt count, doubling the wait
// between attempts. The last failure propagates unchanged. Retries run to
// completion once started; callers that must not abort mid-flight pass a
// non-cancelable context.
func (r *Retryer) Execute(ctx context.Context, op func() (string, error)) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0 // bounded by attempts, not wall clock

	var result string
	operation := func() error {
		text, err := op()
		if err != nil {
			if errors.Is(err, ErrQuotaExceeded) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = text
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("upstream call failed, retrying",
			"error", err,
			"retry_in", wait)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.maxAttempts-1)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return "", err
	}
	return result, nil
}
