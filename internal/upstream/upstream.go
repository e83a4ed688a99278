// Package upstream talks to the generative-language API: a Client per
// credential, a Rotator that advances through credentials on quota
// exhaustion, and a Retryer for transient failures.
package upstream

import (
	"context"
	"errors"
)

// Client is one bound upstream credential. Generate returns the model text,
// ErrQuotaExceeded when the credential's allowance is depleted, or any other
// error for transient and unexpected failures. Callers branch over that
// closed set with errors.Is.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrQuotaExceeded is the distinguished upstream quota signal. It is not
	// retried with backoff; the controller answers it with one rotation.
	ErrQuotaExceeded = errors.New("upstream: quota exceeded")

	// ErrCredentialsExhausted means the rotator has no further credential to
	// advance to. Terminal for the process.
	ErrCredentialsExhausted = errors.New("upstream: all credentials exhausted")

	// ErrEmptyResponse means the API answered 200 with no usable candidate.
	ErrEmptyResponse = errors.New("upstream: empty response")
)
