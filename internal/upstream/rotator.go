package upstream

import (
	"fmt"
	"sync"

	"github.com/medassist-labs/medchat/internal/logger"
)

// Factory builds the Client for one credential. It must be pure: same key,
// same behavior.
type Factory func(key string) Client

// Rotator owns the ordered credential list and the process-wide current
// index. The index only moves forward: rotation is a one-way ratchet for the
// life of the process, shared by every concurrent session. Callers receive a
// Rotator by injection; there is no package-level instance.
type Rotator struct {
	mu      sync.Mutex
	keys    []string
	factory Factory
	clients []Client
	idx     int
}

func NewRotator(keys []string, factory Factory) (*Rotator, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("upstream: no credentials configured")
	}
	if factory == nil {
		return nil, fmt.Errorf("upstream: nil client factory")
	}
	return &Rotator{
		keys:    keys,
		factory: factory,
		clients: make([]Client, len(keys)),
	}, nil
}

// Current returns the client for the credential at the current index,
// building and caching it on first use.
func (r *Rotator) Current() Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clientLocked(r.idx)
}

// Rotate advances to the next credential and returns its client. At the last
// index it fails with ErrCredentialsExhausted; the caller surfaces that to
// the end user rather than retrying.
func (r *Rotator) Rotate() (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idx >= len(r.keys)-1 {
		return nil, ErrCredentialsExhausted
	}
	r.idx++
	logger.Warn("rotated upstream credential",
		"index", r.idx,
		"remaining", len(r.keys)-1-r.idx)
	return r.clientLocked(r.idx), nil
}

// Index reports the current credential position (0-based).
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx
}

func (r *Rotator) clientLocked(i int) Client {
	if r.clients[i] == nil {
		r.clients[i] = r.factory(r.keys[i])
	}
	return r.clients[i]
}
