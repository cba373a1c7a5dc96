package contract

import (
	"sync"
	"time"
)

// DefaultRulesTimeout bounds how long a rules-acceptance prompt waits for
// its button before cancelling itself.
const DefaultRulesTimeout = 600 * time.Second

type rulesPrompt struct {
	userID string
	timer  *time.Timer
}

// RulesPrompts tracks outstanding rules-acceptance prompts. Each prompt is
// keyed by its interaction ID, belongs to a single user, and expires after
// a bounded wait. Expiry runs the caller's cleanup and mutates nothing
// else.
type RulesPrompts struct {
	mu      sync.Mutex
	pending map[string]*rulesPrompt
	timeout time.Duration
}

// NewRulesPrompts creates a RulesPrompts tracker. A non-positive timeout
// falls back to DefaultRulesTimeout.
func NewRulesPrompts(timeout time.Duration) *RulesPrompts {
	if timeout <= 0 {
		timeout = DefaultRulesTimeout
	}
	return &RulesPrompts{
		pending: make(map[string]*rulesPrompt),
		timeout: timeout,
	}
}

// Begin registers a prompt shown to userID. onExpire runs once if the
// prompt times out before Accept is called.
func (r *RulesPrompts) Begin(key, userID string, onExpire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timer := time.AfterFunc(r.timeout, func() {
		if r.take(key) != nil {
			onExpire()
		}
	})
	r.pending[key] = &rulesPrompt{userID: userID, timer: timer}
}

// Accept resolves the prompt for key. Returns false if the prompt already
// expired, was never shown, or belongs to a different user.
func (r *RulesPrompts) Accept(key, userID string) bool {
	r.mu.Lock()
	p, ok := r.pending[key]
	if !ok || p.userID != userID {
		r.mu.Unlock()
		return false
	}
	delete(r.pending, key)
	r.mu.Unlock()

	p.timer.Stop()
	return true
}

// take removes and returns the prompt for key, or nil if absent.
func (r *RulesPrompts) take(key string) *rulesPrompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[key]
	if !ok {
		return nil
	}
	delete(r.pending, key)
	return p
}
