package commands

import (
	"fmt"
	"sync"

	"github.com/matrix-connect/linkedin-bridge/auth"
)

// FlowLogin identifies the login flow in a continuation. Login is the only
// multi-step command this bridge implements.
const FlowLogin = "login"

// Continuation records what to do with a user's next message. The registry
// holds at most one per user; absence means the next message is parsed as a
// command instead.
type Continuation struct {
	Flow    string
	RoomID  string
	Attempt *auth.Attempt
}

// PendingRepo maps user identity to that user's pending continuation. A new
// continuation fully replaces the previous one, and handlers only install
// one after the current step's network calls have completed, so a user's
// duplicate or out-of-order messages can only ever reach the current step.
type PendingRepo interface {
	Set(userID string, c Continuation) error
	Get(userID string) (Continuation, bool)
	Clear(userID string) error
}

// InMemoryPendingRepo is an in-memory implementation of PendingRepo.
type InMemoryPendingRepo struct {
	mu      sync.RWMutex
	pending map[string]Continuation // userID -> Continuation
}

// NewInMemoryPendingRepo creates a new in-memory pending-command registry.
func NewInMemoryPendingRepo() *InMemoryPendingRepo {
	return &InMemoryPendingRepo{pending: make(map[string]Continuation)}
}

// Set installs or replaces the continuation for a user.
func (r *InMemoryPendingRepo) Set(userID string, c Continuation) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[userID] = c
	return nil
}

// Get retrieves the pending continuation for a user, if any.
func (r *InMemoryPendingRepo) Get(userID string) (Continuation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.pending[userID]
	return c, ok
}

// Clear removes the pending continuation for a user. Clearing an absent
// entry is not an error.
func (r *InMemoryPendingRepo) Clear(userID string) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, userID)
	return nil
}
