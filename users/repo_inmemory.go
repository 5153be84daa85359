package users

import (
	"fmt"
	"sync"
)

// InMemoryUserRepo is an in-memory implementation of Repo.
type InMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]User // mxid -> User
}

// NewInMemoryUserRepo creates a new in-memory user repository.
func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{users: make(map[string]User)}
}

// Upsert creates or updates a user keyed by MXID.
func (r *InMemoryUserRepo) Upsert(user *User) error {
	if user == nil || user.MXID == "" {
		return fmt.Errorf("mxid is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy so callers cannot mutate the stored value afterwards.
	stored := *user
	if user.Cookies != nil {
		stored.Cookies = make(map[string]string, len(user.Cookies))
		for name, value := range user.Cookies {
			stored.Cookies[name] = value
		}
	}
	r.users[user.MXID] = stored
	return nil
}

// GetByMXID retrieves a user by their chat-side identity.
func (r *InMemoryUserRepo) GetByMXID(mxid string) (*User, error) {
	if mxid == "" {
		return nil, fmt.Errorf("mxid is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[mxid]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// Delete removes a user. Deleting a missing user is not an error.
func (r *InMemoryUserRepo) Delete(mxid string) error {
	if mxid == "" {
		return fmt.Errorf("mxid is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, mxid)
	return nil
}
