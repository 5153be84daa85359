package users

import "errors"

// ErrNotFound is returned when no user exists for the given identity.
var ErrNotFound = errors.New("user not found")

// Repo persists bridge users and their long-term cookies. The real bridge
// backs this with its database; an in-memory implementation is provided for
// tests and the console front end.
type Repo interface {
	Upsert(user *User) error
	GetByMXID(mxid string) (*User, error)
	Delete(mxid string) error
}
