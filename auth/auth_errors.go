package auth

import "errors"

var (
	// ErrUnexpectedState means a step handler was invoked for an attempt
	// that is not in the state the handler serves.
	ErrUnexpectedState = errors.New("unexpected login state")
)
