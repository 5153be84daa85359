package users

import "time"

// User is a bridge user: a chat-side identity plus the provider cookies
// captured by a completed login. Cookies are opaque strings here; only the
// provider client knows what they mean.
type User struct {
	MXID     string
	Email    string
	Cookies  map[string]string
	LoggedIn time.Time
}

// HasCookies reports whether the user holds a persisted session.
func (u *User) HasCookies() bool {
	return u != nil && len(u.Cookies) > 0
}
