package users

import (
	"context"
	"time"

	"github.com/matrix-connect/linkedin-bridge/linkedin"
	"github.com/pkg/errors"
)

// CookieSink persists the cookies captured by a completed login. It
// satisfies the login flow's completion sink contract.
type CookieSink struct {
	repo Repo
}

// NewCookieSink creates a sink backed by the given repository.
func NewCookieSink(repo Repo) *CookieSink {
	return &CookieSink{repo: repo}
}

// LoggedIn stores the cookie set on the bridge user, creating the user if
// this is their first login.
func (s *CookieSink) LoggedIn(_ context.Context, userID, email string, cookies linkedin.CookieSet) error {
	user, err := s.repo.GetByMXID(userID)
	if err != nil {
		user = &User{MXID: userID}
	}
	user.Email = email
	user.Cookies = map[string]string(cookies)
	user.LoggedIn = time.Now()
	if err := s.repo.Upsert(user); err != nil {
		return errors.Wrap(err, "[CookieSink.LoggedIn] upsert")
	}
	return nil
}
