package linkedin

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Session owns the cookie-bearing HTTP client for a single login attempt.
// Every request issued through it mutates the shared cookie jar; that is the
// mechanism by which the provider's session cookies accumulate between the
// steps of the handshake.
type Session struct {
	client *resty.Client
	jar    http.CookieJar
}

// NewSession creates a session with a fresh, empty cookie jar.
func NewSession() (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSession] cookiejar.New")
	}
	client := resty.New().SetCookieJar(jar)
	return &Session{client: client, jar: jar}, nil
}

// Request returns a new request bound to this session's client.
func (s *Session) Request() *resty.Request {
	return s.client.R()
}

// Cookies snapshots the jar's cookies for the given URL into a CookieSet.
func (s *Session) Cookies(rawURL string) CookieSet {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CookieSet{}
	}
	set := CookieSet{}
	for _, cookie := range s.jar.Cookies(u) {
		set[cookie.Name] = cookie.Value
	}
	return set
}

// Close releases the session's idle connections. Called exactly once, on the
// owning attempt's terminal transition.
func (s *Session) Close() {
	s.client.GetClient().CloseIdleConnections()
}
