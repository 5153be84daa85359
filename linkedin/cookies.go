package linkedin

// Names of the cookies that together signal a fully established session.
const (
	CookieLiveness  = "liap"
	CookieAuthToken = "li_at"
	CookieSessionID = "JSESSIONID"
)

// CookieSet is a snapshot of a session's cookie jar, keyed by cookie name.
// It is the sole artifact a completed login hands to the persistence layer.
type CookieSet map[string]string

// Complete reports whether all three session cookies are present. This is
// the rule that decides whether a login or verification response counts as
// a success.
func (c CookieSet) Complete() bool {
	for _, name := range []string{CookieLiveness, CookieAuthToken, CookieSessionID} {
		if c[name] == "" {
			return false
		}
	}
	return true
}
