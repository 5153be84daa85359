package linkedin

import (
	"context"

	"github.com/pkg/errors"
)

// Endpoints are the provider URLs the portal talks to. They are injectable
// so tests can point the portal at a local server.
type Endpoints struct {
	Seed   string
	Login  string
	Verify string
	Me     string
}

// DefaultEndpoints returns the production LinkedIn URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Seed:   "https://www.linkedin.com/uas/login",
		Login:  "https://www.linkedin.com/checkpoint/lg/login-submit",
		Verify: "https://www.linkedin.com/checkpoint/challenge/verify",
		Me:     "https://www.linkedin.com/voyager/api/me",
	}
}

// Portal wraps the three login endpoints as typed operations, each issuing
// exactly one outbound exchange through the attempt's session. The portal
// itself owns no state across calls; all cookie state lives in the session.
// There are no retries: a transport failure is fatal for the current step.
type Portal struct {
	session   *Session
	endpoints Endpoints
}

// NewPortal binds a portal to the session of a single login attempt.
func NewPortal(session *Session, endpoints Endpoints) *Portal {
	return &Portal{session: session, endpoints: endpoints}
}

// FetchSeed GETs the login landing page. Its only purpose is to obtain a
// fresh anti-forgery token before credentials are submitted.
func (p *Portal) FetchSeed(ctx context.Context) (string, error) {
	resp, err := p.session.Request().SetContext(ctx).Get(p.endpoints.Seed)
	if err != nil {
		return "", errors.Wrap(err, "[Portal.FetchSeed] get")
	}
	return resp.String(), nil
}

// SubmitCredentials POSTs the credential form and returns the resulting page
// together with the session's cookies after the exchange.
func (p *Portal) SubmitCredentials(ctx context.Context, csrfToken, email, password string) (string, CookieSet, error) {
	resp, err := p.session.Request().
		SetContext(ctx).
		SetFormData(map[string]string{
			"session_key":      email,
			"loginCsrfParam":   csrfToken,
			"session_password": password,
		}).
		Post(p.endpoints.Login)
	if err != nil {
		return "", nil, errors.Wrap(err, "[Portal.SubmitCredentials] post")
	}
	return resp.String(), p.session.Cookies(p.endpoints.Login), nil
}

// SubmitChallenge POSTs the stored challenge field set plus the user's code
// to the verification endpoint.
func (p *Portal) SubmitChallenge(ctx context.Context, fields ChallengeFields, code string) (string, CookieSet, error) {
	resp, err := p.session.Request().
		SetContext(ctx).
		SetFormData(fields.WithPin(code)).
		Post(p.endpoints.Verify)
	if err != nil {
		return "", nil, errors.Wrap(err, "[Portal.SubmitChallenge] post")
	}
	return resp.String(), p.session.Cookies(p.endpoints.Verify), nil
}

// Close releases the underlying session.
func (p *Portal) Close() {
	p.session.Close()
}
