package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Profile is the slice of the voyager /me response the bridge needs.
type Profile struct {
	MiniProfile struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"miniProfile"`
}

// ProfileClient fetches the logged-in member's profile using persisted
// cookies. It is independent of any login attempt and holds no session.
type ProfileClient struct {
	client    *resty.Client
	endpoints Endpoints
}

// NewProfileClient creates a profile client for the given endpoints.
func NewProfileClient(endpoints Endpoints) *ProfileClient {
	return &ProfileClient{client: resty.New(), endpoints: endpoints}
}

// Fetch issues an authenticated /me request. The voyager API requires a
// csrf-token header equal to the JSESSIONID cookie value with its
// surrounding quotes stripped.
func (pc *ProfileClient) Fetch(ctx context.Context, cookies CookieSet) (*Profile, error) {
	req := pc.client.R().
		SetContext(ctx).
		SetHeader("csrf-token", strings.Trim(cookies[CookieSessionID], `"`)).
		SetHeader("accept", "application/json")
	for name, value := range cookies {
		req.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := req.Get(pc.endpoints.Me)
	if err != nil {
		return nil, errors.Wrap(err, "[ProfileClient.Fetch] get")
	}
	if resp.IsError() {
		return nil, errors.Errorf("[ProfileClient.Fetch] unexpected status %d", resp.StatusCode())
	}

	var profile Profile
	if err := json.Unmarshal(resp.Body(), &profile); err != nil {
		return nil, errors.Wrap(err, "[ProfileClient.Fetch] decode")
	}
	return &profile, nil
}
