package auth_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matrix-connect/linkedin-bridge/auth"
	"github.com/matrix-connect/linkedin-bridge/linkedin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	testUserID   = "@user:example.com"
	testEmail    = "a@x.com"
	testPassword = "hunter2"
)

var completeCookies = linkedin.CookieSet{
	"liap":       "true",
	"li_at":      "auth-token",
	"JSESSIONID": `"ajax:42"`,
}

const seedPage = `<html><body><form>
<input type="hidden" name="loginCsrfParam" value="csrf-123"/>
</form></body></html>`

var challengeValues = map[string]string{
	"csrfToken":           "ajax:42",
	"pageInstance":        "urn:li:page:checkpoint_challenge",
	"resendUrl":           "/checkpoint/challenge/resend",
	"challengeId":         "AQE6Yk2Jp",
	"displayTime":         "2021-06-01 10:00:00",
	"challengeSource":     "2FA",
	"requestSubmissionId": "sub-9",
	"challengeType":       "SMS_PIN",
	"challengeData":       "data-blob",
	"challengeDetails":    "details-blob",
	"failureRedirectUri":  "https://www.linkedin.com/uas/login",
}

func challengePage() string {
	var b strings.Builder
	b.WriteString("<html><body><form>")
	for name, value := range challengeValues {
		fmt.Fprintf(&b, `<input type="hidden" name=%q value=%q/>`, name, value)
	}
	b.WriteString("</form></body></html>")
	return b.String()
}

// fakePortal scripts the provider's responses and records what the flow
// sends to it.
type fakePortal struct {
	seedHTML string
	seedErr  error

	loginHTML    string
	loginCookies linkedin.CookieSet
	loginErr     error

	verifyHTML    string
	verifyCookies linkedin.CookieSet
	verifyErr     error

	gotCSRF     string
	gotEmail    string
	gotPassword string
	gotFields   linkedin.ChallengeFields
	gotCode     string
	closed      int
}

func (f *fakePortal) FetchSeed(context.Context) (string, error) {
	return f.seedHTML, f.seedErr
}

func (f *fakePortal) SubmitCredentials(_ context.Context, csrfToken, email, password string) (string, linkedin.CookieSet, error) {
	f.gotCSRF, f.gotEmail, f.gotPassword = csrfToken, email, password
	return f.loginHTML, f.loginCookies, f.loginErr
}

func (f *fakePortal) SubmitChallenge(_ context.Context, fields linkedin.ChallengeFields, code string) (string, linkedin.CookieSet, error) {
	f.gotFields, f.gotCode = fields, code
	return f.verifyHTML, f.verifyCookies, f.verifyErr
}

func (f *fakePortal) Close() {
	f.closed++
}

type fakeSink struct {
	userID  string
	email   string
	cookies linkedin.CookieSet
	calls   int
	err     error
}

func (s *fakeSink) LoggedIn(_ context.Context, userID, email string, cookies linkedin.CookieSet) error {
	s.userID, s.email, s.cookies = userID, email, cookies
	s.calls++
	return s.err
}

func newFlow(t *testing.T, portal auth.Portal, sink auth.CompletionSink) *auth.Flow {
	t.Helper()
	flow, err := auth.NewFlow(func() (auth.Portal, error) { return portal, nil }, sink)
	require.NoError(t, err)
	return flow
}

func startAttempt(t *testing.T, flow *auth.Flow) *auth.Attempt {
	t.Helper()
	attempt, err := flow.Start(testEmail)
	require.NoError(t, err)
	return attempt
}

func TestStartCreatesAwaitingPassword(t *testing.T) {
	flow := newFlow(t, &fakePortal{}, &fakeSink{})

	attempt := startAttempt(t, flow)
	require.Equal(t, auth.AwaitingPassword, attempt.State)
	require.Equal(t, testEmail, attempt.Email)
	require.NotEmpty(t, attempt.ID)
}

func TestSubmitPasswordAuthenticated(t *testing.T) {
	portal := &fakePortal{seedHTML: seedPage, loginHTML: "<html></html>", loginCookies: completeCookies}
	sink := &fakeSink{}
	flow := newFlow(t, portal, sink)
	attempt := startAttempt(t, flow)

	result, err := flow.SubmitPassword(context.Background(), testUserID, attempt, testPassword)
	require.NoError(t, err)
	require.Equal(t, auth.ResultAuthenticated, result)

	require.Equal(t, "csrf-123", portal.gotCSRF)
	require.Equal(t, testEmail, portal.gotEmail)
	require.Equal(t, testPassword, portal.gotPassword)

	require.Equal(t, 1, sink.calls)
	require.Equal(t, testUserID, sink.userID)
	require.Equal(t, testEmail, sink.email)
	require.Equal(t, completeCookies, sink.cookies)
	require.Equal(t, 1, portal.closed)
}

func TestSubmitPasswordChallengeRequired(t *testing.T) {
	portal := &fakePortal{seedHTML: seedPage, loginHTML: challengePage(), loginCookies: linkedin.CookieSet{"liap": "true"}}
	sink := &fakeSink{}
	flow := newFlow(t, portal, sink)
	attempt := startAttempt(t, flow)

	result, err := flow.SubmitPassword(context.Background(), testUserID, attempt, testPassword)
	require.NoError(t, err)
	require.Equal(t, auth.ResultChallengeRequired, result)

	require.Equal(t, auth.AwaitingTwoFactorCode, attempt.State)
	for name, value := range challengeValues {
		require.Equal(t, value, attempt.Challenge[name], name)
	}
	require.Equal(t, "en-US", attempt.Challenge["language"])

	// The attempt stays alive: session open, sink untouched.
	require.Zero(t, portal.closed)
	require.Zero(t, sink.calls)
}

func TestSubmitPasswordRejected(t *testing.T) {
	portal := &fakePortal{seedHTML: seedPage, loginHTML: "<html><body>wrong password</body></html>"}
	sink := &fakeSink{}
	flow := newFlow(t, portal, sink)
	attempt := startAttempt(t, flow)

	result, err := flow.SubmitPassword(context.Background(), testUserID, attempt, testPassword)
	require.NoError(t, err)
	require.Equal(t, auth.ResultFailed, result)
	require.Equal(t, 1, portal.closed)
	require.Zero(t, sink.calls)
}

func TestSubmitPasswordMissingSeedToken(t *testing.T) {
	portal := &fakePortal{seedHTML: "<html><body>unexpected page</body></html>"}
	flow := newFlow(t, portal, &fakeSink{})
	attempt := startAttempt(t, flow)

	result, err := flow.SubmitPassword(context.Background(), testUserID, attempt, testPassword)
	require.Equal(t, auth.ResultFailed, result)
	require.ErrorIs(t, err, linkedin.ErrFieldNotFound)
	require.Equal(t, 1, portal.closed)
}

func TestSubmitPasswordTransportError(t *testing.T) {
	portal := &fakePortal{seedHTML: seedPage, loginErr: errors.New("connection reset")}
	flow := newFlow(t, portal, &fakeSink{})
	attempt := startAttempt(t, flow)

	result, err := flow.SubmitPassword(context.Background(), testUserID, attempt, testPassword)
	require.Equal(t, auth.ResultFailed, result)
	require.Error(t, err)
	require.Equal(t, 1, portal.closed)
}

func challengeAttempt(t *testing.T, flow *auth.Flow, portal *fakePortal) *auth.Attempt {
	t.Helper()
	portal.seedHTML = seedPage
	portal.loginHTML = challengePage()
	attempt := startAttempt(t, flow)
	_, err := flow.SubmitPassword(context.Background(), testUserID, attempt, testPassword)
	require.NoError(t, err)
	require.Equal(t, auth.AwaitingTwoFactorCode, attempt.State)
	return attempt
}

func TestSubmitCodeAuthenticated(t *testing.T) {
	portal := &fakePortal{verifyCookies: completeCookies}
	sink := &fakeSink{}
	flow := newFlow(t, portal, sink)
	attempt := challengeAttempt(t, flow, portal)

	result, err := flow.SubmitCode(context.Background(), testUserID, attempt, "1234")
	require.NoError(t, err)
	require.Equal(t, auth.ResultAuthenticated, result)

	require.Equal(t, "1234", portal.gotCode)
	require.Equal(t, attempt.Challenge, portal.gotFields)
	require.Equal(t, 1, sink.calls)
	require.Equal(t, completeCookies, sink.cookies)
	require.Equal(t, 1, portal.closed)
}

func TestSubmitCodeRejected(t *testing.T) {
	portal := &fakePortal{verifyCookies: linkedin.CookieSet{"liap": "true"}}
	sink := &fakeSink{}
	flow := newFlow(t, portal, sink)
	attempt := challengeAttempt(t, flow, portal)

	result, err := flow.SubmitCode(context.Background(), testUserID, attempt, "0000")
	require.NoError(t, err)
	require.Equal(t, auth.ResultFailed, result)
	require.Zero(t, sink.calls)
	require.Equal(t, 1, portal.closed)
}

func TestSubmitCodeTransportError(t *testing.T) {
	portal := &fakePortal{verifyErr: errors.New("connection reset")}
	flow := newFlow(t, portal, &fakeSink{})
	attempt := challengeAttempt(t, flow, portal)

	result, err := flow.SubmitCode(context.Background(), testUserID, attempt, "1234")
	require.Equal(t, auth.ResultFailed, result)
	require.Error(t, err)
	require.Equal(t, 1, portal.closed)
}

func TestSubmitCodeWrongState(t *testing.T) {
	portal := &fakePortal{}
	flow := newFlow(t, portal, &fakeSink{})
	attempt := startAttempt(t, flow)

	result, err := flow.SubmitCode(context.Background(), testUserID, attempt, "1234")
	require.Equal(t, auth.ResultFailed, result)
	require.ErrorIs(t, err, auth.ErrUnexpectedState)
	require.Equal(t, 1, portal.closed)
}

func TestCompletionSinkError(t *testing.T) {
	portal := &fakePortal{seedHTML: seedPage, loginHTML: "<html></html>", loginCookies: completeCookies}
	sink := &fakeSink{err: errors.New("database down")}
	flow := newFlow(t, portal, sink)
	attempt := startAttempt(t, flow)

	result, err := flow.SubmitPassword(context.Background(), testUserID, attempt, testPassword)
	require.Equal(t, auth.ResultFailed, result)
	require.Error(t, err)
	// Terminal either way: the session must not leak.
	require.Equal(t, 1, portal.closed)
}

func TestAbortClosesSession(t *testing.T) {
	portal := &fakePortal{}
	flow := newFlow(t, portal, &fakeSink{})
	attempt := startAttempt(t, flow)

	flow.Abort(attempt)
	require.Equal(t, 1, portal.closed)
}
