package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/matrix-connect/linkedin-bridge/linkedin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// State is the step a login attempt expects next. The initial
// awaiting-email step is transient: it is resolved synchronously from the
// login command's arguments and never stored.
type State int

const (
	AwaitingPassword State = iota
	AwaitingTwoFactorCode
)

// Result of advancing an attempt by one step.
type Result int

const (
	ResultAuthenticated Result = iota
	ResultChallengeRequired
	ResultFailed
)

// Attempt is one in-progress login. It exists only while the pending-command
// registry holds a login continuation for its user, and it exclusively owns
// its HTTP session until a terminal transition closes it. Email is set once
// at attempt start and never changes.
type Attempt struct {
	ID        string
	Email     string
	State     State
	Challenge linkedin.ChallengeFields // set only while awaiting a 2FA code

	portal Portal
}

// Portal is the slice of the provider client the flow drives. Implemented by
// *linkedin.Portal; faked in tests.
type Portal interface {
	FetchSeed(ctx context.Context) (string, error)
	SubmitCredentials(ctx context.Context, csrfToken, email, password string) (string, linkedin.CookieSet, error)
	SubmitChallenge(ctx context.Context, fields linkedin.ChallengeFields, code string) (string, linkedin.CookieSet, error)
	Close()
}

// PortalFactory builds a portal bound to a fresh session, one per attempt.
type PortalFactory func() (Portal, error)

// CompletionSink receives the captured cookies when an attempt reaches the
// authenticated state. Implementations persist them for the bridge user.
type CompletionSink interface {
	LoggedIn(ctx context.Context, userID, email string, cookies linkedin.CookieSet) error
}

// Flow drives login attempts through their states. One Flow serves all
// users; everything per-user lives in the Attempt, so concurrent attempts
// never share state.
type Flow struct {
	portals PortalFactory
	sink    CompletionSink
}

// NewFlow initializes a Flow with its required collaborators.
func NewFlow(portals PortalFactory, sink CompletionSink) (*Flow, error) {
	if portals == nil {
		return nil, errors.New("[NewFlow] portal factory is required")
	}
	if sink == nil {
		return nil, errors.New("[NewFlow] completion sink is required")
	}
	return &Flow{portals: portals, sink: sink}, nil
}

// Start creates an attempt in AwaitingPassword with its own live session.
func (f *Flow) Start(email string) (*Attempt, error) {
	portal, err := f.portals()
	if err != nil {
		return nil, errors.Wrap(err, "[Flow.Start] portal factory")
	}
	return &Attempt{
		ID:     uuid.New().String(),
		Email:  email,
		State:  AwaitingPassword,
		portal: portal,
	}, nil
}

// Abort closes an attempt's session without completing it. Used when a
// pending attempt is cancelled or silently replaced by a new login command.
func (f *Flow) Abort(attempt *Attempt) {
	attempt.portal.Close()
}

// SubmitPassword advances AwaitingPassword: fetch the seed page, extract the
// anti-forgery token, submit the credentials and decide the outcome from the
// resulting cookie set. On ResultChallengeRequired the attempt stays alive
// in AwaitingTwoFactorCode with the extracted challenge fields; every other
// outcome is terminal and closes the session.
func (f *Flow) SubmitPassword(ctx context.Context, userID string, attempt *Attempt, password string) (Result, error) {
	if attempt.State != AwaitingPassword {
		f.Abort(attempt)
		return ResultFailed, errors.Wrapf(ErrUnexpectedState, "[Flow.SubmitPassword] state %d", attempt.State)
	}

	seed, err := attempt.portal.FetchSeed(ctx)
	if err != nil {
		f.Abort(attempt)
		return ResultFailed, errors.Wrap(err, "[Flow.SubmitPassword] fetch seed")
	}
	csrfToken, err := linkedin.ExtractField(seed, "loginCsrfParam")
	if err != nil {
		f.Abort(attempt)
		return ResultFailed, errors.Wrap(err, "[Flow.SubmitPassword] seed csrf")
	}

	html, cookies, err := attempt.portal.SubmitCredentials(ctx, csrfToken, attempt.Email, password)
	if err != nil {
		f.Abort(attempt)
		return ResultFailed, errors.Wrap(err, "[Flow.SubmitPassword] submit credentials")
	}

	if cookies.Complete() {
		return f.complete(ctx, userID, attempt, cookies)
	}

	if linkedin.IsChallenge(html) {
		challenge, err := linkedin.ExtractChallenge(html)
		if err != nil {
			f.Abort(attempt)
			return ResultFailed, errors.Wrap(err, "[Flow.SubmitPassword] challenge fields")
		}
		attempt.State = AwaitingTwoFactorCode
		attempt.Challenge = challenge
		return ResultChallengeRequired, nil
	}

	// A rejected password and an unrecognized page are indistinguishable
	// here; both collapse to a generic failure.
	f.Abort(attempt)
	return ResultFailed, nil
}

// SubmitCode advances AwaitingTwoFactorCode by posting the stored challenge
// fields with the user's code. Always terminal.
func (f *Flow) SubmitCode(ctx context.Context, userID string, attempt *Attempt, code string) (Result, error) {
	if attempt.State != AwaitingTwoFactorCode {
		f.Abort(attempt)
		return ResultFailed, errors.Wrapf(ErrUnexpectedState, "[Flow.SubmitCode] state %d", attempt.State)
	}

	_, cookies, err := attempt.portal.SubmitChallenge(ctx, attempt.Challenge, code)
	if err != nil {
		f.Abort(attempt)
		return ResultFailed, errors.Wrap(err, "[Flow.SubmitCode] submit challenge")
	}
	if !cookies.Complete() {
		f.Abort(attempt)
		return ResultFailed, nil
	}
	return f.complete(ctx, userID, attempt, cookies)
}

func (f *Flow) complete(ctx context.Context, userID string, attempt *Attempt, cookies linkedin.CookieSet) (Result, error) {
	defer attempt.portal.Close()
	if err := f.sink.LoggedIn(ctx, userID, attempt.Email, cookies); err != nil {
		return ResultFailed, errors.Wrap(err, "[Flow.complete] completion sink")
	}
	log.Info().Str("attempt_id", attempt.ID).Msg("login completed")
	return ResultAuthenticated, nil
}
