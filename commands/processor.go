package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/matrix-connect/linkedin-bridge/auth"
	"github.com/matrix-connect/linkedin-bridge/linkedin"
	"github.com/matrix-connect/linkedin-bridge/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ProfileFetcher is the whoami collaborator: given persisted cookies,
// produce the member's profile. Implemented by *linkedin.ProfileClient.
type ProfileFetcher interface {
	Fetch(ctx context.Context, cookies linkedin.CookieSet) (*linkedin.Profile, error)
}

// Processor routes inbound messages. A recognized command always runs its
// handler; anything else is handed to the sender's pending continuation, or
// answered with the unknown-command reply when none is pending. Handling is
// serialized per user, so a handler has exclusive access to its user's
// registry entry for the duration of one message.
type Processor struct {
	matrix   Matrix
	pending  PendingRepo
	users    users.Repo
	flow     *auth.Flow
	profiles ProfileFetcher

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-user serialization
}

// NewProcessor initializes a Processor with its required dependencies.
func NewProcessor(matrix Matrix, pending PendingRepo, userRepo users.Repo, flow *auth.Flow, profiles ProfileFetcher) (*Processor, error) {
	if matrix == nil {
		return nil, errors.New("[NewProcessor] matrix client is required")
	}
	if pending == nil {
		return nil, errors.New("[NewProcessor] pending repo is required")
	}
	if userRepo == nil {
		return nil, errors.New("[NewProcessor] user repo is required")
	}
	if flow == nil {
		return nil, errors.New("[NewProcessor] login flow is required")
	}
	if profiles == nil {
		return nil, errors.New("[NewProcessor] profile fetcher is required")
	}
	return &Processor{
		matrix:   matrix,
		pending:  pending,
		users:    userRepo,
		flow:     flow,
		profiles: profiles,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// Handle processes one inbound message for its sender.
func (p *Processor) Handle(ctx context.Context, evt Event) {
	lock := p.userLock(evt.Sender)
	lock.Lock()
	defer lock.Unlock()

	args := strings.Fields(evt.Body)
	if len(args) == 0 {
		return
	}

	switch strings.ToLower(args[0]) {
	case "login":
		p.cmdLogin(ctx, evt, args[1:])
	case "whoami":
		p.cmdWhoami(ctx, evt)
	case "logout":
		p.cmdLogout(ctx, evt)
	case "cancel":
		p.cmdCancel(ctx, evt)
	default:
		if cont, ok := p.pending.Get(evt.Sender); ok {
			p.continueFlow(ctx, evt, cont)
			return
		}
		p.reply(ctx, evt, msgUnknownCommand)
	}
}

func (p *Processor) userLock(userID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[userID] = lock
	}
	return lock
}

// cmdLogin starts a login attempt. With persisted cookies it short-circuits
// before any network call; without an email it only replies with the usage
// instruction. A pending attempt for the same user is silently replaced, its
// orphaned session closed.
func (p *Processor) cmdLogin(ctx context.Context, evt Event, args []string) {
	if p.loggedIn(evt.Sender) {
		p.reply(ctx, evt, msgAlreadyLoggedIn)
		return
	}
	if len(args) == 0 {
		p.reply(ctx, evt, msgMissingEmail)
		return
	}

	if cont, ok := p.pending.Get(evt.Sender); ok && cont.Attempt != nil {
		p.flow.Abort(cont.Attempt)
	}

	attempt, err := p.flow.Start(args[0])
	if err != nil {
		log.Err(err).Str("user_id", evt.Sender).Msg("could not start login attempt")
		p.clearAndReply(ctx, evt, msgLoginFailed)
		return
	}
	if err := p.pending.Set(evt.Sender, Continuation{Flow: FlowLogin, RoomID: evt.RoomID, Attempt: attempt}); err != nil {
		log.Err(err).Str("user_id", evt.Sender).Msg("could not register login continuation")
		p.flow.Abort(attempt)
		p.reply(ctx, evt, msgLoginFailed)
		return
	}
	p.reply(ctx, evt, msgSendPassword)
}

func (p *Processor) continueFlow(ctx context.Context, evt Event, cont Continuation) {
	if cont.Flow != FlowLogin || cont.Attempt == nil {
		log.Warn().Str("user_id", evt.Sender).Str("flow", cont.Flow).Msg("dropping unusable continuation")
		p.clear(evt.Sender)
		return
	}

	switch cont.Attempt.State {
	case auth.AwaitingPassword:
		p.continuePassword(ctx, evt, cont)
	case auth.AwaitingTwoFactorCode:
		p.continueCode(ctx, evt, cont)
	}
}

// continuePassword treats the whole message body as the password and
// advances the attempt. The continuation for the 2FA step is installed only
// after the step's network calls complete.
func (p *Processor) continuePassword(ctx context.Context, evt Event, cont Continuation) {
	p.redactBestEffort(ctx, evt)

	result, err := p.flow.SubmitPassword(ctx, evt.Sender, cont.Attempt, evt.Body)
	if err != nil {
		log.Err(err).Str("user_id", evt.Sender).Msg("password step failed")
	}

	switch result {
	case auth.ResultAuthenticated:
		p.clearAndReply(ctx, evt, msgLoginSuccess)
	case auth.ResultChallengeRequired:
		if err := p.pending.Set(evt.Sender, cont); err != nil {
			log.Err(err).Str("user_id", evt.Sender).Msg("could not re-arm login continuation")
			p.flow.Abort(cont.Attempt)
			p.clearAndReply(ctx, evt, msgLoginFailed)
			return
		}
		p.reply(ctx, evt, msgSend2FACode)
	default:
		p.clearAndReply(ctx, evt, msgLoginFailed)
	}
}

// continueCode assembles the one-time code from all whitespace-delimited
// tokens of the message, tolerating codes the user splits across words.
// This step is always terminal; an unexpected error is the single path
// where internal detail reaches the user.
func (p *Processor) continueCode(ctx context.Context, evt Event, cont Continuation) {
	code := strings.Join(strings.Fields(evt.Body), "")

	result, err := p.flow.SubmitCode(ctx, evt.Sender, cont.Attempt, code)
	p.clear(evt.Sender)

	if result == auth.ResultAuthenticated {
		p.reply(ctx, evt, msgLoginSuccess)
		return
	}
	if err != nil {
		log.Err(err).Str("user_id", evt.Sender).Msg("2FA step failed")
		p.reply(ctx, evt, fmt.Sprintf("%s: %s", msgLoginFailed, err))
		return
	}
	p.reply(ctx, evt, msgLoginFailed)
}

func (p *Processor) cmdWhoami(ctx context.Context, evt Event) {
	user, err := p.users.GetByMXID(evt.Sender)
	if err != nil || !user.HasCookies() {
		p.reply(ctx, evt, msgNotLoggedIn)
		return
	}

	profile, err := p.profiles.Fetch(ctx, linkedin.CookieSet(user.Cookies))
	if err != nil {
		log.Err(err).Str("user_id", evt.Sender).Msg("profile fetch failed")
		p.reply(ctx, evt, msgNotLoggedIn)
		return
	}
	p.reply(ctx, evt, fmt.Sprintf("You are logged in as %s %s",
		profile.MiniProfile.FirstName, profile.MiniProfile.LastName))
}

func (p *Processor) cmdLogout(ctx context.Context, evt Event) {
	user, err := p.users.GetByMXID(evt.Sender)
	if err != nil || !user.HasCookies() {
		p.reply(ctx, evt, msgNotLoggedIn)
		return
	}

	user.Cookies = nil
	if err := p.users.Upsert(user); err != nil {
		log.Err(err).Str("user_id", evt.Sender).Msg("could not clear cookies")
		p.reply(ctx, evt, msgLoginFailed)
		return
	}
	p.reply(ctx, evt, msgLoggedOut)
}

func (p *Processor) cmdCancel(ctx context.Context, evt Event) {
	cont, ok := p.pending.Get(evt.Sender)
	if !ok {
		p.reply(ctx, evt, msgNothingToCancel)
		return
	}
	if cont.Attempt != nil {
		p.flow.Abort(cont.Attempt)
	}
	p.clearAndReply(ctx, evt, msgCancelled)
}

// redactBestEffort removes the password message if the framework allows it.
// A permission failure is expected and swallowed; any other failure is
// logged but never surfaced or allowed to block the flow.
func (p *Processor) redactBestEffort(ctx context.Context, evt Event) {
	err := p.matrix.Redact(ctx, evt.RoomID, evt.EventID)
	if err == nil || errors.Is(err, ErrForbidden) {
		return
	}
	log.Warn().Err(err).Str("room_id", evt.RoomID).Msg("could not redact password message")
}

func (p *Processor) loggedIn(userID string) bool {
	user, err := p.users.GetByMXID(userID)
	return err == nil && user.HasCookies()
}

func (p *Processor) clear(userID string) {
	if err := p.pending.Clear(userID); err != nil {
		log.Err(err).Str("user_id", userID).Msg("could not clear continuation")
	}
}

func (p *Processor) clearAndReply(ctx context.Context, evt Event, text string) {
	p.clear(evt.Sender)
	p.reply(ctx, evt, text)
}

func (p *Processor) reply(ctx context.Context, evt Event, text string) {
	if err := p.matrix.Reply(ctx, evt.RoomID, text); err != nil {
		log.Err(err).Str("room_id", evt.RoomID).Msg("failed to send reply")
	}
}
