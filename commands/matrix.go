package commands

import (
	"context"

	"github.com/pkg/errors"
)

// ErrForbidden is returned by Matrix.Redact when the bridge bot lacks
// permission to remove the message. It is the one redaction failure that is
// silently expected.
var ErrForbidden = errors.New("forbidden")

// Matrix is the slice of the chat framework the command processor needs:
// sending replies and best-effort removal of password messages.
type Matrix interface {
	Reply(ctx context.Context, roomID, text string) error
	Redact(ctx context.Context, roomID, eventID string) error
}

// Event is one inbound message, already routed to this processor by the
// surrounding framework.
type Event struct {
	Sender  string // user identity, e.g. an mxid
	RoomID  string
	EventID string
	Body    string
}
