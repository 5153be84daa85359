package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/matrix-connect/linkedin-bridge/auth"
	"github.com/matrix-connect/linkedin-bridge/commands"
	"github.com/matrix-connect/linkedin-bridge/internal/config"
	"github.com/matrix-connect/linkedin-bridge/linkedin"
	"github.com/matrix-connect/linkedin-bridge/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("bridge stopped")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "[run] config")
	}
	configureLogging(cfg)
	displayAppname(cfg.AppName)

	endpoints := linkedin.Endpoints{
		Seed:   cfg.LinkedIn.SeedURL,
		Login:  cfg.LinkedIn.LoginURL,
		Verify: cfg.LinkedIn.VerifyURL,
		Me:     cfg.LinkedIn.MeURL,
	}

	userRepo := users.NewInMemoryUserRepo()
	flow, err := auth.NewFlow(portalFactory(endpoints), users.NewCookieSink(userRepo))
	if err != nil {
		return errors.Wrap(err, "[run] flow")
	}
	processor, err := commands.NewProcessor(
		consoleMatrix{},
		commands.NewInMemoryPendingRepo(),
		userRepo,
		flow,
		linkedin.NewProfileClient(endpoints),
	)
	if err != nil {
		return errors.Wrap(err, "[run] processor")
	}

	return console(processor, cfg.UserID)
}

func portalFactory(endpoints linkedin.Endpoints) auth.PortalFactory {
	return func() (auth.Portal, error) {
		session, err := linkedin.NewSession()
		if err != nil {
			return nil, err
		}
		return linkedin.NewPortal(session, endpoints), nil
	}
}

// console feeds stdin lines to the processor as messages from a single user.
// It stands in for the chat framework, which delivers messages the same way:
// one at a time, arbitrarily delayed.
func console(processor *commands.Processor, userID string) error {
	fmt.Println("Commands: login <email>, whoami, logout, cancel. Ctrl-D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	seq := 0
	for scanner.Scan() {
		body := strings.TrimSpace(scanner.Text())
		if body == "" {
			continue
		}
		seq++
		processor.Handle(context.Background(), commands.Event{
			Sender:  userID,
			RoomID:  "console",
			EventID: fmt.Sprintf("$console-%d", seq),
			Body:    body,
		})
	}
	return scanner.Err()
}

// consoleMatrix prints replies to stdout. It cannot remove scrollback, so
// redaction reports the expected permission failure.
type consoleMatrix struct{}

func (consoleMatrix) Reply(_ context.Context, _ string, text string) error {
	fmt.Println(text)
	return nil
}

func (consoleMatrix) Redact(context.Context, string, string) error {
	return commands.ErrForbidden
}

func configureLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Logging.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
