package wallet

import (
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// Notifier is the single user-facing notification surface. Every flow
// outcome, success or failure, goes through it; no error here is ever fatal
// to the caller.
type Notifier interface {
	Info(message string)
	Error(message string)
}

// LogNotifier writes notifications to the service logger and, when Sentry
// was initialized with a DSN, captures error notifications there too.
type LogNotifier struct {
	Logger        zerolog.Logger
	CaptureErrors bool
}

func (n *LogNotifier) Info(message string) {
	n.Logger.Info().Msg(message)
}

func (n *LogNotifier) Error(message string) {
	n.Logger.Error().Msg(message)
	if n.CaptureErrors {
		sentry.CaptureMessage(message)
	}
}
