package wallet

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/getAlby/tapwallet/store"
	"github.com/getAlby/tapwallet/stream"
	"github.com/getAlby/tapwallet/tahub"
)

// Service wires the transport client, the reconciliation store and the live
// update manager behind the user-facing wallet flows.
type Service struct {
	Config    *Config
	Client    tahub.TahubClientWrapper
	Store     *store.Store
	Stream    *stream.Manager
	Notifier  Notifier
	Logger    zerolog.Logger
	Validator *validator.Validate
}

func NewService(cfg *Config, client tahub.TahubClientWrapper, st *store.Store, mgr *stream.Manager, logger zerolog.Logger) *Service {
	return &Service{
		Config: cfg,
		Client: client,
		Store:  st,
		Stream: mgr,
		Notifier: &LogNotifier{
			Logger:        logger,
			CaptureErrors: cfg.SentryDSN != "",
		},
		Logger:    logger,
		Validator: validator.New(),
	}
}
