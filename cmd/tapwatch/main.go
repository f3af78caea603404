package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/getAlby/tapwallet/lib"
	"github.com/getAlby/tapwallet/store"
	"github.com/getAlby/tapwallet/stream"
	"github.com/getAlby/tapwallet/tahub"
	"github.com/getAlby/tapwallet/wallet"
)

// tapwatch connects to a Taproot Assets wallet backend, follows the three
// push channels and logs every balance and transaction update. It is the
// headless counterpart of the wallet UI: same client, same store, no page.
func main() {

	c := &wallet.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := lib.Logger(c.LogFilePath)

	// Setup exception tracking with Sentry if configured
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn: c.SentryDSN,
		}); err != nil {
			logger.Error().Err(err).Msg("sentry init error")
		}
	}

	startupCtx := context.Background()

	tahubCfg, err := tahub.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading backend config")
	}
	client, err := tahub.InitClient(tahubCfg, logger, startupCtx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error initializing the backend connection")
	}

	streamCfg, err := stream.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading stream config")
	}

	st := store.New(logger)
	manager := stream.NewManager(streamCfg, client, st, tahubCfg.UserID, logger)
	svc := wallet.NewService(c, client, st, manager, logger)

	ctx, cancel := context.WithCancel(startupCtx)
	defer cancel()

	// Full fetch first, then follow live updates
	manager.Refresh(ctx)
	manager.Connect(ctx)
	defer manager.Close()

	events := make(chan store.Event)
	subID := st.Subscribe(events)
	defer st.Unsubscribe(subID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigChan:
			logger.Info().Msg("shutting down")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			logEvent(svc, event)
		}
	}
}

func logEvent(svc *wallet.Service, event store.Event) {
	switch event.Kind {
	case "assets":
		for _, asset := range svc.Store.Assets() {
			svc.Logger.Info().
				Str("asset", asset.Name).
				Int64("balance", asset.UserBalance).
				Msg("balance")
		}
	default:
		for _, tx := range svc.Store.CombinedTransactions() {
			if tx.ID != event.ID {
				continue
			}
			entry := svc.Logger.Info().
				Str("direction", tx.Direction).
				Str("status", tx.Status).
				Int64("amount", tx.AssetAmount).
				Str("date", wallet.FormatDateTime(tx.CreatedAt))
			if tx.Change != nil && tx.Change.StatusChanged {
				entry = entry.Str("previous_status", tx.Change.PreviousStatus)
			}
			entry.Msg(event.Kind[:len(event.Kind)-1])
		}
	}
}
