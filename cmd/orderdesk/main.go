package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"orderdesk/internal/backend"
	"orderdesk/internal/catalog"
	"orderdesk/internal/composer"
	"orderdesk/internal/config"
	"orderdesk/internal/handler"
	"orderdesk/internal/state"
	"orderdesk/internal/status"
	"orderdesk/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "orderdesk").Logger()

	log.Info().Msg("orderdesk starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Debug().Str("backend_url", cfg.Backend.URL).Str("port", cfg.App.Port).Msg("Configuration loaded")

	client := backend.New(cfg.Backend.URL, cfg.Backend.Timeout)
	cache := catalog.NewCache(client)
	store := state.NewStore(client, cache, cfg.Backend.OrdersLimit)
	draft := composer.New(cache, client)
	provider := status.NewProvider(client, cfg.Status.PollInterval)

	// After a successful submission the backend has changed stock and the
	// order list; refresh the dependent snapshots in the background.
	draft.OnChange(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
		defer cancel()
		if err := store.ReloadAll(ctx); err != nil {
			log.Warn().Err(err).Msg("snapshot refresh after submission failed")
		}
	})

	// Initial load, best effort: the desk stays usable even if the backend
	// is briefly unreachable.
	initCtx, cancelInit := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	if err := store.ReloadAll(initCtx); err != nil {
		log.Warn().Err(err).Msg("Initial data load incomplete")
	}
	cancelInit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go provider.Run(ctx)

	router := transport.NewRouter(transport.Handlers{
		Customers: handler.NewCustomerHandler(store, client),
		Products:  handler.NewProductHandler(store, client),
		Orders:    handler.NewOrderHandler(store, client),
		Draft:     handler.NewDraftHandler(draft),
		Status:    handler.NewStatusHandler(provider, store),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
