package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/go-cellar-backend/docs"
	"github.com/tbourn/go-cellar-backend/internal/assistant"
	"github.com/tbourn/go-cellar-backend/internal/config"
	httpapi "github.com/tbourn/go-cellar-backend/internal/http"
	"github.com/tbourn/go-cellar-backend/internal/identity"
	"github.com/tbourn/go-cellar-backend/internal/observability"
	"github.com/tbourn/go-cellar-backend/internal/session"
	"github.com/tbourn/go-cellar-backend/internal/store"
	"github.com/tbourn/go-cellar-backend/internal/sysutil"
)

const (
	shutdownGrace = 10 * time.Second
	sweepInterval = time.Minute
)

// runServe wires the dependencies and serves until SIGINT/SIGTERM.
//
// A missing LINE setup, an unreachable store or a missing Gemini key do not
// stop the process: each is logged and reported to clients through
// /bootstrap and the 503 gates.
func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.SetupLogger(nil, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
		shutdownOTel = func(context.Context) error { return nil }
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	deps := httpapi.Deps{Sessions: session.NewManager(cfg.Identity.SessionTTL)}

	deps.Identity, deps.SetupErr = identity.NewBridge(cfg.Identity)
	if deps.SetupErr != nil {
		log.Warn().Err(deps.SetupErr).Msg("LINE login not configured; serving setup-required")
	}

	deps.Issuer, err = identity.NewSessionIssuer(cfg.Identity.SessionSecret, cfg.Identity.SessionTTL)
	if err != nil {
		return err
	}
	if deps.Issuer.Ephemeral() {
		log.Warn().Msg("SESSION_SECRET not set; sessions will not survive a restart")
	}

	deps.Store, deps.StoreErr = store.Open(ctx, cfg.Store)
	if deps.StoreErr != nil {
		log.Error().Err(deps.StoreErr).Str("driver", cfg.Store.Driver).Msg("cellar store unavailable")
	} else {
		defer func() {
			if err := deps.Store.Close(); err != nil {
				log.Warn().Err(err).Msg("store close")
			}
		}()
	}

	deps.Assistant, err = assistant.NewFromConfig(ctx, cfg.Assistant)
	if err != nil {
		log.Error().Err(err).Msg("assistant client failed; sommelier disabled")
		deps.Assistant = assistant.NewGateway(nil, cfg.Assistant.Temperature)
	}
	if !deps.Assistant.Configured() {
		log.Warn().Msg("GEMINI_API_KEY not set; sommelier answers with a setup notice")
	}

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		deps.Sessions.Run(ctx, sweepInterval)
	}()

	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("store", cfg.Store.Driver).
			Bool("setup_required", deps.SetupErr != nil).
			Bool("assistant", deps.Assistant.Configured()).
			Str("version", version).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		<-sweepDone
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	// Sessions close with ctx, which ends every open cellar stream.
	<-sweepDone
	c, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(c)
}
