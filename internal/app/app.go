// Package app wires together the core, storage, auth and transport layers.
package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-ircd/internal/auth"
	"github.com/vovakirdan/wirechat-ircd/internal/config"
	"github.com/vovakirdan/wirechat-ircd/internal/core"
	"github.com/vovakirdan/wirechat-ircd/internal/metrics"
	"github.com/vovakirdan/wirechat-ircd/internal/store"
	"github.com/vovakirdan/wirechat-ircd/internal/store/sqlite"
	"github.com/vovakirdan/wirechat-ircd/internal/transport/admin"
	"github.com/vovakirdan/wirechat-ircd/internal/transport/tcp"
	"github.com/vovakirdan/wirechat-ircd/internal/transport/ws"
)

// App owns every long-running component of the server.
type App struct {
	cfg   config.Config
	state *core.State
	store store.Store
	log   *zerolog.Logger

	tcpServer   *tcp.Server
	wsServer    *stdhttp.Server
	adminServer *stdhttp.Server
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DBPath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.ServerName,
		Audience: "admin",
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig, logger)

	m := metrics.New()
	state := core.NewState(core.Options{
		ServerName:      cfg.ServerName,
		MOTD:            cfg.MOTD,
		ServerPassword:  cfg.Password,
		QueueSize:       cfg.QueueSize,
		MaxRoomsPerUser: cfg.MaxChannelsPerUser,
	}, logger, m, authService)

	return &App{
		cfg:         cfg,
		state:       state,
		store:       st,
		log:         logger,
		tcpServer:   tcp.NewServer(cfg.Addr, state, logger, cfg.PingInterval, cfg.IdleTimeout),
		wsServer:    ws.NewServer(cfg.WSAddr, state, logger),
		adminServer: admin.NewServer(cfg.AdminAddr, state, authService, m, logger),
	}, nil
}

// Run starts every listener and blocks until context cancellation or the
// first fatal error.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)

	go func() {
		errCh <- a.tcpServer.Run(ctx)
	}()
	go func() {
		a.log.Info().Str("addr", a.cfg.WSAddr).Msg("websocket listener started")
		if err := a.wsServer.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	go func() {
		a.log.Info().Str("addr", a.cfg.AdminAddr).Msg("admin listener started")
		if err := a.adminServer.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		cancel()
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer shutdownCancel()

	a.log.Info().Msg("shutting down")
	if err := a.wsServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	if err := a.adminServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	a.cleanup()
	return runErr
}

// cleanup closes the database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
