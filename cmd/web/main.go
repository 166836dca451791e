package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AdamBeresnev/leagueos/internal/config"
	"github.com/AdamBeresnev/leagueos/internal/constants"
	fxmodules "github.com/AdamBeresnev/leagueos/internal/fx"
	"github.com/AdamBeresnev/leagueos/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	db *sqlx.DB,
	reg *prometheus.Registry,
	recording *service.RecordingService,
	dashboards *service.DashboardService,
	admin *service.AdminService,
	logger zerolog.Logger,
) {
	router := newRouter(routerDeps{
		cfg:        cfg,
		logger:     logger,
		gatherer:   reg,
		recording:  recording,
		dashboards: dashboards,
		admin:      admin,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
