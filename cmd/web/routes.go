package main

import (
	"context"
	"net/http"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/config"
	"github.com/AdamBeresnev/leagueos/internal/constants"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/middleware"
	"github.com/AdamBeresnev/leagueos/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type recorder interface {
	Resolve(ctx context.Context, token string, clubID, seasonID int64) (league.RecordingContext, error)
	Record(ctx context.Context, token string, clubID int64, in service.RecordInput) (*service.RecordResult, error)
}

type dashboardLoader interface {
	Load(ctx context.Context, token string, clubID, playerID int64) (*service.Dashboard, error)
}

type adminWorkspace interface {
	Authorize(ctx context.Context, token string, clubID int64) (*league.Profile, error)
	AuthorizeRecorder(ctx context.Context, token string, clubID int64) (*league.Profile, error)
	Roster(ctx context.Context, token string, clubID int64) ([]league.Player, error)
	SessionSummary(ctx context.Context, token string, clubID, sessionID int64) (*service.SessionSummary, error)
	Journal(ctx context.Context, clubID int64) (*service.JournalOverview, error)
	Attempt(ctx context.Context, clubID int64, id uuid.UUID) (*service.AttemptDetail, error)
}

type routerDeps struct {
	cfg        *config.Config
	logger     zerolog.Logger
	gatherer   prometheus.Gatherer
	recording  recorder
	dashboards dashboardLoader
	admin      adminWorkspace
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(deps.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(constants.RequestTimeout))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   deps.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler)

	loc, err := deps.cfg.Location()
	if err != nil {
		loc = time.Local
	}
	h := &handlers{loc: loc, recording: deps.recording, dashboards: deps.dashboards, admin: deps.admin}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/time/floor", h.floorTime)
		r.Get("/time/combine", h.combineTime)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken)

			r.Route("/clubs/{clubID}", func(r chi.Router) {
				r.Get("/recording/context", h.recordingContext)
				r.With(middleware.RequireRecorder(deps.admin.AuthorizeRecorder)).Post("/games", h.recordGame)
				r.Get("/dashboard", h.dashboard)

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireAdmin(deps.admin.Authorize))

					r.Get("/roster", h.roster)
					r.Get("/sessions/{sessionID}/summary", h.sessionSummary)
					r.Get("/journal", h.journal)
					r.Get("/journal/{attemptID}", h.attempt)
				})
			})
		})
	})

	return r
}
