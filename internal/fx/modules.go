package fx

import (
	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/AdamBeresnev/leagueos/internal/config"
	"github.com/AdamBeresnev/leagueos/internal/db"
	"github.com/AdamBeresnev/leagueos/internal/logger"
	"github.com/AdamBeresnev/leagueos/internal/metrics"
	"github.com/AdamBeresnev/leagueos/internal/service"
	"github.com/AdamBeresnev/leagueos/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

var Module = fx.Options(
	fx.Provide(fx.Annotate(logger.New, fx.ResultTags(`name:"bootstrap"`))),
	config.Module,
	fx.Provide(logger.FromConfig),
	fx.Provide(metrics.NewRegistry),
	fx.Provide(ProvideMetrics),
	fx.Provide(db.InitDB),
	// stores
	fx.Provide(store.NewJournalStore),
	// api client
	fx.Provide(fx.Annotate(apiclient.New, fx.As(new(service.LeagueAPI)))),
	// svc
	fx.Provide(service.NewRecordingService),
	fx.Provide(service.NewDashboardService),
	fx.Provide(service.NewAdminService),
)
