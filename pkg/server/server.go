package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/arnavshah/roster-scheduler-go/pkg/auth"
	"github.com/arnavshah/roster-scheduler-go/pkg/config"
	"github.com/arnavshah/roster-scheduler-go/pkg/database"
	"github.com/arnavshah/roster-scheduler-go/pkg/handlers"
	"github.com/arnavshah/roster-scheduler-go/pkg/metrics"
	"github.com/arnavshah/roster-scheduler-go/pkg/orchestrator"
	"github.com/arnavshah/roster-scheduler-go/pkg/store"
)

// Build opens the database, seeds the admin account and returns the wired router
func Build(cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, err
	}

	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sink, err := metrics.NewPromSink(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	st := store.New(db)
	generator := orchestrator.NewGenerator(orchestrator.Dependencies{
		Companies:   st,
		Roster:      st,
		Catalog:     st,
		Constraints: st,
		Schedules:   st,
		Metrics:     sink,
	}, logger, cfg.GenerateTimeout)

	h := handlers.New(db, st, auth.New(cfg.JWTSecret, cfg.APIMasterSecret), generator, logger)
	return NewRouter(h, logger, registry), nil
}
