package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arnavshah/roster-scheduler-go/pkg/handlers"
	"github.com/arnavshah/roster-scheduler-go/pkg/logging"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// NewRouter wires every route of the API. gatherer backs /metrics and may be nil.
func NewRouter(h *handlers.Handler, logger *zap.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinMiddleware(logger))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Roster Scheduler API",
			"version": Version,
		})
	})

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Scheduler Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/solve", h.Solve)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)
		api.GET("/week-dates", h.WeekDates)

		api.POST("/companies", h.CreateCompany)
		api.GET("/companies", h.ListCompanies)

		company := api.Group("/companies/:company_id")
		company.GET("/workers", h.ListWorkers)
		company.POST("/workers", h.AddWorker)
		company.DELETE("/workers/:worker_id", h.DeleteWorker)
		company.PUT("/workers/:worker_id/constraints", h.SetWorkerConstraints)

		company.GET("/shift-types", h.ListShiftTypes)
		company.POST("/shift-types", h.AddShiftType)
		company.POST("/shift-types/defaults", h.SeedDefaultShiftTypes)
		company.DELETE("/shift-types/:shift_type_id", h.DeleteShiftType)

		company.GET("/constraints", h.ListConstraints)
		company.DELETE("/constraints/:constraint_id", h.DeleteConstraint)

		company.POST("/schedule/generate", h.GenerateSchedule)
		company.GET("/schedule", h.GetSchedule)
		company.GET("/schedule/csv", h.ExportScheduleCSV)
	}

	return r
}
