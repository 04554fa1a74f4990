package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnavshah/roster-scheduler-go/pkg/metrics"
	"github.com/arnavshah/roster-scheduler-go/pkg/models"
	"github.com/arnavshah/roster-scheduler-go/pkg/scheduler"
	"github.com/arnavshah/roster-scheduler-go/pkg/store"
)

// Dependencies are the read and write sides a Generator works against
type Dependencies struct {
	Companies   store.CompanyLookup
	Roster      store.Roster
	Catalog     store.ShiftCatalog
	Constraints store.ConstraintCollector
	Schedules   store.ScheduleStore
	Metrics     metrics.Recorder
}

// GenerateResult represents the outcome of one stored generation
type GenerateResult struct {
	RunID     string `json:"run_id"`
	CompanyID uint   `json:"company_id"`
	Message   string `json:"message"`
	*models.SolveResult
}

// Generator snapshots a company's inputs, runs the solver and replaces the stored schedule
type Generator struct {
	deps     Dependencies
	logger   *zap.Logger
	timeout  time.Duration
	locks    *keyedMutex
	newRunID func() string
}

// NewGenerator creates a generator. A zero timeout disables the deadline on store calls.
func NewGenerator(deps Dependencies, logger *zap.Logger, timeout time.Duration) *Generator {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	return &Generator{
		deps:     deps,
		logger:   logger,
		timeout:  timeout,
		locks:    newKeyedMutex(),
		newRunID: func() string { return uuid.New().String() },
	}
}

// Generate computes the schedule of (companyID, week) from scratch and stores it in place
// of the previous one. Calls for the same company and week run one at a time.
func (g *Generator) Generate(ctx context.Context, companyID uint, week models.WeekSelector) (*GenerateResult, error) {
	if !week.Valid() {
		return nil, fmt.Errorf("%w: %q", scheduler.ErrInvalidWeek, week)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if _, err := g.deps.Companies.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}

	unlock, err := g.locks.Lock(ctx, lockKey(companyID, week))
	if err != nil {
		g.deps.Metrics.RecordFailure(week, "lock")
		return nil, fmt.Errorf("waiting for schedule lock: %w", err)
	}
	defer unlock()

	start := time.Now()
	logger := g.logger.With(zap.Uint("company_id", companyID), zap.String("week", string(week)))
	logger.Debug("Generating schedule")

	workers, shiftTypes, constraints, err := g.snapshot(ctx, companyID)
	if err != nil {
		g.deps.Metrics.RecordFailure(week, "load")
		return nil, err
	}
	logger.Debug("Loaded scheduling inputs",
		zap.Int("workers", len(workers)),
		zap.Int("shift_types", len(shiftTypes)),
		zap.Int("constraints", len(constraints)))

	result, err := scheduler.Solve(workers, shiftTypes, constraints, week)
	if err != nil {
		g.deps.Metrics.RecordFailure(week, "solve")
		return nil, fmt.Errorf("failed to solve schedule: %w", err)
	}

	runID := g.newRunID()
	if err := g.deps.Schedules.ReplaceSchedule(ctx, companyID, week, runID, result.Assignments); err != nil {
		g.deps.Metrics.RecordFailure(week, "store")
		logger.Error("Failed to store schedule", zap.String("run_id", runID), zap.Error(err))
		return nil, fmt.Errorf("failed to store schedule: %w", err)
	}

	g.deps.Metrics.RecordGeneration(week, result, time.Since(start).Seconds())
	logger.Info("Schedule generated",
		zap.String("run_id", runID),
		zap.String("status", string(result.Status)),
		zap.Int("filled", result.FilledCount),
		zap.Int("total", result.TotalSlots),
		zap.Float64("fairness_score", result.FairnessScore))

	return &GenerateResult{
		RunID:       runID,
		CompanyID:   companyID,
		Message:     Message(result),
		SolveResult: result,
	}, nil
}

func lockKey(companyID uint, week models.WeekSelector) string {
	return fmt.Sprintf("%d/%s", companyID, week)
}

// snapshot reads the three inputs once so the solver never sees later edits
func (g *Generator) snapshot(ctx context.Context, companyID uint) ([]models.Worker, []models.ShiftType, []models.UnavailabilityConstraint, error) {
	workers, err := g.deps.Roster.ListWorkers(ctx, companyID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load workers: %w", err)
	}
	shiftTypes, err := g.deps.Catalog.ListShiftTypes(ctx, companyID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load shift types: %w", err)
	}
	constraints, err := g.deps.Constraints.ListConstraints(ctx, companyID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load constraints: %w", err)
	}
	return workers, shiftTypes, constraints, nil
}

// Message describes a solve result for end users
func Message(result *models.SolveResult) string {
	if result.Status == models.StatusComplete {
		return fmt.Sprintf("schedule for the %s week generated", result.Week)
	}
	return fmt.Sprintf("schedule for the %s week generated with %d unfilled slots", result.Week, result.UnfilledCount())
}
