package store

import (
	"context"

	"github.com/arnavshah/roster-scheduler-go/pkg/database"
	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

// Roster lists the workers of a company
type Roster interface {
	ListWorkers(ctx context.Context, companyID uint) ([]models.Worker, error)
}

// ShiftCatalog lists a company's shift types in catalog order
type ShiftCatalog interface {
	ListShiftTypes(ctx context.Context, companyID uint) ([]models.ShiftType, error)
}

// ConstraintCollector lists the unavailability constraints of a company's workers
type ConstraintCollector interface {
	ListConstraints(ctx context.Context, companyID uint) ([]models.UnavailabilityConstraint, error)
}

// ScheduleStore persists generated schedules. ReplaceSchedule either swaps the whole
// schedule for (companyID, week) or leaves the previous one untouched.
type ScheduleStore interface {
	ReplaceSchedule(ctx context.Context, companyID uint, week models.WeekSelector, runID string, assignments []models.SlotAssignment) error
}

// CompanyLookup checks that a company exists
type CompanyLookup interface {
	GetCompany(ctx context.Context, companyID uint) (*database.Company, error)
}
