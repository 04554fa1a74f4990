package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/arnavshah/roster-scheduler-go/pkg/database"
	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

var (
	// ErrNotFound is returned when a company, worker, shift type or constraint does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a record with the same key already exists
	ErrConflict = errors.New("already exists")
)

// DefaultShiftTypes seeds an empty catalog
var DefaultShiftTypes = []string{"Morning", "Noon", "Evening", "Night"}

// Store implements the roster, catalog, constraint and schedule stores on gorm
type Store struct {
	db *gorm.DB
}

// New creates a store on an already migrated database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateCompany inserts a company with a unique name
func (s *Store) CreateCompany(ctx context.Context, name string) (*database.Company, error) {
	company := &database.Company{Name: name}
	err := s.db.WithContext(ctx).Create(company).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("company %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}

// GetCompany returns a company by ID
func (s *Store) GetCompany(ctx context.Context, companyID uint) (*database.Company, error) {
	var company database.Company
	err := s.db.WithContext(ctx).First(&company, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("company %d: %w", companyID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

// ListCompanies returns all companies ordered by ID
func (s *Store) ListCompanies(ctx context.Context) ([]database.Company, error) {
	var companies []database.Company
	if err := s.db.WithContext(ctx).Order("id").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// ListWorkers returns the company's roster ordered by worker ID
func (s *Store) ListWorkers(ctx context.Context, companyID uint) ([]models.Worker, error) {
	var rows []database.Worker
	if err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("worker_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	workers := make([]models.Worker, len(rows))
	for i, r := range rows {
		workers[i] = models.Worker{ID: r.WorkerID, Name: r.Name, MaxShifts: r.MaxShifts}
	}
	return workers, nil
}

// AddWorker adds a worker to the company's roster. The (company, worker ID) unique index
// rejects duplicates, so concurrent adds of the same worker leave exactly one row.
func (s *Store) AddWorker(ctx context.Context, companyID uint, worker models.Worker) error {
	row := database.Worker{
		CompanyID: companyID,
		WorkerID:  worker.ID,
		Name:      worker.Name,
		MaxShifts: worker.MaxShifts,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("worker %q: %w", worker.ID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert worker: %w", err)
	}
	return nil
}

// DeleteWorker removes a worker together with their constraints
func (s *Store) DeleteWorker(ctx context.Context, companyID uint, workerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("company_id = ? AND worker_id = ?", companyID, workerID).Delete(&database.Worker{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete worker: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("worker %q: %w", workerID, ErrNotFound)
		}

		if err := tx.Where("company_id = ? AND worker_id = ?", companyID, workerID).Delete(&database.Constraint{}).Error; err != nil {
			return fmt.Errorf("failed to delete worker constraints: %w", err)
		}
		return nil
	})
}

// ListShiftTypes returns the company's catalog ordered by position, then ID
func (s *Store) ListShiftTypes(ctx context.Context, companyID uint) ([]models.ShiftType, error) {
	var rows []database.ShiftType
	if err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("position, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list shift types: %w", err)
	}

	shiftTypes := make([]models.ShiftType, len(rows))
	for i, r := range rows {
		shiftTypes[i] = models.ShiftType{ID: r.ID, Name: r.Name, Position: r.Position}
	}
	return shiftTypes, nil
}

// AddShiftType appends a shift type to the company's catalog
func (s *Store) AddShiftType(ctx context.Context, companyID uint, name string, position int) (models.ShiftType, error) {
	row := database.ShiftType{CompanyID: companyID, Name: name, Position: position}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.ShiftType{}, fmt.Errorf("failed to insert shift type: %w", err)
	}
	return models.ShiftType{ID: row.ID, Name: row.Name, Position: row.Position}, nil
}

// SeedDefaultShiftTypes fills an empty catalog with DefaultShiftTypes
func (s *Store) SeedDefaultShiftTypes(ctx context.Context, companyID uint) ([]models.ShiftType, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.ShiftType{}).Where("company_id = ?", companyID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count shift types: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("shift catalog of company %d: %w", companyID, ErrConflict)
		}

		rows := make([]database.ShiftType, len(DefaultShiftTypes))
		for i, name := range DefaultShiftTypes {
			rows[i] = database.ShiftType{CompanyID: companyID, Name: name, Position: i}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert default shift types: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ListShiftTypes(ctx, companyID)
}

// DeleteShiftType removes a shift type and the constraints that reference it
func (s *Store) DeleteShiftType(ctx context.Context, companyID, shiftTypeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("company_id = ? AND id = ?", companyID, shiftTypeID).Delete(&database.ShiftType{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete shift type: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("shift type %d: %w", shiftTypeID, ErrNotFound)
		}

		if err := tx.Where("company_id = ? AND shift_type_id = ?", companyID, shiftTypeID).Delete(&database.Constraint{}).Error; err != nil {
			return fmt.Errorf("failed to delete shift type constraints: %w", err)
		}
		return nil
	})
}

// ListConstraints returns every constraint of the company ordered by day, shift type and worker
func (s *Store) ListConstraints(ctx context.Context, companyID uint) ([]models.UnavailabilityConstraint, error) {
	rows, err := s.ListConstraintRecords(ctx, companyID)
	if err != nil {
		return nil, err
	}

	constraints := make([]models.UnavailabilityConstraint, len(rows))
	for i, r := range rows {
		constraints[i] = models.UnavailabilityConstraint{WorkerID: r.WorkerID, Day: r.Day, ShiftTypeID: r.ShiftTypeID}
	}
	return constraints, nil
}

// ListConstraintRecords returns the stored constraint rows, IDs included
func (s *Store) ListConstraintRecords(ctx context.Context, companyID uint) ([]database.Constraint, error) {
	var rows []database.Constraint
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("day, shift_type_id, worker_id, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list constraints: %w", err)
	}
	return rows, nil
}

// ReplaceWorkerConstraints swaps a worker's whole constraint set
func (s *Store) ReplaceWorkerConstraints(ctx context.Context, companyID uint, workerID string, constraints []models.UnavailabilityConstraint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.Worker{}).
			Where("company_id = ? AND worker_id = ?", companyID, workerID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check worker: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("worker %q: %w", workerID, ErrNotFound)
		}

		if err := tx.Where("company_id = ? AND worker_id = ?", companyID, workerID).Delete(&database.Constraint{}).Error; err != nil {
			return fmt.Errorf("failed to delete constraints: %w", err)
		}
		if len(constraints) == 0 {
			return nil
		}

		rows := make([]database.Constraint, len(constraints))
		for i, c := range constraints {
			rows[i] = database.Constraint{
				CompanyID:   companyID,
				WorkerID:    workerID,
				Day:         c.Day,
				ShiftTypeID: c.ShiftTypeID,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert constraints: %w", err)
		}
		return nil
	})
}

// DeleteConstraint removes one constraint row
func (s *Store) DeleteConstraint(ctx context.Context, companyID, constraintID uint) error {
	res := s.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, constraintID).Delete(&database.Constraint{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete constraint: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("constraint %d: %w", constraintID, ErrNotFound)
	}
	return nil
}

// ReplaceSchedule deletes the previous schedule of (companyID, week) and inserts the
// new assignments in the same transaction
func (s *Store) ReplaceSchedule(ctx context.Context, companyID uint, week models.WeekSelector, runID string, assignments []models.SlotAssignment) error {
	rows := make([]database.ScheduleEntry, len(assignments))
	for i, a := range assignments {
		var workerID *string
		if a.WorkerID != nil {
			id := *a.WorkerID
			workerID = &id
		}
		rows[i] = database.ScheduleEntry{
			CompanyID:   companyID,
			Week:        string(week),
			RunID:       runID,
			Day:         a.Slot.Day,
			ShiftTypeID: a.Slot.ShiftTypeID,
			ShiftName:   a.Slot.ShiftName,
			Position:    i,
			WorkerID:    workerID,
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ? AND week = ?", companyID, string(week)).Delete(&database.ScheduleEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous schedule: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert schedule: %w", err)
		}
		return nil
	})
}

// GetSchedule returns the stored schedule of (companyID, week) in slot order
func (s *Store) GetSchedule(ctx context.Context, companyID uint, week models.WeekSelector) ([]database.ScheduleEntry, error) {
	var rows []database.ScheduleEntry
	if err := s.db.WithContext(ctx).
		Where("company_id = ? AND week = ?", companyID, string(week)).
		Order("position").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return rows, nil
}
