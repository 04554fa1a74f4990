package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Company scopes a roster, a shift catalog and its schedules
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Worker represents the workers table
type Worker struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CompanyID uint      `gorm:"uniqueIndex:idx_company_worker;not null" json:"company_id"`
	WorkerID  string    `gorm:"uniqueIndex:idx_company_worker;not null" json:"worker_id"`
	Name      string    `gorm:"not null" json:"name"`
	MaxShifts int       `gorm:"default:0" json:"max_shifts"`
	CreatedAt time.Time `json:"created_at"`
}

// ShiftType represents the shift_types table
type ShiftType struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CompanyID uint   `gorm:"index;not null" json:"company_id"`
	Name      string `gorm:"not null" json:"name"`
	Position  int    `gorm:"default:0" json:"position"`
}

// Constraint represents the constraints table: one unavailable (day, shift type) per row
type Constraint struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CompanyID   uint   `gorm:"index:idx_constraint_worker;not null" json:"company_id"`
	WorkerID    string `gorm:"index:idx_constraint_worker;not null" json:"worker_id"`
	Day         int    `gorm:"not null" json:"day"`
	ShiftTypeID uint   `gorm:"not null" json:"shift_type_id"`
}

// ScheduleEntry represents one slot of a generated schedule. WorkerID is nil when the
// slot was left unfilled.
type ScheduleEntry struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	CompanyID   uint      `gorm:"index:idx_schedule_company_week;not null" json:"company_id"`
	Week        string    `gorm:"index:idx_schedule_company_week;not null" json:"week"`
	RunID       string    `gorm:"index;not null" json:"run_id"`
	Day         int       `gorm:"not null" json:"day"`
	ShiftTypeID uint      `gorm:"not null" json:"shift_type_id"`
	ShiftName   string    `json:"shift_name"`
	Position    int       `json:"-"` // slot order within the run
	WorkerID    *string   `json:"worker_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"` // requests per day
	Revoked    bool       `gorm:"default:false" json:"revoked"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalSlots   int    `gorm:"default:0" json:"total_slots"`
	TotalWorkers int    `gorm:"default:0" json:"total_workers"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open connects to postgres when databaseURL is set, otherwise to the sqlite file at
// dataPath, and migrates the schema
func Open(databaseURL, dataPath string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	if databaseURL != "" {
		dialector = postgres.New(postgres.Config{
			DSN:                  databaseURL,
			PreferSimpleProtocol: true,
		})
		gormConfig.PrepareStmt = false
	} else {
		dialector = sqlite.Open(dataPath)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Company{},
		&Worker{},
		&ShiftType{},
		&Constraint{},
		&ScheduleEntry{},
		&APIKey{},
		&APIUsage{},
		&MasterUser{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
