package models

// WeekSelector picks which calendar week a generated schedule belongs to
type WeekSelector string

const (
	WeekCurrent WeekSelector = "current"
	WeekNext    WeekSelector = "next"
)

// Valid reports whether w is one of the known selectors
func (w WeekSelector) Valid() bool {
	return w == WeekCurrent || w == WeekNext
}

// DaysPerWeek is the number of day indices in a slot grid (0 = Sunday)
const DaysPerWeek = 7

// Worker is a member of a company's roster
type Worker struct {
	ID        string `json:"id" yaml:"id" validate:"required"`
	Name      string `json:"name" yaml:"name"`
	MaxShifts int    `json:"max_shifts,omitempty" yaml:"max_shifts,omitempty" validate:"gte=0"`
}

// ShiftType is one entry of a company's ordered shift catalog
type ShiftType struct {
	ID       uint   `json:"id" yaml:"id" validate:"required"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	Position int    `json:"position" yaml:"position"`
}

// UnavailabilityConstraint forbids a worker from one (day, shift type) slot
type UnavailabilityConstraint struct {
	WorkerID    string `json:"worker_id" yaml:"worker_id" validate:"required"`
	Day         int    `json:"day" yaml:"day" validate:"gte=0,lte=6"`
	ShiftTypeID uint   `json:"shift_type_id" yaml:"shift_type_id" validate:"required"`
}

// ShiftSlot is one (day, shift type) unit of coverage
type ShiftSlot struct {
	Day         int    `json:"day"`
	ShiftTypeID uint   `json:"shift_type_id"`
	ShiftName   string `json:"shift_name"`
}

// SlotAssignment pairs a slot with the worker covering it. WorkerID is nil when unfilled.
type SlotAssignment struct {
	Slot     ShiftSlot `json:"slot"`
	WorkerID *string   `json:"worker_id"`
}

// Filled reports whether a worker was placed in the slot
func (a SlotAssignment) Filled() bool {
	return a.WorkerID != nil
}

// Status tells whether every slot of a solve was filled
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
)

// ConflictReason represents why a slot could not be filled
type ConflictReason struct {
	Day         int      `json:"day"`
	ShiftTypeID uint     `json:"shift_type_id"`
	Reasons     []string `json:"reasons"`
}

// SolveResult is the output of one solver run
type SolveResult struct {
	Week          WeekSelector     `json:"week"`
	Assignments   []SlotAssignment `json:"assignments"`
	Status        Status           `json:"status"`
	FilledCount   int              `json:"filled_count"`
	TotalSlots    int              `json:"total_slots"`
	Conflicts     []ConflictReason `json:"conflicts,omitempty"`
	FairnessScore float64          `json:"fairness_score"`
	Loads         map[string]int   `json:"loads"` // worker ID -> shifts assigned
}

// UnfilledCount returns how many slots were left empty
func (r *SolveResult) UnfilledCount() int {
	return r.TotalSlots - r.FilledCount
}

// SolveInput is the body of the stateless solve and validate endpoints
type SolveInput struct {
	Workers     []Worker                   `json:"workers" yaml:"workers" validate:"dive"`
	ShiftTypes  []ShiftType                `json:"shift_types" yaml:"shift_types" validate:"dive"`
	Constraints []UnavailabilityConstraint `json:"constraints" yaml:"constraints" validate:"dive"`
	Week        WeekSelector               `json:"week" yaml:"week"`
}
