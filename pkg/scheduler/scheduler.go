package scheduler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

// ErrDuplicateWorker is returned when two roster entries share an ID
var ErrDuplicateWorker = errors.New("duplicate worker id")

type slotKey struct {
	day         int
	shiftTypeID uint
}

// solver holds the working state of one solve. It is built by Solve and
// discarded when Solve returns.
type solver struct {
	workers     []models.Worker // sorted by ID
	unavailable map[slotKey]map[string]bool
	slots       []models.ShiftSlot
	eligible    [][]int // slot index -> worker indices, ascending ID
	loads       *loadTracker
	usedOnDay   [models.DaysPerWeek][]bool
	conflicts   []models.ConflictReason
}

// Solve assigns at most one worker to every slot of the week built from shiftTypes.
//
// Slots are visited by day and then catalog order. Each slot goes to the eligible
// worker with the fewest shifts so far, ties broken by the smallest ID. A worker is
// eligible when no constraint excludes them from the slot, they have no other slot
// that day and they are below their weekly limit. Slots without a candidate stay
// empty and the result is reported as partial. Identical inputs always produce the
// identical result.
func Solve(workers []models.Worker, shiftTypes []models.ShiftType, constraints []models.UnavailabilityConstraint, week models.WeekSelector) (*models.SolveResult, error) {
	slots, err := BuildSlotGrid(shiftTypes, week)
	if err != nil {
		return nil, err
	}

	s, err := newSolver(workers, slots, constraints)
	if err != nil {
		return nil, err
	}

	s.buildCompatibility()
	assignments := s.assign()

	result := &models.SolveResult{
		Week:          week,
		Assignments:   assignments,
		TotalSlots:    len(slots),
		Conflicts:     s.conflicts,
		FairnessScore: s.loads.fairnessScore(),
		Loads:         make(map[string]int, len(s.workers)),
	}
	for i, w := range s.workers {
		result.Loads[w.ID] = s.loads.count(i)
	}
	for _, a := range assignments {
		if a.Filled() {
			result.FilledCount++
		}
	}

	result.Status = models.StatusComplete
	if result.FilledCount < result.TotalSlots {
		result.Status = models.StatusPartial
	}
	return result, nil
}

func newSolver(workers []models.Worker, slots []models.ShiftSlot, constraints []models.UnavailabilityConstraint) (*solver, error) {
	sorted := make([]models.Worker, len(workers))
	copy(sorted, workers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID == sorted[i-1].ID {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWorker, sorted[i].ID)
		}
	}

	unavailable := make(map[slotKey]map[string]bool)
	for _, c := range constraints {
		key := slotKey{day: c.Day, shiftTypeID: c.ShiftTypeID}
		if unavailable[key] == nil {
			unavailable[key] = make(map[string]bool)
		}
		unavailable[key][c.WorkerID] = true
	}

	s := &solver{
		workers:     sorted,
		unavailable: unavailable,
		slots:       slots,
		loads:       newLoadTracker(len(sorted)),
	}
	for day := range s.usedOnDay {
		s.usedOnDay[day] = make([]bool, len(sorted))
	}
	return s, nil
}

// allows reports whether no constraint excludes the worker from the slot
func (s *solver) allows(slot models.ShiftSlot, worker models.Worker) bool {
	return !s.unavailable[slotKey{day: slot.Day, shiftTypeID: slot.ShiftTypeID}][worker.ID]
}

// buildCompatibility computes, per slot, the workers no constraint excludes
func (s *solver) buildCompatibility() {
	s.eligible = make([][]int, len(s.slots))
	for i, slot := range s.slots {
		for w, worker := range s.workers {
			if s.allows(slot, worker) {
				s.eligible[i] = append(s.eligible[i], w)
			}
		}
	}
}

func (s *solver) atLimit(w int) bool {
	limit := s.workers[w].MaxShifts
	return limit > 0 && s.loads.count(w) >= limit
}

func (s *solver) assign() []models.SlotAssignment {
	assignments := make([]models.SlotAssignment, len(s.slots))

	for i, slot := range s.slots {
		assignments[i] = models.SlotAssignment{Slot: slot}
		used := s.usedOnDay[slot.Day]

		best := -1
		sameDayCount := 0
		limitCount := 0

		// eligible is in ascending ID order, so a strict comparison keeps the
		// smallest ID among equally loaded workers
		for _, w := range s.eligible[i] {
			if used[w] {
				sameDayCount++
				continue
			}
			if s.atLimit(w) {
				limitCount++
				continue
			}
			if best == -1 || s.loads.count(w) < s.loads.count(best) {
				best = w
			}
		}

		if best == -1 {
			s.recordConflict(slot, len(s.workers)-len(s.eligible[i]), sameDayCount, limitCount)
			continue
		}

		id := s.workers[best].ID
		assignments[i].WorkerID = &id
		used[best] = true
		s.loads.add(best)
	}

	return assignments
}

func (s *solver) recordConflict(slot models.ShiftSlot, unavailableCount, sameDayCount, limitCount int) {
	var reasons []string
	if unavailableCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d workers were unavailable", unavailableCount))
	}
	if sameDayCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d workers already had a shift that day", sameDayCount))
	}
	if limitCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d workers were at their weekly limit", limitCount))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no workers on the roster")
	}

	s.conflicts = append(s.conflicts, models.ConflictReason{
		Day:         slot.Day,
		ShiftTypeID: slot.ShiftTypeID,
		Reasons:     reasons,
	})
}
