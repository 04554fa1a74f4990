package scheduler

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

func catalog(names ...string) []models.ShiftType {
	out := make([]models.ShiftType, len(names))
	for i, n := range names {
		out[i] = models.ShiftType{ID: uint(i + 1), Name: n, Position: i}
	}
	return out
}

func workersNamed(ids ...string) []models.Worker {
	out := make([]models.Worker, len(ids))
	for i, id := range ids {
		out[i] = models.Worker{ID: id, Name: "Worker " + id}
	}
	return out
}

func assignedOn(result *models.SolveResult, day int) map[uint]string {
	out := make(map[uint]string)
	for _, a := range result.Assignments {
		if a.Slot.Day == day && a.WorkerID != nil {
			out[a.Slot.ShiftTypeID] = *a.WorkerID
		}
	}
	return out
}

func TestSolve_EmptyRoster(t *testing.T) {
	result, err := Solve(nil, []models.ShiftType{{ID: 1, Name: "Morning"}}, nil, models.WeekCurrent)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPartial, result.Status)
	assert.Equal(t, 0, result.FilledCount)
	assert.Equal(t, 7, result.TotalSlots)
	require.Len(t, result.Assignments, 7)
	for day, a := range result.Assignments {
		assert.Equal(t, day, a.Slot.Day)
		assert.Nil(t, a.WorkerID)
	}
	require.Len(t, result.Conflicts, 7)
	assert.Equal(t, []string{"no workers on the roster"}, result.Conflicts[0].Reasons)
}

func TestSolve_FairnessAcrossTwoWorkers(t *testing.T) {
	result, err := Solve(workersNamed("b", "a"), catalog("Morning", "Evening"), nil, models.WeekCurrent)
	require.NoError(t, err)

	day0 := assignedOn(result, 0)
	assert.Equal(t, "a", day0[1], "equal loads go to the smallest id")
	assert.Equal(t, "b", day0[2])

	assert.Equal(t, models.StatusComplete, result.Status)
	assert.Equal(t, 14, result.FilledCount)
	assert.Equal(t, map[string]int{"a": 7, "b": 7}, result.Loads)
	assert.InDelta(t, 100.0, result.FairnessScore, 0.001)
}

func TestSolve_SingleWorkerTwoShiftsPerDay(t *testing.T) {
	result, err := Solve(workersNamed("solo"), catalog("Morning", "Evening"), nil, models.WeekNext)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPartial, result.Status)
	assert.Equal(t, 14, result.TotalSlots)
	assert.Equal(t, result.TotalSlots-7, result.FilledCount)

	for day := 0; day < models.DaysPerWeek; day++ {
		filled := assignedOn(result, day)
		assert.Len(t, filled, 1, "day %d", day)
		assert.Equal(t, "solo", filled[1])
	}
	require.Len(t, result.Conflicts, 7)
	assert.Equal(t, []string{"1 workers already had a shift that day"}, result.Conflicts[0].Reasons)
}

func TestSolve_RespectsUnavailability(t *testing.T) {
	constraints := []models.UnavailabilityConstraint{
		{WorkerID: "a", Day: 0, ShiftTypeID: 1},
	}

	result, err := Solve(workersNamed("a", "b"), catalog("Morning", "Evening"), constraints, models.WeekCurrent)
	require.NoError(t, err)

	day0 := assignedOn(result, 0)
	assert.Equal(t, "b", day0[1])
	assert.Equal(t, "a", day0[2])
	assert.Equal(t, models.StatusComplete, result.Status)
}

func TestSolve_UnfillableSlotReportsReason(t *testing.T) {
	constraints := []models.UnavailabilityConstraint{
		{WorkerID: "a", Day: 3, ShiftTypeID: 1},
	}

	result, err := Solve(workersNamed("a"), catalog("Morning"), constraints, models.WeekCurrent)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPartial, result.Status)
	assert.Equal(t, 6, result.FilledCount)
	assert.Nil(t, result.Assignments[3].WorkerID)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, 3, result.Conflicts[0].Day)
	assert.Equal(t, []string{"1 workers were unavailable"}, result.Conflicts[0].Reasons)
}

func TestSolve_BalancesLoadOverWeek(t *testing.T) {
	result, err := Solve(workersNamed("c", "a", "b"), catalog("Night"), nil, models.WeekCurrent)
	require.NoError(t, err)

	var order []string
	for _, a := range result.Assignments {
		require.NotNil(t, a.WorkerID)
		order = append(order, *a.WorkerID)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a"}, order)
	assert.Equal(t, map[string]int{"a": 3, "b": 2, "c": 2}, result.Loads)
	assert.Less(t, result.FairnessScore, 100.0)
}

func TestSolve_WeeklyLimit(t *testing.T) {
	workers := []models.Worker{
		{ID: "a", MaxShifts: 2},
		{ID: "b"},
	}

	result, err := Solve(workers, catalog("Morning"), nil, models.WeekCurrent)
	require.NoError(t, err)

	assert.Equal(t, models.StatusComplete, result.Status)
	assert.Equal(t, 2, result.Loads["a"])
	assert.Equal(t, 5, result.Loads["b"])
}

func TestSolve_CompleteWhenFeasible(t *testing.T) {
	result, err := Solve(workersNamed("x", "y", "z"), catalog("Morning", "Noon", "Evening"), nil, models.WeekCurrent)
	require.NoError(t, err)

	assert.Equal(t, models.StatusComplete, result.Status)
	assert.Equal(t, 21, result.FilledCount)
	assert.Equal(t, 21, result.TotalSlots)
	assert.Empty(t, result.Conflicts)
}

func TestSolve_InvalidCatalog(t *testing.T) {
	_, err := Solve(workersNamed("a"), nil, nil, models.WeekCurrent)
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	dup := []models.ShiftType{{ID: 1, Name: "Morning"}, {ID: 1, Name: "Again"}}
	_, err = Solve(workersNamed("a"), dup, nil, models.WeekCurrent)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestSolve_InvalidInputs(t *testing.T) {
	_, err := Solve(workersNamed("a", "a"), catalog("Morning"), nil, models.WeekCurrent)
	assert.ErrorIs(t, err, ErrDuplicateWorker)

	_, err = Solve(workersNamed("a"), catalog("Morning"), nil, models.WeekSelector("last"))
	assert.ErrorIs(t, err, ErrInvalidWeek)
}

func randomInput(r *rand.Rand) ([]models.Worker, []models.ShiftType, []models.UnavailabilityConstraint) {
	var workers []models.Worker
	for i := 0; i < 1+r.Intn(8); i++ {
		workers = append(workers, models.Worker{ID: fmt.Sprintf("w%02d", i), MaxShifts: r.Intn(4)})
	}
	shiftTypes := catalog("Morning", "Noon", "Evening", "Night")[:1+r.Intn(4)]

	var constraints []models.UnavailabilityConstraint
	for i := 0; i < r.Intn(30); i++ {
		constraints = append(constraints, models.UnavailabilityConstraint{
			WorkerID:    workers[r.Intn(len(workers))].ID,
			Day:         r.Intn(models.DaysPerWeek),
			ShiftTypeID: shiftTypes[r.Intn(len(shiftTypes))].ID,
		})
	}
	r.Shuffle(len(workers), func(i, j int) { workers[i], workers[j] = workers[j], workers[i] })
	return workers, shiftTypes, constraints
}

func TestSolve_Invariants(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		workers, shiftTypes, constraints := randomInput(r)

		result, err := Solve(workers, shiftTypes, constraints, models.WeekCurrent)
		require.NoError(t, err)

		banned := make(map[string]bool)
		for _, c := range constraints {
			banned[fmt.Sprintf("%s/%d/%d", c.WorkerID, c.Day, c.ShiftTypeID)] = true
		}
		limits := make(map[string]int)
		for _, w := range workers {
			limits[w.ID] = w.MaxShifts
		}

		require.Len(t, result.Assignments, models.DaysPerWeek*len(shiftTypes))
		seenSlot := make(map[string]bool)
		perDay := make(map[string]bool)
		counts := make(map[string]int)
		filled := 0
		for _, a := range result.Assignments {
			slotID := fmt.Sprintf("%d/%d", a.Slot.Day, a.Slot.ShiftTypeID)
			assert.False(t, seenSlot[slotID], "slot %s listed twice", slotID)
			seenSlot[slotID] = true

			if a.WorkerID == nil {
				continue
			}
			filled++
			w := *a.WorkerID
			assert.False(t, banned[fmt.Sprintf("%s/%s", w, slotID)], "constraint violated for %s on %s", w, slotID)

			dayKey := fmt.Sprintf("%s/%d", w, a.Slot.Day)
			assert.False(t, perDay[dayKey], "%s double booked on day %d", w, a.Slot.Day)
			perDay[dayKey] = true
			counts[w]++
		}

		for id, n := range counts {
			if limits[id] > 0 {
				assert.LessOrEqual(t, n, limits[id])
			}
			assert.Equal(t, n, result.Loads[id])
		}
		assert.Equal(t, filled, result.FilledCount)
		if filled == result.TotalSlots {
			assert.Equal(t, models.StatusComplete, result.Status)
		} else {
			assert.Equal(t, models.StatusPartial, result.Status)
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		workers, shiftTypes, constraints := randomInput(r)

		first, err := Solve(workers, shiftTypes, constraints, models.WeekNext)
		require.NoError(t, err)

		reordered := make([]models.Worker, len(workers))
		copy(reordered, workers)
		r.Shuffle(len(reordered), func(i, j int) { reordered[i], reordered[j] = reordered[j], reordered[i] })

		second, err := Solve(reordered, shiftTypes, constraints, models.WeekNext)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
}

func TestSolve_DoesNotMutateInput(t *testing.T) {
	workers := workersNamed("b", "a")
	_, err := Solve(workers, catalog("Morning"), nil, models.WeekCurrent)
	require.NoError(t, err)

	assert.Equal(t, "b", workers[0].ID)
	assert.Equal(t, "a", workers[1].ID)
}

func TestSolver_AllowsAndCompatibility(t *testing.T) {
	slots, err := BuildSlotGrid(catalog("Morning", "Night"), models.WeekCurrent)
	require.NoError(t, err)

	s, err := newSolver(workersNamed("b", "a"), slots, []models.UnavailabilityConstraint{
		{WorkerID: "a", Day: 0, ShiftTypeID: 2},
	})
	require.NoError(t, err)
	require.Equal(t, "a", s.workers[0].ID)

	sunNight := slots[1]
	require.Equal(t, 0, sunNight.Day)
	require.Equal(t, uint(2), sunNight.ShiftTypeID)
	assert.False(t, s.allows(sunNight, s.workers[0]))
	assert.True(t, s.allows(sunNight, s.workers[1]))
	assert.True(t, s.allows(slots[0], s.workers[0]))

	s.buildCompatibility()
	assert.Equal(t, []int{0, 1}, s.eligible[0])
	assert.Equal(t, []int{1}, s.eligible[1])
}
