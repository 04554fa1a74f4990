package scheduler

import (
	"errors"
	"fmt"

	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

var (
	// ErrInvalidCatalog is returned when the shift catalog cannot produce a slot grid
	ErrInvalidCatalog = errors.New("invalid shift catalog")
	// ErrInvalidWeek is returned for a week selector other than current or next
	ErrInvalidWeek = errors.New("invalid week selector")
)

// BuildSlotGrid expands a catalog into the week's slots, day by day and in catalog
// order within a day. The week selector does not change the grid; day indices are
// mapped to calendar dates by the caller.
func BuildSlotGrid(catalog []models.ShiftType, week models.WeekSelector) ([]models.ShiftSlot, error) {
	if !week.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeek, week)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: no shift types", ErrInvalidCatalog)
	}

	seen := make(map[uint]bool, len(catalog))
	for _, st := range catalog {
		if seen[st.ID] {
			return nil, fmt.Errorf("%w: duplicate shift type id %d", ErrInvalidCatalog, st.ID)
		}
		seen[st.ID] = true
	}

	slots := make([]models.ShiftSlot, 0, models.DaysPerWeek*len(catalog))
	for day := 0; day < models.DaysPerWeek; day++ {
		for _, st := range catalog {
			slots = append(slots, models.ShiftSlot{
				Day:         day,
				ShiftTypeID: st.ID,
				ShiftName:   st.Name,
			})
		}
	}
	return slots, nil
}
