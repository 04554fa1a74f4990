package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/arnavshah/roster-scheduler-go/pkg/models"
	"github.com/arnavshah/roster-scheduler-go/pkg/orchestrator"
	"github.com/arnavshah/roster-scheduler-go/pkg/scheduler"
)

// checkSolveInput lists every problem that would make a solve fail
func checkSolveInput(input *models.SolveInput) []string {
	var problems []string

	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if !input.Week.Valid() {
		problems = append(problems, fmt.Sprintf("week must be %q or %q", models.WeekCurrent, models.WeekNext))
	}

	if len(input.ShiftTypes) == 0 {
		problems = append(problems, "at least one shift type is required")
	}
	shiftIDs := make(map[uint]bool)
	for _, st := range input.ShiftTypes {
		if shiftIDs[st.ID] {
			problems = append(problems, fmt.Sprintf("duplicate shift type ID: %d", st.ID))
		}
		shiftIDs[st.ID] = true
	}

	workerIDs := make(map[string]bool)
	for _, w := range input.Workers {
		if workerIDs[w.ID] {
			problems = append(problems, "duplicate worker ID: "+w.ID)
		}
		workerIDs[w.ID] = true
	}

	return problems
}

func bindSolveInput(c *gin.Context) (*models.SolveInput, error) {
	var input models.SolveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return nil, err
	}
	if input.Week == "" {
		input.Week = models.WeekCurrent
	}
	return &input, nil
}

// ValidateInput reports whether a solve request would be accepted
func (h *Handler) ValidateInput(c *gin.Context) {
	input, err := bindSolveInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if problems := checkSolveInput(input); len(problems) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid":  false,
			"error":  problems[0],
			"errors": problems,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"worker_count":     len(input.Workers),
			"shift_type_count": len(input.ShiftTypes),
			"constraint_count": len(input.Constraints),
			"slot_count":       len(input.ShiftTypes) * models.DaysPerWeek,
		},
	})
}

// Solve runs the solver on the posted inputs without touching stored schedules
func (h *Handler) Solve(c *gin.Context) {
	input, err := bindSolveInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := scheduler.Solve(input.Workers, input.ShiftTypes, input.Constraints, input.Week)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.RecordUsage(c, result.TotalSlots, len(input.Workers))

	c.JSON(http.StatusOK, gin.H{
		"message": orchestrator.Message(result),
		"result":  result,
	})
}
