package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

var validate = validator.New()

// loadSolveInput reads and validates a YAML solve input. A missing week means the current one.
func loadSolveInput(path string) (*models.SolveInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var input models.SolveInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %w", err)
	}
	if input.Week == "" {
		input.Week = models.WeekCurrent
	}
	if err := validate.Struct(&input); err != nil {
		return nil, fmt.Errorf("invalid input file: %w", err)
	}
	return &input, nil
}

// printResult writes the schedule as a day by shift table followed by per-worker loads
func printResult(w io.Writer, input *models.SolveInput, result *models.SolveResult) error {
	names := make(map[string]string, len(input.Workers))
	for _, wk := range input.Workers {
		names[wk.ID] = wk.Name
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tSHIFT\tWORKER")
	for _, a := range result.Assignments {
		worker := "-"
		if a.WorkerID != nil {
			worker = *a.WorkerID
			if name := names[worker]; name != "" && name != worker {
				worker = fmt.Sprintf("%s (%s)", name, worker)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", time.Weekday(a.Slot.Day), a.Slot.ShiftName, worker)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nStatus: %s (%d/%d slots filled, fairness %.1f)\n",
		result.Status, result.FilledCount, result.TotalSlots, result.FairnessScore)

	fmt.Fprintln(w, "\nLoads:")
	for _, wk := range input.Workers {
		fmt.Fprintf(w, "  %s: %d\n", wk.ID, result.Loads[wk.ID])
	}

	for _, c := range result.Conflicts {
		fmt.Fprintf(w, "Unfilled %s shift type %d: %v\n", time.Weekday(c.Day), c.ShiftTypeID, c.Reasons)
	}
	return nil
}
