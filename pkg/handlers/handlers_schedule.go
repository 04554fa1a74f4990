package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/roster-scheduler-go/pkg/database"
	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

// scheduleRow is one slot of a stored schedule as shown to users
type scheduleRow struct {
	Day         int     `json:"day"`
	DayName     string  `json:"day_name"`
	Date        string  `json:"date"`
	ShiftTypeID uint    `json:"shift_type_id"`
	ShiftName   string  `json:"shift_name"`
	WorkerID    *string `json:"worker_id"`
	WorkerName  string  `json:"worker_name"`
}

func weekParam(c *gin.Context) (models.WeekSelector, bool) {
	week := models.WeekSelector(c.DefaultQuery("week", string(models.WeekCurrent)))
	if !week.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("week must be %q or %q", models.WeekCurrent, models.WeekNext)})
		return "", false
	}
	return week, true
}

// GenerateSchedule solves and stores the schedule of a company's week
func (h *Handler) GenerateSchedule(c *gin.Context) {
	companyID, ok := uintParam(c, "company_id")
	if !ok {
		return
	}
	week, ok := weekParam(c)
	if !ok {
		return
	}

	result, err := h.Generator.Generate(c.Request.Context(), companyID, week)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.RecordUsage(c, result.TotalSlots, len(result.Loads))
	c.JSON(http.StatusCreated, result)
}

// scheduleRows loads the stored schedule and joins worker names and calendar dates
func (h *Handler) scheduleRows(c *gin.Context) ([]database.ScheduleEntry, []scheduleRow, models.WeekSelector, bool) {
	companyID, ok := h.company(c)
	if !ok {
		return nil, nil, "", false
	}
	week, ok := weekParam(c)
	if !ok {
		return nil, nil, "", false
	}

	entries, err := h.Store.GetSchedule(c.Request.Context(), companyID, week)
	if err != nil {
		h.respondError(c, err)
		return nil, nil, "", false
	}
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no schedule generated for the %s week", week)})
		return nil, nil, "", false
	}

	workers, err := h.Store.ListWorkers(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return nil, nil, "", false
	}
	names := make(map[string]string, len(workers))
	for _, w := range workers {
		names[w.ID] = w.Name
	}

	dates := models.WeekDates(h.Now(), week)
	rows := make([]scheduleRow, len(entries))
	for i, e := range entries {
		row := scheduleRow{
			Day:         e.Day,
			ShiftTypeID: e.ShiftTypeID,
			ShiftName:   e.ShiftName,
			WorkerID:    e.WorkerID,
		}
		if e.Day >= 0 && e.Day < len(dates) {
			row.DayName = dates[e.Day].Weekday().String()
			row.Date = dates[e.Day].Format(time.DateOnly)
		}
		if e.WorkerID != nil {
			row.WorkerName = names[*e.WorkerID]
		}
		rows[i] = row
	}
	return entries, rows, week, true
}

// GetSchedule returns the stored schedule of a company's week
func (h *Handler) GetSchedule(c *gin.Context) {
	entries, rows, week, ok := h.scheduleRows(c)
	if !ok {
		return
	}

	filled := 0
	for _, r := range rows {
		if r.WorkerID != nil {
			filled++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"week":         week,
		"run_id":       entries[0].RunID,
		"generated_at": entries[0].CreatedAt,
		"filled_count": filled,
		"total_slots":  len(rows),
		"entries":      rows,
	})
}

// ExportScheduleCSV downloads the stored schedule of a company's week as CSV
func (h *Handler) ExportScheduleCSV(c *gin.Context) {
	_, rows, week, ok := h.scheduleRows(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"day", "date", "shift", "worker_id", "worker_name"})
	for _, r := range rows {
		workerID := ""
		if r.WorkerID != nil {
			workerID = *r.WorkerID
		}
		_ = writer.Write([]string{r.DayName, r.Date, r.ShiftName, workerID, r.WorkerName})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("schedule_company_%s_week_%s.csv", c.Param("company_id"), week)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// WeekDates returns the calendar dates of the selected week, Sunday first
func (h *Handler) WeekDates(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}

	dates := models.WeekDates(h.Now(), week)
	days := make([]gin.H, len(dates))
	for i, d := range dates {
		days[i] = gin.H{
			"day":   i,
			"name":  d.Weekday().String(),
			"label": d.Format("02/01"),
			"date":  d.Format(time.DateOnly),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"week":  week,
		"start": dates[0].Format(time.DateOnly),
		"days":  days,
	})
}
