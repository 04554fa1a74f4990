package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arnavshah/roster-scheduler-go/pkg/database"
)

const (
	defaultUsageDays = 30
	maxUsageDays     = 365
)

type usageTotals struct {
	Requests int64 `json:"requests"`
	Slots    int64 `json:"slots"`
	Workers  int64 `json:"workers"`
}

type usageToday struct {
	Date      string `json:"date"`
	Requests  int    `json:"requests"`
	Remaining int    `json:"remaining"`
}

// usageReport is the usage of one key over the last Days calendar days, today included
type usageReport struct {
	KeyID     uint                `json:"key_id"`
	KeyName   string              `json:"key_name"`
	RateLimit int                 `json:"rate_limit"`
	Days      int                 `json:"days"`
	Since     string              `json:"since"`
	History   []database.APIUsage `json:"usage_history"`
	Totals    usageTotals         `json:"totals"`
	Today     usageToday          `json:"today"`
}

// usageDays reads the ?days= window, answering 400 itself when it is malformed
func usageDays(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return defaultUsageDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxUsageDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and " + strconv.Itoa(maxUsageDays)})
		return 0, false
	}
	return days, true
}

func (h *Handler) buildUsageReport(apiKey *database.APIKey, days int) (*usageReport, error) {
	now := h.Now()
	report := &usageReport{
		KeyID:     apiKey.ID,
		KeyName:   apiKey.Name,
		RateLimit: apiKey.RateLimit,
		Days:      days,
		Since:     now.AddDate(0, 0, 1-days).Format("2006-01-02"),
		Today:     usageToday{Date: now.Format("2006-01-02")},
	}

	window := h.DB.Model(&database.APIUsage{}).
		Where("key_id = ? AND date >= ?", apiKey.ID, report.Since).
		Session(&gorm.Session{})

	if err := window.Order("date desc").Find(&report.History).Error; err != nil {
		return nil, err
	}
	err := window.
		Select("CAST(COALESCE(SUM(request_count), 0) AS BIGINT) AS requests, " +
			"CAST(COALESCE(SUM(total_slots), 0) AS BIGINT) AS slots, " +
			"CAST(COALESCE(SUM(total_workers), 0) AS BIGINT) AS workers").
		Scan(&report.Totals).Error
	if err != nil {
		return nil, err
	}

	for _, u := range report.History {
		if u.Date == report.Today.Date {
			report.Today.Requests = u.RequestCount
		}
	}
	if remaining := apiKey.RateLimit - report.Today.Requests; remaining > 0 {
		report.Today.Remaining = remaining
	}
	return report, nil
}

// GetMyUsage returns usage stats and today's remaining budget for the calling API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	days, ok := usageDays(c)
	if !ok {
		return
	}
	raw, _ := c.Get("apiKey")
	apiKey, ok := raw.(*database.APIKey)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}

	report, err := h.buildUsageReport(apiKey, days)
	if err != nil {
		h.Logger.Error("Could not fetch usage", zap.Uint("key_id", apiKey.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetUsage returns the same usage report for any key, by its ID
func (h *Handler) GetUsage(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	days, ok := usageDays(c)
	if !ok {
		return
	}

	var apiKey database.APIKey
	if err := h.DB.First(&apiKey, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	report, err := h.buildUsageReport(&apiKey, days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
