package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/arnavshah/roster-scheduler-go/pkg/auth"
	"github.com/arnavshah/roster-scheduler-go/pkg/database"
	"github.com/arnavshah/roster-scheduler-go/pkg/models"
	"github.com/arnavshah/roster-scheduler-go/pkg/scheduler"
	"github.com/arnavshah/roster-scheduler-go/pkg/store"
)

func TestCheckSolveInput(t *testing.T) {
	valid := &models.SolveInput{
		Week:       models.WeekCurrent,
		Workers:    []models.Worker{{ID: "alice"}, {ID: "bob", MaxShifts: 2}},
		ShiftTypes: []models.ShiftType{{ID: 1, Name: "Morning"}},
		Constraints: []models.UnavailabilityConstraint{
			{WorkerID: "alice", Day: 6, ShiftTypeID: 1},
		},
	}
	assert.Empty(t, checkSolveInput(valid))

	tests := []struct {
		name  string
		input models.SolveInput
		want  string
	}{
		{
			name:  "empty catalog",
			input: models.SolveInput{Week: models.WeekNext},
			want:  "at least one shift type is required",
		},
		{
			name: "duplicate shift type",
			input: models.SolveInput{
				Week:       models.WeekNext,
				ShiftTypes: []models.ShiftType{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}},
			},
			want: "duplicate shift type ID: 1",
		},
		{
			name: "duplicate worker",
			input: models.SolveInput{
				Week:       models.WeekNext,
				Workers:    []models.Worker{{ID: "x"}, {ID: "x"}},
				ShiftTypes: []models.ShiftType{{ID: 1, Name: "A"}},
			},
			want: "duplicate worker ID: x",
		},
		{
			name: "unknown week",
			input: models.SolveInput{
				Week:       "fortnight",
				ShiftTypes: []models.ShiftType{{ID: 1, Name: "A"}},
			},
			want: `week must be "current" or "next"`,
		},
		{
			name: "day out of range",
			input: models.SolveInput{
				Week:        models.WeekNext,
				ShiftTypes:  []models.ShiftType{{ID: 1, Name: "A"}},
				Constraints: []models.UnavailabilityConstraint{{WorkerID: "x", Day: 7, ShiftTypeID: 1}},
			},
			want: "SolveInput.Constraints[0].Day failed on lte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, checkSolveInput(&tt.input), tt.want)
		})
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{Logger: zap.NewNop()}

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("company 3: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("worker: %w", store.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: %q", scheduler.ErrInvalidWeek, "x"), http.StatusBadRequest},
		{fmt.Errorf("failed to solve schedule: %w", scheduler.ErrInvalidCatalog), http.StatusUnprocessableEntity},
		{scheduler.ErrDuplicateWorker, http.StatusUnprocessableEntity},
		{fmt.Errorf("failed to load workers: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.respondError(c, tt.err)
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), `"error"`)
	}
}

func TestAPIKeyMiddleware_LogsStoreFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.Open("", filepath.Join(t.TempDir(), "handlers_test.db"))
	require.NoError(t, err)

	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:fail_usage", func(tx *gorm.DB) {
		if tx.Statement.Table == "api_usages" {
			tx.AddError(errors.New("usage table unavailable"))
		}
	}))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_last_used", func(tx *gorm.DB) {
		if tx.Statement.Table == "api_keys" {
			tx.AddError(errors.New("database is read only"))
		}
	}))

	core, logs := observer.New(zapcore.DebugLevel)
	authn := auth.New("jwt-secret", "master-secret")
	h := &Handler{DB: db, Auth: authn, Logger: zap.New(core), Now: time.Now}

	r := gin.New()
	r.GET("/ping", h.APIKeyMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+authn.GenerateAPIKey("ops"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	limitLogs := logs.FilterMessage("Failed to check rate limit").All()
	require.Len(t, limitLogs, 1)
	assert.Equal(t, zapcore.ErrorLevel, limitLogs[0].Level)
	assert.Equal(t, "usage table unavailable", limitLogs[0].ContextMap()["error"])

	lastUsedLogs := logs.FilterMessage("Failed to update key last use").All()
	require.Len(t, lastUsedLogs, 1)
	assert.Equal(t, zapcore.WarnLevel, lastUsedLogs[0].Level)
	assert.Equal(t, "database is read only", lastUsedLogs[0].ContextMap()["error"])
}
