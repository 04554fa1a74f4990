package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/roster-scheduler-go/pkg/auth"
	"github.com/arnavshah/roster-scheduler-go/pkg/database"
	"github.com/arnavshah/roster-scheduler-go/pkg/orchestrator"
	"github.com/arnavshah/roster-scheduler-go/pkg/scheduler"
	"github.com/arnavshah/roster-scheduler-go/pkg/store"
)

// DefaultRateLimit is the daily request budget of a new API key
const DefaultRateLimit = 10000

var validate = validator.New()

// Handler contains dependencies for the route handlers
type Handler struct {
	DB        *gorm.DB
	Store     *store.Store
	Generator *orchestrator.Generator
	Auth      *auth.Authenticator
	Logger    *zap.Logger
	Now       func() time.Time
}

// New creates a handler set on an opened database
func New(db *gorm.DB, st *store.Store, authenticator *auth.Authenticator, generator *orchestrator.Generator, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Store:     st,
		Generator: generator,
		Auth:      authenticator,
		Logger:    logger,
		Now:       time.Now,
	}
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key for scheduler routes and enforces the
// key's daily request budget
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		clientID, err := h.Auth.VerifyAPIKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		// Keys minted offline get their record on first use
		var apiKey database.APIKey
		err = h.DB.Where(database.APIKey{Key: key}).
			Attrs(database.APIKey{Name: clientID, KeyPreview: auth.KeyPreview(key), RateLimit: DefaultRateLimit}).
			FirstOrCreate(&apiKey).Error
		if err != nil {
			h.Logger.Error("Failed to load api key", zap.String("client_id", clientID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load API key"})
			return
		}
		if apiKey.Revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key revoked"})
			return
		}

		if h.budgetExceeded(&apiKey) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily rate limit exceeded"})
			return
		}

		if err := h.DB.Model(&apiKey).Update("last_used", h.Now()).Error; err != nil {
			h.Logger.Warn("Failed to update key last use", zap.Uint("key_id", apiKey.ID), zap.Error(err))
		}

		c.Set("apiKey", &apiKey)
		c.Set("clientID", clientID)
		c.Next()
	}
}

// budgetExceeded reports whether the key has used up today's requests. A failed
// lookup is logged and lets the request through.
func (h *Handler) budgetExceeded(apiKey *database.APIKey) bool {
	used, err := h.requestsToday(apiKey.ID)
	if err != nil {
		h.Logger.Error("Failed to check rate limit", zap.Uint("key_id", apiKey.ID), zap.Error(err))
		return false
	}
	return used >= apiKey.RateLimit
}

func (h *Handler) requestsToday(keyID uint) (int, error) {
	var usage database.APIUsage
	err := h.DB.Where("key_id = ? AND date = ?", keyID, h.today()).Limit(1).Find(&usage).Error
	return usage.RequestCount, err
}

func (h *Handler) today() string {
	return h.Now().Format("2006-01-02")
}

// RecordUsage records API usage in the database using a single upsert
func (h *Handler) RecordUsage(c *gin.Context, slotCount, workerCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_slots":   gorm.Expr("total_slots + ?", slotCount),
			"total_workers": gorm.Expr("total_workers + ?", workerCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:        apiKey.ID,
		Date:         h.today(),
		RequestCount: 1,
		TotalSlots:   slotCount,
		TotalWorkers: workerCount,
	}).Error
	if err != nil {
		h.Logger.Warn("Failed to record usage", zap.Uint("key_id", apiKey.ID), zap.Error(err))
	}
}

// respondError maps domain errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, scheduler.ErrInvalidWeek):
		status = http.StatusBadRequest
	case errors.Is(err, scheduler.ErrInvalidCatalog), errors.Is(err, scheduler.ErrDuplicateWorker):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// company parses the :company_id parameter and checks the company exists
func (h *Handler) company(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("company_id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return 0, false
	}
	if _, err := h.Store.GetCompany(c.Request.Context(), uint(id)); err != nil {
		h.respondError(c, err)
		return 0, false
	}
	return uint(id), true
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + strings.ReplaceAll(name, "_", " ")})
		return 0, false
	}
	return uint(id), true
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.CreateToken(user.Username)
	if err != nil {
		h.Logger.Error("Could not create token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new HMAC API key. The key itself is only returned here.
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		RateLimit int    `json:"rate_limit" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = DefaultRateLimit
	}

	key := h.Auth.GenerateAPIKey(req.Name)

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: auth.KeyPreview(key),
		RateLimit:  req.RateLimit,
	}
	err := h.DB.Create(&apiKey).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"error": "A key with this name already exists"})
		return
	}
	if err != nil {
		h.Logger.Error("Could not create key record", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	h.Logger.Info("API key created", zap.String("name", req.Name), zap.String("by", c.GetString("username")))
	c.JSON(http.StatusCreated, gin.H{
		"id":   apiKey.ID,
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.Order("id").Find(&keys).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey marks an API key as revoked. The record is kept so the signed key
// cannot be re-registered on its next use.
func (h *Handler) RevokeKey(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	res := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("revoked", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not revoke key"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	res := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}
