package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

// CreateCompany registers a company
func (h *Handler) CreateCompany(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company, err := h.Store.CreateCompany(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

// ListCompanies returns every company
func (h *Handler) ListCompanies(c *gin.Context) {
	companies, err := h.Store.ListCompanies(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// ListWorkers returns the company's roster
func (h *Handler) ListWorkers(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}

	workers, err := h.Store.ListWorkers(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": workers})
}

// AddWorker adds a worker to the company's roster
func (h *Handler) AddWorker(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}

	var worker models.Worker
	if err := c.ShouldBindJSON(&worker); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(&worker); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if worker.Name == "" {
		worker.Name = worker.ID
	}

	if err := h.Store.AddWorker(c.Request.Context(), companyID, worker); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Worker added", "worker": worker})
}

// DeleteWorker removes a worker and their constraints
func (h *Handler) DeleteWorker(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}

	if err := h.Store.DeleteWorker(c.Request.Context(), companyID, c.Param("worker_id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Worker deleted"})
}

// ListShiftTypes returns the company's shift catalog in order
func (h *Handler) ListShiftTypes(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}

	shiftTypes, err := h.Store.ListShiftTypes(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shift_types": shiftTypes})
}

// AddShiftType adds a shift type. Without a position it goes to the end of the catalog.
func (h *Handler) AddShiftType(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name" binding:"required"`
		Position *int   `json:"position" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		existing, err := h.Store.ListShiftTypes(c.Request.Context(), companyID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if n := len(existing); n > 0 {
			position = existing[n-1].Position + 1
		}
	}

	shiftType, err := h.Store.AddShiftType(c.Request.Context(), companyID, req.Name, position)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shiftType)
}

// SeedDefaultShiftTypes fills an empty catalog with Morning, Noon, Evening and Night
func (h *Handler) SeedDefaultShiftTypes(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}

	shiftTypes, err := h.Store.SeedDefaultShiftTypes(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shift_types": shiftTypes})
}

// DeleteShiftType removes a shift type and the constraints that reference it
func (h *Handler) DeleteShiftType(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}
	shiftTypeID, ok := uintParam(c, "shift_type_id")
	if !ok {
		return
	}

	if err := h.Store.DeleteShiftType(c.Request.Context(), companyID, shiftTypeID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shift type deleted"})
}

// ListConstraints returns every stored unavailability of the company
func (h *Handler) ListConstraints(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}

	constraints, err := h.Store.ListConstraintRecords(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"constraints": constraints})
}

type unavailableSlot struct {
	Day         int  `json:"day" binding:"gte=0,lte=6"`
	ShiftTypeID uint `json:"shift_type_id" binding:"required"`
}

// SetWorkerConstraints replaces the worker's whole set of unavailable slots
func (h *Handler) SetWorkerConstraints(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}
	workerID := c.Param("worker_id")

	var req struct {
		Unavailable []unavailableSlot `json:"unavailable" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shiftTypes, err := h.Store.ListShiftTypes(c.Request.Context(), companyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	known := make(map[uint]bool, len(shiftTypes))
	for _, st := range shiftTypes {
		known[st.ID] = true
	}

	seen := make(map[unavailableSlot]bool, len(req.Unavailable))
	constraints := make([]models.UnavailabilityConstraint, 0, len(req.Unavailable))
	for _, u := range req.Unavailable {
		if !known[u.ShiftTypeID] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown shift type %d", u.ShiftTypeID)})
			return
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		constraints = append(constraints, models.UnavailabilityConstraint{
			WorkerID:    workerID,
			Day:         u.Day,
			ShiftTypeID: u.ShiftTypeID,
		})
	}

	if err := h.Store.ReplaceWorkerConstraints(c.Request.Context(), companyID, workerID, constraints); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Constraints saved", "count": len(constraints)})
}

// DeleteConstraint removes one stored unavailability
func (h *Handler) DeleteConstraint(c *gin.Context) {
	companyID, ok := h.company(c)
	if !ok {
		return
	}
	constraintID, ok := uintParam(c, "constraint_id")
	if !ok {
		return
	}

	if err := h.Store.DeleteConstraint(c.Request.Context(), companyID, constraintID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Constraint deleted"})
}
