package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/arnavshah/shiftledger-api/pkg/schedule"
	"github.com/arnavshah/shiftledger-api/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// shiftInput is the editable part of a shift; the id comes from the path or the server
type shiftInput struct {
	WorkName   string        `json:"workName"`
	Location   string        `json:"location"`
	HourlyRate float64       `json:"hourlyRate"`
	StartTime  time.Time     `json:"startTime" binding:"required"`
	EndTime    time.Time     `json:"endTime" binding:"required"`
	Status     models.Status `json:"status"`
	Notes      string        `json:"notes"`
}

func (in shiftInput) toShift(id string) models.Shift {
	s := models.Shift{
		ID:         id,
		WorkName:   in.WorkName,
		Location:   in.Location,
		HourlyRate: in.HourlyRate,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Status:     in.Status,
		Notes:      in.Notes,
	}
	if s.WorkName == "" {
		s.WorkName = models.DefaultWorkName
	}
	if s.Status == "" {
		s.Status = models.StatusUpcoming
	}
	return s
}

// ListShifts returns every shift, or the day schedule when ?date=YYYY-MM-DD is given
func (h *Handler) ListShifts(c *gin.Context) {
	shifts, err := h.Store.GetAll(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}

	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, h.zone())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		shifts = schedule.ForDay(shifts, day)
	}

	c.JSON(http.StatusOK, gin.H{"shifts": shifts})
}

// UpcomingShifts returns the next non-cancelled shifts
func (h *Handler) UpcomingShifts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	shifts, err := h.Store.GetAll(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": schedule.Upcoming(shifts, h.now(), limit)})
}

// GetShift returns one shift by id
func (h *Handler) GetShift(c *gin.Context) {
	shift, err := h.Store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// CreateShift stores a manually entered shift under a new id
func (h *Handler) CreateShift(c *gin.Context) {
	var in shiftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shift := in.toShift(uuid.NewString())
	if err := shift.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.Upsert(c.Request.Context(), shift); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// ReplaceShift stores the body as the full new state of the shift
func (h *Handler) ReplaceShift(c *gin.Context) {
	var body struct {
		ID string `json:"id"`
		shiftInput
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if body.ID != "" && body.ID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id in body does not match path"})
		return
	}

	shift := body.toShift(id)
	if err := shift.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.Upsert(c.Request.Context(), shift); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// CancelShift moves a shift to CANCELLED
func (h *Handler) CancelShift(c *gin.Context) {
	shift, err := schedule.Cancel(c.Request.Context(), h.Store, c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shift not found"})
		return
	}
	h.Log.Error("store request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not access shifts"})
}
