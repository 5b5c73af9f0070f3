package handlers

import (
	"net/http"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/stats"
	"github.com/gin-gonic/gin"
)

// GetStats returns day, month and year totals relative to now.
// ?now=RFC3339 overrides the reference instant; ?period=day|month|year
// narrows the response to one bucket.
func (h *Handler) GetStats(c *gin.Context) {
	now := h.now()
	if raw := c.Query("now"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "now must be an RFC3339 timestamp"})
			return
		}
		now = t.In(h.zone())
	}

	shifts, err := h.Store.GetAll(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}

	if raw := c.Query("period"); raw != "" {
		period, err := stats.ParsePeriod(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"period": period,
			"stats":  stats.Aggregate(shifts, now, period),
		})
		return
	}

	c.JSON(http.StatusOK, stats.Summarize(shifts, now))
}
