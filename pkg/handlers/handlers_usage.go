package handlers

import (
	"net/http"

	"github.com/arnavshah/shiftledger-api/pkg/database"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordUsage adds one saved import batch to the calling key's daily row.
// Owner requests carry no key and are not metered.
func (h *Handler) RecordUsage(c *gin.Context, accepted, rejected int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)
	today := h.now().Format("2006-01-02")

	// Single-query upsert, supported by both Postgres and SQLite
	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"batches":         gorm.Expr("batches + ?", 1),
			"accepted_shifts": gorm.Expr("accepted_shifts + ?", accepted),
			"rejected_tokens": gorm.Expr("rejected_tokens + ?", rejected),
		}),
	}).Create(&database.ImportUsage{
		KeyID:          apiKey.ID,
		Date:           today,
		Batches:        1,
		AcceptedShifts: accepted,
		RejectedTokens: rejected,
	}).Error
	if err != nil {
		h.Log.Warn("could not record import usage", zap.Error(err), zap.Uint("key_id", apiKey.ID))
	}
}

// GetMyUsage returns the last 30 days of import usage for the calling key,
// or for every key when the owner asks.
func (h *Handler) GetMyUsage(c *gin.Context) {
	query := h.DB.Order("date desc")
	keyName := ""
	if apiKeyRaw, exists := c.Get("apiKey"); exists {
		apiKey := apiKeyRaw.(*database.APIKey)
		query = query.Where("key_id = ?", apiKey.ID).Limit(30)
		keyName = apiKey.Name
	}

	var usage []database.ImportUsage
	if err := query.Find(&usage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// Calculate totals
	var batches, accepted, rejected int64
	for _, u := range usage {
		batches += int64(u.Batches)
		accepted += int64(u.AcceptedShifts)
		rejected += int64(u.RejectedTokens)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      keyName,
		"usage_history": usage,
		"totals": gin.H{
			"batches":         batches,
			"accepted_shifts": accepted,
			"rejected_tokens": rejected,
		},
	})
}
