package handlers

import (
	"net/http"

	"github.com/arnavshah/shiftledger-api/pkg/logging"
	"github.com/gin-gonic/gin"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// NewRouter wires every route onto a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(h.Log), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shift Ledger API",
			"version": Version,
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AdminMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.DELETE("/keys/:id", h.RevokeKey)
	}

	// Shift Endpoints
	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/shifts", h.ListShifts)
		api.GET("/shifts/upcoming", h.UpcomingShifts)
		api.GET("/shifts/:id", h.GetShift)
		api.POST("/shifts", h.CreateShift)
		api.PUT("/shifts/:id", h.ReplaceShift)
		api.POST("/shifts/:id/cancel", h.CancelShift)

		api.POST("/import/tokens", h.ImportTokens)
		api.POST("/import/text", h.ImportText)
		api.POST("/import/image", h.ImportImage)

		api.GET("/stats", h.GetStats)
		api.GET("/usage", h.GetMyUsage)
	}

	return r
}
