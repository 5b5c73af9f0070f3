package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/auth"
	"github.com/arnavshah/shiftledger-api/pkg/database"
	"github.com/arnavshah/shiftledger-api/pkg/extract"
	"github.com/arnavshah/shiftledger-api/pkg/metrics"
	"github.com/arnavshah/shiftledger-api/pkg/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	// DB holds the owner account, API keys and import usage.
	DB    *gorm.DB
	Store store.SessionStore
	Auth  *auth.Service
	// Extractor is nil when no image service is configured.
	Extractor extract.Extractor
	Metrics   *metrics.Import
	Log       *zap.Logger
	// Location is stamped on imported shifts unless the request names one.
	Location string
	Zone     *time.Location
	Now      func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().In(h.zone())
	}
	return time.Now().In(h.zone())
}

func (h *Handler) zone() *time.Location {
	if h.Zone != nil {
		return h.Zone
	}
	return time.Local
}

func bearer(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	// Strip "Bearer " if present
	return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
}

// AdminMiddleware only lets the owner's JWT through
func (h *Handler) AdminMiddleware() gin.HandlerFunc {
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

// AuthMiddleware accepts the owner's JWT or an HMAC API key issued to an import client
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		if claims, err := h.Auth.VerifyToken(token); err == nil {
			c.Set("username", claims.Username)
			c.Next()
			return
		}

		clientName, err := h.Auth.VerifyHMACKey(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or API key"})
			return
		}

		// Fetch or create the key record to track usage
		var apiKey database.APIKey
		if err := h.DB.Where(database.APIKey{Key: token}).FirstOrCreate(&apiKey, database.APIKey{
			Key:        token,
			KeyPreview: auth.KeyPreview(token),
			Name:       clientName,
		}).Error; err != nil {
			h.Log.Error("api key lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not verify API key"})
			return
		}
		if apiKey.Revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key revoked"})
			return
		}
		now := time.Now()
		h.DB.Model(&apiKey).Update("last_used", &now)

		c.Set("apiKey", &apiKey)
		c.Set("clientName", clientName)
		c.Next()
	}
}

// Login handles owner login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var owner database.Owner
	if err := h.DB.Where("username = ?", req.Username).First(&owner).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, owner.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.CreateToken(owner.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey issues an HMAC API key for an import client
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	key := h.Auth.GenerateHMACKey(req.Name)
	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: auth.KeyPreview(key),
	}

	if err := h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}
	if apiKey.Revoked {
		c.JSON(http.StatusConflict, gin.H{"error": "A revoked key already exists for this name"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   apiKey.ID,
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.Order("id asc").Find(&keys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey marks an API key as revoked. HMAC keys verify without a
// lookup, so the record is kept to remember the revocation.
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
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
