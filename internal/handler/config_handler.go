package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/channeldash/channel-ingestion-go/internal/models"
	"github.com/channeldash/channel-ingestion-go/internal/service/cache"
	"github.com/channeldash/channel-ingestion-go/internal/validation"
)

// ConfigHandler serves client bootstrap configuration and manages the
// saved user API key.
type ConfigHandler struct {
	cache               *cache.Store
	validator           *validation.Validator
	serverKeyConfigured bool
}

// NewConfigHandler creates a new ConfigHandler instance.
func NewConfigHandler(cacheStore *cache.Store, validator *validation.Validator, serverKeyConfigured bool) *ConfigHandler {
	return &ConfigHandler{
		cache:               cacheStore,
		validator:           validator,
		serverKeyConfigured: serverKeyConfigured,
	}
}

// HandleClientConfig processes GET /api/v1/client-config. It tells the
// dashboard whether a server-side key backs demo mode; the key itself is
// never exposed.
func (h *ConfigHandler) HandleClientConfig(c *gin.Context) {
	_, hasSavedKey := h.cache.SavedAPIKey()
	c.JSON(http.StatusOK, gin.H{
		"serverKeyConfigured": h.serverKeyConfigured,
		"savedKeyPresent":     hasSavedKey,
	})
}

// HandleSaveAPIKey processes PUT /api/v1/api-key. The key is validated for
// basic shape before being persisted; activation requires a restart.
func (h *ConfigHandler) HandleSaveAPIKey(c *gin.Context) {
	var req models.SaveAPIKeyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", "Invalid request payload: "+err.Error())
		return
	}

	if err := h.validator.ValidateAPIKey(req.APIKey); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid API Key", err.Error())
		return
	}

	h.cache.SaveAPIKey(req.APIKey)
	c.JSON(http.StatusOK, gin.H{
		"saved": true,
		"time":  time.Now(),
	})
}

// HandleHealth provides a simple health check endpoint.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}
