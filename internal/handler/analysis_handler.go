package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/channeldash/channel-ingestion-go/internal/apperrors"
	"github.com/channeldash/channel-ingestion-go/internal/models"
	"github.com/channeldash/channel-ingestion-go/internal/service"
	"github.com/channeldash/channel-ingestion-go/internal/service/ratelimit"
	"github.com/channeldash/channel-ingestion-go/internal/validation"
	"github.com/channeldash/channel-ingestion-go/pkg/logger"
)

// AnalysisHandler exposes the ingestion pipeline over HTTP. The analysis
// service is nil when no API key is configured; analysis routes then
// answer with an API-key error instead of failing at startup.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	validator       *validation.Validator
}

// NewAnalysisHandler creates a new AnalysisHandler instance.
func NewAnalysisHandler(analysisService *service.AnalysisService, validator *validation.Validator) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		validator:       validator,
	}
}

// HandleAnalyze processes POST /api/v1/analyze.
func (h *AnalysisHandler) HandleAnalyze(c *gin.Context) {
	var req models.AnalyzeRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", "Invalid request payload: "+err.Error())
		return
	}

	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.validator.ValidateChannelInput(req.Channel); err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if h.analysisService == nil {
		sendError(c, http.StatusServiceUnavailable, "API Key Missing",
			"No YouTube API key is configured on the server.")
		return
	}

	fingerprint := ratelimit.Fingerprint(ratelimit.Signals{
		ScreenWidth:  req.Client.ScreenWidth,
		ScreenHeight: req.Client.ScreenHeight,
		Timezone:     req.Client.Timezone,
		UserAgent:    c.GetHeader("User-Agent"),
	})

	result, err := h.analysisService.Analyze(c.Request.Context(), service.AnalyzeRequest{
		Input:        req.Channel,
		Mode:         mode,
		ForceRefresh: req.ForceRefresh,
		Fingerprint:  fingerprint,
		OnProgress: func(message string) {
			logger.Log.Debug("analysis progress", zap.String("message", message))
		},
	})
	if err != nil {
		h.handleAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AnalyzeResponseDTO{
		ChannelID:  result.Channel.ChannelID,
		Mode:       result.Mode,
		Videos:     result.Videos,
		VideoCount: len(result.Videos),
		FromCache:  result.FromCache,
		Cache:      result.Cache,
	})
}

// HandleListCached processes GET /api/v1/channels/cached.
func (h *AnalysisHandler) HandleListCached(c *gin.Context) {
	mode, err := models.ParseMode(c.DefaultQuery("mode", string(models.ModeDemo)))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if h.analysisService == nil {
		c.JSON(http.StatusOK, gin.H{"channels": []models.CacheSummary{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels": h.analysisService.CachedChannels(mode)})
}

// HandleDeleteCached processes DELETE /api/v1/channels/cached/:channelId.
func (h *AnalysisHandler) HandleDeleteCached(c *gin.Context) {
	mode, err := models.ParseMode(c.DefaultQuery("mode", string(models.ModeDemo)))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	channelID := c.Param("channelId")
	if !validation.IsValidChannelID(channelID) {
		sendError(c, http.StatusBadRequest, "Bad Request", "invalid channel ID")
		return
	}

	if h.analysisService != nil {
		h.analysisService.DeleteCached(channelID, mode)
	}
	c.Status(http.StatusNoContent)
}

// handleAnalysisError maps the error taxonomy onto user-facing categories.
// Raw upstream payloads and stack traces never reach the client.
func (h *AnalysisHandler) handleAnalysisError(c *gin.Context, err error) {
	var (
		rateErr       *apperrors.RateLimitError
		quotaErr      *apperrors.QuotaError
		keyErr        *apperrors.APIKeyError
		notFoundErr   *apperrors.NotFoundError
		resolutionErr *apperrors.ResolutionError
		networkErr    *apperrors.NetworkError
	)

	switch {
	case errors.As(err, &rateErr):
		sendError(c, http.StatusTooManyRequests, "Demo Limit Reached",
			"Daily demo analysis limit reached. Try again tomorrow or use your own API key in live mode.")
	case errors.As(err, &quotaErr):
		sendError(c, http.StatusTooManyRequests, "Quota Exceeded",
			"The YouTube API quota is exhausted for today. Try again later.")
	case errors.As(err, &keyErr):
		sendError(c, http.StatusUnauthorized, "Invalid API Key",
			"The YouTube API key was rejected. Check the key and try again.")
	case errors.As(err, &notFoundErr), errors.As(err, &resolutionErr):
		sendError(c, http.StatusNotFound, "Channel Not Found",
			"No channel could be found for that URL or handle.")
	case errors.As(err, &networkErr):
		sendError(c, http.StatusBadGateway, "Upstream Unreachable",
			"Could not reach the YouTube API. Check your connection and try again.")
	default:
		logger.Log.Error("analysis failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		sendError(c, http.StatusInternalServerError, "Analysis Failed",
			"The analysis could not be completed. Try again.")
	}
}

func sendError(c *gin.Context, status int, title, message string) {
	c.JSON(status, models.ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     title,
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}
