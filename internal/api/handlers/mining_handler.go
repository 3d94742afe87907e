package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/token-mine/mining-service/internal/mining"
	"github.com/yourusername/token-mine/mining-service/internal/models"
	"github.com/yourusername/token-mine/mining-service/internal/service"
	"github.com/yourusername/token-mine/mining-service/pkg/logger"
	"go.uber.org/zap"
)

// MiningHandler handles mining reward API requests
type MiningHandler struct {
	service *service.MiningService
}

// NewMiningHandler creates a new mining handler
func NewMiningHandler(service *service.MiningService) *MiningHandler {
	return &MiningHandler{
		service: service,
	}
}

// ErrorResponse is the common error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ClaimRequest represents a manual claim request
type ClaimRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// ActivateRequest represents an activation request
type ActivateRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// OfflineCreditRequest represents an offline reconciliation request
type OfflineCreditRequest struct {
	UserID string  `json:"user_id" binding:"required"`
	Hours  float64 `json:"hours" binding:"required"`
}

// UserURI binds the user id path parameter
type UserURI struct {
	UserID string `uri:"user_id" binding:"required"`
}

// Claim performs a manual daily reward claim
// @Summary Claim daily reward
// @Description Claim the daily mining reward for a user
// @Tags mining
// @Accept json
// @Produce json
// @Param request body ClaimRequest true "Claim request"
// @Success 200 {object} service.ClaimResult
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/mining/claim [post]
func (h *MiningHandler) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	result, err := h.service.ClaimDaily(c.Request.Context(), req.UserID)
	if err != nil {
		h.writeDomainError(c, err, "Failed to claim reward")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Activate arms automatic mining for a user
// @Summary Activate mining
// @Description Activate automatic mining; re-activation always succeeds
// @Tags mining
// @Accept json
// @Produce json
// @Param request body ActivateRequest true "Activation request"
// @Success 200 {object} service.ActivationResult
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/mining/activate [post]
func (h *MiningHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	result, err := h.service.Activate(c.Request.Context(), req.UserID)
	if err != nil {
		h.writeDomainError(c, err, "Failed to activate mining")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreditOffline back-fills rewards for elapsed offline hours
// @Summary Credit offline rewards
// @Description Credit hourly rewards for time the user spent offline
// @Tags mining
// @Accept json
// @Produce json
// @Param request body OfflineCreditRequest true "Offline credit request"
// @Success 200 {object} service.OfflineCreditResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/mining/offline [post]
func (h *MiningHandler) CreditOffline(c *gin.Context) {
	var req OfflineCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	result, err := h.service.CreditOffline(c.Request.Context(), req.UserID, req.Hours)
	if err != nil {
		h.writeDomainError(c, err, "Failed to credit offline rewards")
		return
	}

	c.JSON(http.StatusOK, result)
}

// History returns a user's reward events, most recent first
// @Summary Get reward history
// @Tags mining
// @Produce json
// @Param user_id path string true "User ID"
// @Param limit query int false "Max events to return"
// @Success 200 {array} models.RewardEvent
// @Router /api/v1/mining/{user_id}/history [get]
func (h *MiningHandler) History(c *gin.Context) {
	var uri UserURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid request",
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	events, err := h.service.History(c.Request.Context(), uri.UserID, limit)
	if err != nil {
		logger.Error("Failed to get reward history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to retrieve history",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": uri.UserID,
		"count":   len(events),
		"events":  events,
	})
}

// Status returns the user's activation and claim eligibility snapshot
// @Summary Get mining status
// @Tags mining
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} service.StatusResult
// @Router /api/v1/mining/{user_id}/status [get]
func (h *MiningHandler) Status(c *gin.Context) {
	var uri UserURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	status, err := h.service.Status(c.Request.Context(), uri.UserID)
	if err != nil {
		logger.Error("Failed to get mining status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to retrieve status",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetStats returns ledger-wide aggregates (admin)
// @Summary Get mining statistics
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/stats [get]
func (h *MiningHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to retrieve statistics",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UpdateSettings replaces the tunable mining parameters (admin)
// @Summary Update mining settings
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.MiningSettings true "New settings"
// @Success 200 {object} models.MiningSettings
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/admin/settings [put]
func (h *MiningHandler) UpdateSettings(c *gin.Context) {
	var settings models.MiningSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	if err := h.service.UpdateSettings(c.Request.Context(), &settings); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid settings",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// HealthCheck reports service health
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *MiningHandler) HealthCheck(c *gin.Context) {
	if err := h.service.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// writeDomainError maps engine errors to HTTP statuses. Anything outside the
// caller-recoverable taxonomy is a storage failure and surfaces as 500.
func (h *MiningHandler) writeDomainError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, mining.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "Already claimed today",
			Message: "Next claim becomes available at the start of the next day",
		})
	case errors.Is(err, mining.ErrActivationRequired):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Activation required",
			Message: "Daily activation is required before claiming",
		})
	case errors.Is(err, mining.ErrMiningNotActive):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Mining not active",
			Message: "Activate mining before requesting offline credit",
		})
	case errors.Is(err, mining.ErrMiningDisabled):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Automatic mining disabled",
			Message: "Automatic mining is globally disabled",
		})
	case errors.Is(err, mining.ErrInvalidHours):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid hours",
			Message: err.Error(),
		})
	default:
		logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   fallback,
			Message: err.Error(),
		})
	}
}
