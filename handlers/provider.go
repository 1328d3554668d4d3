package handlers

import (
	"net/http"
	"time"

	"slotbook/models"
	"slotbook/services/provider"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errProviderMismatch = utils.NewAppError("provider_mismatch", utils.KindAuthorizationMismatch, "token does not belong to this provider")

type ProviderHandler struct {
	Service provider.ProviderService
	Now     func() time.Time
}

func NewProviderHandler(service provider.ProviderService) *ProviderHandler {
	return &ProviderHandler{Service: service, Now: time.Now}
}

// SubmitAvailabilityHandler appends a batch of ranges to a provider's schedule.
func (h *ProviderHandler) SubmitAvailabilityHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.SubmitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("Invalid availability submission", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", "Invalid request payload", err.Error())
		return
	}
	if !authorizedAs(c, req.ProviderID) {
		utils.RespondError(c, errProviderMismatch)
		return
	}

	p, err := h.Service.SubmitAvailability(c.Request.Context(), req.ProviderID, req.Schedule, h.Now().UTC())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"provider": p})
}

// GetProviderHandler returns a provider and its schedule.
func (h *ProviderHandler) GetProviderHandler(c *gin.Context) {
	p, err := h.Service.GetProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p})
}
