package handlers

import (
	"net/http"
	"strconv"
	"time"

	"slotbook/models"
	"slotbook/services/booking"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service booking.ReservationService
	Now     func() time.Time
}

func NewBookingHandler(service booking.ReservationService) *BookingHandler {
	return &BookingHandler{Service: service, Now: time.Now}
}

// ReserveHandler places a hold on a slot for the calling client.
func (h *BookingHandler) ReserveHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.ReserveSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("Invalid reserve request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", "Invalid request payload", err.Error())
		return
	}
	if !authorizedAs(c, req.ClientID) {
		utils.RespondError(c, booking.ErrClientMismatch)
		return
	}

	res, err := h.Service.Reserve(c.Request.Context(), req.ClientID, req.ProviderID, req.SlotStartTime, h.Now().UTC())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	logger.Info("Slot held", zap.Int64("reservationID", res.ID), zap.String("providerID", res.ProviderID))
	c.JSON(http.StatusCreated, gin.H{"reservation": res})
}

// ConfirmHandler turns a live hold into a confirmed booking.
func (h *BookingHandler) ConfirmHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.ConfirmReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("Invalid confirm request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", "Invalid request payload", err.Error())
		return
	}
	if !authorizedAs(c, req.ClientID) {
		utils.RespondError(c, booking.ErrClientMismatch)
		return
	}

	res, err := h.Service.Confirm(c.Request.Context(), req.ClientID, req.ReservationID, h.Now().UTC())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	logger.Info("Reservation confirmed", zap.Int64("reservationID", res.ID))
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

// GetReservationHandler returns a reservation owned by the client_id query parameter.
func (h *BookingHandler) GetReservationHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", "Invalid reservation id", c.Param("id"))
		return
	}
	clientID := c.Query("client_id")
	if clientID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", "Missing client_id query parameter", "")
		return
	}
	if !authorizedAs(c, clientID) {
		utils.RespondError(c, booking.ErrClientMismatch)
		return
	}

	res, err := h.Service.Get(c.Request.Context(), clientID, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}
