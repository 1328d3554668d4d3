package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Provider endpoints
	SubmitAvailabilityHandler gin.HandlerFunc
	GetProviderHandler        gin.HandlerFunc

	// Availability endpoints
	ListSlotsHandler gin.HandlerFunc

	// Reservation endpoints
	ReserveHandler        gin.HandlerFunc
	ConfirmHandler        gin.HandlerFunc
	GetReservationHandler gin.HandlerFunc

	// Middleware applied to provider and reservation writes. Nil disables authentication.
	AuthMiddleware gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from the three handler groups.
func NewHandlerBundle(p *ProviderHandler, a *AvailabilityHandler, b *BookingHandler) *HandlerBundle {
	return &HandlerBundle{
		SubmitAvailabilityHandler: p.SubmitAvailabilityHandler,
		GetProviderHandler:        p.GetProviderHandler,
		ListSlotsHandler:          a.ListSlotsHandler,
		ReserveHandler:            b.ReserveHandler,
		ConfirmHandler:            b.ConfirmHandler,
		GetReservationHandler:     b.GetReservationHandler,
	}
}
