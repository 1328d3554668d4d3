package booking

import (
	providerRepo "slotbook/database/repository/provider"
	reservationRepo "slotbook/database/repository/reservation"
	"slotbook/utils"
)

var (
	ErrProviderNotFound    = providerRepo.ErrProviderNotFound
	ErrReservationNotFound = reservationRepo.ErrReservationNotFound

	ErrInvalidSlotStart  = utils.NewAppError("invalid_slot_start", utils.KindInputValidation, "slot_start_time is not a valid RFC 3339 timestamp")
	ErrLeadTimeViolation = utils.NewAppError("lead_time_violation", utils.KindInputValidation, "slot starts too soon to be reserved")
	ErrInvalidSlot       = utils.NewAppError("invalid_slot", utils.KindInputValidation, "slot is outside the provider's schedule")
	ErrSlotUnavailable   = utils.NewAppError("slot_unavailable", utils.KindStateConflict, "slot already reserved or confirmed")
	ErrClientMismatch    = utils.NewAppError("client_mismatch", utils.KindAuthorizationMismatch, "reservation belongs to another client")
	ErrHoldExpired       = utils.NewAppError("hold_expired", utils.KindStateConflict, "reservation expired, cannot confirm")
	ErrAlreadyConfirmed  = utils.NewAppError("already_confirmed", utils.KindStateConflict, "reservation is already confirmed")
)
