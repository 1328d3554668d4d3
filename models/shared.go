package models

// ReminderPayload is carried by the hold reminder task.
type ReminderPayload struct {
	ReservationID int64  `json:"reservationId"`
	ClientID      string `json:"clientId"`
	ProviderID    string `json:"providerId"`
	FireDate      string `json:"fireDate"` // optional
}
