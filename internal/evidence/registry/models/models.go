package models

import "time"

// VitalRecord is the civil-registry answer for one identity number. Status
// is the registry's own phrase ("Cancelada por Muerte", "Vigente", ...).
type VitalRecord struct {
	IdentityNumber string    `json:"identity_number"`
	Status         string    `json:"status"`
	Source         string    `json:"source"`
	CheckedAt      time.Time `json:"checked_at"`
}
