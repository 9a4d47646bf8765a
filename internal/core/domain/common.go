package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// SystemActor is recorded when a caller does not identify itself.
const SystemActor = "System"

// CalendarDay truncates t to midnight UTC of its UTC calendar date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ResolveActor returns actor, or fallback when actor is blank.
func ResolveActor(actor, fallback string) string {
	if actor != "" {
		return actor
	}
	if fallback != "" {
		return fallback
	}
	return SystemActor
}
