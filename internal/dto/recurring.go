package dto

import "time"

// GenerateFromTemplateRequest asks for the draft of one template on one day.
type GenerateFromTemplateRequest struct {
	TemplateID string
	// GenerateForDate defaults to the current UTC day. Only the calendar date is used.
	GenerateForDate *time.Time
	Actor           string
}

// GenerationResult reports the draft created, or found, for a template and date.
type GenerationResult struct {
	TemplateID       string    `json:"templateID"`
	TemplateCode     string    `json:"templateCode"`
	TargetDate       time.Time `json:"targetDate"`
	JournalEntryID   string    `json:"journalEntryID"`
	ReferenceNumber  string    `json:"referenceNumber"`
	AlreadyGenerated bool      `json:"alreadyGenerated"`
}
