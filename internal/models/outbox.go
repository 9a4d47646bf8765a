package models

import "time"

// OutboxEntry is a stored event waiting for the relay.
type OutboxEntry struct {
	ID            string     `db:"id" json:"id"`
	AggregateID   string     `db:"aggregate_id" json:"aggregateID"`
	AggregateType string     `db:"aggregate_type" json:"aggregateType"`
	EventType     string     `db:"event_type" json:"eventType"`
	Payload       []byte     `db:"payload" json:"payload"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	PublishedAt   *time.Time `db:"published_at" json:"publishedAt,omitempty"`
}
