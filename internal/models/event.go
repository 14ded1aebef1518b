package models

import "time"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// AnimeEvent is the message payload for Kafka (created/updated/deleted).
type AnimeEvent struct {
	Action     string    `json:"action"`
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAnimeEvent stamps an event with the current time.
func NewAnimeEvent(action, id, title string) *AnimeEvent {
	return &AnimeEvent{
		Action:     action,
		ID:         id,
		Title:      title,
		OccurredAt: time.Now().UTC(),
	}
}
