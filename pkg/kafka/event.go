package kafka

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published for every domain event. Payload carries the
// event-specific body; the envelope fields let consumers correlate, dedupe,
// and route without decoding the payload.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Source        string    `json:"source"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	Payload       any       `json:"payload"`
}

// NewEvent builds an envelope with a fresh id and timestamp.
func NewEvent(eventType, source string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
