package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a push event on a user's live connection.
type EventType string

const (
	EventBuzzRequest  EventType = "BUZZ_REQUEST"
	EventMatch        EventType = "MATCH"
	EventBuzzRejected EventType = "BUZZ_REJECTED"
)

// Event is the envelope pushed over the websocket. Delivery is best-effort:
// no retry, no queueing; the ledgers remain the durable source of truth.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BuzzRequestPayload tells a user someone buzzed them.
type BuzzRequestPayload struct {
	FromID      uuid.UUID `json:"fromId"`
	SelfieRef   string    `json:"selfieRef,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
}

// MatchPayload tells a user a mutual buzz became a match. Both sides of the
// pair receive it with the same roomId.
type MatchPayload struct {
	MatchID     uuid.UUID `json:"matchId"`
	PeerID      uuid.UUID `json:"peerId"`
	RoomID      uuid.UUID `json:"roomId"`
	SelfieRef   string    `json:"selfieRef,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
}

// BuzzRejectedPayload tells a sender their buzz was declined.
type BuzzRejectedPayload struct {
	ByID uuid.UUID `json:"byId"`
}

// NewEvent stamps an event envelope.
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
