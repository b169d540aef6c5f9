package service

import (
	"buzz-service/internal/model"

	"github.com/google/uuid"
)

// Deliverer pushes an event to all of a user's live connections. Delivery
// is best-effort: pushing to a user with no connections is a no-op and the
// caller never learns about it - the ledgers are the source of truth.
type Deliverer interface {
	Push(userID uuid.UUID, event model.Event)
}
