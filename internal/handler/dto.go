package handler

import (
	"errors"
	"net/http"
	"time"

	"buzz-service/internal/model"
	"buzz-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ========================================
// Request DTOs
// ========================================

// FilterRequest mirrors model.Filter on the wire; unset fields get
// defaults (interested in everyone, age 18-99).
type FilterRequest struct {
	InterestedIn []string `json:"interestedIn,omitempty"`
	MinAge       int      `json:"minAge,omitempty"`
	MaxAge       int      `json:"maxAge,omitempty"`
} // @name FilterRequest

func (r FilterRequest) toModel() model.Filter {
	return model.Filter{
		InterestedIn: r.InterestedIn,
		MinAge:       r.MinAge,
		MaxAge:       r.MaxAge,
	}
}

// ActivateRequest is the full presence activation payload.
type ActivateRequest struct {
	Latitude    *float64      `json:"latitude" binding:"required"`
	Longitude   *float64      `json:"longitude" binding:"required"`
	SelfieRef   string        `json:"selfieRef,omitempty"`
	DisplayName string        `json:"displayName,omitempty"`
	Gender      string        `json:"gender" binding:"required"`
	Age         int           `json:"age" binding:"required"`
	Filter      FilterRequest `json:"filter"`
} // @name ActivateRequest

// RefreshRequest is the cheap periodic re-announce payload.
type RefreshRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
} // @name RefreshRequest

// SubmitBuzzRequest targets one candidate off the radar.
type SubmitBuzzRequest struct {
	ToID uuid.UUID `json:"toId" binding:"required"`
} // @name SubmitBuzzRequest

// DeclineBuzzRequest declines a pending incoming buzz.
type DeclineBuzzRequest struct {
	FromID uuid.UUID `json:"fromId" binding:"required"`
} // @name DeclineBuzzRequest

// IgnoreRequest suppresses a candidate for this session or permanently.
type IgnoreRequest struct {
	SubjectID uuid.UUID `json:"subjectId" binding:"required"`
	Scope     string    `json:"scope" binding:"required,oneof=session permanent"`
} // @name IgnoreRequest

// ========================================
// Response DTOs
// ========================================

// BuzzResponse reports a submission outcome. MatchID and RoomID are set
// only when the buzz completed a match.
type BuzzResponse struct {
	Result  string  `json:"result" enums:"created,already_buzzed,matched"`
	MatchID *string `json:"matchId,omitempty"`
	RoomID  *string `json:"roomId,omitempty"`
} // @name BuzzResponse

// ToBuzzResponse converts a service result to the wire form.
func ToBuzzResponse(result *service.BuzzResult) BuzzResponse {
	resp := BuzzResponse{Result: string(result.Outcome)}
	if result.Match != nil {
		matchID := result.Match.ID.String()
		roomID := result.Match.RoomID.String()
		resp.MatchID = &matchID
		resp.RoomID = &roomID
	}
	return resp
}

// MatchResponse is one durable match from the caller's perspective.
type MatchResponse struct {
	MatchID   string    `json:"matchId"`
	PeerID    string    `json:"peerId"`
	RoomID    string    `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
} // @name MatchResponse

// ToMatchResponses converts matches to the caller's view of them.
func ToMatchResponses(userID uuid.UUID, matches []model.Match) []MatchResponse {
	responses := make([]MatchResponse, len(matches))
	for i := range matches {
		responses[i] = MatchResponse{
			MatchID:   matches[i].ID.String(),
			PeerID:    matches[i].Peer(userID).String(),
			RoomID:    matches[i].RoomID.String(),
			CreatedAt: matches[i].CreatedAt,
		}
	}
	return responses
}

// ========================================
// Error mapping
// ========================================

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// respondServiceError maps the service error taxonomy onto HTTP. Anything
// unrecognized is an infrastructure failure and stays generic.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPosition):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid coordinates")
	case errors.Is(err, service.ErrInvalidProfile):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing or invalid profile fields")
	case errors.Is(err, service.ErrSelfBuzz):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cannot buzz yourself")
	case errors.Is(err, service.ErrNotActive):
		respondError(c, http.StatusNotFound, "NOT_ACTIVE", "Presence not active, re-activate first")
	case errors.Is(err, service.ErrPeerUnavailable):
		respondError(c, http.StatusNotFound, "PEER_UNAVAILABLE", "That user is no longer nearby")
	case errors.Is(err, service.ErrNoPending):
		respondError(c, http.StatusNotFound, "NO_PENDING", "No pending buzz from that user")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
