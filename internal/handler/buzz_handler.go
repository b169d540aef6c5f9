package handler

import (
	"net/http"

	"buzz-service/internal/middleware"
	"buzz-service/internal/model"
	"buzz-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BuzzHandler struct {
	buzz    *service.BuzzService
	ignores *service.IgnoreService
	logger  *zap.Logger
}

func NewBuzzHandler(buzz *service.BuzzService, ignores *service.IgnoreService, logger *zap.Logger) *BuzzHandler {
	return &BuzzHandler{buzz: buzz, ignores: ignores, logger: logger}
}

// Submit godoc
// @Summary      Submit a buzz
// @Description  Signals interest in a nearby user; a reciprocal buzz becomes a match
// @Tags         buzz
// @Accept       json
// @Param        request body SubmitBuzzRequest true "Target"
// @Success      200 {object} BuzzResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /buzz [post]
func (h *BuzzHandler) Submit(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	var req SubmitBuzzRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.buzz.SubmitBuzz(userID, req.ToID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.RecordBuzz(string(result.Outcome))
	if result.Outcome == service.OutcomeMatched {
		middleware.RecordMatchCreated()
	}

	c.JSON(http.StatusOK, ToBuzzResponse(result))
}

// Decline godoc
// @Summary      Decline a pending buzz
// @Description  Consumes an incoming buzz and notifies the sender
// @Tags         buzz
// @Accept       json
// @Param        request body DeclineBuzzRequest true "Sender"
// @Success      200 {object} map[string]bool
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /buzz/decline [post]
func (h *BuzzHandler) Decline(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	var req DeclineBuzzRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.buzz.Decline(userID, req.FromID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Pending godoc
// @Summary      List pending incoming buzzes
// @Description  Incoming buzzes whose sender is still on the radar, for clients catching up after a reconnect
// @Tags         buzz
// @Success      200 {array} service.PendingBuzz
// @Security     BearerAuth
// @Router       /buzz/pending [get]
func (h *BuzzHandler) Pending(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	pending, err := h.buzz.Pending(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pending)
}

// Ignore godoc
// @Summary      Ignore a candidate
// @Description  Hides a candidate for this session ("not now") or permanently ("never show again")
// @Tags         buzz
// @Accept       json
// @Param        request body IgnoreRequest true "Subject and scope"
// @Success      200 {object} map[string]bool
// @Security     BearerAuth
// @Router       /ignore [post]
func (h *BuzzHandler) Ignore(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	var req IgnoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.SubjectID == userID {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cannot ignore yourself")
		return
	}

	scope := model.IgnoreScopeSession
	if req.Scope == "permanent" {
		scope = model.IgnoreScopePermanent
	}

	if err := h.ignores.Ignore(userID, req.SubjectID, scope); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Matches godoc
// @Summary      List matches
// @Description  The caller's durable matches; chat resolves rooms from here
// @Tags         buzz
// @Success      200 {array} MatchResponse
// @Security     BearerAuth
// @Router       /matches [get]
func (h *BuzzHandler) Matches(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	matches, err := h.buzz.Matches(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToMatchResponses(userID, matches))
}
