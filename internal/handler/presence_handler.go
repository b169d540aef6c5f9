package handler

import (
	"net/http"

	"buzz-service/internal/middleware"
	"buzz-service/internal/model"
	"buzz-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PresenceHandler struct {
	presence *service.PresenceService
	logger   *zap.Logger
}

func NewPresenceHandler(presence *service.PresenceService, logger *zap.Logger) *PresenceHandler {
	return &PresenceHandler{presence: presence, logger: logger}
}

// Activate godoc
// @Summary      Activate presence
// @Description  Puts the caller on the radar with position, selfie and preference filter
// @Tags         presence
// @Accept       json
// @Param        request body ActivateRequest true "Activation payload"
// @Success      200 {object} map[string]bool
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /presence/activate [post]
func (h *PresenceHandler) Activate(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	err := h.presence.Activate(service.ActivateParams{
		UserID:      userID,
		Position:    model.Position{Latitude: *req.Latitude, Longitude: *req.Longitude},
		SelfieRef:   req.SelfieRef,
		DisplayName: req.DisplayName,
		Gender:      req.Gender,
		Age:         req.Age,
		Filter:      req.Filter.toModel(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.SetActivePresence(float64(h.presence.Count()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Refresh godoc
// @Summary      Refresh presence
// @Description  Bumps position and liveness without re-uploading the selfie
// @Tags         presence
// @Accept       json
// @Param        request body RefreshRequest true "Position"
// @Success      200 {object} map[string]bool
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /presence/refresh [post]
func (h *PresenceHandler) Refresh(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	err := h.presence.Refresh(userID, model.Position{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Deactivate godoc
// @Summary      Deactivate presence
// @Description  Removes the caller from the radar and ends the ignore session
// @Tags         presence
// @Success      200 {object} map[string]bool
// @Security     BearerAuth
// @Router       /presence/deactivate [post]
func (h *PresenceHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	h.presence.Deactivate(userID)
	middleware.SetActivePresence(float64(h.presence.Count()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
