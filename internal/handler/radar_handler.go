package handler

import (
	"net/http"
	"strconv"

	"buzz-service/internal/middleware"
	"buzz-service/internal/model"
	"buzz-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RadarHandler struct {
	radar  *service.RadarService
	logger *zap.Logger
}

func NewRadarHandler(radar *service.RadarService, logger *zap.Logger) *RadarHandler {
	return &RadarHandler{radar: radar, logger: logger}
}

// Query godoc
// @Summary      Query nearby candidates
// @Description  Lists live, mutually compatible users within the radius. Never exposes raw coordinates of others.
// @Tags         radar
// @Param        lat query number true "Viewer latitude"
// @Param        lng query number true "Viewer longitude"
// @Param        radius query number false "Radius in meters (clamped to the configured maximum)"
// @Success      200 {array} service.Candidate
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /radar [get]
func (h *RadarHandler) Query(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user identity")
		return
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng are required")
		return
	}

	var radius float64
	if raw := c.Query("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid radius")
			return
		}
		radius = parsed
	}

	candidates, err := h.radar.Query(userID, model.Position{Latitude: lat, Longitude: lng}, radius)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.RecordRadarQuery()

	if candidates == nil {
		candidates = []service.Candidate{}
	}
	c.JSON(http.StatusOK, candidates)
}
