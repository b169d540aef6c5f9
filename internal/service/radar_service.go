package service

import (
	"math"
	"sort"
	"strings"

	"buzz-service/internal/geo"
	"buzz-service/internal/model"
	"buzz-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RadarService answers "who is in the room with me". It scans the live
// presence set; no spatial index, the TTL keeps the set small.
type RadarService struct {
	presence *PresenceService
	ignores  *IgnoreService
	matches  repository.MatchRepository
	logger   *zap.Logger

	defaultRadius float64
	maxRadius     float64
}

func NewRadarService(
	presence *PresenceService,
	ignores *IgnoreService,
	matches repository.MatchRepository,
	defaultRadius, maxRadius float64,
	logger *zap.Logger,
) *RadarService {
	return &RadarService{
		presence:      presence,
		ignores:       ignores,
		matches:       matches,
		logger:        logger,
		defaultRadius: defaultRadius,
		maxRadius:     maxRadius,
	}
}

// Candidate is one radar hit. It never carries the subject's coordinates,
// only the rounded distance.
type Candidate struct {
	UserID         uuid.UUID `json:"id"`
	DistanceMeters int       `json:"distanceMeters"`
	SelfieRef      string    `json:"selfieRef,omitempty"`
	DisplayName    string    `json:"displayName,omitempty"`
}

// Query lists live users within the radius around center, excluding the
// viewer, anyone the viewer ignores, anyone already matched with the
// viewer, and anyone failing the mutual filter gate. Sorted by distance
// then user ID so repeated polls don't reshuffle.
func (s *RadarService) Query(viewerID uuid.UUID, center model.Position, radiusMeters float64) ([]Candidate, error) {
	if !center.Valid() {
		return nil, ErrInvalidPosition
	}
	if radiusMeters <= 0 {
		radiusMeters = s.defaultRadius
	}
	if radiusMeters > s.maxRadius {
		radiusMeters = s.maxRadius
	}

	viewer, ok := s.presence.Get(viewerID)
	if !ok {
		return nil, ErrNotActive
	}

	ignored, err := s.ignores.IgnoredSubjects(viewerID)
	if err != nil {
		return nil, err
	}
	matched, err := s.matches.PeersOf(viewerID)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, subject := range s.presence.Live() {
		if subject.UserID == viewerID {
			continue
		}
		if ignored[subject.UserID] || matched[subject.UserID] {
			continue
		}
		// Mutual gate: one-sided acceptance is not enough.
		if !viewer.Filter.Accepts(subject.Gender, subject.Age) {
			continue
		}
		if !subject.Filter.Accepts(viewer.Gender, viewer.Age) {
			continue
		}

		distance := geo.HaversineMeters(
			center.Latitude, center.Longitude,
			subject.Position.Latitude, subject.Position.Longitude,
		)
		if distance > radiusMeters {
			continue
		}

		candidates = append(candidates, Candidate{
			UserID:         subject.UserID,
			DistanceMeters: int(math.Round(distance)),
			SelfieRef:      subject.SelfieRef,
			DisplayName:    subject.DisplayName,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceMeters != candidates[j].DistanceMeters {
			return candidates[i].DistanceMeters < candidates[j].DistanceMeters
		}
		return strings.Compare(candidates[i].UserID.String(), candidates[j].UserID.String()) < 0
	})

	s.logger.Debug("radar query",
		zap.String("viewerId", viewerID.String()),
		zap.Float64("radiusM", radiusMeters),
		zap.Int("results", len(candidates)))

	return candidates, nil
}
