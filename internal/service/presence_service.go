package service

import (
	"sync"
	"time"

	"buzz-service/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PresenceService owns the in-memory store of active users. Records expire
// lazily: every read goes through the TTL check and evicts what it finds
// dead. Presence intentionally does not survive a restart.
type PresenceService struct {
	ignores *IgnoreService
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	records map[uuid.UUID]*model.PresenceRecord
}

func NewPresenceService(ignores *IgnoreService, ttl time.Duration, logger *zap.Logger) *PresenceService {
	return &PresenceService{
		ignores: ignores,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
		records: make(map[uuid.UUID]*model.PresenceRecord),
	}
}

// SetClock overrides the time source. Test hook.
func (s *PresenceService) SetClock(now func() time.Time) {
	s.now = now
}

// ActivateParams is the full activation payload. Refresh uses the cheaper
// position-only path.
type ActivateParams struct {
	UserID      uuid.UUID
	Position    model.Position
	SelfieRef   string
	DisplayName string
	Gender      string
	Age         int
	Filter      model.Filter
}

// Activate upserts the caller's presence record and starts a new session:
// any session-scoped ignores from a previous activation are cleared.
func (s *PresenceService) Activate(p ActivateParams) error {
	if !p.Position.Valid() {
		return ErrInvalidPosition
	}
	if p.Gender == "" || p.Age < model.MinAgeDefault {
		return ErrInvalidProfile
	}
	p.Filter.ApplyDefaults()

	record := &model.PresenceRecord{
		UserID:      p.UserID,
		Position:    p.Position,
		SelfieRef:   p.SelfieRef,
		DisplayName: p.DisplayName,
		Gender:      p.Gender,
		Age:         p.Age,
		Filter:      p.Filter,
		LastSeenAt:  s.now(),
	}

	s.mu.Lock()
	s.records[p.UserID] = record
	s.mu.Unlock()

	s.ignores.ClearSession(p.UserID)

	s.logger.Debug("presence activated", zap.String("userId", p.UserID.String()))
	return nil
}

// Refresh bumps position and liveness for the periodic re-announce loop.
// Returns ErrNotActive if the user has no live record; the client should
// re-activate with the full payload.
func (s *PresenceService) Refresh(userID uuid.UUID, position model.Position) error {
	if !position.Valid() {
		return ErrInvalidPosition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[userID]
	if !ok || record.Expired(s.now(), s.ttl) {
		delete(s.records, userID)
		return ErrNotActive
	}

	record.Position = position
	record.LastSeenAt = s.now()
	return nil
}

// Deactivate removes the record and ends the ignore session.
func (s *PresenceService) Deactivate(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.records, userID)
	s.mu.Unlock()

	s.ignores.ClearSession(userID)

	s.logger.Debug("presence deactivated", zap.String("userId", userID.String()))
}

// Get returns a copy of the user's live record. Expired records are treated
// as absent and evicted.
func (s *PresenceService) Get(userID uuid.UUID) (model.PresenceRecord, bool) {
	s.mu.RLock()
	record, ok := s.records[userID]
	var copied model.PresenceRecord
	if ok {
		copied = *record
	}
	s.mu.RUnlock()

	if !ok {
		return model.PresenceRecord{}, false
	}
	if copied.Expired(s.now(), s.ttl) {
		s.evict(userID, copied.LastSeenAt)
		return model.PresenceRecord{}, false
	}
	return copied, true
}

// IsLive reports whether the user currently counts as present.
func (s *PresenceService) IsLive(userID uuid.UUID) bool {
	_, ok := s.Get(userID)
	return ok
}

// Live snapshots every live record, evicting expired ones along the way.
// The radar query scans this; the active set is small and TTL-bounded.
func (s *PresenceService) Live() []model.PresenceRecord {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	live := make([]model.PresenceRecord, 0, len(s.records))
	for userID, record := range s.records {
		if record.Expired(now, s.ttl) {
			delete(s.records, userID)
			continue
		}
		live = append(live, *record)
	}
	return live
}

// Count returns the number of live records, evicting expired ones.
func (s *PresenceService) Count() int {
	return len(s.Live())
}

// evict removes the record only if it has not been refreshed since the
// expiry was observed.
func (s *PresenceService) evict(userID uuid.UUID, seenAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[userID]; ok && record.LastSeenAt.Equal(seenAt) {
		delete(s.records, userID)
	}
}
