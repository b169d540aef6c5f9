package service

import (
	"sync"

	"buzz-service/internal/model"
	"buzz-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IgnoreService keeps per-viewer suppressions. Permanent ignores go through
// the repository and survive restarts; session ignores live here and are
// cleared when the viewer's presence session ends.
type IgnoreService struct {
	repo   repository.IgnoreRepository
	logger *zap.Logger

	mu      sync.RWMutex
	session map[uuid.UUID]map[uuid.UUID]bool // viewerID -> subjectID -> ignored
}

func NewIgnoreService(repo repository.IgnoreRepository, logger *zap.Logger) *IgnoreService {
	return &IgnoreService{
		repo:    repo,
		logger:  logger,
		session: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

// Ignore records a suppression. Idempotent for both scopes.
func (s *IgnoreService) Ignore(viewerID, subjectID uuid.UUID, scope model.IgnoreScope) error {
	if scope == model.IgnoreScopePermanent {
		return s.repo.Add(viewerID, subjectID)
	}

	s.mu.Lock()
	if s.session[viewerID] == nil {
		s.session[viewerID] = make(map[uuid.UUID]bool)
	}
	s.session[viewerID][subjectID] = true
	s.mu.Unlock()
	return nil
}

// IsIgnored checks both scopes.
func (s *IgnoreService) IsIgnored(viewerID, subjectID uuid.UUID) (bool, error) {
	s.mu.RLock()
	ignored := s.session[viewerID][subjectID]
	s.mu.RUnlock()
	if ignored {
		return true, nil
	}
	return s.repo.Exists(viewerID, subjectID)
}

// IgnoredSubjects returns every subject the viewer suppresses, both scopes
// merged. The radar query uses it to filter candidates in one pass.
func (s *IgnoreService) IgnoredSubjects(viewerID uuid.UUID) (map[uuid.UUID]bool, error) {
	subjects, err := s.repo.SubjectsOf(viewerID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	for subjectID := range s.session[viewerID] {
		subjects[subjectID] = true
	}
	s.mu.RUnlock()
	return subjects, nil
}

// ClearSession drops the viewer's session-scoped ignores. Called on
// deactivate and on re-activate.
func (s *IgnoreService) ClearSession(viewerID uuid.UUID) {
	s.mu.Lock()
	delete(s.session, viewerID)
	s.mu.Unlock()
}
