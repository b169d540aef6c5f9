package service

import (
	"errors"
	"sync"
	"time"

	"buzz-service/internal/model"
	"buzz-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuzzOutcome is the client-visible result of a buzz submission.
type BuzzOutcome string

const (
	OutcomeCreated       BuzzOutcome = "created"
	OutcomeAlreadyBuzzed BuzzOutcome = "already_buzzed"
	OutcomeMatched       BuzzOutcome = "matched"
)

// BuzzResult carries the outcome; Match is set only when Outcome is
// OutcomeMatched.
type BuzzResult struct {
	Outcome BuzzOutcome
	Match   *model.Match
}

// PendingBuzz is one undecided incoming buzz whose sender is still live.
type PendingBuzz struct {
	FromID      uuid.UUID `json:"fromId"`
	SelfieRef   string    `json:"selfieRef,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	SentAt      time.Time `json:"sentAt"`
}

// BuzzService is the match coordinator. Every state transition for a pair
// of users runs under that pair's lock, so the reciprocity check and the
// match creation are one unit: of two concurrent reciprocal buzzes, the
// second to take the lock sees the first's signal and promotes the pair.
type BuzzService struct {
	presence  *PresenceService
	ignores   *IgnoreService
	buzzes    repository.BuzzRepository
	matches   repository.MatchRepository
	deliverer Deliverer
	logger    *zap.Logger

	pairMu    sync.Mutex
	pairLocks map[string]*sync.Mutex
}

func NewBuzzService(
	presence *PresenceService,
	ignores *IgnoreService,
	buzzes repository.BuzzRepository,
	matches repository.MatchRepository,
	deliverer Deliverer,
	logger *zap.Logger,
) *BuzzService {
	return &BuzzService{
		presence:  presence,
		ignores:   ignores,
		buzzes:    buzzes,
		matches:   matches,
		deliverer: deliverer,
		logger:    logger,
		pairLocks: make(map[string]*sync.Mutex),
	}
}

// lockPair serializes buzz processing for one unordered pair. Unrelated
// pairs never contend. Locks are kept for the process lifetime; the map is
// bounded by the number of distinct pairs that ever buzz.
func (s *BuzzService) lockPair(a, b uuid.UUID) *sync.Mutex {
	key := model.PairKey(a, b)

	s.pairMu.Lock()
	mu, ok := s.pairLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.pairLocks[key] = mu
	}
	s.pairMu.Unlock()

	mu.Lock()
	return mu
}

// SubmitBuzz records a one-directional interest signal and promotes the
// pair to a match when the reciprocal signal exists. A buzz is a durable
// commitment: once submitted it completes even if the caller goes away.
func (s *BuzzService) SubmitBuzz(fromID, toID uuid.UUID) (*BuzzResult, error) {
	if fromID == toID {
		return nil, ErrSelfBuzz
	}

	mu := s.lockPair(fromID, toID)
	defer mu.Unlock()

	from, ok := s.presence.Get(fromID)
	if !ok {
		return nil, ErrNotActive
	}
	to, ok := s.presence.Get(toID)
	if !ok {
		return nil, ErrPeerUnavailable
	}

	// A target who ignored the caller looks exactly like an absent one.
	ignored, err := s.ignores.IsIgnored(toID, fromID)
	if err != nil {
		return nil, err
	}
	if ignored {
		return nil, ErrPeerUnavailable
	}

	// An already-matched pair converges on the existing match, so whichever
	// concurrent caller lost the promotion race still learns the match ID.
	if existing, err := s.matches.GetByPair(fromID, toID); err == nil {
		return &BuzzResult{Outcome: OutcomeMatched, Match: existing}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.buzzes.Create(fromID, toID); err != nil {
		if errors.Is(err, repository.ErrDuplicateSignal) {
			return &BuzzResult{Outcome: OutcomeAlreadyBuzzed}, nil
		}
		return nil, err
	}

	reciprocal, err := s.buzzes.Exists(toID, fromID)
	if err != nil {
		return nil, err
	}

	if !reciprocal {
		s.deliverer.Push(toID, model.NewEvent(model.EventBuzzRequest, model.BuzzRequestPayload{
			FromID:      fromID,
			SelfieRef:   from.SelfieRef,
			DisplayName: from.DisplayName,
		}))
		s.logger.Info("buzz created",
			zap.String("fromId", fromID.String()),
			zap.String("toId", toID.String()))
		return &BuzzResult{Outcome: OutcomeCreated}, nil
	}

	match, err := s.buzzes.PromoteToMatch(fromID, toID)
	if err != nil {
		return nil, err
	}

	// Both sides get the match push, not just the caller.
	s.deliverer.Push(fromID, model.NewEvent(model.EventMatch, model.MatchPayload{
		MatchID:     match.ID,
		PeerID:      toID,
		RoomID:      match.RoomID,
		SelfieRef:   to.SelfieRef,
		DisplayName: to.DisplayName,
	}))
	s.deliverer.Push(toID, model.NewEvent(model.EventMatch, model.MatchPayload{
		MatchID:     match.ID,
		PeerID:      fromID,
		RoomID:      match.RoomID,
		SelfieRef:   from.SelfieRef,
		DisplayName: from.DisplayName,
	}))

	s.logger.Info("match created",
		zap.String("matchId", match.ID.String()),
		zap.String("userA", match.UserA.String()),
		zap.String("userB", match.UserB.String()))

	return &BuzzResult{Outcome: OutcomeMatched, Match: match}, nil
}

// Decline consumes a pending buzz addressed to userID and tells the sender.
// The pair also stops seeing each other for the rest of the session.
func (s *BuzzService) Decline(userID, fromID uuid.UUID) error {
	mu := s.lockPair(userID, fromID)
	defer mu.Unlock()

	exists, err := s.buzzes.Exists(fromID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNoPending
	}

	if err := s.buzzes.Delete(fromID, userID); err != nil {
		return err
	}
	if err := s.ignores.Ignore(userID, fromID, model.IgnoreScopeSession); err != nil {
		return err
	}

	s.deliverer.Push(fromID, model.NewEvent(model.EventBuzzRejected, model.BuzzRejectedPayload{
		ByID: userID,
	}))

	s.logger.Info("buzz declined",
		zap.String("byId", userID.String()),
		zap.String("fromId", fromID.String()))
	return nil
}

// Pending lists incoming buzzes whose sender is still on the radar, so a
// reconnecting client can catch up on requests it missed while offline.
func (s *BuzzService) Pending(userID uuid.UUID) ([]PendingBuzz, error) {
	signals, err := s.buzzes.PendingFor(userID)
	if err != nil {
		return nil, err
	}

	pending := make([]PendingBuzz, 0, len(signals))
	for i := range signals {
		sender, ok := s.presence.Get(signals[i].FromID)
		if !ok {
			continue
		}
		pending = append(pending, PendingBuzz{
			FromID:      signals[i].FromID,
			SelfieRef:   sender.SelfieRef,
			DisplayName: sender.DisplayName,
			SentAt:      signals[i].CreatedAt,
		})
	}
	return pending, nil
}

// Matches lists the caller's durable matches, newest first.
func (s *BuzzService) Matches(userID uuid.UUID) ([]model.Match, error) {
	return s.matches.ListForUser(userID)
}
