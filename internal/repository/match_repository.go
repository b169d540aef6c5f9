package repository

import (
	"errors"

	"buzz-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchRepository interface {
	GetByPair(a, b uuid.UUID) (*model.Match, error)
	ExistsForPair(a, b uuid.UUID) (bool, error)
	ListForUser(userID uuid.UUID) ([]model.Match, error)
	// PeersOf returns every user the given user is matched with. The radar
	// uses it to keep matched pairs off each other's screens.
	PeersOf(userID uuid.UUID) (map[uuid.UUID]bool, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) GetByPair(a, b uuid.UUID) (*model.Match, error) {
	userA, userB := model.SortPair(a, b)
	var match model.Match
	err := r.db.Where("user_a = ? AND user_b = ?", userA, userB).First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) ExistsForPair(a, b uuid.UUID) (bool, error) {
	_, err := r.GetByPair(a, b)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *matchRepository) ListForUser(userID uuid.UUID) ([]model.Match, error) {
	var matches []model.Match
	err := r.db.
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

func (r *matchRepository) PeersOf(userID uuid.UUID) (map[uuid.UUID]bool, error) {
	matches, err := r.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	peers := make(map[uuid.UUID]bool, len(matches))
	for i := range matches {
		peers[matches[i].Peer(userID)] = true
	}
	return peers, nil
}
