package repository

import (
	"errors"
	"time"

	"buzz-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BuzzRepository interface {
	// Create persists a new signal. Returns ErrDuplicateSignal when a live
	// signal for the ordered pair already exists.
	Create(fromID, toID uuid.UUID) (*model.BuzzSignal, error)
	Exists(fromID, toID uuid.UUID) (bool, error)
	Delete(fromID, toID uuid.UUID) error
	// PendingFor lists unconsumed signals addressed to a user, oldest first.
	PendingFor(toID uuid.UUID) ([]model.BuzzSignal, error)
	// PromoteToMatch consumes both directions of a reciprocal pair and
	// creates the match in one transaction. Idempotent: if the match row
	// already exists (unique pair index), the existing row is returned.
	PromoteToMatch(fromID, toID uuid.UUID) (*model.Match, error)
}

// ErrDuplicateSignal means the ordered pair already has a live signal.
var ErrDuplicateSignal = errors.New("buzz signal already exists")

type buzzRepository struct {
	db *gorm.DB
}

func NewBuzzRepository(db *gorm.DB) BuzzRepository {
	return &buzzRepository{db: db}
}

func (r *buzzRepository) Create(fromID, toID uuid.UUID) (*model.BuzzSignal, error) {
	signal := &model.BuzzSignal{
		ID:        uuid.New(),
		FromID:    fromID,
		ToID:      toID,
		CreatedAt: time.Now().UTC(),
	}

	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_id"}, {Name: "to_id"}},
		DoNothing: true,
	}).Create(signal)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateSignal
	}
	return signal, nil
}

func (r *buzzRepository) Exists(fromID, toID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.BuzzSignal{}).
		Where("from_id = ? AND to_id = ?", fromID, toID).
		Count(&count).Error
	return count > 0, err
}

func (r *buzzRepository) Delete(fromID, toID uuid.UUID) error {
	return r.db.
		Where("from_id = ? AND to_id = ?", fromID, toID).
		Delete(&model.BuzzSignal{}).Error
}

func (r *buzzRepository) PendingFor(toID uuid.UUID) ([]model.BuzzSignal, error) {
	var signals []model.BuzzSignal
	err := r.db.Where("to_id = ?", toID).
		Order("created_at ASC").
		Find(&signals).Error
	return signals, err
}

func (r *buzzRepository) PromoteToMatch(fromID, toID uuid.UUID) (*model.Match, error) {
	userA, userB := model.SortPair(fromID, toID)

	var match *model.Match
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("(from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)",
				fromID, toID, toID, fromID).
			Delete(&model.BuzzSignal{}).Error; err != nil {
			return err
		}

		candidate := &model.Match{
			ID:        uuid.New(),
			UserA:     userA,
			UserB:     userB,
			RoomID:    model.RoomID(userA, userB),
			Source:    model.MatchSourceMicroBuzz,
			CreatedAt: time.Now().UTC(),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a"}, {Name: "user_b"}},
			DoNothing: true,
		}).Create(candidate)
		if res.Error != nil {
			return res.Error
		}

		// Read back: on conflict the earlier row with its original match ID
		// is the one both callers must report.
		var existing model.Match
		if err := tx.
			Where("user_a = ? AND user_b = ?", userA, userB).
			First(&existing).Error; err != nil {
			return err
		}
		match = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}
