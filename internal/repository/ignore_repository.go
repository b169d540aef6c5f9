package repository

import (
	"time"

	"buzz-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IgnoreRepository stores permanent ignores. Session-scoped ignores live in
// memory next to the presence records and never reach the database.
type IgnoreRepository interface {
	Add(viewerID, subjectID uuid.UUID) error
	Exists(viewerID, subjectID uuid.UUID) (bool, error)
	SubjectsOf(viewerID uuid.UUID) (map[uuid.UUID]bool, error)
}

type ignoreRepository struct {
	db *gorm.DB
}

func NewIgnoreRepository(db *gorm.DB) IgnoreRepository {
	return &ignoreRepository{db: db}
}

func (r *ignoreRepository) Add(viewerID, subjectID uuid.UUID) error {
	entry := &model.IgnoreEntry{
		ID:        uuid.New(),
		ViewerID:  viewerID,
		SubjectID: subjectID,
		CreatedAt: time.Now().UTC(),
	}
	// Idempotent add
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "subject_id"}},
		DoNothing: true,
	}).Create(entry).Error
}

func (r *ignoreRepository) Exists(viewerID, subjectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.IgnoreEntry{}).
		Where("viewer_id = ? AND subject_id = ?", viewerID, subjectID).
		Count(&count).Error
	return count > 0, err
}

func (r *ignoreRepository) SubjectsOf(viewerID uuid.UUID) (map[uuid.UUID]bool, error) {
	var entries []model.IgnoreEntry
	if err := r.db.Where("viewer_id = ?", viewerID).Find(&entries).Error; err != nil {
		return nil, err
	}
	subjects := make(map[uuid.UUID]bool, len(entries))
	for i := range entries {
		subjects[entries[i].SubjectID] = true
	}
	return subjects, nil
}
