package triage

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&TriageNote{})
}

func (r *Repository) Create(ctx context.Context, note *TriageNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *Repository) ListForPrediction(ctx context.Context, userID, predictionID string) ([]TriageNote, error) {
	var notes []TriageNote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND prediction_id = ?", userID, predictionID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}
