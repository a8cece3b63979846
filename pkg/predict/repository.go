package predict

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("prediction not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Prediction{})
}

func (r *Repository) Create(ctx context.Context, rec *Prediction) error {
	rec.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) GetForUser(ctx context.Context, id, userID string) (*Prediction, error) {
	var rec Prediction
	result := r.db.WithContext(ctx).First(&rec, "id = ? AND user_id = ?", id, userID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, result.Error
}

func (r *Repository) ListForUser(ctx context.Context, userID string, limit int) ([]Prediction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []Prediction
	result := r.db.WithContext(ctx).
		Preload("Report").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&rows)
	return rows, result.Error
}
