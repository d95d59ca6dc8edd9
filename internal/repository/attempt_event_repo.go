package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/models"
)

// AttemptEventRepository persists the attempt lifecycle audit trail.
type AttemptEventRepository interface {
	Create(ctx context.Context, event *models.AttemptEvent) error
	ListForAttempt(ctx context.Context, attemptID uint) ([]models.AttemptEvent, error)
}

type attemptEventRepository struct {
	db *gorm.DB
}

// NewAttemptEventRepository instantiates the repository.
func NewAttemptEventRepository(db *gorm.DB) AttemptEventRepository {
	return &attemptEventRepository{db: db}
}

func (r *attemptEventRepository) Create(ctx context.Context, event *models.AttemptEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *attemptEventRepository) ListForAttempt(ctx context.Context, attemptID uint) ([]models.AttemptEvent, error) {
	var events []models.AttemptEvent
	if err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
