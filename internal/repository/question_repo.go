package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/models"
)

// QuestionRepository exposes the read-only question catalog.
type QuestionRepository interface {
	ListPool(ctx context.Context, subjectID uint, difficulty string) ([]models.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// ListPool returns every question of one subject and difficulty tier.
func (r *questionRepository) ListPool(ctx context.Context, subjectID uint, difficulty string) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Where("difficulty = ?", difficulty).
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}
