package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/models"
)

// AttemptRepository defines data operations for exam attempts and their
// per-question answer rows. Multi-step writes run inside one transaction so a
// concurrent reader never observes a half-applied attempt.
type AttemptRepository interface {
	GetByID(ctx context.Context, id uint) (models.ExamAttempt, error)
	ListForStudent(ctx context.Context, studentID uint) ([]models.ExamAttempt, error)
	CountForExamAndStudent(ctx context.Context, examID, studentID uint) (int64, error)
	FindInProgress(ctx context.Context, examID, studentID uint) (models.ExamAttempt, error)
	AttemptOrdinal(ctx context.Context, attempt models.ExamAttempt) (int, error)
	CreateWithQuestions(ctx context.Context, attempt *models.ExamAttempt, questions []models.Question) error
	ListAnswers(ctx context.Context, attemptID uint) ([]models.StudentAnswer, error)
	GetAnswerByID(ctx context.Context, id uint) (models.StudentAnswer, error)
	SaveOpenAnswer(ctx context.Context, answer *models.StudentAnswer) error
	ReplaceSelection(ctx context.Context, answer *models.StudentAnswer, selected []models.Answer) error
	Finalize(ctx context.Context, attemptID uint, status string, endTime time.Time, maxScore int) (models.ExamAttempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ExamAttempt{}).
		Preload("Exam").
		Preload("Exam.Course").
		Preload("Exam.Quotas").
		Preload("Exam.Quotas.Subject")
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	if err := r.baseQuery(ctx).First(&attempt, id).Error; err != nil {
		return models.ExamAttempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) ListForStudent(ctx context.Context, studentID uint) ([]models.ExamAttempt, error) {
	var attempts []models.ExamAttempt
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("start_time DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *attemptRepository) CountForExamAndStudent(ctx context.Context, examID, studentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ExamAttempt{}).
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *attemptRepository) FindInProgress(ctx context.Context, examID, studentID uint) (models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	if err := r.baseQuery(ctx).
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		Where("status = ?", models.AttemptStatusInProgress).
		First(&attempt).Error; err != nil {
		return models.ExamAttempt{}, err
	}

	return attempt, nil
}

// AttemptOrdinal numbers an attempt within its (exam, student) pair by
// creation order: the count of the pair's attempts with id <= this one.
func (r *attemptRepository) AttemptOrdinal(ctx context.Context, attempt models.ExamAttempt) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ExamAttempt{}).
		Where("exam_id = ?", attempt.ExamID).
		Where("student_id = ?", attempt.StudentID).
		Where("id <= ?", attempt.ID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return int(count), nil
}

// CreateWithQuestions persists a new attempt, freezes its question snapshot
// and bulk-creates one StudentAnswer placeholder per drawn question, all in
// one transaction.
func (r *attemptRepository) CreateWithQuestions(ctx context.Context, attempt *models.ExamAttempt, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}

		if len(questions) == 0 {
			return nil
		}

		if err := tx.Model(attempt).Association("Questions").Append(questions); err != nil {
			return err
		}

		placeholders := make([]models.StudentAnswer, 0, len(questions))
		for _, question := range questions {
			placeholders = append(placeholders, models.StudentAnswer{
				AttemptID:  attempt.ID,
				QuestionID: question.ID,
				Grading:    models.GradingUngraded,
			})
		}

		return tx.Create(&placeholders).Error
	})
}

func (r *attemptRepository) answerQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.StudentAnswer{}).
		Preload("Question").
		Preload("Question.Subject").
		Preload("Question.Answers").
		Preload("Selected")
}

func (r *attemptRepository) ListAnswers(ctx context.Context, attemptID uint) ([]models.StudentAnswer, error) {
	var answers []models.StudentAnswer
	if err := r.answerQuery(ctx).
		Where("attempt_id = ?", attemptID).
		Order("id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (r *attemptRepository) GetAnswerByID(ctx context.Context, id uint) (models.StudentAnswer, error) {
	var answer models.StudentAnswer
	if err := r.answerQuery(ctx).
		Preload("Attempt").
		Preload("Attempt.Exam").
		Preload("Attempt.Exam.Quotas").
		First(&answer, id).Error; err != nil {
		return models.StudentAnswer{}, err
	}

	return answer, nil
}

func (r *attemptRepository) SaveOpenAnswer(ctx context.Context, answer *models.StudentAnswer) error {
	return r.db.WithContext(ctx).Model(answer).Updates(map[string]interface{}{
		"answer_text":   answer.AnswerText,
		"grading":       answer.Grading,
		"points_earned": answer.PointsEarned,
	}).Error
}

// ReplaceSelection swaps the full selected-answer set and stores the grading
// outcome atomically. Resubmission overwrites the prior selection entirely.
func (r *attemptRepository) ReplaceSelection(ctx context.Context, answer *models.StudentAnswer, selected []models.Answer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(answer).Association("Selected").Replace(selected); err != nil {
			return err
		}

		return tx.Model(answer).Updates(map[string]interface{}{
			"grading":       answer.Grading,
			"points_earned": answer.PointsEarned,
		}).Error
	})
}

// Finalize seals an attempt exactly once. The status guard makes a second
// call a no-op that returns the already sealed row, and the score sum and
// save happen in the same transaction.
func (r *attemptRepository) Finalize(ctx context.Context, attemptID uint, status string, endTime time.Time, maxScore int) (models.ExamAttempt, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt models.ExamAttempt
		if err := tx.First(&attempt, attemptID).Error; err != nil {
			return err
		}

		if attempt.Status != models.AttemptStatusInProgress {
			return nil
		}

		var score int64
		if err := tx.Model(&models.StudentAnswer{}).
			Where("attempt_id = ?", attemptID).
			Select("COALESCE(SUM(points_earned), 0)").
			Scan(&score).Error; err != nil {
			return err
		}

		return tx.Model(&attempt).Updates(map[string]interface{}{
			"status":    status,
			"end_time":  endTime,
			"score":     score,
			"max_score": maxScore,
		}).Error
	})
	if err != nil {
		return models.ExamAttempt{}, err
	}

	return r.GetByID(ctx, attemptID)
}
