package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/models"
)

// ExamRepository defines data operations for exams and their quotas.
type ExamRepository interface {
	GetByID(ctx context.Context, id uint) (models.Exam, error)
	ListOpenForStudent(ctx context.Context, studentID uint, now time.Time) ([]models.Exam, error)
	GetQuota(ctx context.Context, examID, subjectID uint) (models.ExamSubjectQuota, error)
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository instantiates the repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Exam{}).
		Preload("Course").
		Preload("Quotas").
		Preload("Quotas.Subject")
}

func (r *examRepository) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.baseQuery(ctx).First(&exam, id).Error; err != nil {
		return models.Exam{}, err
	}

	return exam, nil
}

// ListOpenForStudent returns exams whose window contains now, restricted to
// courses the student is enrolled in, ordered by the closing deadline.
func (r *examRepository) ListOpenForStudent(ctx context.Context, studentID uint, now time.Time) ([]models.Exam, error) {
	enrolled := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("course_id").
		Where("student_id = ?", studentID)

	var exams []models.Exam
	if err := r.baseQuery(ctx).
		Where("course_id IN (?)", enrolled).
		Where("open_time <= ?", now).
		Where("close_time >= ?", now).
		Order("close_time ASC").
		Find(&exams).Error; err != nil {
		return nil, err
	}

	return exams, nil
}

func (r *examRepository) GetQuota(ctx context.Context, examID, subjectID uint) (models.ExamSubjectQuota, error) {
	var quota models.ExamSubjectQuota
	if err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Where("subject_id = ?", subjectID).
		First(&quota).Error; err != nil {
		return models.ExamSubjectQuota{}, err
	}

	return quota, nil
}
