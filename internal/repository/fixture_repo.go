package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/models"
)

// SubjectFixture pairs a subject with its question pool and optional quota.
type SubjectFixture struct {
	Subject   models.Subject
	Questions []models.Question
	Quota     *models.ExamSubjectQuota
}

// ExamFixture is a complete course/subject/question/exam graph created as one
// unit, used by the seeding tools.
type ExamFixture struct {
	Course     models.Course
	Subjects   []SubjectFixture
	Exam       models.Exam
	StudentIDs []uint
}

// FixtureRepository creates seeded exam configurations.
type FixtureRepository interface {
	CreateExamFixture(ctx context.Context, fixture *ExamFixture) error
}

type fixtureRepository struct {
	db *gorm.DB
}

// NewFixtureRepository instantiates the repository.
func NewFixtureRepository(db *gorm.DB) FixtureRepository {
	return &fixtureRepository{db: db}
}

// CreateExamFixture persists the whole graph in one transaction: course,
// subjects, question pools with answers, the exam with its quotas, and
// enrollments for the given students.
func (r *fixtureRepository) CreateExamFixture(ctx context.Context, fixture *ExamFixture) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&fixture.Course).Error; err != nil {
			return err
		}

		quotas := make([]models.ExamSubjectQuota, 0, len(fixture.Subjects))
		for i := range fixture.Subjects {
			entry := &fixture.Subjects[i]
			entry.Subject.CourseID = fixture.Course.ID
			if err := tx.Create(&entry.Subject).Error; err != nil {
				return err
			}

			for j := range entry.Questions {
				entry.Questions[j].SubjectID = entry.Subject.ID
			}
			if len(entry.Questions) > 0 {
				if err := tx.Create(&entry.Questions).Error; err != nil {
					return err
				}
			}

			if entry.Quota != nil {
				entry.Quota.SubjectID = entry.Subject.ID
				quotas = append(quotas, *entry.Quota)
			}
		}

		fixture.Exam.CourseID = fixture.Course.ID
		fixture.Exam.Quotas = quotas
		if err := tx.Create(&fixture.Exam).Error; err != nil {
			return err
		}

		for _, studentID := range fixture.StudentIDs {
			enrollment := models.Enrollment{CourseID: fixture.Course.ID, StudentID: studentID}
			if err := tx.Create(&enrollment).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
