package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided admin token is invalid.
	ErrSeedUnauthorized = errors.New("invalid admin token")
)

// SeedService creates complete exam fixtures: a course, subject question
// pools, the exam window with its quotas and optional enrollments. Meant for
// staging and demo environments, guarded by an admin token.
type SeedService interface {
	SeedExam(ctx context.Context, token string, payload dto.SeedExamRequest) (dto.SeedExamResponse, error)
}

type seedService struct {
	fixtures  repository.FixtureRepository
	students  repository.StudentRepository
	enabled   bool
	token     string
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(fixtures repository.FixtureRepository, students repository.StudentRepository, enabled bool, token string, validate *validator.Validate, logger zerolog.Logger) SeedService {
	return &seedService{
		fixtures:  fixtures,
		students:  students,
		enabled:   enabled,
		token:     token,
		validator: validate,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedExam(ctx context.Context, token string, payload dto.SeedExamRequest) (dto.SeedExamResponse, error) {
	if !s.enabled {
		return dto.SeedExamResponse{}, ErrSeedDisabled
	}
	if s.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return dto.SeedExamResponse{}, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SeedExamResponse{}, err
	}

	fixture := repository.ExamFixture{
		Course: models.Course{Name: payload.CourseName},
		Exam: models.Exam{
			Name:            payload.ExamName,
			OpenTime:        payload.OpenTime,
			CloseTime:       payload.CloseTime,
			DurationMinutes: payload.DurationMinutes,
			AttemptsAllowed: payload.AttemptsAllowed,
		},
	}

	questionCount := 0
	for _, subject := range payload.Subjects {
		entry := repository.SubjectFixture{
			Subject: models.Subject{Name: subject.Name},
		}

		for _, question := range subject.Questions {
			answers := make([]models.Answer, 0, len(question.Answers))
			for _, answer := range question.Answers {
				answers = append(answers, models.Answer{TextMD: answer.TextMD, IsCorrect: answer.IsCorrect})
			}
			entry.Questions = append(entry.Questions, models.Question{
				BodyMD:     question.BodyMD,
				Difficulty: question.Difficulty,
				Type:       question.Type,
				Answers:    answers,
			})
			questionCount++
		}

		if subject.Quota != nil {
			entry.Quota = &models.ExamSubjectQuota{
				EasyCount:    subject.Quota.EasyCount,
				MediumCount:  subject.Quota.MediumCount,
				HardCount:    subject.Quota.HardCount,
				EasyPoints:   subject.Quota.EasyPoints,
				MediumPoints: subject.Quota.MediumPoints,
				HardPoints:   subject.Quota.HardPoints,
			}
		}

		fixture.Subjects = append(fixture.Subjects, entry)
	}

	for _, externalID := range payload.EnrollStudents {
		student, err := s.students.GetByStudentID(ctx, externalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SeedExamResponse{}, ErrStudentNotFound
			}
			return dto.SeedExamResponse{}, err
		}
		fixture.StudentIDs = append(fixture.StudentIDs, student.ID)
	}

	if err := s.fixtures.CreateExamFixture(ctx, &fixture); err != nil {
		return dto.SeedExamResponse{}, err
	}

	s.logger.Info().
		Uint("exam_id", fixture.Exam.ID).
		Int("questions", questionCount).
		Msg("exam fixture seeded")

	return dto.SeedExamResponse{
		CourseID:      fixture.Course.ID,
		ExamID:        fixture.Exam.ID,
		SubjectCount:  len(fixture.Subjects),
		QuestionCount: questionCount,
		Enrolled:      len(fixture.StudentIDs),
	}, nil
}
