package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/repository"
)

// ExamService lists the exams a student may currently take.
type ExamService interface {
	ListEligible(ctx context.Context, studentID uint) ([]dto.EligibleExamResponse, error)
}

type examService struct {
	exams    repository.ExamRepository
	attempts repository.AttemptRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExamService constructs an ExamService instance.
func NewExamService(exams repository.ExamRepository, attempts repository.AttemptRepository, logger zerolog.Logger) ExamService {
	return &examService{
		exams:    exams,
		attempts: attempts,
		logger:   logger.With().Str("component", "exam_service").Logger(),
		now:      time.Now,
	}
}

// ListEligible returns every open exam on the student's enrolled courses,
// annotated with how many attempts were made, whether another try is allowed
// and the id of a resumable in-progress attempt, if any.
func (s *examService) ListEligible(ctx context.Context, studentID uint) ([]dto.EligibleExamResponse, error) {
	exams, err := s.exams.ListOpenForStudent(ctx, studentID, s.now())
	if err != nil {
		return nil, err
	}

	eligible := make([]dto.EligibleExamResponse, 0, len(exams))
	for _, exam := range exams {
		count, err := s.attempts.CountForExamAndStudent(ctx, exam.ID, studentID)
		if err != nil {
			return nil, err
		}

		entry := dto.EligibleExamResponse{
			Exam:         dto.NewExamSummary(exam),
			AttemptsMade: int(count),
			CanTake:      int(count) < exam.AttemptsAllowed,
		}

		inProgress, err := s.attempts.FindInProgress(ctx, exam.ID, studentID)
		switch {
		case err == nil:
			id := inProgress.ID
			entry.InProgressAttemptID = &id
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no live attempt
		default:
			return nil, err
		}

		eligible = append(eligible, entry)
	}

	return eligible, nil
}
