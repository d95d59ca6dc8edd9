package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/observability"
	"github.com/proctorly/exam-api/internal/repository"
)

// AnswerService stores answer submissions and grades choice questions
// immediately. Each record call is one atomic unit: the selection swap and
// the grading outcome land together or not at all.
type AnswerService interface {
	Record(ctx context.Context, answerID, studentID uint, payload dto.RecordAnswerRequest) (dto.RecordAnswerResponse, error)
}

type answerService struct {
	attempts  repository.AttemptRepository
	exams     repository.ExamRepository
	events    repository.AttemptEventRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAnswerService constructs an AnswerService instance.
func NewAnswerService(attempts repository.AttemptRepository, exams repository.ExamRepository, events repository.AttemptEventRepository, validate *validator.Validate, logger zerolog.Logger) AnswerService {
	return &answerService{
		attempts:  attempts,
		exams:     exams,
		events:    events,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "answer_service").Logger(),
		now:       time.Now,
	}
}

func (s *answerService) Record(ctx context.Context, answerID, studentID uint, payload dto.RecordAnswerRequest) (dto.RecordAnswerResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RecordAnswerResponse{}, err
	}

	answer, err := s.attempts.GetAnswerByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordAnswerResponse{}, ErrAnswerNotFound
		}
		return dto.RecordAnswerResponse{}, err
	}

	// Wrong owner and already-sealed attempts get the same answer.
	attempt := answer.Attempt
	if attempt.StudentID != studentID || attempt.Status != models.AttemptStatusInProgress {
		return dto.RecordAnswerResponse{}, ErrAttemptNotActive
	}

	if attempt.IsExpired(s.now()) {
		if _, err := sealAttempt(ctx, s.attempts, s.events, s.logger, attempt, models.AttemptStatusTimeExpired, s.now()); err != nil {
			return dto.RecordAnswerResponse{}, err
		}
		return dto.RecordAnswerResponse{}, ErrAttemptExpired
	}

	if answer.Question.Type == models.QuestionTypeOpen {
		return s.recordOpen(ctx, answer, payload.AnswerText)
	}

	return s.recordChoice(ctx, answer, payload.AnswerIDs)
}

// recordOpen overwrites the free-text response. Open answers stay ungraded
// until manual review, which is outside auto-scoring.
func (s *answerService) recordOpen(ctx context.Context, answer models.StudentAnswer, text string) (dto.RecordAnswerResponse, error) {
	answer.AnswerText = strings.TrimSpace(s.sanitizer.Sanitize(text))
	answer.Grading = models.GradingUngraded
	answer.PointsEarned = 0

	if err := s.attempts.SaveOpenAnswer(ctx, &answer); err != nil {
		return dto.RecordAnswerResponse{}, err
	}

	observability.AnswersRecorded().WithLabelValues(answer.Grading).Inc()

	return dto.RecordAnswerResponse{
		ID:       answer.ID,
		Grading:  answer.Grading,
		Answered: answer.AnswerText != "",
	}, nil
}

// recordChoice replaces the selection with exactly the submitted set and
// grades it all-or-nothing: correct iff the submitted set equals the
// question's correct set and is non-empty. Ids that do not belong to the
// question are dropped, matching how resubmission overwrites rather than
// merges.
func (s *answerService) recordChoice(ctx context.Context, answer models.StudentAnswer, submittedIDs []uint) (dto.RecordAnswerResponse, error) {
	submitted := make(map[uint]struct{}, len(submittedIDs))
	for _, id := range submittedIDs {
		submitted[id] = struct{}{}
	}

	selected := make([]models.Answer, 0, len(submitted))
	for _, candidate := range answer.Question.Answers {
		if _, ok := submitted[candidate.ID]; ok {
			selected = append(selected, candidate)
		}
	}

	correct := answer.Question.CorrectAnswerIDs()
	isCorrect := len(selected) > 0 && len(selected) == len(correct)
	if isCorrect {
		for _, choice := range selected {
			if _, ok := correct[choice.ID]; !ok {
				isCorrect = false
				break
			}
		}
	}

	if isCorrect {
		answer.Grading = models.GradingCorrect
		answer.PointsEarned = s.pointsFor(ctx, answer)
	} else {
		answer.Grading = models.GradingIncorrect
		answer.PointsEarned = 0
	}

	if err := s.attempts.ReplaceSelection(ctx, &answer, selected); err != nil {
		return dto.RecordAnswerResponse{}, err
	}

	observability.AnswersRecorded().WithLabelValues(answer.Grading).Inc()

	return dto.RecordAnswerResponse{
		ID:       answer.ID,
		Grading:  answer.Grading,
		Answered: len(selected) > 0,
	}, nil
}

// pointsFor looks up the tier point value from the (exam, subject) quota. A
// missing quota row is a data inconsistency that degrades to zero points
// rather than failing the submission.
func (s *answerService) pointsFor(ctx context.Context, answer models.StudentAnswer) int {
	quota, err := s.exams.GetQuota(ctx, answer.Attempt.ExamID, answer.Question.SubjectID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Uint("answer_id", answer.ID).Msg("quota lookup failed")
		}
		return 0
	}

	return quota.PointsFor(answer.Question.Difficulty)
}
