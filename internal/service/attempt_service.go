package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/observability"
	"github.com/proctorly/exam-api/internal/repository"
)

// AttemptService drives the attempt state machine:
// no_attempt -> in_progress -> {finished | time_expired}. There is no
// background sweep; expiry is detected lazily on the next access to an
// in_progress attempt, which finalizes it before any data is served.
type AttemptService interface {
	Start(ctx context.Context, examID, studentID uint) (dto.AttemptResponse, error)
	Get(ctx context.Context, attemptID, studentID uint) (dto.AttemptResponse, error)
	Finish(ctx context.Context, attemptID, studentID uint) (dto.ResultResponse, error)
	Result(ctx context.Context, attemptID, studentID uint) (dto.ResultResponse, error)
	History(ctx context.Context, studentID uint) ([]dto.AttemptSummary, error)
	TimeRemaining(ctx context.Context, attemptID, studentID uint) (time.Duration, string, error)
}

type attemptService struct {
	attempts repository.AttemptRepository
	exams    repository.ExamRepository
	events   repository.AttemptEventRepository
	selector QuotaSelector
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAttemptService constructs an AttemptService instance.
func NewAttemptService(attempts repository.AttemptRepository, exams repository.ExamRepository, events repository.AttemptEventRepository, selector QuotaSelector, logger zerolog.Logger) AttemptService {
	return &attemptService{
		attempts: attempts,
		exams:    exams,
		events:   events,
		selector: selector,
		logger:   logger.With().Str("component", "attempt_service").Logger(),
		now:      time.Now,
	}
}

// Start validates eligibility, draws the question set per subject quota and
// creates the attempt with one answer placeholder per drawn question.
func (s *attemptService) Start(ctx context.Context, examID, studentID uint) (dto.AttemptResponse, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptResponse{}, ErrExamNotFound
		}
		return dto.AttemptResponse{}, err
	}

	now := s.now()
	if !exam.IsOpen(now) {
		return dto.AttemptResponse{}, ErrExamNotOpen
	}

	count, err := s.attempts.CountForExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}
	if int(count) >= exam.AttemptsAllowed {
		return dto.AttemptResponse{}, ErrAttemptsExhausted
	}

	var questions []models.Question
	for _, quota := range exam.Quotas {
		drawn, err := s.selector.Select(ctx, quota)
		if err != nil {
			return dto.AttemptResponse{}, err
		}
		questions = append(questions, drawn...)
	}

	attempt := models.ExamAttempt{
		ExamID:    exam.ID,
		StudentID: studentID,
		StartTime: now,
		Status:    models.AttemptStatusInProgress,
	}

	if err := s.attempts.CreateWithQuestions(ctx, &attempt, questions); err != nil {
		return dto.AttemptResponse{}, err
	}

	s.recordEvent(ctx, attempt.ID, studentID, models.AttemptEventStarted, datatypes.JSONMap{
		"exam_id":        exam.ID,
		"question_count": len(questions),
	})
	observability.AttemptsStarted().Inc()

	s.logger.Info().
		Uint("attempt_id", attempt.ID).
		Uint("exam_id", exam.ID).
		Uint("student_id", studentID).
		Int("questions", len(questions)).
		Msg("attempt started")

	return s.buildLiveResponse(ctx, attempt.ID, now)
}

// Get loads a live attempt for taking the exam. Loading is idempotent: it
// never mutates answer state. A sealed (or just now expired) attempt yields
// ErrAttemptSealed so the caller can serve the result view instead.
func (s *attemptService) Get(ctx context.Context, attemptID, studentID uint) (dto.AttemptResponse, error) {
	attempt, err := s.loadOwned(ctx, attemptID, studentID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	now := s.now()
	if attempt.Status == models.AttemptStatusInProgress && attempt.IsExpired(now) {
		if _, err := s.seal(ctx, attempt, models.AttemptStatusTimeExpired, now); err != nil {
			return dto.AttemptResponse{}, err
		}
		return dto.AttemptResponse{}, ErrAttemptSealed
	}

	if attempt.IsTerminal() {
		return dto.AttemptResponse{}, ErrAttemptSealed
	}

	return s.buildLiveResponse(ctx, attempt.ID, now)
}

// Finish seals the attempt on explicit student submission. Calling it on an
// already sealed attempt is a no-op returning the existing result. If the
// duration elapsed before the submission arrived, the attempt is sealed as
// time_expired instead of finished.
func (s *attemptService) Finish(ctx context.Context, attemptID, studentID uint) (dto.ResultResponse, error) {
	attempt, err := s.loadOwned(ctx, attemptID, studentID)
	if err != nil {
		return dto.ResultResponse{}, err
	}

	now := s.now()
	if attempt.Status == models.AttemptStatusInProgress {
		status := models.AttemptStatusFinished
		if attempt.IsExpired(now) {
			status = models.AttemptStatusTimeExpired
		}

		attempt, err = s.seal(ctx, attempt, status, now)
		if err != nil {
			return dto.ResultResponse{}, err
		}
	}

	return s.buildResultResponse(ctx, attempt)
}

// Result serves the sealed attempt with its per-subject breakdown. A live
// attempt past its duration is finalized first; a live attempt within budget
// yields ErrAttemptStillInProgress so the caller can point back to the exam.
func (s *attemptService) Result(ctx context.Context, attemptID, studentID uint) (dto.ResultResponse, error) {
	attempt, err := s.loadOwned(ctx, attemptID, studentID)
	if err != nil {
		return dto.ResultResponse{}, err
	}

	if attempt.Status == models.AttemptStatusInProgress {
		now := s.now()
		if !attempt.IsExpired(now) {
			return dto.ResultResponse{}, ErrAttemptStillInProgress
		}

		attempt, err = s.seal(ctx, attempt, models.AttemptStatusTimeExpired, now)
		if err != nil {
			return dto.ResultResponse{}, err
		}
	}

	return s.buildResultResponse(ctx, attempt)
}

// History lists the student's attempts, newest first.
func (s *attemptService) History(ctx context.Context, studentID uint) ([]dto.AttemptSummary, error) {
	attempts, err := s.attempts.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.AttemptSummary, 0, len(attempts))
	for _, attempt := range attempts {
		ordinal, err := s.attempts.AttemptOrdinal(ctx, attempt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, dto.NewAttemptSummary(attempt, ordinal))
	}

	return summaries, nil
}

// TimeRemaining reports the countdown value and current status without
// mutating attempt state; the websocket timer polls it every tick.
func (s *attemptService) TimeRemaining(ctx context.Context, attemptID, studentID uint) (time.Duration, string, error) {
	attempt, err := s.loadOwned(ctx, attemptID, studentID)
	if err != nil {
		return 0, "", err
	}

	if attempt.IsTerminal() {
		return 0, attempt.Status, nil
	}

	return attempt.TimeRemaining(s.now()), attempt.Status, nil
}

func (s *attemptService) loadOwned(ctx context.Context, attemptID, studentID uint) (models.ExamAttempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ExamAttempt{}, ErrAttemptNotFound
		}
		return models.ExamAttempt{}, err
	}

	// Ownership failures are indistinguishable from unknown ids.
	if attempt.StudentID != studentID {
		return models.ExamAttempt{}, ErrAttemptNotFound
	}

	return attempt, nil
}

func (s *attemptService) seal(ctx context.Context, attempt models.ExamAttempt, status string, now time.Time) (models.ExamAttempt, error) {
	return sealAttempt(ctx, s.attempts, s.events, s.logger, attempt, status, now)
}

// recordEvent appends to the audit trail; failures are logged, never fatal.
func (s *attemptService) recordEvent(ctx context.Context, attemptID, studentID uint, action string, metadata datatypes.JSONMap) {
	recordAttemptEvent(ctx, s.events, s.logger, attemptID, studentID, action, metadata)
}

func (s *attemptService) buildLiveResponse(ctx context.Context, attemptID uint, now time.Time) (dto.AttemptResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	answers, err := s.attempts.ListAnswers(ctx, attempt.ID)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	ordinal, err := s.attempts.AttemptOrdinal(ctx, attempt)
	if err != nil {
		return dto.AttemptResponse{}, err
	}

	return dto.NewAttemptResponse(attempt, answers, ordinal, now), nil
}

func (s *attemptService) buildResultResponse(ctx context.Context, attempt models.ExamAttempt) (dto.ResultResponse, error) {
	answers, err := s.attempts.ListAnswers(ctx, attempt.ID)
	if err != nil {
		return dto.ResultResponse{}, err
	}

	ordinal, err := s.attempts.AttemptOrdinal(ctx, attempt)
	if err != nil {
		return dto.ResultResponse{}, err
	}

	return dto.NewResultResponse(attempt, answers, ordinal), nil
}
