package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/observability"
	"github.com/proctorly/exam-api/internal/repository"
)

// sealAttempt transitions an in_progress attempt to a terminal status and is
// shared by every path that detects expiry. The repository's status guard
// makes a concurrent double-finalize a no-op instead of a double count.
func sealAttempt(ctx context.Context, attempts repository.AttemptRepository, events repository.AttemptEventRepository, logger zerolog.Logger, attempt models.ExamAttempt, status string, now time.Time) (models.ExamAttempt, error) {
	sealed, err := attempts.Finalize(ctx, attempt.ID, status, now, attempt.Exam.MaxScore())
	if err != nil {
		return models.ExamAttempt{}, err
	}

	action := models.AttemptEventFinished
	if status == models.AttemptStatusTimeExpired {
		action = models.AttemptEventExpired
	}
	recordAttemptEvent(ctx, events, logger, sealed.ID, sealed.StudentID, action, datatypes.JSONMap{
		"score":     sealed.Score,
		"max_score": sealed.MaxScore,
	})
	observability.AttemptsFinalized().WithLabelValues(sealed.Status).Inc()

	logger.Info().
		Uint("attempt_id", sealed.ID).
		Str("status", sealed.Status).
		Int("score", sealed.Score).
		Int("max_score", sealed.MaxScore).
		Msg("attempt sealed")

	return sealed, nil
}

func recordAttemptEvent(ctx context.Context, events repository.AttemptEventRepository, logger zerolog.Logger, attemptID, studentID uint, action string, metadata datatypes.JSONMap) {
	event := models.AttemptEvent{
		AttemptID: attemptID,
		StudentID: studentID,
		Action:    action,
		Metadata:  metadata,
	}
	if err := events.Create(ctx, &event); err != nil {
		logger.Warn().Err(err).Str("action", action).Msg("failed to record attempt event")
	}
}
