package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
)

// QuotaSelector draws the question set for a new attempt. Per difficulty tier
// it samples min(requested, available) questions uniformly without
// replacement from the subject's pool; tiers are independent, so a shortage
// in one tier is never compensated from another. The draw is intentionally
// non-deterministic so two attempts rarely share a question set.
type QuotaSelector interface {
	Select(ctx context.Context, quota models.ExamSubjectQuota) ([]models.Question, error)
}

type quotaSelector struct {
	questions repository.QuestionRepository
	rnd       *rand.Rand
	logger    zerolog.Logger
}

// NewQuotaSelector constructs a selector seeded from the clock. Tests may
// pass a fixed source via NewQuotaSelectorWithSource.
func NewQuotaSelector(questions repository.QuestionRepository, logger zerolog.Logger) QuotaSelector {
	return NewQuotaSelectorWithSource(questions, rand.NewSource(time.Now().UnixNano()), logger)
}

// NewQuotaSelectorWithSource constructs a selector with an explicit rand source.
func NewQuotaSelectorWithSource(questions repository.QuestionRepository, source rand.Source, logger zerolog.Logger) QuotaSelector {
	return &quotaSelector{
		questions: questions,
		rnd:       rand.New(source),
		logger:    logger.With().Str("component", "quota_selector").Logger(),
	}
}

func (s *quotaSelector) Select(ctx context.Context, quota models.ExamSubjectQuota) ([]models.Question, error) {
	tiers := []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}

	var selected []models.Question
	for _, tier := range tiers {
		requested := quota.CountFor(tier)
		if requested <= 0 {
			continue
		}

		pool, err := s.questions.ListPool(ctx, quota.SubjectID, tier)
		if err != nil {
			return nil, err
		}

		drawn := s.sample(pool, requested)
		if len(drawn) < requested {
			s.logger.Warn().
				Uint("subject_id", quota.SubjectID).
				Str("difficulty", tier).
				Int("requested", requested).
				Int("available", len(pool)).
				Msg("question pool smaller than quota")
		}

		selected = append(selected, drawn...)
	}

	return selected, nil
}

// sample draws min(count, len(pool)) questions without replacement.
func (s *quotaSelector) sample(pool []models.Question, count int) []models.Question {
	if count >= len(pool) {
		return pool
	}

	drawn := make([]models.Question, 0, count)
	for _, idx := range s.rnd.Perm(len(pool))[:count] {
		drawn = append(drawn, pool[idx])
	}

	return drawn
}
