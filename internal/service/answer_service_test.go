package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/models"
)

func startFixtureAttempt(t *testing.T) (*attemptService, *answerService, examFixture, dto.AttemptResponse, time.Time) {
	t.Helper()

	db := openTestDB(t)
	now := time.Now().UTC()
	fixture := seedExamFixture(t, db, now)
	attemptSvc, answerSvc := buildAttemptServices(db)
	attemptSvc.now = func() time.Time { return now }
	answerSvc.now = func() time.Time { return now.Add(time.Minute) }

	attempt, err := attemptSvc.Start(context.Background(), fixture.exam.ID, fixture.student.ID)
	require.NoError(t, err)

	return attemptSvc, answerSvc, fixture, attempt, now
}

func TestAnswerServiceGradesSingleChoice(t *testing.T) {
	_, svc, fixture, attempt, _ := startFixtureAttempt(t)
	ctx := context.Background()
	state := answerStateFor(t, attempt, fixture.easy1.ID)

	correctID := fixture.easy1.Answers[0].ID
	wrongID := fixture.easy1.Answers[1].ID

	response, err := svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{AnswerIDs: []uint{correctID}})
	require.NoError(t, err)
	require.Equal(t, models.GradingCorrect, response.Grading)
	require.True(t, response.Answered)

	// Resubmission overwrites both the selection and the grading.
	response, err = svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{AnswerIDs: []uint{wrongID}})
	require.NoError(t, err)
	require.Equal(t, models.GradingIncorrect, response.Grading)

	stored, err := svc.attempts.GetAnswerByID(ctx, state.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.PointsEarned)
	require.Len(t, stored.Selected, 1)
	require.Equal(t, wrongID, stored.Selected[0].ID)
}

func TestAnswerServiceAwardsTierPoints(t *testing.T) {
	_, svc, fixture, attempt, _ := startFixtureAttempt(t)
	ctx := context.Background()

	easyState := answerStateFor(t, attempt, fixture.easy1.ID)
	_, err := svc.Record(ctx, easyState.ID, fixture.student.ID, dto.RecordAnswerRequest{
		AnswerIDs: []uint{fixture.easy1.Answers[0].ID},
	})
	require.NoError(t, err)

	stored, err := svc.attempts.GetAnswerByID(ctx, easyState.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.PointsEarned)

	multiState := answerStateFor(t, attempt, fixture.multi.ID)
	_, err = svc.Record(ctx, multiState.ID, fixture.student.ID, dto.RecordAnswerRequest{
		AnswerIDs: []uint{fixture.multi.Answers[0].ID, fixture.multi.Answers[1].ID},
	})
	require.NoError(t, err)

	stored, err = svc.attempts.GetAnswerByID(ctx, multiState.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.PointsEarned)
}

func TestAnswerServiceMultipleChoiceNeedsExactSet(t *testing.T) {
	_, svc, fixture, attempt, _ := startFixtureAttempt(t)
	ctx := context.Background()
	state := answerStateFor(t, attempt, fixture.multi.ID)

	correct1 := fixture.multi.Answers[0].ID
	correct2 := fixture.multi.Answers[1].ID
	wrong := fixture.multi.Answers[2].ID

	// A strict subset of the correct set earns nothing.
	response, err := svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{AnswerIDs: []uint{correct1}})
	require.NoError(t, err)
	require.Equal(t, models.GradingIncorrect, response.Grading)

	// Both correct plus a wrong one earns nothing either.
	response, err = svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{AnswerIDs: []uint{correct1, correct2, wrong}})
	require.NoError(t, err)
	require.Equal(t, models.GradingIncorrect, response.Grading)

	response, err = svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{AnswerIDs: []uint{correct2, correct1}})
	require.NoError(t, err)
	require.Equal(t, models.GradingCorrect, response.Grading)
}

func TestAnswerServiceEmptySelectionClearsAnswer(t *testing.T) {
	_, svc, fixture, attempt, _ := startFixtureAttempt(t)
	ctx := context.Background()
	state := answerStateFor(t, attempt, fixture.easy1.ID)

	_, err := svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{
		AnswerIDs: []uint{fixture.easy1.Answers[0].ID},
	})
	require.NoError(t, err)

	response, err := svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{})
	require.NoError(t, err)
	require.Equal(t, models.GradingIncorrect, response.Grading)
	require.False(t, response.Answered)

	stored, err := svc.attempts.GetAnswerByID(ctx, state.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Selected)
	require.Equal(t, 0, stored.PointsEarned)
}

func TestAnswerServiceIgnoresForeignChoiceIDs(t *testing.T) {
	_, svc, fixture, attempt, _ := startFixtureAttempt(t)
	ctx := context.Background()
	state := answerStateFor(t, attempt, fixture.easy1.ID)

	// An id belonging to another question is dropped, leaving an empty
	// selection.
	response, err := svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{
		AnswerIDs: []uint{fixture.multi.Answers[0].ID},
	})
	require.NoError(t, err)
	require.Equal(t, models.GradingIncorrect, response.Grading)
	require.False(t, response.Answered)
}

func TestAnswerServiceOpenAnswerStaysUngraded(t *testing.T) {
	_, svc, fixture, attempt, _ := startFixtureAttempt(t)
	ctx := context.Background()
	state := answerStateFor(t, attempt, fixture.open.ID)

	response, err := svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{
		AnswerText: "  QED <script>alert(1)</script>  ",
	})
	require.NoError(t, err)
	require.Equal(t, models.GradingUngraded, response.Grading)
	require.True(t, response.Answered)

	stored, err := svc.attempts.GetAnswerByID(ctx, state.ID)
	require.NoError(t, err)
	require.Equal(t, "QED", stored.AnswerText)
	require.Equal(t, 0, stored.PointsEarned)
	require.Nil(t, stored.IsCorrect())
}

func TestAnswerServiceRejectsSealedAttempt(t *testing.T) {
	attemptSvc, svc, fixture, attempt, _ := startFixtureAttempt(t)
	ctx := context.Background()

	_, err := attemptSvc.Finish(ctx, attempt.ID, fixture.student.ID)
	require.NoError(t, err)

	state := answerStateFor(t, attempt, fixture.easy1.ID)
	_, err = svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{
		AnswerIDs: []uint{fixture.easy1.Answers[0].ID},
	})
	require.ErrorIs(t, err, ErrAttemptNotActive)
}

func TestAnswerServiceRejectsForeignStudent(t *testing.T) {
	_, svc, fixture, attempt, _ := startFixtureAttempt(t)
	state := answerStateFor(t, attempt, fixture.easy1.ID)

	_, err := svc.Record(context.Background(), state.ID, fixture.student.ID+100, dto.RecordAnswerRequest{
		AnswerIDs: []uint{fixture.easy1.Answers[0].ID},
	})
	require.ErrorIs(t, err, ErrAttemptNotActive)
}

func TestAnswerServiceSealsExpiredAttemptOnWrite(t *testing.T) {
	attemptSvc, svc, fixture, attempt, now := startFixtureAttempt(t)
	ctx := context.Background()

	svc.now = func() time.Time { return now.Add(61 * time.Minute) }

	state := answerStateFor(t, attempt, fixture.easy1.ID)
	_, err := svc.Record(ctx, state.ID, fixture.student.ID, dto.RecordAnswerRequest{
		AnswerIDs: []uint{fixture.easy1.Answers[0].ID},
	})
	require.ErrorIs(t, err, ErrAttemptExpired)

	// The late write sealed the attempt; its result is now served.
	attemptSvc.now = func() time.Time { return now.Add(61 * time.Minute) }
	result, err := attemptSvc.Result(ctx, attempt.ID, fixture.student.ID)
	require.NoError(t, err)
	require.Equal(t, models.AttemptStatusTimeExpired, result.Status)
	require.Equal(t, 0, result.Score)
}

func TestAnswerServiceUnknownAnswer(t *testing.T) {
	_, svc, fixture, _, _ := startFixtureAttempt(t)

	_, err := svc.Record(context.Background(), 9999, fixture.student.ID, dto.RecordAnswerRequest{})
	require.ErrorIs(t, err, ErrAnswerNotFound)
}
