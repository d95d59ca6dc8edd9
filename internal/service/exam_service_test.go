package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
)

func TestExamServiceListEligible(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	fixture := seedExamFixture(t, db, now)

	// A closed exam on the same course and an open exam on a course the
	// student is not enrolled in must both stay invisible.
	closed := models.Exam{
		CourseID:        fixture.exam.CourseID,
		Name:            "Last Semester",
		OpenTime:        now.Add(-48 * time.Hour),
		CloseTime:       now.Add(-24 * time.Hour),
		DurationMinutes: 60,
		AttemptsAllowed: 1,
	}
	require.NoError(t, db.Create(&closed).Error)

	otherCourse := models.Course{Name: "Physics"}
	require.NoError(t, db.Create(&otherCourse).Error)
	foreign := models.Exam{
		CourseID:        otherCourse.ID,
		Name:            "Foreign",
		OpenTime:        now.Add(-time.Hour),
		CloseTime:       now.Add(time.Hour),
		DurationMinutes: 60,
		AttemptsAllowed: 1,
	}
	require.NoError(t, db.Create(&foreign).Error)

	svc := NewExamService(repository.NewExamRepository(db), repository.NewAttemptRepository(db), testLogger()).(*examService)
	svc.now = func() time.Time { return now }

	eligible, err := svc.ListEligible(context.Background(), fixture.student.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)

	entry := eligible[0]
	require.Equal(t, fixture.exam.ID, entry.Exam.ID)
	require.Equal(t, "Discrete Mathematics", entry.Exam.CourseName)
	require.Equal(t, 4, entry.Exam.QuestionCount)
	require.Equal(t, 7, entry.Exam.MaxScore)
	require.Equal(t, 0, entry.AttemptsMade)
	require.True(t, entry.CanTake)
	require.Nil(t, entry.InProgressAttemptID)
}

func TestExamServiceListEligibleTracksAttempts(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	fixture := seedExamFixture(t, db, now)

	examSvc := NewExamService(repository.NewExamRepository(db), repository.NewAttemptRepository(db), testLogger()).(*examService)
	examSvc.now = func() time.Time { return now }

	attemptSvc, _ := buildAttemptServices(db)
	attemptSvc.now = func() time.Time { return now }

	ctx := context.Background()
	live, err := attemptSvc.Start(ctx, fixture.exam.ID, fixture.student.ID)
	require.NoError(t, err)

	eligible, err := examSvc.ListEligible(ctx, fixture.student.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, 1, eligible[0].AttemptsMade)
	require.True(t, eligible[0].CanTake)
	require.NotNil(t, eligible[0].InProgressAttemptID)
	require.Equal(t, live.ID, *eligible[0].InProgressAttemptID)

	// Exhaust the second and last allowed attempt.
	_, err = attemptSvc.Finish(ctx, live.ID, fixture.student.ID)
	require.NoError(t, err)
	second, err := attemptSvc.Start(ctx, fixture.exam.ID, fixture.student.ID)
	require.NoError(t, err)
	_, err = attemptSvc.Finish(ctx, second.ID, fixture.student.ID)
	require.NoError(t, err)

	eligible, err = examSvc.ListEligible(ctx, fixture.student.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, 2, eligible[0].AttemptsMade)
	require.False(t, eligible[0].CanTake)
	require.Nil(t, eligible[0].InProgressAttemptID)
}
