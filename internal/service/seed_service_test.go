package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
)

func seedPayload(now time.Time) dto.SeedExamRequest {
	return dto.SeedExamRequest{
		CourseName:      "Demo Course",
		ExamName:        "Demo Exam",
		OpenTime:        now,
		CloseTime:       now.Add(2 * time.Hour),
		DurationMinutes: 45,
		AttemptsAllowed: 2,
		Subjects: []dto.SeedSubjectRequest{
			{
				Name: "Logic",
				Questions: []dto.SeedQuestionRequest{
					{
						BodyMD:     "p and q?",
						Difficulty: models.DifficultyEasy,
						Type:       models.QuestionTypeSingle,
						Answers: []dto.SeedAnswerRequest{
							{TextMD: "true", IsCorrect: true},
							{TextMD: "false"},
						},
					},
				},
				Quota: &dto.SeedQuotaRequest{EasyCount: 1, EasyPoints: 1, MediumPoints: 2, HardPoints: 3},
			},
		},
	}
}

func newSeedTestService(t *testing.T, enabled bool) (SeedService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSeedService(repository.NewFixtureRepository(db), repository.NewStudentRepository(db), enabled, "admin-token", validate, testLogger())
	return svc, db
}

func TestSeedServiceCreatesCompleteFixture(t *testing.T) {
	svc, db := newSeedTestService(t, true)
	ctx := context.Background()

	student := models.Student{StudentID: "AB1234", FirstName: "Dana", LastName: "Ivanova", Active: true}
	require.NoError(t, db.Create(&student).Error)

	payload := seedPayload(time.Now().UTC())
	payload.EnrollStudents = []string{"AB1234"}

	response, err := svc.SeedExam(ctx, "admin-token", payload)
	require.NoError(t, err)
	require.NotZero(t, response.ExamID)
	require.Equal(t, 1, response.SubjectCount)
	require.Equal(t, 1, response.QuestionCount)
	require.Equal(t, 1, response.Enrolled)

	var exam models.Exam
	require.NoError(t, db.Preload("Quotas").First(&exam, response.ExamID).Error)
	require.Equal(t, "Demo Exam", exam.Name)
	require.Len(t, exam.Quotas, 1)
	require.Equal(t, 1, exam.Quotas[0].EasyCount)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("course_id = ? AND student_id = ?", response.CourseID, student.ID).First(&enrollment).Error)

	var answers int64
	require.NoError(t, db.Model(&models.Answer{}).Count(&answers).Error)
	require.EqualValues(t, 2, answers)
}

func TestSeedServiceGuards(t *testing.T) {
	disabled, _ := newSeedTestService(t, false)
	_, err := disabled.SeedExam(context.Background(), "admin-token", seedPayload(time.Now()))
	require.ErrorIs(t, err, ErrSeedDisabled)

	svc, _ := newSeedTestService(t, true)
	_, err = svc.SeedExam(context.Background(), "wrong", seedPayload(time.Now()))
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedServiceUnknownEnrollment(t *testing.T) {
	svc, _ := newSeedTestService(t, true)

	payload := seedPayload(time.Now().UTC())
	payload.EnrollStudents = []string{"NOPE99"}

	_, err := svc.SeedExam(context.Background(), "admin-token", payload)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestSeedServiceValidatesWindow(t *testing.T) {
	svc, _ := newSeedTestService(t, true)

	payload := seedPayload(time.Now().UTC())
	payload.CloseTime = payload.OpenTime.Add(-time.Hour)

	_, err := svc.SeedExam(context.Background(), "admin-token", payload)
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}
