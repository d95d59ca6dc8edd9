package handler_test

import (
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/proctorly/exam-api/internal/config"
	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/handler"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
	"github.com/proctorly/exam-api/internal/router"
	"github.com/proctorly/exam-api/internal/service"
)

func setupSeedApp(t *testing.T, enabled bool) *fiber.App {
	t.Helper()

	db := openHandlerTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	seedService := service.NewSeedService(repository.NewFixtureRepository(db), repository.NewStudentRepository(db), enabled, "admin-token", validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		SeedHandler: handler.NewSeedHandler(seedService, logger),
	})

	return app
}

func seedExamBody(now time.Time) dto.SeedExamRequest {
	return dto.SeedExamRequest{
		CourseName:      "Demo Course",
		ExamName:        "Demo Exam",
		OpenTime:        now,
		CloseTime:       now.Add(time.Hour),
		DurationMinutes: 30,
		AttemptsAllowed: 1,
		Subjects: []dto.SeedSubjectRequest{
			{
				Name: "Logic",
				Questions: []dto.SeedQuestionRequest{
					{
						BodyMD:     "p or q?",
						Difficulty: models.DifficultyEasy,
						Type:       models.QuestionTypeSingle,
						Answers:    []dto.SeedAnswerRequest{{TextMD: "yes", IsCorrect: true}},
					},
				},
				Quota: &dto.SeedQuotaRequest{EasyCount: 1, EasyPoints: 1},
			},
		},
	}
}

func seedRequestWithToken(t *testing.T, app *fiber.App, token string, payload dto.SeedExamRequest, out interface{}) int {
	t.Helper()
	return doJSONWithHeaders(t, app, "POST", "/api/v1/seed/exams", payload, map[string]string{"X-Admin-Token": token}, out)
}

func TestSeedHandlerCreatesFixture(t *testing.T) {
	app := setupSeedApp(t, true)

	var response dto.SeedExamResponse
	status := seedRequestWithToken(t, app, "admin-token", seedExamBody(time.Now().UTC()), &response)
	require.Equal(t, fiber.StatusCreated, status)
	require.NotZero(t, response.ExamID)
	require.Equal(t, 1, response.QuestionCount)
}

func TestSeedHandlerGuards(t *testing.T) {
	disabled := setupSeedApp(t, false)
	status := seedRequestWithToken(t, disabled, "admin-token", seedExamBody(time.Now().UTC()), nil)
	require.Equal(t, fiber.StatusForbidden, status)

	app := setupSeedApp(t, true)
	status = seedRequestWithToken(t, app, "wrong", seedExamBody(time.Now().UTC()), nil)
	require.Equal(t, fiber.StatusUnauthorized, status)

	payload := seedExamBody(time.Now().UTC())
	payload.Subjects = nil
	status = seedRequestWithToken(t, app, "admin-token", payload, nil)
	require.Equal(t, fiber.StatusBadRequest, status)
}
