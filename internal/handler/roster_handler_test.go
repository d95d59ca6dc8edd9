package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/proctorly/exam-api/internal/config"
	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/handler"
	"github.com/proctorly/exam-api/internal/repository"
	"github.com/proctorly/exam-api/internal/router"
	"github.com/proctorly/exam-api/internal/service"
)

func setupRosterApp(t *testing.T) *fiber.App {
	t.Helper()

	db := openHandlerTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	rosterService := service.NewRosterService(repository.NewStudentRepository(db), validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		RosterHandler: handler.NewRosterHandler(rosterService, "admin-token", logger),
	})

	return app
}

func rosterUploadRequest(t *testing.T, csv, token string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("roster", "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/roster/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Admin-Token", token)
	return req
}

func TestRosterHandlerImport(t *testing.T) {
	app := setupRosterApp(t)

	csv := "student_id,first_name,last_name\nab1234,Dana,Ivanova\ncd5678,Petr,Novak\n"
	resp, err := app.Test(rosterUploadRequest(t, csv, "admin-token"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	envelope := struct {
		Success bool                   `json:"success"`
		Data    dto.RosterImportReport `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.Equal(t, 2, envelope.Data.Created)
	require.Equal(t, 0, envelope.Data.Updated)
	require.Empty(t, envelope.Data.Errors)
}

func TestRosterHandlerRejectsBadToken(t *testing.T) {
	app := setupRosterApp(t)

	resp, err := app.Test(rosterUploadRequest(t, "student_id,first_name,last_name\n", "wrong"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRosterHandlerRejectsUnusableFile(t *testing.T) {
	app := setupRosterApp(t)

	resp, err := app.Test(rosterUploadRequest(t, "student_id,first_name\n", "admin-token"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRosterHandlerRequiresFile(t *testing.T) {
	app := setupRosterApp(t)

	req := httptest.NewRequest("POST", "/api/v1/roster/import", nil)
	req.Header.Set("X-Admin-Token", "admin-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
