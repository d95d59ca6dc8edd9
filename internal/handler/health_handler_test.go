package handler_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/proctorly/exam-api/internal/config"
	"github.com/proctorly/exam-api/internal/handler"
	"github.com/proctorly/exam-api/internal/router"
)

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{AppName: "exam-api", AppEnv: "test"}, router.Dependencies{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "exam-api", resp.Header.Get("X-Application"))

	envelope := struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.Equal(t, "ok", envelope.Data.Status)
	require.Equal(t, "exam-api", envelope.Data.Service)
	require.Equal(t, "test", envelope.Data.Environment)
}
