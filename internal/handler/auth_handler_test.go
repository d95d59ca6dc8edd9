package handler_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/proctorly/exam-api/internal/config"
	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/handler"
	"github.com/proctorly/exam-api/internal/middleware"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
	"github.com/proctorly/exam-api/internal/router"
	"github.com/proctorly/exam-api/internal/service"
)

func setupAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	db := openHandlerTestDB(t)
	student := models.Student{StudentID: "AB1234", FirstName: "Dana", LastName: "Ivanova", Active: true}
	require.NoError(t, db.Create(&student).Error)

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	tokenService := service.NewTokenService(repository.NewStudentRepository(db), redisClient, "secret", time.Hour, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AuthHandler:  handler.NewAuthHandler(tokenService, validate, logger),
		SessionGuard: middleware.StudentProtected("secret", tokenService),
	})

	return app
}

func TestAuthHandlerLoginAndLogout(t *testing.T) {
	app := setupAuthApp(t)

	var login dto.LoginResponse
	status := doJSON(t, app, "POST", "/api/v1/auth/login", dto.LoginRequest{StudentID: "ab1234"}, &login)
	require.Equal(t, fiber.StatusOK, status)
	require.NotEmpty(t, login.Token)
	require.Equal(t, "AB1234", login.Student.StudentID)

	req := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The token is now revoked even though the JWT itself is still valid.
	req = httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	app := setupAuthApp(t)

	status := doJSON(t, app, "POST", "/api/v1/auth/login", dto.LoginRequest{StudentID: "NOPE99"}, nil)
	require.Equal(t, fiber.StatusNotFound, status)

	status = doJSON(t, app, "POST", "/api/v1/auth/login", dto.LoginRequest{}, nil)
	require.Equal(t, fiber.StatusBadRequest, status)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/auth/logout", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
