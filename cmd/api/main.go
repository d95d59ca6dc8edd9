package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proctorly/exam-api/internal/config"
	"github.com/proctorly/exam-api/internal/database"
	"github.com/proctorly/exam-api/internal/handler"
	"github.com/proctorly/exam-api/internal/middleware"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
	"github.com/proctorly/exam-api/internal/router"
	"github.com/proctorly/exam-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Subject{},
		&models.Enrollment{},
		&models.Question{},
		&models.Answer{},
		&models.Exam{},
		&models.ExamSubjectQuota{},
		&models.ExamAttempt{},
		&models.StudentAnswer{},
		&models.AttemptEvent{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	eventRepo := repository.NewAttemptEventRepository(db)
	fixtureRepo := repository.NewFixtureRepository(db)

	selector := service.NewQuotaSelector(questionRepo, logger)

	tokenService := service.NewTokenService(studentRepo, redisClient, cfg.JWTSecret, cfg.SessionTTL, validate, logger)
	examService := service.NewExamService(examRepo, attemptRepo, logger)
	attemptService := service.NewAttemptService(attemptRepo, examRepo, eventRepo, selector, logger)
	answerService := service.NewAnswerService(attemptRepo, examRepo, eventRepo, validate, logger)
	rosterService := service.NewRosterService(studentRepo, validate, logger)
	seedService := service.NewSeedService(fixtureRepo, studentRepo, cfg.SeedEnabled, cfg.AdminToken, validate, logger)

	authHandler := handler.NewAuthHandler(tokenService, validate, logger)
	examHandler := handler.NewExamHandler(examService, attemptService, logger)
	attemptHandler := handler.NewAttemptHandler(attemptService, answerService, logger)
	timerHandler := handler.NewTimerHandler(attemptService, logger)
	rosterHandler := handler.NewRosterHandler(rosterService, cfg.AdminToken, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:    authHandler,
		ExamHandler:    examHandler,
		AttemptHandler: attemptHandler,
		TimerHandler:   timerHandler,
		RosterHandler:  rosterHandler,
		SeedHandler:    seedHandler,
		SessionGuard:   middleware.StudentProtected(cfg.JWTSecret, tokenService),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
