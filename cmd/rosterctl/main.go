package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/proctorly/exam-api/internal/database"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
	"github.com/proctorly/exam-api/internal/service"
)

// rosterctl imports a student roster CSV straight into the database,
// for operators who prefer a shell over the upload endpoint.
func main() {
	var (
		path    = flag.String("file", "", "path to the roster CSV file")
		dsn     = flag.String("database", os.Getenv("EXAM_DATABASE_URL"), "postgres connection string")
		timeout = flag.Duration("timeout", 30*time.Second, "import timeout")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *path == "" {
		logger.Fatal().Msg("usage: rosterctl -file roster.csv [-database dsn]")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *path).Msg("failed to read roster file")
	}

	db, err := database.ConnectPostgres(*dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.Student{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	roster := service.NewRosterService(repository.NewStudentRepository(db), validate, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := roster.Import(ctx, data)
	if err != nil {
		logger.Fatal().Err(err).Msg("roster import failed")
	}

	for _, rowErr := range report.Errors {
		logger.Warn().Int("line", rowErr.Line).Str("reason", rowErr.Message).Msg("row skipped")
	}

	logger.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", len(report.Errors)).
		Msg("roster import complete")
}
