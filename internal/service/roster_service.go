package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/repository"
)

// ErrRosterFormat indicates the uploaded file is not a usable spreadsheet.
var ErrRosterFormat = errors.New("roster file is not a readable csv")

var rosterRequiredColumns = []string{"student_id", "first_name", "last_name"}

// RosterService bulk-imports the student roster from a tabular file. Rows
// are upserted by student_id; broken rows are reported per line and never
// abort the rest of the import.
type RosterService interface {
	Import(ctx context.Context, data []byte) (dto.RosterImportReport, error)
}

type rosterService struct {
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRosterService constructs a RosterService instance.
func NewRosterService(students repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) RosterService {
	return &rosterService{
		students:  students,
		validator: validate,
		logger:    logger.With().Str("component", "roster_service").Logger(),
	}
}

func (s *rosterService) Import(ctx context.Context, data []byte) (dto.RosterImportReport, error) {
	kind := mimetype.Detect(data)
	if !kind.Is("text/csv") && !kind.Is("text/plain") {
		return dto.RosterImportReport{}, fmt.Errorf("%w: got %s", ErrRosterFormat, kind.String())
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return dto.RosterImportReport{}, fmt.Errorf("%w: %v", ErrRosterFormat, err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	for _, required := range rosterRequiredColumns {
		if _, ok := columns[required]; !ok {
			return dto.RosterImportReport{}, fmt.Errorf("%w: missing column %q", ErrRosterFormat, required)
		}
	}

	report := dto.RosterImportReport{Errors: []dto.RosterRowError{}}
	line := 1

	for {
		line++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Errors = append(report.Errors, dto.RosterRowError{Line: line, Message: err.Error()})
			continue
		}

		student, rowErr := s.buildStudent(columns, record)
		if rowErr != "" {
			report.Errors = append(report.Errors, dto.RosterRowError{Line: line, Message: rowErr})
			continue
		}

		_, err = s.students.GetByStudentID(ctx, student.StudentID)
		existed := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RosterImportReport{}, err
		}

		if err := s.students.Upsert(ctx, &student); err != nil {
			report.Errors = append(report.Errors, dto.RosterRowError{Line: line, Message: err.Error()})
			continue
		}

		if existed {
			report.Updated++
		} else {
			report.Created++
		}
	}

	s.logger.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("errors", len(report.Errors)).
		Msg("roster imported")

	return report, nil
}

func (s *rosterService) buildStudent(columns map[string]int, record []string) (models.Student, string) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	student := models.Student{
		StudentID: strings.ToUpper(field("student_id")),
		FirstName: field("first_name"),
		LastName:  field("last_name"),
		Group:     field("group"),
		Email:     field("email"),
		Active:    true,
	}

	switch {
	case student.StudentID == "":
		return models.Student{}, "student_id is required"
	case student.FirstName == "":
		return models.Student{}, "first_name is required"
	case student.LastName == "":
		return models.Student{}, "last_name is required"
	}

	if student.Email != "" {
		if err := s.validator.Var(student.Email, "email"); err != nil {
			return models.Student{}, fmt.Sprintf("invalid email %q", student.Email)
		}
	}

	return student, ""
}
