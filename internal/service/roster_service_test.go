package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/proctorly/exam-api/internal/models"
)

func newRosterTestService(repo *fakeStudentRepo) RosterService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewRosterService(repo, validate, testLogger())
}

func TestRosterServiceImportCreatesAndUpdates(t *testing.T) {
	repo := &fakeStudentRepo{byExternalID: map[string]models.Student{
		"AB1234": {ID: 1, StudentID: "AB1234", FirstName: "Old", LastName: "Name", Active: true},
	}}
	svc := newRosterTestService(repo)

	csv := "student_id,first_name,last_name,group,email\n" +
		"ab1234,Dana,Ivanova,CS-101,dana@example.edu\n" +
		"cd5678,Petr,Novak,CS-101,\n"

	report, err := svc.Import(context.Background(), []byte(csv))
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 1, report.Updated)
	require.Empty(t, report.Errors)

	updated := repo.byExternalID["AB1234"]
	require.Equal(t, "Dana", updated.FirstName)
	require.Equal(t, "CS-101", updated.Group)
	require.Equal(t, uint(1), updated.ID)

	created, ok := repo.byExternalID["CD5678"]
	require.True(t, ok, "identifier should be upper-cased on import")
	require.True(t, created.Active)
}

func TestRosterServiceImportReportsRowErrors(t *testing.T) {
	repo := &fakeStudentRepo{byExternalID: map[string]models.Student{}}
	svc := newRosterTestService(repo)

	csv := "student_id,first_name,last_name,email\n" +
		"ab1234,Dana,Ivanova,dana@example.edu\n" +
		",Missing,Identifier,\n" +
		"cd5678,,Novak,\n" +
		"ef9012,Jana,Svobodova,not-an-email\n"

	report, err := svc.Import(context.Background(), []byte(csv))
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 0, report.Updated)
	require.Len(t, report.Errors, 3)

	require.Equal(t, 3, report.Errors[0].Line)
	require.Contains(t, report.Errors[0].Message, "student_id")
	require.Equal(t, 4, report.Errors[1].Line)
	require.Contains(t, report.Errors[1].Message, "first_name")
	require.Equal(t, 5, report.Errors[2].Line)
	require.Contains(t, report.Errors[2].Message, "email")
}

func TestRosterServiceImportRejectsBinaryPayload(t *testing.T) {
	svc := newRosterTestService(&fakeStudentRepo{})

	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	_, err := svc.Import(context.Background(), png)
	require.ErrorIs(t, err, ErrRosterFormat)
}

func TestRosterServiceImportRequiresColumns(t *testing.T) {
	svc := newRosterTestService(&fakeStudentRepo{})

	_, err := svc.Import(context.Background(), []byte("student_id,first_name\nab1234,Dana\n"))
	require.ErrorIs(t, err, ErrRosterFormat)
	require.Contains(t, err.Error(), "last_name")
}
