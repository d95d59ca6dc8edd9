package dto

import (
	"time"

	"github.com/proctorly/exam-api/internal/models"
)

// ExamSummary is the catalog view of an exam.
type ExamSummary struct {
	ID              uint      `json:"id"`
	CourseName      string    `json:"course_name"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	OpenTime        time.Time `json:"open_time"`
	CloseTime       time.Time `json:"close_time"`
	DurationMinutes int       `json:"duration_minutes"`
	AttemptsAllowed int       `json:"attempts_allowed"`
	QuestionCount   int       `json:"question_count"`
	MaxScore        int       `json:"max_score"`
}

// NewExamSummary converts an Exam model into a DTO.
func NewExamSummary(model models.Exam) ExamSummary {
	questionCount := 0
	for _, quota := range model.Quotas {
		questionCount += quota.TotalQuestions()
	}

	return ExamSummary{
		ID:              model.ID,
		CourseName:      model.Course.Name,
		Name:            model.Name,
		Description:     model.Description,
		OpenTime:        model.OpenTime,
		CloseTime:       model.CloseTime,
		DurationMinutes: model.DurationMinutes,
		AttemptsAllowed: model.AttemptsAllowed,
		QuestionCount:   questionCount,
		MaxScore:        model.MaxScore(),
	}
}

// EligibleExamResponse pairs an open exam with the student's attempt state.
type EligibleExamResponse struct {
	Exam                ExamSummary `json:"exam"`
	AttemptsMade        int         `json:"attempts_made"`
	CanTake             bool        `json:"can_take"`
	InProgressAttemptID *uint       `json:"in_progress_attempt_id"`
}
