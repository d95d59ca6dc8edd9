package dto

import (
	"sort"
	"time"

	"github.com/proctorly/exam-api/internal/models"
)

// ChoiceView is a candidate answer as shown to the student. The correctness
// flag is never serialized here.
type ChoiceView struct {
	ID     uint   `json:"id"`
	TextMD string `json:"text_md"`
}

// QuestionView is a drawn question as shown inside an attempt.
type QuestionView struct {
	ID         uint         `json:"id"`
	SubjectID  uint         `json:"subject_id"`
	Subject    string       `json:"subject"`
	BodyMD     string       `json:"body_md"`
	Difficulty string       `json:"difficulty"`
	Type       string       `json:"type"`
	Choices    []ChoiceView `json:"choices,omitempty"`
}

// NewQuestionView converts a Question model into a DTO.
func NewQuestionView(model models.Question) QuestionView {
	view := QuestionView{
		ID:         model.ID,
		SubjectID:  model.SubjectID,
		Subject:    model.Subject.Name,
		BodyMD:     model.BodyMD,
		Difficulty: model.Difficulty,
		Type:       model.Type,
	}

	if model.IsChoice() {
		view.Choices = make([]ChoiceView, 0, len(model.Answers))
		for _, answer := range model.Answers {
			view.Choices = append(view.Choices, ChoiceView{ID: answer.ID, TextMD: answer.TextMD})
		}
	}

	return view
}

// AnswerState is one question's answer slot within a live attempt.
type AnswerState struct {
	ID          uint         `json:"id"`
	Question    QuestionView `json:"question"`
	SelectedIDs []uint       `json:"selected_answer_ids"`
	AnswerText  string       `json:"answer_text,omitempty"`
	Answered    bool         `json:"answered"`
}

// NewAnswerState converts a StudentAnswer model into its live view.
func NewAnswerState(model models.StudentAnswer) AnswerState {
	selected := make([]uint, 0, len(model.Selected))
	for _, answer := range model.Selected {
		selected = append(selected, answer.ID)
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })

	return AnswerState{
		ID:          model.ID,
		Question:    NewQuestionView(model.Question),
		SelectedIDs: selected,
		AnswerText:  model.AnswerText,
		Answered:    len(selected) > 0 || model.AnswerText != "",
	}
}

// AttemptResponse is the live attempt view served while taking an exam.
type AttemptResponse struct {
	ID                   uint          `json:"id"`
	ExamID               uint          `json:"exam_id"`
	ExamName             string        `json:"exam_name"`
	Status               string        `json:"status"`
	AttemptNumber        int           `json:"attempt_number"`
	StartTime            time.Time     `json:"start_time"`
	EndTime              *time.Time    `json:"end_time"`
	TimeRemainingSeconds int           `json:"time_remaining_seconds"`
	Answers              []AnswerState `json:"answers"`
}

// NewAttemptResponse builds the live attempt DTO.
func NewAttemptResponse(attempt models.ExamAttempt, answers []models.StudentAnswer, attemptNumber int, now time.Time) AttemptResponse {
	states := make([]AnswerState, 0, len(answers))
	for _, answer := range answers {
		states = append(states, NewAnswerState(answer))
	}

	return AttemptResponse{
		ID:                   attempt.ID,
		ExamID:               attempt.ExamID,
		ExamName:             attempt.Exam.Name,
		Status:               attempt.Status,
		AttemptNumber:        attemptNumber,
		StartTime:            attempt.StartTime,
		EndTime:              attempt.EndTime,
		TimeRemainingSeconds: int(attempt.TimeRemaining(now).Seconds()),
		Answers:              states,
	}
}

// RecordAnswerRequest is the submission payload for one question.
type RecordAnswerRequest struct {
	AnswerIDs  []uint `json:"answer_ids" validate:"omitempty,dive,gt=0"`
	AnswerText string `json:"answer_text" validate:"omitempty,max=65535"`
}

// RecordAnswerResponse reports the stored state after a submission.
type RecordAnswerResponse struct {
	ID       uint   `json:"id"`
	Grading  string `json:"grading"`
	Answered bool   `json:"answered"`
}

// AnswerReview is one question's graded state in the result view.
type AnswerReview struct {
	ID           uint         `json:"id"`
	Question     QuestionView `json:"question"`
	SelectedIDs  []uint       `json:"selected_answer_ids"`
	AnswerText   string       `json:"answer_text,omitempty"`
	IsCorrect    *bool        `json:"is_correct"`
	PointsEarned int          `json:"points_earned"`
}

// SubjectBreakdown aggregates result statistics per subject.
type SubjectBreakdown struct {
	Subject string `json:"subject"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Points  int    `json:"points"`
}

// ResultResponse is the sealed attempt view.
type ResultResponse struct {
	ID            uint               `json:"id"`
	ExamID        uint               `json:"exam_id"`
	ExamName      string             `json:"exam_name"`
	Status        string             `json:"status"`
	AttemptNumber int                `json:"attempt_number"`
	StartTime     time.Time          `json:"start_time"`
	EndTime       *time.Time         `json:"end_time"`
	Score         int                `json:"score"`
	MaxScore      int                `json:"max_score"`
	Percentage    float64            `json:"percentage"`
	Subjects      []SubjectBreakdown `json:"subjects"`
	Answers       []AnswerReview     `json:"answers"`
}

// NewResultResponse builds the sealed attempt DTO with its per-subject
// correct/total/points breakdown.
func NewResultResponse(attempt models.ExamAttempt, answers []models.StudentAnswer, attemptNumber int) ResultResponse {
	reviews := make([]AnswerReview, 0, len(answers))
	bySubject := make(map[string]*SubjectBreakdown)
	order := make([]string, 0)

	for _, answer := range answers {
		state := NewAnswerState(answer)
		reviews = append(reviews, AnswerReview{
			ID:           state.ID,
			Question:     state.Question,
			SelectedIDs:  state.SelectedIDs,
			AnswerText:   state.AnswerText,
			IsCorrect:    answer.IsCorrect(),
			PointsEarned: answer.PointsEarned,
		})

		subject := answer.Question.Subject.Name
		stats, ok := bySubject[subject]
		if !ok {
			stats = &SubjectBreakdown{Subject: subject}
			bySubject[subject] = stats
			order = append(order, subject)
		}
		stats.Total++
		stats.Points += answer.PointsEarned
		if answer.Grading == models.GradingCorrect {
			stats.Correct++
		}
	}

	subjects := make([]SubjectBreakdown, 0, len(order))
	for _, name := range order {
		subjects = append(subjects, *bySubject[name])
	}

	return ResultResponse{
		ID:            attempt.ID,
		ExamID:        attempt.ExamID,
		ExamName:      attempt.Exam.Name,
		Status:        attempt.Status,
		AttemptNumber: attemptNumber,
		StartTime:     attempt.StartTime,
		EndTime:       attempt.EndTime,
		Score:         attempt.Score,
		MaxScore:      attempt.MaxScore,
		Percentage:    attempt.PercentageScore(),
		Subjects:      subjects,
		Answers:       reviews,
	}
}

// AttemptSummary is one row in the student's attempt history.
type AttemptSummary struct {
	ID            uint       `json:"id"`
	ExamID        uint       `json:"exam_id"`
	ExamName      string     `json:"exam_name"`
	Status        string     `json:"status"`
	AttemptNumber int        `json:"attempt_number"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Score         int        `json:"score"`
	MaxScore      int        `json:"max_score"`
	Percentage    float64    `json:"percentage"`
}

// NewAttemptSummary converts an attempt into its history row.
func NewAttemptSummary(attempt models.ExamAttempt, attemptNumber int) AttemptSummary {
	return AttemptSummary{
		ID:            attempt.ID,
		ExamID:        attempt.ExamID,
		ExamName:      attempt.Exam.Name,
		Status:        attempt.Status,
		AttemptNumber: attemptNumber,
		StartTime:     attempt.StartTime,
		EndTime:       attempt.EndTime,
		Score:         attempt.Score,
		MaxScore:      attempt.MaxScore,
		Percentage:    attempt.PercentageScore(),
	}
}
