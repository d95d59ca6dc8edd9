package models

import "time"

const (
	// DifficultyEasy marks questions drawn against the easy tier quota.
	DifficultyEasy = "easy"
	// DifficultyMedium marks questions drawn against the medium tier quota.
	DifficultyMedium = "medium"
	// DifficultyHard marks questions drawn against the hard tier quota.
	DifficultyHard = "hard"
)

const (
	// QuestionTypeSingle expects exactly one correct choice.
	QuestionTypeSingle = "single"
	// QuestionTypeMultiple expects the full correct choice set.
	QuestionTypeMultiple = "multiple"
	// QuestionTypeOpen expects free text and is graded manually.
	QuestionTypeOpen = "open"
)

// Question lives in a subject's pool. Once an attempt has referenced a
// question it must not be mutated; attempts snapshot their question set at
// creation so later edits never change what a student was asked.
type Question struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SubjectID  uint      `gorm:"not null;index" json:"subject_id"`
	BodyMD     string    `gorm:"type:text;not null" json:"body_md"`
	Difficulty string    `gorm:"size:10;not null;default:medium" json:"difficulty"`
	Type       string    `gorm:"size:10;not null;default:single" json:"type"`
	CreatedAt  time.Time `json:"created_at"`
	Subject    Subject   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Answers    []Answer  `json:"answers"`
}

// IsChoice reports whether the question is auto-graded from answer choices.
func (q Question) IsChoice() bool {
	return q.Type == QuestionTypeSingle || q.Type == QuestionTypeMultiple
}

// CorrectAnswerIDs returns the ids of the answers flagged correct.
func (q Question) CorrectAnswerIDs() map[uint]struct{} {
	correct := make(map[uint]struct{})
	for _, answer := range q.Answers {
		if answer.IsCorrect {
			correct[answer.ID] = struct{}{}
		}
	}
	return correct
}

// Answer is a candidate choice for a choice-type question.
type Answer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	TextMD     string `gorm:"type:text;not null" json:"text_md"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"-"`
}
