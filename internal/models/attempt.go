package models

import "time"

const (
	// AttemptStatusInProgress marks a live attempt still accepting answers.
	AttemptStatusInProgress = "in_progress"
	// AttemptStatusFinished marks an attempt the student submitted explicitly.
	AttemptStatusFinished = "finished"
	// AttemptStatusTimeExpired marks an attempt sealed by lazy expiry.
	AttemptStatusTimeExpired = "time_expired"
)

const (
	// GradingUngraded marks answers awaiting manual review (open questions).
	GradingUngraded = "ungraded"
	// GradingCorrect marks an auto-graded correct answer.
	GradingCorrect = "correct"
	// GradingIncorrect marks an auto-graded incorrect answer.
	GradingIncorrect = "incorrect"
)

// ExamAttempt is one try at an exam by one student. The question set is
// snapshotted into attempt_questions at creation and never re-derived from
// the live pool.
type ExamAttempt struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ExamID    uint       `gorm:"not null;index" json:"exam_id"`
	StudentID uint       `gorm:"not null;index" json:"student_id"`
	StartTime time.Time  `gorm:"not null" json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    string     `gorm:"size:20;not null;default:in_progress" json:"status"`
	Score     int        `gorm:"not null;default:0" json:"score"`
	MaxScore  int        `gorm:"not null;default:0" json:"max_score"`
	Exam      Exam       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student   Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Questions []Question `gorm:"many2many:attempt_questions" json:"-"`
}

// IsTerminal reports whether the attempt has been sealed.
func (a ExamAttempt) IsTerminal() bool {
	return a.Status == AttemptStatusFinished || a.Status == AttemptStatusTimeExpired
}

// IsExpired reports whether the duration budget has elapsed.
func (a ExamAttempt) IsExpired(now time.Time) bool {
	return now.Sub(a.StartTime) > a.Exam.Duration()
}

// TimeRemaining returns the countdown value for display, floored at zero.
func (a ExamAttempt) TimeRemaining(now time.Time) time.Duration {
	remaining := a.Exam.Duration() - now.Sub(a.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PercentageScore returns score/max_score as a percentage rounded to two
// decimals, or 0 when no maximum is configured.
func (a ExamAttempt) PercentageScore() float64 {
	if a.MaxScore <= 0 {
		return 0
	}
	return float64(int(float64(a.Score)/float64(a.MaxScore)*100*100+0.5)) / 100
}

// StudentAnswer holds one question's answer state within an attempt. Rows are
// created in bulk at attempt start, one per drawn question, and mutated in
// place on every submission; "unanswered" means an empty selection or text,
// never a missing row.
type StudentAnswer struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	AttemptID    uint        `gorm:"not null;uniqueIndex:idx_attempt_question" json:"attempt_id"`
	QuestionID   uint        `gorm:"not null;uniqueIndex:idx_attempt_question" json:"question_id"`
	AnswerText   string      `gorm:"type:text" json:"answer_text"`
	Grading      string      `gorm:"size:12;not null;default:ungraded" json:"grading"`
	PointsEarned int         `gorm:"not null;default:0" json:"points_earned"`
	UpdatedAt    time.Time   `json:"answered_at"`
	Attempt      ExamAttempt `gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Question     Question    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question"`
	Selected     []Answer    `gorm:"many2many:student_answer_selections" json:"selected"`
}

// IsCorrect exposes grading as a nullable boolean: nil while ungraded.
func (sa StudentAnswer) IsCorrect() *bool {
	switch sa.Grading {
	case GradingCorrect:
		v := true
		return &v
	case GradingIncorrect:
		v := false
		return &v
	default:
		return nil
	}
}

// SelectedAnswerIDs returns the current selection as a set.
func (sa StudentAnswer) SelectedAnswerIDs() map[uint]struct{} {
	ids := make(map[uint]struct{}, len(sa.Selected))
	for _, answer := range sa.Selected {
		ids[answer.ID] = struct{}{}
	}
	return ids
}
