package models

import "time"

// Exam is a time-windowed assessment over one course. Question composition is
// configured per subject via ExamSubjectQuota rows.
type Exam struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	CourseID        uint               `gorm:"not null;index" json:"course_id"`
	Name            string             `gorm:"size:200;not null" json:"name"`
	Description     string             `gorm:"type:text" json:"description"`
	OpenTime        time.Time          `gorm:"not null" json:"open_time"`
	CloseTime       time.Time          `gorm:"not null" json:"close_time"`
	DurationMinutes int                `gorm:"not null" json:"duration_minutes"`
	AttemptsAllowed int                `gorm:"not null;default:1" json:"attempts_allowed"`
	CreatedAt       time.Time          `json:"created_at"`
	Course          Course             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Quotas          []ExamSubjectQuota `json:"quotas"`
}

// IsOpen reports whether now falls inside the exam window.
func (e Exam) IsOpen(now time.Time) bool {
	return !now.Before(e.OpenTime) && !now.After(e.CloseTime)
}

// IsUpcoming reports whether the window has not opened yet.
func (e Exam) IsUpcoming(now time.Time) bool {
	return now.Before(e.OpenTime)
}

// Duration returns the attempt time budget.
func (e Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// MaxScore sums the configured maximum over every subject quota. It reflects
// the exam's full potential regardless of which questions a draw produced.
func (e Exam) MaxScore() int {
	total := 0
	for _, quota := range e.Quotas {
		total += quota.MaxScore()
	}
	return total
}

// ExamSubjectQuota fixes, per (exam, subject) pair, how many questions of
// each difficulty are drawn and how many points each tier is worth.
type ExamSubjectQuota struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	ExamID       uint    `gorm:"not null;uniqueIndex:idx_exam_subject" json:"exam_id"`
	SubjectID    uint    `gorm:"not null;uniqueIndex:idx_exam_subject" json:"subject_id"`
	EasyCount    int     `gorm:"not null;default:0" json:"easy_count"`
	MediumCount  int     `gorm:"not null;default:0" json:"medium_count"`
	HardCount    int     `gorm:"not null;default:0" json:"hard_count"`
	EasyPoints   int     `gorm:"not null;default:1" json:"easy_points"`
	MediumPoints int     `gorm:"not null;default:2" json:"medium_points"`
	HardPoints   int     `gorm:"not null;default:3" json:"hard_points"`
	Subject      Subject `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"subject"`
}

// TotalQuestions is the number of questions this quota asks for.
func (q ExamSubjectQuota) TotalQuestions() int {
	return q.EasyCount + q.MediumCount + q.HardCount
}

// MaxScore is the highest score achievable within this quota.
func (q ExamSubjectQuota) MaxScore() int {
	return q.EasyCount*q.EasyPoints + q.MediumCount*q.MediumPoints + q.HardCount*q.HardPoints
}

// CountFor returns the question count configured for a difficulty tier.
func (q ExamSubjectQuota) CountFor(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return q.EasyCount
	case DifficultyMedium:
		return q.MediumCount
	case DifficultyHard:
		return q.HardCount
	default:
		return 0
	}
}

// PointsFor returns the point value configured for a difficulty tier.
func (q ExamSubjectQuota) PointsFor(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return q.EasyPoints
	case DifficultyMedium:
		return q.MediumPoints
	case DifficultyHard:
		return q.HardPoints
	default:
		return 0
	}
}
