package models

import "time"

// Student is a roster entry. Login uses the external StudentID rather than
// an email/password pair, so the row carries no credentials.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID string    `gorm:"size:20;uniqueIndex;not null" json:"student_id"`
	FirstName string    `gorm:"size:255;not null" json:"first_name"`
	LastName  string    `gorm:"size:255;not null" json:"last_name"`
	Group     string    `gorm:"size:64" json:"group"`
	Email     string    `gorm:"size:255" json:"email"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name for display.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
