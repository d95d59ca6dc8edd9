package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// AttemptEventStarted is logged when an attempt is created.
	AttemptEventStarted = "attempt_started"
	// AttemptEventFinished is logged when a student submits explicitly.
	AttemptEventFinished = "attempt_finished"
	// AttemptEventExpired is logged when lazy expiry seals an attempt.
	AttemptEventExpired = "attempt_expired"
)

// AttemptEvent is an audit trail entry for attempt lifecycle transitions.
type AttemptEvent struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	AttemptID uint              `gorm:"not null;index" json:"attempt_id"`
	StudentID uint              `gorm:"not null" json:"student_id"`
	Action    string            `gorm:"size:64;not null" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}
