package service

import "errors"

var (
	// ErrStudentNotFound indicates no roster entry matches the identifier.
	ErrStudentNotFound = errors.New("student not found")
	// ErrExamNotFound indicates an unknown exam id.
	ErrExamNotFound = errors.New("exam not found")
	// ErrAttemptNotFound indicates an unknown attempt id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAnswerNotFound indicates an unknown attempt answer id.
	ErrAnswerNotFound = errors.New("answer not found")
	// ErrAttemptsExhausted indicates the allowed attempt count is used up.
	ErrAttemptsExhausted = errors.New("no attempts remaining")
	// ErrExamNotOpen indicates the exam window does not contain now.
	ErrExamNotOpen = errors.New("exam is not open")
	// ErrAttemptNotActive covers both a wrong owner and an already sealed
	// attempt; callers are deliberately not told which.
	ErrAttemptNotActive = errors.New("attempt is not active")
	// ErrAttemptExpired indicates the duration budget elapsed before the write.
	ErrAttemptExpired = errors.New("attempt time has expired")
	// ErrAttemptSealed indicates the attempt is terminal and only its result
	// view is available.
	ErrAttemptSealed = errors.New("attempt already sealed")
	// ErrAttemptStillInProgress indicates a result was requested for a live attempt.
	ErrAttemptStillInProgress = errors.New("attempt is still in progress")
	// ErrSessionInvalid indicates a revoked or unknown session token.
	ErrSessionInvalid = errors.New("session is invalid")
)
