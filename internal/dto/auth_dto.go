package dto

import "github.com/proctorly/exam-api/internal/models"

// LoginRequest carries the external student identifier used to sign in.
type LoginRequest struct {
	StudentID string `json:"student_id" validate:"required,min=1,max=20"`
}

// LoginResponse returns the session token and the authenticated student.
type LoginResponse struct {
	Token   string          `json:"token"`
	Student StudentResponse `json:"student"`
}

// StudentResponse is the public view of a roster entry.
type StudentResponse struct {
	ID        uint   `json:"id"`
	StudentID string `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Group     string `json:"group,omitempty"`
	Email     string `json:"email,omitempty"`
}

// NewStudentResponse converts a Student model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:        model.ID,
		StudentID: model.StudentID,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Group:     model.Group,
		Email:     model.Email,
	}
}
