package dto

import "time"

// SeedAnswerRequest is one candidate choice in a seeded question.
type SeedAnswerRequest struct {
	TextMD    string `json:"text_md" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// SeedQuestionRequest is one question in a seeded subject pool.
type SeedQuestionRequest struct {
	BodyMD     string              `json:"body_md" validate:"required"`
	Difficulty string              `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Type       string              `json:"type" validate:"required,oneof=single multiple open"`
	Answers    []SeedAnswerRequest `json:"answers" validate:"dive"`
}

// SeedQuotaRequest configures the per-subject draw for the seeded exam.
type SeedQuotaRequest struct {
	EasyCount    int `json:"easy_count" validate:"gte=0"`
	MediumCount  int `json:"medium_count" validate:"gte=0"`
	HardCount    int `json:"hard_count" validate:"gte=0"`
	EasyPoints   int `json:"easy_points" validate:"gte=0"`
	MediumPoints int `json:"medium_points" validate:"gte=0"`
	HardPoints   int `json:"hard_points" validate:"gte=0"`
}

// SeedSubjectRequest is one subject with its question pool and exam quota.
type SeedSubjectRequest struct {
	Name      string                `json:"name" validate:"required"`
	Questions []SeedQuestionRequest `json:"questions" validate:"dive"`
	Quota     *SeedQuotaRequest     `json:"quota"`
}

// SeedExamRequest creates a complete course/subject/question/exam fixture.
type SeedExamRequest struct {
	CourseName      string               `json:"course_name" validate:"required"`
	ExamName        string               `json:"exam_name" validate:"required"`
	OpenTime        time.Time            `json:"open_time" validate:"required"`
	CloseTime       time.Time            `json:"close_time" validate:"required,gtefield=OpenTime"`
	DurationMinutes int                  `json:"duration_minutes" validate:"required,min=1,max=300"`
	AttemptsAllowed int                  `json:"attempts_allowed" validate:"required,min=1,max=5"`
	Subjects        []SeedSubjectRequest `json:"subjects" validate:"required,min=1,dive"`
	EnrollStudents  []string             `json:"enroll_students" validate:"omitempty,dive,required"`
}

// SeedExamResponse reports the created fixture.
type SeedExamResponse struct {
	CourseID      uint `json:"course_id"`
	ExamID        uint `json:"exam_id"`
	SubjectCount  int  `json:"subject_count"`
	QuestionCount int  `json:"question_count"`
	Enrolled      int  `json:"enrolled"`
}
