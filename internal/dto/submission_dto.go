package dto

import (
	"time"

	"github.com/aulagest/aulagest-api/internal/models"
)

// SubmissionCreateRequest records a student deliverable for a practice.
// Deliverable is an opaque reference; file storage lives elsewhere.
type SubmissionCreateRequest struct {
	PracticeID  uint       `json:"practice_id" validate:"required,gt=0"`
	StudentID   uint       `json:"student_id" validate:"required,gt=0"`
	SubmittedAt *time.Time `json:"submitted_at"`
	Deliverable string     `json:"deliverable" validate:"required,max=512"`
}

// SubmissionUpdateRequest re-dates or re-files a submission.
type SubmissionUpdateRequest struct {
	SubmittedAt *time.Time `json:"submitted_at"`
	Deliverable *string    `json:"deliverable" validate:"omitempty,max=512"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	PracticeID *uint `query:"practice_id"`
	StudentID  *uint `query:"student_id"`
}

// GradeLite summarizes a grade inside the submission view.
type GradeLite struct {
	ID         uint     `json:"id"`
	FinalScore float64  `json:"final_score"`
	Comment    string   `json:"comment"`
	Evaluator  UserLite `json:"evaluator"`
}

// SubmissionResponse is one flattened record of the joined submission
// view: student, practice, the practice's teacher, and the grade with its
// rubric and evaluator where present.
type SubmissionResponse struct {
	ID          uint         `json:"id"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Deliverable string       `json:"deliverable"`
	Student     UserLite     `json:"student"`
	Practice    PracticeLite `json:"practice"`
	Teacher     UserLite     `json:"teacher"`
	Rubric      *RubricLite  `json:"rubric"`
	Grade       *GradeLite   `json:"grade"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:          model.ID,
		SubmittedAt: model.SubmittedAt,
		Deliverable: model.Deliverable,
		Student:     NewUserLite(model.Student),
		Practice:    NewPracticeLite(model.Practice),
		Teacher:     NewUserLite(model.Practice.Teacher),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if model.Grade != nil && model.Grade.ID != 0 {
		response.Grade = &GradeLite{
			ID:         model.Grade.ID,
			FinalScore: model.Grade.FinalScore,
			Comment:    model.Grade.Comment,
			Evaluator:  NewUserLite(model.Grade.Evaluator),
		}
		if model.Grade.Rubric != nil {
			rubric := NewRubricLite(*model.Grade.Rubric)
			response.Rubric = &rubric
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
