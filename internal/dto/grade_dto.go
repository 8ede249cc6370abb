package dto

import (
	"time"

	"github.com/aulagest/aulagest-api/internal/models"
)

// GradeCreateRequest scores a submission. Range and role invariants are
// re-checked by the service; the tags only cover shape.
type GradeCreateRequest struct {
	SubmissionID uint    `json:"submission_id" validate:"required,gt=0"`
	EvaluatorID  uint    `json:"evaluator_id" validate:"required,gt=0"`
	RubricID     *uint   `json:"rubric_id" validate:"omitempty,gt=0"`
	FinalScore   float64 `json:"final_score"`
	Comment      string  `json:"comment"`
}

// GradeUpdateRequest mutates an existing grade; nil fields are untouched.
type GradeUpdateRequest struct {
	RubricID   *uint    `json:"rubric_id" validate:"omitempty,gt=0"`
	FinalScore *float64 `json:"final_score"`
	Comment    *string  `json:"comment"`
}

// GradeResponse is the joined grade view: the score, its evaluator, the
// rubric used (if any) and the graded submission with its student.
type GradeResponse struct {
	ID          uint        `json:"id"`
	FinalScore  float64     `json:"final_score"`
	Comment     string      `json:"comment"`
	Evaluator   UserLite    `json:"evaluator"`
	Rubric      *RubricLite `json:"rubric"`
	Submission  uint        `json:"submission_id"`
	Student     UserLite    `json:"student"`
	Deliverable string      `json:"deliverable"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewGradeResponse converts a Grade model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	response := GradeResponse{
		ID:          model.ID,
		FinalScore:  model.FinalScore,
		Comment:     model.Comment,
		Evaluator:   NewUserLite(model.Evaluator),
		Submission:  model.SubmissionID,
		Student:     NewUserLite(model.Submission.Student),
		Deliverable: model.Submission.Deliverable,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if model.Rubric != nil {
		rubric := NewRubricLite(*model.Rubric)
		response.Rubric = &rubric
	}

	return response
}

// NewGradeResponseSlice converts grade models into DTOs.
func NewGradeResponseSlice(grades []models.Grade) []GradeResponse {
	responses := make([]GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewGradeResponse(grade))
	}

	return responses
}
