package dto

import (
	"time"

	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/reconcile"
	"github.com/aulagest/aulagest-api/internal/repository"
)

// CriterionRequest is one desired criterion inside a rubric payload. The
// same insert/update tagging as roster modules applies; persisted criteria
// missing from the list are deleted.
type CriterionRequest struct {
	ID          *uint  `json:"id" validate:"omitempty,gt=0"`
	Name        string `json:"name" validate:"required,max=255"`
	MaxScore    int    `json:"max_score" validate:"required,gt=0"`
	Description string `json:"description"`
}

// RubricCreateRequest defines a new scoring template.
type RubricCreateRequest struct {
	Name        string             `json:"name" validate:"required,max=255"`
	Document    string             `json:"document" validate:"max=512"`
	PracticeID  *uint              `json:"practice_id" validate:"omitempty,gt=0"`
	EvaluatorID *uint              `json:"evaluator_id" validate:"omitempty,gt=0"`
	Criteria    []CriterionRequest `json:"criteria" validate:"dive"`
}

// RubricUpdateRequest replaces a rubric's fields and criteria.
type RubricUpdateRequest struct {
	Name        string             `json:"name" validate:"required,max=255"`
	Document    string             `json:"document" validate:"max=512"`
	PracticeID  *uint              `json:"practice_id" validate:"omitempty,gt=0"`
	EvaluatorID *uint              `json:"evaluator_id" validate:"omitempty,gt=0"`
	Criteria    []CriterionRequest `json:"criteria" validate:"dive"`
}

// CriterionItems resolves the payload entries into tagged reconcile items.
func CriterionItems(criteria []CriterionRequest) []reconcile.Item[repository.CriterionPayload] {
	items := make([]reconcile.Item[repository.CriterionPayload], 0, len(criteria))
	for _, c := range criteria {
		payload := repository.CriterionPayload{
			Name:        c.Name,
			MaxScore:    c.MaxScore,
			Description: c.Description,
		}
		if c.ID != nil {
			items = append(items, reconcile.Update(*c.ID, payload))
		} else {
			items = append(items, reconcile.Insert(payload))
		}
	}

	return items
}

// CriterionResponse serializes one rubric criterion.
type CriterionResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	MaxScore    int    `json:"max_score"`
	Description string `json:"description"`
}

// RubricResponse is the assembled rubric view: template, assigned
// practice, the practice's teacher, the evaluator and the criteria.
type RubricResponse struct {
	ID              uint                `json:"id"`
	Name            string              `json:"name"`
	Document        string              `json:"document"`
	Practice        *PracticeLite       `json:"practice"`
	PracticeTeacher *UserLite           `json:"practice_teacher"`
	Evaluator       *UserLite           `json:"evaluator"`
	Criteria        []CriterionResponse `json:"criteria"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// RubricLite summarizes a rubric inside nested responses.
type RubricLite struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

// NewRubricResponse converts a rubric with preloaded relations into a DTO.
func NewRubricResponse(model models.Rubric) RubricResponse {
	response := RubricResponse{
		ID:        model.ID,
		Name:      model.Name,
		Document:  model.Document,
		Criteria:  make([]CriterionResponse, 0, len(model.Criteria)),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	if model.Practice != nil {
		practice := NewPracticeLite(*model.Practice)
		response.Practice = &practice
		if model.Practice.Teacher.ID != 0 {
			teacher := NewUserLite(model.Practice.Teacher)
			response.PracticeTeacher = &teacher
		}
	}

	if model.Evaluator != nil {
		evaluator := NewUserLite(*model.Evaluator)
		response.Evaluator = &evaluator
	}

	for _, criterion := range model.Criteria {
		response.Criteria = append(response.Criteria, CriterionResponse{
			ID:          criterion.ID,
			Name:        criterion.Name,
			MaxScore:    criterion.MaxScore,
			Description: criterion.Description,
		})
	}

	return response
}

// NewRubricResponseSlice converts rubric models into DTOs.
func NewRubricResponseSlice(rubrics []models.Rubric) []RubricResponse {
	responses := make([]RubricResponse, 0, len(rubrics))
	for _, rubric := range rubrics {
		responses = append(responses, NewRubricResponse(rubric))
	}

	return responses
}

// NewRubricLite summarizes a rubric for embedding.
func NewRubricLite(model models.Rubric) RubricLite {
	return RubricLite{ID: model.ID, Name: model.Name, Document: model.Document}
}
