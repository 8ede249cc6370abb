package dto

import (
	"time"

	"github.com/aulagest/aulagest-api/internal/models"
)

// PracticeCreateRequest defines a new assignment.
type PracticeCreateRequest struct {
	Identifier  string    `json:"identifier" validate:"required,max=100"`
	Title       string    `json:"title" validate:"required,max=255"`
	Name        string    `json:"name" validate:"max=255"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Link        string    `json:"link" validate:"omitempty,url,max=512"`
	TeacherID   uint      `json:"teacher_id" validate:"required,gt=0"`
}

// PracticeUpdateRequest mutates an assignment; nil fields are untouched.
type PracticeUpdateRequest struct {
	Identifier  *string    `json:"identifier" validate:"omitempty,max=100"`
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Name        *string    `json:"name" validate:"omitempty,max=255"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Link        *string    `json:"link" validate:"omitempty,url,max=512"`
}

// PracticeResponse is returned when viewing assignments.
type PracticeResponse struct {
	ID          uint      `json:"id"`
	Identifier  string    `json:"identifier"`
	Title       string    `json:"title"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Link        string    `json:"link"`
	Teacher     UserLite  `json:"teacher"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PracticeLite summarizes an assignment inside nested responses.
type PracticeLite struct {
	ID         uint      `json:"id"`
	Identifier string    `json:"identifier"`
	Title      string    `json:"title"`
	Name       string    `json:"name"`
	DueDate    time.Time `json:"due_date"`
}

// NewPracticeResponse converts a Practice model into a DTO.
func NewPracticeResponse(model models.Practice) PracticeResponse {
	return PracticeResponse{
		ID:          model.ID,
		Identifier:  model.Identifier,
		Title:       model.Title,
		Name:        model.Name,
		Description: model.Description,
		DueDate:     model.DueDate,
		Link:        model.Link,
		Teacher:     NewUserLite(model.Teacher),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewPracticeResponseSlice converts practice models into DTOs.
func NewPracticeResponseSlice(practices []models.Practice) []PracticeResponse {
	responses := make([]PracticeResponse, 0, len(practices))
	for _, practice := range practices {
		responses = append(responses, NewPracticeResponse(practice))
	}

	return responses
}

// NewPracticeLite summarizes a practice for embedding.
func NewPracticeLite(model models.Practice) PracticeLite {
	return PracticeLite{
		ID:         model.ID,
		Identifier: model.Identifier,
		Title:      model.Title,
		Name:       model.Name,
		DueDate:    model.DueDate,
	}
}
