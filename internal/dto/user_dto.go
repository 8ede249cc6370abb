package dto

import (
	"time"

	"github.com/aulagest/aulagest-api/internal/models"
)

// UserCreateRequest registers a new account. The password credential is
// stored opaque; hashing belongs to the auth collaborator.
type UserCreateRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Surname    string `json:"surname" validate:"max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	DNI        string `json:"dni" validate:"required,max=32"`
	Role       string `json:"role" validate:"required,oneof=student teacher admin"`
	Password   string `json:"password" validate:"required,min=8"`
	ProfileURL string `json:"profile_url" validate:"omitempty,url,max=512"`
}

// UserUpdateRequest mutates an existing account; nil fields are untouched.
type UserUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=255"`
	Surname    *string `json:"surname" validate:"omitempty,max=255"`
	Email      *string `json:"email" validate:"omitempty,email,max=255"`
	DNI        *string `json:"dni" validate:"omitempty,max=32"`
	Role       *string `json:"role" validate:"omitempty,oneof=student teacher admin"`
	ProfileURL *string `json:"profile_url" validate:"omitempty,url,max=512"`
}

// UserResponse is returned to API clients when viewing accounts.
type UserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Email      string    `json:"email"`
	DNI        string    `json:"dni"`
	Role       string    `json:"role"`
	ProfileURL string    `json:"profile_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserLite summarizes an account inside nested responses.
type UserLite struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	DNI     string `json:"dni,omitempty"`
	Role    string `json:"role,omitempty"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:         model.ID,
		Name:       model.Name,
		Surname:    model.Surname,
		Email:      model.Email,
		DNI:        model.DNI,
		Role:       model.Role,
		ProfileURL: model.ProfileURL,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewUserResponseSlice converts user models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}

	return responses
}

// NewUserLite summarizes a user for embedding.
func NewUserLite(model models.User) UserLite {
	return UserLite{
		ID:      model.ID,
		Name:    model.Name,
		Surname: model.Surname,
		Email:   model.Email,
		DNI:     model.DNI,
		Role:    model.Role,
	}
}
