package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

// UserService manages accounts. The password credential is stored opaque;
// hashing and session mechanics belong to the auth collaborator.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, actor scope.Actor, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, actor scope.Actor, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor scope.Actor, id uint) error
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, &apperr.Storage{Err: err}
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, &apperr.NotFound{Entity: "user", ID: id}
		}
		return dto.UserResponse{}, &apperr.Storage{Err: err}
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, actor scope.Actor, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return dto.UserResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "users"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, &apperr.Validation{Field: "user", Reason: err.Error()}
	}

	if !models.ValidRole(payload.Role) {
		return dto.UserResponse{}, &apperr.Validation{Field: "role", Reason: "unknown role"}
	}

	user := models.User{
		Name:       payload.Name,
		Surname:    payload.Surname,
		Email:      payload.Email,
		DNI:        payload.DNI,
		Role:       payload.Role,
		Password:   payload.Password,
		ProfileURL: payload.ProfileURL,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user created")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor scope.Actor, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	// Admins edit anyone; everyone else only their own profile, and never
	// their own role.
	if !actor.IsAdmin() {
		if actor.ID != id {
			return dto.UserResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "users"}
		}
		if payload.Role != nil {
			return dto.UserResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "role"}
		}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, &apperr.Validation{Field: "user", Reason: err.Error()}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, &apperr.NotFound{Entity: "user", ID: id}
		}
		return dto.UserResponse{}, &apperr.Storage{Err: err}
	}

	if payload.Name != nil {
		user.Name = *payload.Name
	}
	if payload.Surname != nil {
		user.Surname = *payload.Surname
	}
	if payload.Email != nil {
		user.Email = *payload.Email
	}
	if payload.DNI != nil {
		user.DNI = *payload.DNI
	}
	if payload.Role != nil {
		user.Role = *payload.Role
	}
	if payload.ProfileURL != nil {
		user.ProfileURL = *payload.ProfileURL
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user updated")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor scope.Actor, id uint) error {
	if !actor.IsAdmin() {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "users"}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFound{Entity: "user", ID: id}
		}
		return &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted")

	return nil
}
