package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

// PracticeService manages assignment definitions.
type PracticeService interface {
	List(ctx context.Context, actor scope.Actor) ([]dto.PracticeResponse, error)
	Get(ctx context.Context, actor scope.Actor, id uint) (dto.PracticeResponse, error)
	Create(ctx context.Context, actor scope.Actor, payload dto.PracticeCreateRequest) (dto.PracticeResponse, error)
	Update(ctx context.Context, actor scope.Actor, id uint, payload dto.PracticeUpdateRequest) (dto.PracticeResponse, error)
	Delete(ctx context.Context, actor scope.Actor, id uint) error
}

type practiceService struct {
	practices repository.PracticeRepository
	users     repository.UserRepository
	validator *validator.Validate
	policy    *bluemonday.Policy
	logger    zerolog.Logger
}

// NewPracticeService constructs a PracticeService instance.
func NewPracticeService(practices repository.PracticeRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) PracticeService {
	return &practiceService{
		practices: practices,
		users:     users,
		validator: validate,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "practice_service").Logger(),
	}
}

func (s *practiceService) List(ctx context.Context, actor scope.Actor) ([]dto.PracticeResponse, error) {
	practices, err := s.practices.List(ctx, actor.Practices)
	if err != nil {
		return nil, &apperr.Storage{Err: err}
	}

	return dto.NewPracticeResponseSlice(practices), nil
}

func (s *practiceService) Get(ctx context.Context, actor scope.Actor, id uint) (dto.PracticeResponse, error) {
	practice, err := s.practices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PracticeResponse{}, &apperr.NotFound{Entity: "practice", ID: id}
		}
		return dto.PracticeResponse{}, &apperr.Storage{Err: err}
	}

	return dto.NewPracticeResponse(practice), nil
}

func (s *practiceService) Create(ctx context.Context, actor scope.Actor, payload dto.PracticeCreateRequest) (dto.PracticeResponse, error) {
	if !actor.CanMutate() {
		return dto.PracticeResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "practices"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.PracticeResponse{}, &apperr.Validation{Field: "practice", Reason: err.Error()}
	}

	teacher, err := s.users.GetByID(ctx, payload.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PracticeResponse{}, &apperr.NotFound{Entity: "teacher", ID: payload.TeacherID}
		}
		return dto.PracticeResponse{}, &apperr.Storage{Err: err}
	}
	if !teacher.IsTeacher() {
		return dto.PracticeResponse{}, &apperr.RoleViolation{Entity: "practice teacher", ExpectedRole: "teacher"}
	}

	// Teachers create practices for themselves; only admins assign others.
	if actor.IsTeacher() && payload.TeacherID != actor.ID {
		return dto.PracticeResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "practice"}
	}

	practice := models.Practice{
		Identifier:  payload.Identifier,
		Title:       payload.Title,
		Name:        payload.Name,
		Description: s.policy.Sanitize(payload.Description),
		DueDate:     payload.DueDate,
		Link:        payload.Link,
		TeacherID:   payload.TeacherID,
	}

	if err := s.practices.Create(ctx, &practice); err != nil {
		return dto.PracticeResponse{}, &apperr.Storage{Err: err}
	}

	created, err := s.practices.GetByID(ctx, practice.ID)
	if err != nil {
		return dto.PracticeResponse{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("practice_id", created.ID).Msg("practice created")

	return dto.NewPracticeResponse(created), nil
}

func (s *practiceService) Update(ctx context.Context, actor scope.Actor, id uint, payload dto.PracticeUpdateRequest) (dto.PracticeResponse, error) {
	if !actor.CanMutate() {
		return dto.PracticeResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "practices"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.PracticeResponse{}, &apperr.Validation{Field: "practice", Reason: err.Error()}
	}

	practice, err := s.practices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PracticeResponse{}, &apperr.NotFound{Entity: "practice", ID: id}
		}
		return dto.PracticeResponse{}, &apperr.Storage{Err: err}
	}

	if !actor.OwnsPractice(practice) {
		return dto.PracticeResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "practice"}
	}

	if payload.Identifier != nil {
		practice.Identifier = *payload.Identifier
	}
	if payload.Title != nil {
		practice.Title = *payload.Title
	}
	if payload.Name != nil {
		practice.Name = *payload.Name
	}
	if payload.Description != nil {
		practice.Description = s.policy.Sanitize(*payload.Description)
	}
	if payload.DueDate != nil {
		practice.DueDate = *payload.DueDate
	}
	if payload.Link != nil {
		practice.Link = *payload.Link
	}

	if err := s.practices.Update(ctx, &practice); err != nil {
		return dto.PracticeResponse{}, &apperr.Storage{Err: err}
	}

	updated, err := s.practices.GetByID(ctx, id)
	if err != nil {
		return dto.PracticeResponse{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("practice_id", id).Msg("practice updated")

	return dto.NewPracticeResponse(updated), nil
}

func (s *practiceService) Delete(ctx context.Context, actor scope.Actor, id uint) error {
	if !actor.CanMutate() {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "practices"}
	}

	practice, err := s.practices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFound{Entity: "practice", ID: id}
		}
		return &apperr.Storage{Err: err}
	}

	if !actor.OwnsPractice(practice) {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "practice"}
	}

	if err := s.practices.Delete(ctx, id); err != nil {
		return &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("practice_id", id).Msg("practice deleted")

	return nil
}
