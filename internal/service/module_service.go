package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

// ModuleCreateRequest defines a standalone module, outside the roster
// reconciliation path.
type ModuleCreateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Code        string `json:"code" validate:"required,max=100"`
	Description string `json:"description"`
	GroupID     uint   `json:"group_id" validate:"required,gt=0"`
	TeacherID   uint   `json:"teacher_id" validate:"required,gt=0"`
}

// ModuleUpdateRequest mutates a module; nil fields are untouched.
type ModuleUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Code        *string `json:"code" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	TeacherID   *uint   `json:"teacher_id" validate:"omitempty,gt=0"`
}

// ModuleService manages standalone module CRUD. Roster-driven module
// changes go through RosterService instead.
type ModuleService interface {
	List(ctx context.Context, actor scope.Actor) ([]models.Module, error)
	Create(ctx context.Context, actor scope.Actor, payload ModuleCreateRequest) (models.Module, error)
	Update(ctx context.Context, actor scope.Actor, id uint, payload ModuleUpdateRequest) (models.Module, error)
	Delete(ctx context.Context, actor scope.Actor, id uint) (models.Module, error)
}

type moduleService struct {
	modules   repository.ModuleRepository
	roster    repository.RosterRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewModuleService constructs a ModuleService instance.
func NewModuleService(modules repository.ModuleRepository, roster repository.RosterRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ModuleService {
	return &moduleService{
		modules:   modules,
		roster:    roster,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "module_service").Logger(),
	}
}

func (s *moduleService) List(ctx context.Context, actor scope.Actor) ([]models.Module, error) {
	modules, err := s.modules.List(ctx, actor.Modules)
	if err != nil {
		return nil, &apperr.Storage{Err: err}
	}

	return modules, nil
}

func (s *moduleService) Create(ctx context.Context, actor scope.Actor, payload ModuleCreateRequest) (models.Module, error) {
	if !actor.CanMutate() {
		return models.Module{}, &apperr.Authorization{ActorID: actor.ID, Scope: "modules"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return models.Module{}, &apperr.Validation{Field: "module", Reason: err.Error()}
	}

	teacher, err := s.users.GetByID(ctx, payload.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Module{}, &apperr.NotFound{Entity: "teacher", ID: payload.TeacherID}
		}
		return models.Module{}, &apperr.Storage{Err: err}
	}
	if !teacher.IsTeacher() {
		return models.Module{}, &apperr.RoleViolation{Entity: "module teacher", ExpectedRole: "teacher"}
	}

	if _, err := s.roster.GetGroup(ctx, payload.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Module{}, &apperr.NotFound{Entity: "group", ID: payload.GroupID}
		}
		return models.Module{}, &apperr.Storage{Err: err}
	}

	module := models.Module{
		Name:        payload.Name,
		Code:        payload.Code,
		Description: payload.Description,
		GroupID:     &payload.GroupID,
		TeacherID:   &payload.TeacherID,
	}

	if err := s.modules.Create(ctx, &module); err != nil {
		return models.Module{}, err
	}

	created, err := s.modules.GetByID(ctx, module.ID)
	if err != nil {
		return models.Module{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("module_id", created.ID).Str("code", created.Code).Msg("module created")

	return created, nil
}

func (s *moduleService) Update(ctx context.Context, actor scope.Actor, id uint, payload ModuleUpdateRequest) (models.Module, error) {
	if !actor.CanMutate() {
		return models.Module{}, &apperr.Authorization{ActorID: actor.ID, Scope: "modules"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return models.Module{}, &apperr.Validation{Field: "module", Reason: err.Error()}
	}

	module, err := s.modules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Module{}, &apperr.NotFound{Entity: "module", ID: id}
		}
		return models.Module{}, &apperr.Storage{Err: err}
	}

	if actor.IsTeacher() && (module.TeacherID == nil || *module.TeacherID != actor.ID) {
		return models.Module{}, &apperr.Authorization{ActorID: actor.ID, Scope: "module"}
	}

	if payload.TeacherID != nil {
		teacher, err := s.users.GetByID(ctx, *payload.TeacherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Module{}, &apperr.NotFound{Entity: "teacher", ID: *payload.TeacherID}
			}
			return models.Module{}, &apperr.Storage{Err: err}
		}
		if !teacher.IsTeacher() {
			return models.Module{}, &apperr.RoleViolation{Entity: "module teacher", ExpectedRole: "teacher"}
		}
		module.TeacherID = payload.TeacherID
	}

	if payload.Name != nil {
		module.Name = *payload.Name
	}
	if payload.Code != nil {
		module.Code = *payload.Code
	}
	if payload.Description != nil {
		module.Description = *payload.Description
	}

	if err := s.modules.Update(ctx, &module); err != nil {
		return models.Module{}, err
	}

	updated, err := s.modules.GetByID(ctx, id)
	if err != nil {
		return models.Module{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("module_id", id).Msg("module updated")

	return updated, nil
}

func (s *moduleService) Delete(ctx context.Context, actor scope.Actor, id uint) (models.Module, error) {
	if !actor.CanMutate() {
		return models.Module{}, &apperr.Authorization{ActorID: actor.ID, Scope: "modules"}
	}

	module, err := s.modules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Module{}, &apperr.NotFound{Entity: "module", ID: id}
		}
		return models.Module{}, &apperr.Storage{Err: err}
	}

	if actor.IsTeacher() && (module.TeacherID == nil || *module.TeacherID != actor.ID) {
		return models.Module{}, &apperr.Authorization{ActorID: actor.ID, Scope: "module"}
	}

	if err := s.modules.Delete(ctx, id); err != nil {
		return models.Module{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("module_id", id).Msg("module deleted")

	return module, nil
}
