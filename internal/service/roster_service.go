package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

const rosterCacheKey = "roster:groups"

// RosterService converges groups, modules and enrollments to submitted
// target states and serves the materialized roster views.
type RosterService interface {
	ListGroups(ctx context.Context, actor scope.Actor) ([]dto.GroupResponse, error)
	GetGroup(ctx context.Context, actor scope.Actor, id uint) (dto.GroupResponse, error)
	CreateGroup(ctx context.Context, actor scope.Actor, payload dto.RosterRequest) (dto.GroupResponse, error)
	UpdateGroup(ctx context.Context, actor scope.Actor, id uint, payload dto.RosterRequest) (dto.GroupResponse, error)
	DeleteGroup(ctx context.Context, actor scope.Actor, id uint) error
}

type rosterService struct {
	roster    repository.RosterRepository
	users     repository.UserRepository
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewRosterService constructs a RosterService instance.
func NewRosterService(roster repository.RosterRepository, users repository.UserRepository, validate *validator.Validate, cache *redis.Client, ttl time.Duration, activity ActivityRecorder, logger zerolog.Logger) RosterService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &rosterService{
		roster:    roster,
		users:     users,
		validator: validate,
		cache:     cache,
		cacheTTL:  ttl,
		activity:  activity,
		logger:    logger.With().Str("component", "roster_service").Logger(),
	}
}

func (s *rosterService) ListGroups(ctx context.Context, actor scope.Actor) ([]dto.GroupResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, rosterCacheKey).Result(); err == nil {
			var response []dto.GroupResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Msg("roster cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read roster cache")
		}
	}

	groups, err := s.roster.ListGroups(ctx)
	if err != nil {
		return nil, &apperr.Storage{Err: err}
	}

	response := dto.NewGroupResponseSlice(groups)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, rosterCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store roster cache")
			}
		}
	}

	return response, nil
}

func (s *rosterService) GetGroup(ctx context.Context, actor scope.Actor, id uint) (dto.GroupResponse, error) {
	group, err := s.roster.GetGroup(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, &apperr.NotFound{Entity: "group", ID: id}
		}
		return dto.GroupResponse{}, &apperr.Storage{Err: err}
	}

	return dto.NewGroupResponse(group), nil
}

func (s *rosterService) CreateGroup(ctx context.Context, actor scope.Actor, payload dto.RosterRequest) (dto.GroupResponse, error) {
	return s.apply(ctx, actor, nil, payload)
}

func (s *rosterService) UpdateGroup(ctx context.Context, actor scope.Actor, id uint, payload dto.RosterRequest) (dto.GroupResponse, error) {
	return s.apply(ctx, actor, &id, payload)
}

// apply validates the target fully before any mutation, then hands the
// whole convergence to the repository's single transaction.
func (s *rosterService) apply(ctx context.Context, actor scope.Actor, groupID *uint, payload dto.RosterRequest) (dto.GroupResponse, error) {
	if !actor.CanMutate() {
		return dto.GroupResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "roster"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, &apperr.Validation{Field: "roster", Reason: err.Error()}
	}

	if err := s.checkTarget(ctx, payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.roster.Apply(ctx, groupID, payload.ToTarget())
	if err != nil {
		return dto.GroupResponse{}, err
	}

	s.invalidateCache(ctx)

	action := "roster.created"
	if groupID != nil {
		action = "roster.updated"
	}
	if s.activity != nil {
		s.activity.Record(ctx, ActivityEntry{
			Actor:      actor,
			Action:     action,
			EntityType: "group",
			EntityID:   &group.ID,
			Metadata:   map[string]interface{}{"modules": len(group.Modules)},
		})
	}

	s.logger.Info().Uint("group_id", group.ID).Int("modules", len(group.Modules)).Msg("roster reconciled")

	return dto.NewGroupResponse(group), nil
}

// checkTarget fails fast on referential problems so the reconciliation
// never starts with an invalid target: the owner must be a teacher and
// every referenced student must exist with the student role.
func (s *rosterService) checkTarget(ctx context.Context, payload dto.RosterRequest) error {
	owner, err := s.users.GetByID(ctx, payload.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFound{Entity: "user", ID: payload.OwnerID}
		}
		return &apperr.Storage{Err: err}
	}
	if !owner.IsTeacher() {
		return &apperr.RoleViolation{Entity: "group owner", ExpectedRole: "teacher"}
	}

	for _, module := range payload.Modules {
		if module.StudentID == nil {
			continue
		}
		student, err := s.users.GetByID(ctx, *module.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFound{Entity: "user", ID: *module.StudentID}
			}
			return &apperr.Storage{Err: err}
		}
		if !student.IsStudent() {
			return &apperr.RoleViolation{Entity: "module student", ExpectedRole: "student"}
		}
	}

	return nil
}

// DeleteGroup is reconciliation to an empty module list followed by
// removal of the group row itself.
func (s *rosterService) DeleteGroup(ctx context.Context, actor scope.Actor, id uint) error {
	if !actor.CanMutate() {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "roster"}
	}

	if err := s.roster.DeleteGroup(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx)

	if s.activity != nil {
		s.activity.Record(ctx, ActivityEntry{
			Actor:      actor,
			Action:     "roster.deleted",
			EntityType: "group",
			EntityID:   &id,
		})
	}

	s.logger.Info().Uint("group_id", id).Msg("group deleted")

	return nil
}

func (s *rosterService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, rosterCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate roster cache")
	}
}
