package service

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

// ActivityEntry describes one auditable event.
type ActivityEntry struct {
	Actor      scope.Actor
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder persists audit entries. Recording failures never fail
// the triggering operation.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the audit recorder.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityRecorder {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	row := models.ActivityLog{
		ActorID:    entry.Actor.ID,
		ActorRole:  entry.Actor.Role,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   datatypes.JSONMap(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &row); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to persist activity entry")
	}
}

func (s *activityService) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return s.repo.List(ctx, limit)
}
