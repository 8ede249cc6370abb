package service

import (
	"context"
	"errors"
	"math"

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

// RubricService manages scoring templates and their criteria.
type RubricService interface {
	List(ctx context.Context, actor scope.Actor) ([]dto.RubricResponse, error)
	Get(ctx context.Context, actor scope.Actor, id uint) (dto.RubricResponse, error)
	Create(ctx context.Context, actor scope.Actor, payload dto.RubricCreateRequest) (dto.RubricResponse, error)
	Update(ctx context.Context, actor scope.Actor, id uint, payload dto.RubricUpdateRequest) (dto.RubricResponse, error)
	Delete(ctx context.Context, actor scope.Actor, id uint) (repository.CascadeCounts, error)
}

type rubricService struct {
	rubrics   repository.RubricRepository
	practices repository.PracticeRepository
	users     repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	policy    *bluemonday.Policy
	logger    zerolog.Logger
}

// NewRubricService constructs a RubricService instance.
func NewRubricService(rubrics repository.RubricRepository, practices repository.PracticeRepository, users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) RubricService {
	return &rubricService{
		rubrics:   rubrics,
		practices: practices,
		users:     users,
		validator: validate,
		activity:  activity,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "rubric_service").Logger(),
	}
}

func (s *rubricService) List(ctx context.Context, actor scope.Actor) ([]dto.RubricResponse, error) {
	rubrics, err := s.rubrics.List(ctx, actor.Rubrics)
	if err != nil {
		return nil, &apperr.Storage{Err: err}
	}

	return dto.NewRubricResponseSlice(rubrics), nil
}

func (s *rubricService) Get(ctx context.Context, actor scope.Actor, id uint) (dto.RubricResponse, error) {
	rubric, err := s.rubrics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RubricResponse{}, &apperr.NotFound{Entity: "rubric", ID: id}
		}
		return dto.RubricResponse{}, &apperr.Storage{Err: err}
	}

	return dto.NewRubricResponse(rubric), nil
}

func (s *rubricService) Create(ctx context.Context, actor scope.Actor, payload dto.RubricCreateRequest) (dto.RubricResponse, error) {
	if !actor.CanMutate() {
		return dto.RubricResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "rubrics"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricResponse{}, &apperr.Validation{Field: "rubric", Reason: err.Error()}
	}

	if err := s.checkReferences(ctx, actor, payload.PracticeID, payload.EvaluatorID); err != nil {
		return dto.RubricResponse{}, err
	}

	if err := checkCriterionScores(payload.Criteria); err != nil {
		return dto.RubricResponse{}, err
	}

	rubric := models.Rubric{
		Name:        payload.Name,
		Document:    payload.Document,
		PracticeID:  payload.PracticeID,
		EvaluatorID: payload.EvaluatorID,
		Criteria:    make([]models.Criterion, 0, len(payload.Criteria)),
	}
	for _, criterion := range payload.Criteria {
		rubric.Criteria = append(rubric.Criteria, models.Criterion{
			Name:        criterion.Name,
			MaxScore:    criterion.MaxScore,
			Description: s.policy.Sanitize(criterion.Description),
		})
	}

	if err := s.rubrics.Create(ctx, &rubric); err != nil {
		return dto.RubricResponse{}, err
	}

	created, err := s.rubrics.GetByID(ctx, rubric.ID)
	if err != nil {
		return dto.RubricResponse{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("rubric_id", created.ID).Int("criteria", len(created.Criteria)).Msg("rubric created")

	return dto.NewRubricResponse(created), nil
}

// Update replaces the rubric's fields and converges its criteria by diff:
// entries with an id are updated, entries without are inserted, persisted
// criteria missing from the payload are deleted.
func (s *rubricService) Update(ctx context.Context, actor scope.Actor, id uint, payload dto.RubricUpdateRequest) (dto.RubricResponse, error) {
	if !actor.CanMutate() {
		return dto.RubricResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "rubrics"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricResponse{}, &apperr.Validation{Field: "rubric", Reason: err.Error()}
	}

	rubric, err := s.rubrics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RubricResponse{}, &apperr.NotFound{Entity: "rubric", ID: id}
		}
		return dto.RubricResponse{}, &apperr.Storage{Err: err}
	}

	if err := s.checkOwnership(actor, rubric); err != nil {
		return dto.RubricResponse{}, err
	}

	if err := s.checkReferences(ctx, actor, payload.PracticeID, payload.EvaluatorID); err != nil {
		return dto.RubricResponse{}, err
	}

	if err := checkCriterionScores(payload.Criteria); err != nil {
		return dto.RubricResponse{}, err
	}

	rubric.Name = payload.Name
	rubric.Document = payload.Document
	rubric.PracticeID = payload.PracticeID
	rubric.EvaluatorID = payload.EvaluatorID

	criteria := payload.Criteria
	for i := range criteria {
		criteria[i].Description = s.policy.Sanitize(criteria[i].Description)
	}

	if err := s.rubrics.UpdateWithCriteria(ctx, &rubric, dto.CriterionItems(criteria)); err != nil {
		return dto.RubricResponse{}, err
	}

	updated, err := s.rubrics.GetByID(ctx, id)
	if err != nil {
		return dto.RubricResponse{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("rubric_id", id).Int("criteria", len(updated.Criteria)).Msg("rubric updated")

	return dto.NewRubricResponse(updated), nil
}

// Delete cascades: grades referencing the rubric first, then criteria,
// then the rubric row. The cascaded counts are surfaced to the caller.
func (s *rubricService) Delete(ctx context.Context, actor scope.Actor, id uint) (repository.CascadeCounts, error) {
	if !actor.CanMutate() {
		return repository.CascadeCounts{}, &apperr.Authorization{ActorID: actor.ID, Scope: "rubrics"}
	}

	rubric, err := s.rubrics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.CascadeCounts{}, &apperr.NotFound{Entity: "rubric", ID: id}
		}
		return repository.CascadeCounts{}, &apperr.Storage{Err: err}
	}

	if err := s.checkOwnership(actor, rubric); err != nil {
		return repository.CascadeCounts{}, err
	}

	counts, err := s.rubrics.DeleteCascade(ctx, id)
	if err != nil {
		return repository.CascadeCounts{}, err
	}

	if s.activity != nil {
		s.activity.Record(ctx, ActivityEntry{
			Actor:      actor,
			Action:     "rubric.deleted",
			EntityType: "rubric",
			EntityID:   &id,
			Metadata: map[string]interface{}{
				"grades_removed":   counts.Grades,
				"criteria_removed": counts.Criteria,
			},
		})
	}

	s.logger.Info().Uint("rubric_id", id).Int64("grades", counts.Grades).Int64("criteria", counts.Criteria).Msg("rubric deleted")

	return counts, nil
}

// checkOwnership restricts teachers to rubrics they evaluate or whose
// practice they own.
func (s *rubricService) checkOwnership(actor scope.Actor, rubric models.Rubric) error {
	if actor.IsAdmin() {
		return nil
	}

	if rubric.EvaluatorID != nil && *rubric.EvaluatorID == actor.ID {
		return nil
	}
	if rubric.Practice != nil && rubric.Practice.TeacherID == actor.ID {
		return nil
	}

	return &apperr.Authorization{ActorID: actor.ID, Scope: "rubric"}
}

// checkReferences verifies the optional practice and evaluator links: the
// practice must exist (and, for teachers, be their own), the evaluator
// must be a teacher.
func (s *rubricService) checkReferences(ctx context.Context, actor scope.Actor, practiceID, evaluatorID *uint) error {
	if practiceID != nil {
		practice, err := s.practices.GetByID(ctx, *practiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFound{Entity: "practice", ID: *practiceID}
			}
			return &apperr.Storage{Err: err}
		}
		if !actor.OwnsPractice(practice) {
			return &apperr.Authorization{ActorID: actor.ID, Scope: "practice"}
		}
	}

	if evaluatorID != nil {
		evaluator, err := s.users.GetByID(ctx, *evaluatorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFound{Entity: "evaluator", ID: *evaluatorID}
			}
			return &apperr.Storage{Err: err}
		}
		if !evaluator.IsTeacher() {
			return &apperr.RoleViolation{Entity: "rubric evaluator", ExpectedRole: "teacher"}
		}
	}

	return nil
}

// checkCriterionScores re-validates the positive max score invariant
// beyond the struct tags.
func checkCriterionScores(criteria []dto.CriterionRequest) error {
	for _, criterion := range criteria {
		if criterion.MaxScore <= 0 {
			return &apperr.Range{Field: "max_score", Min: 1, Max: math.Inf(1)}
		}
	}
	return nil
}
