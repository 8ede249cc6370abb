package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

// GradingService assembles the submission/grade read views and enforces
// the write-time invariants of the grading hierarchy.
type GradingService interface {
	ListSubmissions(ctx context.Context, actor scope.Actor, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	CreateSubmission(ctx context.Context, actor scope.Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	UpdateSubmission(ctx context.Context, actor scope.Actor, id uint, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error)
	DeleteSubmission(ctx context.Context, actor scope.Actor, id uint) error
	ListGrades(ctx context.Context, actor scope.Actor) ([]dto.GradeResponse, error)
	CreateGrade(ctx context.Context, actor scope.Actor, payload dto.GradeCreateRequest) (dto.GradeResponse, error)
	UpdateGrade(ctx context.Context, actor scope.Actor, id uint, payload dto.GradeUpdateRequest) (dto.GradeResponse, error)
	DeleteGrade(ctx context.Context, actor scope.Actor, id uint) error
}

type gradingService struct {
	submissions repository.SubmissionRepository
	grades      repository.GradeRepository
	practices   repository.PracticeRepository
	rubrics     repository.RubricRepository
	users       repository.UserRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      *nats.Conn
	subject     string
	policy      *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service. The NATS connection
// is optional; without one events are simply not published.
func NewGradingService(
	submissions repository.SubmissionRepository,
	grades repository.GradeRepository,
	practices repository.PracticeRepository,
	rubrics repository.RubricRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events *nats.Conn,
	subject string,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		submissions: submissions,
		grades:      grades,
		practices:   practices,
		rubrics:     rubrics,
		users:       users,
		validator:   validate,
		activity:    activity,
		events:      events,
		subject:     subject,
		policy:      bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingService) ListSubmissions(ctx context.Context, actor scope.Actor, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	repoFilter := repository.SubmissionFilter{
		PracticeID: filter.PracticeID,
		StudentID:  filter.StudentID,
	}

	submissions, err := s.submissions.List(ctx, repoFilter, actor.Submissions)
	if err != nil {
		return nil, &apperr.Storage{Err: err}
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *gradingService) CreateSubmission(ctx context.Context, actor scope.Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if !actor.CanMutate() {
		return dto.SubmissionResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "submissions"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, &apperr.Validation{Field: "submission", Reason: err.Error()}
	}

	practice, err := s.practices.GetByID(ctx, payload.PracticeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, &apperr.NotFound{Entity: "practice", ID: payload.PracticeID}
		}
		return dto.SubmissionResponse{}, &apperr.Storage{Err: err}
	}

	if !actor.OwnsPractice(practice) {
		return dto.SubmissionResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "practice"}
	}

	student, err := s.users.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, &apperr.NotFound{Entity: "student", ID: payload.StudentID}
		}
		return dto.SubmissionResponse{}, &apperr.Storage{Err: err}
	}
	if !student.IsStudent() {
		return dto.SubmissionResponse{}, &apperr.RoleViolation{Entity: "submission student", ExpectedRole: "student"}
	}

	submittedAt := s.now()
	if payload.SubmittedAt != nil {
		submittedAt = *payload.SubmittedAt
	}

	submission := models.Submission{
		PracticeID:  payload.PracticeID,
		StudentID:   payload.StudentID,
		SubmittedAt: submittedAt,
		Deliverable: strings.TrimSpace(payload.Deliverable),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, &apperr.Storage{Err: err}
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, &apperr.Storage{Err: err}
	}

	s.publish("submission.received", map[string]interface{}{
		"submission_id": created.ID,
		"practice_id":   created.PracticeID,
		"student_id":    created.StudentID,
	})

	s.logger.Info().Uint("submission_id", created.ID).Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *gradingService) UpdateSubmission(ctx context.Context, actor scope.Actor, id uint, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error) {
	if !actor.CanMutate() {
		return dto.SubmissionResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "submissions"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, &apperr.Validation{Field: "submission", Reason: err.Error()}
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, &apperr.NotFound{Entity: "submission", ID: id}
		}
		return dto.SubmissionResponse{}, &apperr.Storage{Err: err}
	}

	if !actor.OwnsPractice(submission.Practice) {
		return dto.SubmissionResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "practice"}
	}

	if payload.SubmittedAt != nil {
		submission.SubmittedAt = *payload.SubmittedAt
	}
	if payload.Deliverable != nil {
		submission.Deliverable = strings.TrimSpace(*payload.Deliverable)
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, &apperr.Storage{Err: err}
	}

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("submission_id", updated.ID).Msg("submission updated")

	return dto.NewSubmissionResponse(updated), nil
}

func (s *gradingService) DeleteSubmission(ctx context.Context, actor scope.Actor, id uint) error {
	if !actor.CanMutate() {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "submissions"}
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFound{Entity: "submission", ID: id}
		}
		return &apperr.Storage{Err: err}
	}

	if !actor.OwnsPractice(submission.Practice) {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "practice"}
	}

	if err := s.submissions.DeleteCascade(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("submission_id", id).Msg("submission deleted")

	return nil
}

func (s *gradingService) ListGrades(ctx context.Context, actor scope.Actor) ([]dto.GradeResponse, error) {
	grades, err := s.grades.List(ctx, actor.Grades)
	if err != nil {
		return nil, &apperr.Storage{Err: err}
	}

	return dto.NewGradeResponseSlice(grades), nil
}

// CreateGrade records a score against a submission. Role, range and both
// ownership checks run before anything is written.
func (s *gradingService) CreateGrade(ctx context.Context, actor scope.Actor, payload dto.GradeCreateRequest) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/aulagest/aulagest-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.create")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(payload.SubmissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if !actor.CanMutate() {
		err := &apperr.Authorization{ActorID: actor.ID, Scope: "grades"}
		span.RecordError(err)
		span.SetStatus(codes.Error, "actor_forbidden")
		return dto.GradeResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, &apperr.Validation{Field: "grade", Reason: err.Error()}
	}

	if !models.ScoreInRange(payload.FinalScore) {
		err := &apperr.Range{Field: "final_score", Min: models.GradeMinScore, Max: models.GradeMaxScore}
		span.RecordError(err)
		span.SetStatus(codes.Error, "score_out_of_range")
		return dto.GradeResponse{}, err
	}

	evaluator, err := s.users.GetByID(ctx, payload.EvaluatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, &apperr.NotFound{Entity: "evaluator", ID: payload.EvaluatorID}
		}
		return dto.GradeResponse{}, &apperr.Storage{Err: err}
	}
	if !evaluator.IsTeacher() {
		err := &apperr.RoleViolation{Entity: "grade evaluator", ExpectedRole: "teacher"}
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluator_not_teacher")
		return dto.GradeResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, &apperr.NotFound{Entity: "submission", ID: payload.SubmissionID}
		}
		return dto.GradeResponse{}, &apperr.Storage{Err: err}
	}

	if err := s.checkGradeOwnership(ctx, actor, submission, payload.RubricID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ownership_check_failed")
		return dto.GradeResponse{}, err
	}

	grade := models.Grade{
		SubmissionID: payload.SubmissionID,
		EvaluatorID:  payload.EvaluatorID,
		RubricID:     payload.RubricID,
		FinalScore:   roundScore(payload.FinalScore),
		Comment:      s.policy.Sanitize(payload.Comment),
	}

	if err := s.grades.Create(ctx, &grade); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_create_failed")
		return dto.GradeResponse{}, err
	}

	created, err := s.grades.GetByID(ctx, grade.ID)
	if err != nil {
		return dto.GradeResponse{}, &apperr.Storage{Err: err}
	}

	if s.activity != nil {
		s.activity.Record(ctx, ActivityEntry{
			Actor:      actor,
			Action:     "grade.recorded",
			EntityType: "grade",
			EntityID:   &created.ID,
			Metadata: map[string]interface{}{
				"submission_id": created.SubmissionID,
				"score":         created.FinalScore,
			},
		})
	}

	s.publish("grade.recorded", map[string]interface{}{
		"grade_id":      created.ID,
		"submission_id": created.SubmissionID,
		"score":         created.FinalScore,
	})

	span.SetAttributes(attribute.Float64("grading.score", created.FinalScore))

	s.logger.Info().Uint("grade_id", created.ID).Float64("score", created.FinalScore).Msg("grade recorded")

	return dto.NewGradeResponse(created), nil
}

// checkGradeOwnership enforces that a teacher only grades submissions of
// their own practices, and only against rubrics whose practice they own.
// Admins pass unconditionally.
func (s *gradingService) checkGradeOwnership(ctx context.Context, actor scope.Actor, submission models.Submission, rubricID *uint) error {
	if actor.IsAdmin() {
		if rubricID == nil {
			return nil
		}
		if _, err := s.rubrics.GetByID(ctx, *rubricID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFound{Entity: "rubric", ID: *rubricID}
			}
			return &apperr.Storage{Err: err}
		}
		return nil
	}

	if submission.Practice.TeacherID != actor.ID {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "practice"}
	}

	if rubricID == nil {
		return nil
	}

	rubric, err := s.rubrics.GetByID(ctx, *rubricID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFound{Entity: "rubric", ID: *rubricID}
		}
		return &apperr.Storage{Err: err}
	}

	if rubric.Practice != nil && rubric.Practice.TeacherID != actor.ID {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "rubric"}
	}

	return nil
}

func (s *gradingService) UpdateGrade(ctx context.Context, actor scope.Actor, id uint, payload dto.GradeUpdateRequest) (dto.GradeResponse, error) {
	if !actor.CanMutate() {
		return dto.GradeResponse{}, &apperr.Authorization{ActorID: actor.ID, Scope: "grades"}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, &apperr.Validation{Field: "grade", Reason: err.Error()}
	}

	grade, err := s.grades.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, &apperr.NotFound{Entity: "grade", ID: id}
		}
		return dto.GradeResponse{}, &apperr.Storage{Err: err}
	}

	rubricID := grade.RubricID
	if payload.RubricID != nil {
		rubricID = payload.RubricID
	}
	if err := s.checkGradeOwnership(ctx, actor, grade.Submission, rubricID); err != nil {
		return dto.GradeResponse{}, err
	}

	if payload.FinalScore != nil {
		if !models.ScoreInRange(*payload.FinalScore) {
			return dto.GradeResponse{}, &apperr.Range{Field: "final_score", Min: models.GradeMinScore, Max: models.GradeMaxScore}
		}
		grade.FinalScore = roundScore(*payload.FinalScore)
	}
	if payload.Comment != nil {
		grade.Comment = s.policy.Sanitize(*payload.Comment)
	}
	if payload.RubricID != nil {
		grade.RubricID = payload.RubricID
	}

	if err := s.grades.Update(ctx, &grade); err != nil {
		return dto.GradeResponse{}, err
	}

	updated, err := s.grades.GetByID(ctx, grade.ID)
	if err != nil {
		return dto.GradeResponse{}, &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("grade_id", updated.ID).Msg("grade updated")

	return dto.NewGradeResponse(updated), nil
}

func (s *gradingService) DeleteGrade(ctx context.Context, actor scope.Actor, id uint) error {
	if !actor.CanMutate() {
		return &apperr.Authorization{ActorID: actor.ID, Scope: "grades"}
	}

	grade, err := s.grades.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFound{Entity: "grade", ID: id}
		}
		return &apperr.Storage{Err: err}
	}

	if err := s.checkGradeOwnership(ctx, actor, grade.Submission, nil); err != nil {
		return err
	}

	if err := s.grades.Delete(ctx, id); err != nil {
		return &apperr.Storage{Err: err}
	}

	s.logger.Info().Uint("grade_id", id).Msg("grade deleted")

	return nil
}

func (s *gradingService) publish(event string, payload map[string]interface{}) {
	if s.events == nil || s.subject == "" {
		return
	}

	payload["event"] = event
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	if err := s.events.Publish(s.subject, data); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("failed to publish grading event")
	}
}

// roundScore normalizes scores to two decimals, matching the stored
// decimal(5,2) precision.
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
