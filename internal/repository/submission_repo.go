package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	PracticeID *uint
	StudentID  *uint
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter, scopes ...Scope) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	DeleteCascade(ctx context.Context, id uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Student").
		Preload("Practice").
		Preload("Practice.Teacher").
		Preload("Grade").
		Preload("Grade.Evaluator").
		Preload("Grade.Rubric").
		Preload("Grade.Rubric.Criteria", func(db *gorm.DB) *gorm.DB { return db.Order("criteria.id ASC") })
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter, scopes ...Scope) ([]models.Submission, error) {
	query := applyScopes(r.baseQuery(ctx), scopes)

	if filter.PracticeID != nil {
		query = query.Where("submissions.practice_id = ?", *filter.PracticeID)
	}

	if filter.StudentID != nil {
		query = query.Where("submissions.student_id = ?", *filter.StudentID)
	}

	var submissions []models.Submission
	if err := query.Order("submissions.id ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Grade", "Practice", "Student").Save(submission).Error
}

// DeleteCascade removes the submission's grade, if any, before the
// submission row itself.
func (r *submissionRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Delete(&models.Grade{}).Error; err != nil {
			return &apperr.Storage{Err: err}
		}

		result := tx.Delete(&models.Submission{}, id)
		if result.Error != nil {
			return &apperr.Storage{Err: result.Error}
		}
		if result.RowsAffected == 0 {
			return &apperr.NotFound{Entity: "submission", ID: id}
		}

		return nil
	})
}
