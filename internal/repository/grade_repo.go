package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/models"
)

// GradeRepository defines data operations for grades.
type GradeRepository interface {
	List(ctx context.Context, scopes ...Scope) ([]models.Grade, error)
	GetByID(ctx context.Context, id uint) (models.Grade, error)
	GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id uint) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Grade{}).
		Preload("Evaluator").
		Preload("Rubric").
		Preload("Submission").
		Preload("Submission.Student").
		Preload("Submission.Practice")
}

func (r *gradeRepository) List(ctx context.Context, scopes ...Scope) ([]models.Grade, error) {
	var grades []models.Grade
	query := applyScopes(r.baseQuery(ctx), scopes)
	if err := query.Order("grades.id ASC").Find(&grades).Error; err != nil {
		return nil, err
	}

	return grades, nil
}

func (r *gradeRepository) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.baseQuery(ctx).First(&grade, id).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.baseQuery(ctx).Where("grades.submission_id = ?", submissionID).First(&grade).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	return translateError(r.db.WithContext(ctx).Create(grade).Error, "one grade per submission")
}

func (r *gradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	return translateError(r.db.WithContext(ctx).Omit("Submission", "Evaluator", "Rubric").Save(grade).Error, "one grade per submission")
}

func (r *gradeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Grade{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
