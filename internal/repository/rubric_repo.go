package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/reconcile"
)

// CriterionPayload carries the desired state of one rubric criterion.
type CriterionPayload struct {
	Name        string
	MaxScore    int
	Description string
}

// CascadeCounts reports how many dependent rows a rubric delete removed.
type CascadeCounts struct {
	Grades   int64 `json:"grades"`
	Criteria int64 `json:"criteria"`
}

// RubricRepository defines persistence operations for rubrics and their
// criteria. UpdateWithCriteria and DeleteCascade are transactional.
type RubricRepository interface {
	List(ctx context.Context, scopes ...Scope) ([]models.Rubric, error)
	GetByID(ctx context.Context, id uint) (models.Rubric, error)
	Create(ctx context.Context, rubric *models.Rubric) error
	UpdateWithCriteria(ctx context.Context, rubric *models.Rubric, criteria []reconcile.Item[CriterionPayload]) error
	DeleteCascade(ctx context.Context, id uint) (CascadeCounts, error)
}

type rubricRepository struct {
	db *gorm.DB
}

// NewRubricRepository instantiates a GORM-backed repository.
func NewRubricRepository(db *gorm.DB) RubricRepository {
	return &rubricRepository{db: db}
}

func (r *rubricRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Rubric{}).
		Preload("Practice").
		Preload("Practice.Teacher").
		Preload("Evaluator").
		Preload("Criteria", func(db *gorm.DB) *gorm.DB { return db.Order("criteria.id ASC") })
}

func (r *rubricRepository) List(ctx context.Context, scopes ...Scope) ([]models.Rubric, error) {
	var rubrics []models.Rubric
	query := applyScopes(r.baseQuery(ctx), scopes)
	if err := query.Order("rubrics.id ASC").Find(&rubrics).Error; err != nil {
		return nil, err
	}

	return rubrics, nil
}

func (r *rubricRepository) GetByID(ctx context.Context, id uint) (models.Rubric, error) {
	var rubric models.Rubric
	if err := r.baseQuery(ctx).First(&rubric, id).Error; err != nil {
		return models.Rubric{}, err
	}

	return rubric, nil
}

func (r *rubricRepository) Create(ctx context.Context, rubric *models.Rubric) error {
	return translateError(r.db.WithContext(ctx).Create(rubric).Error, "rubric")
}

// UpdateWithCriteria saves the rubric row and replaces its criteria by
// diff: entries with an id are updated, entries without are inserted, and
// persisted criteria missing from the list are deleted. One transaction.
func (r *rubricRepository) UpdateWithCriteria(ctx context.Context, rubric *models.Rubric, criteria []reconcile.Item[CriterionPayload]) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Criteria").Save(rubric).Error; err != nil {
			return translateError(err, "rubric")
		}

		var existing []models.Criterion
		if err := tx.Where("rubric_id = ?", rubric.ID).Order("id ASC").Find(&existing).Error; err != nil {
			return &apperr.Storage{Err: err}
		}

		existingIDs := make([]uint, 0, len(existing))
		byID := make(map[uint]models.Criterion, len(existing))
		for _, c := range existing {
			existingIDs = append(existingIDs, c.ID)
			byID[c.ID] = c
		}

		for _, item := range criteria {
			if item.ID != nil {
				if _, ok := byID[*item.ID]; !ok {
					return &apperr.NotFound{Entity: "criterion", ID: *item.ID}
				}
			}
		}

		plan, err := reconcile.Build(existingIDs, criteria)
		if err != nil {
			return &apperr.Validation{Field: "criteria", Reason: err.Error()}
		}

		for _, id := range plan.Deletes {
			if err := tx.Delete(&models.Criterion{}, id).Error; err != nil {
				return &apperr.Storage{Err: err}
			}
		}

		for _, op := range plan.Updates {
			criterion := byID[op.ID]
			criterion.Name = op.Payload.Name
			criterion.MaxScore = op.Payload.MaxScore
			criterion.Description = op.Payload.Description
			if err := tx.Save(&criterion).Error; err != nil {
				return &apperr.Storage{Err: err}
			}
		}

		for _, payload := range plan.Inserts {
			criterion := models.Criterion{
				RubricID:    rubric.ID,
				Name:        payload.Name,
				MaxScore:    payload.MaxScore,
				Description: payload.Description,
			}
			if err := tx.Create(&criterion).Error; err != nil {
				return &apperr.Storage{Err: err}
			}
		}

		return nil
	})
}

// DeleteCascade removes all grades referencing the rubric, then its
// criteria, then the rubric row, reporting how many rows each step took.
func (r *rubricRepository) DeleteCascade(ctx context.Context, id uint) (CascadeCounts, error) {
	var counts CascadeCounts

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rubric models.Rubric
		if err := tx.First(&rubric, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFound{Entity: "rubric", ID: id}
			}
			return &apperr.Storage{Err: err}
		}

		grades := tx.Where("rubric_id = ?", id).Delete(&models.Grade{})
		if grades.Error != nil {
			return &apperr.Storage{Err: grades.Error}
		}
		counts.Grades = grades.RowsAffected

		criteria := tx.Where("rubric_id = ?", id).Delete(&models.Criterion{})
		if criteria.Error != nil {
			return &apperr.Storage{Err: criteria.Error}
		}
		counts.Criteria = criteria.RowsAffected

		if err := tx.Delete(&models.Rubric{}, id).Error; err != nil {
			return &apperr.Storage{Err: err}
		}

		return nil
	})
	if err != nil {
		return CascadeCounts{}, err
	}

	return counts, nil
}
