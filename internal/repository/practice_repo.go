package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/models"
)

// PracticeRepository defines persistence operations for practices.
type PracticeRepository interface {
	List(ctx context.Context, scopes ...Scope) ([]models.Practice, error)
	GetByID(ctx context.Context, id uint) (models.Practice, error)
	Create(ctx context.Context, practice *models.Practice) error
	Update(ctx context.Context, practice *models.Practice) error
	Delete(ctx context.Context, id uint) error
}

type practiceRepository struct {
	db *gorm.DB
}

// NewPracticeRepository instantiates a GORM-backed repository.
func NewPracticeRepository(db *gorm.DB) PracticeRepository {
	return &practiceRepository{db: db}
}

func (r *practiceRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Practice{}).Preload("Teacher")
}

func (r *practiceRepository) List(ctx context.Context, scopes ...Scope) ([]models.Practice, error) {
	var practices []models.Practice
	query := applyScopes(r.baseQuery(ctx), scopes)
	if err := query.Order("practices.id ASC").Find(&practices).Error; err != nil {
		return nil, err
	}

	return practices, nil
}

func (r *practiceRepository) GetByID(ctx context.Context, id uint) (models.Practice, error) {
	var practice models.Practice
	if err := r.baseQuery(ctx).First(&practice, id).Error; err != nil {
		return models.Practice{}, err
	}

	return practice, nil
}

func (r *practiceRepository) Create(ctx context.Context, practice *models.Practice) error {
	return r.db.WithContext(ctx).Create(practice).Error
}

func (r *practiceRepository) Update(ctx context.Context, practice *models.Practice) error {
	return r.db.WithContext(ctx).Save(practice).Error
}

func (r *practiceRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Practice{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
