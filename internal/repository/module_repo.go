package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/models"
)

// ModuleRepository defines standalone persistence operations for modules,
// outside the roster reconciliation path.
type ModuleRepository interface {
	List(ctx context.Context, scopes ...Scope) ([]models.Module, error)
	GetByID(ctx context.Context, id uint) (models.Module, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id uint) error
}

type moduleRepository struct {
	db *gorm.DB
}

// NewModuleRepository instantiates the repository.
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Module{}).
		Preload("Group").
		Preload("Teacher").
		Preload("Enrollment").
		Preload("Enrollment.Student")
}

func (r *moduleRepository) List(ctx context.Context, scopes ...Scope) ([]models.Module, error) {
	var modules []models.Module
	query := applyScopes(r.baseQuery(ctx), scopes)
	if err := query.Order("modules.id ASC").Find(&modules).Error; err != nil {
		return nil, err
	}

	return modules, nil
}

func (r *moduleRepository) GetByID(ctx context.Context, id uint) (models.Module, error) {
	var module models.Module
	if err := r.baseQuery(ctx).First(&module, id).Error; err != nil {
		return models.Module{}, err
	}

	return module, nil
}

func (r *moduleRepository) Create(ctx context.Context, module *models.Module) error {
	return translateError(r.db.WithContext(ctx).Create(module).Error, "module code")
}

func (r *moduleRepository) Update(ctx context.Context, module *models.Module) error {
	return translateError(r.db.WithContext(ctx).Omit("Group", "Teacher", "Enrollment").Save(module).Error, "module code")
}

func (r *moduleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Module{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
