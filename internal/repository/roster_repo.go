package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/reconcile"
)

// ModulePayload carries the desired state of one module inside a roster
// target. A nil StudentID means the module tracks no student.
type ModulePayload struct {
	Name        string
	Code        string
	Description string
	StudentID   *uint
}

// RosterTarget is the full desired state of one group: its name, its
// owning teacher and the complete list of modules it should contain.
// Persisted modules absent from Modules are deleted.
type RosterTarget struct {
	Name    string
	OwnerID uint
	Modules []reconcile.Item[ModulePayload]
}

// RosterRepository converges the (group, modules, enrollments) subgraph.
// Every Apply and DeleteGroup call runs as a single transaction; any step
// failure rolls the whole call back.
type RosterRepository interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	GetGroup(ctx context.Context, id uint) (models.Group, error)
	Apply(ctx context.Context, groupID *uint, target RosterTarget) (models.Group, error)
	DeleteGroup(ctx context.Context, id uint) error
}

type rosterRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRosterRepository instantiates a GORM-backed roster repository.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db, now: time.Now}
}

func groupPreloads(q *gorm.DB) *gorm.DB {
	return q.Preload("Owner").
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("modules.id ASC") }).
		Preload("Modules.Enrollment").
		Preload("Modules.Enrollment.Student")
}

func (r *rosterRepository) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := groupPreloads(r.db.WithContext(ctx)).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *rosterRepository) GetGroup(ctx context.Context, id uint) (models.Group, error) {
	var group models.Group
	if err := groupPreloads(r.db.WithContext(ctx)).First(&group, id).Error; err != nil {
		return models.Group{}, err
	}

	return group, nil
}

// Apply converges the stored subgraph to target. When groupID is nil a new
// group is created; otherwise the existing group is updated in place. The
// returned group is re-read from the committed state, never assembled from
// in-memory guesses.
func (r *rosterRepository) Apply(ctx context.Context, groupID *uint, target RosterTarget) (models.Group, error) {
	var resultID uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := r.upsertGroup(tx, groupID, target)
		if err != nil {
			return err
		}
		resultID = group.ID

		var existing []models.Module
		if err := tx.Where("group_id = ?", group.ID).Order("id ASC").Find(&existing).Error; err != nil {
			return &apperr.Storage{Err: err}
		}

		existingIDs := make([]uint, 0, len(existing))
		byID := make(map[uint]models.Module, len(existing))
		for _, m := range existing {
			existingIDs = append(existingIDs, m.ID)
			byID[m.ID] = m
		}

		for _, item := range target.Modules {
			if item.ID != nil {
				if _, ok := byID[*item.ID]; !ok {
					return &apperr.NotFound{Entity: "module", ID: *item.ID}
				}
			}
		}

		plan, err := reconcile.Build(existingIDs, target.Modules)
		if err != nil {
			return &apperr.Validation{Field: "modules", Reason: err.Error()}
		}

		for _, id := range plan.Deletes {
			if err := r.deleteModule(tx, byID[id]); err != nil {
				return err
			}
		}

		for _, op := range plan.Updates {
			if err := r.updateModule(tx, group, byID[op.ID], op.Payload); err != nil {
				return err
			}
		}

		for _, payload := range plan.Inserts {
			if err := r.insertModule(tx, group, payload); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	return r.GetGroup(ctx, resultID)
}

func (r *rosterRepository) upsertGroup(tx *gorm.DB, groupID *uint, target RosterTarget) (models.Group, error) {
	if groupID == nil {
		group := models.Group{Name: target.Name, OwnerID: target.OwnerID}
		if err := tx.Create(&group).Error; err != nil {
			return models.Group{}, translateError(err, "group")
		}
		return group, nil
	}

	var group models.Group
	if err := tx.First(&group, *groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, &apperr.NotFound{Entity: "group", ID: *groupID}
		}
		return models.Group{}, &apperr.Storage{Err: err}
	}

	group.Name = target.Name
	group.OwnerID = target.OwnerID
	if err := tx.Save(&group).Error; err != nil {
		return models.Group{}, translateError(err, "group")
	}

	return group, nil
}

// deleteModule removes the bound enrollment first, then the module row.
// The module's enrollment reference is cleared up front so the set-null
// constraint never races the delete.
func (r *rosterRepository) deleteModule(tx *gorm.DB, module models.Module) error {
	enrollmentID := module.EnrollmentID

	if enrollmentID != nil {
		if err := tx.Model(&models.Module{}).Where("id = ?", module.ID).Update("enrollment_id", nil).Error; err != nil {
			return &apperr.Storage{Err: err}
		}
		if err := tx.Delete(&models.Enrollment{}, *enrollmentID).Error; err != nil {
			return &apperr.Storage{Err: err}
		}
	}

	if err := tx.Delete(&models.Module{}, module.ID).Error; err != nil {
		return &apperr.Storage{Err: err}
	}

	return nil
}

func (r *rosterRepository) updateModule(tx *gorm.DB, group models.Group, module models.Module, payload ModulePayload) error {
	if payload.StudentID != nil {
		if module.EnrollmentID != nil {
			// Rebind in place, preserving the original start date.
			var enrollment models.Enrollment
			if err := tx.First(&enrollment, *module.EnrollmentID).Error; err != nil {
				return &apperr.Storage{Err: err}
			}
			enrollment.StudentID = *payload.StudentID
			enrollment.GroupID = group.ID
			if err := tx.Save(&enrollment).Error; err != nil {
				return &apperr.Storage{Err: err}
			}
		} else {
			enrollment := models.Enrollment{
				StudentID: *payload.StudentID,
				GroupID:   group.ID,
				StartDate: r.now(),
			}
			if err := tx.Create(&enrollment).Error; err != nil {
				return &apperr.Storage{Err: err}
			}
			module.EnrollmentID = &enrollment.ID
		}
	}

	module.Name = payload.Name
	module.Code = payload.Code
	module.Description = payload.Description
	module.GroupID = &group.ID
	if module.TeacherID == nil {
		module.TeacherID = &group.OwnerID
	}

	if err := tx.Save(&module).Error; err != nil {
		return translateError(err, "module code")
	}

	return nil
}

// insertModule creates the enrollment before the module so the module row
// can reference it from the start.
func (r *rosterRepository) insertModule(tx *gorm.DB, group models.Group, payload ModulePayload) error {
	var enrollmentID *uint

	if payload.StudentID != nil {
		enrollment := models.Enrollment{
			StudentID: *payload.StudentID,
			GroupID:   group.ID,
			StartDate: r.now(),
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			return &apperr.Storage{Err: err}
		}
		enrollmentID = &enrollment.ID
	}

	module := models.Module{
		Name:         payload.Name,
		Code:         payload.Code,
		Description:  payload.Description,
		GroupID:      &group.ID,
		TeacherID:    &group.OwnerID,
		EnrollmentID: enrollmentID,
	}
	if err := tx.Create(&module).Error; err != nil {
		return translateError(err, "module code")
	}

	return nil
}

// DeleteGroup is a reconciliation against an empty target followed by the
// removal of the group row: modules go first, then any remaining
// enrollments of the group, then the group itself.
func (r *rosterRepository) DeleteGroup(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFound{Entity: "group", ID: id}
			}
			return &apperr.Storage{Err: err}
		}

		var modules []models.Module
		if err := tx.Where("group_id = ?", id).Order("id ASC").Find(&modules).Error; err != nil {
			return &apperr.Storage{Err: err}
		}

		for _, module := range modules {
			if err := r.deleteModule(tx, module); err != nil {
				return err
			}
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return &apperr.Storage{Err: err}
		}

		if err := tx.Delete(&models.Group{}, id).Error; err != nil {
			return &apperr.Storage{Err: err}
		}

		return nil
	})
}
