package dto

import (
	"time"

	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/reconcile"
	"github.com/aulagest/aulagest-api/internal/repository"
)

// RosterModuleRequest is one desired module inside a roster payload. A set
// ID marks an update of the persisted module; without one the module is
// inserted. StudentID, when present, binds an enrollment for that student.
type RosterModuleRequest struct {
	ID          *uint  `json:"id" validate:"omitempty,gt=0"`
	Name        string `json:"name" validate:"required,max=255"`
	Code        string `json:"code" validate:"required,max=100"`
	Description string `json:"description"`
	StudentID   *uint  `json:"student_id" validate:"omitempty,gt=0"`
}

// RosterRequest is the full target state for one group. Persisted modules
// absent from Modules are deleted along with their enrollments.
type RosterRequest struct {
	Name    string                `json:"name" validate:"required,max=255"`
	OwnerID uint                  `json:"owner_id" validate:"required,gt=0"`
	Modules []RosterModuleRequest `json:"modules" validate:"required,min=1,dive"`
}

// ToTarget resolves the optional-id entries into tagged insert/update
// items once, at the boundary, so the reconciliation never re-branches on
// "is the id present".
func (r RosterRequest) ToTarget() repository.RosterTarget {
	items := make([]reconcile.Item[repository.ModulePayload], 0, len(r.Modules))
	for _, m := range r.Modules {
		payload := repository.ModulePayload{
			Name:        m.Name,
			Code:        m.Code,
			Description: m.Description,
			StudentID:   m.StudentID,
		}
		if m.ID != nil {
			items = append(items, reconcile.Update(*m.ID, payload))
		} else {
			items = append(items, reconcile.Insert(payload))
		}
	}

	return repository.RosterTarget{
		Name:    r.Name,
		OwnerID: r.OwnerID,
		Modules: items,
	}
}

// RosterModuleResponse is the materialized view of one module.
type RosterModuleResponse struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Code            string     `json:"code"`
	Description     string     `json:"description"`
	Student         *UserLite  `json:"student"`
	EnrollmentStart *time.Time `json:"enrollment_start,omitempty"`
}

// GroupResponse is the materialized roster view of one group.
type GroupResponse struct {
	ID      uint                   `json:"id"`
	Name    string                 `json:"name"`
	Owner   UserLite               `json:"owner"`
	Modules []RosterModuleResponse `json:"modules"`
}

// NewGroupResponse converts a group with preloaded modules/enrollments
// into the roster view.
func NewGroupResponse(group models.Group) GroupResponse {
	modules := make([]RosterModuleResponse, 0, len(group.Modules))
	for _, module := range group.Modules {
		entry := RosterModuleResponse{
			ID:          module.ID,
			Name:        module.Name,
			Code:        module.Code,
			Description: module.Description,
		}
		if module.Enrollment != nil {
			start := module.Enrollment.StartDate
			entry.EnrollmentStart = &start
			if module.Enrollment.Student.ID != 0 {
				student := NewUserLite(module.Enrollment.Student)
				entry.Student = &student
			}
		}
		modules = append(modules, entry)
	}

	return GroupResponse{
		ID:      group.ID,
		Name:    group.Name,
		Owner:   NewUserLite(group.Owner),
		Modules: modules,
	}
}

// NewGroupResponseSlice converts group models into roster views.
func NewGroupResponseSlice(groups []models.Group) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, NewGroupResponse(group))
	}

	return responses
}
