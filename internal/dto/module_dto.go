package dto

import (
	"time"

	"github.com/aulagest/aulagest-api/internal/models"
)

// ModuleResponse is the standalone module view, outside the roster.
type ModuleResponse struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Code            string     `json:"code"`
	Description     string     `json:"description"`
	GroupID         *uint      `json:"group_id"`
	GroupName       string     `json:"group_name,omitempty"`
	Teacher         *UserLite  `json:"teacher"`
	Student         *UserLite  `json:"student"`
	EnrollmentStart *time.Time `json:"enrollment_start,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewModuleResponse converts a module with preloaded relations.
func NewModuleResponse(module models.Module) ModuleResponse {
	response := ModuleResponse{
		ID:          module.ID,
		Name:        module.Name,
		Code:        module.Code,
		Description: module.Description,
		GroupID:     module.GroupID,
		CreatedAt:   module.CreatedAt,
	}

	if module.Group != nil {
		response.GroupName = module.Group.Name
	}
	if module.Teacher != nil {
		teacher := NewUserLite(*module.Teacher)
		response.Teacher = &teacher
	}
	if module.Enrollment != nil {
		start := module.Enrollment.StartDate
		response.EnrollmentStart = &start
		if module.Enrollment.Student.ID != 0 {
			student := NewUserLite(module.Enrollment.Student)
			response.Student = &student
		}
	}

	return response
}

// NewModuleResponseSlice converts module models into views.
func NewModuleResponseSlice(modules []models.Module) []ModuleResponse {
	responses := make([]ModuleResponse, 0, len(modules))
	for _, module := range modules {
		responses = append(responses, NewModuleResponse(module))
	}

	return responses
}
