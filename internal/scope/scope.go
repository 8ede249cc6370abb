// Package scope restricts which rows an acting user may read or mutate.
// The predicates are applied at query level so out-of-scope rows are never
// materialised, and mutation checks run before any write.
package scope

import (
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/models"
)

// Actor is the resolved identity threaded into every service call. It
// replaces any ambient "current user" lookup: identity travels with the
// request.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor bypasses row scoping.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsTeacher reports whether the actor holds the teacher role.
func (a Actor) IsTeacher() bool { return a.Role == models.RoleTeacher }

// IsStudent reports whether the actor holds the student role.
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }

// Practices narrows a practice query to rows the actor may see.
func (a Actor) Practices(q *gorm.DB) *gorm.DB {
	switch a.Role {
	case models.RoleAdmin, models.RoleStudent:
		return q
	case models.RoleTeacher:
		return q.Where("practices.teacher_id = ?", a.ID)
	default:
		return q.Where("1 = 0")
	}
}

// Modules narrows a module query to rows the actor may see.
func (a Actor) Modules(q *gorm.DB) *gorm.DB {
	switch a.Role {
	case models.RoleAdmin, models.RoleStudent:
		return q
	case models.RoleTeacher:
		return q.Where("modules.teacher_id = ?", a.ID)
	default:
		return q.Where("1 = 0")
	}
}

// Rubrics narrows a rubric query. Teachers see rubrics they evaluate or
// whose practice they own.
func (a Actor) Rubrics(q *gorm.DB) *gorm.DB {
	switch a.Role {
	case models.RoleAdmin, models.RoleStudent:
		return q
	case models.RoleTeacher:
		return q.Where(
			"rubrics.evaluator_id = ? OR rubrics.practice_id IN (?)",
			a.ID,
			q.Session(&gorm.Session{NewDB: true}).Model(&models.Practice{}).Select("id").Where("teacher_id = ?", a.ID),
		)
	default:
		return q.Where("1 = 0")
	}
}

// Submissions narrows a submission query. Teachers see submissions against
// their own practices, students only their own rows.
func (a Actor) Submissions(q *gorm.DB) *gorm.DB {
	switch a.Role {
	case models.RoleAdmin:
		return q
	case models.RoleTeacher:
		return q.Where(
			"submissions.practice_id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).Model(&models.Practice{}).Select("id").Where("teacher_id = ?", a.ID),
		)
	case models.RoleStudent:
		return q.Where("submissions.student_id = ?", a.ID)
	default:
		return q.Where("1 = 0")
	}
}

// Grades narrows a grade query transitively through the submission's
// practice for teachers, and to the student's own grades otherwise.
func (a Actor) Grades(q *gorm.DB) *gorm.DB {
	switch a.Role {
	case models.RoleAdmin:
		return q
	case models.RoleTeacher:
		return q.Where(
			"grades.submission_id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).Model(&models.Submission{}).Select("submissions.id").
				Joins("JOIN practices ON practices.id = submissions.practice_id").
				Where("practices.teacher_id = ?", a.ID),
		)
	case models.RoleStudent:
		return q.Where(
			"grades.submission_id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).Model(&models.Submission{}).Select("id").Where("student_id = ?", a.ID),
		)
	default:
		return q.Where("1 = 0")
	}
}

// CanMutate reports whether the actor may perform writes at all. Students
// are read-only across the grading core.
func (a Actor) CanMutate() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleTeacher
}

// OwnsPractice reports whether the actor may mutate rows hanging off the
// given practice. Admins always may; teachers only when they own it.
func (a Actor) OwnsPractice(p models.Practice) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsTeacher() && p.TeacherID == a.ID
}
