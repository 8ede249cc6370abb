package models

import "time"

// Roles recognised across the API. Enrollments require students, grading
// and ownership require teachers, admins bypass scope restrictions.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User represents any account: student, teacher or administrator.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Surname    string    `gorm:"size:255" json:"surname"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DNI        string    `gorm:"size:32;uniqueIndex;not null" json:"dni"`
	Role       string    `gorm:"size:16;not null" json:"role"`
	Password   string    `gorm:"size:255" json:"-"`
	ProfileURL string    `gorm:"size:512" json:"profile_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsStudent reports whether the user holds the student role.
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// IsTeacher reports whether the user holds the teacher role.
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ValidRole reports whether role is one of the recognised values.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}
