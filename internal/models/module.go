package models

import "time"

// Module is a course unit inside a group. Code is unique across all
// modules. The enrollment reference, when set, binds the module to the
// student being tracked in it; the enrollment's group must match the
// module's group.
type Module struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	Code         string      `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Description  string      `gorm:"type:text" json:"description"`
	GroupID      *uint       `json:"group_id"`
	Group        *Group      `gorm:"foreignKey:GroupID" json:"-"`
	TeacherID    *uint       `json:"teacher_id"`
	Teacher      *User       `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	EnrollmentID *uint       `json:"enrollment_id"`
	Enrollment   *Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:SET NULL" json:"enrollment,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
