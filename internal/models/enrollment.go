package models

import "time"

// Enrollment records that a student is taking a group for a period of
// time. A nil EndDate means the enrollment is still active. A module may
// point at one enrollment to mark where that student is tracked.
type Enrollment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	StudentID uint       `gorm:"not null" json:"student_id"`
	Student   User       `gorm:"foreignKey:StudentID" json:"student"`
	GroupID   uint       `gorm:"not null" json:"group_id"`
	Group     Group      `gorm:"foreignKey:GroupID" json:"-"`
	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsActive reports whether the enrollment has not been closed yet.
func (e Enrollment) IsActive() bool { return e.EndDate == nil }
