package models

import "time"

// Group is a cohort of students and the container for modules. The owner
// must hold the teacher role; this is enforced at write time by the roster
// service.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	OwnerID   uint      `gorm:"not null" json:"owner_id"`
	Owner     User      `gorm:"foreignKey:OwnerID" json:"owner"`
	Modules   []Module  `gorm:"foreignKey:GroupID" json:"modules,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
