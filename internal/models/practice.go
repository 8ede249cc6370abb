package models

import "time"

// Practice is an assignment definition owned by a teacher. Students hand
// in submissions against it.
type Practice struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Identifier  string    `gorm:"size:100;not null" json:"identifier"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `json:"due_date"`
	Link        string    `gorm:"size:512" json:"link"`
	TeacherID   uint      `gorm:"not null" json:"teacher_id"`
	Teacher     User      `gorm:"foreignKey:TeacherID" json:"teacher"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPastDue returns true when the hand-in deadline has already passed.
func (p Practice) IsPastDue(reference time.Time) bool {
	return !p.DueDate.IsZero() && reference.After(p.DueDate)
}
