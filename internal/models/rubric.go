package models

import "time"

// Rubric is a scoring template, optionally tied to one practice and one
// evaluating teacher. Its criteria are replaced by diff on update and
// removed with the rubric.
type Rubric struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:255;not null" json:"name"`
	Document    string      `gorm:"size:512" json:"document"`
	PracticeID  *uint       `json:"practice_id"`
	Practice    *Practice   `gorm:"foreignKey:PracticeID" json:"practice,omitempty"`
	EvaluatorID *uint       `json:"evaluator_id"`
	Evaluator   *User       `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
	Criteria    []Criterion `gorm:"foreignKey:RubricID" json:"criteria,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Criterion is one scored dimension inside a rubric.
type Criterion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RubricID    uint      `gorm:"not null" json:"rubric_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	MaxScore    int       `gorm:"not null" json:"max_score"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the plural; the default inflector would guess wrong.
func (Criterion) TableName() string { return "criteria" }
