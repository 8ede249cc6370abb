package models

import "time"

// Score bounds for final grades, inclusive.
const (
	GradeMinScore = 0.0
	GradeMaxScore = 10.0
)

// Grade is a teacher's score and comment for one submission, optionally
// recorded against a rubric. Losing the rubric keeps the grade (set null);
// losing the submission removes it.
type Grade struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SubmissionID uint       `gorm:"not null;uniqueIndex" json:"submission_id"`
	Submission   Submission `gorm:"foreignKey:SubmissionID" json:"-"`
	EvaluatorID  uint       `gorm:"not null" json:"evaluator_id"`
	Evaluator    User       `gorm:"foreignKey:EvaluatorID" json:"evaluator"`
	RubricID     *uint      `json:"rubric_id"`
	Rubric       *Rubric    `gorm:"foreignKey:RubricID;constraint:OnDelete:SET NULL" json:"rubric,omitempty"`
	FinalScore   float64    `gorm:"type:decimal(5,2);not null" json:"final_score"`
	Comment      string     `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ScoreInRange reports whether score is a valid final grade.
func ScoreInRange(score float64) bool {
	return score >= GradeMinScore && score <= GradeMaxScore
}
