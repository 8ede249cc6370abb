package models

import "time"

// Submission is a student's deliverable for a practice. The deliverable is
// an opaque reference to the handed-in document; file storage lives
// elsewhere. At most one grade exists per submission.
type Submission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PracticeID  uint      `gorm:"not null" json:"practice_id"`
	Practice    Practice  `gorm:"foreignKey:PracticeID" json:"practice"`
	StudentID   uint      `gorm:"not null" json:"student_id"`
	Student     User      `gorm:"foreignKey:StudentID" json:"student"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	Deliverable string    `gorm:"size:512" json:"deliverable"`
	Grade       *Grade    `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"grade,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsGraded reports whether a grade has been recorded for the submission.
func (s Submission) IsGraded() bool { return s.Grade != nil && s.Grade.ID != 0 }
