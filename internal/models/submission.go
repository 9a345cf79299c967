package models

import "time"

// Submission statuses. Pending is the only non-terminal state: a submission
// moves to approved or rejected exactly once and never leaves either.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Submission is one completed questionnaire run for a user.
type Submission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"userId"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Status    string    `gorm:"default:pending" json:"status"`
	Answers   []Answer  `gorm:"foreignKey:SubmissionID" json:"answers"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Answer holds the free-text value for one question of one submission.
// At most one answer exists per question per submission.
type Answer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"index" json:"submissionId"`
	QuestionID   uint      `json:"questionId"`
	Question     Question  `gorm:"foreignKey:QuestionID" json:"question"`
	Value        string    `json:"answer"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
