package models

import "time"

// Question categories.
const (
	CategoryPersonal = "personal"
	CategoryPartner  = "partner"
)

// Question is a single questionnaire prompt. Confidential questions are
// excluded from any summary rendered to end users.
type Question struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Key          string    `gorm:"uniqueIndex" json:"key"`
	Text         string    `json:"text"`
	Confidential bool      `json:"confidential"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"createdAt"`
}
