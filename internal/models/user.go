package models

import "time"

// User maps a Telegram identity to an internal record. LastSubmissionID is a
// weak reference to the most recent submission; it is cleared when that
// submission is deleted.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TelegramID       int64     `gorm:"uniqueIndex" json:"telegramId"`
	Username         string    `json:"username"`
	IsAdmin          bool      `json:"isAdmin"`
	LastSubmissionID *uint     `json:"lastSubmissionId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
