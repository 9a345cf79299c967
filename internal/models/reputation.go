package models

// Reputation tracks how many submissions a user has had approved. Users at
// or above the auto-publish threshold get approved submissions forwarded to
// the moderation channel without a second manual step.
type Reputation struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex"`
	Score  int
}
