package repository

import (
	"context"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/database"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"

	"gorm.io/gorm"
)

// IncrementReputation bumps a user's approval score, creating the row on the
// first approval, and returns the new score.
func IncrementReputation(ctx context.Context, userID uint) (int, error) {
	var rep models.Reputation
	err := database.DB.WithContext(ctx).First(&rep, "user_id = ?", userID).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return 0, err
		}
		rep = models.Reputation{UserID: userID, Score: 1}
		if err := database.DB.WithContext(ctx).Create(&rep).Error; err != nil {
			return 0, err
		}
		return rep.Score, nil
	}

	rep.Score++
	if err := database.DB.WithContext(ctx).Model(&rep).Update("score", rep.Score).Error; err != nil {
		return 0, err
	}
	return rep.Score, nil
}
