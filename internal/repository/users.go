package repository

import (
	"context"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/database"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"

	"gorm.io/gorm"
)

// UpsertUser finds the user for a Telegram identity, creating the record on
// first contact. Username and the admin flag are refreshed on every call so
// a config change to the admin list takes effect on the next message.
func UpsertUser(ctx context.Context, telegramID int64, username string, isAdmin bool) (*models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		user = models.User{
			TelegramID: telegramID,
			Username:   username,
			IsAdmin:    isAdmin,
		}
		if err := database.DB.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	if user.Username != username || user.IsAdmin != isAdmin {
		updates := map[string]interface{}{"username": username, "is_admin": isAdmin}
		if err := database.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "telegram_id = ?", telegramID)
	return &user, translate(result.Error)
}

func GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, id)
	return &user, translate(result.Error)
}

// SetLastSubmission points the user's weak submission reference at the given
// submission id, or clears it when submissionID is nil.
func SetLastSubmission(ctx context.Context, userID uint, submissionID *uint) error {
	return database.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_submission_id", submissionID).Error
}

// ListRecentUsers returns the newest users, most recent first.
func ListRecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	result := database.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&users)
	return users, result.Error
}
