package repository

import (
	"context"
	"time"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/database"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"

	"gorm.io/gorm"
)

// CreateSubmission persists a submission with its answers in one insert.
func CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return database.DB.WithContext(ctx).Create(submission).Error
}

// GetSubmission loads a submission with its answers and their questions,
// answers in question order.
func GetSubmission(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	result := database.DB.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("question_id ASC") }).
		Preload("Answers.Question").
		First(&submission, id)
	return &submission, translate(result.Error)
}

// ListSubmissionsByUser returns a user's submissions, most recent first.
func ListSubmissionsByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	result := database.DB.WithContext(ctx).
		Preload("Answers").
		Preload("Answers.Question").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&submissions)
	return submissions, result.Error
}

// GetPendingSubmissionByUser returns the user's pending submission, if any.
func GetPendingSubmissionByUser(ctx context.Context, userID uint) (*models.Submission, error) {
	var submission models.Submission
	result := database.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.StatusPending).
		First(&submission)
	return &submission, translate(result.Error)
}

// ListPendingSubmissions returns pending submissions, most recent first.
func ListPendingSubmissions(ctx context.Context, limit int) ([]models.Submission, error) {
	var submissions []models.Submission
	result := database.DB.WithContext(ctx).
		Preload("Answers").
		Preload("Answers.Question").
		Where("status = ?", models.StatusPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&submissions)
	return submissions, result.Error
}

// ListAllSubmissions returns every submission with answers.
func ListAllSubmissions(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	result := database.DB.WithContext(ctx).
		Preload("Answers").
		Preload("Answers.Question").
		Order("created_at DESC").
		Find(&submissions)
	return submissions, result.Error
}

// SetSubmissionStatus moves a pending submission to a terminal status. The
// conditional WHERE keeps terminal states immutable: the update matches zero
// rows when the submission is absent or already reviewed, and the second
// return value reports which of the two it was.
func SetSubmissionStatus(ctx context.Context, id uint, status string) (changed bool, err error) {
	result := database.DB.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := database.DB.WithContext(ctx).Model(&models.Submission{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count == 0 {
			return false, ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

// UpdateAnswer overwrites the value of one answer of a submission and stamps
// the submission's updated_at. Other answers are left untouched.
func UpdateAnswer(ctx context.Context, submissionID, questionID uint, value string) error {
	result := database.DB.WithContext(ctx).Model(&models.Answer{}).
		Where("submission_id = ? AND question_id = ?", submissionID, questionID).
		Update("value", value)
	if result.Error != nil {
		return result.Error
	}
	return database.DB.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", submissionID).
		Update("updated_at", time.Now()).Error
}

// DeleteSubmission removes a submission and its answers.
func DeleteSubmission(ctx context.Context, id uint) error {
	if err := database.DB.WithContext(ctx).
		Where("submission_id = ?", id).
		Delete(&models.Answer{}).Error; err != nil {
		return err
	}
	return database.DB.WithContext(ctx).Delete(&models.Submission{}, id).Error
}

// CountSubmissions returns the total number of submissions, optionally
// filtered by status ("" counts everything).
func CountSubmissions(ctx context.Context, status string) (int64, error) {
	var count int64
	query := database.DB.WithContext(ctx).Model(&models.Submission{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	result := query.Count(&count)
	return count, result.Error
}
