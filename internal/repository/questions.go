package repository

import (
	"context"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/database"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"
)

// ListQuestions returns every question in insertion order. The row order is
// the questionnaire order.
func ListQuestions(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	result := database.DB.WithContext(ctx).Order("id ASC").Find(&questions)
	return questions, result.Error
}

func GetQuestionByKey(ctx context.Context, key string) (*models.Question, error) {
	var question models.Question
	result := database.DB.WithContext(ctx).First(&question, "key = ?", key)
	return &question, translate(result.Error)
}

func CreateQuestion(ctx context.Context, question *models.Question) error {
	return database.DB.WithContext(ctx).Create(question).Error
}
