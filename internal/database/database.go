package database

import (
	"fmt"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/config"
	logging "github.com/Abenetwolde/afalagi-telegram-bot/internal/logging"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Submission{},
		&models.Answer{},
		&models.Reputation{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")
}

// SeedQuestions inserts the questions from the seed file when the question
// table is empty. Existing questions are never touched.
func SeedQuestions(log *zap.Logger, path string) error {
	var count int64
	if err := DB.Model(&models.Question{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Questions already exist, skipping seed", zap.Int64("count", count))
		return nil
	}

	file, err := models.LoadQuestionFile(path)
	if err != nil {
		return err
	}

	questions := make([]models.Question, 0, len(file.Questions))
	for _, q := range file.Questions {
		questions = append(questions, models.Question{
			Key:          q.Key,
			Text:         q.Text,
			Confidential: q.Confidential,
			Category:     q.Category,
		})
	}
	if len(questions) == 0 {
		log.Warn("Question seed file is empty", zap.String("path", path))
		return nil
	}

	if err := DB.Create(&questions).Error; err != nil {
		return err
	}
	log.Info("Questions seeded successfully", zap.Int("count", len(questions)))
	return nil
}
