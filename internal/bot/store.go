package bot

import (
	"context"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/repository"
)

// Store is everything the wizards need from the backing stores. Absent
// records are reported as repository.ErrNotFound.
type Store interface {
	UpsertUser(ctx context.Context, telegramID int64, username string, isAdmin bool) (*models.User, error)
	UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	SetLastSubmission(ctx context.Context, userID uint, submissionID *uint) error
	RecentUsers(ctx context.Context, limit int) ([]models.User, error)

	Questions(ctx context.Context) ([]models.Question, error)
	QuestionByKey(ctx context.Context, key string) (*models.Question, error)
	CreateQuestion(ctx context.Context, question *models.Question) error

	CreateSubmission(ctx context.Context, submission *models.Submission) error
	Submission(ctx context.Context, id uint) (*models.Submission, error)
	SubmissionsByUser(ctx context.Context, userID uint) ([]models.Submission, error)
	PendingSubmissionByUser(ctx context.Context, userID uint) (*models.Submission, error)
	PendingSubmissions(ctx context.Context, limit int) ([]models.Submission, error)
	SetSubmissionStatus(ctx context.Context, id uint, status string) (bool, error)
	UpdateAnswer(ctx context.Context, submissionID, questionID uint, value string) error
	DeleteSubmission(ctx context.Context, id uint) error

	IncrementReputation(ctx context.Context, userID uint) (int, error)
}

// gormStore backs Store with the repository package.
type gormStore struct{}

// NewStore returns the database-backed store.
func NewStore() Store {
	return gormStore{}
}

func (gormStore) UpsertUser(ctx context.Context, telegramID int64, username string, isAdmin bool) (*models.User, error) {
	return repository.UpsertUser(ctx, telegramID, username, isAdmin)
}

func (gormStore) UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return repository.GetUserByTelegramID(ctx, telegramID)
}

func (gormStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	return repository.GetUserByID(ctx, id)
}

func (gormStore) SetLastSubmission(ctx context.Context, userID uint, submissionID *uint) error {
	return repository.SetLastSubmission(ctx, userID, submissionID)
}

func (gormStore) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	return repository.ListRecentUsers(ctx, limit)
}

func (gormStore) Questions(ctx context.Context) ([]models.Question, error) {
	return repository.ListQuestions(ctx)
}

func (gormStore) QuestionByKey(ctx context.Context, key string) (*models.Question, error) {
	return repository.GetQuestionByKey(ctx, key)
}

func (gormStore) CreateQuestion(ctx context.Context, question *models.Question) error {
	return repository.CreateQuestion(ctx, question)
}

func (gormStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return repository.CreateSubmission(ctx, submission)
}

func (gormStore) Submission(ctx context.Context, id uint) (*models.Submission, error) {
	return repository.GetSubmission(ctx, id)
}

func (gormStore) SubmissionsByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	return repository.ListSubmissionsByUser(ctx, userID)
}

func (gormStore) PendingSubmissionByUser(ctx context.Context, userID uint) (*models.Submission, error) {
	return repository.GetPendingSubmissionByUser(ctx, userID)
}

func (gormStore) PendingSubmissions(ctx context.Context, limit int) ([]models.Submission, error) {
	return repository.ListPendingSubmissions(ctx, limit)
}

func (gormStore) SetSubmissionStatus(ctx context.Context, id uint, status string) (bool, error) {
	return repository.SetSubmissionStatus(ctx, id, status)
}

func (gormStore) UpdateAnswer(ctx context.Context, submissionID, questionID uint, value string) error {
	return repository.UpdateAnswer(ctx, submissionID, questionID, value)
}

func (gormStore) DeleteSubmission(ctx context.Context, id uint) error {
	return repository.DeleteSubmission(ctx, id)
}

func (gormStore) IncrementReputation(ctx context.Context, userID uint) (int, error) {
	return repository.IncrementReputation(ctx, userID)
}
