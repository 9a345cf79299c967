package bot

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/repository"

	"go.uber.org/zap"
)

// memStore is an in-memory Store for exercising the wizards without a
// database. Submissions are returned with their answers' questions attached,
// matching what the database-backed store preloads.
type memStore struct {
	users       []*models.User
	questions   []models.Question
	submissions []*models.Submission
	reputations map[uint]int

	nextUserID uint
	nextSubID  uint
	nextQID    uint
}

func newMemStore() *memStore {
	return &memStore{reputations: make(map[uint]int)}
}

func (m *memStore) addQuestion(key, text string, confidential bool) models.Question {
	m.nextQID++
	q := models.Question{
		ID:           m.nextQID,
		Key:          key,
		Text:         text,
		Confidential: confidential,
		Category:     models.CategoryPersonal,
	}
	m.questions = append(m.questions, q)
	return q
}

func (m *memStore) addUser(telegramID int64, username string, isAdmin bool) *models.User {
	m.nextUserID++
	u := &models.User{ID: m.nextUserID, TelegramID: telegramID, Username: username, IsAdmin: isAdmin}
	m.users = append(m.users, u)
	return u
}

func (m *memStore) addSubmission(userID uint, status string, answers ...models.Answer) *models.Submission {
	m.nextSubID++
	for i := range answers {
		answers[i].SubmissionID = m.nextSubID
	}
	s := &models.Submission{ID: m.nextSubID, UserID: userID, Status: status, Answers: answers}
	m.submissions = append(m.submissions, s)
	return s
}

func (m *memStore) questionByID(id uint) models.Question {
	for _, q := range m.questions {
		if q.ID == id {
			return q
		}
	}
	return models.Question{}
}

// attach returns a copy of a submission with questions resolved on every
// answer, the shape the wizards expect from Submission lookups.
func (m *memStore) attach(s *models.Submission) *models.Submission {
	out := *s
	out.Answers = make([]models.Answer, len(s.Answers))
	for i, a := range s.Answers {
		a.Question = m.questionByID(a.QuestionID)
		out.Answers[i] = a
	}
	return &out
}

func (m *memStore) UpsertUser(_ context.Context, telegramID int64, username string, isAdmin bool) (*models.User, error) {
	for _, u := range m.users {
		if u.TelegramID == telegramID {
			u.Username = username
			u.IsAdmin = isAdmin
			copied := *u
			return &copied, nil
		}
	}
	u := m.addUser(telegramID, username, isAdmin)
	copied := *u
	return &copied, nil
}

func (m *memStore) UserByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	for _, u := range m.users {
		if u.TelegramID == telegramID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) UserByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) SetLastSubmission(_ context.Context, userID uint, submissionID *uint) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.LastSubmissionID = submissionID
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) RecentUsers(_ context.Context, limit int) ([]models.User, error) {
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (m *memStore) Questions(_ context.Context) ([]models.Question, error) {
	return append([]models.Question(nil), m.questions...), nil
}

func (m *memStore) QuestionByKey(_ context.Context, key string) (*models.Question, error) {
	for _, q := range m.questions {
		if q.Key == key {
			copied := q
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateQuestion(_ context.Context, question *models.Question) error {
	m.nextQID++
	question.ID = m.nextQID
	m.questions = append(m.questions, *question)
	return nil
}

func (m *memStore) CreateSubmission(_ context.Context, submission *models.Submission) error {
	m.nextSubID++
	submission.ID = m.nextSubID
	for i := range submission.Answers {
		submission.Answers[i].SubmissionID = submission.ID
	}
	copied := *submission
	copied.Answers = append([]models.Answer(nil), submission.Answers...)
	m.submissions = append(m.submissions, &copied)
	return nil
}

func (m *memStore) Submission(_ context.Context, id uint) (*models.Submission, error) {
	for _, s := range m.submissions {
		if s.ID == id {
			return m.attach(s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) SubmissionsByUser(_ context.Context, userID uint) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range m.submissions {
		if s.UserID == userID {
			out = append(out, *m.attach(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) PendingSubmissionByUser(_ context.Context, userID uint) (*models.Submission, error) {
	for _, s := range m.submissions {
		if s.UserID == userID && s.Status == models.StatusPending {
			return m.attach(s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) PendingSubmissions(_ context.Context, limit int) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range m.submissions {
		if s.Status == models.StatusPending {
			out = append(out, *m.attach(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SetSubmissionStatus(_ context.Context, id uint, status string) (bool, error) {
	for _, s := range m.submissions {
		if s.ID == id {
			if s.Status != models.StatusPending {
				return false, nil
			}
			s.Status = status
			return true, nil
		}
	}
	return false, repository.ErrNotFound
}

func (m *memStore) UpdateAnswer(_ context.Context, submissionID, questionID uint, value string) error {
	for _, s := range m.submissions {
		if s.ID != submissionID {
			continue
		}
		for i := range s.Answers {
			if s.Answers[i].QuestionID == questionID {
				s.Answers[i].Value = value
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) DeleteSubmission(_ context.Context, id uint) error {
	for i, s := range m.submissions {
		if s.ID == id {
			m.submissions = append(m.submissions[:i], m.submissions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) IncrementReputation(_ context.Context, userID uint) (int, error) {
	m.reputations[userID]++
	return m.reputations[userID], nil
}

// memNotifier records out-of-band messages.
type memNotifier struct {
	sent []note
}

type note struct {
	ChatID int64
	Text   string
}

func (n *memNotifier) Notify(chatID int64, text string) error {
	n.sent = append(n.sent, note{ChatID: chatID, Text: text})
	return nil
}

func newTestEngine(store Store, notifier Notifier, adminIDs []int64, channelID int64) *Engine {
	return NewEngine(store, notifier, zap.NewNop(), adminIDs, channelID)
}

func textEvent(chatID, telegramID int64, text string) Event {
	return Event{ChatID: chatID, TelegramID: telegramID, Username: "tester", Text: text}
}

func actionEvent(chatID, telegramID int64, a Action) Event {
	return Event{ChatID: chatID, TelegramID: telegramID, Username: "tester", Action: &a}
}

func repliesContain(replies []Reply, substr string) bool {
	for _, r := range replies {
		if strings.Contains(r.Text, substr) {
			return true
		}
	}
	return false
}

func buttonLabels(r Reply) []string {
	var labels []string
	for _, row := range r.Inline {
		for _, b := range row {
			labels = append(labels, b.Label)
		}
	}
	return labels
}

func TestStartGreetsAndShowsMenu(t *testing.T) {
	store := newMemStore()
	store.addQuestion("name", "Please enter your name", false)
	e := newTestEngine(store, &memNotifier{}, nil, 0)

	replies := e.HandleEvent(context.Background(), textEvent(1, 100, "/start"))
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	if len(replies[0].Inline) == 0 || replies[0].Inline[0][0].Label != "Apply" {
		t.Errorf("expected Apply button, got %+v", replies[0].Inline)
	}
	if len(replies[1].Keyboard) == 0 {
		t.Errorf("expected main menu keyboard, got %+v", replies[1])
	}
}

func TestCancelResetsActiveWizard(t *testing.T) {
	store := newMemStore()
	store.addQuestion("name", "Please enter your name", false)
	e := newTestEngine(store, &memNotifier{}, nil, 0)
	ctx := context.Background()

	e.HandleEvent(ctx, textEvent(1, 100, "/form"))
	replies := e.HandleEvent(ctx, textEvent(1, 100, "/cancel"))
	if !repliesContain(replies, "Submission cancelled") {
		t.Fatalf("expected cancellation notice, got %+v", replies)
	}

	s := e.sessions.Get(1)
	if s.Active != WizardNone {
		t.Errorf("expected session reset, active wizard = %d", s.Active)
	}
}

func TestUnknownTextOutsideWizardShowsMenu(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, &memNotifier{}, nil, 0)

	replies := e.HandleEvent(context.Background(), textEvent(1, 100, "hello there"))
	if len(replies) != 1 || len(replies[0].Keyboard) == 0 {
		t.Fatalf("expected main menu reply, got %+v", replies)
	}
}

func TestApplyCallbackStartsQuestionnaire(t *testing.T) {
	store := newMemStore()
	store.addQuestion("name", "Please enter your name", false)
	e := newTestEngine(store, &memNotifier{}, nil, 0)

	replies := e.HandleEvent(context.Background(), actionEvent(1, 100, Action{Kind: ActionApply}))
	if !repliesContain(replies, "Please enter your name") {
		t.Fatalf("expected first question, got %+v", replies)
	}
	if e.sessions.Get(1).Active != WizardQuestionnaire {
		t.Errorf("expected questionnaire wizard to own the chat")
	}
}
