package bot

import (
	"sync"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"
)

// Wizard identifies which conversation flow currently owns a chat.
type Wizard int

const (
	WizardNone Wizard = iota
	WizardQuestionnaire
	WizardSubmissions
	WizardAdmin
)

// Questionnaire wizard steps.
type QStep int

const (
	qResumeChoice QStep = iota
	qAsk
	qReviewMenu
	qSelectEdit
	qCaptureEdit
)

// User-submissions wizard steps.
type UStep int

const (
	uSelect UStep = iota
	uActions
	uSelectEdit
	uCaptureEdit
)

// Admin wizard steps. The menu step handles all moderation actions; the
// remaining steps are the add-question sub-flow.
type AStep int

const (
	aMenu AStep = iota
	aQuestionKey
	aQuestionText
	aQuestionCategory
	aQuestionConfidential
)

// DraftAnswer is one in-progress answer held in session state before it is
// persisted.
type DraftAnswer struct {
	QuestionID uint
	Value      string
}

// QuestionnaireState is the ephemeral state of one questionnaire run.
// Answers is index-aligned with Questions; nil means not yet answered.
type QuestionnaireState struct {
	Step      QStep
	Questions []models.Question
	Answers   []*DraftAnswer
	Current   int
	Resumed   bool
	Editing   bool
	Reviewing bool
	EditIndex int
}

// SubmissionsState is the ephemeral state of the my-submissions flow.
type SubmissionsState struct {
	Step        UStep
	Submissions []models.Submission
	Questions   []models.Question
	SelectedID  uint
	Editing     bool
	EditIndex   int
}

// AdminState is the ephemeral state of the admin flow.
type AdminState struct {
	Step        AStep
	NewQuestion models.Question
}

// Session is the per-chat conversation record. Only one wizard owns a chat
// at a time; the platform delivers a chat's updates sequentially, so the
// session itself needs no locking.
type Session struct {
	ChatID        int64
	Active        Wizard
	Questionnaire QuestionnaireState
	Submissions   SubmissionsState
	Admin         AdminState
}

// Reset discards all wizard state, leaving the chat outside any scene.
// Nothing from an abandoned run may leak into the next one.
func (s *Session) Reset() {
	*s = Session{ChatID: s.ChatID}
}

// Sessions is the in-process registry of chat sessions. The mutex guards the
// map only; sessions for different chats are independent.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*Session)}
}

// Get returns the session for a chat, creating it on first contact.
func (r *Sessions) Get(chatID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[chatID]
	if !ok {
		s = &Session{ChatID: chatID}
		r.m[chatID] = s
	}
	return s
}
