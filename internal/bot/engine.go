package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/repository"

	"go.uber.org/zap"
)

// Reputation score at which approved submissions are forwarded to the
// moderation channel without a second manual step.
const autoPublishScore = 5

// How many users/applications an admin listing shows.
const adminListLimit = 10

const (
	skipToken    = "Skip"
	backToken    = "Back"
	genericError = "An error occurred. Please try again later."

	labelApplication    = "Application 📝"
	labelMyApplications = "My Applications 📋"
)

// Event is one inbound chat update, already reduced to what the wizards
// need. Exactly one of Text and Action is meaningful.
type Event struct {
	ChatID     int64
	TelegramID int64
	Username   string
	Text       string
	Action     *Action
}

// Button is one inline-keyboard button.
type Button struct {
	Label  string
	Action Action
}

// Reply is one outbound message. Inline and Keyboard are mutually exclusive;
// RemoveKeyboard drops any open reply keyboard.
type Reply struct {
	Text           string
	Inline         [][]Button
	Keyboard       [][]string
	OneTime        bool
	RemoveKeyboard bool
	Markdown       bool
}

// Notifier sends messages outside the current conversation: approval and
// rejection notices to submitters, and channel publications.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Engine routes inbound events to whichever wizard owns the chat's session
// and runs the per-step state transitions.
type Engine struct {
	store     Store
	notifier  Notifier
	log       *zap.Logger
	sessions  *Sessions
	admins    map[int64]bool
	channelID int64
}

// NewEngine builds an engine. adminIDs seed the admin flag for users on
// first contact; channelID of 0 disables channel publications.
func NewEngine(store Store, notifier Notifier, log *zap.Logger, adminIDs []int64, channelID int64) *Engine {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Engine{
		store:     store,
		notifier:  notifier,
		log:       log,
		sessions:  NewSessions(),
		admins:    admins,
		channelID: channelID,
	}
}

// HandleEvent processes one inbound update and returns the replies to send.
// Global commands preempt any active wizard.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) []Reply {
	s := e.sessions.Get(ev.ChatID)

	if replies, handled := e.dispatchGlobal(ctx, s, ev); handled {
		return replies
	}

	var (
		replies []Reply
		err     error
	)
	switch s.Active {
	case WizardQuestionnaire:
		replies, err = e.stepQuestionnaire(ctx, s, ev)
	case WizardSubmissions:
		replies, err = e.stepSubmissions(ctx, s, ev)
	case WizardAdmin:
		replies, err = e.stepAdmin(ctx, s, ev)
	default:
		return []Reply{mainMenuReply()}
	}
	if err != nil {
		return e.fail(s, ev, err)
	}
	return replies
}

// dispatchGlobal handles commands and keyboard shortcuts that work from
// anywhere, force-exiting any active wizard first.
func (e *Engine) dispatchGlobal(ctx context.Context, s *Session, ev Event) ([]Reply, bool) {
	if ev.Action != nil && ev.Action.Kind == ActionApply {
		s.Reset()
		replies, err := e.enterQuestionnaire(ctx, s, ev)
		if err != nil {
			return e.fail(s, ev, err), true
		}
		return replies, true
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return nil, false
	}

	switch {
	case matchesCommand(text, "start"):
		s.Reset()
		return greetingReplies(), true
	case matchesCommand(text, "cancel"):
		s.Reset()
		return []Reply{{Text: "Submission cancelled."}}, true
	case strings.EqualFold(text, "/form"), text == labelApplication:
		s.Reset()
		replies, err := e.enterQuestionnaire(ctx, s, ev)
		if err != nil {
			return e.fail(s, ev, err), true
		}
		return append([]Reply{welcomeReply()}, replies...), true
	case strings.EqualFold(text, "/restart"):
		s.Reset()
		replies, err := e.enterQuestionnaire(ctx, s, ev)
		if err != nil {
			return e.fail(s, ev, err), true
		}
		return append([]Reply{{Text: "Starting a new submission."}}, replies...), true
	case strings.EqualFold(text, "/myapplications"), text == labelMyApplications:
		s.Reset()
		replies, err := e.enterSubmissions(ctx, s, ev)
		if err != nil {
			return e.fail(s, ev, err), true
		}
		return replies, true
	case strings.EqualFold(text, "/review"):
		s.Reset()
		replies, err := e.reviewShortcut(ctx, s, ev)
		if err != nil {
			return e.fail(s, ev, err), true
		}
		return replies, true
	case strings.EqualFold(text, "/admin"):
		s.Reset()
		replies, err := e.enterAdmin(ctx, s, ev)
		if err != nil {
			return e.fail(s, ev, err), true
		}
		return replies, true
	}
	return nil, false
}

// fail is the session-fatal error policy: log, apologize, reset. No retry.
func (e *Engine) fail(s *Session, ev Event, err error) []Reply {
	e.log.Error("Wizard step failed",
		zap.Int64("chat_id", ev.ChatID),
		zap.Int64("telegram_id", ev.TelegramID),
		zap.Error(err),
	)
	s.Reset()
	return []Reply{{Text: genericError}}
}

// isNotFound reports whether an error is the store's absence signal.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// matchesCommand matches "/name" and the bare word, case-insensitively.
func matchesCommand(text, name string) bool {
	return strings.EqualFold(text, "/"+name) || strings.EqualFold(text, name)
}

func welcomeReply() Reply {
	return Reply{Text: "Welcome to the submission bot! Please answer the questions to complete your profile.\n" +
		"Use /cancel to stop or /restart to start over."}
}

func greetingReplies() []Reply {
	return []Reply{
		{
			Text: "Welcome! Please fill out the form to continue.",
			Inline: [][]Button{{
				{Label: "Apply", Action: Action{Kind: ActionApply}},
			}},
		},
		mainMenuReply(),
	}
}

func mainMenuReply() Reply {
	return Reply{
		Text:     "Choose an option:",
		Keyboard: [][]string{{labelApplication, labelMyApplications}},
		OneTime:  true,
	}
}
