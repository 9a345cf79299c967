package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"

	"go.uber.org/zap"
)

const (
	msgAccessDenied      = "Access denied. You are not an admin."
	msgAdminMenu         = "Admin Panel: Choose an option:"
	msgNoNewUsers        = "No new users found."
	msgNoApplications    = "No pending applications found."
	msgEnterQuestionKey  = "Enter the unique key for the new question:"
	msgDuplicateKey      = "This key already exists. Please enter a unique key:"
	msgEnterQuestionText = "Enter the question text:"
	msgSelectCategory    = "Select the question category:"
	msgAskConfidential   = "Is this question confidential?"
	msgQuestionAdded     = "Question added successfully!"
	msgAlreadyReviewed   = "Submission not found or already reviewed."
)

// enterAdmin gates the admin wizard on the caller's admin flag and shows the
// main menu.
func (e *Engine) enterAdmin(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	user, err := e.store.UpsertUser(ctx, ev.TelegramID, ev.Username, e.admins[ev.TelegramID])
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		e.log.Warn("Admin access denied", zap.Int64("telegram_id", ev.TelegramID))
		s.Reset()
		return []Reply{{Text: msgAccessDenied}}, nil
	}

	s.Active = WizardAdmin
	s.Admin = AdminState{Step: aMenu}
	return []Reply{adminMenuReply()}, nil
}

// stepAdmin runs one transition of the admin state machine. All moderation
// actions are decoded callbacks dispatched from the menu step; the remaining
// steps collect the add-question fields.
func (e *Engine) stepAdmin(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	switch s.Admin.Step {
	case aMenu:
		return e.handleAdminMenu(ctx, s, ev)
	case aQuestionKey:
		return e.handleQuestionKey(ctx, s, ev)
	case aQuestionText:
		return e.handleQuestionText(s, ev), nil
	case aQuestionCategory:
		return e.handleQuestionCategory(s, ev), nil
	case aQuestionConfidential:
		return e.handleQuestionConfidential(ctx, s, ev)
	default:
		s.Reset()
		return []Reply{mainMenuReply()}, nil
	}
}

func (e *Engine) handleAdminMenu(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if ev.Action == nil {
		return []Reply{adminMenuReply()}, nil
	}

	switch ev.Action.Kind {
	case ActionViewUsers:
		return e.listNewUsers(ctx)
	case ActionViewApplications:
		return e.listPendingApplications(ctx)
	case ActionView:
		return e.showApplication(ctx, ev.Action.TargetID)
	case ActionApprove:
		return e.reviewApplication(ctx, ev.Action.TargetID, models.StatusApproved)
	case ActionReject:
		return e.reviewApplication(ctx, ev.Action.TargetID, models.StatusRejected)
	case ActionAddQuestion:
		s.Admin.Step = aQuestionKey
		s.Admin.NewQuestion = models.Question{}
		return []Reply{{Text: msgEnterQuestionKey}}, nil
	case ActionBackToMenu:
		return []Reply{adminMenuReply()}, nil
	}
	return []Reply{adminMenuReply()}, nil
}

// listNewUsers shows the newest users, each annotated with the name answer
// of their last submission when one exists.
func (e *Engine) listNewUsers(ctx context.Context) ([]Reply, error) {
	users, err := e.store.RecentUsers(ctx, adminListLimit)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []Reply{{Text: msgNoNewUsers}, adminMenuReply()}, nil
	}

	var b strings.Builder
	b.WriteString("Newly Registered Users:\n")
	for _, user := range users {
		name := "Unknown"
		if user.LastSubmissionID != nil {
			submission, err := e.store.Submission(ctx, *user.LastSubmissionID)
			if err != nil && !isNotFound(err) {
				return nil, err
			}
			if err == nil {
				name = submissionName(submission)
			}
		}
		if user.Username != "" {
			name = fmt.Sprintf("%s (@%s)", name, user.Username)
		}
		fmt.Fprintf(&b, "- %s (Registered: %s)\n", name, user.CreatedAt.Format("2006-01-02"))
	}

	return []Reply{{
		Text:   b.String(),
		Inline: [][]Button{{{Label: "Back to Menu", Action: Action{Kind: ActionBackToMenu}}}},
	}}, nil
}

// listPendingApplications shows recent pending submissions with a per-item
// detail button.
func (e *Engine) listPendingApplications(ctx context.Context) ([]Reply, error) {
	submissions, err := e.store.PendingSubmissions(ctx, adminListLimit)
	if err != nil {
		return nil, err
	}
	if len(submissions) == 0 {
		return []Reply{{Text: msgNoApplications}, adminMenuReply()}, nil
	}

	var b strings.Builder
	b.WriteString("Recent Applications:\n")
	rows := make([][]Button, 0, len(submissions)+1)
	for i, submission := range submissions {
		name := submissionName(&submission)
		fmt.Fprintf(&b, "%d. %s (Submitted: %s)\n",
			i+1, name, submission.CreatedAt.Format("2006-01-02 15:04"))
		rows = append(rows, []Button{{
			Label:  fmt.Sprintf("View %d (%s)", i+1, name),
			Action: View(submission.ID),
		}})
	}
	rows = append(rows, []Button{{Label: "Back to Menu", Action: Action{Kind: ActionBackToMenu}}})

	return []Reply{{Text: b.String(), Inline: rows}}, nil
}

// showApplication renders the full detail of one submission with moderation
// actions. The admin view includes confidential answers.
func (e *Engine) showApplication(ctx context.Context, id uint) ([]Reply, error) {
	submission, err := e.store.Submission(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return []Reply{{Text: msgSubmissionGone}, adminMenuReply()}, nil
		}
		return nil, err
	}

	owner, err := e.store.UserByID(ctx, submission.UserID)
	username := "Unknown"
	if err == nil && owner.Username != "" {
		username = owner.Username
	} else if err != nil && !isNotFound(err) {
		return nil, err
	}

	details := fmt.Sprintf("Submission ID: %d\nUser: %s\nStatus: %s\nSubmitted: %s\n\nAnswers:\n%s",
		submission.ID, username, submission.Status,
		submission.CreatedAt.Format("2006-01-02 15:04"),
		renderSubmissionAnswers(submission, true))

	return []Reply{{
		Text: details,
		Inline: [][]Button{
			{{Label: "Approve", Action: Approve(submission.ID)}},
			{{Label: "Reject", Action: Reject(submission.ID)}},
			{{Label: "Back to Applications", Action: Action{Kind: ActionViewApplications}}},
		},
		Markdown: true,
	}}, nil
}

// reviewApplication moves a pending submission to a terminal status,
// notifies the submitter, and on approval bumps reputation and publishes to
// the moderation channel once the submitter's score reaches the threshold.
func (e *Engine) reviewApplication(ctx context.Context, id uint, status string) ([]Reply, error) {
	changed, err := e.store.SetSubmissionStatus(ctx, id, status)
	if err != nil {
		if isNotFound(err) {
			return []Reply{{Text: msgSubmissionGone}, adminMenuReply()}, nil
		}
		return nil, err
	}
	if !changed {
		return []Reply{{Text: msgAlreadyReviewed}, adminMenuReply()}, nil
	}

	submission, err := e.store.Submission(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := e.store.UserByID(ctx, submission.UserID)
	if err != nil {
		return nil, err
	}

	if status == models.StatusApproved {
		score, err := e.store.IncrementReputation(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		e.notify(owner.TelegramID, "Your submission was approved!")
		if score >= autoPublishScore && e.channelID != 0 {
			e.notify(e.channelID, renderChannelPost(submission))
		}
	} else {
		e.notify(owner.TelegramID, "Your submission was rejected.")
	}

	e.log.Info("Submission reviewed",
		zap.Uint("submission_id", id),
		zap.String("status", status),
	)

	return []Reply{
		{Text: fmt.Sprintf("Submission %s!", status)},
		{
			Text: msgChooseOption,
			Inline: [][]Button{
				{{Label: "View Recent Applications", Action: Action{Kind: ActionViewApplications}}},
				{{Label: "Back to Menu", Action: Action{Kind: ActionBackToMenu}}},
			},
		},
	}, nil
}

// notify sends a best-effort out-of-band message; delivery failures are
// logged but never fail the moderation action itself.
func (e *Engine) notify(chatID int64, text string) {
	if e.notifier == nil || text == "" {
		return
	}
	if err := e.notifier.Notify(chatID, text); err != nil {
		e.log.Warn("Notification failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (e *Engine) handleQuestionKey(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if ev.Text == "" {
		return []Reply{{Text: msgEnterQuestionKey}}, nil
	}

	key := strings.TrimSpace(ev.Text)
	_, err := e.store.QuestionByKey(ctx, key)
	if err == nil {
		return []Reply{{Text: msgDuplicateKey}}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	s.Admin.NewQuestion.Key = key
	s.Admin.Step = aQuestionText
	return []Reply{{Text: msgEnterQuestionText}}, nil
}

func (e *Engine) handleQuestionText(s *Session, ev Event) []Reply {
	if ev.Text == "" {
		return []Reply{{Text: msgEnterQuestionText}}
	}

	s.Admin.NewQuestion.Text = strings.TrimSpace(ev.Text)
	s.Admin.Step = aQuestionCategory
	return []Reply{{
		Text: msgSelectCategory,
		Inline: [][]Button{
			{{Label: "Personal", Action: Action{Kind: ActionCategoryPersonal}}},
			{{Label: "Partner", Action: Action{Kind: ActionCategoryPartner}}},
		},
	}}
}

func (e *Engine) handleQuestionCategory(s *Session, ev Event) []Reply {
	if ev.Action == nil {
		return []Reply{{
			Text: msgSelectCategory,
			Inline: [][]Button{
				{{Label: "Personal", Action: Action{Kind: ActionCategoryPersonal}}},
				{{Label: "Partner", Action: Action{Kind: ActionCategoryPartner}}},
			},
		}}
	}

	switch ev.Action.Kind {
	case ActionCategoryPersonal:
		s.Admin.NewQuestion.Category = models.CategoryPersonal
	case ActionCategoryPartner:
		s.Admin.NewQuestion.Category = models.CategoryPartner
	default:
		return []Reply{{Text: msgSelectCategory}}
	}

	s.Admin.Step = aQuestionConfidential
	return []Reply{{
		Text: msgAskConfidential,
		Inline: [][]Button{
			{{Label: "Yes", Action: Action{Kind: ActionConfidentialYes}}},
			{{Label: "No", Action: Action{Kind: ActionConfidentialNo}}},
		},
	}}
}

func (e *Engine) handleQuestionConfidential(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if ev.Action == nil {
		return []Reply{{Text: msgAskConfidential}}, nil
	}

	switch ev.Action.Kind {
	case ActionConfidentialYes:
		s.Admin.NewQuestion.Confidential = true
	case ActionConfidentialNo:
		s.Admin.NewQuestion.Confidential = false
	default:
		return []Reply{{Text: msgAskConfidential}}, nil
	}

	question := s.Admin.NewQuestion
	if err := e.store.CreateQuestion(ctx, &question); err != nil {
		return nil, err
	}
	e.log.Info("Question added", zap.String("key", question.Key))

	s.Admin = AdminState{Step: aMenu}
	return []Reply{{Text: msgQuestionAdded}, adminMenuReply()}, nil
}

func adminMenuReply() Reply {
	return Reply{
		Text: msgAdminMenu,
		Inline: [][]Button{
			{{Label: "View New Users", Action: Action{Kind: ActionViewUsers}}},
			{{Label: "View Recent Applications", Action: Action{Kind: ActionViewApplications}}},
			{{Label: "Add Question", Action: Action{Kind: ActionAddQuestion}}},
		},
	}
}
