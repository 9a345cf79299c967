package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"

	"go.uber.org/zap"
)

const (
	msgNotRegistered   = "You are not registered. Please start with /start."
	msgNoSubmissions   = "You have no submissions."
	msgSubmissionGone  = "Submission not found."
	msgNotPending      = "This submission is not pending, so it cannot be edited or canceled."
	msgConfirmCancel   = "Are you sure you want to cancel this submission? This action cannot be undone."
	msgCancelled       = "Submission canceled successfully."
	msgChooseAction    = "Choose an action:"
	msgSelectSubPrompt = "Select a submission to view details:"
)

// enterSubmissions lists the caller's submissions, most recent first.
func (e *Engine) enterSubmissions(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	user, err := e.store.UserByTelegramID(ctx, ev.TelegramID)
	if err != nil {
		if isNotFound(err) {
			return []Reply{{Text: msgNotRegistered}}, nil
		}
		return nil, err
	}

	submissions, err := e.store.SubmissionsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(submissions) == 0 {
		return []Reply{{Text: msgNoSubmissions}}, nil
	}

	questions, err := e.store.Questions(ctx)
	if err != nil {
		return nil, err
	}

	s.Active = WizardSubmissions
	s.Submissions = SubmissionsState{
		Step:        uSelect,
		Submissions: submissions,
		Questions:   questions,
	}
	return []Reply{submissionListReply(submissions)}, nil
}

// stepSubmissions runs one transition of the my-submissions state machine.
func (e *Engine) stepSubmissions(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	switch s.Submissions.Step {
	case uSelect:
		return e.handleSubmissionSelect(ctx, s, ev)
	case uActions:
		return e.handleSubmissionAction(ctx, s, ev)
	case uSelectEdit:
		return e.handleSubmissionSelectEdit(ctx, s, ev)
	case uCaptureEdit:
		return e.handleSubmissionCaptureEdit(ctx, s, ev)
	default:
		s.Reset()
		return []Reply{mainMenuReply()}, nil
	}
}

func (e *Engine) handleSubmissionSelect(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Submissions
	if ev.Action == nil || ev.Action.Kind != ActionSelect {
		return []Reply{{
			Text:   "Please select a submission.",
			Inline: submissionSelectionKeyboard(st.Submissions),
		}}, nil
	}

	submission, err := e.store.Submission(ctx, ev.Action.TargetID)
	if err != nil {
		if isNotFound(err) {
			s.Reset()
			return []Reply{{Text: msgSubmissionGone}}, nil
		}
		return nil, err
	}

	st.SelectedID = submission.ID
	st.Editing = false
	st.Step = uActions
	return []Reply{submissionDetailReply(submission)}, nil
}

func (e *Engine) handleSubmissionAction(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Submissions
	if ev.Action == nil {
		return []Reply{{Text: "Please choose an action.", Inline: submissionActionKeyboard()}}, nil
	}

	submission, err := e.store.Submission(ctx, st.SelectedID)
	if err != nil {
		if isNotFound(err) {
			s.Reset()
			return []Reply{{Text: msgSubmissionGone}}, nil
		}
		return nil, err
	}
	pending := submission.Status == models.StatusPending

	switch ev.Action.Kind {
	case ActionBack:
		st.Step = uSelect
		return []Reply{submissionListReply(st.Submissions)}, nil
	case ActionCancel:
		if !pending {
			return []Reply{submissionDetailReply(submission)}, nil
		}
		return []Reply{{
			Text: msgConfirmCancel,
			Inline: [][]Button{{
				{Label: "Yes", Action: Action{Kind: ActionConfirmCancel}},
				{Label: "No", Action: Action{Kind: ActionBack}},
			}},
		}}, nil
	case ActionConfirmCancel:
		if !pending {
			return []Reply{submissionDetailReply(submission)}, nil
		}
		return e.cancelSubmission(ctx, s, ev, submission)
	case ActionEdit:
		if !pending {
			return []Reply{submissionDetailReply(submission)}, nil
		}
		st.Editing = true
		st.Step = uSelectEdit
		return []Reply{{
			Text: "Your answers:\n" + renderSubmissionDetails(submission, false) +
				"\n\n" + msgEnterEditNumber,
			RemoveKeyboard: true,
			Markdown:       true,
		}}, nil
	}

	return []Reply{{Text: "Please choose an action.", Inline: submissionActionKeyboard()}}, nil
}

// cancelSubmission deletes a pending submission and clears the user's weak
// reference to it when it was the most recent one.
func (e *Engine) cancelSubmission(ctx context.Context, s *Session, ev Event, submission *models.Submission) ([]Reply, error) {
	if err := e.store.DeleteSubmission(ctx, submission.ID); err != nil {
		return nil, err
	}

	user, err := e.store.UserByTelegramID(ctx, ev.TelegramID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if err == nil && user.LastSubmissionID != nil && *user.LastSubmissionID == submission.ID {
		if err := e.store.SetLastSubmission(ctx, user.ID, nil); err != nil {
			return nil, err
		}
	}

	e.log.Info("Submission canceled",
		zap.Int64("telegram_id", ev.TelegramID),
		zap.Uint("submission_id", submission.ID),
	)
	s.Reset()
	return []Reply{{Text: msgCancelled}}, nil
}

func (e *Engine) handleSubmissionSelectEdit(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Submissions
	if ev.Text == "" {
		return []Reply{{Text: msgEnterEditNumber}}, nil
	}

	input := strings.TrimSpace(ev.Text)
	if strings.EqualFold(input, backToken) {
		return e.backToSubmissionActions(ctx, s)
	}

	number, err := strconv.Atoi(input)
	index := number - 1
	if err != nil || index < 0 || index >= len(st.Questions) {
		return []Reply{{
			Text:     "Invalid question number. Please enter a valid number:",
			Markdown: true,
		}}, nil
	}

	st.EditIndex = index
	st.Step = uCaptureEdit
	return []Reply{{
		Text: fmt.Sprintf("Editing question %d: %s\nPlease enter your new answer:",
			number, st.Questions[index].Text),
		Keyboard: [][]string{{backToken}},
		OneTime:  true,
	}}, nil
}

func (e *Engine) handleSubmissionCaptureEdit(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Submissions
	if ev.Text == "" {
		return []Reply{{Text: "Please enter your updated answer."}}, nil
	}
	if strings.EqualFold(strings.TrimSpace(ev.Text), backToken) {
		return e.backToSubmissionActions(ctx, s)
	}

	submission, err := e.store.Submission(ctx, st.SelectedID)
	if err != nil {
		if isNotFound(err) {
			s.Reset()
			return []Reply{{Text: msgSubmissionGone}}, nil
		}
		return nil, err
	}
	if submission.Status != models.StatusPending {
		st.Editing = false
		st.Step = uActions
		return []Reply{submissionDetailReply(submission)}, nil
	}

	question := st.Questions[st.EditIndex]
	hasAnswer := false
	for _, a := range submission.Answers {
		if a.QuestionID == question.ID {
			hasAnswer = true
			break
		}
	}
	if !hasAnswer {
		st.Step = uSelectEdit
		return []Reply{{
			Text: "That question has no answer in this submission. " + msgEnterEditNumber,
		}}, nil
	}

	if err := e.store.UpdateAnswer(ctx, submission.ID, question.ID, strings.TrimSpace(ev.Text)); err != nil {
		return nil, err
	}

	updated, err := e.store.Submission(ctx, st.SelectedID)
	if err != nil {
		return nil, err
	}

	st.Editing = false
	st.Step = uActions
	return []Reply{{
		Text: "Answer updated!\n\nUpdated answers:\n" + renderSubmissionDetails(updated, false) +
			"\n\n" + msgChooseAction,
		Inline:   submissionActionKeyboard(),
		Markdown: true,
	}}, nil
}

func (e *Engine) backToSubmissionActions(ctx context.Context, s *Session) ([]Reply, error) {
	st := &s.Submissions
	st.Editing = false
	submission, err := e.store.Submission(ctx, st.SelectedID)
	if err != nil {
		if isNotFound(err) {
			s.Reset()
			return []Reply{{Text: msgSubmissionGone}}, nil
		}
		return nil, err
	}
	st.Step = uActions
	return []Reply{submissionDetailReply(submission)}, nil
}

func submissionListReply(submissions []models.Submission) Reply {
	return Reply{
		Text:   "Your submissions:\n" + renderSubmissionList(submissions) + "\n\n" + msgSelectSubPrompt,
		Inline: submissionSelectionKeyboard(submissions),
	}
}

// submissionDetailReply shows detail with actions for pending submissions
// and a read-only view otherwise.
func submissionDetailReply(submission *models.Submission) Reply {
	if submission.Status == models.StatusPending {
		return Reply{
			Text:     renderSubmissionDetails(submission, false) + "\n\n" + msgChooseAction,
			Inline:   submissionActionKeyboard(),
			Markdown: true,
		}
	}
	return Reply{
		Text:     renderSubmissionDetails(submission, false) + "\n\n" + msgNotPending,
		Inline:   [][]Button{{{Label: "Back", Action: Action{Kind: ActionBack}}}},
		Markdown: true,
	}
}

func submissionSelectionKeyboard(submissions []models.Submission) [][]Button {
	rows := make([][]Button, 0, len(submissions))
	for i, s := range submissions {
		rows = append(rows, []Button{{
			Label:  fmt.Sprintf("Submission %d (%s)", i+1, s.Status),
			Action: Select(s.ID),
		}})
	}
	return rows
}

func submissionActionKeyboard() [][]Button {
	return [][]Button{{
		{Label: "Cancel", Action: Action{Kind: ActionCancel}},
		{Label: "Edit", Action: Action{Kind: ActionEdit}},
		{Label: "Back", Action: Action{Kind: ActionBack}},
	}}
}
