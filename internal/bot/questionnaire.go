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
	msgNoQuestions     = "No questions available. Please try again later."
	msgResumeChoice    = "You have a previous submission. Would you like to review/edit it or start a new one?"
	msgChooseOption    = "Choose an option:"
	msgEnterEditNumber = "Enter the number of the question you want to edit:"
	msgPendingExists   = "You already have a pending submission. Please wait for review or edit your existing submission."
	msgSubmitted       = "Your submission has been received and is pending review. Thank you!"
)

// enterQuestionnaire is the Entry state of the questionnaire wizard: ensure
// a user record exists, load the questions, and either offer to resume the
// previous submission or start asking.
func (e *Engine) enterQuestionnaire(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	user, err := e.store.UpsertUser(ctx, ev.TelegramID, ev.Username, e.admins[ev.TelegramID])
	if err != nil {
		return nil, err
	}

	questions, err := e.store.Questions(ctx)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		// A questionnaire bot without questions is a configuration error.
		e.log.Error("No questions configured", zap.Int64("telegram_id", ev.TelegramID))
		s.Reset()
		return []Reply{{Text: msgNoQuestions}}, nil
	}

	s.Active = WizardQuestionnaire
	s.Questionnaire = QuestionnaireState{
		Questions: questions,
		Answers:   make([]*DraftAnswer, len(questions)),
	}

	if user.LastSubmissionID != nil {
		_, err := e.store.Submission(ctx, *user.LastSubmissionID)
		if err == nil {
			s.Questionnaire.Step = qResumeChoice
			return []Reply{resumeChoiceReply()}, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
		// Stale reference; fall through to a fresh run.
	}

	return e.askCurrentQuestion(s), nil
}

// reviewShortcut implements /review: jump straight to the review menu with
// the last submission's answers loaded.
func (e *Engine) reviewShortcut(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	user, err := e.store.UserByTelegramID(ctx, ev.TelegramID)
	if err != nil {
		if isNotFound(err) {
			return []Reply{{Text: "No previous submission found. Start a new one with /start."}}, nil
		}
		return nil, err
	}
	if user.LastSubmissionID == nil {
		return []Reply{{Text: "No previous submission found. Start a new one with /start."}}, nil
	}

	submission, err := e.store.Submission(ctx, *user.LastSubmissionID)
	if err != nil {
		if isNotFound(err) {
			return []Reply{{Text: "No previous submission found. Start a new one with /start."}}, nil
		}
		return nil, err
	}

	questions, err := e.store.Questions(ctx)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return []Reply{{Text: msgNoQuestions}}, nil
	}

	s.Active = WizardQuestionnaire
	s.Questionnaire = QuestionnaireState{
		Step:      qReviewMenu,
		Questions: questions,
		Answers:   draftsFromSubmission(questions, submission),
		Reviewing: true,
	}
	st := &s.Questionnaire
	return []Reply{{
		Text:     "Your previous answers:\n" + renderDraftAnswers(st.Questions, st.Answers, false) + "\n\n" + msgChooseOption,
		Inline:   reviewMenuKeyboard(st.Resumed),
		Markdown: true,
	}}, nil
}

// stepQuestionnaire runs one transition of the questionnaire state machine.
func (e *Engine) stepQuestionnaire(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Questionnaire
	switch st.Step {
	case qResumeChoice:
		return e.handleResumeChoice(ctx, s, ev)
	case qAsk:
		return e.handleAsk(s, ev), nil
	case qReviewMenu:
		return e.handleReviewMenu(ctx, s, ev)
	case qSelectEdit:
		return e.handleSelectEdit(s, ev), nil
	case qCaptureEdit:
		return e.handleCaptureEdit(ctx, s, ev)
	default:
		s.Reset()
		return []Reply{mainMenuReply()}, nil
	}
}

// handleResumeChoice waits for the review/new decision. Anything else
// re-prompts the same choice.
func (e *Engine) handleResumeChoice(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Questionnaire
	if ev.Action == nil {
		return []Reply{resumeChoiceReply()}, nil
	}

	switch ev.Action.Kind {
	case ActionReview:
		user, err := e.store.UserByTelegramID(ctx, ev.TelegramID)
		if err != nil {
			return nil, err
		}
		if user.LastSubmissionID == nil {
			return []Reply{resumeChoiceReply()}, nil
		}
		submission, err := e.store.Submission(ctx, *user.LastSubmissionID)
		if err != nil {
			return nil, err
		}
		st.Answers = draftsFromSubmission(st.Questions, submission)
		st.Reviewing = true
		st.Resumed = true
		st.Step = qReviewMenu
		return []Reply{{
			Text:     "Your previous answers:\n" + renderDraftAnswers(st.Questions, st.Answers, false) + "\n\n" + msgChooseOption,
			Inline:   reviewMenuKeyboard(true),
			Markdown: true,
		}}, nil
	case ActionNew:
		st.Answers = make([]*DraftAnswer, len(st.Questions))
		st.Current = 0
		st.Editing = false
		st.Reviewing = false
		st.Resumed = false
		return e.askCurrentQuestion(s), nil
	default:
		return []Reply{resumeChoiceReply()}, nil
	}
}

// handleAsk is the linear question loop: record the answer for the previous
// prompt, then either ask the next question or show the preview.
func (e *Engine) handleAsk(s *Session, ev Event) []Reply {
	st := &s.Questionnaire

	if ev.Action != nil || ev.Text == "" {
		// Only free text answers a question; re-prompt the current one.
		if st.Current > 0 {
			return promptQuestion(st.Questions[st.Current-1])
		}
		return e.askCurrentQuestion(s)
	}

	if st.Current > 0 {
		value := ev.Text
		if value == skipToken {
			value = "Skipped"
		}
		st.Answers[st.Current-1] = &DraftAnswer{
			QuestionID: st.Questions[st.Current-1].ID,
			Value:      value,
		}
	}

	if st.Current < len(st.Questions) {
		return e.askCurrentQuestion(s)
	}

	st.Step = qReviewMenu
	return []Reply{{
		Text: "Preview your answers:\n" + renderDraftAnswers(st.Questions, st.Answers, false) +
			"\n\nPlease review your answers and choose an option:",
		Inline:   reviewMenuKeyboard(st.Resumed),
		Markdown: true,
	}}
}

// handleReviewMenu dispatches the submit/edit (and resume-back) choice.
func (e *Engine) handleReviewMenu(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Questionnaire
	if ev.Action == nil {
		return []Reply{{
			Text:     "Please choose an option:",
			Inline:   reviewMenuKeyboard(st.Resumed),
			Markdown: true,
		}}, nil
	}

	switch ev.Action.Kind {
	case ActionBack:
		if !st.Resumed {
			break
		}
		st.Step = qResumeChoice
		return []Reply{resumeChoiceReply()}, nil
	case ActionEdit:
		st.Editing = true
		st.Reviewing = false
		st.Step = qSelectEdit
		return []Reply{{
			Text: "Your answers:\n" + renderDraftAnswers(st.Questions, st.Answers, false) +
				"\n\n" + msgEnterEditNumber,
			RemoveKeyboard: true,
			Markdown:       true,
		}}, nil
	case ActionSubmit:
		return e.submit(ctx, s, ev)
	case ActionViewSubmission:
		s.Reset()
		return e.enterSubmissions(ctx, s, ev)
	}

	return []Reply{{
		Text:     "Please choose an option:",
		Inline:   reviewMenuKeyboard(st.Resumed),
		Markdown: true,
	}}, nil
}

// submit persists the collected answers as a new pending submission, unless
// one already exists for the user.
func (e *Engine) submit(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Questionnaire
	user, err := e.store.UserByTelegramID(ctx, ev.TelegramID)
	if err != nil {
		return nil, err
	}

	_, err = e.store.PendingSubmissionByUser(ctx, user.ID)
	if err == nil {
		return []Reply{{
			Text: msgPendingExists,
			Inline: [][]Button{{
				{Label: "View/Edit Submission", Action: Action{Kind: ActionViewSubmission}},
			}},
		}}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	submission := &models.Submission{
		UserID:  user.ID,
		Status:  models.StatusPending,
		Answers: answersFromDrafts(st.Answers),
	}
	if err := e.store.CreateSubmission(ctx, submission); err != nil {
		return nil, err
	}
	if err := e.store.SetLastSubmission(ctx, user.ID, &submission.ID); err != nil {
		return nil, err
	}

	e.log.Info("Submission created",
		zap.Int64("telegram_id", ev.TelegramID),
		zap.Uint("submission_id", submission.ID),
	)
	s.Reset()
	return []Reply{{Text: msgSubmitted}}, nil
}

// handleSelectEdit parses the 1-based question number to edit.
func (e *Engine) handleSelectEdit(s *Session, ev Event) []Reply {
	st := &s.Questionnaire
	if ev.Text == "" {
		return []Reply{{Text: msgEnterEditNumber}}
	}

	input := strings.TrimSpace(ev.Text)
	if strings.EqualFold(input, backToken) {
		st.Editing = false
		st.Step = qReviewMenu
		return []Reply{{
			Text:     "Your answers:\n" + renderDraftAnswers(st.Questions, st.Answers, false) + "\n\n" + msgChooseOption,
			Inline:   reviewMenuKeyboard(st.Resumed),
			Markdown: true,
		}}
	}

	number, err := strconv.Atoi(input)
	index := number - 1
	if err != nil || index < 0 || index >= len(st.Questions) {
		return []Reply{{
			Text: "Invalid question number. Please enter a valid number:\n" +
				renderDraftAnswers(st.Questions, st.Answers, false),
			Markdown: true,
		}}
	}

	st.EditIndex = index
	st.Step = qCaptureEdit
	return []Reply{{
		Text: fmt.Sprintf("Editing question %d: %s\nPlease enter your new answer:",
			number, st.Questions[index].Text),
		RemoveKeyboard: true,
	}}
}

// handleCaptureEdit records the replacement answer and persists it against
// the user's existing submission, creating one as a fallback.
func (e *Engine) handleCaptureEdit(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	st := &s.Questionnaire
	if ev.Text == "" {
		return []Reply{{Text: "Please enter your new answer:"}}, nil
	}

	value := strings.TrimSpace(ev.Text)
	question := st.Questions[st.EditIndex]
	st.Answers[st.EditIndex] = &DraftAnswer{QuestionID: question.ID, Value: value}

	user, err := e.store.UserByTelegramID(ctx, ev.TelegramID)
	if err != nil {
		return nil, err
	}

	if user.LastSubmissionID != nil {
		if err := e.store.UpdateAnswer(ctx, *user.LastSubmissionID, question.ID, value); err != nil {
			return nil, err
		}
	} else {
		// No submission to update yet; persist a fresh one so the edit
		// is not lost.
		submission := &models.Submission{
			UserID:  user.ID,
			Status:  models.StatusPending,
			Answers: answersFromDrafts(st.Answers),
		}
		if err := e.store.CreateSubmission(ctx, submission); err != nil {
			return nil, err
		}
		if err := e.store.SetLastSubmission(ctx, user.ID, &submission.ID); err != nil {
			return nil, err
		}
	}

	st.Editing = false
	st.Step = qReviewMenu
	return []Reply{{
		Text:     "Answer updated! Your answers:\n" + renderDraftAnswers(st.Questions, st.Answers, false) + "\n\n" + msgChooseOption,
		Inline:   reviewMenuKeyboard(st.Resumed),
		Markdown: true,
	}}, nil
}

// askCurrentQuestion prompts the question at the current index and advances
// it, staying in the Ask step.
func (e *Engine) askCurrentQuestion(s *Session) []Reply {
	st := &s.Questionnaire
	question := st.Questions[st.Current]
	st.Current++
	st.Step = qAsk
	return promptQuestion(question)
}

func promptQuestion(question models.Question) []Reply {
	return []Reply{{
		Text:     question.Text,
		Keyboard: [][]string{{skipToken}},
		OneTime:  true,
	}}
}

func resumeChoiceReply() Reply {
	return Reply{
		Text: msgResumeChoice,
		Inline: [][]Button{{
			{Label: "Review/Edit", Action: Action{Kind: ActionReview}},
			{Label: "Start New", Action: Action{Kind: ActionNew}},
		}},
	}
}

// reviewMenuKeyboard offers Submit and Edit, plus Back when the user arrived
// via the resume choice.
func reviewMenuKeyboard(resumed bool) [][]Button {
	row := []Button{
		{Label: "Submit", Action: Action{Kind: ActionSubmit}},
		{Label: "Edit", Action: Action{Kind: ActionEdit}},
	}
	if resumed {
		row = append(row, Button{Label: "Back", Action: Action{Kind: ActionBack}})
	}
	return [][]Button{row}
}

// draftsFromSubmission maps a persisted submission's answers onto the
// question list, index-aligned.
func draftsFromSubmission(questions []models.Question, submission *models.Submission) []*DraftAnswer {
	byQuestion := make(map[uint]string, len(submission.Answers))
	for _, a := range submission.Answers {
		byQuestion[a.QuestionID] = a.Value
	}
	drafts := make([]*DraftAnswer, len(questions))
	for i, q := range questions {
		if value, ok := byQuestion[q.ID]; ok {
			drafts[i] = &DraftAnswer{QuestionID: q.ID, Value: value}
		}
	}
	return drafts
}

// answersFromDrafts drops unanswered slots and builds persistable answers.
func answersFromDrafts(drafts []*DraftAnswer) []models.Answer {
	answers := make([]models.Answer, 0, len(drafts))
	for _, d := range drafts {
		if d == nil {
			continue
		}
		answers = append(answers, models.Answer{QuestionID: d.QuestionID, Value: d.Value})
	}
	return answers
}
