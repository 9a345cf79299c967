package bot

import (
	"fmt"
	"strings"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"
)

const noAnswerText = "No answer provided"

// renderDraftAnswers formats the in-session answer list, numbering
// sequentially from 1 in question order. Confidential questions are silently
// omitted unless includeConfidential is set.
func renderDraftAnswers(questions []models.Question, answers []*DraftAnswer, includeConfidential bool) string {
	var b strings.Builder
	n := 0
	for i, q := range questions {
		if q.Confidential && !includeConfidential {
			continue
		}
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		value := answers[i].Value
		if value == "" {
			value = noAnswerText
		}
		if n > 0 {
			b.WriteString("\n\n")
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n_%s_", n, q.Text, value)
	}
	return b.String()
}

// renderSubmissionAnswers formats a persisted submission's answers, relying
// on the preloaded Question of each answer. Answers whose question failed to
// load are dropped rather than rendered blind.
func renderSubmissionAnswers(submission *models.Submission, includeConfidential bool) string {
	var b strings.Builder
	n := 0
	for _, a := range submission.Answers {
		if a.Question.ID == 0 {
			continue
		}
		if a.Question.Confidential && !includeConfidential {
			continue
		}
		value := a.Value
		if value == "" {
			value = noAnswerText
		}
		if n > 0 {
			b.WriteString("\n\n")
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n_%s_", n, a.Question.Text, value)
	}
	return b.String()
}

// renderSubmissionList formats a user's own submissions for selection.
func renderSubmissionList(submissions []models.Submission) string {
	if len(submissions) == 0 {
		return "You have no submissions."
	}
	var b strings.Builder
	for i, s := range submissions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. Submission ID: %d\nStatus: %s\nCreated: %s",
			i+1, s.ID, s.Status, s.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}

// renderSubmissionDetails formats one submission with its answer list.
func renderSubmissionDetails(submission *models.Submission, includeConfidential bool) string {
	answers := renderSubmissionAnswers(submission, includeConfidential)
	if answers == "" {
		answers = "No answers available."
	}
	return fmt.Sprintf("Submission ID: %d\nStatus: %s\nCreated: %s\n\nAnswers:\n%s",
		submission.ID, submission.Status, submission.CreatedAt.Format("2006-01-02"), answers)
}

// renderChannelPost formats an approved submission for the moderation
// channel as key/value lines, never including confidential answers.
func renderChannelPost(submission *models.Submission) string {
	var b strings.Builder
	for _, a := range submission.Answers {
		if a.Question.ID == 0 || a.Question.Confidential {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", a.Question.Key, a.Value)
	}
	return b.String()
}

// submissionName extracts the answer to the "name" question, the label used
// for submissions and users in admin listings.
func submissionName(submission *models.Submission) string {
	for _, a := range submission.Answers {
		if a.Question.Key == "name" && a.Value != "" {
			return a.Value
		}
	}
	return "Unknown"
}
