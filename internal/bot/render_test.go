package bot

import (
	"strings"
	"testing"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"
)

func TestRenderDraftAnswersSkipsConfidential(t *testing.T) {
	questions := []models.Question{
		{ID: 1, Key: "name", Text: "Name?"},
		{ID: 2, Key: "phoneNumber", Text: "Phone?", Confidential: true},
		{ID: 3, Key: "age", Text: "Age?"},
	}
	answers := []*DraftAnswer{
		{QuestionID: 1, Value: "Alice"},
		{QuestionID: 2, Value: "+123"},
		{QuestionID: 3, Value: "30"},
	}

	out := renderDraftAnswers(questions, answers, false)
	if strings.Contains(out, "+123") {
		t.Errorf("confidential answer rendered: %q", out)
	}
	// Numbering stays sequential across the omitted question.
	if !strings.Contains(out, "1. Name?") || !strings.Contains(out, "2. Age?") {
		t.Errorf("unexpected numbering: %q", out)
	}

	withConfidential := renderDraftAnswers(questions, answers, true)
	if !strings.Contains(withConfidential, "2. Phone?") {
		t.Errorf("confidential answer missing from privileged render: %q", withConfidential)
	}
}

func TestRenderDraftAnswersSkipsUnanswered(t *testing.T) {
	questions := []models.Question{
		{ID: 1, Text: "Name?"},
		{ID: 2, Text: "Age?"},
	}
	answers := []*DraftAnswer{nil, {QuestionID: 2, Value: "30"}}

	out := renderDraftAnswers(questions, answers, false)
	if strings.Contains(out, "Name?") {
		t.Errorf("unanswered question rendered: %q", out)
	}
	if !strings.Contains(out, "1. Age?") {
		t.Errorf("expected answered question first: %q", out)
	}
}

func TestRenderSubmissionAnswers(t *testing.T) {
	submission := &models.Submission{
		ID: 1,
		Answers: []models.Answer{
			{QuestionID: 1, Question: models.Question{ID: 1, Text: "Name?"}, Value: "Alice"},
			{QuestionID: 2, Question: models.Question{ID: 2, Text: "Phone?", Confidential: true}, Value: "+123"},
			{QuestionID: 3, Question: models.Question{ID: 3, Text: "Age?"}, Value: ""},
		},
	}

	out := renderSubmissionAnswers(submission, false)
	if strings.Contains(out, "+123") {
		t.Errorf("confidential answer rendered: %q", out)
	}
	if !strings.Contains(out, noAnswerText) {
		t.Errorf("empty value should render placeholder: %q", out)
	}

	admin := renderSubmissionAnswers(submission, true)
	if !strings.Contains(admin, "+123") {
		t.Errorf("privileged render missing confidential answer: %q", admin)
	}
}

func TestRenderChannelPost(t *testing.T) {
	submission := &models.Submission{
		Answers: []models.Answer{
			{Question: models.Question{ID: 1, Key: "name"}, Value: "Alice"},
			{Question: models.Question{ID: 2, Key: "phoneNumber", Confidential: true}, Value: "+123"},
			{Question: models.Question{ID: 3, Key: "age"}, Value: "30"},
		},
	}

	out := renderChannelPost(submission)
	want := "name: Alice\nage: 30"
	if out != want {
		t.Errorf("channel post = %q, want %q", out, want)
	}
}

func TestSubmissionName(t *testing.T) {
	submission := &models.Submission{
		Answers: []models.Answer{
			{Question: models.Question{ID: 2, Key: "age"}, Value: "30"},
			{Question: models.Question{ID: 1, Key: "name"}, Value: "Alice"},
		},
	}
	if got := submissionName(submission); got != "Alice" {
		t.Errorf("submissionName = %q, want Alice", got)
	}

	if got := submissionName(&models.Submission{}); got != "Unknown" {
		t.Errorf("submissionName on empty = %q, want Unknown", got)
	}
}
