package bot

import (
	"context"
	"testing"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"
)

func TestMyApplicationsWithNoSubmissions(t *testing.T) {
	store := newMemStore()
	store.addUser(100, "tester", false)
	e := newTestEngine(store, &memNotifier{}, nil, 0)

	replies := e.HandleEvent(context.Background(), textEvent(1, 100, "/myapplications"))
	if !repliesContain(replies, msgNoSubmissions) {
		t.Fatalf("expected empty-list notice, got %+v", replies)
	}
}

func TestMyApplicationsUnregisteredUser(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, &memNotifier{}, nil, 0)

	replies := e.HandleEvent(context.Background(), textEvent(1, 100, "/myapplications"))
	if !repliesContain(replies, msgNotRegistered) {
		t.Fatalf("expected registration notice, got %+v", replies)
	}
}

func TestCancelSubmissionClearsLastReference(t *testing.T) {
	store := newMemStore()
	seedQuestions(store)
	user := store.addUser(100, "tester", false)
	sub := store.addSubmission(user.ID, models.StatusPending,
		models.Answer{QuestionID: 1, Value: "Alice"},
	)
	user.LastSubmissionID = &sub.ID

	e := newTestEngine(store, &memNotifier{}, nil, 0)
	ctx := context.Background()

	replies := e.HandleEvent(ctx, textEvent(1, 100, "/myapplications"))
	if !repliesContain(replies, "Your submissions") {
		t.Fatalf("expected submission list, got %+v", replies)
	}

	e.HandleEvent(ctx, actionEvent(1, 100, Select(sub.ID)))
	replies = e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionCancel}))
	if !repliesContain(replies, msgConfirmCancel) {
		t.Fatalf("expected confirmation prompt, got %+v", replies)
	}

	replies = e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionConfirmCancel}))
	if !repliesContain(replies, msgCancelled) {
		t.Fatalf("expected cancellation notice, got %+v", replies)
	}
	if len(store.submissions) != 0 {
		t.Errorf("submission not deleted")
	}
	if user.LastSubmissionID != nil {
		t.Errorf("last submission reference not cleared")
	}
	if e.sessions.Get(1).Active != WizardNone {
		t.Errorf("session not reset after cancellation")
	}
}

func TestDecliningCancelReturnsToDetail(t *testing.T) {
	store := newMemStore()
	seedQuestions(store)
	user := store.addUser(100, "tester", false)
	sub := store.addSubmission(user.ID, models.StatusPending,
		models.Answer{QuestionID: 1, Value: "Alice"},
	)

	e := newTestEngine(store, &memNotifier{}, nil, 0)
	ctx := context.Background()

	e.HandleEvent(ctx, textEvent(1, 100, "/myapplications"))
	e.HandleEvent(ctx, actionEvent(1, 100, Select(sub.ID)))
	e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionCancel}))
	replies := e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionBack}))

	// Back from the confirmation returns to the list, leaving the
	// submission intact.
	if len(store.submissions) != 1 {
		t.Errorf("submission should survive a declined cancel")
	}
	if !repliesContain(replies, "Your submissions") {
		t.Fatalf("expected submission list, got %+v", replies)
	}
}

func TestNonPendingSubmissionIsReadOnly(t *testing.T) {
	store := newMemStore()
	seedQuestions(store)
	user := store.addUser(100, "tester", false)
	sub := store.addSubmission(user.ID, models.StatusApproved,
		models.Answer{QuestionID: 1, Value: "Alice"},
	)

	e := newTestEngine(store, &memNotifier{}, nil, 0)
	ctx := context.Background()

	e.HandleEvent(ctx, textEvent(1, 100, "/myapplications"))
	replies := e.HandleEvent(ctx, actionEvent(1, 100, Select(sub.ID)))
	if !repliesContain(replies, msgNotPending) {
		t.Fatalf("expected read-only notice, got %+v", replies)
	}
	labels := buttonLabels(replies[0])
	if len(labels) != 1 || labels[0] != "Back" {
		t.Errorf("expected Back-only keyboard, got %v", labels)
	}

	// Edit and cancel are rejected for terminal submissions.
	replies = e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionEdit}))
	if !repliesContain(replies, msgNotPending) {
		t.Errorf("edit on approved submission should be rejected, got %+v", replies)
	}
	replies = e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionConfirmCancel}))
	if len(store.submissions) != 1 {
		t.Errorf("approved submission must not be deletable")
	}
	if !repliesContain(replies, msgNotPending) {
		t.Errorf("cancel on approved submission should be rejected, got %+v", replies)
	}
}

func TestEditSubmissionAnswer(t *testing.T) {
	store := newMemStore()
	seedQuestions(store)
	user := store.addUser(100, "tester", false)
	sub := store.addSubmission(user.ID, models.StatusPending,
		models.Answer{QuestionID: 1, Value: "Alice"},
		models.Answer{QuestionID: 3, Value: "30"},
	)

	e := newTestEngine(store, &memNotifier{}, nil, 0)
	ctx := context.Background()

	e.HandleEvent(ctx, textEvent(1, 100, "/myapplications"))
	e.HandleEvent(ctx, actionEvent(1, 100, Select(sub.ID)))
	e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionEdit}))
	replies := e.HandleEvent(ctx, textEvent(1, 100, "3"))
	if !repliesContain(replies, "Editing question 3") {
		t.Fatalf("expected edit prompt, got %+v", replies)
	}

	replies = e.HandleEvent(ctx, textEvent(1, 100, "31"))
	if !repliesContain(replies, "Answer updated!") {
		t.Fatalf("expected update confirmation, got %+v", replies)
	}
	if got := sub.Answers[1].Value; got != "31" {
		t.Errorf("persisted answer = %q, want 31", got)
	}

	st := &e.sessions.Get(1).Submissions
	if st.Step != uActions {
		t.Errorf("step = %d, want actions", st.Step)
	}
}

func TestEditUnansweredQuestionReprompts(t *testing.T) {
	store := newMemStore()
	seedQuestions(store)
	user := store.addUser(100, "tester", false)
	sub := store.addSubmission(user.ID, models.StatusPending,
		models.Answer{QuestionID: 1, Value: "Alice"},
	)

	e := newTestEngine(store, &memNotifier{}, nil, 0)
	ctx := context.Background()

	e.HandleEvent(ctx, textEvent(1, 100, "/myapplications"))
	e.HandleEvent(ctx, actionEvent(1, 100, Select(sub.ID)))
	e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionEdit}))
	e.HandleEvent(ctx, textEvent(1, 100, "3"))
	replies := e.HandleEvent(ctx, textEvent(1, 100, "oops"))

	if !repliesContain(replies, "has no answer in this submission") {
		t.Fatalf("expected unanswered-question notice, got %+v", replies)
	}
	if e.sessions.Get(1).Submissions.Step != uSelectEdit {
		t.Errorf("expected return to number selection")
	}
}

func TestBackDuringEditReturnsToDetail(t *testing.T) {
	store := newMemStore()
	seedQuestions(store)
	user := store.addUser(100, "tester", false)
	sub := store.addSubmission(user.ID, models.StatusPending,
		models.Answer{QuestionID: 1, Value: "Alice"},
	)

	e := newTestEngine(store, &memNotifier{}, nil, 0)
	ctx := context.Background()

	e.HandleEvent(ctx, textEvent(1, 100, "/myapplications"))
	e.HandleEvent(ctx, actionEvent(1, 100, Select(sub.ID)))
	e.HandleEvent(ctx, actionEvent(1, 100, Action{Kind: ActionEdit}))
	replies := e.HandleEvent(ctx, textEvent(1, 100, backToken))

	if !repliesContain(replies, msgChooseAction) {
		t.Fatalf("expected submission detail, got %+v", replies)
	}
	if e.sessions.Get(1).Submissions.Step != uActions {
		t.Errorf("expected actions step after back")
	}
}
