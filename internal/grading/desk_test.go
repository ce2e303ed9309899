package grading_test

import (
	"context"
	"errors"
	"testing"

	"github.com/finedu/classroom/internal/assist"
	"github.com/finedu/classroom/internal/catalog"
	"github.com/finedu/classroom/internal/grading"
	"github.com/finedu/classroom/internal/store"
)

func newDesk(p assist.Provider) (*grading.Desk, *store.MemoryEventLogger) {
	router := assist.NewRouter()
	if p != nil {
		router.Register("mock", p)
	}
	gw := assist.NewGateway(router, nil)
	s := store.NewMemoryStore(catalog.DefaultSeed())
	events := store.NewMemoryEventLogger()
	return grading.NewDesk(s, gw, events, nil), events
}

func TestDesk_Submissions(t *testing.T) {
	desk, _ := newDesk(nil)

	subs, summary, err := desk.Submissions(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Submissions() error = %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len(subs) = %d, want 2", len(subs))
	}
	if summary.Graded != 1 || summary.Pending != 1 {
		t.Errorf("summary = %+v, want 1 graded / 1 pending", summary)
	}

	avg, ok := summary.Average()
	if !ok || avg != 85 {
		t.Errorf("Average() = %v, %v; want 85 (sub2's seed grade)", avg, ok)
	}
}

func TestDesk_SaveGrade(t *testing.T) {
	desk, events := newDesk(nil)
	ctx := context.Background()

	sub, err := desk.SaveGrade(ctx, "sub1", 85, "Solid diagram.")
	if err != nil {
		t.Fatalf("SaveGrade() error = %v", err)
	}
	if sub.Status != catalog.StatusGraded {
		t.Errorf("Status = %q, want GRADED", sub.Status)
	}
	if *sub.Grade != 85 || *sub.Feedback != "Solid diagram." {
		t.Errorf("sub = %+v, want grade 85 with feedback", sub)
	}

	logged := events.Events()
	if len(logged) != 1 {
		t.Fatalf("events logged = %d, want 1", len(logged))
	}
	if logged[0].EventType != store.EventGradeUpdated {
		t.Errorf("EventType = %q, want %q", logged[0].EventType, store.EventGradeUpdated)
	}
	if logged[0].ActorID != "u2" {
		t.Errorf("ActorID = %q, want the session user", logged[0].ActorID)
	}

	// The aggregate view reflects the transition.
	_, summary, _ := desk.Submissions(ctx, "a1")
	if summary.Graded != 2 || summary.Pending != 0 {
		t.Errorf("summary after grading = %+v, want all graded", summary)
	}
}

func TestDesk_SaveGrade_NotFound(t *testing.T) {
	desk, events := newDesk(nil)

	_, err := desk.SaveGrade(context.Background(), "missing", 10, "x")
	if !errors.Is(err, store.ErrSubmissionNotFound) {
		t.Errorf("error = %v, want ErrSubmissionNotFound", err)
	}
	if len(events.Events()) != 0 {
		t.Error("no event should be logged for a failed grade")
	}
}

func TestDesk_RequestFeedbackDraft(t *testing.T) {
	mock := assist.NewMockProvider("Label the settlement phase next time.")
	desk, _ := newDesk(mock)

	sub := catalog.Submission{ID: "sub1", Content: "Here is my diagram: [Link]", Status: catalog.StatusPending}
	draft := desk.RequestFeedbackDraft(context.Background(), sub, "Accuracy of the diagram, proper use of UML notation, clarity of flow.")

	if draft != mock.Response {
		t.Errorf("draft = %q, want provider content", draft)
	}
}

func TestDesk_RequestFeedbackDraft_DegradedGatewayStillPopulates(t *testing.T) {
	desk, _ := newDesk(&assist.MockProvider{Err: errors.New("unavailable")})
	ctx := context.Background()

	sub := catalog.Submission{ID: "sub1", Content: "work", Status: catalog.StatusPending}
	draft := desk.RequestFeedbackDraft(ctx, sub, "rubric")

	if draft == "" {
		t.Fatal("draft should be a non-empty error description, not empty")
	}

	// The draft alone does not transition the submission.
	subs, _, _ := desk.Submissions(ctx, "a1")
	if subs[0].Status != catalog.StatusPending {
		t.Error("drafting feedback must not change submission status")
	}

	// Committing the degraded draft is the explicit state change.
	saved, err := desk.SaveGrade(ctx, "sub1", 70, draft)
	if err != nil {
		t.Fatalf("SaveGrade() error = %v", err)
	}
	if *saved.Feedback != draft {
		t.Errorf("Feedback = %q, want the degraded draft text", *saved.Feedback)
	}
	if saved.Status != catalog.StatusGraded {
		t.Error("explicit SaveGrade should transition to GRADED")
	}
}
