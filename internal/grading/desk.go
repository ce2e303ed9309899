package grading

import (
	"context"
	"log/slog"

	"github.com/finedu/classroom/internal/assist"
	"github.com/finedu/classroom/internal/catalog"
	"github.com/finedu/classroom/internal/notify"
	"github.com/finedu/classroom/internal/store"
)

// Desk is the instructor's grading surface for one session. It owns the
// only path from PENDING to GRADED.
type Desk struct {
	store  store.Store
	assist *assist.Gateway
	events store.EventLogger
	hub    *notify.Hub
}

// NewDesk creates a grading desk. events and hub may be nil.
func NewDesk(s store.Store, gw *assist.Gateway, events store.EventLogger, hub *notify.Hub) *Desk {
	if events == nil {
		events = store.NopEventLogger{}
	}
	return &Desk{store: s, assist: gw, events: events, hub: hub}
}

// Submissions returns an assignment's submissions in store order along with
// their aggregate view.
func (d *Desk) Submissions(ctx context.Context, assignmentID string) ([]catalog.Submission, Summary, error) {
	subs, err := d.store.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, Summary{}, err
	}
	return subs, Summarize(subs), nil
}

// SaveGrade commits a grade and feedback to a submission, transitioning it
// to GRADED. Re-grading overwrites; the grade is not bounds-checked against
// the assignment's max points.
func (d *Desk) SaveGrade(ctx context.Context, submissionID string, grade int, feedback string) (*catalog.Submission, error) {
	sub, err := d.store.UpdateGrade(ctx, submissionID, grade, feedback)
	if err != nil {
		return nil, err
	}

	if err := d.events.LogEvent(store.Event{
		EntityID:  sub.ID,
		ActorID:   currentActor(ctx, d.store),
		EventType: store.EventGradeUpdated,
		Data: map[string]any{
			"assignment_id": sub.AssignmentID,
			"grade":         grade,
		},
	}); err != nil {
		slog.Warn("failed to log grade event", "error", err)
	}

	d.hub.Publish(store.EventGradeUpdated, sub.ID)

	slog.Info("grade saved",
		"submission_id", sub.ID,
		"assignment_id", sub.AssignmentID,
		"grade", grade,
	)
	return sub, nil
}

// RequestFeedbackDraft asks the content-assist gateway for feedback text.
// The draft populates the editable feedback field only; the submission's
// status does not change until SaveGrade commits it.
func (d *Desk) RequestFeedbackDraft(ctx context.Context, sub catalog.Submission, rubric string) string {
	return d.assist.DraftFeedback(ctx, sub.Content, rubric)
}

func currentActor(ctx context.Context, s store.Store) string {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return ""
	}
	return user.ID
}
