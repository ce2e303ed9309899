// Package curriculum orchestrates edits to a course's nested modules,
// lessons, and assignments on behalf of the UI.
package curriculum

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/finedu/classroom/internal/assist"
	"github.com/finedu/classroom/internal/catalog"
	"github.com/finedu/classroom/internal/store"
)

const defaultLessonDuration = 45 // minutes

// Builder applies curriculum edits. Lesson drafting works on a course
// snapshot and never touches the store; assignment creation goes through
// the repository.
type Builder struct {
	assist *assist.Gateway
	store  store.Store
	events store.EventLogger
}

// NewBuilder creates a curriculum builder. events may be nil.
func NewBuilder(gw *assist.Gateway, s store.Store, events store.EventLogger) *Builder {
	if events == nil {
		events = store.NopEventLogger{}
	}
	return &Builder{assist: gw, store: s, events: events}
}

// AddAIGeneratedLesson drafts lesson content for the topic and appends a
// new unpublished lesson to the matching module of the course snapshot,
// returning the updated snapshot and whether a lesson was appended. If no
// module matches moduleID the course is returned unchanged with false; the
// caller sees a no-op, not an error. When the draft fails the lesson is
// still created with the gateway's placeholder text as its content, so the
// instructor can see and fix it.
func (b *Builder) AddAIGeneratedLesson(ctx context.Context, course catalog.Course, moduleID, topic string) (catalog.Course, bool) {
	if _, ok := course.Module(moduleID); !ok {
		slog.Warn("lesson draft targeted unknown module",
			"course_id", course.ID,
			"module_id", moduleID,
		)
		return course, false
	}

	content := b.assist.DraftLessonPlan(ctx, topic)

	lesson := catalog.Lesson{
		ID:              "l-ai-" + newLessonID(),
		Title:           topic,
		Content:         content,
		DurationMinutes: defaultLessonDuration,
		Materials:       []string{},
		IsPublished:     false,
	}

	modules := make([]catalog.Module, len(course.Modules))
	for i, m := range course.Modules {
		modules[i] = m
		if m.ID == moduleID {
			modules[i].Lessons = append(append([]catalog.Lesson{}, m.Lessons...), lesson)
		}
	}
	course.Modules = modules

	if err := b.events.LogEvent(store.Event{
		EntityID:  lesson.ID,
		EventType: store.EventLessonDrafted,
		Data: map[string]any{
			"course_id": course.ID,
			"module_id": moduleID,
			"topic":     topic,
		},
	}); err != nil {
		slog.Warn("failed to log lesson draft event", "error", err)
	}

	return course, true
}

// AddAssignment creates an assignment through the repository and merges it
// into the course snapshot's assignment sequence.
func (b *Builder) AddAssignment(ctx context.Context, course catalog.Course, fields store.AssignmentFields) (catalog.Course, *catalog.Assignment, error) {
	created, err := b.store.CreateAssignment(ctx, course.ID, fields)
	if err != nil {
		return course, nil, err
	}

	course.Assignments = append(append([]catalog.Assignment{}, course.Assignments...), *created)

	if err := b.events.LogEvent(store.Event{
		EntityID:  created.ID,
		EventType: store.EventAssignmentCreated,
		Data: map[string]any{
			"course_id": course.ID,
			"title":     created.Title,
		},
	}); err != nil {
		slog.Warn("failed to log assignment event", "error", err)
	}

	return course, created, nil
}

func newLessonID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
