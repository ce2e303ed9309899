// Package store is the single source of truth for all entity state. It
// exposes the repository operations consumed by the grading and curriculum
// workflows, backed by either in-memory seed data or PostgreSQL.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/finedu/classroom/internal/catalog"
)

// Lookup failures are resolved at this boundary and never propagate past it
// as anything other than these sentinels.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrSessionUserMissing means the seed's current_user_id does not match
	// any seeded user. It indicates broken fixtures, not a runtime state.
	ErrSessionUserMissing = errors.New("session user missing from seed")
)

// AssignmentFields holds the optional fields for a new assignment. Zero
// values fall back to defaults: title "New Assignment", max points 100,
// empty skills.
type AssignmentFields struct {
	Title       string
	Description string
	DueDate     time.Time
	MaxPoints   int
	Skills      []string
}

// Store is the repository surface consumed by workflows and the HTTP layer.
// All operations take a context to mirror a network-backed store; the
// in-memory implementation completes synchronously.
type Store interface {
	// CurrentUser returns the active session's user. Exactly one fixed
	// identity is current for the lifetime of the process.
	CurrentUser(ctx context.Context) (catalog.User, error)

	// ListCourses returns every course in store order.
	ListCourses(ctx context.Context) ([]catalog.Course, error)

	// GetCourse returns the course with the given id, or ErrCourseNotFound.
	GetCourse(ctx context.Context, id string) (*catalog.Course, error)

	// ListSubmissions returns the submissions for an assignment, preserving
	// store order. An unknown assignment id yields an empty list.
	ListSubmissions(ctx context.Context, assignmentID string) ([]catalog.Submission, error)

	// UpdateGrade sets grade and feedback on a submission and transitions
	// its status to GRADED unconditionally. Re-grading an already-GRADED
	// submission overwrites both fields. The grade is not checked against
	// the assignment's max points.
	UpdateGrade(ctx context.Context, submissionID string, grade int, feedback string) (*catalog.Submission, error)

	// CreateAssignment appends a new assignment to the course's assignment
	// sequence, filling unset fields with defaults, and returns it.
	CreateAssignment(ctx context.Context, courseID string, fields AssignmentFields) (*catalog.Assignment, error)
}

func (f AssignmentFields) applyDefaults(courseID string) catalog.Assignment {
	a := catalog.Assignment{
		ID:          generateID(),
		CourseID:    courseID,
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		MaxPoints:   f.MaxPoints,
		// Copied so the stored assignment is independent of the caller's
		// slice. A nil input becomes the empty default.
		Skills: append([]string{}, f.Skills...),
	}
	if a.Title == "" {
		a.Title = "New Assignment"
	}
	if a.MaxPoints == 0 {
		a.MaxPoints = 100
	}
	return a
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
