package store

import (
	"context"
	"sync"

	"github.com/finedu/classroom/internal/catalog"
)

// MemoryStore is the in-memory Store implementation, seeded once at
// construction. Mutations take a single write lock; the source system had
// no concurrency control at all, and a global critical section keeps the
// port race-free without changing observable behavior.
type MemoryStore struct {
	mu            sync.RWMutex
	currentUserID string
	users         []catalog.User
	courses       []catalog.Course
	submissions   []catalog.Submission
}

// NewMemoryStore creates a store populated from the given seed.
func NewMemoryStore(seed catalog.Seed) *MemoryStore {
	return &MemoryStore{
		currentUserID: seed.CurrentUserID,
		users:         append([]catalog.User{}, seed.Users...),
		courses:       append([]catalog.Course{}, seed.Courses...),
		submissions:   append([]catalog.Submission{}, seed.Submissions...),
	}
}

func (s *MemoryStore) CurrentUser(_ context.Context) (catalog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == s.currentUserID {
			return u, nil
		}
	}
	return catalog.User{}, ErrSessionUserMissing
}

func (s *MemoryStore) ListCourses(_ context.Context) ([]catalog.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]catalog.Course, len(s.courses))
	for i, c := range s.courses {
		courses[i] = cloneCourse(c)
	}
	return courses, nil
}

func (s *MemoryStore) GetCourse(_ context.Context, id string) (*catalog.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.courses {
		if c.ID == id {
			course := cloneCourse(c)
			return &course, nil
		}
	}
	return nil, ErrCourseNotFound
}

func (s *MemoryStore) ListSubmissions(_ context.Context, assignmentID string) ([]catalog.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := []catalog.Submission{}
	for _, sub := range s.submissions {
		if sub.AssignmentID == assignmentID {
			subs = append(subs, cloneSubmission(sub))
		}
	}
	return subs, nil
}

func (s *MemoryStore) UpdateGrade(_ context.Context, submissionID string, grade int, feedback string) (*catalog.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.submissions {
		if s.submissions[i].ID != submissionID {
			continue
		}
		g := grade
		f := feedback
		s.submissions[i].Grade = &g
		s.submissions[i].Feedback = &f
		s.submissions[i].Status = catalog.StatusGraded

		updated := cloneSubmission(s.submissions[i])
		return &updated, nil
	}
	return nil, ErrSubmissionNotFound
}

func (s *MemoryStore) CreateAssignment(_ context.Context, courseID string, fields AssignmentFields) (*catalog.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.courses {
		if s.courses[i].ID != courseID {
			continue
		}
		assignment := fields.applyDefaults(courseID)
		s.courses[i].Assignments = append(s.courses[i].Assignments, assignment)

		created := assignment
		created.Skills = append([]string{}, assignment.Skills...)
		return &created, nil
	}
	return nil, ErrCourseNotFound
}

// cloneCourse returns a copy whose nested slices are independent of the
// store's, so callers can treat results as snapshots.
func cloneCourse(c catalog.Course) catalog.Course {
	out := c
	out.InstructorIDs = append([]string{}, c.InstructorIDs...)
	out.StudentIDs = append([]string{}, c.StudentIDs...)
	out.Materials = append([]catalog.Material{}, c.Materials...)
	out.Assignments = make([]catalog.Assignment, len(c.Assignments))
	for i, a := range c.Assignments {
		out.Assignments[i] = a
		out.Assignments[i].Skills = append([]string{}, a.Skills...)
	}
	out.Modules = make([]catalog.Module, len(c.Modules))
	for i, m := range c.Modules {
		out.Modules[i] = m
		out.Modules[i].Lessons = make([]catalog.Lesson, len(m.Lessons))
		for j, l := range m.Lessons {
			out.Modules[i].Lessons[j] = l
			out.Modules[i].Lessons[j].Materials = append([]string{}, l.Materials...)
		}
	}
	return out
}

func cloneSubmission(sub catalog.Submission) catalog.Submission {
	out := sub
	if sub.Grade != nil {
		g := *sub.Grade
		out.Grade = &g
	}
	if sub.Feedback != nil {
		f := *sub.Feedback
		out.Feedback = &f
	}
	return out
}
