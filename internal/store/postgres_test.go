package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/finedu/classroom/internal/catalog"
	"github.com/finedu/classroom/internal/platform/database"
	"github.com/finedu/classroom/internal/store"
)

// startPostgres spins up a disposable postgres with the schema applied and
// the default seed imported.
func startPostgres(t *testing.T) (*store.PostgresStore, *database.DB) {
	t.Helper()
	ctx := context.Background()

	ctr, err := pgcontainer.Run(ctx, "postgres:16-alpine",
		pgcontainer.WithDatabase("classroom"),
		pgcontainer.WithUsername("classroom"),
		pgcontainer.WithPassword("classroom"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := database.New(ctx, url, 5, 1)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(db.Close)

	s, err := store.NewPostgresStore(db.Pool, "u2")
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := s.ImportSeed(ctx, catalog.DefaultSeed()); err != nil {
		t.Fatalf("ImportSeed() error = %v", err)
	}
	return s, db
}

func TestPostgresStore_Contract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	s, db := startPostgres(t)
	ctx := context.Background()

	t.Run("current user", func(t *testing.T) {
		user, err := s.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if user.ID != "u2" || user.Role != catalog.RoleInstructor {
			t.Errorf("user = %+v, want instructor u2", user)
		}
	})

	t.Run("list courses in seed order", func(t *testing.T) {
		courses, err := s.ListCourses(ctx)
		if err != nil {
			t.Fatalf("ListCourses() error = %v", err)
		}
		if len(courses) != 2 || courses[0].ID != "c1" || courses[1].ID != "c2" {
			t.Fatalf("courses = %v", courses)
		}
		if len(courses[0].Modules) != 2 || len(courses[0].Modules[0].Lessons) != 2 {
			t.Errorf("c1 nested structure not loaded: %+v", courses[0].Modules)
		}
	})

	t.Run("get course not found", func(t *testing.T) {
		_, err := s.GetCourse(ctx, "nope")
		if !errors.Is(err, store.ErrCourseNotFound) {
			t.Errorf("error = %v, want ErrCourseNotFound", err)
		}
	})

	t.Run("submissions keep order", func(t *testing.T) {
		subs, err := s.ListSubmissions(ctx, "a1")
		if err != nil {
			t.Fatalf("ListSubmissions() error = %v", err)
		}
		if len(subs) != 2 || subs[0].ID != "sub1" || subs[1].ID != "sub2" {
			t.Fatalf("subs = %v", subs)
		}
	})

	t.Run("update grade", func(t *testing.T) {
		sub, err := s.UpdateGrade(ctx, "sub1", 85, "Solid diagram.")
		if err != nil {
			t.Fatalf("UpdateGrade() error = %v", err)
		}
		if sub.Status != catalog.StatusGraded || *sub.Grade != 85 {
			t.Errorf("sub = %+v, want graded at 85", sub)
		}

		_, err = s.UpdateGrade(ctx, "missing", 1, "x")
		if !errors.Is(err, store.ErrSubmissionNotFound) {
			t.Errorf("error = %v, want ErrSubmissionNotFound", err)
		}
	})

	t.Run("create assignment", func(t *testing.T) {
		created, err := s.CreateAssignment(ctx, "c1", store.AssignmentFields{Title: "Quiz 1"})
		if err != nil {
			t.Fatalf("CreateAssignment() error = %v", err)
		}
		if created.MaxPoints != 100 || len(created.Skills) != 0 {
			t.Errorf("defaults not applied: %+v", created)
		}

		course, err := s.GetCourse(ctx, "c1")
		if err != nil {
			t.Fatalf("GetCourse() error = %v", err)
		}
		last := course.Assignments[len(course.Assignments)-1]
		if last.ID != created.ID {
			t.Errorf("new assignment not appended: %+v", course.Assignments)
		}

		_, err = s.CreateAssignment(ctx, "nope", store.AssignmentFields{})
		if !errors.Is(err, store.ErrCourseNotFound) {
			t.Errorf("error = %v, want ErrCourseNotFound", err)
		}
	})

	t.Run("restart against seeded database", func(t *testing.T) {
		s2, err := store.NewPostgresStore(db.Pool, "u2")
		if err != nil {
			t.Fatalf("NewPostgresStore() error = %v", err)
		}
		if err := s2.EnsureSchema(ctx); err != nil {
			t.Fatalf("EnsureSchema() error = %v", err)
		}
		if err := s2.ImportSeed(ctx, catalog.DefaultSeed()); err != nil {
			t.Fatalf("ImportSeed() on seeded database error = %v", err)
		}

		courses, err := s2.ListCourses(ctx)
		if err != nil {
			t.Fatalf("ListCourses() error = %v", err)
		}
		if len(courses) != 2 {
			t.Errorf("len(courses) = %d after reimport, want 2", len(courses))
		}
	})

	t.Run("event logging", func(t *testing.T) {
		logger := store.NewPostgresEventLogger(db.Pool)
		err := logger.LogEvent(store.Event{
			EntityID:  "sub1",
			ActorID:   "u2",
			EventType: store.EventGradeUpdated,
			Data:      map[string]any{"grade": 85},
		})
		if err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}
	})
}
