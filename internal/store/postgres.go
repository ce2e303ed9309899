package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finedu/classroom/internal/catalog"
)

const dbTimeout = 5 * time.Second

// Schema creates the classroom tables. Entity ids are opaque text, matching
// the seed data; position columns preserve the ordered sequences the domain
// requires.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	email    TEXT NOT NULL,
	role     TEXT NOT NULL,
	avatar   TEXT,
	skills   JSONB
);

CREATE TABLE IF NOT EXISTS courses (
	id             TEXT PRIMARY KEY,
	code           TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	instructor_ids TEXT[] NOT NULL DEFAULT '{}',
	student_ids    TEXT[] NOT NULL DEFAULT '{}',
	position       INT NOT NULL
);

CREATE TABLE IF NOT EXISTS materials (
	id          TEXT PRIMARY KEY,
	course_id   TEXT NOT NULL REFERENCES courses(id),
	title       TEXT NOT NULL,
	type        TEXT NOT NULL,
	url         TEXT NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL,
	position    INT NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
	id        TEXT PRIMARY KEY,
	course_id TEXT NOT NULL REFERENCES courses(id),
	title     TEXT NOT NULL,
	position  INT NOT NULL
);

CREATE TABLE IF NOT EXISTS lessons (
	id               TEXT PRIMARY KEY,
	module_id        TEXT NOT NULL REFERENCES modules(id),
	title            TEXT NOT NULL,
	content          TEXT NOT NULL DEFAULT '',
	duration_minutes INT NOT NULL,
	materials        TEXT[] NOT NULL DEFAULT '{}',
	is_published     BOOLEAN NOT NULL DEFAULT FALSE,
	position         INT NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id          TEXT PRIMARY KEY,
	course_id   TEXT NOT NULL REFERENCES courses(id),
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date    TIMESTAMPTZ,
	max_points  INT NOT NULL,
	skills      TEXT[] NOT NULL DEFAULT '{}',
	position    INT NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
	id            TEXT PRIMARY KEY,
	assignment_id TEXT NOT NULL REFERENCES assignments(id),
	student_id    TEXT NOT NULL,
	student_name  TEXT NOT NULL,
	submitted_at  TIMESTAMPTZ NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	grade         INT,
	feedback      TEXT,
	status        TEXT NOT NULL,
	position      INT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id         BIGSERIAL PRIMARY KEY,
	entity_id  TEXT NOT NULL,
	actor_id   TEXT,
	event_type TEXT NOT NULL,
	data       JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool          *pgxpool.Pool
	currentUserID string
}

// NewPostgresStore creates a PostgreSQL-backed store. currentUserID names
// the fixed session identity.
func NewPostgresStore(pool *pgxpool.Pool, currentUserID string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if currentUserID == "" {
		return nil, fmt.Errorf("current user id is required")
	}
	return &PostgresStore{pool: pool, currentUserID: currentUserID}, nil
}

// EnsureSchema creates the classroom tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ImportSeed inserts the seed dataset. A database that already holds users
// is left untouched, so restarting the server against the same database
// does not re-import.
func (s *PostgresStore) ImportSeed(ctx context.Context, seed catalog.Seed) error {
	var seeded bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users)`,
	).Scan(&seeded); err != nil {
		return fmt.Errorf("check existing seed: %w", err)
	}
	if seeded {
		slog.Info("database already seeded, skipping import")
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed import: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range seed.Users {
		var skills any
		if u.Skills != nil {
			b, err := json.Marshal(u.Skills)
			if err != nil {
				return fmt.Errorf("marshal skills for %s: %w", u.ID, err)
			}
			skills = string(b)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, name, email, role, avatar, skills)
			 VALUES ($1, $2, $3, $4, $5, $6::jsonb)`,
			u.ID, u.Name, u.Email, string(u.Role), nullIfEmpty(u.Avatar), skills,
		); err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
	}

	for ci, c := range seed.Courses {
		if _, err := tx.Exec(ctx,
			`INSERT INTO courses (id, code, title, description, instructor_ids, student_ids, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.Code, c.Title, c.Description, c.InstructorIDs, c.StudentIDs, ci,
		); err != nil {
			return fmt.Errorf("insert course %s: %w", c.ID, err)
		}
		for mi, m := range c.Materials {
			if _, err := tx.Exec(ctx,
				`INSERT INTO materials (id, course_id, title, type, url, uploaded_at, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				m.ID, c.ID, m.Title, string(m.Type), m.URL, m.UploadedAt, mi,
			); err != nil {
				return fmt.Errorf("insert material %s: %w", m.ID, err)
			}
		}
		for mi, m := range c.Modules {
			if _, err := tx.Exec(ctx,
				`INSERT INTO modules (id, course_id, title, position)
				 VALUES ($1, $2, $3, $4)`,
				m.ID, c.ID, m.Title, mi,
			); err != nil {
				return fmt.Errorf("insert module %s: %w", m.ID, err)
			}
			for li, l := range m.Lessons {
				if _, err := tx.Exec(ctx,
					`INSERT INTO lessons (id, module_id, title, content, duration_minutes, materials, is_published, position)
					 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
					l.ID, m.ID, l.Title, l.Content, l.DurationMinutes, l.Materials, l.IsPublished, li,
				); err != nil {
					return fmt.Errorf("insert lesson %s: %w", l.ID, err)
				}
			}
		}
		for ai, a := range c.Assignments {
			if err := insertAssignment(ctx, tx, a, ai); err != nil {
				return err
			}
		}
	}

	for si, sub := range seed.Submissions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO submissions (id, assignment_id, student_id, student_name, submitted_at, content, grade, feedback, status, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			sub.ID, sub.AssignmentID, sub.StudentID, sub.StudentName, sub.SubmittedAt,
			sub.Content, sub.Grade, sub.Feedback, string(sub.Status), si,
		); err != nil {
			return fmt.Errorf("insert submission %s: %w", sub.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func insertAssignment(ctx context.Context, tx pgx.Tx, a catalog.Assignment, position int) error {
	var due any
	if !a.DueDate.IsZero() {
		due = a.DueDate
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO assignments (id, course_id, title, description, due_date, max_points, skills, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.CourseID, a.Title, a.Description, due, a.MaxPoints, a.Skills, position,
	); err != nil {
		return fmt.Errorf("insert assignment %s: %w", a.ID, err)
	}
	return nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (s *PostgresStore) CurrentUser(ctx context.Context) (catalog.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var u catalog.User
	var avatar *string
	var skills []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, role, avatar, skills FROM users WHERE id = $1`,
		s.currentUserID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &avatar, &skills)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.User{}, ErrSessionUserMissing
		}
		return catalog.User{}, fmt.Errorf("get current user: %w", err)
	}
	if avatar != nil {
		u.Avatar = *avatar
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &u.Skills); err != nil {
			return catalog.User{}, fmt.Errorf("parse skills: %w", err)
		}
	}
	return u, nil
}

func (s *PostgresStore) ListCourses(ctx context.Context) ([]catalog.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, code, title, description, instructor_ids, student_ids
		 FROM courses ORDER BY position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []catalog.Course
	for rows.Next() {
		var c catalog.Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.Description, &c.InstructorIDs, &c.StudentIDs); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	for i := range courses {
		if err := s.loadCourseChildren(ctx, &courses[i]); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

func (s *PostgresStore) GetCourse(ctx context.Context, id string) (*catalog.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var c catalog.Course
	err := s.pool.QueryRow(ctx,
		`SELECT id, code, title, description, instructor_ids, student_ids
		 FROM courses WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Code, &c.Title, &c.Description, &c.InstructorIDs, &c.StudentIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	if err := s.loadCourseChildren(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) loadCourseChildren(ctx context.Context, c *catalog.Course) error {
	c.Materials = []catalog.Material{}
	c.Modules = []catalog.Module{}
	c.Assignments = []catalog.Assignment{}

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, type, url, uploaded_at
		 FROM materials WHERE course_id = $1 ORDER BY position ASC`,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("query materials: %w", err)
	}
	for rows.Next() {
		var m catalog.Material
		if err := rows.Scan(&m.ID, &m.Title, &m.Type, &m.URL, &m.UploadedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan material: %w", err)
		}
		c.Materials = append(c.Materials, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate materials: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, title FROM modules WHERE course_id = $1 ORDER BY position ASC`,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("query modules: %w", err)
	}
	for rows.Next() {
		var m catalog.Module
		if err := rows.Scan(&m.ID, &m.Title); err != nil {
			rows.Close()
			return fmt.Errorf("scan module: %w", err)
		}
		m.Lessons = []catalog.Lesson{}
		c.Modules = append(c.Modules, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate modules: %w", err)
	}

	for i := range c.Modules {
		rows, err = s.pool.Query(ctx,
			`SELECT id, title, content, duration_minutes, materials, is_published
			 FROM lessons WHERE module_id = $1 ORDER BY position ASC`,
			c.Modules[i].ID,
		)
		if err != nil {
			return fmt.Errorf("query lessons: %w", err)
		}
		for rows.Next() {
			var l catalog.Lesson
			if err := rows.Scan(&l.ID, &l.Title, &l.Content, &l.DurationMinutes, &l.Materials, &l.IsPublished); err != nil {
				rows.Close()
				return fmt.Errorf("scan lesson: %w", err)
			}
			c.Modules[i].Lessons = append(c.Modules[i].Lessons, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate lessons: %w", err)
		}
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, course_id, title, description, due_date, max_points, skills
		 FROM assignments WHERE course_id = $1 ORDER BY position ASC`,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("query assignments: %w", err)
	}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			rows.Close()
			return err
		}
		c.Assignments = append(c.Assignments, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate assignments: %w", err)
	}

	return nil
}

func scanAssignment(row pgx.Row) (catalog.Assignment, error) {
	var a catalog.Assignment
	var due *time.Time
	if err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &due, &a.MaxPoints, &a.Skills); err != nil {
		return catalog.Assignment{}, fmt.Errorf("scan assignment: %w", err)
	}
	if due != nil {
		a.DueDate = *due
	}
	return a, nil
}

func (s *PostgresStore) ListSubmissions(ctx context.Context, assignmentID string) ([]catalog.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, assignment_id, student_id, student_name, submitted_at, content, grade, feedback, status
		 FROM submissions WHERE assignment_id = $1 ORDER BY position ASC`,
		assignmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	subs := []catalog.Submission{}
	for rows.Next() {
		var sub catalog.Submission
		if err := rows.Scan(
			&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.StudentName,
			&sub.SubmittedAt, &sub.Content, &sub.Grade, &sub.Feedback, &sub.Status,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

func (s *PostgresStore) UpdateGrade(ctx context.Context, submissionID string, grade int, feedback string) (*catalog.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var sub catalog.Submission
	err := s.pool.QueryRow(ctx,
		`UPDATE submissions
		 SET grade = $2, feedback = $3, status = $4
		 WHERE id = $1
		 RETURNING id, assignment_id, student_id, student_name, submitted_at, content, grade, feedback, status`,
		submissionID, grade, feedback, string(catalog.StatusGraded),
	).Scan(
		&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.StudentName,
		&sub.SubmittedAt, &sub.Content, &sub.Grade, &sub.Feedback, &sub.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("update grade: %w", err)
	}
	return &sub, nil
}

func (s *PostgresStore) CreateAssignment(ctx context.Context, courseID string, fields AssignmentFields) (*catalog.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create assignment: %w", err)
	}
	defer tx.Rollback(ctx)

	var position int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM assignments WHERE course_id = $1`,
		courseID,
	).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("next assignment position: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	assignment := fields.applyDefaults(courseID)
	if err := insertAssignment(ctx, tx, assignment, position); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create assignment: %w", err)
	}
	return &assignment, nil
}
