// Package catalog defines the curriculum domain model: users, courses and
// their nested modules, lessons, materials, assignments, and submissions.
package catalog

import "time"

// Role identifies what a user can do in the system.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
)

// MaterialType identifies the kind of uploaded material.
type MaterialType string

const (
	MaterialPDF   MaterialType = "PDF"
	MaterialPPTX  MaterialType = "PPTX"
	MaterialDOCX  MaterialType = "DOCX"
	MaterialVideo MaterialType = "VIDEO"
	MaterialLink  MaterialType = "LINK"
)

// SubmissionStatus is the grading state of a submission.
type SubmissionStatus string

const (
	StatusPending SubmissionStatus = "PENDING"
	StatusGraded  SubmissionStatus = "GRADED"
	StatusLate    SubmissionStatus = "LATE"
)

// User is a person known to the system. Users are created at seed time and
// never updated through the repository.
type User struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Email  string         `json:"email" yaml:"email"`
	Role   Role           `json:"role" yaml:"role"`
	Avatar string         `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Skills map[string]int `json:"skills,omitempty" yaml:"skills,omitempty"` // skill name -> score 0-100
}

// Material is an uploaded file or link owned by a course.
type Material struct {
	ID         string       `json:"id" yaml:"id"`
	Title      string       `json:"title" yaml:"title"`
	Type       MaterialType `json:"type" yaml:"type"`
	URL        string       `json:"url" yaml:"url"`
	UploadedAt time.Time    `json:"uploaded_at" yaml:"uploaded_at"`
}

// Lesson is a single instructional unit inside a module. Materials holds
// weak references into the owning course's material list.
type Lesson struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Content         string   `json:"content" yaml:"content"` // HTML/Markdown, opaque here
	DurationMinutes int      `json:"duration_minutes" yaml:"duration_minutes"`
	Materials       []string `json:"materials" yaml:"materials"`
	IsPublished     bool     `json:"is_published" yaml:"is_published"`
}

// Module is an ordered grouping of lessons. Lesson order is instructional
// order, not arbitrary.
type Module struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Lessons []Lesson `json:"lessons" yaml:"lessons"`
}

// Assignment is a gradable task belonging to a course.
type Assignment struct {
	ID          string    `json:"id" yaml:"id"`
	CourseID    string    `json:"course_id" yaml:"course_id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	DueDate     time.Time `json:"due_date" yaml:"due_date"`
	MaxPoints   int       `json:"max_points" yaml:"max_points"`
	Skills      []string  `json:"skills" yaml:"skills"`
}

// Submission is a student's response to an assignment. Grade and Feedback
// are nil until the submission is graded. A submission is GRADED if and
// only if both were set through the grading operation.
type Submission struct {
	ID           string           `json:"id" yaml:"id"`
	AssignmentID string           `json:"assignment_id" yaml:"assignment_id"`
	StudentID    string           `json:"student_id" yaml:"student_id"`
	StudentName  string           `json:"student_name" yaml:"student_name"` // denormalized at submission time
	SubmittedAt  time.Time        `json:"submitted_at" yaml:"submitted_at"`
	Content      string           `json:"content" yaml:"content"`
	Grade        *int             `json:"grade,omitempty" yaml:"grade,omitempty"`
	Feedback     *string          `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Status       SubmissionStatus `json:"status" yaml:"status"`
}

// Course is the top-level teachable unit. It exclusively owns its modules,
// materials, and assignments.
type Course struct {
	ID            string       `json:"id" yaml:"id"`
	Code          string       `json:"code" yaml:"code"`
	Title         string       `json:"title" yaml:"title"`
	Description   string       `json:"description" yaml:"description"`
	InstructorIDs []string     `json:"instructor_ids" yaml:"instructor_ids"`
	StudentIDs    []string     `json:"student_ids" yaml:"student_ids"`
	Modules       []Module     `json:"modules" yaml:"modules"`
	Materials     []Material   `json:"materials" yaml:"materials"`
	Assignments   []Assignment `json:"assignments" yaml:"assignments"`
}

// Assignment returns the assignment with the given id, if the course has it.
func (c Course) Assignment(id string) (Assignment, bool) {
	for _, a := range c.Assignments {
		if a.ID == id {
			return a, true
		}
	}
	return Assignment{}, false
}

// Module returns the module with the given id, if the course has it.
func (c Course) Module(id string) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}
