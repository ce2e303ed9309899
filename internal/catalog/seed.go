package catalog

import (
	"fmt"
	"time"
)

// Seed is the full demo dataset plus the identity treated as the logged-in
// user for the lifetime of the process.
type Seed struct {
	CurrentUserID string       `yaml:"current_user_id"`
	Users         []User       `yaml:"users"`
	Courses       []Course     `yaml:"courses"`
	Submissions   []Submission `yaml:"submissions"`
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DefaultSeed returns the built-in demo dataset: a fintech faculty with two
// courses, ten students, and a handful of submissions in various grading
// states. The current user is the instructor of FIN-101.
func DefaultSeed() Seed {
	users := []User{
		{ID: "u1", Name: "Alice Admin", Email: "admin@fintech.edu", Role: RoleAdmin, Avatar: "https://picsum.photos/id/64/100/100"},
		{ID: "u2", Name: "Dr. Sarah Smith", Email: "sarah@fintech.edu", Role: RoleInstructor, Avatar: "https://picsum.photos/id/65/100/100"},
		{ID: "u3", Name: "Prof. John Doe", Email: "john@fintech.edu", Role: RoleInstructor, Avatar: "https://picsum.photos/id/66/100/100"},
	}
	for i := 0; i < 10; i++ {
		users = append(users, User{
			ID:     fmt.Sprintf("s%d", i),
			Name:   fmt.Sprintf("Student %d", i+1),
			Email:  fmt.Sprintf("student%d@edu.com", i+1),
			Role:   RoleStudent,
			Avatar: fmt.Sprintf("https://picsum.photos/id/%d/100/100", 100+i),
			Skills: map[string]int{
				"Financial Modeling": 60 + (i*7)%40,
				"Compliance":         50 + (i*11)%50,
				"Python":             40 + (i*13)%60,
			},
		})
	}

	grade85 := 85
	feedback85 := "Good work, but missed the settlement phase."

	return Seed{
		CurrentUserID: "u2",
		Users:         users,
		Courses: []Course{
			{
				ID:            "c1",
				Code:          "FIN-101",
				Title:         "Introduction to Fintech Architecture",
				Description:   "Learn the foundational building blocks of modern financial technology systems.",
				InstructorIDs: []string{"u2"},
				StudentIDs:    []string{"s0", "s1", "s2", "s3", "s4"},
				Materials: []Material{
					{ID: "m1", Title: "Course Syllabus", Type: MaterialPDF, URL: "#", UploadedAt: date(2023, time.September, 1)},
					{ID: "m2", Title: "Lecture 1 Slides", Type: MaterialPPTX, URL: "#", UploadedAt: date(2023, time.September, 2)},
				},
				Modules: []Module{
					{
						ID:    "mod1",
						Title: "Module 1: Payment Systems",
						Lessons: []Lesson{
							{ID: "l1", Title: "History of Payments", Content: "<p>From barter to Bitcoin...</p>", DurationMinutes: 45, Materials: []string{"m2"}, IsPublished: true},
							{ID: "l2", Title: "SWIFT & SEPA", Content: "<p>Understanding cross-border transfers.</p>", DurationMinutes: 60, Materials: []string{}, IsPublished: true},
						},
					},
					{
						ID:    "mod2",
						Title: "Module 2: Blockchain Fundamentals",
						Lessons: []Lesson{
							{ID: "l3", Title: "Distributed Ledgers", Content: "<p>How consensus works.</p>", DurationMinutes: 90, Materials: []string{}, IsPublished: false},
						},
					},
				},
				Assignments: []Assignment{
					{ID: "a1", CourseID: "c1", Title: "Payment Flow Diagram", Description: "Draw a sequence diagram for a credit card auth.", DueDate: date(2023, time.October, 15), MaxPoints: 100, Skills: []string{"Architecture", "Payments"}},
					{ID: "a2", CourseID: "c1", Title: "Blockchain Essay", Description: "Discuss the trilemma.", DueDate: date(2023, time.November, 1), MaxPoints: 50, Skills: []string{"Blockchain", "Writing"}},
				},
			},
			{
				ID:            "c2",
				Code:          "DEV-200",
				Title:         "Full Stack Finance",
				Description:   "Building secure ledgers with Node.js and SQL.",
				InstructorIDs: []string{"u3"},
				StudentIDs:    []string{"s5", "s6", "s7", "s8", "s9"},
				Materials:     []Material{},
				Modules:       []Module{},
				Assignments: []Assignment{
					{ID: "a3", CourseID: "c2", Title: "Ledger Database Schema", Description: "Design a double-entry schema.", DueDate: date(2023, time.October, 20), MaxPoints: 100, Skills: []string{"Database", "SQL"}},
				},
			},
		},
		Submissions: []Submission{
			{ID: "sub1", AssignmentID: "a1", StudentID: "s0", StudentName: "Student 1", SubmittedAt: date(2023, time.October, 14), Content: "Here is my diagram: [Link]", Status: StatusPending},
			{ID: "sub2", AssignmentID: "a1", StudentID: "s1", StudentName: "Student 2", SubmittedAt: date(2023, time.October, 15), Content: "Attached file.", Grade: &grade85, Feedback: &feedback85, Status: StatusGraded},
			{ID: "sub3", AssignmentID: "a3", StudentID: "s5", StudentName: "Student 6", SubmittedAt: date(2023, time.October, 19), Content: "CREATE TABLE ledger...", Status: StatusPending},
		},
	}
}

// Validate reports data-quality problems in the seed: duplicate ids,
// non-positive point or duration values, and lessons referencing materials
// that do not exist in the owning course. Problems are returned rather than
// enforced; a dangling material reference is a defect, not a hard error.
func (s Seed) Validate() []error {
	var problems []error

	assignmentIDs := map[string]bool{}
	for _, c := range s.Courses {
		moduleIDs := map[string]bool{}
		lessonIDs := map[string]bool{}
		materials := map[string]bool{}
		for _, m := range c.Materials {
			materials[m.ID] = true
		}
		for _, a := range c.Assignments {
			if assignmentIDs[a.ID] {
				problems = append(problems, fmt.Errorf("course %s: duplicate assignment id %s", c.ID, a.ID))
			}
			assignmentIDs[a.ID] = true
			if a.MaxPoints <= 0 {
				problems = append(problems, fmt.Errorf("assignment %s: max_points must be positive, got %d", a.ID, a.MaxPoints))
			}
		}
		for _, m := range c.Modules {
			if moduleIDs[m.ID] {
				problems = append(problems, fmt.Errorf("course %s: duplicate module id %s", c.ID, m.ID))
			}
			moduleIDs[m.ID] = true
			for _, l := range m.Lessons {
				if lessonIDs[l.ID] {
					problems = append(problems, fmt.Errorf("course %s: duplicate lesson id %s", c.ID, l.ID))
				}
				lessonIDs[l.ID] = true
				if l.DurationMinutes <= 0 {
					problems = append(problems, fmt.Errorf("lesson %s: duration_minutes must be positive, got %d", l.ID, l.DurationMinutes))
				}
				for _, ref := range l.Materials {
					if !materials[ref] {
						problems = append(problems, fmt.Errorf("lesson %s: dangling material reference %s", l.ID, ref))
					}
				}
			}
		}
	}

	submissionIDs := map[string]bool{}
	for _, sub := range s.Submissions {
		if submissionIDs[sub.ID] {
			problems = append(problems, fmt.Errorf("duplicate submission id %s", sub.ID))
		}
		submissionIDs[sub.ID] = true
	}

	return problems
}
