package export_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/finedu/classroom/internal/catalog"
	"github.com/finedu/classroom/internal/export"
)

func testAssignment() catalog.Assignment {
	return catalog.Assignment{
		ID:        "a1",
		CourseID:  "c1",
		Title:     "Payment Flow Diagram",
		MaxPoints: 100,
	}
}

func testSubmissions() []catalog.Submission {
	grade := 85
	feedback := "Good work, but missed the settlement phase."
	return []catalog.Submission{
		{ID: "sub1", AssignmentID: "a1", StudentID: "s0", StudentName: "Student 1", Status: catalog.StatusPending},
		{ID: "sub2", AssignmentID: "a1", StudentID: "s1", StudentName: "Student 2", Grade: &grade, Feedback: &feedback, Status: catalog.StatusGraded},
	}
}

func TestGradebook(t *testing.T) {
	f, err := export.Gradebook(testAssignment(), testSubmissions())
	if err != nil {
		t.Fatalf("Gradebook() error = %v", err)
	}
	defer f.Close()

	title, err := f.GetCellValue("Gradebook", "A1")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if title != "Payment Flow Diagram (max 100 points)" {
		t.Errorf("title = %q", title)
	}

	header, _ := f.GetCellValue("Gradebook", "A2")
	if header != "Student" {
		t.Errorf("header A2 = %q, want Student", header)
	}

	// Pending row: grade cell stays blank.
	pendingGrade, _ := f.GetCellValue("Gradebook", "E3")
	if pendingGrade != "" {
		t.Errorf("pending grade cell = %q, want blank", pendingGrade)
	}

	gradedName, _ := f.GetCellValue("Gradebook", "A4")
	if gradedName != "Student 2" {
		t.Errorf("A4 = %q, want Student 2", gradedName)
	}
	gradedGrade, _ := f.GetCellValue("Gradebook", "E4")
	if gradedGrade != "85" {
		t.Errorf("graded grade cell = %q, want 85", gradedGrade)
	}
	gradedFeedback, _ := f.GetCellValue("Gradebook", "G4")
	if gradedFeedback != "Good work, but missed the settlement phase." {
		t.Errorf("feedback cell = %q", gradedFeedback)
	}
}

func TestWriteGradebook(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteGradebook(&buf, testAssignment(), testSubmissions()); err != nil {
		t.Fatalf("WriteGradebook() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("WriteGradebook() wrote nothing")
	}

	// The output must be a readable workbook.
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Gradebook")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	// Title + header + two submission rows.
	if len(rows) != 4 {
		t.Errorf("rows = %d, want 4", len(rows))
	}
}

func TestGradebook_NoSubmissions(t *testing.T) {
	f, err := export.Gradebook(testAssignment(), nil)
	if err != nil {
		t.Fatalf("Gradebook() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Gradebook")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want just title and header", len(rows))
	}
}
