package grading_test

import (
	"testing"

	"github.com/finedu/classroom/internal/catalog"
	"github.com/finedu/classroom/internal/grading"
)

func graded(id string, grade int) catalog.Submission {
	f := "feedback"
	return catalog.Submission{ID: id, Grade: &grade, Feedback: &f, Status: catalog.StatusGraded}
}

func TestSummarize(t *testing.T) {
	subs := []catalog.Submission{
		{ID: "s1", Status: catalog.StatusPending},
		graded("s2", 80),
		graded("s3", 90),
		{ID: "s4", Status: catalog.StatusLate},
	}

	summary := grading.Summarize(subs)

	if summary.Total != 4 {
		t.Errorf("Total = %d, want 4", summary.Total)
	}
	if summary.Graded != 2 {
		t.Errorf("Graded = %d, want 2", summary.Graded)
	}
	// LATE folds into pending.
	if summary.Pending != 2 {
		t.Errorf("Pending = %d, want 2", summary.Pending)
	}

	avg, ok := summary.Average()
	if !ok {
		t.Fatal("Average() should have a value")
	}
	if avg != 85.0 {
		t.Errorf("Average() = %v, want 85", avg)
	}
}

func TestSummarize_NoGraded(t *testing.T) {
	subs := []catalog.Submission{
		{ID: "s1", Status: catalog.StatusPending},
		{ID: "s2", Status: catalog.StatusLate},
	}

	summary := grading.Summarize(subs)

	if _, ok := summary.Average(); ok {
		t.Error("Average() should have no value when nothing is graded")
	}
	if summary.Pending != 2 {
		t.Errorf("Pending = %d, want 2", summary.Pending)
	}
}

func TestSummarize_Empty(t *testing.T) {
	summary := grading.Summarize(nil)

	if summary.Total != 0 || summary.Graded != 0 || summary.Pending != 0 {
		t.Errorf("Summarize(nil) = %+v, want zeroes", summary)
	}
	if _, ok := summary.Average(); ok {
		t.Error("Average() over an empty set should have no value")
	}
}

func TestSummarize_AllGraded(t *testing.T) {
	summary := grading.Summarize([]catalog.Submission{graded("s1", 100)})

	if summary.Pending != 0 {
		t.Errorf("Pending = %d, want 0", summary.Pending)
	}
	avg, ok := summary.Average()
	if !ok || avg != 100 {
		t.Errorf("Average() = %v, %v; want 100, true", avg, ok)
	}
}
