// Package grading manages the per-submission grading state machine and the
// assignment-level aggregate views shown to instructors.
package grading

import "github.com/finedu/classroom/internal/catalog"

// Summary aggregates a working set of submissions. LATE submissions count
// as pending for display purposes; they are not a separate bucket.
type Summary struct {
	Total   int
	Graded  int
	Pending int

	gradeSum int
}

// Average returns the arithmetic mean of grades over GRADED submissions.
// The second result is false when nothing has been graded; callers render
// a placeholder, never zero.
func (s Summary) Average() (float64, bool) {
	if s.Graded == 0 {
		return 0, false
	}
	return float64(s.gradeSum) / float64(s.Graded), true
}

// Summarize computes the aggregate view of a submission list.
func Summarize(subs []catalog.Submission) Summary {
	summary := Summary{Total: len(subs)}
	for _, sub := range subs {
		if sub.Status != catalog.StatusGraded {
			continue
		}
		summary.Graded++
		if sub.Grade != nil {
			summary.gradeSum += *sub.Grade
		}
	}
	summary.Pending = summary.Total - summary.Graded
	return summary
}
