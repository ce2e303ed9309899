// Package export renders instructor-facing spreadsheet exports.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/finedu/classroom/internal/catalog"
)

const gradebookSheet = "Gradebook"

var gradebookHeader = []string{"Student", "Student ID", "Submitted", "Status", "Grade", "Max Points", "Feedback"}

// Gradebook builds an XLSX workbook for one assignment's submissions, one
// row per submission in store order. Ungraded rows leave the grade and
// feedback cells blank rather than writing zeroes.
func Gradebook(assignment catalog.Assignment, subs []catalog.Submission) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", gradebookSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetCellValue(gradebookSheet, "A1", fmt.Sprintf("%s (max %d points)", assignment.Title, assignment.MaxPoints)); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, name := range gradebookHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(gradebookSheet, cell, name); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(gradebookSheet, cell, cell, bold); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
	}

	for i, sub := range subs {
		row := i + 3
		values := []any{
			sub.StudentName,
			sub.StudentID,
			sub.SubmittedAt.Format("2006-01-02"),
			string(sub.Status),
			nil,
			assignment.MaxPoints,
			nil,
		}
		if sub.Grade != nil {
			values[4] = *sub.Grade
		}
		if sub.Feedback != nil {
			values[6] = *sub.Feedback
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("row cell name: %w", err)
			}
			if err := f.SetCellValue(gradebookSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	return f, nil
}

// WriteGradebook writes the workbook for an assignment to w.
func WriteGradebook(w io.Writer, assignment catalog.Assignment, subs []catalog.Submission) error {
	f, err := Gradebook(assignment, subs)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
