package formatter

import (
	"bytes"
	"fmt"

	"workforce-planner/models"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// FormatXLSX returns an Excel workbook with one sheet per department and a summary sheet.
// The result is binary and meant to be redirected to a file.
func FormatXLSX(plan *models.Plan) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("xlsx header style: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return "", err
	}
	seen := make(map[int]bool, len(plan.Departments))
	for _, dep := range plan.Departments {
		if seen[dep.Department] {
			return "", fmt.Errorf("xlsx: department %d appears twice", dep.Department)
		}
		seen[dep.Department] = true

		sheet := fmt.Sprintf("Department %d", dep.Department)
		if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("xlsx sheet %q: %w", sheet, err)
		}
		if err := writeRow(f, sheet, 1, toAny(columns)); err != nil {
			return "", err
		}
		if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
			return "", fmt.Errorf("xlsx sheet %q: %w", sheet, err)
		}
		if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
			return "", fmt.Errorf("xlsx sheet %q: %w", sheet, err)
		}
		for i, m := range dep.Months {
			if err := writeRow(f, sheet, i+2, []any{m.Month, m.Hires, m.Underemployed, m.AvailableHours, m.RequiredHours}); err != nil {
				return "", err
			}
		}
	}

	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return "", fmt.Errorf("xlsx sheet %q: %w", summarySheet, err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("xlsx default sheet: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return "", err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 40); err != nil {
		return "", err
	}

	s := plan.Summary
	summary := [][]any{
		{"Run", plan.RunID.String()},
		{"Objective", plan.Objective},
		{"Total Hires", s.TotalHires},
		{"Total Underemployed", s.TotalUnderemployed},
		{"Training Cost", s.TrainingCost},
		{"Salary Cost", s.SalaryCost},
		{"Understaffing Cost", s.UnderstaffingCost},
		{"Nodes", plan.Nodes},
		{"Solve Time", plan.SolveTime.String()},
	}
	for i, row := range summary {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return "", err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), headerStyle); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", fmt.Errorf("write xlsx: %w", err)
	}
	return buf.String(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("xlsx sheet %q cell %s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
