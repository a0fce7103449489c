package formatter_test

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"workforce-planner/formatter"
	"workforce-planner/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func samplePlan() *models.Plan {
	return &models.Plan{
		RunID:     uuid.MustParse("6f1c2b8e-0d3a-4b8e-9c1f-2a3b4c5d6e7f"),
		Objective: 125000,
		Departments: []models.DepartmentReport{
			{
				Department: 0,
				Months: []models.MonthRow{
					{Month: 0, Hires: 1, Underemployed: 0, AvailableHours: 2570, RequiredHours: 1900},
					{Month: 1, Hires: 0, Underemployed: 2, AvailableHours: 1512.5, RequiredHours: 1700},
				},
			},
			{
				Department: 1,
				Months: []models.MonthRow{
					{Month: 0, Hires: 0, Underemployed: 0, AvailableHours: 2070, RequiredHours: 1900},
					{Month: 1, Hires: 3, Underemployed: 0, AvailableHours: 2305, RequiredHours: 1700},
				},
			},
		},
		Summary: models.PlanSummary{
			TotalHires:         4,
			TotalUnderemployed: 2,
			TrainingCost:       200000,
			SalaryCost:         70000,
			UnderstaffingCost:  120000,
		},
	}
}

func TestFormatText(t *testing.T) {
	tests := map[string]struct {
		plan     *models.Plan
		contains []string
	}{
		"TwoDepartments": {
			plan: samplePlan(),
			contains: []string{
				"DEPARTMENT 0",
				"DEPARTMENT 1",
				"Underemployed",
				"Available Hours",
				"2570",
				"1512.5",
				"objective=125000 hires=4 underemployed=2",
			},
		},
		"EmptyPlan": {
			plan:     &models.Plan{},
			contains: []string{"objective=0 hires=0 underemployed=0"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out := formatter.FormatText(tc.plan)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
		})
	}

	out := formatter.FormatText(samplePlan())
	assert.Less(t, strings.Index(out, "DEPARTMENT 0"), strings.Index(out, "DEPARTMENT 1"))
}

func TestFormatCSV(t *testing.T) {
	out := formatter.FormatCSV(samplePlan())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "Department,Month,Hires,Underemployed,Available Hours,Required Hours", lines[0])
	assert.Equal(t, "0,0,1,0,2570,1900", lines[1])
	assert.Equal(t, "0,1,0,2,1512.5,1700", lines[2])
	assert.Equal(t, "1,1,3,0,2305,1700", lines[4])
}

func TestFormatJSON(t *testing.T) {
	out := formatter.FormatJSON(samplePlan())

	var decoded models.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, *samplePlan(), decoded)
	assert.Contains(t, out, `"run_id": "6f1c2b8e-0d3a-4b8e-9c1f-2a3b4c5d6e7f"`)
}

func TestFormatYAML(t *testing.T) {
	out := formatter.FormatYAML(samplePlan())

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 125000, decoded["objective"])
	assert.Len(t, decoded["departments"], 2)
	assert.Contains(t, out, "available_hours: 1512.5")
}

func TestFormats(t *testing.T) {
	for _, name := range []string{"text", "json", "csv", "yaml", "xlsx"} {
		assert.Contains(t, formatter.Formats, name)
	}
	assert.NotContains(t, formatter.Formats, "xml")
}

func TestFormatXLSX(t *testing.T) {
	plan := samplePlan()
	out, err := formatter.FormatXLSX(plan)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(strings.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Len(t, sheets, len(plan.Departments)+1)

	dep := plan.Departments[0]
	sheet := fmt.Sprintf("Department %d", dep.Department)
	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Month", header)

	hires, err := f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(dep.Months[0].Hires), hires)

	total, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(plan.Summary.TotalHires), total)
}

func TestFormatXLSX_DuplicateDepartment(t *testing.T) {
	plan := samplePlan()
	plan.Departments[1].Department = plan.Departments[0].Department

	out, err := formatter.FormatXLSX(plan)
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestFormats_RenderEveryFormat(t *testing.T) {
	for name, render := range formatter.Formats {
		t.Run(name, func(t *testing.T) {
			out, err := render(samplePlan())
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}
