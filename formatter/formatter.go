package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"workforce-planner/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Renderer turns a plan into its output representation.
type Renderer func(*models.Plan) (string, error)

// Formats lists the accepted output formats.
var Formats = map[string]Renderer{
	"text": infallible(FormatText),
	"json": infallible(FormatJSON),
	"csv":  infallible(FormatCSV),
	"yaml": infallible(FormatYAML),
	"xlsx": FormatXLSX,
}

func infallible(f func(*models.Plan) string) Renderer {
	return func(plan *models.Plan) (string, error) {
		return f(plan), nil
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

var columns = []string{"Month", "Hires", "Underemployed", "Available Hours", "Required Hours"}

// FormatText returns one table per department followed by a cost summary
func FormatText(plan *models.Plan) string {
	var sb strings.Builder

	for _, dep := range plan.Departments {
		sb.WriteString(titleStyle.Render(fmt.Sprintf("DEPARTMENT %d", dep.Department)))
		sb.WriteString("\n")

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(columns...).
			Rows(monthCells(dep.Months)...)
		sb.WriteString(t.Render())
		sb.WriteString("\n\n")
	}

	s := plan.Summary
	sb.WriteString(footerStyle.Render(fmt.Sprintf(
		"objective=%s hires=%d underemployed=%d training=%s salary=%s understaffing=%s",
		formatNumber(plan.Objective), s.TotalHires, s.TotalUnderemployed,
		formatNumber(s.TrainingCost), formatNumber(s.SalaryCost), formatNumber(s.UnderstaffingCost))))
	sb.WriteString("\n")

	return sb.String()
}

// FormatJSON returns the JSON representation of the plan
func FormatJSON(plan *models.Plan) string {
	jsonBytes, _ := json.MarshalIndent(plan, "", "  ")
	return string(jsonBytes) + "\n"
}

// FormatYAML returns the YAML representation of the plan
func FormatYAML(plan *models.Plan) string {
	yamlBytes, _ := yaml.Marshal(plan)
	return string(yamlBytes)
}

// FormatCSV returns one CSV row per department and month
func FormatCSV(plan *models.Plan) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write(append([]string{"Department"}, columns...))
	for _, dep := range plan.Departments {
		for _, row := range monthCells(dep.Months) {
			writer.Write(append([]string{strconv.Itoa(dep.Department)}, row...))
		}
	}

	writer.Flush()
	return sb.String()
}

// monthCells renders the five report fields of every month
func monthCells(months []models.MonthRow) [][]string {
	cells := make([][]string, 0, len(months))
	for _, m := range months {
		cells = append(cells, []string{
			strconv.Itoa(m.Month),
			strconv.Itoa(m.Hires),
			strconv.Itoa(m.Underemployed),
			formatNumber(m.AvailableHours),
			formatNumber(m.RequiredHours),
		})
	}
	return cells
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
