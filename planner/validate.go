package planner

import (
	"fmt"
	"math"

	customerrors "workforce-planner/errors"
	"workforce-planner/models"
)

// Validate checks dimensions and signs of every parameter.
func Validate(p models.ScenarioParameters) error {
	if p.Departments < 1 {
		return customerrors.Invalid("departments", "must be at least 1 (got %d)", p.Departments)
	}
	if p.Months < 1 {
		return customerrors.Invalid("months", "must be at least 1 (got %d)", p.Months)
	}
	if err := validateMatrix("target_hours", p.TargetHours, p.Departments, p.Months); err != nil {
		return err
	}
	if err := validateMatrix("cumulative_resignations", p.CumulativeResignations, p.Departments, p.Months); err != nil {
		return err
	}
	for dep, row := range p.CumulativeResignations {
		for month := 1; month < len(row); month++ {
			if row[month] < row[month-1] {
				return customerrors.Invalid(fmt.Sprintf("cumulative_resignations[%d][%d]", dep, month),
					"decreases from %v to %v", row[month-1], row[month])
			}
		}
	}
	if err := validateCounts("employees_beginning", p.EmployeesBeginning, p.Departments); err != nil {
		return err
	}
	if err := validateCounts("trainees_beginning", p.TraineesBeginning, p.Departments); err != nil {
		return err
	}
	if p.TrainingCapacityPerMonth < 0 {
		return customerrors.Invalid("training_capacity_per_month", "must not be negative (got %d)", p.TrainingCapacityPerMonth)
	}

	constants := []struct {
		name  string
		value float64
	}{
		{"trainee_cost", p.TraineeCost},
		{"understaffing_cost", p.UnderstaffingCost},
		{"salary_employee", p.SalaryEmployee},
		{"trainee_contribution_hours", p.TraineeContributionHours},
		{"employee_contribution_hours", p.EmployeeContributionHours},
	}
	for _, c := range constants {
		if !isNonNegative(c.value) {
			return customerrors.Invalid(c.name, "must be a non-negative number (got %v)", c.value)
		}
	}
	if !isNonNegative(p.UnderstaffingUnitHours) || p.UnderstaffingUnitHours == 0 {
		return customerrors.Invalid("understaffing_unit_hours", "must be positive (got %v)", p.UnderstaffingUnitHours)
	}
	return nil
}

func validateMatrix(field string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return customerrors.Invalid(field, "has %d rows, want %d departments", len(m), rows)
	}
	for i, row := range m {
		if len(row) != cols {
			return customerrors.Invalid(fmt.Sprintf("%s[%d]", field, i), "has %d values, want %d months", len(row), cols)
		}
		for j, v := range row {
			if !isNonNegative(v) {
				return customerrors.Invalid(fmt.Sprintf("%s[%d][%d]", field, i, j), "must be a non-negative number (got %v)", v)
			}
		}
	}
	return nil
}

func validateCounts(field string, counts []int, n int) error {
	if len(counts) != n {
		return customerrors.Invalid(field, "has %d values, want %d departments", len(counts), n)
	}
	for i, c := range counts {
		if c < 0 {
			return customerrors.Invalid(fmt.Sprintf("%s[%d]", field, i), "must not be negative (got %d)", c)
		}
	}
	return nil
}

func isNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
