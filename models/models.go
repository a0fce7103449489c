package models

import (
	"time"

	"github.com/google/uuid"
)

// ScenarioParameters is the immutable input bundle of one planning run.
// Matrices are indexed [department][month].
type ScenarioParameters struct {
	Departments              int         `mapstructure:"departments" yaml:"departments" json:"departments"`
	Months                   int         `mapstructure:"months" yaml:"months" json:"months"`
	TargetHours              [][]float64 `mapstructure:"target_hours" yaml:"target_hours" json:"target_hours"`
	CumulativeResignations   [][]float64 `mapstructure:"cumulative_resignations" yaml:"cumulative_resignations" json:"cumulative_resignations"`
	EmployeesBeginning       []int       `mapstructure:"employees_beginning" yaml:"employees_beginning" json:"employees_beginning"`
	TraineesBeginning        []int       `mapstructure:"trainees_beginning" yaml:"trainees_beginning" json:"trainees_beginning"`
	TrainingCapacityPerMonth int         `mapstructure:"training_capacity_per_month" yaml:"training_capacity_per_month" json:"training_capacity_per_month"`

	TraineeCost       float64 `mapstructure:"trainee_cost" yaml:"trainee_cost" json:"trainee_cost"`
	UnderstaffingCost float64 `mapstructure:"understaffing_cost" yaml:"understaffing_cost" json:"understaffing_cost"`
	SalaryEmployee    float64 `mapstructure:"salary_employee" yaml:"salary_employee" json:"salary_employee"`

	TraineeContributionHours  float64 `mapstructure:"trainee_contribution_hours" yaml:"trainee_contribution_hours" json:"trainee_contribution_hours"`
	EmployeeContributionHours float64 `mapstructure:"employee_contribution_hours" yaml:"employee_contribution_hours" json:"employee_contribution_hours"`
	// UnderstaffingUnitHours is how many missing hours one underemployment unit covers.
	UnderstaffingUnitHours float64 `mapstructure:"understaffing_unit_hours" yaml:"understaffing_unit_hours" json:"understaffing_unit_hours"`
}

// DefaultUnderstaffingUnitHours is the coverage of one underemployment unit in the reference scenario.
const DefaultUnderstaffingUnitHours = 100

// ReferenceScenario returns the three-department, six-month scenario the planner ships with.
func ReferenceScenario() ScenarioParameters {
	targets := []float64{1900, 1700, 1600, 1900, 1500, 1800}
	return ScenarioParameters{
		Departments: 3,
		Months:      6,
		TargetHours: [][]float64{
			append([]float64(nil), targets...),
			append([]float64(nil), targets...),
			append([]float64(nil), targets...),
		},
		CumulativeResignations: [][]float64{
			{0, 0, 0, 3, 3, 3},
			{0, 0, 0, 0, 5, 5},
			{0, 0, 0, 0, 0, 6},
		},
		EmployeesBeginning:        []int{25, 20, 18},
		TraineesBeginning:         []int{2, 2, 2},
		TrainingCapacityPerMonth:  6,
		TraineeCost:               50000,
		UnderstaffingCost:         60000,
		SalaryEmployee:            10000,
		TraineeContributionHours:  35,
		EmployeeContributionHours: 100,
		UnderstaffingUnitHours:    DefaultUnderstaffingUnitHours,
	}
}

// Plan is the solved hiring plan of one run.
type Plan struct {
	RunID       uuid.UUID          `json:"run_id" yaml:"run_id"`
	Objective   float64            `json:"objective" yaml:"objective"`
	Departments []DepartmentReport `json:"departments" yaml:"departments"`
	Summary     PlanSummary        `json:"summary" yaml:"summary"`
	// Nodes is the number of branch-and-bound nodes the solver explored.
	Nodes     int           `json:"nodes" yaml:"nodes"`
	SolveTime time.Duration `json:"solve_time" yaml:"solve_time"`
}

// DepartmentReport holds the monthly rows of one department in ascending month order.
type DepartmentReport struct {
	Department int        `json:"department" yaml:"department"`
	Months     []MonthRow `json:"months" yaml:"months"`
}

// MonthRow is one line of the report.
type MonthRow struct {
	Month          int     `json:"month" yaml:"month"`
	Hires          int     `json:"hires" yaml:"hires"`
	Underemployed  int     `json:"underemployed" yaml:"underemployed"`
	AvailableHours float64 `json:"available_hours" yaml:"available_hours"`
	RequiredHours  float64 `json:"required_hours" yaml:"required_hours"`
}

// PlanSummary breaks the objective down into its cost components.
type PlanSummary struct {
	TotalHires         int     `json:"total_hires" yaml:"total_hires"`
	TotalUnderemployed int     `json:"total_underemployed" yaml:"total_underemployed"`
	TrainingCost       float64 `json:"training_cost" yaml:"training_cost"`
	SalaryCost         float64 `json:"salary_cost" yaml:"salary_cost"`
	UnderstaffingCost  float64 `json:"understaffing_cost" yaml:"understaffing_cost"`
}
