// Package planner builds the trainee-hiring model, solves it and turns the solution into
// a per-department, per-month plan.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"

	customerrors "workforce-planner/errors"
	"workforce-planner/lp"
	"workforce-planner/metrics"
	"workforce-planner/models"
	"workforce-planner/solver"

	"github.com/google/uuid"
)

// Grid holds one variable per (department, month).
type Grid [][]lp.Var

func newGrid(m *lp.Model, prefix string, departments, months int) Grid {
	g := make(Grid, departments)
	for dep := 0; dep < departments; dep++ {
		g[dep] = make([]lp.Var, months)
		for month := 0; month < months; month++ {
			g[dep][month] = m.AddIntVar(fmt.Sprintf("%s[%d][%d]", prefix, dep, month))
		}
	}
	return g
}

// Problem is a built model together with the grids that index its variables.
type Problem struct {
	Params models.ScenarioParameters
	Model  *lp.Model
	// X holds the hires started per department and month.
	X Grid
	// Y holds the underemployment units used per department and month.
	Y Grid
}

// Build validates p and assembles variables, objective and constraints.
func Build(p models.ScenarioParameters) (*Problem, error) {
	if err := Validate(p); err != nil {
		metrics.ValidationErrorsTotal.Inc()
		return nil, err
	}

	m := lp.NewModel("trainee-hiring")
	pr := &Problem{
		Params: p,
		Model:  m,
		X:      newGrid(m, "x", p.Departments, p.Months),
		Y:      newGrid(m, "y", p.Departments, p.Months),
	}

	// Later hires carry fewer months of salary, which steers the plan toward hiring late.
	objective := lp.NewExpr(0)
	for dep := 0; dep < p.Departments; dep++ {
		for month := 0; month < p.Months; month++ {
			salaryMonths := float64(p.Months - month)
			objective.AddTerm(p.TraineeCost+p.SalaryEmployee*salaryMonths, pr.X[dep][month])
			objective.AddTerm(p.UnderstaffingCost, pr.Y[dep][month])
		}
	}
	if err := m.SetObjective(objective, lp.Minimize); err != nil {
		return nil, err
	}

	for _, add := range []func() error{pr.addStaffing, pr.addTrainingCapacity, pr.addAttritionReplacement} {
		if err := add(); err != nil {
			return nil, err
		}
	}

	metrics.ModelSize.WithLabelValues("variables").Set(float64(m.NumVars()))
	metrics.ModelSize.WithLabelValues("constraints").Set(float64(len(m.Constraints())))
	return pr, nil
}

// addStaffing requires available hours plus covered shortfall to reach the target.
func (pr *Problem) addStaffing() error {
	p := pr.Params
	for dep := 0; dep < p.Departments; dep++ {
		for month := 0; month < p.Months; month++ {
			lhs := AvailableHours(p, pr.X, dep, month).AddTerm(p.UnderstaffingUnitHours, pr.Y[dep][month])
			name := fmt.Sprintf("staffing[%d][%d]", dep, month)
			if err := pr.Model.AddConstraint(name, lhs, lp.GreaterEq, p.TargetHours[dep][month]); err != nil {
				return err
			}
		}
	}
	return nil
}

// addTrainingCapacity limits company-wide hires per month.
func (pr *Problem) addTrainingCapacity() error {
	p := pr.Params
	for month := 0; month < p.Months; month++ {
		hires := lp.NewExpr(0)
		for dep := 0; dep < p.Departments; dep++ {
			hires.AddTerm(1, pr.X[dep][month])
		}
		name := fmt.Sprintf("capacity[%d]", month)
		if err := pr.Model.AddConstraint(name, hires, lp.LessEq, float64(p.TrainingCapacityPerMonth)); err != nil {
			return err
		}
	}
	return nil
}

// addAttritionReplacement requires hires made early enough to ramp up, plus the starting
// trainees, to cover the peak resignations of every department. Hires of the last
// RampUpMonths months do not count.
func (pr *Problem) addAttritionReplacement() error {
	p := pr.Params
	replacements := lp.NewExpr(0)
	for dep := 0; dep < p.Departments; dep++ {
		for month := 0; month < p.Months-RampUpMonths; month++ {
			replacements.AddTerm(1, pr.X[dep][month])
		}
		replacements.AddConstant(float64(p.TraineesBeginning[dep]))
	}
	return pr.Model.AddConstraint("attrition", replacements, lp.GreaterEq, PeakResignations(p))
}

// PeakResignations sums the largest cumulative resignation count of each department.
func PeakResignations(p models.ScenarioParameters) float64 {
	total := 0.0
	for _, row := range p.CumulativeResignations {
		peak := 0.0
		for _, v := range row {
			peak = math.Max(peak, v)
		}
		total += peak
	}
	return total
}

// Solve hands the model to s once. Only an optimal solution is returned; the other
// outcomes come back as ErrInfeasible, ErrUnbounded or ErrSolver.
func (pr *Problem) Solve(ctx context.Context, s solver.Solver) (*lp.Solution, error) {
	sol, err := s.Solve(ctx, pr.Model)
	if err != nil {
		metrics.SolveOutcomesTotal.WithLabelValues(lp.StatusError.String()).Inc()
		if errors.Is(err, customerrors.ErrSolver) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", customerrors.ErrSolver, err)
	}
	if sol == nil {
		metrics.SolveOutcomesTotal.WithLabelValues(lp.StatusError.String()).Inc()
		return nil, fmt.Errorf("%w: solver returned no solution", customerrors.ErrSolver)
	}

	metrics.SolveOutcomesTotal.WithLabelValues(sol.Status.String()).Inc()
	metrics.SolveDurationSeconds.Observe(sol.Elapsed.Seconds())
	metrics.SolveNodes.Observe(float64(sol.Nodes))

	switch sol.Status {
	case lp.StatusOptimal:
		return sol, nil
	case lp.StatusInfeasible:
		return nil, customerrors.ErrInfeasible
	case lp.StatusUnbounded:
		return nil, customerrors.ErrUnbounded
	default:
		return nil, fmt.Errorf("%w: status %s", customerrors.ErrSolver, sol.Status)
	}
}

// Report reads the solved grids into a plan. It fails with ErrNotSolved unless sol is optimal.
func (pr *Problem) Report(sol *lp.Solution) (*models.Plan, error) {
	if sol == nil || sol.Status != lp.StatusOptimal {
		return nil, customerrors.ErrNotSolved
	}
	p := pr.Params
	plan := &models.Plan{
		RunID:       uuid.New(),
		Objective:   sol.Objective,
		Departments: make([]models.DepartmentReport, p.Departments),
		Nodes:       sol.Nodes,
		SolveTime:   sol.Elapsed,
	}

	shortfalls := 0
	for dep := 0; dep < p.Departments; dep++ {
		rows := make([]models.MonthRow, p.Months)
		for month := 0; month < p.Months; month++ {
			hires, err := sol.IntValue(pr.X[dep][month])
			if err != nil {
				return nil, err
			}
			under, err := sol.IntValue(pr.Y[dep][month])
			if err != nil {
				return nil, err
			}
			available, err := AvailableHours(p, pr.X, dep, month).Evaluate(sol)
			if err != nil {
				return nil, err
			}
			rows[month] = models.MonthRow{
				Month:          month,
				Hires:          hires,
				Underemployed:  under,
				AvailableHours: available,
				RequiredHours:  p.TargetHours[dep][month],
			}

			plan.Summary.TotalHires += hires
			plan.Summary.TotalUnderemployed += under
			plan.Summary.TrainingCost += p.TraineeCost * float64(hires)
			plan.Summary.SalaryCost += p.SalaryEmployee * float64(p.Months-month) * float64(hires)
			plan.Summary.UnderstaffingCost += p.UnderstaffingCost * float64(under)
			if under > 0 {
				shortfalls++
			}
		}
		plan.Departments[dep] = models.DepartmentReport{Department: dep, Months: rows}
	}

	metrics.PlanObjective.Set(plan.Objective)
	metrics.PlanHiresTotal.Set(float64(plan.Summary.TotalHires))
	metrics.PlanUnderemployedTotal.Set(float64(plan.Summary.TotalUnderemployed))
	metrics.MonthsWithShortfall.Set(float64(shortfalls))
	metrics.PlanCostByComponent.WithLabelValues("training").Set(plan.Summary.TrainingCost)
	metrics.PlanCostByComponent.WithLabelValues("salary").Set(plan.Summary.SalaryCost)
	metrics.PlanCostByComponent.WithLabelValues("understaffing").Set(plan.Summary.UnderstaffingCost)
	return plan, nil
}

// Run builds, solves and reports in one call.
func Run(ctx context.Context, p models.ScenarioParameters, s solver.Solver) (*models.Plan, error) {
	metrics.ResetPlanGauges()
	pr, err := Build(p)
	if err != nil {
		return nil, err
	}
	sol, err := pr.Solve(ctx, s)
	if err != nil {
		return nil, err
	}
	return pr.Report(sol)
}
