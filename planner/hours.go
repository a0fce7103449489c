package planner

import (
	"workforce-planner/lp"
	"workforce-planner/models"
)

// RampUpMonths is how long a hire works at trainee productivity, counting the hiring month.
const RampUpMonths = 2

// HoursFromStartingWorkforce returns the hours the initial staff provides in month.
// Trainees present at the start graduate after month 0. Resignations are charged at the
// full-employee rate whoever actually left.
func HoursFromStartingWorkforce(p models.ScenarioParameters, dep, month int) float64 {
	fullTime := p.EmployeeContributionHours * float64(p.EmployeesBeginning[dep])

	traineeRate := p.EmployeeContributionHours
	if month == 0 {
		traineeRate = p.TraineeContributionHours
	}
	trainees := traineeRate * float64(p.TraineesBeginning[dep])

	resigned := p.EmployeeContributionHours * p.CumulativeResignations[dep][month]
	return fullTime + trainees - resigned
}

// HireContribution returns the hours one person hired in hiringMonth works in month.
func HireContribution(p models.ScenarioParameters, hiringMonth, month int) float64 {
	if month >= hiringMonth+RampUpMonths {
		return p.EmployeeContributionHours
	}
	return p.TraineeContributionHours
}

// HoursFromHires returns the hours contributed in month by everyone hired in months 0..month.
func HoursFromHires(p models.ScenarioParameters, x Grid, dep, month int) *lp.Expr {
	e := lp.NewExpr(0)
	for h := 0; h <= month; h++ {
		e.AddTerm(HireContribution(p, h, month), x[dep][h])
	}
	return e
}

// AvailableHours is the total of both sources of hours for one department and month.
// Evaluated against a solution it gives the report's available hours.
func AvailableHours(p models.ScenarioParameters, x Grid, dep, month int) *lp.Expr {
	return HoursFromHires(p, x, dep, month).AddConstant(HoursFromStartingWorkforce(p, dep, month))
}
