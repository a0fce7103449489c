// Package solver turns an lp.Model into an lp.Solution.
//
// Solvers report infeasible and unbounded models through the returned Solution's Status
// and reserve the error return for failures of the solver itself (time limit, node limit,
// numerical trouble).
package solver

import (
	"context"

	"workforce-planner/lp"
)

// Solver solves a model in one blocking call.
type Solver interface {
	Solve(ctx context.Context, m *lp.Model) (*lp.Solution, error)
}

// Func adapts a function to the Solver interface.
type Func func(ctx context.Context, m *lp.Model) (*lp.Solution, error)

// Solve calls f(ctx, m).
func (f Func) Solve(ctx context.Context, m *lp.Model) (*lp.Solution, error) {
	return f(ctx, m)
}
