package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	customerrors "workforce-planner/errors"
	"workforce-planner/lp"

	"go.uber.org/zap"
)

// Options tunes the branch-and-bound search.
type Options struct {
	// MaxNodes caps the number of relaxations solved (0 = unlimited).
	MaxNodes int
	// TimeLimit bounds the whole solve (0 = none).
	TimeLimit time.Duration
	// IntegralityTolerance is how far from an integer a value may be and still count as integral.
	IntegralityTolerance float64
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxNodes:             200000,
		IntegralityTolerance: 1e-6,
	}
}

// BranchAndBound solves mixed-integer models by depth-first branch and bound over
// LP relaxations solved with a dense two-phase simplex.
type BranchAndBound struct {
	opts   Options
	logger *zap.Logger
}

// NewBranchAndBound returns a solver; zero-valued option fields fall back to the defaults.
func NewBranchAndBound(logger *zap.Logger, opts Options) *BranchAndBound {
	def := DefaultOptions()
	if opts.IntegralityTolerance <= 0 {
		opts.IntegralityTolerance = def.IntegralityTolerance
	}
	if opts.MaxNodes < 0 {
		opts.MaxNodes = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BranchAndBound{opts: opts, logger: logger}
}

// bound restricts one column during branching.
type bound struct {
	col   int
	sense lp.Sense
	value float64
}

type node struct {
	bounds []bound
	depth  int
}

type relaxation struct {
	status    lp.Status
	objective float64
	x         []float64
}

// Solve runs branch and bound until the search tree is exhausted.
func (s *BranchAndBound) Solve(ctx context.Context, m *lp.Model) (*lp.Solution, error) {
	if s.opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TimeLimit)
		defer cancel()
	}
	start := time.Now()
	vars := m.Vars()
	objective, sense := m.Objective()

	best := math.Inf(1)
	var incumbent []float64
	nodes := 0

	stack := []node{{}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: search stopped after %d nodes: %w", customerrors.ErrSolver, nodes, err)
		}
		if s.opts.MaxNodes > 0 && nodes >= s.opts.MaxNodes {
			return nil, fmt.Errorf("%w: node limit %d reached", customerrors.ErrSolver, s.opts.MaxNodes)
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		r, err := s.relax(ctx, m, n.bounds)
		if err != nil {
			return nil, err
		}
		switch r.status {
		case lp.StatusInfeasible:
			continue
		case lp.StatusUnbounded:
			// Branching only tightens the relaxation, so this can only happen at the root.
			s.logger.Info("relaxation unbounded", zap.String("model", m.Name))
			sol := lp.NewSolution(lp.StatusUnbounded, 0, nil)
			sol.Nodes, sol.Elapsed = nodes, time.Since(start)
			return sol, nil
		}
		if incumbent != nil && r.objective >= best-1e-9*(1+math.Abs(best)) {
			continue
		}

		col, value := s.mostFractional(vars, r.x)
		if col < 0 {
			best = r.objective
			incumbent = r.x
			s.logger.Debug("new incumbent",
				zap.Float64("objective", best),
				zap.Int("node", nodes),
				zap.Int("depth", n.depth))
			continue
		}

		up := append(append([]bound(nil), n.bounds...), bound{col: col, sense: lp.GreaterEq, value: math.Ceil(value)})
		down := append(append([]bound(nil), n.bounds...), bound{col: col, sense: lp.LessEq, value: math.Floor(value)})
		stack = append(stack, node{bounds: up, depth: n.depth + 1}, node{bounds: down, depth: n.depth + 1})
	}

	elapsed := time.Since(start)
	if incumbent == nil {
		s.logger.Info("model infeasible", zap.String("model", m.Name), zap.Int("nodes", nodes))
		sol := lp.NewSolution(lp.StatusInfeasible, 0, nil)
		sol.Nodes, sol.Elapsed = nodes, elapsed
		return sol, nil
	}

	values := make([]float64, len(vars))
	for j, v := range vars {
		values[j] = incumbent[j]
		if v.Type == lp.Integer {
			values[j] = math.Round(values[j])
		}
	}
	obj := objective.Constant()
	for _, t := range objective.Terms() {
		obj += t.Coef * values[t.Var.ID()]
	}
	s.logger.Info("model solved",
		zap.String("model", m.Name),
		zap.Float64("objective", obj),
		zap.Int("nodes", nodes),
		zap.Duration("elapsed", elapsed),
		zap.Bool("maximize", sense == lp.Maximize))

	sol := lp.NewSolution(lp.StatusOptimal, obj, values)
	sol.Nodes, sol.Elapsed = nodes, elapsed
	return sol, nil
}

// mostFractional returns the integer column farthest from an integer value, or -1.
func (s *BranchAndBound) mostFractional(vars []lp.VarInfo, x []float64) (int, float64) {
	col, dist := -1, s.opts.IntegralityTolerance
	for j, v := range vars {
		if v.Type != lp.Integer {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		if d := math.Min(frac, 1-frac); d > dist {
			col, dist = j, d
		}
	}
	if col < 0 {
		return -1, 0
	}
	return col, x[col]
}

type row struct {
	coefs map[int]float64
	sense lp.Sense
	rhs   float64
}

// relax solves the LP relaxation of m with extra column bounds. The objective is always
// returned in minimization form. ctx is checked on every pivot.
func (s *BranchAndBound) relax(ctx context.Context, m *lp.Model, bounds []bound) (relaxation, error) {
	vars := m.Vars()

	rows := make([]row, 0, len(m.Constraints())+len(bounds))
	for _, c := range m.Constraints() {
		coefs := make(map[int]float64)
		for _, t := range c.Expr.Terms() {
			coefs[t.Var.ID()] = t.Coef
		}
		rows = append(rows, row{coefs: coefs, sense: c.Sense, rhs: c.RHS})
	}
	for j, v := range vars {
		if v.Lower > 0 {
			rows = append(rows, row{coefs: map[int]float64{j: 1}, sense: lp.GreaterEq, rhs: v.Lower})
		}
	}
	for _, b := range bounds {
		rows = append(rows, row{coefs: map[int]float64{b.col: 1}, sense: b.sense, rhs: b.value})
	}

	objective, sense := m.Objective()
	cost := make([]float64, len(vars))
	for _, t := range objective.Terms() {
		cost[t.Var.ID()] = t.Coef
	}
	constant := objective.Constant()
	if sense == lp.Maximize {
		for j := range cost {
			cost[j] = -cost[j]
		}
		constant = -constant
	}

	t := newTableau(rows, len(vars))
	status, value, x, err := t.solve(ctx, cost)
	switch {
	case err == nil:
		return relaxation{status: status, objective: value + constant, x: x}, nil
	case errors.Is(err, errIterationLimit):
		return relaxation{}, fmt.Errorf("%w: %w after %d pivots", customerrors.ErrSolver, err, t.iters)
	default:
		return relaxation{}, fmt.Errorf("%w: relaxation stopped after %d pivots: %w", customerrors.ErrSolver, t.iters, err)
	}
}
