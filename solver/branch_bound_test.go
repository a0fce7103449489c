package solver_test

import (
	"context"
	"errors"
	"testing"
	"time"

	customerrors "workforce-planner/errors"
	"workforce-planner/lp"
	"workforce-planner/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBranchAndBound_Solve(t *testing.T) {
	tests := map[string]struct {
		build      func(m *lp.Model) []lp.Var
		wantStatus lp.Status
		wantObj    float64
		wantValues []float64 // nil when the optimum is not unique
	}{
		"Knapsack_Maximize": {
			// LP optimum (3, 1.5) = 21; integer optimum (4, 0) = 20.
			build: func(m *lp.Model) []lp.Var {
				x, y := m.AddIntVar("x"), m.AddIntVar("y")
				require.NoError(t, m.AddConstraint("weight", lp.NewExpr(0).AddTerm(6, x).AddTerm(4, y), lp.LessEq, 24))
				require.NoError(t, m.AddConstraint("volume", lp.NewExpr(0).AddTerm(1, x).AddTerm(2, y), lp.LessEq, 6))
				require.NoError(t, m.SetObjective(lp.NewExpr(0).AddTerm(5, x).AddTerm(4, y), lp.Maximize))
				return []lp.Var{x, y}
			},
			wantStatus: lp.StatusOptimal,
			wantObj:    20,
			wantValues: []float64{4, 0},
		},
		"Cover_RoundsUp": {
			build: func(m *lp.Model) []lp.Var {
				x, y := m.AddIntVar("x"), m.AddIntVar("y")
				require.NoError(t, m.AddConstraint("cover", lp.Sum(x, y), lp.GreaterEq, 1.5))
				require.NoError(t, m.SetObjective(lp.Sum(x, y), lp.Minimize))
				return []lp.Var{x, y}
			},
			wantStatus: lp.StatusOptimal,
			wantObj:    2,
		},
		"ObjectiveConstant": {
			build: func(m *lp.Model) []lp.Var {
				x := m.AddIntVar("x")
				require.NoError(t, m.AddConstraint("min", lp.Sum(x), lp.GreaterEq, 2.2))
				require.NoError(t, m.SetObjective(lp.NewExpr(10).AddTerm(3, x), lp.Minimize))
				return []lp.Var{x}
			},
			wantStatus: lp.StatusOptimal,
			wantObj:    19,
			wantValues: []float64{3},
		},
		"UnconstrainedColumn": {
			build: func(m *lp.Model) []lp.Var {
				x, y := m.AddIntVar("x"), m.AddIntVar("y")
				require.NoError(t, m.AddConstraint("min", lp.Sum(x), lp.GreaterEq, 1))
				require.NoError(t, m.SetObjective(lp.NewExpr(0).AddTerm(1, x).AddTerm(4, y), lp.Minimize))
				return []lp.Var{x, y}
			},
			wantStatus: lp.StatusOptimal,
			wantObj:    1,
			wantValues: []float64{1, 0},
		},
		"Degenerate_Beale": {
			// Cycles under the largest-coefficient pivot rule; optimum at (1, 0, 1, 0).
			build: func(m *lp.Model) []lp.Var {
				vars := make([]lp.Var, 4)
				for i, name := range []string{"x4", "x5", "x6", "x7"} {
					v, err := m.AddVar(name, lp.Continuous, 0)
					require.NoError(t, err)
					vars[i] = v
				}
				x4, x5, x6, x7 := vars[0], vars[1], vars[2], vars[3]
				require.NoError(t, m.AddConstraint("r1", lp.NewExpr(0).AddTerm(0.25, x4).AddTerm(-8, x5).AddTerm(-1, x6).AddTerm(9, x7), lp.LessEq, 0))
				require.NoError(t, m.AddConstraint("r2", lp.NewExpr(0).AddTerm(0.5, x4).AddTerm(-12, x5).AddTerm(-0.5, x6).AddTerm(3, x7), lp.LessEq, 0))
				require.NoError(t, m.AddConstraint("r3", lp.Sum(x6), lp.LessEq, 1))
				require.NoError(t, m.SetObjective(lp.NewExpr(0).AddTerm(-0.75, x4).AddTerm(20, x5).AddTerm(-0.5, x6).AddTerm(6, x7), lp.Minimize))
				return vars
			},
			wantStatus: lp.StatusOptimal,
			wantObj:    -1.25,
			wantValues: []float64{1, 0, 1, 0},
		},
		"Degenerate_ZeroRHSRows": {
			// x = y through two zero-rhs rows; LP optimum (1.5, 1.5), integer optimum (1, 1).
			build: func(m *lp.Model) []lp.Var {
				x, y := m.AddIntVar("x"), m.AddIntVar("y")
				require.NoError(t, m.AddConstraint("xy", lp.NewExpr(0).AddTerm(1, x).AddTerm(-1, y), lp.LessEq, 0))
				require.NoError(t, m.AddConstraint("yx", lp.NewExpr(0).AddTerm(1, y).AddTerm(-1, x), lp.LessEq, 0))
				require.NoError(t, m.AddConstraint("sum", lp.Sum(x, y), lp.LessEq, 3))
				require.NoError(t, m.SetObjective(lp.Sum(x, y), lp.Maximize))
				return []lp.Var{x, y}
			},
			wantStatus: lp.StatusOptimal,
			wantObj:    2,
			wantValues: []float64{1, 1},
		},
		"Infeasible_NegativeRHS": {
			build: func(m *lp.Model) []lp.Var {
				x, y := m.AddIntVar("x"), m.AddIntVar("y")
				require.NoError(t, m.AddConstraint("neg", lp.Sum(x, y), lp.LessEq, -1))
				require.NoError(t, m.SetObjective(lp.Sum(x, y), lp.Minimize))
				return []lp.Var{x, y}
			},
			wantStatus: lp.StatusInfeasible,
		},
		"Infeasible_OnlyFractionalPoint": {
			// 2x = 1 has the relaxation x = 0.5 but no integer solution.
			build: func(m *lp.Model) []lp.Var {
				x := m.AddIntVar("x")
				require.NoError(t, m.AddConstraint("lo", lp.NewExpr(0).AddTerm(2, x), lp.GreaterEq, 1))
				require.NoError(t, m.AddConstraint("hi", lp.NewExpr(0).AddTerm(2, x), lp.LessEq, 1))
				require.NoError(t, m.SetObjective(lp.Sum(x), lp.Minimize))
				return []lp.Var{x}
			},
			wantStatus: lp.StatusInfeasible,
		},
		"Unbounded": {
			build: func(m *lp.Model) []lp.Var {
				x := m.AddIntVar("x")
				require.NoError(t, m.AddConstraint("min", lp.Sum(x), lp.GreaterEq, 1))
				require.NoError(t, m.SetObjective(lp.NewExpr(0).AddTerm(-1, x), lp.Minimize))
				return []lp.Var{x}
			},
			wantStatus: lp.StatusUnbounded,
		},
		"LowerBound": {
			build: func(m *lp.Model) []lp.Var {
				x, err := m.AddVar("x", lp.Integer, 2)
				require.NoError(t, err)
				require.NoError(t, m.SetObjective(lp.Sum(x), lp.Minimize))
				return []lp.Var{x}
			},
			wantStatus: lp.StatusOptimal,
			wantObj:    2,
			wantValues: []float64{2},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m := lp.NewModel(name)
			vars := tc.build(m)

			s := solver.NewBranchAndBound(zaptest.NewLogger(t), solver.DefaultOptions())
			sol, err := s.Solve(context.Background(), m)
			require.NoError(t, err)
			require.NotNil(t, sol)
			assert.Equal(t, tc.wantStatus, sol.Status)
			assert.Positive(t, sol.Nodes)
			if tc.wantStatus != lp.StatusOptimal {
				_, err := sol.Value(vars[0])
				assert.True(t, errors.Is(err, customerrors.ErrNotSolved))
				return
			}
			assert.InDelta(t, tc.wantObj, sol.Objective, 1e-6)
			for i, want := range tc.wantValues {
				got, err := sol.Value(vars[i])
				require.NoError(t, err)
				assert.InDelta(t, want, got, 1e-9, "value of %s", m.VarInfo(vars[i]).Name)
			}
		})
	}
}

func TestBranchAndBound_Limits(t *testing.T) {
	build := func() *lp.Model {
		m := lp.NewModel("knapsack")
		x, y := m.AddIntVar("x"), m.AddIntVar("y")
		_ = m.AddConstraint("weight", lp.NewExpr(0).AddTerm(6, x).AddTerm(4, y), lp.LessEq, 24)
		_ = m.AddConstraint("volume", lp.NewExpr(0).AddTerm(1, x).AddTerm(2, y), lp.LessEq, 6)
		_ = m.SetObjective(lp.NewExpr(0).AddTerm(5, x).AddTerm(4, y), lp.Maximize)
		return m
	}

	t.Run("NodeLimit", func(t *testing.T) {
		s := solver.NewBranchAndBound(nil, solver.Options{MaxNodes: 1})
		sol, err := s.Solve(context.Background(), build())
		assert.Nil(t, sol)
		assert.True(t, errors.Is(err, customerrors.ErrSolver), "got %v", err)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := solver.NewBranchAndBound(nil, solver.DefaultOptions())
		sol, err := s.Solve(ctx, build())
		assert.Nil(t, sol)
		assert.True(t, errors.Is(err, customerrors.ErrSolver))
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("TimeLimit", func(t *testing.T) {
		s := solver.NewBranchAndBound(nil, solver.Options{TimeLimit: time.Nanosecond})
		start := time.Now()
		sol, err := s.Solve(context.Background(), build())
		assert.Nil(t, sol)
		assert.True(t, errors.Is(err, customerrors.ErrSolver), "got %v", err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestFunc(t *testing.T) {
	called := false
	var s solver.Solver = solver.Func(func(ctx context.Context, m *lp.Model) (*lp.Solution, error) {
		called = true
		return lp.NewSolution(lp.StatusInfeasible, 0, nil), nil
	})
	sol, err := s.Solve(context.Background(), lp.NewModel("m"))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, lp.StatusInfeasible, sol.Status)
}
