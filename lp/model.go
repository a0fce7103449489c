package lp

import (
	"fmt"
	"math"
	"time"

	customerrors "workforce-planner/errors"
)

// VarType is the domain of a variable.
type VarType int

const (
	Continuous VarType = iota
	Integer
)

func (t VarType) String() string {
	if t == Integer {
		return "integer"
	}
	return "continuous"
}

// VarInfo describes a declared variable. Every variable is bounded below by Lower >= 0
// and unbounded above.
type VarInfo struct {
	Name  string
	Type  VarType
	Lower float64
}

// Sense is the relation of a constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	default:
		return "=="
	}
}

// Constraint is expr (sense) rhs. The constant of Expr is already folded into RHS.
type Constraint struct {
	Name  string
	Expr  *Expr
	Sense Sense
	RHS   float64
}

// ObjectiveSense selects minimization or maximization.
type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

// Model is a linear program with optional integrality requirements.
type Model struct {
	Name        string
	vars        []VarInfo
	constraints []Constraint
	objective   *Expr
	sense       ObjectiveSense
}

// NewModel returns an empty minimization model.
func NewModel(name string) *Model {
	return &Model{Name: name, objective: &Expr{}}
}

// AddVar declares a variable with the given lower bound.
func (m *Model) AddVar(name string, typ VarType, lower float64) (Var, error) {
	if lower < 0 || math.IsNaN(lower) || math.IsInf(lower, 0) {
		return Var{}, fmt.Errorf("variable %q: lower bound %v must be finite and non-negative", name, lower)
	}
	m.vars = append(m.vars, VarInfo{Name: name, Type: typ, Lower: lower})
	return Var{id: len(m.vars) - 1}, nil
}

// AddIntVar declares a non-negative integer variable.
func (m *Model) AddIntVar(name string) Var {
	v, _ := m.AddVar(name, Integer, 0)
	return v
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// Vars returns the declared variables in column order.
func (m *Model) Vars() []VarInfo {
	return append([]VarInfo(nil), m.vars...)
}

// VarInfo returns the declaration of v.
func (m *Model) VarInfo(v Var) VarInfo {
	return m.vars[v.id]
}

// AddConstraint adds expr (sense) rhs. Every variable of expr must belong to m.
func (m *Model) AddConstraint(name string, expr *Expr, sense Sense, rhs float64) error {
	if err := m.checkVars(expr); err != nil {
		return fmt.Errorf("constraint %q: %w", name, err)
	}
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return fmt.Errorf("constraint %q: right-hand side %v is not finite", name, rhs)
	}
	lhs := (&Expr{}).Add(expr)
	folded := rhs - lhs.constant
	lhs.constant = 0
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: lhs, Sense: sense, RHS: folded})
	return nil
}

// Constraints returns the constraints in insertion order.
func (m *Model) Constraints() []Constraint {
	return append([]Constraint(nil), m.constraints...)
}

// SetObjective replaces the objective.
func (m *Model) SetObjective(expr *Expr, sense ObjectiveSense) error {
	if err := m.checkVars(expr); err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	m.objective = (&Expr{}).Add(expr)
	m.sense = sense
	return nil
}

// Objective returns the objective expression and its sense.
func (m *Model) Objective() (*Expr, ObjectiveSense) {
	return m.objective, m.sense
}

func (m *Model) checkVars(expr *Expr) error {
	for _, t := range expr.Terms() {
		if t.Var.id < 0 || t.Var.id >= len(m.vars) {
			return fmt.Errorf("unknown variable %d", t.Var.id)
		}
	}
	return nil
}

// Status is the outcome of a solve.
type Status int

const (
	StatusError Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "error"
	}
}

// Solution is what a solver returns for a model.
type Solution struct {
	Status    Status
	Objective float64
	Nodes     int
	Elapsed   time.Duration
	values    []float64
}

// NewSolution builds a solution; values are indexed by variable ID.
func NewSolution(status Status, objective float64, values []float64) *Solution {
	return &Solution{Status: status, Objective: objective, values: values}
}

// Value returns the value assigned to v. It fails unless the solution is optimal.
func (s *Solution) Value(v Var) (float64, error) {
	if s == nil || s.Status != StatusOptimal {
		return 0, customerrors.ErrNotSolved
	}
	if v.id < 0 || v.id >= len(s.values) {
		return 0, fmt.Errorf("%w: variable %d out of range", customerrors.ErrNotSolved, v.id)
	}
	return s.values[v.id], nil
}

// IntValue returns the value of v rounded to the nearest integer.
func (s *Solution) IntValue(v Var) (int, error) {
	x, err := s.Value(v)
	if err != nil {
		return 0, err
	}
	return int(math.Round(x)), nil
}
