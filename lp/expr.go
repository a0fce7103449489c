// Package lp holds the solver-independent description of a linear (integer) program:
// variable handles, linear expressions, constraints and solutions.
package lp

import (
	"sort"
)

// Var is a handle to a variable declared on a Model.
type Var struct {
	id int
}

// ID returns the column index of the variable in its model.
func (v Var) ID() int { return v.id }

// Term is one coefficient-variable pair of an expression.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression: a sum of weighted variables plus a constant.
// The zero value is the empty expression.
type Expr struct {
	coefs    map[int]float64
	constant float64
}

// NewExpr returns an expression holding only the given constant.
func NewExpr(constant float64) *Expr {
	return &Expr{constant: constant}
}

// AddTerm adds coef*v to the expression.
func (e *Expr) AddTerm(coef float64, v Var) *Expr {
	if e.coefs == nil {
		e.coefs = make(map[int]float64)
	}
	e.coefs[v.id] += coef
	return e
}

// AddConstant adds c to the constant part.
func (e *Expr) AddConstant(c float64) *Expr {
	e.constant += c
	return e
}

// Add adds every term and the constant of o.
func (e *Expr) Add(o *Expr) *Expr {
	if o == nil {
		return e
	}
	for id, c := range o.coefs {
		e.AddTerm(c, Var{id: id})
	}
	e.constant += o.constant
	return e
}

// Constant returns the constant part.
func (e *Expr) Constant() float64 {
	if e == nil {
		return 0
	}
	return e.constant
}

// Coefficient returns the accumulated coefficient of v (0 when absent).
func (e *Expr) Coefficient(v Var) float64 {
	if e == nil {
		return 0
	}
	return e.coefs[v.id]
}

// Terms returns the non-zero terms ordered by variable ID.
func (e *Expr) Terms() []Term {
	if e == nil {
		return nil
	}
	ids := make([]int, 0, len(e.coefs))
	for id, c := range e.coefs {
		if c != 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	terms := make([]Term, len(ids))
	for i, id := range ids {
		terms[i] = Term{Var: Var{id: id}, Coef: e.coefs[id]}
	}
	return terms
}

// Evaluate computes the expression at the values of an optimal solution.
func (e *Expr) Evaluate(s *Solution) (float64, error) {
	total := e.Constant()
	for _, t := range e.Terms() {
		v, err := s.Value(t.Var)
		if err != nil {
			return 0, err
		}
		total += t.Coef * v
	}
	return total, nil
}

// Sum returns the sum of vars, each with coefficient 1.
func Sum(vars ...Var) *Expr {
	e := &Expr{}
	for _, v := range vars {
		e.AddTerm(1, v)
	}
	return e
}
