package solver

import (
	"context"
	"errors"
	"math"

	"workforce-planner/lp"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var errIterationLimit = errors.New("simplex iteration limit reached")

const (
	pivotTolerance = 1e-9
	zeroTolerance  = 1e-11
)

// tableau is a dense two-phase simplex tableau for
//
//	minimize c·x  subject to  rows,  x >= 0
//
// Columns are laid out as structural, slack, artificial, then the right-hand side.
// The last row holds the reduced costs and, in its rhs cell, minus the objective value.
type tableau struct {
	d       *mat.Dense
	basis   []int
	m       int
	n       int
	art     int
	rhs     int
	costTol float64
	iters   int
	maxIter int
}

func newTableau(rows []row, n int) *tableau {
	m := len(rows)
	slacks := 0
	for _, r := range rows {
		if r.sense != lp.Equal {
			slacks++
		}
	}
	art := n + slacks
	t := &tableau{
		d:       mat.NewDense(m+1, art+m+1, nil),
		basis:   make([]int, m),
		m:       m,
		n:       n,
		art:     art,
		rhs:     art + m,
		maxIter: 100*(m+art) + 1000,
	}

	slack := n
	for i, r := range rows {
		// Rows are negated as needed so every rhs is non-negative.
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for j, c := range r.coefs {
			if c != 0 {
				t.d.Set(i, j, sign*c)
			}
		}
		switch r.sense {
		case lp.LessEq:
			t.d.Set(i, slack, sign)
			slack++
		case lp.GreaterEq:
			t.d.Set(i, slack, -sign)
			slack++
		}
		t.d.Set(i, art+i, 1)
		t.d.Set(i, t.rhs, sign*r.rhs)
		t.basis[i] = art + i
	}
	return t
}

// solve runs both phases and returns the status, the objective (without any constant)
// and the values of the n structural columns.
func (t *tableau) solve(ctx context.Context, cost []float64) (lp.Status, float64, []float64, error) {
	// Phase 1 minimizes the sum of the artificials, all basic at the start.
	obj := t.d.RawRowView(t.m)
	maxRHS := 0.0
	for i := 0; i < t.m; i++ {
		row := t.d.RawRowView(i)
		floats.Sub(obj, row)
		obj[t.art+i] = 0
		maxRHS = math.Max(maxRHS, row[t.rhs])
	}
	t.costTol = pivotTolerance
	if _, err := t.optimize(ctx); err != nil {
		return lp.StatusError, 0, nil, err
	}
	if -obj[t.rhs] > 1e-7*(1+maxRHS) {
		return lp.StatusInfeasible, 0, nil, nil
	}
	t.evictArtificials()

	// Phase 2 prices the real costs against the feasible basis.
	for j := range obj {
		obj[j] = 0
	}
	maxCost := 0.0
	for j, c := range cost {
		obj[j] = c
		maxCost = math.Max(maxCost, math.Abs(c))
	}
	for i, b := range t.basis {
		if b < t.n && cost[b] != 0 {
			floats.AddScaled(obj, -cost[b], t.d.RawRowView(i))
		}
	}
	t.costTol = pivotTolerance * (1 + maxCost)
	status, err := t.optimize(ctx)
	if err != nil || status != lp.StatusOptimal {
		return status, 0, nil, err
	}

	x := make([]float64, t.n)
	for i, b := range t.basis {
		if b < t.n {
			x[b] = math.Max(0, t.d.At(i, t.rhs))
		}
	}
	return lp.StatusOptimal, -obj[t.rhs], x, nil
}

// optimize pivots until no column prices out. Bland's rule picks the lowest-index
// entering column and breaks ratio ties by the lowest basic index, so degenerate
// pivots cannot cycle. Artificial columns never re-enter.
func (t *tableau) optimize(ctx context.Context) (lp.Status, error) {
	obj := t.d.RawRowView(t.m)
	for {
		if err := ctx.Err(); err != nil {
			return lp.StatusError, err
		}
		if t.iters >= t.maxIter {
			return lp.StatusError, errIterationLimit
		}

		s := -1
		for j := 0; j < t.art; j++ {
			if obj[j] < -t.costTol {
				s = j
				break
			}
		}
		if s < 0 {
			return lp.StatusOptimal, nil
		}

		r := -1
		best := math.Inf(1)
		for i := 0; i < t.m; i++ {
			a := t.d.At(i, s)
			if a <= pivotTolerance {
				continue
			}
			ratio := t.d.At(i, t.rhs) / a
			switch {
			case r < 0 || ratio < best-zeroTolerance:
				r, best = i, ratio
			case ratio <= best+zeroTolerance && t.basis[i] < t.basis[r]:
				r, best = i, math.Min(best, ratio)
			}
		}
		if r < 0 {
			return lp.StatusUnbounded, nil
		}
		t.pivot(r, s)
		t.iters++
	}
}

// evictArtificials pivots artificials still basic at zero out of the basis. A row with
// no usable column is redundant and keeps its artificial.
func (t *tableau) evictArtificials() {
	for i, b := range t.basis {
		if b < t.art {
			continue
		}
		row := t.d.RawRowView(i)
		for j := 0; j < t.art; j++ {
			if math.Abs(row[j]) > pivotTolerance {
				t.pivot(i, j)
				break
			}
		}
	}
}

func (t *tableau) pivot(r, s int) {
	pr := t.d.RawRowView(r)
	floats.Scale(1/pr[s], pr)
	pr[s] = 1
	for i := 0; i <= t.m; i++ {
		if i == r {
			continue
		}
		row := t.d.RawRowView(i)
		if f := row[s]; f != 0 {
			floats.AddScaled(row, -f, pr)
			row[s] = 0
			if math.Abs(row[t.rhs]) < zeroTolerance {
				row[t.rhs] = 0
			}
		}
	}
	t.basis[r] = s
}
