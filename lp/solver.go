package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	simplex "gonum.org/v1/gonum/optimize/convex/lp"
)

// feasTol is the tolerance used when checking trivial constraints
// (constraints whose expression has no variable).
const feasTol = 1e-9

// A Solution holds the outcome of a solve.
type Solution struct {
	// Status indicates the outcome: Optimal, Feasible, Infeasible, Unbounded or Indet.
	Status Status
	// Values contains one value per model variable, in model order.
	// It is nil unless HasSolution is true.
	Values []float64
	// Objective is the objective value at Values, 0 for a zero objective.
	Objective float64
}

// IsOptimal is true iff the solve reached an optimal point.
func (sol *Solution) IsOptimal() bool { return sol.Status == Optimal }

// IsInfeasible is true iff the model was proven infeasible.
func (sol *Solution) IsInfeasible() bool { return sol.Status == Infeasible }

// HasSolution is true iff Values holds a feasible point.
func (sol *Solution) HasSolution() bool { return sol.Status == Optimal || sol.Status == Feasible }

// A Solver solves the continuous relaxation of a model: integrality of
// variables is ignored. Use the mip package to enforce it.
type Solver struct {
	m *Model
	// Tol is the tolerance passed to the underlying simplex.
	// 0 means the simplex default.
	Tol float64
	// Verbose makes the solver print information about the solve on stdout.
	Verbose bool
}

// NewSolver returns a solver for the given model. The model is not
// modified by the solver.
func NewSolver(m *Model) *Solver {
	return &Solver{m: m}
}

// Solve solves the model's continuous relaxation.
// A non-nil error is only returned for malformed models or numerical
// failures; infeasibility and unboundedness are reported as statuses.
func (m *Model) Solve() (*Solution, error) {
	return NewSolver(m).Solve()
}

// varCol describes how a model variable maps to standard-form columns.
type varCol struct {
	col    int     // first column index, -1 if the variable is unused
	negCol int     // column of the negative part for free variables, -1 otherwise
	shift  float64 // x = shift + u (shifted) or x = shift - u (mirrored)
	mirror bool
}

// Solve solves the model's continuous relaxation with the simplex method,
// after conversion to the standard form "minimize c'x s.t. Ax = b, x >= 0".
func (s *Solver) Solve() (*Solution, error) {
	m := s.m
	for _, v := range m.Vars {
		if v.Lb > v.Ub {
			return nil, fmt.Errorf("%w: variable %q has bounds [%g, %g]", ErrBadBounds, v.Name, v.Lb, v.Ub)
		}
	}
	// Constraints without variables are checked directly rather than
	// sent to the simplex.
	rows := make([]Constr, 0, len(m.Constrs))
	for _, c := range m.Constrs {
		if len(c.Expr.vars()) == 0 {
			if !trivialHolds(c) {
				return &Solution{Status: Infeasible}, nil
			}
			continue
		}
		rows = append(rows, c)
	}
	used := make([]bool, len(m.Vars))
	for _, c := range rows {
		for _, j := range c.Expr.vars() {
			used[j] = true
		}
	}
	values := make([]float64, len(m.Vars))
	for j, v := range m.Vars {
		if used[j] {
			continue
		}
		val, ok := unconstrainedValue(v, s.effObjCoef(j))
		if !ok {
			return &Solution{Status: Unbounded}, nil
		}
		values[j] = val
	}
	if len(rows) == 0 {
		return &Solution{Status: Optimal, Values: values, Objective: m.Obj.Eval(values)}, nil
	}

	cols := make([]varCol, len(m.Vars))
	nbCols := 0
	type boundRow struct {
		col int
		rhs float64
	}
	var boundRows []boundRow
	for j, v := range m.Vars {
		cols[j] = varCol{col: -1, negCol: -1}
		if !used[j] {
			continue
		}
		switch {
		case !math.IsInf(v.Lb, -1):
			// x = lb + u, u >= 0
			cols[j].col = nbCols
			cols[j].shift = v.Lb
			nbCols++
			if !math.IsInf(v.Ub, 1) {
				boundRows = append(boundRows, boundRow{col: cols[j].col, rhs: v.Ub - v.Lb})
			}
		case !math.IsInf(v.Ub, 1):
			// x = ub - u, u >= 0
			cols[j].col = nbCols
			cols[j].shift = v.Ub
			cols[j].mirror = true
			nbCols++
		default:
			// free: x = u - w, u, w >= 0
			cols[j].col = nbCols
			cols[j].negCol = nbCols + 1
			nbCols += 2
		}
	}
	nbRows := len(rows) + len(boundRows)
	nbSlacks := 0
	for _, c := range rows {
		if c.Sense != Eq {
			nbSlacks++
		}
	}
	nbSlacks += len(boundRows)
	a := mat.NewDense(nbRows, nbCols+nbSlacks, nil)
	b := make([]float64, nbRows)
	slack := nbCols
	for i, c := range rows {
		rhs := c.Rhs
		for _, j := range c.Expr.vars() {
			coef := c.Expr[j]
			vc := cols[j]
			rhs -= coef * vc.shift
			if vc.mirror {
				a.Set(i, vc.col, -coef)
			} else {
				a.Set(i, vc.col, coef)
				if vc.negCol >= 0 {
					a.Set(i, vc.negCol, -coef)
				}
			}
		}
		b[i] = rhs
		switch c.Sense {
		case LessEq:
			a.Set(i, slack, 1)
			slack++
		case GreaterEq:
			a.Set(i, slack, -1)
			slack++
		}
	}
	for k, br := range boundRows {
		i := len(rows) + k
		a.Set(i, br.col, 1)
		a.Set(i, slack, 1)
		slack++
		b[i] = br.rhs
	}
	c := make([]float64, nbCols+nbSlacks)
	for j := range m.Vars {
		vc := cols[j]
		if vc.col < 0 {
			continue
		}
		coef := s.effObjCoef(j)
		if vc.mirror {
			coef = -coef
		}
		c[vc.col] = coef
		if vc.negCol >= 0 {
			c[vc.negCol] = -coef
		}
	}

	if s.Verbose {
		fmt.Printf("\\ simplex: %d rows, %d columns (%d structural)\n", nbRows, nbCols+nbSlacks, nbCols)
	}
	_, x, err := simplex.Simplex(c, a, b, s.Tol, nil)
	switch {
	case errors.Is(err, simplex.ErrInfeasible):
		return &Solution{Status: Infeasible}, nil
	case errors.Is(err, simplex.ErrUnbounded):
		return &Solution{Status: Unbounded}, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrNumeric, err)
	}
	for j := range m.Vars {
		vc := cols[j]
		if vc.col < 0 {
			continue
		}
		switch {
		case vc.mirror:
			values[j] = vc.shift - x[vc.col]
		case vc.negCol >= 0:
			values[j] = x[vc.col] - x[vc.negCol]
		default:
			values[j] = vc.shift + x[vc.col]
		}
	}
	return &Solution{Status: Optimal, Values: values, Objective: m.Obj.Eval(values)}, nil
}

// effObjCoef returns the objective coefficient of variable j in
// minimization form.
func (s *Solver) effObjCoef(j int) float64 {
	coef := s.m.Obj[j]
	if s.m.Maximize {
		return -coef
	}
	return coef
}

// trivialHolds checks a constraint whose expression has no variable.
func trivialHolds(c Constr) bool {
	switch c.Sense {
	case LessEq:
		return 0 <= c.Rhs+feasTol
	case GreaterEq:
		return 0 >= c.Rhs-feasTol
	default:
		return math.Abs(c.Rhs) <= feasTol
	}
}

// unconstrainedValue picks the best in-bounds value for a variable
// appearing in no constraint. ok is false iff the objective makes the
// variable unbounded.
func unconstrainedValue(v Var, objCoef float64) (val float64, ok bool) {
	switch {
	case objCoef > 0:
		if math.IsInf(v.Lb, -1) {
			return 0, false
		}
		return v.Lb, true
	case objCoef < 0:
		if math.IsInf(v.Ub, 1) {
			return 0, false
		}
		return v.Ub, true
	default:
		return math.Min(math.Max(0, v.Lb), v.Ub), true
	}
}
