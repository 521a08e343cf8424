package lp

import (
	"fmt"
	"math"
	"sort"
)

// A LinExpr is a sparse linear expression, mapping variable indices to
// their coefficients. Zero coefficients may be present but are ignored
// everywhere.
type LinExpr map[int]float64

// Clone returns a deep copy of the expression.
func (e LinExpr) Clone() LinExpr {
	e2 := make(LinExpr, len(e))
	for j, coef := range e {
		e2[j] = coef
	}
	return e2
}

// Eval returns the value of the expression at the given point.
func (e LinExpr) Eval(values []float64) float64 {
	var res float64
	for j, coef := range e {
		res += coef * values[j]
	}
	return res
}

// Equal is true iff both expressions have the same coefficients, within tol.
func (e LinExpr) Equal(e2 LinExpr, tol float64) bool {
	for j, coef := range e {
		if math.Abs(coef-e2[j]) > tol {
			return false
		}
	}
	for j, coef := range e2 {
		if math.Abs(coef-e[j]) > tol {
			return false
		}
	}
	return true
}

// vars returns the variable indices of the expression with a nonzero
// coefficient, in increasing order.
func (e LinExpr) vars() []int {
	indices := make([]int, 0, len(e))
	for j, coef := range e {
		if coef != 0 {
			indices = append(indices, j)
		}
	}
	sort.Ints(indices)
	return indices
}

// A Var is a decision variable with bounds and a domain type.
type Var struct {
	Name string
	Lb   float64
	Ub   float64
	Type VarType
}

// A Constr is a named linear constraint "Expr Sense Rhs".
type Constr struct {
	Name  string
	Expr  LinExpr
	Sense Sense
	Rhs   float64
}

// Clone returns a deep copy of the constraint.
func (c Constr) Clone() Constr {
	c2 := c
	c2.Expr = c.Expr.Clone()
	return c2
}

// A Model is a linear or mixed-integer program: a set of bounded variables,
// a set of linear constraints and an optional linear objective.
// The zero objective turns any solve into a pure feasibility check.
type Model struct {
	Name     string
	Vars     []Var
	Constrs  []Constr
	Obj      LinExpr
	Maximize bool
}

// NewModel returns an empty model with the given name.
func NewModel(name string) *Model {
	return &Model{Name: name, Obj: LinExpr{}}
}

// AddVar appends a continuous variable with the given bounds and
// returns its index. Use math.Inf for free directions.
func (m *Model) AddVar(name string, lb, ub float64) (int, error) {
	return m.AddTypedVar(name, lb, ub, Continuous)
}

// AddTypedVar appends a variable of the given type and returns its index.
// Binary variables have their bounds forced to [0, 1].
func (m *Model) AddTypedVar(name string, lb, ub float64, typ VarType) (int, error) {
	if typ == Binary {
		lb, ub = 0, 1
	}
	if lb > ub {
		return -1, fmt.Errorf("%w: variable %q has bounds [%g, %g]", ErrBadBounds, name, lb, ub)
	}
	m.Vars = append(m.Vars, Var{Name: name, Lb: lb, Ub: ub, Type: typ})
	return len(m.Vars) - 1, nil
}

// AddConstr appends the constraint "expr sense rhs" and returns its index.
func (m *Model) AddConstr(name string, expr LinExpr, sense Sense, rhs float64) (int, error) {
	for j := range expr {
		if j < 0 || j >= len(m.Vars) {
			return -1, fmt.Errorf("%w: %d in constraint %q", ErrUnknownVar, j, name)
		}
	}
	m.Constrs = append(m.Constrs, Constr{Name: name, Expr: expr.Clone(), Sense: sense, Rhs: rhs})
	return len(m.Constrs) - 1, nil
}

// RemoveConstr removes the constraint at the given index.
// Following constraints shift down by one.
func (m *Model) RemoveConstr(i int) error {
	if i < 0 || i >= len(m.Constrs) {
		return fmt.Errorf("%w: %d", ErrBadConstr, i)
	}
	m.Constrs = append(m.Constrs[:i], m.Constrs[i+1:]...)
	return nil
}

// SetObjective sets the objective expression and its direction.
func (m *Model) SetObjective(expr LinExpr, maximize bool) error {
	for j := range expr {
		if j < 0 || j >= len(m.Vars) {
			return fmt.Errorf("%w: %d in objective", ErrUnknownVar, j)
		}
	}
	m.Obj = expr.Clone()
	m.Maximize = maximize
	return nil
}

// NumVars returns the number of variables of the model.
func (m *Model) NumVars() int { return len(m.Vars) }

// NumConstrs returns the number of constraints of the model.
func (m *Model) NumConstrs() int { return len(m.Constrs) }

// HasIntVars is true iff at least one variable is integer or binary.
func (m *Model) HasIntVars() bool {
	for _, v := range m.Vars {
		if v.Type != Continuous {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	m2 := &Model{
		Name:     m.Name,
		Vars:     make([]Var, len(m.Vars)),
		Constrs:  make([]Constr, len(m.Constrs)),
		Obj:      m.Obj.Clone(),
		Maximize: m.Maximize,
	}
	copy(m2.Vars, m.Vars)
	for i, c := range m.Constrs {
		m2.Constrs[i] = c.Clone()
	}
	return m2
}

// CloneVars returns a model holding copies of m's variables, a zero
// objective and no constraints. This is the shape of the auxiliary
// models used during IIS extraction.
func (m *Model) CloneVars() *Model {
	m2 := NewModel(m.Name)
	m2.Vars = make([]Var, len(m.Vars))
	copy(m2.Vars, m.Vars)
	return m2
}
