package lp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddVarBadBounds(t *testing.T) {
	m := NewModel("bad")
	_, err := m.AddVar("x", 3, 2)
	require.ErrorIs(t, err, ErrBadBounds)
	require.Equal(t, 0, m.NumVars())
}

func TestBinaryBoundsForced(t *testing.T) {
	m := NewModel("bin")
	j, err := m.AddTypedVar("b", -4, 12, Binary)
	require.NoError(t, err)
	require.Equal(t, 0.0, m.Vars[j].Lb)
	require.Equal(t, 1.0, m.Vars[j].Ub)
}

func TestAddConstrUnknownVar(t *testing.T) {
	m := NewModel("bad")
	x, _ := m.AddVar("x", 0, 1)
	_, err := m.AddConstr("c", LinExpr{x + 1: 1}, LessEq, 0)
	require.ErrorIs(t, err, ErrUnknownVar)
}

func TestRemoveConstr(t *testing.T) {
	m := NewModel("rm")
	x, _ := m.AddVar("x", 0, 10)
	m.AddConstr("c0", LinExpr{x: 1}, LessEq, 5)
	m.AddConstr("c1", LinExpr{x: 1}, GreaterEq, 1)
	m.AddConstr("c2", LinExpr{x: 1}, Eq, 2)
	require.NoError(t, m.RemoveConstr(1))
	require.Equal(t, 2, m.NumConstrs())
	require.Equal(t, "c2", m.Constrs[1].Name)
	require.ErrorIs(t, m.RemoveConstr(7), ErrBadConstr)
}

func TestCloneIsDeep(t *testing.T) {
	m := NewModel("orig")
	x, _ := m.AddVar("x", 0, 10)
	m.AddConstr("c0", LinExpr{x: 1}, LessEq, 5)
	m.SetObjective(LinExpr{x: 2}, true)
	m2 := m.Clone()
	m2.Vars[x].Ub = 99
	m2.Constrs[0].Expr[x] = -1
	m2.Obj[x] = 0
	require.Equal(t, 10.0, m.Vars[x].Ub)
	require.Equal(t, 1.0, m.Constrs[0].Expr[x])
	require.Equal(t, 2.0, m.Obj[x])
}

func TestCloneVars(t *testing.T) {
	m := NewModel("orig")
	x, _ := m.AddVar("x", -1, 1)
	m.AddConstr("c0", LinExpr{x: 1}, LessEq, 5)
	m.SetObjective(LinExpr{x: 2}, false)
	m2 := m.CloneVars()
	require.Equal(t, 1, m2.NumVars())
	require.Equal(t, 0, m2.NumConstrs())
	require.Empty(t, m2.Obj)
}

func TestLinExprEqual(t *testing.T) {
	e := LinExpr{0: 1, 1: -2}
	require.True(t, e.Equal(LinExpr{0: 1, 1: -2}, 1e-9))
	require.True(t, e.Equal(LinExpr{0: 1, 1: -2, 2: 0}, 1e-9))
	require.False(t, e.Equal(LinExpr{0: 1}, 1e-9))
	require.False(t, e.Equal(LinExpr{0: 1, 1: -2.1}, 1e-9))
	require.True(t, e.Equal(LinExpr{0: 1, 1: -2.1}, 0.2))
}

func TestLinExprEval(t *testing.T) {
	e := LinExpr{0: 2, 2: -1}
	require.InDelta(t, 2*3-5, e.Eval([]float64{3, 100, 5}), 1e-12)
}

func TestHasIntVars(t *testing.T) {
	m := NewModel("int")
	m.AddVar("x", 0, math.Inf(1))
	require.False(t, m.HasIntVars())
	m.AddTypedVar("n", 0, 10, Integer)
	require.True(t, m.HasIntVars())
}
