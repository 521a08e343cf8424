package iis_test

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nrealus/iis/iis"
	"github.com/nrealus/iis/lp"
	"github.com/nrealus/iis/piecewise"
)

// names extracts constraint names, in set order.
func names(set []lp.Constr) []string {
	res := make([]string, len(set))
	for i, c := range set {
		res[i] = c.Name
	}
	return res
}

// contradiction returns the classic x <= 5, x >= 6 model with an
// unrelated third constraint, in the given constraint order.
func contradiction(t *testing.T, conflictFirst bool) *lp.Model {
	t.Helper()
	m := lp.NewModel("contradiction")
	x, err := m.AddVar("x", 0, math.Inf(1))
	require.NoError(t, err)
	y, err := m.AddVar("y", 0, math.Inf(1))
	require.NoError(t, err)
	add := func(name string, expr lp.LinExpr, sense lp.Sense, rhs float64) {
		_, err := m.AddConstr(name, expr, sense, rhs)
		require.NoError(t, err)
	}
	if !conflictFirst {
		add("c3", lp.LinExpr{y: 1}, lp.LessEq, 1)
	}
	add("c1", lp.LinExpr{x: 1}, lp.LessEq, 5)
	add("c2", lp.LinExpr{x: 1}, lp.GreaterEq, 6)
	if conflictFirst {
		add("c3", lp.LinExpr{y: 1}, lp.LessEq, 1)
	}
	return m
}

func TestAdditiveDeletion(t *testing.T) {
	m := contradiction(t, true)
	set, err := iis.AdditiveDeletion(m, iis.Options{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c1", "c2"}, names(set))
	require.NoError(t, iis.Verify(m, set, iis.Options{}))
}

func TestAdditiveDeletionPrunesEarlyConstraints(t *testing.T) {
	// c3 comes first: the additive phase adds it before reaching the
	// conflict, and the deletion phase must take it back out.
	m := contradiction(t, false)
	set, err := iis.AdditiveDeletion(m, iis.Options{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c1", "c2"}, names(set))
	require.NoError(t, iis.Verify(m, set, iis.Options{}))
}

func TestDeletion(t *testing.T) {
	for _, conflictFirst := range []bool{true, false} {
		m := contradiction(t, conflictFirst)
		set, err := iis.Deletion(m, iis.Options{})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"c1", "c2"}, names(set))
		require.NoError(t, iis.Verify(m, set, iis.Options{}))
	}
}

func TestAdditiveDeletionCycle(t *testing.T) {
	// x < y < z < x: every constraint takes part in the inconsistency.
	m := lp.NewModel("cycle")
	x, _ := m.AddVar("x", math.Inf(-1), math.Inf(1))
	y, _ := m.AddVar("y", math.Inf(-1), math.Inf(1))
	z, _ := m.AddVar("z", math.Inf(-1), math.Inf(1))
	m.AddConstr("xy", lp.LinExpr{x: 1, y: -1}, lp.LessEq, -1)
	m.AddConstr("yz", lp.LinExpr{y: 1, z: -1}, lp.LessEq, -1)
	m.AddConstr("zx", lp.LinExpr{z: 1, x: -1}, lp.LessEq, -1)
	set, err := iis.AdditiveDeletion(m, iis.Options{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"xy", "yz", "zx"}, names(set))
	require.NoError(t, iis.Verify(m, set, iis.Options{}))
}

func TestFeasibleModel(t *testing.T) {
	m := lp.NewModel("feasible")
	x, _ := m.AddVar("x", 0, 10)
	m.AddConstr("c1", lp.LinExpr{x: 1}, lp.LessEq, 5)
	_, err := iis.AdditiveDeletion(m, iis.Options{})
	require.ErrorIs(t, err, iis.ErrFeasible)
	_, err = iis.Deletion(m, iis.Options{})
	require.ErrorIs(t, err, iis.ErrFeasible)
}

func TestExcludedConstraints(t *testing.T) {
	m := contradiction(t, true)
	opts := iis.Options{Exclude: []string{"c1"}}
	set, err := iis.AdditiveDeletion(m, opts)
	require.NoError(t, err)
	require.Equal(t, []string{"c2"}, names(set))
	// The set is an IIS relative to the excluded background only.
	require.NoError(t, iis.Verify(m, set, opts))
	require.ErrorIs(t, iis.Verify(m, set, iis.Options{}), iis.ErrNotInfeasible)
}

func TestIntegerInfeasibility(t *testing.T) {
	// 2x = 1 is infeasible only because x is an integer: the IIS must be
	// found with an integrality-aware feasibility check.
	m := lp.NewModel("intinf")
	x, _ := m.AddTypedVar("x", 0, 10, lp.Integer)
	y, _ := m.AddVar("y", 0, 10)
	m.AddConstr("half", lp.LinExpr{x: 2}, lp.Eq, 1)
	m.AddConstr("small", lp.LinExpr{y: 1}, lp.LessEq, 1)
	set, err := iis.AdditiveDeletion(m, iis.Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"half"}, names(set))
	require.NoError(t, iis.Verify(m, set, iis.Options{}))
}

func TestAdditiveDeletionFromFile(t *testing.T) {
	f, err := os.Open("../lp/testdata/infeasible.lp")
	require.NoError(t, err)
	defer f.Close()
	m, err := lp.ParseLP(f)
	require.NoError(t, err)
	set, err := iis.AdditiveDeletion(m, iis.Options{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c1", "c2"}, names(set))
}

func TestPiecewiseLinearizedWindow(t *testing.T) {
	// Probability-window model in the style of chance-constrained
	// scheduling: F(u) - F(l) >= 0.8 cannot hold when u - l <= 2 for a
	// normal duration with sigma 1. The linearization constraints are
	// excluded so the IIS only reports the two semantic constraints.
	const mu, sigma, a, b = 4.0, 1.0, 1.0, 7.0
	cdf := piecewise.TruncatedNormalCDF(mu, sigma, a, b)
	fn, err := piecewise.Sample(cdf, a, b, 6)
	require.NoError(t, err)

	m := lp.NewModel("window")
	l, _ := m.AddVar("l", a, b)
	fl, _ := m.AddVar("F_l", 0, 1)
	u, _ := m.AddVar("u", a, b)
	fu, _ := m.AddVar("F_u", 0, 1)
	lin1, err := piecewise.Apply(m, l, fl, fn, "pw_l")
	require.NoError(t, err)
	lin2, err := piecewise.Apply(m, u, fu, fn, "pw_u")
	require.NoError(t, err)
	m.AddConstr("prob", lp.LinExpr{fu: 1, fl: -1}, lp.GreaterEq, 0.8)
	m.AddConstr("window", lp.LinExpr{u: 1, l: -1}, lp.LessEq, 2)

	opts := iis.Options{Exclude: append(lin1, lin2...)}
	set, err := iis.AdditiveDeletion(m, opts)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"prob", "window"}, names(set))
	require.NoError(t, iis.Verify(m, set, opts))
}
