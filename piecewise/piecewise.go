// Package piecewise encodes piecewise-linear functions as mixed-integer
// linear constraints.
//
// A nonlinear constraint such as "F = cdf(x)" can be approximated by
// sampling cdf on a grid and forcing (x, F) onto the polyline joining
// the samples. The encoding used here is the lambda formulation: one
// convex-combination weight per breakpoint, plus one binary selector per
// segment restricting the nonzero weights to two adjacent breakpoints.
// The constraints added for one application are semantically a single
// higher-level constraint; their names are returned so callers can pass
// them to iis.Options.Exclude and keep them out of reported IISes.
package piecewise

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nrealus/iis/lp"
)

// Sentinel errors returned when building an encoding.
var (
	// ErrTooFewPoints indicates a function with fewer than two breakpoints.
	ErrTooFewPoints = errors.New("piecewise: at least two breakpoints are needed")

	// ErrUnsorted indicates breakpoints whose x values are not strictly increasing.
	ErrUnsorted = errors.New("piecewise: breakpoint x values must be strictly increasing")

	// ErrMismatched indicates breakpoint slices of different lengths.
	ErrMismatched = errors.New("piecewise: breakpoint slices have different lengths")
)

// A Function is a piecewise-linear function given by its breakpoints.
type Function struct {
	// X holds the breakpoint abscissas, strictly increasing.
	X []float64
	// Y holds the function values at the breakpoints.
	Y []float64
}

func (f Function) validate() error {
	if len(f.X) != len(f.Y) {
		return ErrMismatched
	}
	if len(f.X) < 2 {
		return ErrTooFewPoints
	}
	for k := 1; k < len(f.X); k++ {
		if f.X[k] <= f.X[k-1] {
			return ErrUnsorted
		}
	}
	return nil
}

// Sample returns the piecewise-linear approximation of f over [a, b]
// with n evenly spaced breakpoints, endpoints included.
func Sample(f func(float64) float64, a, b float64, n int) (Function, error) {
	if n < 2 {
		return Function{}, ErrTooFewPoints
	}
	if b <= a {
		return Function{}, ErrUnsorted
	}
	fn := Function{X: make([]float64, n), Y: make([]float64, n)}
	step := (b - a) / float64(n-1)
	for k := 0; k < n; k++ {
		x := a + float64(k)*step
		fn.X[k] = x
		fn.Y[k] = f(x)
	}
	return fn, nil
}

// Apply adds to m the constraints forcing (x, y) onto the polyline of
// fn, where x and y are variable indices of m. The added variables and
// constraints are named after the given prefix. It returns the names of
// the added constraints.
//
// As a side effect, x is restricted to [fn.X[0], fn.X[n-1]]: the
// encoding has no meaning outside the sampled range.
func Apply(m *lp.Model, x, y int, fn Function, prefix string) ([]string, error) {
	if err := fn.validate(); err != nil {
		return nil, err
	}
	if x < 0 || x >= m.NumVars() || y < 0 || y >= m.NumVars() {
		return nil, fmt.Errorf("%w: piecewise encoding %q", lp.ErrUnknownVar, prefix)
	}
	n := len(fn.X)
	weights := make([]int, n)
	for k := range weights {
		j, err := m.AddVar(fmt.Sprintf("%s_w%d", prefix, k), 0, 1)
		if err != nil {
			return nil, err
		}
		weights[k] = j
	}
	selectors := make([]int, n-1)
	for s := range selectors {
		j, err := m.AddTypedVar(fmt.Sprintf("%s_z%d", prefix, s), 0, 1, lp.Binary)
		if err != nil {
			return nil, err
		}
		selectors[s] = j
	}

	var names []string
	add := func(name string, expr lp.LinExpr, sense lp.Sense, rhs float64) error {
		if _, err := m.AddConstr(name, expr, sense, rhs); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	}
	convex := lp.LinExpr{}
	linkX := lp.LinExpr{x: 1}
	linkY := lp.LinExpr{y: 1}
	for k, j := range weights {
		convex[j] = 1
		linkX[j] = -fn.X[k]
		linkY[j] = -fn.Y[k]
	}
	if err := add(prefix+"_cvx", convex, lp.Eq, 1); err != nil {
		return nil, err
	}
	if err := add(prefix+"_x", linkX, lp.Eq, 0); err != nil {
		return nil, err
	}
	if err := add(prefix+"_y", linkY, lp.Eq, 0); err != nil {
		return nil, err
	}
	oneSegment := lp.LinExpr{}
	for _, j := range selectors {
		oneSegment[j] = 1
	}
	if err := add(prefix+"_seg", oneSegment, lp.Eq, 1); err != nil {
		return nil, err
	}
	// A weight may only be nonzero when one of its two segments is selected.
	for k, j := range weights {
		adj := lp.LinExpr{j: 1}
		if k > 0 {
			adj[selectors[k-1]] = -1
		}
		if k < n-1 {
			adj[selectors[k]] = -1
		}
		if err := add(fmt.Sprintf("%s_adj%d", prefix, k), adj, lp.LessEq, 0); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// TruncatedNormalCDF returns the cumulative distribution function of a
// normal distribution with the given mean and standard deviation,
// truncated to the interval [a, b].
func TruncatedNormalCDF(mu, sigma, a, b float64) func(float64) float64 {
	std := distuv.Normal{Mu: 0, Sigma: 1}
	alpha := std.CDF((a - mu) / sigma)
	beta := std.CDF((b - mu) / sigma)
	return func(x float64) float64 {
		switch {
		case x <= a:
			return 0
		case x >= b:
			return 1
		default:
			return (std.CDF((x-mu)/sigma) - alpha) / (beta - alpha)
		}
	}
}
