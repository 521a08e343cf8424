package mip

import (
	"context"
	"fmt"
	"math"

	"github.com/nrealus/iis/lp"
)

// intTol is the distance to the nearest integer under which a relaxation
// value is considered integral.
const intTol = 1e-6

// boundTol is the slack used when pruning nodes against the incumbent.
const boundTol = 1e-9

// A Solver enforces integrality of Integer and Binary variables with
// branch and bound, solving a continuous relaxation at each node.
type Solver struct {
	m *lp.Model
	// Tol is forwarded to the lp solver at each node.
	Tol float64
	// MaxNodes limits the number of explored nodes; 0 means no limit.
	// When the limit is hit, the solve returns with the Indet status.
	MaxNodes int
	// Verbose makes the solver print search information on stdout.
	Verbose bool
}

// NewSolver returns a solver for the given model. The model is not
// modified by the solver.
func NewSolver(m *lp.Model) *Solver {
	return &Solver{m: m}
}

// Solve solves the model, enforcing integrality constraints.
func Solve(m *lp.Model) (*lp.Solution, error) {
	return NewSolver(m).Solve()
}

// Solve solves the model, enforcing integrality constraints.
func (s *Solver) Solve() (*lp.Solution, error) {
	return s.SolveContext(context.Background())
}

// A node is a subproblem of the branch and bound search, identified by
// the bounds it tightens with respect to the root model.
type node struct {
	bounds map[int][2]float64 // variable index -> tightened [lb, ub]
}

// child returns a copy of n with the bounds of variable j further
// restricted to [lb, ub].
func (n node) child(m *lp.Model, j int, lb, ub float64) node {
	bounds := make(map[int][2]float64, len(n.bounds)+1)
	for k, b := range n.bounds {
		bounds[k] = b
	}
	cur, ok := bounds[j]
	if !ok {
		cur = [2]float64{m.Vars[j].Lb, m.Vars[j].Ub}
	}
	bounds[j] = [2]float64{math.Max(cur[0], lb), math.Min(cur[1], ub)}
	return node{bounds: bounds}
}

// SolveContext solves the model, enforcing integrality constraints.
// If ctx is canceled, the search stops and the Indet status is returned
// together with the context's error.
func (s *Solver) SolveContext(ctx context.Context) (*lp.Solution, error) {
	if !s.m.HasIntVars() {
		return s.solveRelaxation(s.m)
	}
	feasibilityMode := objIsZero(s.m.Obj)
	base := s.m.Clone()
	stack := []node{{}}
	var incumbent *lp.Solution
	incumbentScore := math.Inf(1)
	nbNodes := 0
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return &lp.Solution{Status: lp.Indet}, err
		}
		if s.MaxNodes > 0 && nbNodes >= s.MaxNodes {
			return &lp.Solution{Status: lp.Indet}, nil
		}
		nbNodes++
		// Depth-first: explore the most recently branched subproblem.
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !applyBounds(base, s.m, nd) {
			continue // empty domain
		}
		sol, err := s.solveRelaxation(base)
		if err != nil {
			return nil, err
		}
		switch sol.Status {
		case lp.Infeasible:
			continue
		case lp.Unbounded:
			// An unbounded relaxation means the problem itself is
			// unbounded or integer infeasible; the distinction is not
			// worth the extra search here.
			return &lp.Solution{Status: lp.Unbounded}, nil
		}
		score := s.score(sol.Objective)
		if incumbent != nil && score >= incumbentScore-boundTol {
			if s.Verbose {
				fmt.Printf("\\ node %d: pruned by bound (%g >= %g)\n", nbNodes, score, incumbentScore)
			}
			continue
		}
		j := s.mostFractional(sol.Values)
		if j == -1 {
			roundIntVars(s.m, sol.Values)
			incumbent = sol
			incumbentScore = score
			if s.Verbose {
				fmt.Printf("\\ node %d: integer feasible, objective %g\n", nbNodes, sol.Objective)
			}
			if feasibilityMode {
				incumbent.Status = lp.Feasible
				return incumbent, nil
			}
			continue
		}
		val := sol.Values[j]
		stack = append(stack,
			nd.child(s.m, j, math.Ceil(val), math.Inf(1)),
			nd.child(s.m, j, math.Inf(-1), math.Floor(val)),
		)
	}
	if incumbent == nil {
		return &lp.Solution{Status: lp.Infeasible}, nil
	}
	incumbent.Status = lp.Optimal
	return incumbent, nil
}

func (s *Solver) solveRelaxation(m *lp.Model) (*lp.Solution, error) {
	rs := lp.NewSolver(m)
	rs.Tol = s.Tol
	return rs.Solve()
}

// score normalizes an objective value to minimization form for pruning.
func (s *Solver) score(objective float64) float64 {
	if s.m.Maximize {
		return -objective
	}
	return objective
}

// applyBounds copies the variables of src into dst and tightens them with
// the node's bounds. It returns false iff some domain becomes empty.
func applyBounds(dst, src *lp.Model, nd node) bool {
	copy(dst.Vars, src.Vars)
	for j, b := range nd.bounds {
		if b[0] > b[1] {
			return false
		}
		dst.Vars[j].Lb = b[0]
		dst.Vars[j].Ub = b[1]
	}
	return true
}

// mostFractional returns the index of the integer variable whose
// relaxation value is farthest from an integer, or -1 if the point is
// integer feasible.
func (s *Solver) mostFractional(values []float64) int {
	best, bestDist := -1, intTol
	for j, v := range s.m.Vars {
		if v.Type == lp.Continuous {
			continue
		}
		if dist := math.Abs(values[j] - math.Round(values[j])); dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

// roundIntVars snaps near-integer values to exact integers.
func roundIntVars(m *lp.Model, values []float64) {
	for j, v := range m.Vars {
		if v.Type != lp.Continuous {
			values[j] = math.Round(values[j])
		}
	}
}

func objIsZero(obj lp.LinExpr) bool {
	for _, coef := range obj {
		if coef != 0 {
			return false
		}
	}
	return true
}
