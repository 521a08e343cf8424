package iis

import (
	"fmt"
	"math"

	"github.com/nrealus/iis/lp"
	"github.com/nrealus/iis/mip"
)

// elasticTol is the smallest elastic value counted as a violation.
const elasticTol = 1e-7

// InfeasibleSubset returns an infeasible subset of the model's
// constraints using the elastic filter. The subset is not guaranteed to
// be irreducible, meaning some of its constraints might be removed while
// keeping the subset infeasible. However, this method needs far fewer
// solver calls than extracting an IIS, so it is a good way to seed the
// deletion filter on large models.
//
// Each constraint is stretched with a nonnegative elastic variable and
// the total stretch is minimized; constraints that still need stretching
// at the optimum are enrolled into the subset and enforced exactly, and
// the process repeats until the elastic model itself becomes infeasible.
// If the model is feasible, ErrFeasible is returned.
func InfeasibleSubset(m *lp.Model, opts Options) ([]lp.Constr, error) {
	var background, candidates []lp.Constr
	for _, c := range m.Constrs {
		if opts.excluded(c.Name) {
			background = append(background, c.Clone())
		} else {
			candidates = append(candidates, c.Clone())
		}
	}
	aux := m.CloneVars()
	for _, c := range background {
		if _, err := aux.AddConstr(c.Name, c.Expr, c.Sense, c.Rhs); err != nil {
			return nil, err
		}
	}
	obj := lp.LinExpr{}
	elastics := make([][]int, len(candidates))
	for i, c := range candidates {
		expr := c.Expr.Clone()
		switch c.Sense {
		case lp.LessEq:
			e := mustAddVar(aux, fmt.Sprintf("_e%d", i))
			expr[e] = -1
			obj[e] = 1
			elastics[i] = []int{e}
		case lp.GreaterEq:
			e := mustAddVar(aux, fmt.Sprintf("_e%d", i))
			expr[e] = 1
			obj[e] = 1
			elastics[i] = []int{e}
		case lp.Eq:
			up := mustAddVar(aux, fmt.Sprintf("_e%d", i))
			down := mustAddVar(aux, fmt.Sprintf("_f%d", i))
			expr[up] = 1
			expr[down] = -1
			obj[up] = 1
			obj[down] = 1
			elastics[i] = []int{up, down}
		}
		if _, err := aux.AddConstr(c.Name, expr, c.Sense, c.Rhs); err != nil {
			return nil, err
		}
	}
	if err := aux.SetObjective(obj, false); err != nil {
		return nil, err
	}

	enrolled := make([]bool, len(candidates))
	var subset []lp.Constr
	for round := 1; ; round++ {
		var sol *lp.Solution
		var err error
		if aux.HasIntVars() {
			sol, err = mip.Solve(aux)
		} else {
			sol, err = aux.Solve()
		}
		if err != nil {
			return nil, fmt.Errorf("could not solve elastic model: %v", err)
		}
		switch sol.Status {
		case lp.Infeasible:
			// The enrolled constraints alone are infeasible: done.
			if opts.Verbose {
				fmt.Printf("\\ elastic filter: infeasible after round %d, %d constraints enrolled\n", round, len(subset))
			}
			return subset, nil
		case lp.Indet:
			return nil, ErrStopped
		}
		stretched := false
		for i, c := range candidates {
			if enrolled[i] {
				continue
			}
			if totalElastic(sol, elastics[i]) <= elasticTol {
				continue
			}
			// The constraint had to be stretched: it takes part in the
			// infeasibility. Enforce it exactly from now on.
			enrolled[i] = true
			subset = append(subset, c)
			for _, e := range elastics[i] {
				aux.Vars[e].Ub = 0
			}
			stretched = true
			if opts.Verbose {
				fmt.Printf("\\ elastic filter: round %d enrolls %q\n", round, c.Name)
			}
		}
		if !stretched {
			// Nothing needed stretching: the model has a solution.
			return nil, ErrFeasible
		}
	}
}

func mustAddVar(m *lp.Model, name string) int {
	j, err := m.AddVar(name, 0, math.Inf(1))
	if err != nil {
		panic(err) // bounds [0, +inf) are always valid
	}
	return j
}

func totalElastic(sol *lp.Solution, vars []int) float64 {
	var total float64
	for _, e := range vars {
		total += sol.Values[e]
	}
	return total
}
