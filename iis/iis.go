// Package iis provides facilities to understand why an LP or MIP model
// is infeasible, by extracting Irreducible Inconsistent Sets.
package iis

import (
	"errors"
	"fmt"

	"github.com/nrealus/iis/lp"
	"github.com/nrealus/iis/mip"
)

// ErrFeasible is returned when an IIS is requested for a model that
// turns out to be feasible.
var ErrFeasible = errors.New("iis: model is feasible")

// ErrStopped is returned when the underlying solver stopped without
// settling feasibility.
var ErrStopped = errors.New("iis: solver stopped before proving feasibility or infeasibility")

// Options configures IIS extraction.
type Options struct {
	// If Verbose is true, information about the filtering process will
	// be written on stdout.
	Verbose bool
	// Exclude lists names of constraints that are treated as background:
	// they are part of every feasibility check but never reported in the
	// IIS. This is meant for auxiliary constraints, such as the ones
	// introduced by piecewise linearization, that are semantically
	// bundled with a single higher-level constraint. The returned set is
	// then irreducible relative to that background.
	Exclude []string
}

func (o Options) excluded(name string) bool {
	for _, n := range o.Exclude {
		if n == name {
			return true
		}
	}
	return false
}

// AdditiveDeletion returns an Irreducible Inconsistent Set of the model
// using the additive/deletion filter: an additive phase grows an
// auxiliary model one constraint at a time until it becomes infeasible,
// then a deletion phase removes constraints one at a time, keeping each
// removal only when the reduced set stays infeasible.
// An IIS is an infeasible set of constraints such that removing any one
// of them makes the set feasible. It is usually much smaller than the
// model and can be used to understand why the model has no solution,
// but it is expensive to compute since a solver must be called on parts
// of the model several times to find it.
// If the model is feasible, ErrFeasible is returned.
func AdditiveDeletion(m *lp.Model, opts Options) ([]lp.Constr, error) {
	background, candidates, err := prepare(m, opts)
	if err != nil {
		return nil, err
	}
	var added []lp.Constr
	infeasible := false
	for _, c := range candidates {
		added = append(added, c)
		feas, err := feasible(buildAux(m, background, added))
		if err != nil {
			return nil, err
		}
		if !feas {
			infeasible = true
			break
		}
		if opts.Verbose {
			fmt.Printf("\\ additive phase: %d/%d constraints, still feasible\n", len(added), len(candidates))
		}
	}
	if !infeasible {
		// The model was infeasible but the rebuilt one is not: the
		// tolerances of the two solves disagree.
		return nil, fmt.Errorf("iis: could not reproduce infeasibility during additive phase")
	}
	if opts.Verbose {
		fmt.Printf("\\ additive phase: infeasible after %d/%d constraints\n", len(added), len(candidates))
	}
	return deletionFilter(m, background, added, opts)
}

// Deletion returns an Irreducible Inconsistent Set of the model using
// the pure deletion filter: starting from all constraints, each one is
// tentatively removed once, and reinserted whenever its removal makes
// the remaining set feasible.
// The deletion filter performs exactly one solver call per constraint of
// the model, whereas the additive/deletion filter usually works on a
// much smaller set after its additive phase.
// If the model is feasible, ErrFeasible is returned.
func Deletion(m *lp.Model, opts Options) ([]lp.Constr, error) {
	background, candidates, err := prepare(m, opts)
	if err != nil {
		return nil, err
	}
	return deletionFilter(m, background, candidates, opts)
}

// deletionFilter reduces an infeasible candidate set to an IIS.
func deletionFilter(m *lp.Model, background, candidates []lp.Constr, opts Options) ([]lp.Constr, error) {
	kept := make([]lp.Constr, len(candidates))
	copy(kept, candidates)
	total := len(kept)
	for i := 0; i < len(kept); {
		trial := without(kept, i)
		feas, err := feasible(buildAux(m, background, trial))
		if err != nil {
			return nil, err
		}
		if !feas {
			// Still infeasible without it: the constraint is not needed.
			if opts.Verbose {
				fmt.Printf("\\ constraint %q: removed (%d/%d left)\n", kept[i].Name, len(trial), total)
			}
			kept = trial
		} else {
			if opts.Verbose {
				fmt.Printf("\\ constraint %q: kept\n", kept[i].Name)
			}
			i++
		}
	}
	return kept, nil
}

// prepare checks that the model is infeasible and splits its constraints
// into background (excluded) and candidate sets.
func prepare(m *lp.Model, opts Options) (background, candidates []lp.Constr, err error) {
	for _, c := range m.Constrs {
		if opts.excluded(c.Name) {
			background = append(background, c.Clone())
		} else {
			candidates = append(candidates, c.Clone())
		}
	}
	feas, err := feasible(buildAux(m, background, candidates))
	if err != nil {
		return nil, nil, err
	}
	if feas {
		return nil, nil, ErrFeasible
	}
	return background, candidates, nil
}

// buildAux returns a model with the same variables as m, a zero
// objective, and the given constraints.
func buildAux(m *lp.Model, background, constrs []lp.Constr) *lp.Model {
	aux := m.CloneVars()
	aux.Constrs = make([]lp.Constr, 0, len(background)+len(constrs))
	for _, c := range background {
		aux.Constrs = append(aux.Constrs, c.Clone())
	}
	for _, c := range constrs {
		aux.Constrs = append(aux.Constrs, c.Clone())
	}
	return aux
}

// feasible reports whether the model has a solution, dispatching to
// branch and bound when integer variables are present.
func feasible(m *lp.Model) (bool, error) {
	var sol *lp.Solution
	var err error
	if m.HasIntVars() {
		sol, err = mip.Solve(m)
	} else {
		sol, err = m.Solve()
	}
	if err != nil {
		return false, fmt.Errorf("could not check feasibility: %v", err)
	}
	switch sol.Status {
	case lp.Infeasible:
		return false, nil
	case lp.Indet:
		return false, ErrStopped
	default:
		// Optimal, Feasible and Unbounded all witness a feasible point.
		return true, nil
	}
}

// without returns a copy of constrs with the i-th element removed.
func without(constrs []lp.Constr, i int) []lp.Constr {
	res := make([]lp.Constr, 0, len(constrs)-1)
	res = append(res, constrs[:i]...)
	res = append(res, constrs[i+1:]...)
	return res
}

// AsModel returns a model holding the variables of m, a zero objective
// and the given constraints. This is convenient to print an IIS in the
// LP format.
func AsModel(m *lp.Model, constrs []lp.Constr) *lp.Model {
	aux := buildAux(m, nil, constrs)
	aux.Name = m.Name
	return aux
}
