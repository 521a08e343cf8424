package iis

import (
	"errors"
	"fmt"

	"github.com/nrealus/iis/lp"
)

// Sentinel errors returned by Verify.
var (
	// ErrNotInfeasible indicates that the candidate set, taken alone,
	// has a solution.
	ErrNotInfeasible = errors.New("iis: set is not infeasible")

	// ErrNotIrreducible indicates that some constraint of the candidate
	// set can be removed while keeping the set infeasible.
	ErrNotIrreducible = errors.New("iis: set is not irreducible")
)

// Verify checks that the given constraint set is an IIS of the model:
// the set taken alone must be infeasible, and removing any single
// constraint from it must restore feasibility. Constraints excluded
// through opts take part in every check, mirroring their role during
// extraction.
// Verify is as expensive as the deletion filter itself; it is meant for
// tests and for auditing results obtained with solver tolerances that
// are in doubt.
func Verify(m *lp.Model, set []lp.Constr, opts Options) error {
	var background []lp.Constr
	for _, c := range m.Constrs {
		if opts.excluded(c.Name) {
			background = append(background, c.Clone())
		}
	}
	feas, err := feasible(buildAux(m, background, set))
	if err != nil {
		return err
	}
	if feas {
		return ErrNotInfeasible
	}
	for i := range set {
		feas, err := feasible(buildAux(m, background, without(set, i)))
		if err != nil {
			return err
		}
		if !feas {
			return fmt.Errorf("%w: still infeasible without %q", ErrNotIrreducible, set[i].Name)
		}
	}
	return nil
}
