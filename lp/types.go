package lp

// Describes basic types and constants shared by the modeling and solving code.

import "errors"

// Sentinel errors returned when building or solving a model.
var (
	// ErrBadBounds indicates a variable whose lower bound exceeds its upper bound.
	ErrBadBounds = errors.New("lp: lower bound exceeds upper bound")

	// ErrUnknownVar indicates an expression referencing a variable index
	// that does not exist in the model.
	ErrUnknownVar = errors.New("lp: unknown variable index")

	// ErrBadConstr indicates an out-of-range constraint index.
	ErrBadConstr = errors.New("lp: unknown constraint index")

	// ErrNumeric indicates the underlying simplex failed for numerical reasons.
	ErrNumeric = errors.New("lp: numerical failure in simplex")
)

// VarType describes the domain of a variable.
type VarType byte

const (
	// Continuous variables can take any value within their bounds.
	Continuous = VarType(iota)
	// Integer variables are restricted to integer values within their bounds.
	Integer
	// Binary variables are integer variables with bounds [0, 1].
	Binary
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		panic("invalid variable type")
	}
}

// Sense is the comparison sense of a linear constraint.
type Sense byte

const (
	// LessEq constrains the expression to be at most the right-hand side.
	LessEq = Sense(iota)
	// GreaterEq constrains the expression to be at least the right-hand side.
	GreaterEq
	// Eq constrains the expression to equal the right-hand side.
	Eq
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Eq:
		return "="
	default:
		panic("invalid constraint sense")
	}
}

// Status is the status of a model after a solve attempt.
type Status byte

const (
	// Indet means the solve stopped before reaching a conclusion.
	Indet = Status(iota)
	// Optimal means a feasible point optimizing the objective was found.
	Optimal
	// Feasible means a feasible point was found, with no optimality claim.
	Feasible
	// Infeasible means no point satisfies all constraints and bounds.
	Infeasible
	// Unbounded means the objective can be improved without limit.
	Unbounded
)

func (s Status) String() string {
	switch s {
	case Indet:
		return "INDETERMINATE"
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	default:
		panic("invalid status")
	}
}
