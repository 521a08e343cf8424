/*
Package lp provides a small modeling layer and solver for linear and
mixed-integer linear programs. Its input can be either a file in a subset
of the CPLEX LP format, or an lp.Model object built programmatically.

A model holds bounded variables, linear constraints and an optional
linear objective. A zero objective turns any solve into a pure
feasibility check, which is how the iis package uses this one.

Describing a problem

1. parse an LP stream (io.Reader). If the io.Reader produces the
following content:

    Minimize
     obj: 0
    Subject To
     c1: x <= 5
     c2: x >= 6
    End

the programmer can create the Model by doing:

    m, err := lp.ParseLP(f)

2. create the equivalent model programmatically:

    m := lp.NewModel("small")
    x, _ := m.AddVar("x", 0, math.Inf(1))
    m.AddConstr("c1", lp.LinExpr{x: 1}, lp.LessEq, 5)
    m.AddConstr("c2", lp.LinExpr{x: 1}, lp.GreaterEq, 6)

Solving

    sol, err := m.Solve()

solves the continuous relaxation with the simplex method and reports one
of the Optimal, Infeasible or Unbounded statuses together with variable
values when a feasible point exists. Integrality of Integer and Binary
variables is ignored here; the mip package enforces it with branch and
bound on top of this solver.
*/
package lp
