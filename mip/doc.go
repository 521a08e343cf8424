/*
Package mip solves mixed-integer linear programs by branch and bound.

Each node of the search solves a continuous relaxation with the lp
package, branches on the integer variable whose value is farthest from
an integer, and prunes subproblems that cannot improve on the incumbent.
With a zero objective the search stops at the first integer-feasible
point, which makes it a pure feasibility check; this is the mode the iis
package relies on for models with integer variables.
*/
package mip
