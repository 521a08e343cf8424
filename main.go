package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nrealus/iis/iis"
	"github.com/nrealus/iis/lp"
	"github.com/nrealus/iis/mip"
)

func main() {
	var (
		verbose  bool
		findIIS  bool
		strategy string
	)
	flag.BoolVar(&verbose, "verbose", false, "sets verbose mode on")
	flag.BoolVar(&findIIS, "iis", false, "on infeasible models, computes and prints an irreducible inconsistent set")
	flag.StringVar(&strategy, "strategy", "additive-deletion", "IIS strategy: additive-deletion, deletion or subset")
	flag.Parse()
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Syntax : %s [options] file.lp\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Args()[0]
	m, err := parse(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not parse model: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\\ solving %s\n", path)
	sol, err := solve(m, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not solve model: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(sol.Status)
	if sol.HasSolution() {
		if verbose {
			fmt.Printf("\\ objective: %g\n", sol.Objective)
		}
		for j, v := range m.Vars {
			fmt.Printf("%s = %g\n", v.Name, sol.Values[j])
		}
	}
	if sol.Status == lp.Infeasible && findIIS {
		if err := printIIS(m, strategy, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "could not compute IIS: %v\n", err)
			os.Exit(1)
		}
	}
}

func parse(path string) (*lp.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %v", path, err)
	}
	defer f.Close()
	m, err := lp.ParseLP(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse %q: %v", path, err)
	}
	if m.Name == "" {
		m.Name = path
	}
	return m, nil
}

func solve(m *lp.Model, verbose bool) (*lp.Solution, error) {
	if m.HasIntVars() {
		s := mip.NewSolver(m)
		s.Verbose = verbose
		return s.Solve()
	}
	s := lp.NewSolver(m)
	s.Verbose = verbose
	return s.Solve()
}

func printIIS(m *lp.Model, strategy string, verbose bool) error {
	opts := iis.Options{Verbose: verbose}
	var set []lp.Constr
	var err error
	switch strategy {
	case "additive-deletion":
		set, err = iis.AdditiveDeletion(m, opts)
	case "deletion":
		set, err = iis.Deletion(m, opts)
	case "subset":
		set, err = iis.InfeasibleSubset(m, opts)
	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}
	if errors.Is(err, iis.ErrFeasible) {
		// The feasibility tolerances of the two solves disagreed.
		return fmt.Errorf("model was reported infeasible but no IIS exists")
	}
	if err != nil {
		return err
	}
	if strategy == "subset" {
		fmt.Printf("\\ infeasible subset (%d constraints, maybe not irreducible)\n", len(set))
	} else {
		fmt.Printf("\\ irreducible inconsistent set (%d constraints)\n", len(set))
	}
	return iis.AsModel(m, set).WriteLP(os.Stdout)
}
