package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseLP parses a model written in a subset of the CPLEX LP file format.
//
// The subset understood here covers what WriteLP produces: an objective
// section ("Minimize" or "Maximize"), a "Subject To" section with one
// constraint per line, optional "Bounds", "General"/"Generals" and
// "Binary"/"Binaries" sections, and a final "End". Comments start with a
// backslash and run to the end of the line. Constraint and bound lines may
// start with a "name:" label. Expression tokens must be blank-separated.
func ParseLP(r io.Reader) (*Model, error) {
	p := lpParser{
		m:       NewModel(""),
		indices: make(map[string]int),
	}
	sc := bufio.NewScanner(r)
	nbLines := 0
	for sc.Scan() {
		nbLines++
		line := sc.Text()
		if idx := strings.IndexByte(line, '\\'); idx != -1 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if p.parseSectionHeader(fields) {
			continue
		}
		if err := p.parseLine(fields); err != nil {
			return nil, fmt.Errorf("could not parse line %d %q: %v", nbLines, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not parse model: %v", err)
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.m, nil
}

// Sections of an LP file, in the order they are expected.
const (
	secStart = iota
	secObjective
	secConstraints
	secBounds
	secGeneral
	secBinary
	secEnd
)

type lpParser struct {
	m        *Model
	indices  map[string]int // variable name -> index
	section  int
	objTerms []string // objective tokens, accumulated across lines
	objName  string
	maximize bool
	general  []string // names listed under General
	binary   []string // names listed under Binary
}

// parseSectionHeader returns true iff the fields form a section keyword.
func (p *lpParser) parseSectionHeader(fields []string) bool {
	switch strings.ToLower(strings.Join(fields, " ")) {
	case "minimize", "min":
		p.section = secObjective
		p.maximize = false
	case "maximize", "max":
		p.section = secObjective
		p.maximize = true
	case "subject to", "such that", "st", "s.t.":
		p.section = secConstraints
	case "bounds", "bound":
		p.section = secBounds
	case "general", "generals", "gen":
		p.section = secGeneral
	case "binary", "binaries", "bin":
		p.section = secBinary
	case "end":
		p.section = secEnd
	default:
		return false
	}
	return true
}

func (p *lpParser) parseLine(fields []string) error {
	switch p.section {
	case secStart:
		return fmt.Errorf("expected Minimize or Maximize, got %q", fields[0])
	case secObjective:
		name, rest := splitLabel(fields)
		if name != "" {
			p.objName = name
		}
		p.objTerms = append(p.objTerms, rest...)
		return nil
	case secConstraints:
		return p.parseConstr(fields)
	case secBounds:
		return p.parseBound(fields)
	case secGeneral:
		p.general = append(p.general, fields...)
		return nil
	case secBinary:
		p.binary = append(p.binary, fields...)
		return nil
	default:
		return fmt.Errorf("unexpected content after End")
	}
}

// splitLabel extracts an optional leading "name:" label.
func splitLabel(fields []string) (name string, rest []string) {
	if strings.HasSuffix(fields[0], ":") {
		return strings.TrimSuffix(fields[0], ":"), fields[1:]
	}
	if len(fields) > 1 && fields[1] == ":" {
		return fields[0], fields[2:]
	}
	return "", fields
}

func (p *lpParser) parseConstr(fields []string) error {
	name, rest := splitLabel(fields)
	op := -1
	for i, tok := range rest {
		if isOperator(tok) {
			op = i
			break
		}
	}
	if op == -1 {
		return fmt.Errorf("no comparison operator")
	}
	if op == len(rest)-1 {
		return fmt.Errorf("missing right-hand side")
	}
	expr, err := p.parseExpr(rest[:op])
	if err != nil {
		return err
	}
	rhs, err := parseNum(strings.Join(rest[op+1:], ""))
	if err != nil {
		return fmt.Errorf("invalid right-hand side %q: %v", strings.Join(rest[op+1:], " "), err)
	}
	var sense Sense
	switch rest[op] {
	case "<=", "<", "=<":
		sense = LessEq
	case ">=", ">", "=>":
		sense = GreaterEq
	default:
		sense = Eq
	}
	_, err = p.m.AddConstr(name, expr, sense, rhs)
	return err
}

func isOperator(tok string) bool {
	switch tok {
	case "<=", ">=", "=", "<", ">", "=<", "=>":
		return true
	default:
		return false
	}
}

// parseExpr parses a blank-separated linear expression such as
// "3 x + 2.5 y - z".
func (p *lpParser) parseExpr(tokens []string) (LinExpr, error) {
	expr := LinExpr{}
	sign := 1.0
	coef := math.NaN() // NaN when no pending coefficient
	for _, tok := range tokens {
		switch {
		case tok == "+", tok == "-":
			if !math.IsNaN(coef) {
				// The pending number was a constant term; constants do
				// not change feasibility or optima, so it is dropped
				// along with its sign.
				coef = math.NaN()
				sign = 1
			}
			if tok == "-" {
				sign = -sign
			}
		default:
			if num, err := parseNum(tok); err == nil {
				if !math.IsNaN(coef) {
					return nil, fmt.Errorf("two consecutive numbers near %q", tok)
				}
				coef = num
				continue
			}
			c := sign
			if !math.IsNaN(coef) {
				c = sign * coef
			}
			expr[p.varIndex(tok)] += c
			sign = 1
			coef = math.NaN()
		}
	}
	// A trailing number is a constant term, dropped like the others.
	return expr, nil
}

// varIndex returns the index of the named variable, creating it with the
// LP format default bounds [0, +inf) if needed.
func (p *lpParser) varIndex(name string) int {
	if j, ok := p.indices[name]; ok {
		return j
	}
	j, _ := p.m.AddVar(name, 0, math.Inf(1))
	p.indices[name] = j
	return j
}

func (p *lpParser) parseBound(fields []string) error {
	if len(fields) == 2 && strings.EqualFold(fields[1], "free") {
		j := p.varIndex(fields[0])
		p.m.Vars[j].Lb = math.Inf(-1)
		p.m.Vars[j].Ub = math.Inf(1)
		return nil
	}
	switch len(fields) {
	case 3: // "x <= u", "x >= l", "l <= x", "x = v"
		if num, err := parseNum(fields[0]); err == nil {
			return p.setBound(fields[2], fields[1], num, true)
		}
		num, err := parseNum(fields[2])
		if err != nil {
			return fmt.Errorf("invalid bound %q: %v", fields[2], err)
		}
		return p.setBound(fields[0], fields[1], num, false)
	case 5: // "l <= x <= u"
		lb, err := parseNum(fields[0])
		if err != nil {
			return fmt.Errorf("invalid bound %q: %v", fields[0], err)
		}
		ub, err := parseNum(fields[4])
		if err != nil {
			return fmt.Errorf("invalid bound %q: %v", fields[4], err)
		}
		if fields[1] != "<=" || fields[3] != "<=" {
			return fmt.Errorf("invalid double bound")
		}
		j := p.varIndex(fields[2])
		p.m.Vars[j].Lb = lb
		p.m.Vars[j].Ub = ub
		return nil
	default:
		return fmt.Errorf("invalid bound line")
	}
}

// setBound applies a single-sided bound. mirrored is true when the bound
// value is on the left of the operator, as in "3 <= x".
func (p *lpParser) setBound(name, op string, num float64, mirrored bool) error {
	j := p.varIndex(name)
	lower := op == ">="
	if mirrored {
		if op != "<=" && op != ">=" {
			return fmt.Errorf("invalid bound operator %q", op)
		}
		lower = op == "<="
	}
	switch {
	case op == "=":
		p.m.Vars[j].Lb = num
		p.m.Vars[j].Ub = num
	case lower:
		p.m.Vars[j].Lb = num
	case op == "<=" || op == ">=":
		p.m.Vars[j].Ub = num
	default:
		return fmt.Errorf("invalid bound operator %q", op)
	}
	return nil
}

func (p *lpParser) finish() error {
	expr, err := p.parseExpr(p.objTerms)
	if err != nil {
		return fmt.Errorf("could not parse objective: %v", err)
	}
	p.m.Obj = expr
	p.m.Maximize = p.maximize
	for _, name := range p.general {
		j, ok := p.indices[name]
		if !ok {
			return fmt.Errorf("unknown variable %q in General section", name)
		}
		p.m.Vars[j].Type = Integer
	}
	for _, name := range p.binary {
		j, ok := p.indices[name]
		if !ok {
			return fmt.Errorf("unknown variable %q in Binary section", name)
		}
		p.m.Vars[j].Type = Binary
		p.m.Vars[j].Lb = 0
		p.m.Vars[j].Ub = 1
	}
	for _, v := range p.m.Vars {
		if v.Lb > v.Ub {
			return fmt.Errorf("%w: variable %q has bounds [%g, %g]", ErrBadBounds, v.Name, v.Lb, v.Ub)
		}
	}
	return nil
}

// parseNum parses a floating point number, accepting the usual spellings
// of infinity found in LP files.
func parseNum(tok string) (float64, error) {
	switch strings.ToLower(tok) {
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), nil
	case "-inf", "-infinity":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(tok, 64)
}
