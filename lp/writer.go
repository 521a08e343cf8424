package lp

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// WriteLP writes the model in the LP file format understood by ParseLP.
func (m *Model) WriteLP(w io.Writer) error {
	_, err := io.WriteString(w, m.String())
	return err
}

// String returns a representation of the model in the LP file format.
func (m *Model) String() string {
	var sb strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&sb, "\\ %s\n", m.Name)
	}
	if m.Maximize {
		sb.WriteString("Maximize\n")
	} else {
		sb.WriteString("Minimize\n")
	}
	fmt.Fprintf(&sb, " obj: %s\n", m.formatExpr(m.Obj))
	sb.WriteString("Subject To\n")
	for i, c := range m.Constrs {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("c%d", i)
		}
		fmt.Fprintf(&sb, " %s: %s %s %s\n", name, m.formatExpr(c.Expr), c.Sense, formatNum(c.Rhs))
	}
	var bounds, general, binary []string
	for _, v := range m.Vars {
		switch v.Type {
		case Integer:
			general = append(general, " "+v.Name)
		case Binary:
			binary = append(binary, " "+v.Name)
			continue // binary bounds are implicit
		}
		if line := boundLine(v); line != "" {
			bounds = append(bounds, line)
		}
	}
	writeSection(&sb, "Bounds", bounds)
	writeSection(&sb, "General", general)
	writeSection(&sb, "Binary", binary)
	sb.WriteString("End\n")
	return sb.String()
}

func writeSection(sb *strings.Builder, header string, lines []string) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString(header + "\n")
	for _, line := range lines {
		sb.WriteString(line + "\n")
	}
}

// boundLine returns the Bounds section line for v, or "" when the LP
// format defaults [0, +inf) make it redundant.
func boundLine(v Var) string {
	lbInf := math.IsInf(v.Lb, -1)
	ubInf := math.IsInf(v.Ub, 1)
	switch {
	case lbInf && ubInf:
		return fmt.Sprintf(" %s free", v.Name)
	case v.Lb == v.Ub:
		return fmt.Sprintf(" %s = %s", v.Name, formatNum(v.Lb))
	case v.Lb == 0 && ubInf:
		return ""
	case v.Lb == 0:
		return fmt.Sprintf(" %s <= %s", v.Name, formatNum(v.Ub))
	case ubInf:
		return fmt.Sprintf(" %s >= %s", v.Name, formatNum(v.Lb))
	default:
		return fmt.Sprintf(" %s <= %s <= %s", formatNum(v.Lb), v.Name, formatNum(v.Ub))
	}
}

// formatExpr formats a linear expression, variables in index order.
func (m *Model) formatExpr(e LinExpr) string {
	indices := e.vars()
	if len(indices) == 0 {
		return "0"
	}
	var sb strings.Builder
	for k, j := range indices {
		coef := e[j]
		if k == 0 {
			if coef < 0 {
				sb.WriteString("- ")
			}
		} else if coef < 0 {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}
		if abs := math.Abs(coef); abs != 1 {
			sb.WriteString(formatNum(abs) + " ")
		}
		sb.WriteString(m.Vars[j].Name)
	}
	return sb.String()
}

func formatNum(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%g", f)
	}
}
