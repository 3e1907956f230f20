package parse

import (
	"fmt"
	"io"
	"strings"
)

const indentInc = 2

// PPrint writes the statements to w as an indented tree, one node per line.
func PPrint(w io.Writer, stmts []AndOr) {
	pp := &printer{w: w}
	for _, n := range stmts {
		pp.andOr(n, 0)
	}
}

// Sprint returns what PPrint would write.
func Sprint(stmts []AndOr) string {
	var sb strings.Builder
	PPrint(&sb, stmts)
	return sb.String()
}

type printer struct {
	w io.Writer
}

func (pp *printer) line(depth int, format string, args ...any) {
	fmt.Fprintf(pp.w, "%s%s\n", strings.Repeat(" ", depth*indentInc), fmt.Sprintf(format, args...))
}

func (pp *printer) andOr(n AndOr, depth int) {
	switch n := n.(type) {
	case *And:
		pp.line(depth, "And")
		pp.andOr(n.Left, depth+1)
		pp.andOr(n.Right, depth+1)
	case *Or:
		pp.line(depth, "Or")
		pp.andOr(n.Left, depth+1)
		pp.andOr(n.Right, depth+1)
	case *Not:
		pp.line(depth, "Not")
		pp.andOr(n.Operand, depth+1)
	case *Pipeline:
		if n.Background {
			pp.line(depth, "Pipeline &")
		} else {
			pp.line(depth, "Pipeline")
		}
		for _, stage := range n.Stages {
			pp.compound(stage, depth+1)
		}
		if r := n.Redirect; r != nil {
			pp.line(depth+1, "Redirect %v %v", r.Mode, r.Target)
		}
	}
}

func (pp *printer) body(name string, body []AndOr, depth int) {
	pp.line(depth, "%s", name)
	for _, n := range body {
		pp.andOr(n, depth+1)
	}
}

func (pp *printer) compound(n Compound, depth int) {
	switch n := n.(type) {
	case *Command:
		pp.line(depth, "Command")
		if a := n.Assignment; a != nil {
			pp.line(depth+1, "Assign %s %v", a.Key, a.Value)
		}
		if n.Name != nil {
			pp.line(depth+1, "Name %v", n.Name)
		}
		for _, arg := range n.Args {
			pp.line(depth+1, "Arg %v", arg)
		}
	case *If:
		pp.line(depth, "If")
		pp.line(depth+1, "Cond")
		pp.andOr(n.Cond, depth+2)
		pp.body("Then", n.Then, depth+1)
		switch e := n.Else.(type) {
		case *If:
			pp.line(depth+1, "Elif")
			pp.compound(e, depth+2)
		case *Else:
			pp.body("Else", e.Body, depth+1)
		}
	case *While:
		if n.Negated {
			pp.line(depth, "Until")
		} else {
			pp.line(depth, "While")
		}
		pp.line(depth+1, "Cond")
		pp.andOr(n.Cond, depth+2)
		pp.body("Do", n.Body, depth+1)
	case *For:
		pp.line(depth, "For %s", n.Var)
		for _, item := range n.Items {
			pp.line(depth+1, "Item %v", item)
		}
		pp.body("Do", n.Body, depth+1)
	case *Function:
		pp.body("Function "+n.Name, n.Body, depth)
	}
}
