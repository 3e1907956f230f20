package eval

import (
	"errors"
	"fmt"
	"os"

	"src.slush.sh/pkg/diag"
	"src.slush.sh/pkg/parse"
)

func (fm *Frame) andOr(n parse.AndOr) (int, error) {
	switch n := n.(type) {
	case *parse.Pipeline:
		status, err := fm.pipeline(n)
		var spawnErr *SpawnError
		if errors.As(err, &spawnErr) {
			diag.Complain(fm.err, spawnErr.Error())
			status, err = spawnErr.Status(), nil
		}
		fm.st.Status = status
		return status, err
	case *parse.And:
		status, err := fm.andOr(n.Left)
		if err != nil || status != 0 {
			return status, err
		}
		return fm.andOr(n.Right)
	case *parse.Or:
		status, err := fm.andOr(n.Left)
		if err != nil || status == 0 {
			return status, err
		}
		return fm.andOr(n.Right)
	case *parse.Not:
		status, err := fm.andOr(n.Operand)
		if err != nil {
			return status, err
		}
		if status == 0 {
			status = 1
		} else {
			status = 0
		}
		fm.st.Status = status
		return status, nil
	}
	return 1, fmt.Errorf("unknown statement type %T", n)
}

// Runs statements in order and returns the status of the last one.
func (fm *Frame) body(stmts []parse.AndOr) (int, error) {
	status := 0
	for _, n := range stmts {
		var err error
		status, err = fm.andOr(n)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

func (fm *Frame) ifStmt(n *parse.If) (int, error) {
	for {
		status, err := fm.andOr(n.Cond)
		if err != nil {
			return status, err
		}
		if status == 0 {
			return fm.body(n.Then)
		}
		switch e := n.Else.(type) {
		case *parse.If:
			n = e
		case *parse.Else:
			return fm.body(e.Body)
		default:
			return 0, nil
		}
	}
}

func (fm *Frame) whileStmt(n *parse.While) (int, error) {
	status := 0
	for {
		cond, err := fm.andOr(n.Cond)
		if err != nil {
			return cond, err
		}
		if (cond == 0) == n.Negated {
			return status, nil
		}
		status, err = fm.body(n.Body)
		if err != nil {
			return status, err
		}
	}
}

// The loop variable is an environment variable, like all other variables.
func (fm *Frame) forStmt(n *parse.For) (int, error) {
	items := make([]string, len(n.Items))
	for i, item := range n.Items {
		s, err := fm.expand(item)
		if err != nil {
			return 1, err
		}
		items[i] = s
	}
	status := 0
	for _, item := range items {
		if err := os.Setenv(n.Var, item); err != nil {
			return 1, err
		}
		var err error
		status, err = fm.body(n.Body)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

func (fm *Frame) defineFunction(n *parse.Function) (int, error) {
	fm.st.Functions[n.Name] = n
	return 0, nil
}

// Calls a function with a new frame of positional arguments. The frame is
// popped even if the body fails.
func (fm *Frame) call(fn *parse.Function, args []string) (int, error) {
	fm.st.PushArgs(args)
	defer fm.st.PopArgs()
	return fm.body(fn.Body)
}
