package eval

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"src.slush.sh/pkg/parse"
)

// Evaluates an argument to a string. Arguments are never split into fields.
func (fm *Frame) expand(arg parse.Argument) (string, error) {
	switch arg := arg.(type) {
	case *parse.Literal:
		return arg.Text, nil
	case *parse.Variable:
		v, _ := fm.lookup(arg.Name)
		return v, nil
	case *parse.Concat:
		left, err := fm.expand(arg.Left)
		if err != nil {
			return "", err
		}
		right, err := fm.expand(arg.Right)
		if err != nil {
			return "", err
		}
		return left + right, nil
	case *parse.CommandSubstitution:
		return fm.substitute(arg.Source)
	case *parse.ParamExpansion:
		return fm.expandParam(arg)
	}
	return "", fmt.Errorf("unknown argument type %T", arg)
}

func (fm *Frame) expandAll(args []parse.Argument) ([]string, error) {
	words := make([]string, len(args))
	for i, arg := range args {
		s, err := fm.expand(arg)
		if err != nil {
			return nil, err
		}
		words[i] = s
	}
	return words, nil
}

func (fm *Frame) expandParam(n *parse.ParamExpansion) (string, error) {
	v, set := fm.lookup(n.Name)
	switch n.Kind {
	case parse.Length:
		return strconv.Itoa(utf8.RuneCountInString(v)), nil
	case parse.UseDefault:
		if set {
			return v, nil
		}
		return fm.expand(n.Word)
	case parse.AssignDefault:
		if set {
			return v, nil
		}
		w, err := fm.expand(n.Word)
		if err != nil {
			return "", err
		}
		if !isSpecialParam(n.Name) {
			if err := os.Setenv(n.Name, w); err != nil {
				return "", err
			}
		}
		return w, nil
	case parse.ErrorIfUnset:
		if set {
			return v, nil
		}
		msg, err := fm.expand(n.Word)
		if err != nil {
			return "", err
		}
		if msg == "" {
			msg = "parameter null or not set"
		}
		fmt.Fprintf(fm.err, "%s: %s: %s\n", fm.st.Name, n.Name, msg)
		fm.st.Exit(1)
		return "", &UnsetError{Name: n.Name, Message: msg}
	}
	return v, nil
}

// Looks up a parameter. The second return value is false when the parameter
// is unset or empty.
func (fm *Frame) lookup(name string) (string, bool) {
	st := fm.st
	switch name {
	case "0":
		return st.Name, true
	case "!":
		if n := len(st.BgJobs); n > 0 {
			return strconv.Itoa(st.BgJobs[n-1].Pid), true
		}
		return "0", true
	case "?":
		return strconv.Itoa(st.Status), true
	case "$":
		return strconv.Itoa(os.Getpid()), true
	case "@", "*":
		v := strings.Join(st.positional(), " ")
		return v, v != ""
	case "#":
		return strconv.Itoa(len(st.positional())), true
	}
	if i, err := strconv.Atoi(name); err == nil {
		args := st.positional()
		if i < 1 || i > len(args) {
			return "", false
		}
		return args[i-1], args[i-1] != ""
	}
	v := os.Getenv(name)
	return v, v != ""
}

func isSpecialParam(name string) bool {
	if name == "" {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	return strings.Contains("!?$@*#", name)
}

// Runs a command substitution in a fresh State and returns its captured
// output.
func (fm *Frame) substitute(src string) (string, error) {
	stmts, err := parse.Parse(parse.Source{Name: "[command substitution]", Code: src})
	if err != nil {
		return "", err
	}
	sub := fm.st.subshell()
	defer sub.releaseBackground()
	var sb strings.Builder
	subFm := &Frame{st: sub, in: fm.in, out: fm.out, err: fm.err, capture: &sb}
	for _, n := range stmts {
		_, err := subFm.andOr(n)
		sub.ClearForeground()
		if err != nil {
			return sb.String(), err
		}
	}
	logger.Printf("command substitution %q captured %d bytes", src, sb.Len())
	return sb.String(), nil
}
