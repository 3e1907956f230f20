package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pborman/getopt/v2"

	"src.slush.sh/pkg/diag"
	"src.slush.sh/pkg/fsutil"
	"src.slush.sh/pkg/parse"
)

func builtins() map[string]Builtin {
	return map[string]Builtin{
		"cd":      cd,
		"exit":    exit,
		"astview": astview,
		"jobs":    jobs,
		"true":    func(*Frame, []string) int { return 0 },
		"false":   func(*Frame, []string) int { return 1 },
		"help":    help,
	}
}

const helpText = `slush: A shell you can drink!

Builtins:
  cd <dir> - change directory
  exit [code] - exit the shell, optionally with a code
  astview '<command>' - view the abstract syntax tree of a command
  jobs [-p|-l] - list background jobs
  true - return 0
  false - return 1
  help - print this message
`

// BuiltinUsage returns the line of the help message that describes the named
// builtin.
func BuiltinUsage(name string) (string, bool) {
	if _, ok := builtins()[name]; !ok {
		return "", false
	}
	for _, line := range strings.Split(helpText, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, name+" ") {
			return line, true
		}
	}
	return "", false
}

func help(fm *Frame, _ []string) int {
	fmt.Fprint(fm.Stdout(), helpText)
	return 0
}

func cd(fm *Frame, args []string) int {
	var dir string
	switch len(args) {
	case 1:
		home, err := fsutil.GetHome("")
		if err != nil {
			diag.Complainf(fm.Stderr(), "cd: %v", err)
			return 1
		}
		dir = home
	case 2:
		dir = args[1]
	default:
		diag.Complain(fm.Stderr(), "cd: too many arguments")
		return 1
	}
	if err := fm.State().Chdir(dir); err != nil {
		diag.Complainf(fm.Stderr(), "cd: %v", err)
		return 1
	}
	return 0
}

// A code that is not a number exits with 0.
func exit(fm *Frame, args []string) int {
	code := 0
	if len(args) > 1 {
		if i, err := strconv.Atoi(args[1]); err == nil {
			code = i
		}
	}
	logger.Println("exit", code)
	fm.State().Exit(code)
	return code
}

func astview(fm *Frame, args []string) int {
	code := strings.Join(args[1:], " ")
	stmts, err := parse.Parse(parse.Source{Name: "[astview]", Code: code})
	if err != nil {
		diag.ShowError(fm.Stderr(), err)
		return 1
	}
	parse.PPrint(fm.Stdout(), stmts)
	return 0
}

func jobs(fm *Frame, args []string) int {
	opts := getopt.New()
	pids := opts.Bool('p', "list process IDs only")
	long := opts.Bool('l', "list process IDs along with the usual information")
	if err := opts.Getopt(args, nil); err != nil || opts.NArgs() > 0 {
		diag.Complainf(fm.Stderr(), "invalid option `%s`", invalidOption(args[1:]))
		return 1
	}
	switch {
	case *long:
		diag.Complain(fm.Stderr(), "The option `-l` is not supported at the moment")
		return 1
	case *pids:
		for _, job := range fm.State().BgJobs {
			fmt.Fprintln(fm.Stdout(), job.Pid)
		}
	default:
		for i, job := range fm.State().BgJobs {
			fmt.Fprintf(fm.Stdout(), "[%d] %s %s\n", i+1, job.Status(), job)
		}
	}
	return 0
}

// Finds the first argument that is neither -p nor -l, or a combination of them.
func invalidOption(args []string) string {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") || len(arg) == 1 {
			return arg
		}
		for _, r := range arg[1:] {
			if r != 'p' && r != 'l' {
				return "-" + string(r)
			}
		}
	}
	return strings.Join(args, " ")
}
