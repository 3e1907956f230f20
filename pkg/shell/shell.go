// Package shell is the entry point for the terminal interface of slush.
package shell

import (
	"fmt"
	"os"
	"strconv"

	"src.slush.sh/pkg/env"
	"src.slush.sh/pkg/eval"
	"src.slush.sh/pkg/logutil"
	"src.slush.sh/pkg/prog"
	"src.slush.sh/pkg/sys"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram. It is always suitable and should be the
// last program in a composite.
type Program struct{}

func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) (err error) {
	st := eval.NewState(fds[0], fds[1], fds[2])
	// Unwinds evaluation when exit is called; see exitRequest.
	st.Exit = requestExit
	defer func() {
		if r := recover(); r != nil {
			req, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			logger.Println("exit requested with", req.code)
			err = prog.Exit(req.code)
		}
	}()

	restoreSHLVL := incSHLVL()
	defer restoreSHLVL()
	var children sys.ChildNotifier
	cleanup := initSignal(fds[2], &children)
	defer cleanup()

	if len(args) > 0 {
		exit := script(st, fds, args, &scriptCfg{
			Cmd: f.CodeInArg, CompileOnly: f.CompileOnly, JSON: f.JSON})
		return prog.Exit(exit)
	}
	if f.CodeInArg {
		return prog.BadUsage("-c requires an argument")
	}

	cfg := defaultConfig()
	if !f.NoRc {
		cfg = loadRC(st, fds[2], f.RC)
		if cfg.Log != "" && f.Log == "" {
			if err := logutil.SetOutputFile(cfg.Log); err != nil {
				fmt.Fprintln(fds[2], "Warning:", err)
			}
		}
	}
	interact(st, fds, &interactCfg{Config: cfg, Children: &children})
	return nil
}

// exitRequest is the panic value used to unwind a running evaluation when
// the exit builtin or ${name:?message} terminates the shell. Program.Run
// recovers it and turns it into the exit status of the program.
type exitRequest struct{ code int }

func requestExit(code int) { panic(exitRequest{code}) }

func incSHLVL() func() {
	oldValue, hadValue := os.LookupEnv(env.SHLVL)
	i, err := strconv.Atoi(oldValue)
	if err != nil {
		i = 0
	}
	os.Setenv(env.SHLVL, strconv.Itoa(i+1))

	if hadValue {
		return func() { os.Setenv(env.SHLVL, oldValue) }
	}
	return func() { os.Unsetenv(env.SHLVL) }
}
