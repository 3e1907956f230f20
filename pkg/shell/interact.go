package shell

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"src.slush.sh/pkg/diag"
	"src.slush.sh/pkg/eval"
	"src.slush.sh/pkg/fsutil"
	"src.slush.sh/pkg/parse"
	"src.slush.sh/pkg/sys"
)

// InteractiveRescueShell determines whether a panic results in a rescue shell
// being launched. It should be set to false by interactive mode unit tests.
var interactiveRescueShell = true

// Configuration for the interactive mode.
type interactCfg struct {
	Config Config
	// Set when a child process may have exited.
	Children *sys.ChildNotifier
}

// Interactive mode panic handler. Requests to exit are passed on.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(exitRequest); ok {
		panic(r)
	}
	println()
	print(sys.DumpStack())
	println()
	fmt.Println(r)
	println("\nExecing recovery shell /bin/sh")
	syscall.Exec("/bin/sh", []string{"/bin/sh"}, os.Environ())
}

// Runs an interactive shell session. Prompts and the greeting are only shown
// when stdin is a terminal.
func interact(st *eval.State, fds [3]*os.File, cfg *interactCfg) {
	if interactiveRescueShell {
		defer handlePanic()
	}
	tty := sys.IsATTY(fds[0].Fd())
	ed := newLineEditor(fds[0], fds[1], tty)
	if tty && cfg.Config.Greeting != "" {
		fmt.Fprintln(fds[1], cfg.Config.Greeting)
	}

	cmdNum := 0
	for {
		cmdNum++
		if cfg.Children.Take() {
			st.PruneJobs()
		}

		code, err := ed.ReadCode(expandPrompt(cfg.Config.Prompt, st.Status))
		if err != nil && err != io.EOF {
			fmt.Fprintln(fds[2], "Editor error:", err)
			return
		}
		if strings.TrimSpace(code) != "" {
			evalCode(st, fds[2],
				parse.Source{Name: fmt.Sprintf("[tty %v]", cmdNum), Code: code})
		}
		if err == io.EOF {
			if tty {
				fmt.Fprintln(fds[1])
			}
			return
		}
	}
}

// Evaluates code, reporting errors and forgetting foreground jobs.
func evalCode(st *eval.State, stderr io.Writer, src parse.Source) {
	_, err := st.EvalCode(src)
	st.ClearForeground()
	if err != nil {
		diag.ShowError(stderr, err)
	}
}

func expandPrompt(prompt string, status int) string {
	return strings.NewReplacer(
		"{status}", strconv.Itoa(status),
		"{pwd}", fsutil.Getwd(),
	).Replace(prompt)
}
