// Package eval evaluates slush statements.
//
// A State holds everything that outlives a single statement: functions,
// positional arguments, jobs and the last exit status. Statements are
// evaluated one at a time with State.Eval; evaluation itself is sequential,
// and the only concurrency comes from external processes and the goroutines
// that move bytes between them and non-file streams.
package eval

import (
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"

	"src.slush.sh/pkg/fsutil"
	"src.slush.sh/pkg/logutil"
	"src.slush.sh/pkg/parse"
)

var logger = logutil.GetLogger("[eval] ")

// Builtin is a command implemented inside the shell. The args include the
// command name.
type Builtin func(fm *Frame, args []string) int

// State is the state of a shell session.
type State struct {
	// Name is the value of $0.
	Name string

	Builtins  map[string]Builtin
	Functions map[string]*parse.Function
	// Args is the stack of positional arguments. Calling a function pushes a
	// frame; the top frame backs $1, $@, $# and friends.
	Args [][]string

	// Jobs started by the current statement. The caller clears them with
	// ClearForeground after each statement.
	FgJobs []*Job
	// Jobs started in the background, until PruneJobs sees them exit.
	BgJobs []*Job

	// Status is the exit status of the last pipeline, the value of $?.
	Status int

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// FS is used to open redirect targets.
	FS afero.Fs
	// Chdir is called by the cd builtin.
	Chdir func(dir string) error
	// Exit is called by the exit builtin and ${name:?message}.
	Exit func(code int)

	// Serializes writes to Stdout and Stderr when they are not files.
	mu sync.Mutex
}

// NewState creates a State with the builtins and the OS collaborators.
func NewState(stdin io.Reader, stdout, stderr io.Writer) *State {
	return &State{
		Name:      "slush",
		Builtins:  builtins(),
		Functions: make(map[string]*parse.Function),
		Stdin:     stdin,
		Stdout:    stdout,
		Stderr:    stderr,
		FS:        afero.NewOsFs(),
		Chdir:     fsutil.Chdir,
		Exit:      os.Exit,
	}
}

// Returns a fresh State for a command substitution. It shares the
// collaborators of st but nothing else.
func (st *State) subshell() *State {
	sub := NewState(st.Stdin, st.Stdout, st.Stderr)
	sub.Name = st.Name
	sub.FS = st.FS
	sub.Chdir = st.Chdir
	sub.Exit = st.Exit
	return sub
}

// Reaps the background jobs of a State that is being dropped, once they exit.
func (st *State) releaseBackground() {
	for _, job := range st.BgJobs {
		go func(job *Job) {
			if _, err := job.wait(); err != nil {
				logger.Println("reaping", job, err)
			}
		}(job)
	}
	st.BgJobs = nil
}

// Eval evaluates a statement and returns its exit status. The error is
// non-nil when evaluation could not complete, for example when writing to a
// process failed.
func (st *State) Eval(n parse.AndOr) (int, error) {
	return st.topFrame().andOr(n)
}

// EvalCode parses and evaluates code, returning the status of the last
// statement. A parse error is returned before anything is evaluated.
func (st *State) EvalCode(src parse.Source) (int, error) {
	stmts, err := parse.Parse(src)
	if err != nil {
		return 2, err
	}
	status := 0
	for _, n := range stmts {
		status, err = st.Eval(n)
		st.ClearForeground()
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

func (st *State) topFrame() *Frame {
	return &Frame{st: st, in: st.Stdin,
		out: lockWriter(&st.mu, st.Stdout), err: lockWriter(&st.mu, st.Stderr)}
}

// ClearForeground forgets the jobs of the last statement.
func (st *State) ClearForeground() {
	st.FgJobs = nil
}

// PruneJobs removes background jobs that have exited.
func (st *State) PruneJobs() {
	alive := st.BgJobs[:0]
	for _, job := range st.BgJobs {
		if job.poll() {
			logger.Printf("job %d (%v) finished: %s", job.Pid, job.Cmd, job.Status())
			continue
		}
		alive = append(alive, job)
	}
	for i := len(alive); i < len(st.BgJobs); i++ {
		st.BgJobs[i] = nil
	}
	st.BgJobs = alive
}

func (st *State) positional() []string {
	if len(st.Args) == 0 {
		return nil
	}
	return st.Args[len(st.Args)-1]
}

// PushArgs pushes a frame of positional arguments.
func (st *State) PushArgs(args []string) {
	st.Args = append(st.Args, args)
}

// PopArgs pops the top frame of positional arguments.
func (st *State) PopArgs() {
	st.Args = st.Args[:len(st.Args)-1]
}
