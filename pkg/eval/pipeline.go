package eval

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/afero"

	"src.slush.sh/pkg/diag"
	"src.slush.sh/pkg/fsutil"
	"src.slush.sh/pkg/parse"
)

// A resolved pipeline stage. Exactly one of run and words is set: run for
// stages evaluated by the shell itself, words for external commands.
type stage struct {
	run   func(fm *Frame) (int, error)
	words []string
}

func noop(*Frame) (int, error) { return 0, nil }

func (fm *Frame) resolveStage(c parse.Compound) (stage, error) {
	switch c := c.(type) {
	case *parse.Command:
		return fm.resolveCommand(c)
	case *parse.If:
		return stage{run: func(fm *Frame) (int, error) { return fm.ifStmt(c) }}, nil
	case *parse.While:
		return stage{run: func(fm *Frame) (int, error) { return fm.whileStmt(c) }}, nil
	case *parse.For:
		return stage{run: func(fm *Frame) (int, error) { return fm.forStmt(c) }}, nil
	case *parse.Function:
		return stage{run: func(fm *Frame) (int, error) { return fm.defineFunction(c) }}, nil
	}
	return stage{}, fmt.Errorf("unknown command type %T", c)
}

// Applies the assignment of a command and resolves its name: builtins first,
// then functions, then external commands.
func (fm *Frame) resolveCommand(c *parse.Command) (stage, error) {
	if a := c.Assignment; a != nil {
		value, err := fm.expand(a.Value)
		if err != nil {
			return stage{}, err
		}
		if err := os.Setenv(a.Key, value); err != nil {
			return stage{}, err
		}
	}
	if c.Name == nil {
		return stage{run: noop}, nil
	}
	name, err := fm.expand(c.Name)
	if err != nil {
		return stage{}, err
	}
	if name == "" {
		return stage{run: noop}, nil
	}
	args, err := fm.expandAll(c.Args)
	if err != nil {
		return stage{}, err
	}
	if builtin, ok := fm.st.Builtins[name]; ok {
		words := append([]string{name}, args...)
		return stage{run: func(fm *Frame) (int, error) { return builtin(fm, words), nil }}, nil
	}
	if fn, ok := fm.st.Functions[name]; ok {
		return stage{run: func(fm *Frame) (int, error) { return fm.call(fn, args) }}, nil
	}
	return stage{words: append([]string{name}, args...)}, nil
}

// pipelineRun holds the resources of one pipeline evaluation.
type pipelineRun struct {
	fm *Frame
	bg bool
	plumbing
	jobs []*Job
	// The shell's copy of the read end of the pipe from the previous
	// process, if the current stage reads from one.
	prevOut *os.File
	// Redirect files, closed when all the bytes have been moved.
	redirects []afero.File
}

// Runs the stages of a pipeline left to right. External commands are started
// and left running; stages run by the shell complete before the next stage is
// resolved, and their output is buffered for the next stage.
func (fm *Frame) pipeline(n *parse.Pipeline) (int, error) {
	p := &pipelineRun{fm: fm, bg: n.Background}

	in := fm.in
	if p.bg {
		in = devNull
	}
	sink := fm.out
	var captured *bytes.Buffer
	if fm.capture != nil {
		captured = new(bytes.Buffer)
		sink = captured
	}

	var redirIn afero.File
	var redirTarget string
	// Capture takes precedence over redirecting output to a file.
	if r := n.Redirect; r != nil && (r.Mode == parse.RedirIn || captured == nil) {
		target, err := fm.expand(r.Target)
		if err != nil {
			return 1, err
		}
		f, err := fm.openRedirect(target, r.Mode)
		if err != nil {
			diag.Complainf(fm.err, "%s: %v", fm.st.Name, err)
			return 1, nil
		}
		logger.Printf("redirect %v %s", r.Mode, target)
		p.redirects = append(p.redirects, f)
		if r.Mode == parse.RedirIn {
			redirIn, redirTarget = f, target
		} else {
			sink = f
		}
	}

	status := 0
	var lastJob *Job
	last := len(n.Stages) - 1
	for i, c := range n.Stages {
		s, err := fm.resolveStage(c)
		if err != nil {
			return p.abort(1, err)
		}

		if s.run != nil {
			stageIn := in
			if i == last && redirIn != nil {
				stageIn = redirIn
			}
			if i == last {
				status, err = s.run(fm.forkStage(stageIn, sink))
				p.closePrevOut()
				if err != nil {
					return p.abort(status, err)
				}
				continue
			}
			buf := new(bytes.Buffer)
			status, err = s.run(fm.forkStage(stageIn, buf))
			p.closePrevOut()
			if err != nil {
				return p.abort(status, err)
			}
			in = buf
			continue
		}

		var stdin, stdout, next *os.File
		if i == last && redirIn != nil {
			stdin, err = p.feed(redirIn, redirTarget)
		} else {
			stdin, err = p.inputFile(in)
		}
		if err != nil {
			return p.abort(1, err)
		}
		if i == last {
			stdout, err = p.outputFile(sink)
		} else {
			next, stdout, err = os.Pipe()
			if err == nil {
				p.childSide = append(p.childSide, stdout)
			}
		}
		if err != nil {
			return p.abort(1, err)
		}
		stderr, err := p.errorFile(fm.err)
		if err != nil {
			if next != nil {
				next.Close()
			}
			return p.abort(1, err)
		}

		job, err := fm.spawn(s.words, []*os.File{stdin, stdout, stderr}, p.bg)
		p.closeChildSide()
		p.closePrevOut()
		if err != nil {
			if next != nil {
				next.Close()
			}
			return p.abort(SpawnStatus, err)
		}
		p.jobs = append(p.jobs, job)
		if i == last {
			lastJob = job
		} else {
			in, p.prevOut = next, next
		}
	}
	p.closeStderr()

	if p.bg {
		go p.finish()
		return 0, nil
	}

	err := p.g.Wait()
	if lastJob != nil {
		s, werr := lastJob.wait()
		status = s
		if err == nil {
			err = werr
		}
	}
	for _, job := range p.jobs {
		if _, werr := job.wait(); werr != nil && err == nil {
			err = werr
		}
	}
	p.closeRedirects()
	if captured != nil {
		logger.Printf("captured %d bytes", captured.Len())
		fm.capture.WriteString(strings.TrimSuffix(captured.String(), "\n"))
	}
	return status, err
}

// Waits for the goroutines of a background pipeline and releases its files.
func (p *pipelineRun) finish() {
	if err := p.g.Wait(); err != nil {
		logger.Println("background pipeline:", err)
	}
	p.closeRedirects()
}

// Cleans up after a failure midway through a pipeline. Processes that have
// been started are reaped in the foreground; with the shell's pipe ends
// closed they see end of input or a broken pipe.
func (p *pipelineRun) abort(status int, err error) (int, error) {
	p.closeChildSide()
	p.closePrevOut()
	p.closeStderr()
	if p.bg {
		go p.finish()
		return status, err
	}
	for _, job := range p.jobs {
		job.wait()
	}
	p.g.Wait()
	p.closeRedirects()
	return status, err
}

func (p *pipelineRun) closePrevOut() {
	if p.prevOut != nil {
		p.prevOut.Close()
		p.prevOut = nil
	}
}

func (p *pipelineRun) closeRedirects() {
	for _, f := range p.redirects {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Println("closing redirect:", err)
		}
	}
	p.redirects = nil
}

func (fm *Frame) openRedirect(target string, mode parse.RedirMode) (afero.File, error) {
	switch mode {
	case parse.RedirOut:
		return fm.st.FS.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	case parse.RedirAppend:
		return fm.st.FS.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	default:
		return fm.st.FS.Open(target)
	}
}

// Starts an external command and records it as a job.
func (fm *Frame) spawn(words []string, files []*os.File, bg bool) (*Job, error) {
	path, err := fsutil.SearchExecutable(words[0])
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			err = execErr.Err
		}
		return nil, &SpawnError{Name: words[0], Err: err}
	}
	proc, err := os.StartProcess(path, words, &os.ProcAttr{
		Files: files,
		Sys:   makeSysProcAttr(bg),
	})
	if err != nil {
		return nil, &SpawnError{Name: words[0], Err: err}
	}
	logger.Printf("spawned %v, pid %d, background %v", words, proc.Pid, bg)

	job := &Job{Pid: proc.Pid, Cmd: words, proc: proc}
	if bg {
		fm.st.BgJobs = append(fm.st.BgJobs, job)
	} else {
		fm.st.FgJobs = append(fm.st.FgJobs, job)
	}
	return job, nil
}
