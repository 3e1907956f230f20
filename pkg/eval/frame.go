package eval

import (
	"io"
	"strings"
)

// Frame is the context a piece of code runs in: the session state and the
// streams of the pipeline stage it belongs to.
type Frame struct {
	st  *State
	in  io.Reader
	out io.Writer
	err io.Writer
	// When non-nil, the output of each pipeline has one trailing newline
	// removed and is appended here instead of going to out.
	capture *strings.Builder
}

// State returns the session state.
func (fm *Frame) State() *State { return fm.st }

// Stdin returns the input of the frame.
func (fm *Frame) Stdin() io.Reader { return fm.in }

// Stdout returns the output of the frame.
func (fm *Frame) Stdout() io.Writer { return fm.out }

// Stderr returns the error output of the frame.
func (fm *Frame) Stderr() io.Writer { return fm.err }

// Returns a Frame for a stage that is run inside the shell, with the given
// streams. Output capture does not carry over; the caller collects the
// stage's output.
func (fm *Frame) forkStage(in io.Reader, out io.Writer) *Frame {
	return &Frame{st: fm.st, in: in, out: out, err: fm.err}
}
