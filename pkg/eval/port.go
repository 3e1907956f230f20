package eval

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Size of the chunks in which a file redirected with '<' is fed to a process.
const redirectChunkSize = 4096

// devNull is the input of background pipelines.
var devNull = getDevNull()

func getDevNull() *os.File {
	f, err := os.Open(os.DevNull)
	if err != nil {
		fmt.Fprintf(os.Stderr,
			"cannot open %s, shell might not function normally\n", os.DevNull)
	}
	return f
}

// syncWriter serializes writes to a stream shared by the shell and the
// goroutines draining processes.
type syncWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (w syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// Wraps w in a syncWriter locked by mu, unless it is a file, which processes
// write to directly.
func lockWriter(mu *sync.Mutex, w io.Writer) io.Writer {
	switch w.(type) {
	case nil:
		return io.Discard
	case *os.File, syncWriter:
		return w
	}
	return syncWriter{mu, w}
}

// plumbing connects the processes of a pipeline to streams that are not
// files. Bytes are moved by goroutines: output drains and the '<' feeder run
// in an errgroup that is joined before exit statuses are reported.
type plumbing struct {
	g errgroup.Group
	// The shell's copies of files handed to the next process; closed once it
	// has started.
	childSide []*os.File
	// Shared by all processes of the pipeline, so that only one goroutine
	// writes to the error stream.
	stderr *os.File
}

// Returns a file a process can read r from.
func (pl *plumbing) inputFile(r io.Reader) (*os.File, error) {
	switch r := r.(type) {
	case nil:
		return devNull, nil
	case *os.File:
		return r, nil
	}
	rd, wr, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	pl.childSide = append(pl.childSide, rd)
	// Not joined: the process may exit without reading all its input, and r
	// may block.
	go func() {
		defer wr.Close()
		if _, err := io.Copy(wr, r); err != nil && !errors.Is(err, syscall.EPIPE) {
			logger.Println("copying input:", err)
		}
	}()
	return rd, nil
}

// Returns a file a process can write w through.
func (pl *plumbing) outputFile(w io.Writer) (*os.File, error) {
	if f, ok := w.(*os.File); ok {
		return f, nil
	}
	rd, wr, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	pl.childSide = append(pl.childSide, wr)
	pl.g.Go(func() (err error) {
		defer rd.Close()
		defer recoverPanic(&err)
		_, err = io.Copy(w, rd)
		return err
	})
	return wr, nil
}

func (pl *plumbing) errorFile(w io.Writer) (*os.File, error) {
	if pl.stderr != nil {
		return pl.stderr, nil
	}
	if f, ok := w.(*os.File); ok {
		return f, nil
	}
	rd, wr, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	pl.stderr = wr
	pl.g.Go(func() (err error) {
		defer rd.Close()
		defer recoverPanic(&err)
		_, err = io.Copy(w, rd)
		return err
	})
	return wr, nil
}

// Streams f into a pipe whose read end is returned, in chunks of
// redirectChunkSize. Failing to write is an error of the pipeline.
func (pl *plumbing) feed(f afero.File, target string) (*os.File, error) {
	rd, wr, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	pl.childSide = append(pl.childSide, rd)
	pl.g.Go(func() (err error) {
		defer wr.Close()
		defer recoverPanic(&err)
		buf := make([]byte, redirectChunkSize)
		for {
			n, rerr := f.Read(buf)
			if n > 0 {
				if _, werr := wr.Write(buf[:n]); werr != nil {
					return &RedirectError{target, werr}
				}
			}
			if rerr == io.EOF {
				return nil
			} else if rerr != nil {
				return &RedirectError{target, rerr}
			}
		}
	})
	return rd, nil
}

func (pl *plumbing) closeChildSide() {
	for _, f := range pl.childSide {
		f.Close()
	}
	pl.childSide = pl.childSide[:0]
}

// Closes the shared error pipe, after which the error drain can finish.
func (pl *plumbing) closeStderr() {
	if pl.stderr != nil {
		pl.stderr.Close()
		pl.stderr = nil
	}
}

func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic while copying: %v", r)
	}
}
