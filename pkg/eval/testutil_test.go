package eval

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"src.slush.sh/pkg/parse"
	"src.slush.sh/pkg/testutil"
)

// A State wired to buffers, an in-memory file system and a recording exit
// hook.
type fixture struct {
	st       *State
	out, err *bytes.Buffer
	fs       afero.Fs
	exits    []int
}

func setup(t *testing.T, vars ...string) *fixture {
	t.Helper()
	testutil.Set(t, &color.NoColor, true)
	for _, name := range vars {
		testutil.Unsetenv(t, name)
	}
	f := &fixture{out: new(bytes.Buffer), err: new(bytes.Buffer), fs: afero.NewMemMapFs()}
	f.st = NewState(strings.NewReader(""), f.out, f.err)
	f.st.FS = f.fs
	f.st.Exit = func(code int) { f.exits = append(f.exits, code) }
	t.Cleanup(func() { reapBackground(f.st) })
	return f
}

// Runs code and fails the test if evaluation returns an error.
func (f *fixture) run(t *testing.T, code string) int {
	t.Helper()
	status, err := f.eval(code)
	require.NoError(t, err, "code: %s", code)
	return status
}

func (f *fixture) eval(code string) (int, error) {
	return f.st.EvalCode(parse.Source{Name: "[test]", Code: code})
}

func reapBackground(st *State) {
	for _, job := range st.BgJobs {
		if !job.poll() {
			job.proc.Kill()
			job.wait()
		}
	}
	st.BgJobs = nil
}
