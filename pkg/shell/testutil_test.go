package shell

import (
	"io"
	"testing"

	"github.com/fatih/color"

	"src.slush.sh/pkg/logutil"
	"src.slush.sh/pkg/prog/progtest"
	"src.slush.sh/pkg/testutil"
)

var (
	Test      = progtest.Test
	ThatSlush = progtest.ThatSlush
)

// Runs the test in a temporary directory with an empty home and config
// directory, and without colors or rescue shells.
func setup(t *testing.T) string {
	t.Helper()
	testutil.Set(t, &color.NoColor, true)
	testutil.Set(t, &interactiveRescueShell, false)
	dir := testutil.InTempDir(t)
	testutil.Setenv(t, "HOME", dir)
	testutil.Unsetenv(t, "XDG_CONFIG_HOME")
	t.Cleanup(func() { logutil.SetOutput(io.Discard) })
	return dir
}
