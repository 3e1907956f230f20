package buildinfo

import (
	"fmt"
	"runtime"
	"testing"

	. "src.slush.sh/pkg/prog/progtest"
	"src.slush.sh/pkg/testutil"
)

func TestProgram(t *testing.T) {
	testutil.Set(t, &VersionSuffix, "-test")
	testutil.Set(t, &Reproducible, "true")

	Test(t, Program,
		ThatSlush("-version").WritesStdout(Version+"-test\n"),
		ThatSlush("-version", "-json").WritesStdout(Version+"-test\n"),

		ThatSlush("-buildinfo").WritesStdout(
			fmt.Sprintf(
				"Version: %v-test\nGo version: %v\nReproducible build: true\n",
				Version, runtime.Version())),
		ThatSlush("-buildinfo", "-json").WritesStdout(
			fmt.Sprintf(
				`{"version":"%v-test","goversion":"%v","reproducible":true}`+"\n",
				Version, runtime.Version())),

		ThatSlush().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestQuoteJSON(t *testing.T) {
	if got := quoteJSON(`a"b`); got != `"a\"b"` {
		t.Errorf("quoteJSON returned %s", got)
	}
}
