package parse

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

var pprintTests = []struct {
	name string
	code string
}{
	{"pipeline", `A=1 echo $HOME/bin "x $Y" | wc -l > out &`},
	{"andor", "! a && b || c"},
	{"control", `if test -n "$X"; then
  echo ${X:-none}
elif false; then
  echo $(pwd)
else
  for i in a b; do echo $i; done
fi
until false; do break; done
f() { echo ${#1}; }
`},
}

func TestPPrint(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff))
	for _, test := range pprintTests {
		t.Run(test.name, func(t *testing.T) {
			stmts, err := Parse(Source{Name: "[test]", Code: test.code})
			if err != nil {
				t.Fatalf("Parse(%q) returns error: %v", test.code, err)
			}
			g.Assert(t, test.name, []byte(Sprint(stmts)))
		})
	}
}
