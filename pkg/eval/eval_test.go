package eval

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.slush.sh/pkg/parse"
	"src.slush.sh/pkg/testutil"
)

var evalTests = []struct {
	name   string
	code   string
	status int
	out    string
}{
	{"external command", "echo hello world", 0, "hello world\n"},
	{"empty statement list", "", 0, ""},
	{"sequence", "echo a; echo b", 0, "a\nb\n"},
	{"status of last statement", "true; false", 1, ""},

	{"and runs right side on success", "true && echo yes", 0, "yes\n"},
	{"and skips right side on failure", "false && echo no", 1, ""},
	{"or skips right side on success", "true || echo no", 0, ""},
	{"or runs right side on failure", "false || echo yes", 0, "yes\n"},
	{"and binds left to right", "false && echo no || echo yes", 0, "yes\n"},
	{"skipped assignment", `false && X=set; echo "[$X]"`, 0, "[]\n"},
	{"not", "! false", 0, ""},
	{"not on success", "! true", 1, ""},
	{"status variable", "false; echo $?", 0, "1\n"},
	{"status variable after not", "! false; echo $?", 0, "0\n"},

	{"if", "if true; then echo a; fi", 0, "a\n"},
	{"if without match", "if false; then echo a; fi", 0, ""},
	{"elif", "if false; then echo a; elif true; then echo b; else echo c; fi", 0, "b\n"},
	{"else", "if false; then echo a; elif false; then echo b; else echo c; fi", 0, "c\n"},
	{"while", `while [ -z "$N" ]; do N=x; echo loop; done`, 0, "loop\n"},
	{"until", `until [ -n "$N" ]; do N=y; done; echo $N`, 0, "y\n"},
	{"for", "for i in a b c; do echo $i; done", 0, "a\nb\nc\n"},
	{"for with empty body status", "for i in a; do false; done", 1, ""},

	{"function", "f() { echo $1-$#; }; f a b", 0, "a-2\n"},
	{"function keyword", "function g { echo $*; }; g x y", 0, "x y\n"},
	{"function status", "f() { false; }; f", 1, ""},
	{"nested calls restore arguments", "f() { echo $1; }; g() { f inner; echo $1; }; g outer", 0, "inner\nouter\n"},

	{"assignment", "X=1; echo $X", 0, "1\n"},
	{"assignment with command", "X=2 true; echo $X", 0, "2\n"},
	{"quoted argument is one word", `X="a  b"; printf '[%s]' $X`, 0, "[a  b]"},
	{"unset variable", `echo "[$X]"`, 0, "[]\n"},
	{"default", "echo ${X:-d}", 0, "d\n"},
	{"default of set variable", "X=v; echo ${X:-d}", 0, "v\n"},
	{"assign default", "echo ${X:=d}; echo $X", 0, "d\nd\n"},
	{"length", "X=héllo; echo ${#X}", 0, "5\n"},
	{"length of unset", "echo ${#X}", 0, "0\n"},
	{"braced", "X=a; echo ${X}b", 0, "ab\n"},
	{"argument count outside functions", "echo $#", 0, "0\n"},
	{"shell name", "echo $0", 0, "slush\n"},

	{"command substitution", "echo $(echo hi)", 0, "hi\n"},
	{"backquotes", "echo `echo hi`", 0, "hi\n"},
	{"adjacent substitutions", "echo $(echo a)$(echo b)", 0, "ab\n"},
	{"one newline is trimmed", `printf '[%s]' "$(printf 'x\n\n')"`, 0, "[x\n]"},
	{"each pipeline is trimmed", "echo $(echo a; echo b)", 0, "ab\n"},
	{"substitution of builtin", "echo $(help | head -n 1)", 0, "slush: A shell you can drink!\n"},
	{"substitution of pipeline", "echo $(echo abc | tr a-z A-Z)", 0, "ABC\n"},
	{"nested substitution", "echo $(echo $(echo deep))", 0, "deep\n"},
	{"substitution in loop", "for i in $(echo a) b; do echo $i; done", 0, "a\nb\n"},
	{"substitution does not see functions", "f() { echo f; }; echo $(f || echo none)", 0, "none\n"},
}

func TestEval(t *testing.T) {
	for _, test := range evalTests {
		t.Run(test.name, func(t *testing.T) {
			f := setup(t, "X", "N", "i")
			status := f.run(t, test.code)
			assert.Equal(t, test.status, status)
			assert.Equal(t, test.out, f.out.String())
		})
	}
}

func TestEval_StatusIsRecorded(t *testing.T) {
	f := setup(t)
	f.run(t, "false")
	assert.Equal(t, 1, f.st.Status)
	f.run(t, "! false")
	assert.Equal(t, 0, f.st.Status)
}

func TestEval_ForSetsVariableToLastItem(t *testing.T) {
	f := setup(t, "i")
	f.run(t, "for i in a b; do true; done")
	assert.Equal(t, "b", os.Getenv("i"))
}

func TestEval_FunctionIsDefinedInState(t *testing.T) {
	f := setup(t)
	f.run(t, "greet() { echo hi; }")
	require.Contains(t, f.st.Functions, "greet")
	assert.Empty(t, f.st.Args)
}

func TestEval_FunctionsShadowExternalCommands(t *testing.T) {
	f := setup(t)
	f.run(t, "echo() { printf 'shadowed\n'; }; echo hi")
	assert.Equal(t, "shadowed\n", f.out.String())
}

func TestEval_BuiltinsShadowFunctions(t *testing.T) {
	f := setup(t)
	status := f.run(t, "true() { return-value; }; true")
	assert.Equal(t, 0, status)
	assert.Empty(t, f.err.String())
}

func TestEval_ErrorIfUnset(t *testing.T) {
	f := setup(t, "Z")
	status, err := f.eval("echo ${Z:?oops}; echo after")

	var unset *UnsetError
	require.ErrorAs(t, err, &unset)
	assert.Equal(t, "Z", unset.Name)
	assert.Equal(t, "oops", unset.Message)
	assert.NotEqual(t, 0, status)
	assert.Equal(t, []int{1}, f.exits)
	assert.Contains(t, f.err.String(), "slush: Z: oops")
	assert.Empty(t, f.out.String())
}

func TestEval_ErrorIfUnsetDefaultMessage(t *testing.T) {
	f := setup(t, "Z")
	_, err := f.eval("echo ${Z:?}")
	require.Error(t, err)
	assert.Contains(t, f.err.String(), "slush: Z: parameter null or not set")
}

func TestEval_ErrorIfUnsetWithValue(t *testing.T) {
	f := setup(t, "Z")
	f.run(t, "Z=ok; echo ${Z:?oops}")
	assert.Equal(t, "ok\n", f.out.String())
	assert.Empty(t, f.exits)
}

func TestEval_PositionalArguments(t *testing.T) {
	f := setup(t)
	f.st.PushArgs([]string{"one", "", "three"})
	f.run(t, `echo $1 $# "$@" "[${2:-empty}]" "[$4]"`)
	assert.Equal(t, "one 3 one  three [empty] []\n", f.out.String())
}

func TestEval_LastBackgroundPid(t *testing.T) {
	f := setup(t)
	f.run(t, "echo $!")
	assert.Equal(t, "0\n", f.out.String())
}

func TestEvalCode_ParseError(t *testing.T) {
	f := setup(t)
	status, err := f.eval("echo a; echo )")
	assert.Equal(t, 2, status)
	assert.NotEmpty(t, parse.UnpackErrors(err))
	assert.Empty(t, f.out.String(), "nothing runs before a parse error is reported")
}

func TestEval_SubstitutionParseError(t *testing.T) {
	f := setup(t)
	_, err := f.eval("echo $(fi)")
	require.Error(t, err)
	assert.Empty(t, f.out.String())
}

func TestEvalCode_ClearsForegroundJobs(t *testing.T) {
	f := setup(t)
	f.run(t, "echo x | cat")
	assert.Empty(t, f.st.FgJobs)
}

func TestEval_SubstitutionReapsBackgroundJobs(t *testing.T) {
	f := setup(t)
	f.run(t, "echo $(sleep 0.1 & echo $!)")
	pid, err := strconv.Atoi(strings.TrimSpace(f.out.String()))
	require.NoError(t, err)

	assert.Empty(t, f.st.BgJobs, "jobs of a substitution stay out of the parent")
	// A zombie still accepts signal 0; a reaped process is gone.
	gone := testutil.WaitUntil(5*time.Second, func() bool {
		return errors.Is(syscall.Kill(pid, 0), syscall.ESRCH)
	})
	assert.True(t, gone, "background process %d was not reaped", pid)
}
