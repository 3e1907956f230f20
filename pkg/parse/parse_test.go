package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.slush.sh/pkg/diag"
)

func lit(s string) *Literal    { return &Literal{s} }
func vr(name string) *Variable { return &Variable{name} }

func cmd(name string, args ...Argument) *Command {
	return &Command{Name: lit(name), Args: args}
}

func pipe(stages ...Compound) *Pipeline { return &Pipeline{Stages: stages} }

func stmt(stages ...Compound) []AndOr { return []AndOr{pipe(stages...)} }

var parseTests = []struct {
	name string
	code string
	want []AndOr
}{
	{name: "empty", code: "", want: nil},
	{name: "only separators", code: " ;\n ; # nothing\n", want: nil},
	{
		name: "simple command",
		code: "echo hi there",
		want: stmt(cmd("echo", lit("hi"), lit("there"))),
	},
	{
		name: "several statements",
		code: "a; b\nc",
		want: []AndOr{pipe(cmd("a")), pipe(cmd("b")), pipe(cmd("c"))},
	},
	{
		name: "comments",
		code: "# leading\necho x # trailing\n",
		want: stmt(cmd("echo", lit("x"))),
	},
	{
		name: "pipeline",
		code: "a | b |\n c",
		want: stmt(cmd("a"), cmd("b"), cmd("c")),
	},
	{
		name: "and-or is left-associative",
		code: "a && b || c",
		want: []AndOr{&Or{&And{pipe(cmd("a")), pipe(cmd("b"))}, pipe(cmd("c"))}},
	},
	{
		name: "newline after operator",
		code: "a &&\n  b",
		want: []AndOr{&And{pipe(cmd("a")), pipe(cmd("b"))}},
	},
	{
		name: "negation applies to a pipeline",
		code: "! a | b",
		want: []AndOr{&Not{pipe(cmd("a"), cmd("b"))}},
	},
	{
		name: "background",
		code: "sleep 1 &",
		want: []AndOr{&Pipeline{Stages: []Compound{cmd("sleep", lit("1"))}, Background: true}},
	},
	{
		name: "redirect out",
		code: "a | b > out",
		want: []AndOr{&Pipeline{
			Stages:   []Compound{cmd("a"), cmd("b")},
			Redirect: &Redirect{Target: lit("out"), Mode: RedirOut, FD: 1},
		}},
	},
	{
		name: "redirect append",
		code: "echo x >>log",
		want: []AndOr{&Pipeline{
			Stages:   []Compound{cmd("echo", lit("x"))},
			Redirect: &Redirect{Target: lit("log"), Mode: RedirAppend, FD: 1},
		}},
	},
	{
		name: "redirect in",
		code: "wc -l < $F &",
		want: []AndOr{&Pipeline{
			Stages:     []Compound{cmd("wc", lit("-l"))},
			Redirect:   &Redirect{Target: vr("F"), Mode: RedirIn, FD: 0},
			Background: true,
		}},
	},
	{
		name: "bare assignment",
		code: "X=1",
		want: stmt(&Command{Assignment: &Assignment{Key: "X", Value: lit("1")}}),
	},
	{
		name: "assignment with empty value",
		code: "X= env",
		want: stmt(&Command{
			Assignment: &Assignment{Key: "X", Value: lit("")},
			Name:       lit("env"),
		}),
	},
	{
		name: "assignment before command",
		code: "A=a=b echo $A",
		want: stmt(&Command{
			Assignment: &Assignment{Key: "A", Value: lit("a=b")},
			Name:       lit("echo"),
			Args:       []Argument{vr("A")},
		}),
	},
	{
		name: "equal sign in argument",
		code: "echo X=1",
		want: stmt(cmd("echo", lit("X=1"))),
	},
	{
		name: "quotes are joined into one literal",
		code: `echo a'b c'"d"`,
		want: stmt(cmd("echo", lit("ab cd"))),
	},
	{
		name: "empty double quotes",
		code: `echo ""`,
		want: stmt(cmd("echo", lit(""))),
	},
	{
		name: "variable followed by text",
		code: "echo $HOME/bin pre$X",
		want: stmt(cmd("echo",
			&Concat{vr("HOME"), lit("/bin")},
			&Concat{lit("pre"), vr("X")})),
	},
	{
		name: "special variables",
		code: "echo $? $# $1 $@ $* $! $$",
		want: stmt(cmd("echo",
			vr("?"), vr("#"), vr("1"), vr("@"), vr("*"), vr("!"), vr("$"))),
	},
	{
		name: "positional parameter takes one digit",
		code: "echo $12",
		want: stmt(cmd("echo", &Concat{vr("1"), lit("2")})),
	},
	{
		name: "lone dollar",
		code: "echo $ a$",
		want: stmt(cmd("echo", lit("$"), lit("a$"))),
	},
	{
		name: "parameter expansions",
		code: "echo ${X} ${#X} ${X:-d} ${X:=d} ${X:?unset}",
		want: stmt(cmd("echo",
			&ParamExpansion{Kind: Plain, Name: "X"},
			&ParamExpansion{Kind: Length, Name: "X"},
			&ParamExpansion{Kind: UseDefault, Name: "X", Word: lit("d")},
			&ParamExpansion{Kind: AssignDefault, Name: "X", Word: lit("d")},
			&ParamExpansion{Kind: ErrorIfUnset, Name: "X", Word: lit("unset")})),
	},
	{
		name: "quotes are removed from expansion word",
		code: `echo ${X:-"a b"}`,
		want: stmt(cmd("echo",
			&ParamExpansion{Kind: UseDefault, Name: "X", Word: lit("a b")})),
	},
	{
		name: "expansion word with variable",
		code: `echo ${X:-$HOME}`,
		want: stmt(cmd("echo",
			&ParamExpansion{Kind: UseDefault, Name: "X", Word: vr("HOME")})),
	},
	{
		name: "command substitution",
		code: "echo $(ls | wc -l) `pwd`",
		want: stmt(cmd("echo",
			&CommandSubstitution{"ls | wc -l"}, &CommandSubstitution{"pwd"})),
	},
	{
		name: "nested command substitution",
		code: "echo $(echo $(pwd))",
		want: stmt(cmd("echo", &CommandSubstitution{"echo $(pwd)"})),
	},
	{
		name: "variable inside double quotes",
		code: `echo "a $Y b"`,
		want: stmt(cmd("echo", &Concat{&Concat{lit("a "), vr("Y")}, lit(" b")})),
	},
	{
		name: "substitutions inside double quotes",
		code: `echo "$(ls -l)${Z:-z}"`,
		want: stmt(cmd("echo", &Concat{
			&CommandSubstitution{"ls -l"},
			&ParamExpansion{Kind: UseDefault, Name: "Z", Word: lit("z")}})),
	},
	{
		name: "escapes inside double quotes",
		code: `echo "\$X \"q\" \n"`,
		want: stmt(cmd("echo", lit(`$X "q" \n`))),
	},
	{
		name: "escaped characters outside quotes",
		code: `echo \$X a\ b`,
		want: stmt(cmd("echo", lit("$X"), lit("a b"))),
	},
	{
		name: "reserved words as arguments",
		code: "echo if then fi",
		want: stmt(cmd("echo", lit("if"), lit("then"), lit("fi"))),
	},
	{
		name: "punctuation as arguments",
		code: "[ ! -f x ]",
		want: stmt(cmd("[", lit("!"), lit("-f"), lit("x"), lit("]"))),
	},
	{
		name: "if",
		code: "if a; then b; fi",
		want: stmt(&If{Cond: pipe(cmd("a")), Then: []AndOr{pipe(cmd("b"))}}),
	},
	{
		name: "if over several lines",
		code: "if a\nthen\n  b\n  c\nfi",
		want: stmt(&If{
			Cond: pipe(cmd("a")),
			Then: []AndOr{pipe(cmd("b")), pipe(cmd("c"))},
		}),
	},
	{
		name: "if with elif and else",
		code: "if a; then b; elif c; then d; else e; fi",
		want: stmt(&If{
			Cond: pipe(cmd("a")),
			Then: []AndOr{pipe(cmd("b"))},
			Else: &If{
				Cond: pipe(cmd("c")),
				Then: []AndOr{pipe(cmd("d"))},
				Else: &Else{[]AndOr{pipe(cmd("e"))}},
			},
		}),
	},
	{
		name: "if in pipeline",
		code: "if a; then b; fi | c",
		want: stmt(&If{Cond: pipe(cmd("a")), Then: []AndOr{pipe(cmd("b"))}}, cmd("c")),
	},
	{
		name: "while",
		code: "while a; do b; done",
		want: stmt(&While{Cond: pipe(cmd("a")), Body: []AndOr{pipe(cmd("b"))}}),
	},
	{
		name: "until",
		code: "until ! a\ndo\nb\ndone",
		want: stmt(&While{
			Cond:    &Not{pipe(cmd("a"))},
			Negated: true,
			Body:    []AndOr{pipe(cmd("b"))},
		}),
	},
	{
		name: "for",
		code: "for i in a $B c; do echo $i; done",
		want: stmt(&For{
			Var:   "i",
			Items: []Argument{lit("a"), vr("B"), lit("c")},
			Body:  []AndOr{pipe(cmd("echo", vr("i")))},
		}),
	},
	{
		name: "function",
		code: "f() { echo hi; }",
		want: stmt(&Function{Name: "f", Body: []AndOr{pipe(cmd("echo", lit("hi")))}}),
	},
	{
		name: "function with keyword",
		code: "function g\n{\n  a\n  b\n}",
		want: stmt(&Function{Name: "g", Body: []AndOr{pipe(cmd("a")), pipe(cmd("b"))}}),
	},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(Source{Name: "[test]", Code: test.code})
			if err != nil {
				t.Fatalf("Parse(%q) returns error: %v", test.code, err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", test.code, diff)
			}
		})
	}
}

type wantError struct {
	message string
	diag.Ranging
	partial bool
}

var parseErrorTests = []struct {
	code string
	want []wantError
}{
	{"echo $(ls", []wantError{{"no matching ')'", diag.Ranging{From: 5, To: 7}, true}}},
	{"echo ${X", []wantError{{"no matching '}'", diag.Ranging{From: 5, To: 7}, true}}},
	{"if true; then echo", []wantError{{"no matching 'fi'", diag.Ranging{From: 0, To: 2}, true}}},
	{"while a; do\n", []wantError{{"no matching 'done'", diag.Ranging{From: 0, To: 5}, true}}},
	{"f() {", []wantError{{"no matching '}'", diag.Ranging{From: 4, To: 5}, true}}},
	{"ls |", []wantError{{"should be a command", diag.Ranging{From: 4, To: 4}, true}}},
	{"a &&", []wantError{{"should be a command", diag.Ranging{From: 4, To: 4}, true}}},
	{`echo "abc`, []wantError{{"unterminated string", diag.Ranging{From: 5, To: 9}, true}}},
	{"echo )", []wantError{{"unexpected ')'", diag.Ranging{From: 5, To: 6}, false}}},
	{"| ls", []wantError{{"should be a command", diag.Ranging{From: 0, To: 1}, false}}},
	{"fi", []wantError{{"unexpected 'fi'", diag.Ranging{From: 0, To: 2}, false}}},
	{"a > x > y", []wantError{{"only one redirection is allowed in a pipeline", diag.Ranging{From: 6, To: 7}, false}}},
	{"a >", []wantError{{"should be a file name", diag.Ranging{From: 3, To: 3}, true}}},
	{"echo ${X:foo}", []wantError{{"bad substitution", diag.Ranging{From: 5, To: 13}, false}}},
	{"echo ${}", []wantError{{"bad substitution", diag.Ranging{From: 5, To: 8}, false}}},
	{"for 1 in a; do b; done", []wantError{{"should be variable name", diag.Ranging{From: 4, To: 5}, false}}},
	{"for i a; do b; done", []wantError{{"should be 'in'", diag.Ranging{From: 6, To: 7}, false}}},
	// Errors in a command substitution point into the outer source.
	{"echo $(fi)", []wantError{{"unexpected 'fi'", diag.Ranging{From: 7, To: 9}, false}}},
	{"echo )\necho (", []wantError{
		{"unexpected ')'", diag.Ranging{From: 5, To: 6}, false},
		{"unexpected '('", diag.Ranging{From: 12, To: 13}, false},
	}},
}

func TestParse_Errors(t *testing.T) {
	for _, test := range parseErrorTests {
		_, err := Parse(Source{Name: "[test]", Code: test.code})
		errs := UnpackErrors(err)
		var got []wantError
		for _, e := range errs {
			got = append(got, wantError{e.Message, e.Range(), e.Partial})
		}
		if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(wantError{})); diff != "" {
			t.Errorf("Parse(%q) errors mismatch (-want +got):\n%s", test.code, diff)
		}
	}
}

func TestParse_RecoversAtNextLine(t *testing.T) {
	stmts, err := Parse(Source{Name: "[test]", Code: "echo )\necho ok"})
	if err == nil {
		t.Fatalf("want error, got nil")
	}
	want := stmt(cmd("echo", lit("ok")))
	if diff := cmp.Diff(want, stmts); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ErrorTypes(t *testing.T) {
	_, err := Parse(Source{Name: "a.sh", Code: "echo )"})
	if _, ok := err.(*diag.Error); !ok {
		t.Errorf("single error has type %T, want *diag.Error", err)
	}
	if got, want := err.Error(), "parse error: a.sh:1:6: unexpected ')'"; got != want {
		t.Errorf("got message %q, want %q", got, want)
	}

	_, err = Parse(Source{Name: "a.sh", Code: "echo )\necho ("})
	if _, ok := err.(*MultiError); !ok {
		t.Errorf("several errors have type %T, want *MultiError", err)
	}
}

func TestIsPartial(t *testing.T) {
	for code, want := range map[string]bool{
		"if a; then":         true,
		"echo 'unclosed":     true,
		"echo $(":            true,
		"a |":                true,
		"echo )":             false,
		"echo )\nif a; then": false,
		"echo ok":            false,
	} {
		_, err := Parse(Source{Name: "[test]", Code: code})
		if got := IsPartial(err); got != want {
			t.Errorf("IsPartial(Parse(%q)) = %v, want %v", code, got, want)
		}
	}
}

// A double-quoted span ends at the first unescaped '"', even inside a $(...)
// it contains.
func TestParse_QuoteEndsInsideSubstitution(t *testing.T) {
	_, err := Parse(Source{Name: "[test]", Code: `echo "$(echo ")")"`})
	var messages []string
	for _, e := range UnpackErrors(err) {
		messages = append(messages, e.Message)
	}
	found := false
	for _, m := range messages {
		if m == "no matching ')'" {
			found = true
		}
	}
	if !found {
		t.Errorf("got errors %q, want one to be %q", messages, "no matching ')'")
	}
}
