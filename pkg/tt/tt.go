// Package tt supports table-driven tests with little boilerplate.
//
// A test is written as
//
//	tt.Test(t, tt.Fn("Tokenize", Tokenize), tt.Table{
//		tt.Args("a b").Rets(want, nil),
//	})
//
// Return values are compared with go-cmp; mismatches are reported with a diff.
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Table represents a test table.
type Table []*Case

// Case represents a test case. It is created by the Args function, and offers
// setters that augment and return itself; those calls can be chained like
// Args(...).Rets(...).
type Case struct {
	args []any
	rets []any
	opts []cmp.Option
}

// Args returns a new Case with the given arguments.
func Args(args ...any) *Case {
	return &Case{args: args}
}

// Rets sets the wanted return values and returns the receiver. A value that
// implements Matcher is matched by calling its Match method; other values are
// compared with cmp.Equal.
func (c *Case) Rets(rets ...any) *Case {
	c.rets = rets
	return c
}

// Opts adds go-cmp options used when comparing the return values.
func (c *Case) Opts(opts ...cmp.Option) *Case {
	c.opts = append(c.opts, opts...)
	return c
}

// FnToTest describes a function to test.
type FnToTest struct {
	name string
	body any
}

// Fn makes a new FnToTest with the given function name and body.
func Fn(name string, body any) *FnToTest {
	return &FnToTest{name, body}
}

// T is the interface for accessing testing.T.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Test tests a function against test cases.
func Test(t T, fn *FnToTest, tests Table) {
	t.Helper()
	for _, test := range tests {
		rets := call(fn.body, test.args)
		for i, want := range test.rets {
			if m, ok := want.(Matcher); ok {
				if !m.Match(rets[i]) {
					t.Errorf("%s(%s) return value #%d is %v, which does not match",
						fn.name, sprintArgs(test.args), i, rets[i])
				}
				continue
			}
			if !cmp.Equal(want, rets[i], test.opts...) {
				t.Errorf("%s(%s) return value #%d mismatch (-want +got):\n%s",
					fn.name, sprintArgs(test.args), i,
					cmp.Diff(want, rets[i], test.opts...))
			}
		}
	}
}

// Matcher wraps the Match method.
type Matcher interface {
	// Match reports whether a return value is considered a match.
	Match(any) bool
}

// Any is a Matcher that matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(any) bool { return true }

// ErrorWith returns a Matcher that matches a non-nil error whose message
// contains the given substring.
func ErrorWith(substr string) Matcher { return errorMatcher{substr} }

type errorMatcher struct{ substr string }

func (m errorMatcher) Match(v any) bool {
	err, ok := v.(error)
	return ok && err != nil && strings.Contains(err.Error(), m.substr)
}

func sprintArgs(args []any) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", fmt.Sprint(arg))
	}
	return sb.String()
}

func call(fn any, args []any) []any {
	fnType := reflect.TypeOf(fn)
	argsReflect := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// reflect.ValueOf(nil) is the zero Value; use the zero value of
			// the parameter type instead.
			argsReflect[i] = reflect.Zero(fnType.In(i))
		} else {
			argsReflect[i] = reflect.ValueOf(arg)
		}
	}
	retsReflect := reflect.ValueOf(fn).Call(argsReflect)
	rets := make([]any, len(retsReflect))
	for i, retReflect := range retsReflect {
		rets[i] = retReflect.Interface()
	}
	return rets
}
