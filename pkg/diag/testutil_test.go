package diag

import (
	"fmt"
	"strings"
	"testing"

	"src.slush.sh/pkg/testutil"
)

func setMarkers(t *testing.T) {
	testutil.Set(t, &styleCulprit, marker("<", ">"))
	testutil.Set(t, &styleMessage, marker("{", "}"))
}

func marker(start, end string) func(...any) string {
	return func(a ...any) string { return start + fmt.Sprint(a...) + end }
}

// Returns a Context with the given name and source, and a range for the part
// between ( and ).
func contextInParen(name, src string) *Context {
	return NewContext(name, src,
		Ranging{strings.Index(src, "("), strings.Index(src, ")") + 1})
}
