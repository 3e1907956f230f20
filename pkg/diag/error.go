package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Error represents an error with context that can be showed.
type Error struct {
	Type    string
	Message string
	Context Context
	// Partial is true if the error is caused by the input ending too early,
	// so that appending more input may fix it.
	Partial bool
}

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	return e.Type + ": " + e.Context.describeStart() + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

var styleMessage = color.New(color.FgRed, color.Bold).SprintFunc()

// Show shows the error.
func (e *Error) Show(indent string) string {
	header := fmt.Sprintf("%s: %s\n", title(e.Type), styleMessage(e.Message))
	return header + indent + "  " + e.Context.Show(indent+"  ")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
