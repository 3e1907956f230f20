package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Context is a range of text in a source code. It is typically used for
// errors that can be associated with a part of the source code, like parse
// errors.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Styling of the culprit. Tests replace it with visible markers.
var styleCulprit = color.New(color.Bold, color.Underline).SprintFunc()

const culpritPlaceHolder = "^"

// Show shows the context as "name:line:col: " followed by the line containing
// the start of the culprit, with the culprit highlighted. Following lines of a
// multi-line culprit are indented by indent plus the width of the header.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.describeStart() + ": "
	return desc + c.relevantSource(indent+strings.Repeat(" ", len(desc)))
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

// Line and column are both 1-based; the column counts bytes.
func (c *Context) describeStart() string {
	before := c.Source[:c.From]
	line := strings.Count(before, "\n") + 1
	col := len(lastLine(before)) + 1
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

func (c *Context) relevantSource(indent string) string {
	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	after := c.Source[c.To:]

	var sb strings.Builder
	sb.WriteString(lastLine(before))

	// A trailing newline in the culprit is not shown, and stops the tail.
	culprit, endsLine := strings.CutSuffix(culprit, "\n")
	if culprit == "" {
		culprit = culpritPlaceHolder
	}
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteString("\n" + indent)
		}
		sb.WriteString(styleCulprit(line))
	}
	if !endsLine {
		sb.WriteString(firstLine(after))
	}
	return sb.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
