package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"src.slush.sh/pkg/parse"
)

// Reads code line by line, asking for more lines while the code is
// unfinished.
type lineEditor struct {
	in  *bufio.Reader
	out io.Writer
	// Whether to write prompts.
	prompt bool
}

func newLineEditor(in io.Reader, out io.Writer, prompt bool) *lineEditor {
	return &lineEditor{bufio.NewReader(in), out, prompt}
}

// ReadCode reads the code of one command. It returns io.EOF with whatever
// code has been read when the input ends.
func (ed *lineEditor) ReadCode(prompt string) (string, error) {
	var sb strings.Builder
	for {
		if ed.prompt {
			fmt.Fprint(ed.out, prompt)
		}
		line, err := ed.in.ReadString('\n')
		sb.WriteString(line)
		if err != nil {
			return sb.String(), err
		}
		_, perr := parse.Parse(parse.Source{Name: "[interactive]", Code: sb.String()})
		if !parse.IsPartial(perr) {
			return sb.String(), nil
		}
		prompt = continuationPrompt
	}
}

const continuationPrompt = "> "
