package parse

import (
	"bytes"
	"errors"
	"strings"

	"src.slush.sh/pkg/diag"
)

// parser keeps the state of parsing a token stream.
//
// The tokens are lexed from text, which starts at offset base of src. Nested
// sources, like the content of $(...), get their own parser that shares src
// so that errors always point into the outermost source.
type parser struct {
	srcName string
	src     string
	base    int
	text    string
	tokens  []Token
	pos     int
	errors  []*diag.Error
}

func newParser(srcName, src string, base int, text string) *parser {
	p := &parser{srcName: srcName, src: src, base: base, text: text}
	tokens, err := Tokenize(text)
	if err != nil {
		lexErr := err.(*LexError)
		p.errorp(lexErr.Ranging, errors.New(lexErr.Message),
			base+lexErr.To == len(src))
	}
	p.tokens = tokens
	return p
}

// Parses a nested source starting at offset of p.text. Errors found in it are
// added to p.
func (p *parser) child(text string, offset int) *parser {
	return newParser(p.srcName, p.src, p.base+offset, text)
}

func (p *parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	end := len(p.text)
	return Token{EndOfFile, "", diag.PointRanging(end)}
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// End of the last consumed token.
func (p *parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].To
}

func (p *parser) skip(kinds ...TokenKind) {
	for p.pos < len(p.tokens) && hasKind(p.tokens[p.pos], kinds) {
		p.pos++
	}
}

func (p *parser) skipSpace()      { p.skip(WhiteSpace, Comment) }
func (p *parser) skipNewlines()   { p.skip(WhiteSpace, Comment, NewLine) }
func (p *parser) skipSeparators() { p.skip(WhiteSpace, Comment, NewLine, SemiColon) }

func hasKind(tok Token, kinds []TokenKind) bool {
	for _, k := range kinds {
		if tok.Kind == k {
			return true
		}
	}
	return false
}

// Reports whether the parser has consumed everything up to the end of the
// outermost source, in which case more input may fix an error.
func (p *parser) atEOF() bool {
	return p.pos >= len(p.tokens) && p.base+len(p.text) == len(p.src)
}

func (p *parser) errorp(r diag.Ranger, e error, partial bool) {
	p.errors = append(p.errors, &diag.Error{
		Type:    "parse error",
		Message: e.Error(),
		Context: *diag.NewContext(p.srcName, p.src, r.Range().Shift(p.base)),
		Partial: partial,
	})
}

// Records an error at the current token.
func (p *parser) error(e error) {
	p.errorp(p.peek(), e, p.atEOF())
}

func (p *parser) unexpected() {
	tok := p.peek()
	if tok.Kind == EndOfFile {
		p.error(errUnexpectedEOF)
		return
	}
	p.error(errors.New("unexpected " + tok.Kind.String()))
}

// Skips to the next newline after an error, so that parsing can resume with
// the next statement.
func (p *parser) recover() {
	start := p.pos
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind != NewLine {
		p.pos++
	}
	if p.pos == start && p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) assembleError() error {
	switch len(p.errors) {
	case 0:
		return nil
	case 1:
		return p.errors[0]
	default:
		return &MultiError{p.errors}
	}
}

// MultiError is returned by Parse when there is more than one parse error.
type MultiError struct {
	Errors []*diag.Error
}

func (e *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString("multiple parse errors: ")
	for i, err := range e.Errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Show shows all the errors.
func (e *MultiError) Show(indent string) string {
	var sb strings.Builder
	sb.WriteString("Multiple parse errors:")
	for _, err := range e.Errors {
		sb.WriteString("\n" + indent + "  ")
		sb.WriteString(err.Show(indent + "  "))
	}
	return sb.String()
}

// UnpackErrors returns the constituent parse errors if the given error
// contains one or more parse errors. Otherwise it returns nil.
func UnpackErrors(e error) []*diag.Error {
	switch e := e.(type) {
	case *diag.Error:
		if e.Type == "parse error" {
			return []*diag.Error{e}
		}
	case *MultiError:
		return e.Errors
	}
	return nil
}

// IsPartial reports whether err consists only of parse errors that are caused
// by the input ending too early.
func IsPartial(err error) bool {
	errs := UnpackErrors(err)
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if !e.Partial {
			return false
		}
	}
	return true
}

func newError(text string, shouldbe ...string) error {
	if len(shouldbe) == 0 {
		return errors.New(text)
	}
	var buf bytes.Buffer
	if len(text) > 0 {
		buf.WriteString(text + ", ")
	}
	buf.WriteString("should be " + shouldbe[0])
	for i, opt := range shouldbe[1:] {
		if i == len(shouldbe)-2 {
			buf.WriteString(" or ")
		} else {
			buf.WriteString(", ")
		}
		buf.WriteString(opt)
	}
	return errors.New(buf.String())
}
