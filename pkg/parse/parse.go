// Package parse implements the slush parser.
//
// Source code is first split into tokens by Tokenize, and the token stream is
// then parsed by a recursive-descent parser into a list of statements. Each
// statement is an AndOr tree whose leaves are pipelines; the stages of a
// pipeline are simple commands and control constructs; the words of a
// command are Arguments.
//
// Parsing never panics. Errors are collected, and the parser resumes at the
// next line after an error.
package parse

import (
	"errors"
)

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// Parse parses the given source into statements. If the error is not nil, it
// is either a *diag.Error or a *MultiError, and the returned statements are
// those that parsed successfully.
func Parse(src Source) ([]AndOr, error) {
	p := newParser(src.Name, src.Code, 0, src.Code)
	stmts := p.parseStatements()
	return stmts, p.assembleError()
}

// Errors.
var (
	errUnexpectedEOF      = errors.New("unexpected end of input")
	errShouldBeCommand    = newError("", "a command")
	errShouldBeFilename   = newError("", "a file name")
	errShouldBeVarName    = newError("", "variable name")
	errShouldBeFuncName   = newError("", "function name")
	errShouldBeIn         = newError("", "'in'")
	errShouldBeLBrace     = newError("", "'{'")
	errShouldBeRParen     = newError("", "')'")
	errOnlyOneRedir       = errors.New("only one redirection is allowed in a pipeline")
	errBadSubstitution    = errors.New("bad substitution")
	errNoMatchingRParen   = errors.New("no matching ')'")
	errNoMatchingRBrace   = errors.New("no matching '}'")
	errUnterminatedSubsh  = errors.New("unterminated subshell")
	errUnterminatedString = errors.New("unterminated string")
)

// Chunk = { Separator } { AndOr { Separator } }
func (p *parser) parseStatements() []AndOr {
	var stmts []AndOr
	for {
		p.skipSeparators()
		if p.peek().Kind == EndOfFile {
			return stmts
		}
		n := p.parseAndOr()
		if n == nil || !p.endStatement() {
			p.recover()
			continue
		}
		stmts = append(stmts, n)
	}
}

// A statement must be followed by a newline, a semicolon or the end of input.
func (p *parser) endStatement() bool {
	p.skipSpace()
	switch p.peek().Kind {
	case NewLine, SemiColon, EndOfFile:
		return true
	}
	p.unexpected()
	return false
}

// Parses statements until one of terms starts a statement. The opener is the
// token that started the construct, for reporting a missing closer.
func (p *parser) parseBody(opener Token, closer TokenKind, terms ...TokenKind) ([]AndOr, bool) {
	var body []AndOr
	for {
		p.skipSeparators()
		tok := p.peek()
		if hasKind(tok, terms) {
			return body, true
		}
		if tok.Kind == EndOfFile {
			p.errorp(opener, errors.New("no matching "+closer.String()), p.atEOF())
			return nil, false
		}
		n := p.parseAndOr()
		if n == nil || !p.endStatement() {
			return nil, false
		}
		body = append(body, n)
	}
}

// Consumes the given reserved word after optional separators.
func (p *parser) expect(kind TokenKind) bool {
	p.skipSeparators()
	if p.peek().Kind != kind {
		p.error(newError("", kind.String()))
		return false
	}
	p.next()
	return true
}

// AndOr = Negated { ( '&&' | '||' ) { Newline } Negated }
func (p *parser) parseAndOr() AndOr {
	left := p.parseNegated()
	if left == nil {
		return nil
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op.Kind != AndIf && op.Kind != OrIf {
			return left
		}
		p.next()
		p.skipNewlines()
		right := p.parseNegated()
		if right == nil {
			return nil
		}
		if op.Kind == AndIf {
			left = &And{left, right}
		} else {
			left = &Or{left, right}
		}
	}
}

// Negated = [ '!' ] Pipeline
func (p *parser) parseNegated() AndOr {
	p.skipSpace()
	if p.peek().Kind == Bang {
		p.next()
		operand := p.parseNegated()
		if operand == nil {
			return nil
		}
		return &Not{operand}
	}
	if n := p.parsePipeline(); n != nil {
		return n
	}
	return nil
}

// Pipeline = Compound { '|' { Newline } Compound } [ Redirect ] [ '&' ]
func (p *parser) parsePipeline() *Pipeline {
	n := &Pipeline{}
	for {
		stage := p.parseCompound()
		if stage == nil {
			return nil
		}
		n.Stages = append(n.Stages, stage)
		p.skipSpace()
		if p.peek().Kind != Pipe {
			break
		}
		p.next()
		p.skipNewlines()
	}
	if !p.parseRedirect(n) {
		return nil
	}
	p.skipSpace()
	if p.peek().Kind == Control {
		p.next()
		n.Background = true
	}
	return n
}

// Redirect = ( '>' | '>>' | '<' ) Argument
func (p *parser) parseRedirect(n *Pipeline) bool {
	p.skipSpace()
	r := &Redirect{}
	switch p.peek().Kind {
	case RedirectOut:
		r.Mode, r.FD = RedirOut, 1
	case AppendOut:
		r.Mode, r.FD = RedirAppend, 1
	case RedirectIn:
		r.Mode, r.FD = RedirIn, 0
	default:
		return true
	}
	p.next()
	p.skipSpace()
	target, ok := p.parseArgument(true)
	if !ok {
		return false
	} else if target == nil {
		p.error(errShouldBeFilename)
		return false
	}
	r.Target = target
	n.Redirect = r

	p.skipSpace()
	switch p.peek().Kind {
	case RedirectOut, AppendOut, RedirectIn:
		p.error(errOnlyOneRedir)
		return false
	}
	return true
}

func (p *parser) parseCompound() Compound {
	p.skipSpace()
	switch p.peek().Kind {
	case KwIf:
		if n := p.parseIf(); n != nil {
			return n
		}
	case KwWhile, KwUntil:
		if n := p.parseWhile(); n != nil {
			return n
		}
	case KwFor:
		if n := p.parseFor(); n != nil {
			return n
		}
	case KwFunction:
		if n := p.parseFunction(); n != nil {
			return n
		}
	default:
		if p.peek().Kind == Name && p.atFunctionDef() {
			if n := p.parseFunction(); n != nil {
				return n
			}
		} else if n := p.parseCommand(); n != nil {
			return n
		}
	}
	return nil
}

// If = ( 'if' | 'elif' ) AndOr Sep 'then' Body
//
//	[ Elif | 'else' Body ] 'fi'
//
// An elif branch is parsed as a nested If that consumes the shared 'fi'.
func (p *parser) parseIf() *If {
	kw := p.next()
	cond := p.parseAndOr()
	if cond == nil || !p.expect(KwThen) {
		return nil
	}
	then, ok := p.parseBody(kw, KwFi, KwElif, KwElse, KwFi)
	if !ok {
		return nil
	}
	n := &If{Cond: cond, Then: then}
	switch p.peek().Kind {
	case KwElif:
		elif := p.parseIf()
		if elif == nil {
			return nil
		}
		n.Else = elif
		return n
	case KwElse:
		p.next()
		body, ok := p.parseBody(kw, KwFi, KwFi)
		if !ok {
			return nil
		}
		n.Else = &Else{body}
	}
	p.next()
	return n
}

// While = ( 'while' | 'until' ) AndOr Sep 'do' Body 'done'
func (p *parser) parseWhile() *While {
	kw := p.next()
	cond := p.parseAndOr()
	if cond == nil || !p.expect(KwDo) {
		return nil
	}
	body, ok := p.parseBody(kw, KwDone, KwDone)
	if !ok {
		return nil
	}
	p.next()
	return &While{Cond: cond, Negated: kw.Kind == KwUntil, Body: body}
}

// For = 'for' Name 'in' { Argument } Sep 'do' Body 'done'
func (p *parser) parseFor() *For {
	kw := p.next()
	p.skipSpace()
	name := p.peek()
	if name.Kind != Name || !isIdentifier(name.Lexeme) {
		p.error(errShouldBeVarName)
		return nil
	}
	p.next()
	n := &For{Var: name.Lexeme}
	p.skipSpace()
	if p.peek().Kind != KwIn {
		p.error(errShouldBeIn)
		return nil
	}
	p.next()
items:
	for {
		p.skipSpace()
		switch p.peek().Kind {
		case NewLine, SemiColon, EndOfFile:
			break items
		}
		item, ok := p.parseArgument(true)
		if !ok {
			return nil
		} else if item == nil {
			p.unexpected()
			return nil
		}
		n.Items = append(n.Items, item)
	}
	if !p.expect(KwDo) {
		return nil
	}
	body, ok := p.parseBody(kw, KwDone, KwDone)
	if !ok {
		return nil
	}
	p.next()
	n.Body = body
	return n
}

// Reports whether the parser is at "name ( )".
func (p *parser) atFunctionDef() bool {
	saved := p.pos
	defer func() { p.pos = saved }()
	p.next()
	p.skipSpace()
	if p.next().Kind != LeftParen {
		return false
	}
	p.skipSpace()
	return p.next().Kind == RightParen
}

// Function = ( 'function' Name [ '(' ')' ] | Name '(' ')' ) { Newline } '{' Body '}'
func (p *parser) parseFunction() *Function {
	if p.peek().Kind == KwFunction {
		p.next()
		p.skipSpace()
	}
	name := p.peek()
	if name.Kind != Name {
		p.error(errShouldBeFuncName)
		return nil
	}
	p.next()
	p.skipSpace()
	if p.peek().Kind == LeftParen {
		p.next()
		p.skipSpace()
		if p.peek().Kind != RightParen {
			p.error(errShouldBeRParen)
			return nil
		}
		p.next()
	}
	p.skipNewlines()
	open := p.peek()
	if open.Kind != LeftBrace {
		p.error(errShouldBeLBrace)
		return nil
	}
	p.next()
	body, ok := p.parseBody(open, RightBrace, RightBrace)
	if !ok {
		return nil
	}
	p.next()
	return &Function{Name: name.Lexeme, Body: body}
}

// Command = [ Assignment ] [ Argument { Argument } ]
//
// At least one of the assignment and the command name must be present.
// Reserved words are ordinary arguments after the command name.
func (p *parser) parseCommand() *Command {
	p.skipSpace()
	n := &Command{}
	assignment, ok := p.parseAssignment()
	if !ok {
		return nil
	}
	n.Assignment = assignment
	p.skipSpace()
	if p.atCommandEnd() {
		if n.Assignment != nil {
			return n
		}
		p.error(errShouldBeCommand)
		return nil
	}
	if p.peek().Kind.IsReserved() {
		p.unexpected()
		return nil
	}
	name, ok := p.parseArgument(false)
	if !ok {
		return nil
	} else if name == nil {
		p.unexpected()
		return nil
	}
	n.Name = name
	for {
		p.skipSpace()
		if p.atCommandEnd() {
			return n
		}
		arg, ok := p.parseArgument(true)
		if !ok {
			return nil
		} else if arg == nil {
			p.unexpected()
			return nil
		}
		n.Args = append(n.Args, arg)
	}
}

func (p *parser) atCommandEnd() bool {
	switch p.peek().Kind {
	case EndOfFile, NewLine, SemiColon, Pipe, OrIf, AndIf, Control,
		RedirectOut, AppendOut, RedirectIn:
		return true
	}
	return false
}

// Assignment = Name '=' [ Argument ], with no space around '='.
//
// If the tokens do not form an assignment, the parser backtracks and returns
// nil.
func (p *parser) parseAssignment() (*Assignment, bool) {
	saved := p.pos
	key := p.next()
	eq := p.peek()
	if key.Kind != Name || !isIdentifier(key.Lexeme) ||
		eq.Kind != Equal || eq.From != key.To {
		p.pos = saved
		return nil, true
	}
	p.next()
	value, ok := p.parseArgument(true)
	if !ok {
		return nil, false
	}
	if value == nil {
		value = &Literal{""}
	}
	return &Assignment{Key: key.Lexeme, Value: value}, true
}
