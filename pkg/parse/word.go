package parse

import (
	"strings"

	"src.slush.sh/pkg/diag"
)

// Argument = Fragment { Fragment }, where each fragment starts exactly where
// the previous one ends.
//
// It returns nil and true if the parser is not at an argument, and false if
// an error has been recorded.
func (p *parser) parseArgument(allowReserved bool) (Argument, bool) {
	var arg Argument
	for {
		if arg != nil && p.peek().From != p.prevEnd() {
			return arg, true
		}
		frag, ok := p.parseFragment(allowReserved || arg != nil)
		if !ok {
			return nil, false
		} else if frag == nil {
			return arg, true
		}
		arg = concat(arg, frag)
	}
}

func (p *parser) parseFragment(allowReserved bool) (Argument, bool) {
	tok := p.peek()
	switch tok.Kind {
	case Name:
		p.next()
		return &Literal{tok.Lexeme}, true
	case DoubleQuoteStr:
		p.next()
		return p.parseQuoted(tok.Lexeme, tok.From+1)
	case BackTickStr:
		p.next()
		return p.commandSubstitution(unescapeBackquoted(tok.Lexeme), tok.From+1)
	case DollarSign:
		return p.parseDollar()
	case Equal, Bang, QuestionMark, Pound, AtSign, Star, Tilde,
		LeftBracket, RightBracket, DoubleLeftBracket, DoubleRightBracket,
		LeftBrace, RightBrace:
		p.next()
		return &Literal{tok.Lexeme}, true
	}
	if allowReserved && tok.Kind.IsReserved() {
		p.next()
		return &Literal{tok.Lexeme}, true
	}
	return nil, true
}

// Dollar = '$' ( '(' ... ')' | '{' ... '}' | Name | SpecialParam )
//
// A '$' that is not followed by any of these is a literal dollar sign.
func (p *parser) parseDollar() (Argument, bool) {
	dollar := p.next()
	tok := p.peek()
	if tok.From != dollar.To {
		return &Literal{"$"}, true
	}
	switch tok.Kind {
	case LeftParen:
		return p.parseParenSubstitution(dollar)
	case LeftBrace:
		return p.parseBraceExpansion(dollar)
	case Name:
		name, rest := splitVariableName(tok.Lexeme)
		if name == "" {
			return &Literal{"$"}, true
		}
		p.next()
		var arg Argument = &Variable{name}
		if rest != "" {
			arg = &Concat{arg, &Literal{rest}}
		}
		return arg, true
	case QuestionMark, Bang, DollarSign, Pound, AtSign, Star:
		p.next()
		return &Variable{tok.Lexeme}, true
	}
	if tok.Kind.IsReserved() {
		p.next()
		return &Variable{tok.Lexeme}, true
	}
	return &Literal{"$"}, true
}

// Finds the token closing the open token, counting nested pairs. It returns
// false at the end of input.
func (p *parser) matchClosing(open, close TokenKind) (Token, bool) {
	depth := 1
	for {
		tok := p.next()
		switch tok.Kind {
		case EndOfFile:
			return tok, false
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return tok, true
			}
		}
	}
}

func (p *parser) parseParenSubstitution(dollar Token) (Argument, bool) {
	open := p.next()
	closing, ok := p.matchClosing(LeftParen, RightParen)
	if !ok {
		p.errorp(diag.MixedRanging(dollar, open), errNoMatchingRParen, p.atEOF())
		return nil, false
	}
	return p.commandSubstitution(p.text[open.To:closing.From], open.To)
}

func (p *parser) parseBraceExpansion(dollar Token) (Argument, bool) {
	open := p.next()
	closing, ok := p.matchClosing(LeftBrace, RightBrace)
	if !ok {
		p.errorp(diag.MixedRanging(dollar, open), errNoMatchingRBrace, p.atEOF())
		return nil, false
	}
	return p.parseExpansionBody(p.text[open.To:closing.From], open.To,
		diag.MixedRanging(dollar, closing))
}

// Parses the content of ${...}, which starts at offset of p.text:
//
//	#name | name | name:-word | name:=word | name:?word
func (p *parser) parseExpansionBody(body string, offset int, r diag.Ranging) (Argument, bool) {
	if len(body) > 1 && body[0] == '#' {
		name := body[1:]
		if n, _ := splitParamName(name); n != name {
			p.errorp(r, errBadSubstitution, false)
			return nil, false
		}
		return &ParamExpansion{Kind: Length, Name: name}, true
	}
	name, rest := splitParamName(body)
	if name == "" {
		p.errorp(r, errBadSubstitution, false)
		return nil, false
	}
	if rest == "" {
		return &ParamExpansion{Kind: Plain, Name: name}, true
	}
	var kind ExpansionKind
	switch {
	case strings.HasPrefix(rest, ":-"):
		kind = UseDefault
	case strings.HasPrefix(rest, ":="):
		kind = AssignDefault
	case strings.HasPrefix(rest, ":?"):
		kind = ErrorIfUnset
	default:
		p.errorp(r, errBadSubstitution, false)
		return nil, false
	}
	word, ok := p.parseExpansionWord(rest[2:], offset+len(name)+2)
	if !ok {
		return nil, false
	}
	return &ParamExpansion{Kind: kind, Name: name, Word: word}, true
}

// Checks the source of a command substitution, which starts at offset of
// p.text. The source is only parsed for errors here; it is parsed again when
// the substitution is evaluated.
func (p *parser) commandSubstitution(src string, offset int) (Argument, bool) {
	sub := p.child(src, offset)
	sub.parseStatements()
	if len(sub.errors) > 0 {
		p.errors = append(p.errors, sub.errors...)
		return nil, false
	}
	return &CommandSubstitution{src}, true
}

// Parses the content of a double-quoted string, which starts at offset of
// p.text. Only parameters, command substitutions and backslash escapes are
// special in it.
func (p *parser) parseQuoted(text string, offset int) (Argument, bool) {
	return p.parseText(text, offset, false)
}

// Parses the word of ${name:-word}. Unlike the content of a double-quoted
// string, quotes in it are removed.
func (p *parser) parseExpansionWord(text string, offset int) (Argument, bool) {
	return p.parseText(text, offset, true)
}

func (p *parser) parseText(text string, offset int, unquote bool) (Argument, bool) {
	var arg Argument
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			arg = concat(arg, &Literal{lit.String()})
			lit.Reset()
		}
	}
	inDouble := false
	for i := 0; i < len(text); {
		switch c := text[i]; {
		case c == '\\' && i+1 < len(text):
			switch next := text[i+1]; {
			case next == '$' || next == '`' || next == '"' || next == '\\':
				lit.WriteByte(next)
			case next == '\n':
			case unquote && !inDouble:
				lit.WriteByte(next)
			default:
				lit.WriteString(text[i : i+2])
			}
			i += 2
		case unquote && c == '"':
			inDouble = !inDouble
			i++
		case unquote && c == '\'' && !inDouble:
			end := strings.IndexByte(text[i+1:], '\'')
			if end == -1 {
				p.errorp(diag.PointRanging(offset+i), errUnterminatedString, false)
				return nil, false
			}
			lit.WriteString(text[i+1 : i+1+end])
			i += end + 2
		case c == '`':
			end := indexUnescaped(text[i+1:], '`')
			if end == -1 {
				p.errorp(diag.PointRanging(offset+i), errUnterminatedSubsh, false)
				return nil, false
			}
			sub, ok := p.commandSubstitution(
				unescapeBackquoted(text[i+1:i+1+end]), offset+i+1)
			if !ok {
				return nil, false
			}
			flush()
			arg = concat(arg, sub)
			i += end + 2
		case c == '$':
			frag, n, ok := p.parseQuotedDollar(text[i:], offset+i)
			if !ok {
				return nil, false
			} else if frag == nil {
				lit.WriteByte('$')
				i++
				continue
			}
			flush()
			arg = concat(arg, frag)
			i += n
		default:
			lit.WriteByte(c)
			i++
		}
	}
	if inDouble {
		p.errorp(diag.PointRanging(offset+len(text)), errUnterminatedString, false)
		return nil, false
	}
	flush()
	if arg == nil {
		return &Literal{""}, true
	}
	return arg, true
}

// Parses a '$' form at the start of s inside a double-quoted string. It
// returns the argument and the number of bytes it spans, or a nil argument if
// the '$' is literal.
func (p *parser) parseQuotedDollar(s string, offset int) (Argument, int, bool) {
	if len(s) < 2 {
		return nil, 0, true
	}
	switch c := s[1]; {
	case c == '(':
		end := matchDelim(s[1:], '(', ')')
		if end == -1 {
			p.errorp(diag.Ranging{From: offset, To: offset + 2}, errNoMatchingRParen, false)
			return nil, 0, false
		}
		sub, ok := p.commandSubstitution(s[2:1+end], offset+2)
		return sub, end + 2, ok
	case c == '{':
		end := matchDelim(s[1:], '{', '}')
		if end == -1 {
			p.errorp(diag.Ranging{From: offset, To: offset + 2}, errNoMatchingRBrace, false)
			return nil, 0, false
		}
		exp, ok := p.parseExpansionBody(s[2:1+end], offset+2,
			diag.Ranging{From: offset, To: offset + end + 2})
		return exp, end + 2, ok
	case isDigit(c) || strings.IndexByte("?!$#@*", c) >= 0:
		return &Variable{s[1:2]}, 2, true
	case isNameStart(c):
		name, _ := splitVariableName(s[1:])
		return &Variable{name}, 1 + len(name), true
	}
	return nil, 0, true
}

// Joins two arguments, merging adjacent literals.
func concat(left, right Argument) Argument {
	if left == nil {
		return right
	}
	if l, ok := left.(*Literal); ok {
		if r, ok := right.(*Literal); ok {
			return &Literal{l.Text + r.Text}
		}
	}
	return &Concat{left, right}
}

// Splits s into a leading variable name and the rest. A variable name is an
// identifier or a single digit.
func splitVariableName(s string) (string, string) {
	if s == "" {
		return "", ""
	}
	if isDigit(s[0]) {
		return s[:1], s[1:]
	}
	i := 0
	for i < len(s) && (isNameChar(s[i]) && (i > 0 || isNameStart(s[i]))) {
		i++
	}
	return s[:i], s[i:]
}

// Like splitVariableName, but inside ${...} positional parameters may have
// several digits, and special parameters are allowed.
func splitParamName(s string) (string, string) {
	if s == "" {
		return "", ""
	}
	switch {
	case isDigit(s[0]):
		i := 0
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		return s[:i], s[i:]
	case strings.IndexByte("?!$#@*", s[0]) >= 0:
		return s[:1], s[1:]
	}
	return splitVariableName(s)
}

// Returns the index of the delimiter closing s[0], or -1.
func matchDelim(s string, open, close byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case c:
			return i
		}
	}
	return -1
}

// Inside backquotes, a backslash followed by $, ` or \ stands for that
// character.
func unescapeBackquoted(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte("$`\\", s[i+1]) >= 0 {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func isIdentifier(s string) bool {
	name, rest := splitVariableName(s)
	return name != "" && rest == "" && !isDigit(s[0])
}

func isDigit(c byte) bool     { return '0' <= c && c <= '9' }
func isNameStart(c byte) bool { return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isNameChar(c byte) bool  { return isNameStart(c) || isDigit(c) }
