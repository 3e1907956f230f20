package parse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"src.slush.sh/pkg/diag"
)

// LexError is returned by Tokenize when a quoted span is not terminated.
type LexError struct {
	diag.Ranging
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d-%d: %s", e.From, e.To, e.Message)
}

// Tokenize splits src into tokens. Whitespace, newlines and comments are kept
// as tokens, so that the result covers the whole source in order.
func Tokenize(src string) ([]Token, error) {
	lx := &lexer{src: src}
	for lx.pos < len(lx.src) {
		if err := lx.scan(); err != nil {
			return nil, err
		}
	}
	return lx.tokens, nil
}

type lexer struct {
	src    string
	pos    int
	tokens []Token
}

func (lx *lexer) scan() error {
	start := lx.pos
	c := lx.src[start]
	switch {
	case isInlineSpace(c):
		for lx.pos < len(lx.src) && isInlineSpace(lx.src[lx.pos]) {
			lx.pos++
		}
		lx.emit(WhiteSpace, lx.src[start:lx.pos], start)
	case c == '\n':
		lx.pos++
		lx.emit(NewLine, "\n", start)
	case c == '\\':
		lx.scanEscape()
	case c == '\'':
		end := strings.IndexByte(lx.src[start+1:], '\'')
		if end == -1 {
			return &LexError{diag.Ranging{From: start, To: len(lx.src)}, "unterminated string"}
		}
		lx.pos = start + 1 + end + 1
		lx.emit(Name, lx.src[start+1:lx.pos-1], start)
	case c == '"':
		return lx.scanQuoted('"', DoubleQuoteStr, "unterminated string")
	case c == '`':
		return lx.scanQuoted('`', BackTickStr, "unterminated subshell")
	case c == '#' && lx.atWordStart():
		end := strings.IndexByte(lx.src[start:], '\n')
		if end == -1 {
			end = len(lx.src) - start
		}
		lx.pos = start + end
		lx.emit(Comment, lx.src[start:lx.pos], start)
	default:
		if kind, size := operator(lx.src[start:]); size > 0 {
			lx.pos += size
			lx.emit(kind, lx.src[start:lx.pos], start)
			return nil
		}
		if kind, size := punctuation(lx.src[start:]); size > 0 {
			lx.pos += size
			lx.emit(kind, lx.src[start:lx.pos], start)
			return nil
		}
		for lx.pos < len(lx.src) && !isDelimiter(lx.src[lx.pos]) {
			lx.pos++
		}
		word := lx.src[start:lx.pos]
		kind := Name
		if reserved, ok := reservedWords[word]; ok && !lx.followsName(start) {
			kind = reserved
		}
		lx.emit(kind, word, start)
	}
	return nil
}

// A backslash escapes the next character; before a newline it joins lines.
func (lx *lexer) scanEscape() {
	start := lx.pos
	if start+1 == len(lx.src) {
		lx.pos++
		lx.emit(Name, "\\", start)
		return
	}
	if lx.src[start+1] == '\n' {
		lx.pos += 2
		lx.emit(WhiteSpace, lx.src[start:lx.pos], start)
		return
	}
	_, size := utf8.DecodeRuneInString(lx.src[start+1:])
	lx.pos += 1 + size
	lx.emit(Name, lx.src[start+1:lx.pos], start)
}

// Scans a span up to an unescaped closer. The lexeme is the raw content, with
// escapes left for the parser.
func (lx *lexer) scanQuoted(closer byte, kind TokenKind, unterminated string) error {
	start := lx.pos
	for i := start + 1; i < len(lx.src); i++ {
		switch lx.src[i] {
		case '\\':
			i++
		case closer:
			lx.pos = i + 1
			lx.emit(kind, lx.src[start+1:i], start)
			return nil
		}
	}
	return &LexError{diag.Ranging{From: start, To: len(lx.src)}, unterminated}
}

func (lx *lexer) emit(kind TokenKind, lexeme string, from int) {
	tok := Token{kind, lexeme, diag.Ranging{From: from, To: lx.pos}}
	if kind == Name && lx.mergeName(tok) {
		return
	}
	lx.tokens = append(lx.tokens, tok)
}

// Merges a name into the previous token if they touch and the previous token
// is a name or reserved word.
func (lx *lexer) mergeName(tok Token) bool {
	n := len(lx.tokens)
	if n == 0 {
		return false
	}
	prev := &lx.tokens[n-1]
	if prev.To != tok.From || !(prev.Kind == Name || prev.Kind.IsReserved()) {
		return false
	}
	// A name right after '$' is a variable name and is kept apart from what
	// follows it.
	if n >= 2 && lx.tokens[n-2].Kind == DollarSign && lx.tokens[n-2].To == prev.From {
		return false
	}
	prev.Kind = Name
	prev.Lexeme += tok.Lexeme
	prev.To = tok.To
	return true
}

func (lx *lexer) followsName(pos int) bool {
	n := len(lx.tokens)
	return n > 0 && lx.tokens[n-1].To == pos && lx.tokens[n-1].Kind == Name
}

// A comment may only start where a new word starts.
func (lx *lexer) atWordStart() bool {
	n := len(lx.tokens)
	if n == 0 {
		return true
	}
	switch lx.tokens[n-1].Kind {
	case WhiteSpace, NewLine, SemiColon, Pipe, OrIf, AndIf, Control:
		return true
	}
	return false
}

func operator(s string) (TokenKind, int) {
	double := func(second byte, two, one TokenKind) (TokenKind, int) {
		if len(s) > 1 && s[1] == second {
			return two, 2
		}
		return one, 1
	}
	switch s[0] {
	case '|':
		return double('|', OrIf, Pipe)
	case '&':
		return double('&', AndIf, Control)
	case '>':
		return double('>', AppendOut, RedirectOut)
	case ';':
		return SemiColon, 1
	case '<':
		return RedirectIn, 1
	case '=':
		return Equal, 1
	case '(':
		return LeftParen, 1
	case ')':
		return RightParen, 1
	case '{':
		return LeftBrace, 1
	case '}':
		return RightBrace, 1
	case '$':
		return DollarSign, 1
	}
	return 0, 0
}

// Punctuation forms its own token only at the start of a word; inside a word
// it is part of the name.
func punctuation(s string) (TokenKind, int) {
	switch s[0] {
	case '[':
		if len(s) > 1 && s[1] == '[' {
			return DoubleLeftBracket, 2
		}
		return LeftBracket, 1
	case ']':
		if len(s) > 1 && s[1] == ']' {
			return DoubleRightBracket, 2
		}
		return RightBracket, 1
	case '!':
		return Bang, 1
	case '?':
		return QuestionMark, 1
	case '#':
		return Pound, 1
	case '@':
		return AtSign, 1
	case '*':
		return Star, 1
	case '~':
		return Tilde, 1
	}
	return 0, 0
}

func isInlineSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '|', '&', ';', '<', '>', '(', ')',
		'$', '`', '\'', '"', '\\', '=', '{', '}':
		return true
	}
	return false
}
