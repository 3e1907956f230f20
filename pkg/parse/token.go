package parse

import (
	"fmt"

	"src.slush.sh/pkg/diag"
)

// TokenKind is the kind of a Token.
type TokenKind int

// Possible values of TokenKind.
const (
	EndOfFile TokenKind = iota
	WhiteSpace
	NewLine
	Comment
	Name
	DoubleQuoteStr
	BackTickStr

	Pipe               // |
	OrIf               // ||
	Control            // &
	AndIf              // &&
	SemiColon          // ;
	RedirectOut        // >
	AppendOut          // >>
	RedirectIn         // <
	Equal              // =
	LeftParen          // (
	RightParen         // )
	LeftBrace          // {
	RightBrace         // }
	LeftBracket        // [
	RightBracket       // ]
	DoubleLeftBracket  // [[
	DoubleRightBracket // ]]
	DollarSign         // $
	Bang               // !
	QuestionMark       // ?
	Pound              // #
	AtSign             // @
	Star               // *
	Tilde              // ~

	KwIf
	KwThen
	KwElif
	KwElse
	KwFi
	KwWhile
	KwUntil
	KwDo
	KwDone
	KwFor
	KwIn
	KwFunction
	KwCase
	KwEsac
	KwSelect
	KwTime
)

var kindNames = [...]string{
	EndOfFile:          "end of input",
	WhiteSpace:         "whitespace",
	NewLine:            "newline",
	Comment:            "comment",
	Name:               "name",
	DoubleQuoteStr:     "double-quoted string",
	BackTickStr:        "backquoted command",
	Pipe:               "'|'",
	OrIf:               "'||'",
	Control:            "'&'",
	AndIf:              "'&&'",
	SemiColon:          "';'",
	RedirectOut:        "'>'",
	AppendOut:          "'>>'",
	RedirectIn:         "'<'",
	Equal:              "'='",
	LeftParen:          "'('",
	RightParen:         "')'",
	LeftBrace:          "'{'",
	RightBrace:         "'}'",
	LeftBracket:        "'['",
	RightBracket:       "']'",
	DoubleLeftBracket:  "'[['",
	DoubleRightBracket: "']]'",
	DollarSign:         "'$'",
	Bang:               "'!'",
	QuestionMark:       "'?'",
	Pound:              "'#'",
	AtSign:             "'@'",
	Star:               "'*'",
	Tilde:              "'~'",
	KwIf:               "'if'",
	KwThen:             "'then'",
	KwElif:             "'elif'",
	KwElse:             "'else'",
	KwFi:               "'fi'",
	KwWhile:            "'while'",
	KwUntil:            "'until'",
	KwDo:               "'do'",
	KwDone:             "'done'",
	KwFor:              "'for'",
	KwIn:               "'in'",
	KwFunction:         "'function'",
	KwCase:             "'case'",
	KwEsac:             "'esac'",
	KwSelect:           "'select'",
	KwTime:             "'time'",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
	return kindNames[k]
}

// IsReserved reports whether the kind is that of a reserved word.
func (k TokenKind) IsReserved() bool { return k >= KwIf && k <= KwTime }

var reservedWords = map[string]TokenKind{
	"if": KwIf, "then": KwThen, "elif": KwElif, "else": KwElse, "fi": KwFi,
	"while": KwWhile, "until": KwUntil, "do": KwDo, "done": KwDone,
	"for": KwFor, "in": KwIn, "function": KwFunction,
	"case": KwCase, "esac": KwEsac, "select": KwSelect, "time": KwTime,
}

// Token is a lexical unit of the source. Lexeme is the text of the token,
// except that quoted spans carry their content without the quotes and an
// escaped character carries only the character.
type Token struct {
	Kind   TokenKind
	Lexeme string
	diag.Ranging
}

func (t Token) String() string {
	return fmt.Sprintf("%v %q %d-%d", t.Kind, t.Lexeme, t.From, t.To)
}
