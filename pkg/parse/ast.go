package parse

import (
	"fmt"
	"strconv"
)

// Argument is a word of a command. It evaluates to exactly one string.
type Argument interface {
	fmt.Stringer
	argument()
}

// Literal is text taken verbatim.
type Literal struct{ Text string }

// Variable is a reference like $NAME, $1 or $?.
type Variable struct{ Name string }

// CommandSubstitution is $(...) or `...`. Source is parsed again and run in a
// fresh shell state when the argument is evaluated.
type CommandSubstitution struct{ Source string }

// Concat is two arguments written next to each other.
type Concat struct{ Left, Right Argument }

// ExpansionKind is the kind of a ParamExpansion.
type ExpansionKind int

// Possible values of ExpansionKind.
const (
	Plain         ExpansionKind = iota // ${name}
	Length                             // ${#name}
	UseDefault                         // ${name:-word}
	AssignDefault                      // ${name:=word}
	ErrorIfUnset                       // ${name:?word}
)

var expansionKindNames = [...]string{"Plain", "Length", "UseDefault", "AssignDefault", "ErrorIfUnset"}

func (k ExpansionKind) String() string { return expansionKindNames[k] }

// ParamExpansion is a ${...} form. Word is the default value or the error
// message, and is nil for Plain and Length.
type ParamExpansion struct {
	Kind ExpansionKind
	Name string
	Word Argument
}

func (*Literal) argument()             {}
func (*Variable) argument()            {}
func (*CommandSubstitution) argument() {}
func (*Concat) argument()              {}
func (*ParamExpansion) argument()      {}

func (a *Literal) String() string { return strconv.Quote(a.Text) }

func (a *Variable) String() string { return "Variable(" + a.Name + ")" }

func (a *CommandSubstitution) String() string {
	return "CommandSubstitution(" + strconv.Quote(a.Source) + ")"
}

func (a *Concat) String() string {
	return "Concat(" + a.Left.String() + ", " + a.Right.String() + ")"
}

func (a *ParamExpansion) String() string {
	if a.Word == nil {
		return fmt.Sprintf("ParamExpansion(%v, %s)", a.Kind, a.Name)
	}
	return fmt.Sprintf("ParamExpansion(%v, %s, %v)", a.Kind, a.Name, a.Word)
}

// Compound is a stage of a pipeline.
type Compound interface{ compound() }

// Command is a simple command, optionally preceded by an assignment. Name is
// nil for a bare assignment.
type Command struct {
	Assignment *Assignment
	Name       Argument
	Args       []Argument
}

// Assignment is NAME=value.
type Assignment struct {
	Key   string
	Value Argument
}

// If is an if statement. Else is nil, an *If for elif, or an *Else.
type If struct {
	Cond AndOr
	Then []AndOr
	Else ElseBranch
}

// ElseBranch is either *If or *Else.
type ElseBranch interface{ elseBranch() }

// Else is the final else branch of an if statement.
type Else struct{ Body []AndOr }

// While is a while loop, or an until loop when Negated is true.
type While struct {
	Cond    AndOr
	Negated bool
	Body    []AndOr
}

// For is a for loop over a list of words.
type For struct {
	Var   string
	Items []Argument
	Body  []AndOr
}

// Function is a function definition.
type Function struct {
	Name string
	Body []AndOr
}

func (*Command) compound()  {}
func (*If) compound()       {}
func (*While) compound()    {}
func (*For) compound()      {}
func (*Function) compound() {}

func (*If) elseBranch()   {}
func (*Else) elseBranch() {}

// AndOr is a list of pipelines joined by && and ||, possibly negated with !.
// The variants are *Pipeline, *And, *Or and *Not.
type AndOr interface{ andOr() }

// And is left && right.
type And struct{ Left, Right AndOr }

// Or is left || right.
type Or struct{ Left, Right AndOr }

// Not is ! operand.
type Not struct{ Operand AndOr }

// Pipeline = Compound { '|' Compound } [ Redirect ] [ '&' ]
type Pipeline struct {
	Stages     []Compound
	Redirect   *Redirect
	Background bool
}

func (*Pipeline) andOr() {}
func (*And) andOr()      {}
func (*Or) andOr()       {}
func (*Not) andOr()      {}

// RedirMode is the mode of a Redirect.
type RedirMode int

// Possible values of RedirMode.
const (
	RedirOut    RedirMode = iota // >
	RedirAppend                  // >>
	RedirIn                      // <
)

func (m RedirMode) String() string {
	switch m {
	case RedirOut:
		return ">"
	case RedirAppend:
		return ">>"
	case RedirIn:
		return "<"
	}
	return fmt.Sprintf("RedirMode(%d)", int(m))
}

// Redirect sends the output of the last stage of a pipeline to a file, or
// feeds a file to its input. FD is 1 for output and 0 for input.
type Redirect struct {
	Target Argument
	Mode   RedirMode
	FD     int
}
