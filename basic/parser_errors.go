package basic

import (
	"fmt"
	"strings"
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	// ErrLexical covers unrecognized characters and malformed literals.
	ErrLexical ErrorKind = iota + 1
	// ErrStructural covers mismatched parentheses and missing keywords.
	ErrStructural
	// ErrSequencing covers keywords in the wrong order, such as STEP
	// before TO or a second ELSE.
	ErrSequencing
	// ErrResource covers INCLUDE targets that cannot be read.
	ErrResource
	// ErrUnsupported covers statements the front end does not handle.
	ErrUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case ErrLexical:
		return "lexical"
	case ErrStructural:
		return "syntax"
	case ErrSequencing:
		return "sequence"
	case ErrResource:
		return "resource"
	case ErrUnsupported:
		return "unsupported"
	default:
		return "parse"
	}
}

// ParseError is the parser's single last error. Line points at the
// offending tokenized line.
type ParseError struct {
	Kind   ErrorKind
	Msg    string
	Line   *LexerLine
	Column int
	Err    error
}

func newLineError(kind ErrorKind, line *LexerLine, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line}
}

// at records the column of tok when it has one.
func (e *ParseError) at(tok *Lexeme) *ParseError {
	if tok != nil && tok.Column > 0 {
		e.Column = tok.Column
	}
	return e
}

// Tag returns the program line number the error occurred on, or "" when
// the line had none.
func (e *ParseError) Tag() string {
	if e.Line == nil {
		return ""
	}
	first := e.Line.Token(0)
	switch {
	case first == nil:
		return ""
	case first.Tag != nil:
		return first.Tag.Name
	case first.IsLineNumber():
		return first.Name
	}
	return ""
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if tag := e.Tag(); tag != "" {
		fmt.Fprintf(&b, " in line %s", tag)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Line != nil {
		if frame := formatCodeFrame(e.Line, e.Column); frame != "" {
			b.WriteString("\n")
			b.WriteString(frame)
		}
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Report combines the offending line's token dump with the message.
func (e *ParseError) Report() string {
	if e.Line == nil {
		return e.Msg
	}
	return e.Line.Dump() + e.Msg
}

// Position returns the file, physical line and column of the error, looking
// through INCLUDE failures to the innermost line.
func (e *ParseError) Position() (file string, line, column int) {
	inner := e
	for {
		next, ok := inner.Err.(*ParseError)
		if !ok {
			break
		}
		inner = next
	}
	if inner.Line == nil {
		return "", 0, inner.Column
	}
	return inner.Line.File, inner.Line.Number, inner.Column
}

func syntaxError(line *LexerLine, tok *Lexeme, format string, args ...any) error {
	return newLineError(ErrStructural, line, format, args...).at(tok)
}

func sequenceError(line *LexerLine, tok *Lexeme, format string, args ...any) error {
	return newLineError(ErrSequencing, line, format, args...).at(tok)
}

func mismatchedParens(line *LexerLine, tok *Lexeme) error {
	return syntaxError(line, tok, "mismatched parentheses")
}

func missingKeyword(line *LexerLine, tok *Lexeme, keyword string) error {
	return syntaxError(line, tok, "missing %s", keyword)
}

func unexpectedToken(line *LexerLine, tok *Lexeme) error {
	if tok == nil {
		return syntaxError(line, nil, "unexpected end of statement")
	}
	return syntaxError(line, tok, "unexpected %s %s", tok.Type, tok.Name)
}

func (e *ParseError) withErr(err error) *ParseError {
	e.Err = err
	return e
}
