package basic

import (
	"fmt"
	"strings"
)

// LexemeType identifies the lexical category of a lexeme.
type LexemeType int

const (
	LexemeUnknown LexemeType = iota
	LexemeIdentifier
	LexemeKeyword
	LexemeSeparator
	LexemeOperator
	LexemeLiteral
	LexemeComment
)

func (t LexemeType) String() string {
	switch t {
	case LexemeIdentifier:
		return "identifier"
	case LexemeKeyword:
		return "keyword"
	case LexemeSeparator:
		return "separator"
	case LexemeOperator:
		return "operator"
	case LexemeLiteral:
		return "literal"
	case LexemeComment:
		return "comment"
	default:
		return "unknown"
	}
}

// LexemeSubtype refines a LexemeType with value or role information.
type LexemeSubtype int

const (
	SubtypeAny LexemeSubtype = iota
	SubtypeString
	SubtypeNumeric
	SubtypeSingleDecimal
	SubtypeDoubleDecimal
	SubtypeBasicString
	SubtypeBooleanOperator
	SubtypeFunction
	SubtypeNull
	SubtypeBinaryData
	SubtypeIntegerData
	SubtypeUnknown
)

func (s LexemeSubtype) String() string {
	switch s {
	case SubtypeAny:
		return "any"
	case SubtypeString:
		return "string"
	case SubtypeNumeric:
		return "numeric"
	case SubtypeSingleDecimal:
		return "single"
	case SubtypeDoubleDecimal:
		return "double"
	case SubtypeBasicString:
		return "basic-string"
	case SubtypeBooleanOperator:
		return "boolean"
	case SubtypeFunction:
		return "function"
	case SubtypeNull:
		return "null"
	case SubtypeBinaryData:
		return "binary"
	case SubtypeIntegerData:
		return "integer-data"
	default:
		return "unknown"
	}
}

// Lexeme is one classified unit of source text. Name keeps the spelling
// found in the source (upper-cased outside strings); Value holds the
// resolved value and may be rewritten while parsing, for example when "<"
// and "=" are merged into "<=".
type Lexeme struct {
	Type    LexemeType
	Subtype LexemeSubtype
	Name    string
	Value   string

	IsArray   bool
	IsUnary   bool
	ParmCount int

	// Tag is the line the lexeme was read on; nil for synthetic lexemes.
	Tag *TagNode
	// Column is the 1-based source column, 0 for synthetic lexemes.
	Column int
}

func newLexeme(tt LexemeType, st LexemeSubtype, value string) *Lexeme {
	return &Lexeme{Type: tt, Subtype: st, Name: value, Value: value}
}

// Clone returns a copy that does not share identity with l.
func (l *Lexeme) Clone() *Lexeme {
	c := *l
	return &c
}

// IsKeyword reports whether l is the keyword name (case-insensitive).
func (l *Lexeme) IsKeyword(name string) bool {
	return l != nil && l.Type == LexemeKeyword && strings.EqualFold(l.Value, name)
}

// IsWord reports whether l is a keyword or word operator spelled name. Word
// operators such as AND or XOR also act as raster-operation keywords.
func (l *Lexeme) IsWord(name string) bool {
	if l == nil {
		return false
	}
	if l.Type != LexemeKeyword && l.Type != LexemeOperator && l.Type != LexemeIdentifier {
		return false
	}
	return strings.EqualFold(l.Name, name)
}

func (l *Lexeme) IsSeparator(value string) bool {
	return l != nil && l.Type == LexemeSeparator && l.Value == value
}

func (l *Lexeme) IsOperator(value string) bool {
	return l != nil && l.Type == LexemeOperator && l.Value == value
}

// IsNumericLiteral reports whether l is a numeric literal of any precision.
func (l *Lexeme) IsNumericLiteral() bool {
	if l == nil || l.Type != LexemeLiteral {
		return false
	}
	switch l.Subtype {
	case SubtypeNumeric, SubtypeSingleDecimal, SubtypeDoubleDecimal:
		return true
	}
	return false
}

// IsLineNumber reports whether l can name a program line.
func (l *Lexeme) IsLineNumber() bool {
	if !l.IsNumericLiteral() || l.Value == "" {
		return false
	}
	for _, r := range l.Value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (l *Lexeme) String() string {
	if l == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(l.Type.String())
	if l.Subtype != SubtypeAny {
		b.WriteString(".")
		b.WriteString(l.Subtype.String())
	}
	fmt.Fprintf(&b, " %s", l.Value)
	if l.Name != l.Value {
		fmt.Fprintf(&b, " (%s)", l.Name)
	}
	if l.IsArray {
		b.WriteString(" []")
	}
	if l.IsUnary {
		b.WriteString(" unary")
	}
	if l.ParmCount > 0 {
		fmt.Fprintf(&b, " /%d", l.ParmCount)
	}
	return b.String()
}

// nullLexeme marks an omitted argument, as in COLOR ,1 or ON X GOTO 10,,30.
var nullLexeme = &Lexeme{Type: LexemeLiteral, Subtype: SubtypeNull, Name: "NULL", Value: "NULL"}

func syntheticKeyword(name string) *Lexeme {
	return newLexeme(LexemeKeyword, SubtypeAny, name)
}

func syntheticFunction(name string, parms int) *Lexeme {
	l := newLexeme(LexemeKeyword, SubtypeFunction, name)
	l.ParmCount = parms
	return l
}

func syntheticNumber(value string) *Lexeme {
	return newLexeme(LexemeLiteral, SubtypeNumeric, value)
}
