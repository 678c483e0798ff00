package basic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type lexState int

const (
	stateUnknown lexState = iota
	stateLiteral
	stateIdentifier
	stateKeyword
	stateOperator
	stateSeparator
	stateComment
)

const (
	separatorChars = ":(){},;#"
	operatorChars  = "+-*/=<>^\\"
)

// LexerLine owns the tokens of one source line (or of a slice of one, when
// the parser evaluates a sub-expression) and a cursor over them. Mark and
// Restore save and rewind the cursor for lookahead-and-backtrack parsing.
type LexerLine struct {
	// Text is the raw source line.
	Text string
	// Number is the 1-based physical line in File, 0 when unknown.
	Number int
	File   string

	tokens    []*Lexeme
	pos       int
	bookmarks []int

	src   []rune
	at    int
	state lexState
	word  []rune
	start int

	hasDot bool
	radix  int
}

// NewLexerLine prepares text for Evaluate.
func NewLexerLine(text string) *LexerLine {
	return &LexerLine{Text: text}
}

// Tokenize evaluates text and returns the resulting line.
func Tokenize(text string) (*LexerLine, error) {
	l := NewLexerLine(text)
	if err := l.Evaluate(); err != nil {
		return l, err
	}
	return l, nil
}

// NewLexerLineFrom builds a synthetic line over tokens, keeping the source
// position of parent for diagnostics.
func NewLexerLineFrom(parent *LexerLine, tokens []*Lexeme) *LexerLine {
	l := &LexerLine{tokens: tokens}
	if parent != nil {
		l.Text = parent.Text
		l.Number = parent.Number
		l.File = parent.File
	}
	return l
}

// Evaluate tokenizes Text. It stops at the first unrecognized character,
// still appending that character as a one-character unknown lexeme, and
// reports a lexical error; the partial token list must then be discarded.
// A REM or apostrophe comment ends the line early without error.
func (l *LexerLine) Evaluate() error {
	l.tokens = l.tokens[:0]
	l.pos = 0
	l.bookmarks = l.bookmarks[:0]
	l.src = []rune(l.Text)
	l.at = 0
	l.state = stateUnknown

	for l.at < len(l.src) {
		ch := l.src[l.at]
		var (
			done bool
			err  error
		)
		switch l.state {
		case stateUnknown:
			done, err = l.scanStart(ch)
		case stateLiteral:
			err = l.scanLiteral(ch)
		case stateIdentifier:
			done = l.scanIdentifier(ch)
		default:
			l.state = stateUnknown
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	switch l.state {
	case stateLiteral:
		return l.finishLiteral(0)
	case stateIdentifier:
		l.finishIdentifier(SubtypeAny)
	}
	return nil
}

func (l *LexerLine) scanStart(ch rune) (bool, error) {
	switch {
	case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
		l.at++
	case isDigit(ch) || ch == '.':
		l.begin(stateLiteral)
		l.radix = 10
		l.hasDot = ch == '.'
		l.word = append(l.word, ch)
		l.at++
	case ch == '&':
		next := rune(0)
		if l.at+1 < len(l.src) {
			next = unicode.ToUpper(l.src[l.at+1])
		}
		switch next {
		case 'H':
			l.radix = 16
		case 'O':
			l.radix = 8
		case 'B':
			l.radix = 2
		default:
			return false, l.badChar(ch)
		}
		l.begin(stateLiteral)
		l.hasDot = false
		l.word = append(l.word, '&', next)
		l.at += 2
	case ch == '"':
		l.scanString()
	case isLetter(ch):
		l.begin(stateIdentifier)
		l.word = append(l.word, unicode.ToUpper(ch))
		l.at++
		return l.checkKeyword(), nil
	case ch == '?' || ch == '_':
		l.emit(newLexeme(LexemeIdentifier, SubtypeAny, string(ch)), l.at)
		l.at++
	case strings.ContainsRune(separatorChars, ch):
		l.state = stateSeparator
		l.emit(newLexeme(LexemeSeparator, SubtypeAny, string(ch)), l.at)
		l.at++
		l.state = stateUnknown
	case strings.ContainsRune(operatorChars, ch):
		l.state = stateOperator
		l.emit(newLexeme(LexemeOperator, SubtypeAny, string(ch)), l.at)
		l.at++
		l.state = stateUnknown
	case ch == '\'':
		l.state = stateComment
		l.emit(newLexeme(LexemeOperator, SubtypeAny, "'"), l.at)
		l.at++
		if l.at < len(l.src) && l.src[l.at] == '#' {
			l.emit(newLexeme(LexemeComment, SubtypeAny, string(l.src[l.at:])), l.at)
		}
		l.at = len(l.src)
		return true, nil
	default:
		return false, l.badChar(ch)
	}
	return false, nil
}

func (l *LexerLine) scanString() {
	start := l.at
	end := l.at + 1
	for end < len(l.src) && l.src[end] != '"' {
		end++
	}
	if end < len(l.src) {
		end++
	}
	text := string(l.src[start:end])
	l.emit(newLexeme(LexemeLiteral, SubtypeString, text), start)
	l.at = end
}

func (l *LexerLine) scanLiteral(ch rune) error {
	if l.radix != 10 {
		if isHexDigit(ch) {
			l.word = append(l.word, unicode.ToUpper(ch))
			l.at++
			return nil
		}
		return l.finishLiteral(0)
	}
	switch {
	case isDigit(ch):
		l.word = append(l.word, ch)
		l.at++
	case ch == '.':
		if l.hasDot {
			l.word = append(l.word, ch)
			l.emit(newLexeme(LexemeLiteral, SubtypeUnknown, string(l.word)), l.start)
			l.state = stateUnknown
			return newLineError(ErrLexical, l, "duplicate decimal point in %s", string(l.word))
		}
		l.hasDot = true
		l.word = append(l.word, ch)
		l.at++
	case ch == '%' || ch == '#' || ch == '!':
		l.at++
		return l.finishLiteral(ch)
	default:
		return l.finishLiteral(0)
	}
	return nil
}

func (l *LexerLine) finishLiteral(suffix rune) error {
	text := string(l.word)
	lex := newLexeme(LexemeLiteral, SubtypeNumeric, text)
	if suffix != 0 {
		lex.Name = text + string(suffix)
	}
	l.state = stateUnknown

	if l.radix != 10 {
		// An out of range or empty radix constant stays unresolved; the
		// expression parser rejects it, DATA converts it to 0 with a warning.
		if value, ok := radixToDecimal(text); ok {
			lex.Value = value
		} else {
			lex.Subtype = SubtypeUnknown
		}
		l.emit(lex, l.start)
		return nil
	}

	lex.Subtype = literalSubtype(text, l.hasDot)
	switch suffix {
	case '%':
		lex.Subtype = SubtypeNumeric
	case '#':
		lex.Subtype = SubtypeDoubleDecimal
	case '!':
		lex.Subtype = SubtypeSingleDecimal
	}
	l.emit(lex, l.start)
	return nil
}

// literalSubtype applies the MSX promotion rules to an unsuffixed decimal
// literal: integers up to 32767 stay numeric, longer values become single
// precision and anything past six characters double precision.
func literalSubtype(text string, hasDot bool) LexemeSubtype {
	if hasDot {
		return SubtypeDoubleDecimal
	}
	n := len(text)
	if n <= 4 {
		return SubtypeNumeric
	}
	if n == 5 {
		if v, err := strconv.Atoi(text); err == nil && v <= 32767 {
			return SubtypeNumeric
		}
	}
	if n > 6 {
		return SubtypeDoubleDecimal
	}
	return SubtypeSingleDecimal
}

// radixToDecimal converts &H, &O and &B text to a decimal string. Values
// above 32767 wrap to negative 16-bit integers the way MSX BASIC reads them.
func radixToDecimal(text string) (string, bool) {
	if len(text) < 3 || text[0] != '&' {
		return "", false
	}
	base := 0
	switch unicode.ToUpper(rune(text[1])) {
	case 'H':
		base = 16
	case 'O':
		base = 8
	case 'B':
		base = 2
	default:
		return "", false
	}
	v, err := strconv.ParseUint(text[2:], base, 32)
	if err != nil || v > 0xFFFF {
		return "", false
	}
	if v > 32767 {
		return strconv.Itoa(int(v) - 0x10000), true
	}
	return strconv.FormatUint(v, 10), true
}

func (l *LexerLine) scanIdentifier(ch rune) bool {
	switch {
	case isLetter(ch) || isDigit(ch) || ch == '_':
		l.word = append(l.word, unicode.ToUpper(ch))
		l.at++
		return l.checkKeyword()
	case ch == '%' || ch == '$' || ch == '!' || ch == '#':
		l.word = append(l.word, ch)
		l.at++
		if l.checkKeyword() {
			return true
		}
		if l.state != stateIdentifier {
			return false
		}
		var st LexemeSubtype
		switch ch {
		case '%':
			st = SubtypeNumeric
		case '$':
			st = SubtypeString
		case '!':
			st = SubtypeSingleDecimal
		case '#':
			st = SubtypeDoubleDecimal
		}
		l.finishIdentifier(st)
	default:
		l.finishIdentifier(SubtypeAny)
	}
	return false
}

// checkKeyword commits the identifier under construction as a keyword when
// it is reserved, first extending it to the longest reserved word reachable
// within maxKeywordLookahead characters. It reports whether the rest of the
// line must be discarded (REM).
func (l *LexerLine) checkKeyword() bool {
	word := string(l.word)
	if !reservedSet[word] {
		return false
	}

	best, extra := word, 0
	ext := []rune(word)
	for i := 0; i < maxKeywordLookahead && l.at+i < len(l.src); i++ {
		c := unicode.ToUpper(l.src[l.at+i])
		if !isLetter(c) && !isDigit(c) && c != '$' {
			break
		}
		ext = append(ext, c)
		if reservedSet[string(ext)] {
			best, extra = string(ext), i+1
		}
	}
	l.at += extra

	l.state = stateKeyword
	lex := newLexeme(LexemeKeyword, SubtypeAny, best)
	switch {
	case operatorWords[best]:
		lex.Type = LexemeOperator
		lex.Subtype = SubtypeBooleanOperator
	case functionWords[best]:
		lex.Subtype = SubtypeFunction
	}
	l.emit(lex, l.start)
	l.state = stateUnknown

	if best == "REM" {
		l.at = len(l.src)
		return true
	}
	return false
}

func (l *LexerLine) finishIdentifier(st LexemeSubtype) {
	l.emit(newLexeme(LexemeIdentifier, st, string(l.word)), l.start)
	l.state = stateUnknown
}

func (l *LexerLine) begin(state lexState) {
	l.state = state
	l.word = l.word[:0]
	l.start = l.at
}

func (l *LexerLine) emit(lex *Lexeme, at int) {
	lex.Column = at + 1
	l.tokens = append(l.tokens, lex)
}

func (l *LexerLine) badChar(ch rune) error {
	l.emit(newLexeme(LexemeUnknown, SubtypeUnknown, string(ch)), l.at)
	l.state = stateUnknown
	return newLineError(ErrLexical, l, "unrecognized character %q at column %d", ch, l.at+1)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'A' && r <= 'F') || (r >= 'a' && r <= 'f')
}

// Len returns the number of tokens on the line.
func (l *LexerLine) Len() int {
	return len(l.tokens)
}

// Tokens returns the line's tokens. The slice must not be modified.
func (l *LexerLine) Tokens() []*Lexeme {
	return l.tokens
}

// Token returns the i-th token or nil.
func (l *LexerLine) Token(i int) *Lexeme {
	if i < 0 || i >= len(l.tokens) {
		return nil
	}
	return l.tokens[i]
}

// First rewinds the cursor and returns the first token.
func (l *LexerLine) First() *Lexeme {
	l.pos = 0
	return l.Next()
}

// Next returns the token under the cursor and advances past it.
func (l *LexerLine) Next() *Lexeme {
	if l.pos >= len(l.tokens) {
		return nil
	}
	tok := l.tokens[l.pos]
	l.pos++
	return tok
}

// Peek returns the token under the cursor without advancing.
func (l *LexerLine) Peek() *Lexeme {
	return l.Token(l.pos)
}

// PeekN returns the token n positions past the cursor.
func (l *LexerLine) PeekN(n int) *Lexeme {
	return l.Token(l.pos + n)
}

// Current returns the token most recently returned by Next.
func (l *LexerLine) Current() *Lexeme {
	return l.Token(l.pos - 1)
}

// Prev steps the cursor back one token and returns the token now under it.
func (l *LexerLine) Prev() *Lexeme {
	if l.pos > 0 {
		l.pos--
	}
	return l.Peek()
}

// AtEnd reports whether the cursor is past the last token.
func (l *LexerLine) AtEnd() bool {
	return l.pos >= len(l.tokens)
}

// Pos returns the cursor index.
func (l *LexerLine) Pos() int {
	return l.pos
}

// Seek moves the cursor to index i.
func (l *LexerLine) Seek(i int) {
	l.pos = max(0, min(i, len(l.tokens)))
}

// Mark pushes the cursor on the bookmark stack.
func (l *LexerLine) Mark() {
	l.bookmarks = append(l.bookmarks, l.pos)
}

// Restore pops the last bookmark and rewinds the cursor to it.
func (l *LexerLine) Restore() {
	if n := len(l.bookmarks); n > 0 {
		l.pos = l.bookmarks[n-1]
		l.bookmarks = l.bookmarks[:n-1]
	}
}

// Release pops the last bookmark keeping the cursor where it is.
func (l *LexerLine) Release() {
	if n := len(l.bookmarks); n > 0 {
		l.bookmarks = l.bookmarks[:n-1]
	}
}

// Rest returns the tokens from the cursor to the end of the line.
func (l *LexerLine) Rest() []*Lexeme {
	if l.pos >= len(l.tokens) {
		return nil
	}
	return l.tokens[l.pos:]
}

// Sub returns a synthetic line over tokens that shares this line's source
// position.
func (l *LexerLine) Sub(tokens []*Lexeme) *LexerLine {
	return NewLexerLineFrom(l, tokens)
}

// Dump renders the tokens one per line for diagnostics.
func (l *LexerLine) Dump() string {
	var b strings.Builder
	for i, tok := range l.tokens {
		marker := " "
		if i == l.pos {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %2d %s\n", marker, i, tok)
	}
	return b.String()
}

func (l *LexerLine) String() string {
	parts := make([]string, len(l.tokens))
	for i, tok := range l.tokens {
		parts[i] = tok.Name
	}
	return strings.Join(parts, " ")
}
