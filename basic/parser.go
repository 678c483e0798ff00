package basic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Config controls how a Parser resolves INCLUDE directives and where it
// reports warnings.
type Config struct {
	// IncludePaths are searched, in order, after the including file's own
	// directory.
	IncludePaths []string
	// Open opens an INCLUDE target. The default reads the OS filesystem.
	Open func(name string) (io.ReadCloser, error)
	// Logger receives warnings such as duplicate line numbers. The default
	// discards everything.
	Logger *slog.Logger
}

// OpenFS returns an opener for Config.Open that reads from fsys.
func OpenFS(fsys fs.FS) func(string) (io.ReadCloser, error) {
	return func(name string) (io.ReadCloser, error) {
		return fsys.Open(path.Clean(filepath.ToSlash(name)))
	}
}

type statementFn func(p *Parser, line *LexerLine) error

type statement struct {
	fn statementFn
	// ownsStack marks grammars that push and pop their own nodes.
	ownsStack bool
}

// Parser turns tokenized lines into tags. It is not safe for concurrent
// use; a parse stops at the first error.
type Parser struct {
	cfg        Config
	log        *slog.Logger
	ctx        *ParserContext
	statements map[string]statement

	file    string
	lastErr *ParseError
}

// NewParser returns a parser with an empty context.
func NewParser(cfg Config) *Parser {
	if cfg.Open == nil {
		cfg.Open = func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	p := &Parser{
		cfg: cfg,
		log: log,
		ctx: NewParserContext(),
	}
	p.registerStatements()
	return p
}

// Reset discards every tag, symbol and the last error.
func (p *Parser) Reset() {
	p.ctx.Reset()
	p.lastErr = nil
	p.file = ""
}

// Context exposes the tables built so far.
func (p *Parser) Context() *ParserContext {
	return p.ctx
}

// Tags returns the tags in source order.
func (p *Parser) Tags() []*TagNode {
	return p.ctx.Tags
}

// Line returns the tag of program line n, or nil.
func (p *Parser) Line(n int) *TagNode {
	return p.ctx.Line(n)
}

// Err returns the last error, or nil.
func (p *Parser) Err() *ParseError {
	return p.lastErr
}

// ErrorLine returns the line the last error was found on, looking through
// INCLUDE failures to the included file's line.
func (p *Parser) ErrorLine() *LexerLine {
	e := p.lastErr
	if e == nil {
		return nil
	}
	for {
		inner, ok := e.Err.(*ParseError)
		if !ok || inner.Line == nil {
			return e.Line
		}
		e = inner
	}
}

func (p *Parser) fail(err error) error {
	var pe *ParseError
	if !errors.As(err, &pe) {
		pe = &ParseError{Kind: ErrStructural, Msg: err.Error()}
	}
	p.lastErr = pe
	return pe
}

// ParseLine adds one tokenized line to the tree.
func (p *Parser) ParseLine(line *LexerLine) error {
	if err := p.parseLine(line); err != nil {
		return p.fail(err)
	}
	return nil
}

// ParseSource tokenizes and parses every line read from r. name is used
// in diagnostics and to resolve relative INCLUDE targets.
func (p *Parser) ParseSource(name string, r io.Reader) error {
	if name != "" {
		p.ctx.includes = append(p.ctx.includes, filepath.Clean(name))
		defer func() { p.ctx.includes = p.ctx.includes[:len(p.ctx.includes)-1] }()
	}
	if err := p.parseStream(name, r); err != nil {
		return p.fail(err)
	}
	return nil
}

// ParseFile opens path through Config.Open and parses it.
func (p *Parser) ParseFile(path string) error {
	rc, err := p.cfg.Open(path)
	if err != nil {
		return p.fail(&ParseError{Kind: ErrResource, Msg: fmt.Sprintf("cannot open %s", path), Err: err})
	}
	defer rc.Close()
	return p.ParseSource(path, rc)
}

func (p *Parser) parseStream(name string, r io.Reader) error {
	prevFile := p.file
	p.file = name
	defer func() { p.file = prevFile }()

	reader := bufio.NewReader(r)
	number := 0
	for {
		text, err := reader.ReadString('\n')
		if text != "" {
			number++
			line := NewLexerLine(strings.TrimRight(text, "\r\n"))
			line.Number = number
			line.File = name
			if lexErr := line.Evaluate(); lexErr != nil {
				return lexErr
			}
			if parseErr := p.parseLine(line); parseErr != nil {
				return parseErr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &ParseError{Kind: ErrResource, Msg: fmt.Sprintf("read %s", name), Err: err}
		}
	}
}

func (p *Parser) parseLine(line *LexerLine) error {
	first := line.First()
	if first == nil {
		return nil
	}
	switch {
	case first.IsLineNumber():
		p.beginLine(first)
		for _, tok := range line.Tokens() {
			tok.Tag = p.ctx.tag
		}
		return p.parsePhrases(line)
	case first.IsKeyword("FILE"), first.IsKeyword("TEXT"):
		return p.parseResource(line, first)
	case first.IsKeyword("INCLUDE"):
		return p.parseInclude(line, first)
	default:
		p.log.Debug("ignoring line without line number", "file", line.File, "line", line.Number)
		return nil
	}
}

func (p *Parser) beginLine(number *Lexeme) {
	tag := newTag(number.Value)
	p.ctx.addTag(tag)
	n, _ := strconv.Atoi(number.Value)
	if p.ctx.lines.insert(n, tag) {
		p.log.Warn("duplicate line number", "line", n)
	}
}

// parseResource handles the FILE and TEXT directives, each registering one
// resource under a directive tag.
func (p *Parser) parseResource(line *LexerLine, kw *Lexeme) error {
	arg := line.Next()
	if arg == nil {
		return syntaxError(line, kw, "missing %s argument", kw.Value)
	}
	if arg.Type != LexemeLiteral || arg.Subtype != SubtypeString {
		return syntaxError(line, arg, "%s expects a quoted name", kw.Value)
	}
	if extra := line.Next(); extra != nil {
		return unexpectedToken(line, extra)
	}

	p.ctx.addTag(newTag(DirectiveTag))
	res := arg.Clone()
	res.Subtype = SubtypeBinaryData
	if kw.IsKeyword("TEXT") {
		res.Subtype = SubtypeBasicString
	}
	p.ctx.push(kw)
	p.ctx.add(res)
	p.ctx.pop()
	p.ctx.ResourceCount++
	return nil
}

func (p *Parser) parseInclude(line *LexerLine, kw *Lexeme) error {
	arg := line.Next()
	if arg == nil || arg.Type != LexemeLiteral || arg.Subtype != SubtypeString {
		return syntaxError(line, kw, "INCLUDE expects a quoted file name")
	}
	if extra := line.Next(); extra != nil {
		return unexpectedToken(line, extra)
	}
	name := strings.Trim(arg.Value, `"`)

	rc, resolved, err := p.openInclude(name)
	if err != nil {
		return newLineError(ErrResource, line, "cannot open include %q", name).withErr(err).at(arg)
	}
	defer rc.Close()

	for _, open := range p.ctx.includes {
		if open == resolved {
			return newLineError(ErrResource, line, "circular include of %q", name).at(arg)
		}
	}
	p.ctx.includes = append(p.ctx.includes, resolved)
	defer func() { p.ctx.includes = p.ctx.includes[:len(p.ctx.includes)-1] }()

	p.log.Debug("include", "name", name, "path", resolved)
	if err := p.parseStream(resolved, rc); err != nil {
		return newLineError(ErrResource, line, "include %q failed", name).withErr(err).at(arg)
	}
	return nil
}

// openInclude tries the including file's directory, then name as given,
// then each include path.
func (p *Parser) openInclude(name string) (io.ReadCloser, string, error) {
	var candidates []string
	if filepath.IsAbs(name) {
		candidates = []string{name}
	} else {
		if p.file != "" {
			candidates = append(candidates, filepath.Join(filepath.Dir(p.file), name))
		}
		candidates = append(candidates, filepath.Clean(name))
		for _, dir := range p.cfg.IncludePaths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	var firstErr error
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		rc, err := p.cfg.Open(candidate)
		if err == nil {
			return rc, candidate, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, "", firstErr
}

// parsePhrases splits the rest of line on colons outside IF statements and
// parses each phrase. An apostrophe ends the line; the comment becomes the
// last phrase.
func (p *Parser) parsePhrases(line *LexerLine) error {
	var (
		phrase  []*Lexeme
		ifCount int
	)
	flush := func() error {
		if len(phrase) == 0 {
			return nil
		}
		err := p.parsePhrase(line.Sub(phrase))
		phrase = nil
		return err
	}

	for tok := line.Next(); tok != nil; tok = line.Next() {
		switch {
		case tok.IsOperator("'"):
			if err := flush(); err != nil {
				return err
			}
			phrase = append([]*Lexeme{tok}, line.Rest()...)
			line.Seek(line.Len())
		case tok.IsSeparator(":") && ifCount == 0:
			if err := flush(); err != nil {
				return err
			}
		default:
			if tok.IsKeyword("IF") {
				ifCount++
			}
			phrase = append(phrase, tok)
		}
	}
	return flush()
}

// parsePhrase routes one statement to its grammar. Variables and built-in
// functions on the left start an implicit LET.
func (p *Parser) parsePhrase(line *LexerLine) error {
	first := line.First()
	line.Seek(0)
	switch {
	case first == nil:
		return nil
	case first.Type == LexemeIdentifier && first.Value == "?":
		line.Next()
		return p.dispatch(line, alias(first, "PRINT"))
	case first.Type == LexemeIdentifier && first.Value == "_":
		line.Next()
		return p.dispatch(line, alias(first, "CALL"))
	case first.Type == LexemeIdentifier:
		return p.parseAssignment(line)
	case first.Type == LexemeKeyword && first.Subtype == SubtypeFunction && !first.IsKeyword("STRIG"):
		return p.parseAssignment(line)
	case first.Type == LexemeKeyword, first.IsOperator("'"):
		line.Next()
		return p.dispatch(line, first)
	default:
		return syntaxError(line, first, "unexpected %s %s at start of statement", first.Type, first.Name)
	}
}

// alias turns the ? and _ shorthands into the keyword they stand for,
// keeping the source spelling in Name.
func alias(tok *Lexeme, keyword string) *Lexeme {
	l := tok.Clone()
	l.Type = LexemeKeyword
	l.Value = keyword
	return l
}

func (p *Parser) dispatch(line *LexerLine, kw *Lexeme) error {
	stmt, ok := p.statements[kw.Value]
	if !ok {
		err := newLineError(ErrUnsupported, line, "unsupported statement %s", kw.Name).at(kw)
		if hint := suggestStatement(kw.Value, p.statementNames()); hint != "" {
			err.Msg += fmt.Sprintf(" (did you mean %s?)", hint)
		}
		return err
	}
	if stmt.ownsStack {
		return stmt.fn(p, line)
	}
	p.ctx.push(kw)
	defer p.ctx.pop()
	return stmt.fn(p, line)
}

func (p *Parser) statementNames() []string {
	names := make([]string, 0, len(p.statements))
	for name := range p.statements {
		if name != "'" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// parseAssignment parses "target = expr" under a LET node, synthesizing
// the LET unless the active parent already is one.
func (p *Parser) parseAssignment(line *LexerLine) error {
	tokens := line.Rest()
	eq := -1
	depth := 0
	for i, tok := range tokens {
		switch {
		case tok.IsSeparator("("):
			depth++
		case tok.IsSeparator(")"):
			depth--
		case tok.IsOperator("=") && depth == 0:
			eq = i
		}
		if eq >= 0 {
			break
		}
	}
	if eq < 0 {
		err := newLineError(ErrStructural, line, "missing = in assignment")
		if first := line.Peek(); first != nil {
			err.at(first)
			if first.Type == LexemeIdentifier && len(tokens) > 1 {
				if hint := suggestStatement(first.Value, p.statementNames()); hint != "" {
					err.Msg += fmt.Sprintf(" (did you mean %s?)", hint)
				}
			}
		}
		return err
	}
	if eq == 0 {
		return syntaxError(line, tokens[0], "missing assignment target")
	}

	target, err := p.evaluateTokens(line, tokens[:eq])
	if err != nil {
		return err
	}
	switch lex := target.Lexeme; {
	case lex.Type == LexemeIdentifier:
	case lex.Type == LexemeKeyword && lex.Subtype == SubtypeFunction:
	default:
		return syntaxError(line, lex, "cannot assign to %s", lex.Name)
	}
	value, err := p.evaluateTokens(line, tokens[eq+1:])
	if err != nil {
		return err
	}

	if top := p.ctx.top(); top == nil || !top.Lexeme.IsKeyword("LET") {
		p.ctx.push(syntheticKeyword("LET"))
		defer p.ctx.pop()
	}
	p.ctx.attach(target)
	p.ctx.attach(value)
	line.Seek(line.Len())
	return nil
}
