package basic

import "strings"

func (p *Parser) registerStatements() {
	p.statements = make(map[string]statement)
	register := func(fn statementFn, keywords ...string) {
		for _, kw := range keywords {
			p.statements[kw] = statement{fn: fn}
		}
	}

	register(parseComment, "'")
	register(parseRem, "REM")
	register(parseLet, "LET")
	register(parsePrint, "PRINT", "LPRINT")
	register(parseInput, "INPUT")
	register(parseLineStatement, "LINE")
	register(parseData, "DATA")
	register(parseIData, "IDATA")
	register(parseDef, "DEF")
	register(parseFor, "FOR")
	register(parseNext, "NEXT")
	register(parseJump, "GOTO", "GOSUB")
	register(parseOn, "ON")
	register(parseColor, "COLOR")
	register(parseSubForm, "SCREEN", "SET", "GET", "PUT", "SPRITE")
	register(parseShape, "PSET", "PRESET", "CIRCLE", "PAINT")
	register(parseCopy, "COPY")
	register(parseCall, "CALL")
	register(parseCmd, "CMD")
	register(parseOpen, "OPEN")
	register(parseClose, "CLOSE")
	register(parseMaxFiles, "MAX")
	register(parsePlay, "PLAY")
	register(parseArguments,
		"BEEP", "BLOAD", "BSAVE", "CLEAR", "CLS", "DIM", "DRAW", "END", "ERASE",
		"ERROR", "INTERVAL", "IREAD", "IRESTORE", "KEY", "LOCATE", "MOTOR",
		"OUT", "POKE", "READ", "RESTORE", "RESUME", "RETURN", "RUN", "SOUND",
		"STOP", "STRIG", "SWAP", "VPOKE", "WAIT", "WIDTH")

	p.statements["IF"] = statement{fn: parseIf, ownsStack: true}
}

func parseComment(p *Parser, line *LexerLine) error {
	if tok := line.Next(); tok != nil && tok.Type == LexemeComment {
		p.ctx.add(tok)
	}
	return nil
}

func parseRem(*Parser, *LexerLine) error {
	return nil
}

func parseLet(p *Parser, line *LexerLine) error {
	if line.AtEnd() {
		return syntaxError(line, line.Current(), "missing assignment after LET")
	}
	return p.parseAssignment(line)
}

func parseJump(p *Parser, line *LexerLine) error {
	kw := line.Current()
	target := line.Next()
	if target == nil {
		return syntaxError(line, kw, "missing line number after %s", kw.Value)
	}
	if !target.IsLineNumber() {
		return syntaxError(line, target, "line number expected after %s", kw.Value)
	}
	if extra := line.Next(); extra != nil {
		return unexpectedToken(line, extra)
	}
	p.ctx.add(target)
	return nil
}

func parseArguments(p *Parser, line *LexerLine) error {
	return p.arguments(line, p.ctx.top(), line.Rest())
}

func parsePlay(p *Parser, line *LexerLine) error {
	p.ctx.Features.Play = true
	return p.arguments(line, p.ctx.top(), line.Rest())
}

// arguments parses a comma or semicolon separated argument list under
// parent. An omitted argument leaves a null placeholder so positions are
// kept; a bare ON, OFF or STOP (optionally after a parenthesized index, as
// in KEY(1) ON) becomes a keyword leaf.
func (p *Parser) arguments(line *LexerLine, parent *ActionNode, tokens []*Lexeme) error {
	if len(tokens) == 0 {
		return nil
	}
	if node, ok, err := p.toggle(line, tokens); ok || err != nil {
		if err != nil {
			return err
		}
		parent.Actions = append(parent.Actions, node...)
		return nil
	}

	slots, seps, err := splitArgs(line, tokens, ",;")
	if err != nil {
		return err
	}
	for i, slot := range slots {
		node, err := p.argument(line, slot)
		if err != nil {
			return err
		}
		if node == nil && i == len(slots)-1 && len(seps) > 0 && seps[len(seps)-1].IsSeparator(";") {
			break
		}
		if node == nil {
			node = newAction(nullLexeme)
		}
		parent.Add(node)
	}
	return nil
}

// argument parses one argument slot, nil for an empty slot.
func (p *Parser) argument(line *LexerLine, slot []*Lexeme) (*ActionNode, error) {
	switch {
	case len(slot) == 0:
		return nil, nil
	case slot[0].IsSeparator("#"):
		if len(slot) == 1 {
			return nil, syntaxError(line, slot[0], "missing file number after #")
		}
		channel := newAction(slot[0])
		expr, err := p.evaluateTokens(line, slot[1:])
		if err != nil {
			return nil, err
		}
		channel.Add(expr)
		return channel, nil
	case len(slot) == 1 && slot[0].Type == LexemeKeyword && !isOperand(slot[0]):
		return newAction(slot[0]), nil
	}
	return p.evaluateTokens(line, slot)
}

var toggleWords = []string{"ON", "OFF", "STOP"}

func isToggle(l *Lexeme) bool {
	for _, w := range toggleWords {
		if l.IsKeyword(w) {
			return true
		}
	}
	return false
}

// toggle recognizes "(n) ON|OFF|STOP" and "ON|OFF|STOP" argument lists.
func (p *Parser) toggle(line *LexerLine, tokens []*Lexeme) ([]*ActionNode, bool, error) {
	last := tokens[len(tokens)-1]
	if !isToggle(last) {
		return nil, false, nil
	}
	if len(tokens) == 1 {
		return []*ActionNode{newAction(last)}, true, nil
	}
	if !tokens[0].IsSeparator("(") || !tokens[len(tokens)-2].IsSeparator(")") {
		return nil, false, nil
	}
	index, err := p.evaluateTokens(line, tokens[1:len(tokens)-2])
	if err != nil {
		return nil, true, err
	}
	return []*ActionNode{index, newAction(last)}, true, nil
}

// splitArgs splits tokens on the top-level separators in seps and returns
// the slots together with the separators found between them. There is
// always one more slot than separators.
func splitArgs(line *LexerLine, tokens []*Lexeme, seps string) ([][]*Lexeme, []*Lexeme, error) {
	var (
		slots [][]*Lexeme
		found []*Lexeme
		cur   []*Lexeme
		depth int
	)
	for _, tok := range tokens {
		switch {
		case tok.IsSeparator("("):
			depth++
		case tok.IsSeparator(")"):
			depth--
			if depth < 0 {
				return nil, nil, mismatchedParens(line, tok)
			}
		case depth == 0 && tok.Type == LexemeSeparator && len(tok.Value) == 1 && strings.Contains(seps, tok.Value):
			slots = append(slots, cur)
			found = append(found, tok)
			cur = nil
			continue
		}
		cur = append(cur, tok)
	}
	if depth != 0 {
		return nil, nil, mismatchedParens(line, tokens[0])
	}
	return append(slots, cur), found, nil
}

// indexWord returns the index of the first top-level keyword among words,
// or -1.
func indexWord(tokens []*Lexeme, words ...string) int {
	depth := 0
	for i, tok := range tokens {
		switch {
		case tok.IsSeparator("("):
			depth++
		case tok.IsSeparator(")"):
			depth--
		case depth == 0:
			for _, w := range words {
				if tok.IsKeyword(w) {
					return i
				}
			}
		}
	}
	return -1
}

// parseCall handles CALL and its _ shorthand: a routine name followed by a
// parenthesized parameter list or a plain argument list.
func parseCall(p *Parser, line *LexerLine) error {
	name := line.Next()
	if name == nil {
		return syntaxError(line, line.Current(), "missing CALL routine name")
	}
	if name.Type != LexemeIdentifier && name.Type != LexemeKeyword {
		return syntaxError(line, name, "invalid CALL routine name %s", name.Name)
	}
	routine := p.ctx.push(name)
	defer p.ctx.pop()

	if line.Peek().IsSeparator("(") {
		params, err := p.parameters(line)
		if err != nil {
			return err
		}
		name.ParmCount = len(params)
		routine.ParmCount = len(params)
		routine.Actions = append(routine.Actions, params...)
		if extra := line.Next(); extra != nil {
			return unexpectedToken(line, extra)
		}
		return nil
	}
	return p.arguments(line, routine, line.Rest())
}

// parseCmd handles the CMD extension commands. Player and font commands
// switch on the runtime support they need.
func parseCmd(p *Parser, line *LexerLine) error {
	sub := line.Next()
	if sub == nil {
		return syntaxError(line, line.Current(), "missing CMD command")
	}
	if sub.Type != LexemeIdentifier && sub.Type != LexemeKeyword {
		return syntaxError(line, sub, "invalid CMD command %s", sub.Name)
	}

	sub = joinAdjacent(line, sub)
	name := sub.Name
	switch {
	case strings.HasPrefix(name, "PT3"):
		p.ctx.Features.PT3 = true
	case strings.HasPrefix(name, "AKM"):
		p.ctx.Features.AKM = true
	case strings.HasPrefix(name, "MTF"):
		p.ctx.Features.MTF = true
	case name == "SETFNT":
		p.ctx.Features.Font = true
	case sub.IsKeyword("RESTORE"):
		p.ctx.Features.ResourceRestore = true
	}

	cmd := p.ctx.push(sub)
	defer p.ctx.pop()
	return p.arguments(line, cmd, line.Rest())
}

// joinAdjacent glues words written without spaces back into one name, so
// that CMD AKMPLAY stays a single command even though AKM is reserved.
func joinAdjacent(line *LexerLine, first *Lexeme) *Lexeme {
	joined := first
	end := first.Column + len([]rune(first.Name))
	for next := line.Peek(); next != nil && first.Column > 0 && next.Column == end; next = line.Peek() {
		if next.Type != LexemeIdentifier && next.Type != LexemeKeyword {
			break
		}
		if joined == first {
			joined = first.Clone()
			joined.Type = LexemeIdentifier
			joined.Subtype = SubtypeAny
		}
		joined.Name += next.Name
		joined.Value = joined.Name
		end += len([]rune(next.Name))
		line.Next()
	}
	return joined
}

// parseDef handles DEFINT, DEFSTR, DEFSNG, DEFDBL and DEF USR.
func parseDef(p *Parser, line *LexerLine) error {
	sub := line.Next()
	if sub == nil {
		return syntaxError(line, line.Current(), "missing DEF type")
	}
	if sub.IsKeyword("USR") {
		return p.parseDefUsr(line, sub)
	}
	if sub.IsWord("FN") || strings.HasPrefix(sub.Name, "FN") {
		return newLineError(ErrUnsupported, line, "DEF FN is not supported").at(sub)
	}
	defType, ok := defTypeFor(sub.Name)
	if !ok {
		return syntaxError(line, sub, "unknown DEF type %s", sub.Name)
	}

	def := p.ctx.top()
	def.Add(newAction(sub))
	slots, _, err := splitArgs(line, line.Rest(), ",")
	if err != nil {
		return err
	}
	for _, slot := range slots {
		node, first, last, err := defRange(line, slot)
		if err != nil {
			return err
		}
		p.ctx.SetDefType(first, last, defType)
		def.Add(node)
	}
	return nil
}

func defRange(line *LexerLine, slot []*Lexeme) (*ActionNode, byte, byte, error) {
	switch {
	case len(slot) == 1 && isDefLetter(slot[0]):
		ch := slot[0].Name[0]
		return newAction(slot[0]), ch, ch, nil
	case len(slot) == 3 && isDefLetter(slot[0]) && slot[1].IsOperator("-") && isDefLetter(slot[2]):
		node := newAction(slot[1])
		node.Add(newAction(slot[0]))
		node.Add(newAction(slot[2]))
		return node, slot[0].Name[0], slot[2].Name[0], nil
	case len(slot) == 0:
		return nil, 0, 0, syntaxError(line, line.Current(), "missing letter range")
	}
	return nil, 0, 0, syntaxError(line, slot[0], "invalid letter range")
}

func isDefLetter(l *Lexeme) bool {
	return l.Type == LexemeIdentifier && len(l.Name) == 1 && l.Name[0] >= 'A' && l.Name[0] <= 'Z'
}

// parseDefUsr handles DEF USR[n]=address.
func (p *Parser) parseDefUsr(line *LexerLine, usr *Lexeme) error {
	node := p.ctx.push(usr)
	defer p.ctx.pop()

	index := syntheticNumber("0")
	if tok := line.Peek(); tok.IsNumericLiteral() {
		if !tok.IsLineNumber() || len(tok.Value) != 1 {
			return syntaxError(line, tok, "USR index must be 0 to 9")
		}
		index = line.Next()
	}
	node.Add(newAction(index))

	if !line.Peek().IsOperator("=") {
		return missingKeyword(line, line.Peek(), "=")
	}
	line.Next()
	addr, err := p.evaluateTokens(line, line.Rest())
	if err != nil {
		return err
	}
	node.Add(addr)
	return nil
}
