package basic

// parseFor builds FOR [LET var start] [TO limit] [STEP increment].
func parseFor(p *Parser, line *LexerLine) error {
	tokens := line.Rest()
	line.Seek(line.Len())
	to := indexWord(tokens, "TO")
	step := indexWord(tokens, "STEP")
	if step >= 0 && (to < 0 || step < to) {
		return sequenceError(line, tokens[step], "STEP without TO")
	}
	if to < 0 {
		return missingKeyword(line, line.Current(), "TO")
	}
	if to == 0 {
		return syntaxError(line, tokens[0], "missing FOR variable")
	}

	if err := p.parseAssignment(line.Sub(tokens[:to])); err != nil {
		return err
	}

	end := len(tokens)
	if step >= 0 {
		end = step
	}
	if err := p.clause(line, tokens[to], tokens[to+1:end]); err != nil {
		return err
	}
	if step >= 0 {
		return p.clause(line, tokens[step], tokens[step+1:])
	}
	return nil
}

// clause adds a node for kw holding the expression in tokens.
func (p *Parser) clause(line *LexerLine, kw *Lexeme, tokens []*Lexeme) error {
	if len(tokens) == 0 {
		return syntaxError(line, kw, "missing expression after %s", kw.Value)
	}
	expr, err := p.evaluate(line.Sub(tokens))
	if err != nil {
		return err
	}
	p.ctx.push(kw)
	p.ctx.attach(expr)
	p.ctx.pop()
	return nil
}

// parseNext gives each listed variable its own NEXT node; the extra nodes
// are siblings of the first and share its lexeme.
func parseNext(p *Parser, line *LexerLine) error {
	next := p.ctx.top()
	slots, _, err := splitArgs(line, line.Rest(), ",")
	if err != nil {
		return err
	}
	if len(slots) == 1 && len(slots[0]) == 0 {
		return nil
	}
	for i, slot := range slots {
		if len(slot) != 1 || slot[0].Type != LexemeIdentifier {
			return syntaxError(line, line.Current(), "NEXT expects a loop variable")
		}
		variable := newAction(p.ctx.coalesce(slot[0]))
		if i == 0 {
			next.Add(variable)
			continue
		}
		sibling := newAction(next.Lexeme)
		sibling.Add(variable)
		p.ctx.attachSibling(sibling)
	}
	return nil
}

func parseIf(p *Parser, line *LexerLine) error {
	return p.parseIf(line, line.Current(), 0)
}

// parseIf builds IF [condition] [THEN ...] [ELSE ...]. level counts the
// enclosing IFs so that a dangling ELSE binds to the innermost IF without
// one, and an ELSE left over at level 0 is an error.
func (p *Parser) parseIf(line *LexerLine, kw *Lexeme, level int) error {
	node := p.ctx.push(kw)
	defer p.ctx.pop()

	var (
		cond   []*Lexeme
		branch *Lexeme
		depth  int
	)
	for branch == nil {
		tok := line.Next()
		switch {
		case tok == nil:
			return missingKeyword(line, kw, "THEN")
		case tok.IsSeparator("("):
			depth++
		case tok.IsSeparator(")"):
			depth--
		case depth == 0 && (tok.IsKeyword("THEN") || tok.IsKeyword("GOTO") || tok.IsKeyword("GOSUB")):
			branch = tok
			continue
		case depth == 0 && tok.IsKeyword("ELSE"):
			return missingKeyword(line, tok, "THEN")
		}
		cond = append(cond, tok)
	}
	if len(cond) == 0 {
		return syntaxError(line, branch, "missing IF condition")
	}
	condition, err := p.evaluate(line.Sub(cond))
	if err != nil {
		return err
	}
	node.Add(condition)

	then := branch
	if !branch.IsKeyword("THEN") {
		then = syntheticKeyword("THEN")
	}
	if err := p.parseBranch(line, then, branch, level); err != nil {
		return err
	}

	hasElse := false
	for {
		tok := line.Peek()
		switch {
		case tok == nil:
			return nil
		case tok.IsKeyword("ELSE"):
			if hasElse {
				if level == 0 {
					return sequenceError(line, tok, "ELSE without IF")
				}
				return nil
			}
			hasElse = true
			line.Next()
			if err := p.parseBranch(line, tok, tok, level); err != nil {
				return err
			}
		case tok.IsKeyword("THEN"):
			return sequenceError(line, tok, "duplicate THEN")
		default:
			return sequenceError(line, tok, "unexpected %s after IF statement", tok.Name)
		}
	}
}

// parseBranch fills a THEN or ELSE node. A bare line number, and the
// target of IF ... GOTO/GOSUB, become a jump node; otherwise the branch is
// a colon separated statement list ending at ELSE or the end of the line.
func (p *Parser) parseBranch(line *LexerLine, nodeLex, intro *Lexeme, level int) error {
	p.ctx.push(nodeLex)
	defer p.ctx.pop()

	jump := intro
	if intro.IsKeyword("THEN") || intro.IsKeyword("ELSE") {
		jump = nil
		if line.Peek().IsLineNumber() {
			jump = syntheticKeyword("GOTO")
		}
	}
	if jump != nil {
		target := line.Next()
		if !target.IsLineNumber() {
			return syntaxError(line, target, "line number expected after %s", intro.Value)
		}
		p.ctx.push(jump)
		p.ctx.add(target)
		p.ctx.pop()
		if !line.Peek().IsSeparator(":") {
			return nil
		}
	}

	for {
		tok := line.Peek()
		switch {
		case tok == nil, tok.IsKeyword("ELSE"):
			return nil
		case tok.IsSeparator(":"):
			line.Next()
			continue
		case tok.IsKeyword("THEN"):
			return sequenceError(line, tok, "duplicate THEN")
		case tok.IsKeyword("IF"):
			line.Next()
			if err := p.parseIf(line, tok, level+1); err != nil {
				return err
			}
			continue
		}

		var stmt []*Lexeme
		for t := line.Peek(); t != nil && !t.IsSeparator(":") && !t.IsKeyword("ELSE"); t = line.Peek() {
			stmt = append(stmt, line.Next())
		}
		if err := p.parsePhrase(line.Sub(stmt)); err != nil {
			return err
		}
	}
}

var trapWords = []string{"INTERVAL", "KEY", "SPRITE", "STOP", "STRIG"}

// parseOn handles ON n GOTO/GOSUB lists and the ON <event> GOSUB traps.
func parseOn(p *Parser, line *LexerLine) error {
	first := line.Peek()
	if first == nil {
		return syntaxError(line, line.Current(), "missing ON expression")
	}
	if first.IsKeyword("ERROR") {
		return newLineError(ErrUnsupported, line, "ON ERROR is not supported").at(first)
	}
	for _, w := range trapWords {
		if first.IsKeyword(w) {
			return p.parseTrap(line)
		}
	}

	tokens := line.Rest()
	jump := indexWord(tokens, "GOTO", "GOSUB")
	if jump < 0 {
		return missingKeyword(line, first, "GOTO or GOSUB")
	}
	if jump == 0 {
		return syntaxError(line, tokens[0], "missing ON expression")
	}
	index, err := p.evaluate(line.Sub(tokens[:jump]))
	if err != nil {
		return err
	}
	p.ctx.attach(index)
	line.Seek(line.Pos() + jump + 1)
	return p.targets(line, tokens[jump])
}

// parseTrap handles ON INTERVAL=n GOSUB and ON KEY/SPRITE/STOP/STRIG GOSUB.
func (p *Parser) parseTrap(line *LexerLine) error {
	event := line.Next()
	p.ctx.Features.Traps = true

	p.ctx.push(event)
	if event.IsKeyword("INTERVAL") {
		if !line.Peek().IsOperator("=") {
			p.ctx.pop()
			return missingKeyword(line, event, "=")
		}
		line.Next()
		tokens := line.Rest()
		gosub := indexWord(tokens, "GOSUB")
		if gosub < 0 {
			gosub = len(tokens)
		}
		if err := p.clauseExpr(line, tokens[:gosub]); err != nil {
			p.ctx.pop()
			return err
		}
		line.Seek(line.Pos() + gosub)
	}
	p.ctx.pop()

	gosub := line.Next()
	if !gosub.IsKeyword("GOSUB") {
		return missingKeyword(line, gosub, "GOSUB")
	}
	return p.targets(line, gosub)
}

func (p *Parser) clauseExpr(line *LexerLine, tokens []*Lexeme) error {
	expr, err := p.evaluateTokens(line, tokens)
	if err != nil {
		return err
	}
	p.ctx.attach(expr)
	return nil
}

// targets adds a jump node holding the line numbers that follow. An empty
// slot keeps its position as a null placeholder.
func (p *Parser) targets(line *LexerLine, jump *Lexeme) error {
	slots, _, err := splitArgs(line, line.Rest(), ",")
	if err != nil {
		return err
	}
	line.Seek(line.Len())
	node := p.ctx.push(jump)
	defer p.ctx.pop()
	for _, slot := range slots {
		switch {
		case len(slot) == 0:
			node.Add(newAction(nullLexeme))
		case len(slot) == 1 && slot[0].IsLineNumber():
			node.Add(newAction(slot[0]))
		default:
			return syntaxError(line, slot[0], "line number expected after %s", jump.Value)
		}
	}
	return nil
}
