package basic

func parsePrint(p *Parser, line *LexerLine) error {
	if err := p.parseChannel(line); err != nil {
		return err
	}
	var format []*Lexeme
	if using := line.Peek(); using.IsKeyword("USING") {
		line.Next()
		format = takeUntil(line, ";", ",")
		if len(format) == 0 {
			return syntaxError(line, using, "missing USING format")
		}
	}
	return p.printFields(line, format)
}

// parseInput shares PRINT's field grammar: an optional #channel, an
// optional prompt and the variables to read.
func parseInput(p *Parser, line *LexerLine) error {
	p.ctx.Features.Input = true
	if err := p.parseChannel(line); err != nil {
		return err
	}
	return p.printFields(line, nil)
}

// parseChannel consumes "#n," and adds a # node holding n.
func (p *Parser) parseChannel(line *LexerLine) error {
	hash := line.Peek()
	if !hash.IsSeparator("#") {
		return nil
	}
	line.Next()
	tokens := takeUntil(line, ",", ";")
	if len(tokens) == 0 {
		return syntaxError(line, hash, "missing file number after #")
	}
	expr, err := p.evaluateTokens(line, tokens)
	if err != nil {
		return err
	}
	p.ctx.push(hash)
	p.ctx.attach(expr)
	p.ctx.pop()
	return nil
}

// takeUntil returns the tokens up to the first top-level separator in
// stops and consumes that separator.
func takeUntil(line *LexerLine, stops ...string) []*Lexeme {
	var out []*Lexeme
	depth := 0
	for tok := line.Next(); tok != nil; tok = line.Next() {
		switch {
		case tok.IsSeparator("("):
			depth++
		case tok.IsSeparator(")"):
			depth--
		case depth == 0 && tok.Type == LexemeSeparator:
			for _, stop := range stops {
				if tok.Value == stop {
					return out
				}
			}
		}
		out = append(out, tok)
	}
	return out
}

// printFields adds each field expression and each , or ; separator under
// the active node. With format set every field is wrapped in a USING$ call.
// The newline after PRINT is implicit: it is suppressed when the last child
// is a separator.
func (p *Parser) printFields(line *LexerLine, format []*Lexeme) error {
	slots, seps, err := splitArgs(line, line.Rest(), ",;")
	if err != nil {
		return err
	}
	for i, slot := range slots {
		if len(slot) > 0 {
			field, err := p.evaluateTokens(line, slot)
			if err != nil {
				return err
			}
			if format != nil {
				fmtNode, err := p.evaluateTokens(line, format)
				if err != nil {
					return err
				}
				using := newAction(syntheticFunction("USING$", 2))
				using.Add(fmtNode)
				using.Add(field)
				field = using
			}
			p.ctx.attach(field)
		}
		if i < len(seps) {
			p.ctx.add(seps[i])
		}
	}
	line.Seek(line.Len())
	return nil
}
