package basic

var fileModes = []string{"INPUT", "OUTPUT", "APPEND"}

// parseOpen handles OPEN name [FOR mode] AS [#]n [LEN=size].
func parseOpen(p *Parser, line *LexerLine) error {
	tokens := line.Rest()
	line.Seek(line.Len())
	as := indexWord(tokens, "AS")
	if as < 0 {
		return missingKeyword(line, line.Current(), "AS")
	}
	mode := indexWord(tokens[:as], "FOR")
	nameEnd := as
	if mode >= 0 {
		nameEnd = mode
	}
	if err := p.clauseExpr(line, tokens[:nameEnd]); err != nil {
		return err
	}

	if mode >= 0 {
		modeTokens := tokens[mode+1 : as]
		if len(modeTokens) != 1 || !isFileMode(modeTokens[0]) {
			return syntaxError(line, tokens[mode], "invalid file mode")
		}
		p.ctx.push(tokens[mode])
		p.ctx.add(modeTokens[0])
		p.ctx.pop()
	}

	rest := tokens[as+1:]
	channel := rest
	length := indexWord(rest, "LEN")
	if length >= 0 {
		channel = rest[:length]
	}
	if len(channel) > 0 && channel[0].IsSeparator("#") {
		channel = channel[1:]
	}
	if len(channel) == 0 {
		return syntaxError(line, tokens[as], "missing file number after AS")
	}
	if length < 0 {
		if extra := firstNonOperand(channel); extra != nil {
			return missingKeyword(line, extra, "LEN")
		}
	}
	if err := p.clause(line, tokens[as], channel); err != nil {
		return err
	}
	if length < 0 {
		return nil
	}

	lenTokens := rest[length+1:]
	if len(lenTokens) == 0 || !lenTokens[0].IsOperator("=") {
		return missingKeyword(line, rest[length], "=")
	}
	return p.clause(line, rest[length], lenTokens[1:])
}

func isFileMode(l *Lexeme) bool {
	for _, m := range fileModes {
		if l.IsKeyword(m) {
			return true
		}
	}
	return false
}

// firstNonOperand returns the first top-level keyword in tokens that cannot
// be part of an expression.
func firstNonOperand(tokens []*Lexeme) *Lexeme {
	depth := 0
	for _, tok := range tokens {
		switch {
		case tok.IsSeparator("("):
			depth++
		case tok.IsSeparator(")"):
			depth--
		case depth == 0 && tok.Type == LexemeKeyword && !isOperand(tok):
			return tok
		}
	}
	return nil
}

// parseClose handles CLOSE [[#]n[,[#]n...]].
func parseClose(p *Parser, line *LexerLine) error {
	tokens := line.Rest()
	line.Seek(line.Len())
	if len(tokens) == 0 {
		return nil
	}
	slots, _, err := splitArgs(line, tokens, ",")
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if len(slot) > 0 && slot[0].IsSeparator("#") {
			slot = slot[1:]
		}
		if err := p.clauseExpr(line, slot); err != nil {
			return err
		}
	}
	return nil
}

// parseMaxFiles handles MAX FILES=n.
func parseMaxFiles(p *Parser, line *LexerLine) error {
	files := line.Next()
	if !files.IsKeyword("FILES") {
		return missingKeyword(line, files, "FILES")
	}
	if !line.Peek().IsOperator("=") {
		return missingKeyword(line, line.Peek(), "=")
	}
	line.Next()
	tokens := line.Rest()
	line.Seek(line.Len())
	return p.clause(line, files, tokens)
}
