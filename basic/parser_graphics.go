package basic

// subFormWords are the second words of SCREEN, SET, GET, PUT and SPRITE
// statements, as in SET PAGE, PUT SPRITE or SET SPRITE COLOR.
var subFormWords = map[string]bool{
	"ADJUST": true, "BEEP": true, "COLOR": true, "COPY": true, "DATE": true,
	"FLIP": true, "FONT": true, "LOAD": true, "OFF": true, "ON": true,
	"PAGE": true, "PASSWORD": true, "PASTE": true, "PATTERN": true,
	"PROMPT": true, "ROTATE": true, "SCREEN": true, "SCROLL": true,
	"SPRITE": true, "STOP": true, "TILE": true, "TIME": true, "TITLE": true,
	"VIDEO": true,
}

const maxSubFormDepth = 2

// parseSubForm descends through up to two sub-form keywords, each nested
// under the previous one, then parses graphic arguments under the last.
func parseSubForm(p *Parser, line *LexerLine) error {
	parent := p.ctx.top()
	pushed := 0
	defer func() {
		for ; pushed > 0; pushed-- {
			p.ctx.pop()
		}
	}()

	for pushed < maxSubFormDepth {
		tok := line.Peek()
		if tok == nil || tok.Type != LexemeKeyword || !subFormWords[tok.Value] {
			break
		}
		line.Next()
		if isToggle(tok) {
			parent.Add(newAction(tok))
			if extra := line.Next(); extra != nil {
				return unexpectedToken(line, extra)
			}
			return nil
		}
		if tok.IsKeyword("FONT") {
			p.ctx.Features.Font = true
		}
		parent = p.ctx.push(tok)
		pushed++
	}
	return p.graphicArgs(line, parent, line.Rest())
}

// parseShape handles PSET, PRESET, CIRCLE and PAINT, all of which start
// with a coordinate.
func parseShape(p *Parser, line *LexerLine) error {
	kw := line.Current()
	tokens := line.Rest()
	if _, ok := coordinateEnd(tokens, 0); !ok {
		return syntaxError(line, line.Peek(), "%s expects a coordinate", kw.Value)
	}
	return p.graphicArgs(line, p.ctx.top(), tokens)
}

// graphicArgs is the argument list of graphic statements: coordinates,
// expressions, null placeholders and a trailing raster operation.
func (p *Parser) graphicArgs(line *LexerLine, parent *ActionNode, tokens []*Lexeme) error {
	line.Seek(line.Len())
	if len(tokens) == 0 {
		return nil
	}
	slots, _, err := splitArgs(line, tokens, ",")
	if err != nil {
		return err
	}
	for i, slot := range slots {
		node, err := p.graphicArg(line, slot, i == len(slots)-1)
		if err != nil {
			return err
		}
		parent.Add(node)
	}
	return nil
}

func (p *Parser) graphicArg(line *LexerLine, slot []*Lexeme, last bool) (*ActionNode, error) {
	if len(slot) == 0 {
		return newAction(nullLexeme), nil
	}
	if last && len(slot) == 1 {
		if code, ok := rasterOpcode(slot[0]); ok {
			op := syntheticNumber(code)
			op.Name = slot[0].Name
			return newAction(op), nil
		}
	}
	if end, ok := coordinateEnd(slot, 0); ok && end == len(slot) {
		return p.coordinate(line, slot)
	}
	node, err := p.argument(line, slot)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// coordinateEnd reports whether tokens[start:] begins with an optional
// STEP and a parenthesized group, returning the index just past the group.
func coordinateEnd(tokens []*Lexeme, start int) (int, bool) {
	i := start
	if i < len(tokens) && tokens[i].IsKeyword("STEP") {
		i++
	}
	if i >= len(tokens) || !tokens[i].IsSeparator("(") {
		return 0, false
	}
	depth := 0
	for ; i < len(tokens); i++ {
		switch {
		case tokens[i].IsSeparator("("):
			depth++
		case tokens[i].IsSeparator(")"):
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// coordinate parses "(x,y)" into a ( node and "STEP(x,y)" into a STEP
// node, each holding x and y.
func (p *Parser) coordinate(line *LexerLine, tokens []*Lexeme) (*ActionNode, error) {
	head := tokens[0]
	inner := tokens[1 : len(tokens)-1]
	if head.IsKeyword("STEP") {
		inner = tokens[2 : len(tokens)-1]
	}
	parts, _, err := splitArgs(line, inner, ",")
	if err != nil {
		return nil, err
	}
	if len(parts) != 2 {
		if len(parts) == 1 && !head.IsKeyword("STEP") {
			return p.evaluate(line.Sub(tokens))
		}
		return nil, syntaxError(line, head, "coordinate needs x and y")
	}
	node := newAction(head)
	for _, part := range parts {
		if len(part) == 0 {
			node.Add(newAction(nullLexeme))
			continue
		}
		expr, err := p.evaluate(line.Sub(part))
		if err != nil {
			return nil, err
		}
		node.Add(expr)
	}
	return node, nil
}

// parseColor handles the three COLOR forms: an argument list, a palette
// assignment COLOR=(n,r,g,b) or COLOR=NEW/RESTORE, and the sprite colour
// assignment COLOR SPRITE(n)=c or COLOR SPRITE$(n)=s.
func parseColor(p *Parser, line *LexerLine) error {
	tok := line.Peek()
	switch {
	case tok.IsOperator("="):
		line.Next()
		next := line.Peek()
		if next.IsKeyword("NEW") || next.IsKeyword("RESTORE") {
			line.Next()
			p.ctx.add(next)
			if extra := line.Next(); extra != nil {
				return unexpectedToken(line, extra)
			}
			return nil
		}
		if !next.IsSeparator("(") {
			return syntaxError(line, next, "expected ( after COLOR=")
		}
		params, err := p.parameters(line)
		if err != nil {
			return err
		}
		if len(params) < 3 {
			return syntaxError(line, next, "palette colour needs at least three values")
		}
		if extra := line.Next(); extra != nil {
			return unexpectedToken(line, extra)
		}
		rgb := p.ctx.attach(newAction(syntheticFunction("RGB", len(params))))
		rgb.Actions = params
		return nil

	case tok.IsKeyword("SPRITE"), tok.IsKeyword("SPRITE$"):
		line.Next()
		sprite := p.ctx.push(tok)
		defer p.ctx.pop()
		if !line.Peek().IsSeparator("(") {
			return syntaxError(line, line.Peek(), "expected ( after %s", tok.Value)
		}
		params, err := p.parameters(line)
		if err != nil {
			return err
		}
		if len(params) != 1 {
			return syntaxError(line, tok, "%s takes one sprite number", tok.Value)
		}
		sprite.Add(params[0])
		if !line.Peek().IsOperator("=") {
			return missingKeyword(line, line.Peek(), "=")
		}
		line.Next()
		value, err := p.evaluateTokens(line, line.Rest())
		if err != nil {
			return err
		}
		sprite.Add(value)
		return nil
	}
	return p.arguments(line, p.ctx.top(), line.Rest())
}

// parseLineStatement handles LINE INPUT and the graphic LINE
// [[STEP](x1,y1)]-[STEP](x2,y2)[,colour[,B|BF[,op]]].
func parseLineStatement(p *Parser, line *LexerLine) error {
	if input := line.Peek(); input.IsKeyword("INPUT") {
		line.Next()
		p.ctx.push(input)
		defer p.ctx.pop()
		return parseInput(p, line)
	}

	parent := p.ctx.top()
	tokens := line.Rest()
	line.Seek(line.Len())
	i := 0
	if end, ok := coordinateEnd(tokens, 0); ok {
		from, err := p.coordinate(line, tokens[:end])
		if err != nil {
			return err
		}
		parent.Add(from)
		i = end
	} else {
		parent.Add(newAction(nullLexeme))
	}

	if i >= len(tokens) || !tokens[i].IsOperator("-") {
		return missingKeyword(line, line.Current(), "-")
	}
	end, ok := coordinateEnd(tokens, i+1)
	if !ok {
		return syntaxError(line, tokens[i], "coordinate expected after -")
	}
	to, err := p.coordinate(line, tokens[i+1:end])
	if err != nil {
		return err
	}
	parent.Add(to)

	rest := tokens[end:]
	if len(rest) == 0 {
		return nil
	}
	if !rest[0].IsSeparator(",") {
		return unexpectedToken(line, rest[0])
	}
	slots, _, err := splitArgs(line, rest[1:], ",")
	if err != nil {
		return err
	}
	for n, slot := range slots {
		if len(slot) == 1 && (slot[0].IsWord("B") || slot[0].IsWord("BF")) {
			box := syntheticNumber("1")
			if slot[0].IsWord("BF") {
				box.Value = "2"
			}
			box.Name = slot[0].Name
			parent.Add(newAction(box))
			continue
		}
		node, err := p.graphicArg(line, slot, n == len(slots)-1)
		if err != nil {
			return err
		}
		parent.Add(node)
	}
	return nil
}

// parseCopy handles COPY source TO destination, where either side is a
// rectangle, a point with page and operation arguments, an array or a
// file name.
func parseCopy(p *Parser, line *LexerLine) error {
	tokens := line.Rest()
	line.Seek(line.Len())
	to := indexWord(tokens, "TO")
	if to < 0 {
		return missingKeyword(line, line.Current(), "TO")
	}
	if err := p.copySide(line, p.ctx.top(), tokens[:to]); err != nil {
		return err
	}
	dest := p.ctx.push(tokens[to])
	defer p.ctx.pop()
	return p.copySide(line, dest, tokens[to+1:])
}

func (p *Parser) copySide(line *LexerLine, parent *ActionNode, tokens []*Lexeme) error {
	if len(tokens) == 0 {
		return syntaxError(line, line.Current(), "missing COPY operand")
	}
	end, ok := coordinateEnd(tokens, 0)
	if !ok {
		return p.graphicArgs(line, parent, tokens)
	}
	from, err := p.coordinate(line, tokens[:end])
	if err != nil {
		return err
	}
	parent.Add(from)

	i := end
	if i < len(tokens) && tokens[i].IsOperator("-") {
		corner, ok := coordinateEnd(tokens, i+1)
		if !ok {
			return syntaxError(line, tokens[i], "coordinate expected after -")
		}
		to, err := p.coordinate(line, tokens[i+1:corner])
		if err != nil {
			return err
		}
		parent.Add(to)
		i = corner
	}
	if i == len(tokens) {
		return nil
	}
	if !tokens[i].IsSeparator(",") {
		return unexpectedToken(line, tokens[i])
	}
	return p.graphicArgs(line, parent, tokens[i+1:])
}
