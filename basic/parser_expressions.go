package basic

// rpnItem is one entry of the postfix output queue: either a finished
// operand subtree or an operator or call waiting for arity operands.
type rpnItem struct {
	node  *ActionNode
	op    *Lexeme
	arity int
}

type stackEntry struct {
	lex   *Lexeme
	prec  int
	unary bool
	paren bool
}

// evaluate parses every token of line as one expression and returns its
// tree. An empty line is an error; callers with optional expressions check
// for tokens first.
func (p *Parser) evaluate(line *LexerLine) (*ActionNode, error) {
	line.Seek(0)
	if line.AtEnd() {
		return nil, syntaxError(line, nil, "missing expression")
	}
	queue, err := p.toPostfix(line)
	if err != nil {
		return nil, err
	}
	return unwind(line, queue)
}

func (p *Parser) evaluateTokens(line *LexerLine, tokens []*Lexeme) (*ActionNode, error) {
	if len(tokens) == 0 {
		return nil, syntaxError(line, line.Current(), "missing expression")
	}
	return p.evaluate(line.Sub(tokens))
}

func (p *Parser) toPostfix(line *LexerLine) ([]rpnItem, error) {
	var (
		ops           []stackEntry
		out           []rpnItem
		prev          *Lexeme
		expectOperand = true
	)
	emit := func(e stackEntry) {
		out = append(out, rpnItem{op: e.lex, arity: e.lex.ParmCount})
	}

	for tok := line.Next(); tok != nil; prev, tok = tok, line.Next() {
		switch {
		case tok.IsSeparator("("):
			if !expectOperand {
				return nil, syntaxError(line, tok, "missing operator before (")
			}
			ops = append(ops, stackEntry{lex: tok, paren: true})

		case tok.IsSeparator(")"):
			if expectOperand {
				return nil, syntaxError(line, tok, "missing operand before )")
			}
			matched := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.paren {
					matched = true
					break
				}
				emit(top)
			}
			if !matched {
				return nil, mismatchedParens(line, tok)
			}

		case tok.Type == LexemeLiteral && tok.Subtype == SubtypeUnknown:
			return nil, syntaxError(line, tok, "invalid numeric constant %s", tok.Name)

		case tok.IsKeyword("FN"):
			return nil, newLineError(ErrUnsupported, line, "FN calls are not supported").at(tok)

		case isOperand(tok):
			if !expectOperand {
				return nil, syntaxError(line, tok, "missing operator before %s", tok.Name)
			}
			items, err := p.operand(line, tok)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
			expectOperand = false

		case tok.Type == LexemeOperator:
			if expectOperand {
				if n := len(ops); n > 0 && prev == ops[n-1].lex && !ops[n-1].unary {
					if merged, ok := comparisonPairs[[2]string{prev.Value, tok.Value}]; ok {
						prev.Value = merged
						continue
					}
				}
				if isPrefixOperator(tok) {
					tok.IsUnary = true
					tok.ParmCount = 1
					ops = append(ops, stackEntry{lex: tok, prec: prefixPrecedence(tok), unary: true})
					continue
				}
				if tok.Value == "=" || tok.Value == ">" {
					return nil, syntaxError(line, tok, "unexpected %s", tok.Name)
				}
				return nil, syntaxError(line, tok, "missing operand before %s", tok.Name)
			}
			prec, ok := binaryPrecedence(tok)
			if !ok {
				return nil, unexpectedToken(line, tok)
			}
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.paren || top.prec < prec {
					break
				}
				ops = ops[:len(ops)-1]
				emit(top)
			}
			tok.IsUnary = false
			tok.ParmCount = 2
			ops = append(ops, stackEntry{lex: tok, prec: prec})
			expectOperand = true

		default:
			return nil, unexpectedToken(line, tok)
		}
	}

	if expectOperand {
		return nil, syntaxError(line, line.Current(), "missing operand at end of expression")
	}
	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.paren {
			return nil, mismatchedParens(line, top.lex)
		}
		emit(top)
	}
	return out, nil
}

// operand turns tok, and its parameter list when one follows, into output
// items. Parameters are evaluated into complete subtrees first so the call
// item only has to collect them.
func (p *Parser) operand(line *LexerLine, tok *Lexeme) ([]rpnItem, error) {
	var index *ActionNode
	if tok.IsKeyword("USR") {
		var err error
		if index, err = usrIndex(line); err != nil {
			return nil, err
		}
	}
	if !line.Peek().IsSeparator("(") {
		if tok.Type == LexemeIdentifier {
			tok = p.ctx.coalesce(tok)
		}
		return []rpnItem{{node: newAction(tok)}}, nil
	}
	if tok.Type == LexemeLiteral {
		return nil, syntaxError(line, line.Peek(), "missing operator before (")
	}

	params, err := p.parameters(line)
	if err != nil {
		return nil, err
	}
	if index != nil {
		params = append([]*ActionNode{index}, params...)
	}
	if tok.Type == LexemeIdentifier {
		// Array symbols are shared by every use; the arity lives on the node.
		tok = p.ctx.coalesceArray(tok)
	} else {
		tok.ParmCount = len(params)
	}

	items := make([]rpnItem, 0, len(params)+1)
	for _, param := range params {
		items = append(items, rpnItem{node: param})
	}
	return append(items, rpnItem{op: tok, arity: len(params)}), nil
}

// usrIndex consumes the routine digit of USRn(...). A call written without
// one uses routine 0.
func usrIndex(line *LexerLine) (*ActionNode, error) {
	digit := line.Peek()
	if !digit.IsNumericLiteral() {
		return newAction(syntheticNumber("0")), nil
	}
	if !digit.IsLineNumber() || len(digit.Value) != 1 {
		return nil, syntaxError(line, digit, "USR index must be 0 to 9")
	}
	if !line.PeekN(1).IsSeparator("(") {
		return nil, syntaxError(line, digit, "missing ( after USR%s", digit.Value)
	}
	return newAction(line.Next()), nil
}

// parameters consumes a parenthesized, comma separated parameter list from
// line. Empty slots become null placeholders; "()" has no parameters.
func (p *Parser) parameters(line *LexerLine) ([]*ActionNode, error) {
	open := line.Next()
	var (
		slots [][]*Lexeme
		cur   []*Lexeme
		depth = 1
	)
	for depth > 0 {
		tok := line.Next()
		if tok == nil {
			return nil, mismatchedParens(line, open)
		}
		switch {
		case tok.IsSeparator("("):
			depth++
		case tok.IsSeparator(")"):
			depth--
			if depth == 0 {
				slots = append(slots, cur)
				continue
			}
		case tok.IsSeparator(",") && depth == 1:
			slots = append(slots, cur)
			cur = nil
			continue
		}
		cur = append(cur, tok)
	}
	if len(slots) == 1 && len(slots[0]) == 0 {
		return nil, nil
	}

	params := make([]*ActionNode, 0, len(slots))
	for _, slot := range slots {
		if len(slot) == 0 {
			params = append(params, newAction(nullLexeme))
			continue
		}
		node, err := p.evaluate(line.Sub(slot))
		if err != nil {
			return nil, err
		}
		params = append(params, node)
	}
	return params, nil
}

// unwind builds the tree from the postfix queue. A well formed expression
// leaves exactly one node.
func unwind(line *LexerLine, queue []rpnItem) (*ActionNode, error) {
	var stack []*ActionNode
	for _, item := range queue {
		if item.node != nil {
			stack = append(stack, item.node)
			continue
		}
		if len(stack) < item.arity {
			return nil, syntaxError(line, item.op, "missing operand for %s", item.op.Name)
		}
		node := newAction(item.op)
		node.ParmCount = item.arity
		if item.arity > 0 {
			node.Actions = append(node.Actions, stack[len(stack)-item.arity:]...)
			stack = stack[:len(stack)-item.arity]
		}
		stack = append(stack, node)
	}
	if len(stack) != 1 {
		return nil, syntaxError(line, nil, "malformed expression")
	}
	return stack[0], nil
}
