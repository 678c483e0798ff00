package basic

import (
	"fmt"
	"strconv"
	"strings"
)

func parseData(p *Parser, line *LexerLine) error {
	p.ctx.Features.Data = true
	return p.dataItems(line, false)
}

func parseIData(p *Parser, line *LexerLine) error {
	p.ctx.Features.IData = true
	return p.dataItems(line, true)
}

// dataItems splits the raw text of a DATA or IDATA statement on commas and
// appends every item to the literal pool. Items keep their source text;
// only radix constants are converted.
func (p *Parser) dataItems(line *LexerLine, integer bool) error {
	stmt := p.ctx.top()
	var (
		slots [][]*Lexeme
		cur   []*Lexeme
	)
	for tok := line.Next(); tok != nil; tok = line.Next() {
		if tok.IsSeparator(",") {
			slots = append(slots, cur)
			cur = nil
			continue
		}
		cur = append(cur, tok)
	}
	slots = append(slots, cur)

	for _, slot := range slots {
		item := p.dataItem(line, rawText(line, slot), integer)
		p.ctx.Data = append(p.ctx.Data, item)
		stmt.Add(newAction(item.Lexeme))
	}
	return nil
}

func (p *Parser) dataItem(line *LexerLine, raw string, integer bool) DataItem {
	var name string
	if integer {
		p.ctx.idataCount++
		name = fmt.Sprintf("_IDATA_%d", p.ctx.idataCount)
	} else {
		p.ctx.dataCount++
		name = fmt.Sprintf("_DATA_%d", p.ctx.dataCount)
	}

	value, subtype := raw, SubtypeString
	switch {
	case raw == "":
	case len(raw) >= 2 && raw[0] == '"':
		value = strings.TrimSuffix(raw[1:], `"`)
	case len(raw) >= 2 && raw[0] == '&':
		subtype = SubtypeNumeric
		converted, ok := radixToDecimal(strings.ToUpper(raw))
		if !ok {
			p.log.Warn("invalid radix constant in DATA", "value", raw, "file", line.File, "line", line.Number)
			converted = "0"
		}
		value = converted
	default:
		if _, err := strconv.ParseFloat(strings.TrimRight(raw, "%!#"), 64); err == nil {
			subtype = SubtypeNumeric
		}
	}
	if integer {
		subtype = SubtypeIntegerData
	}

	lex := &Lexeme{Type: LexemeLiteral, Subtype: subtype, Name: name, Value: value, Tag: p.ctx.tag}
	return DataItem{Name: name, Value: value, Integer: integer, Lexeme: lex, Tag: p.ctx.tag}
}

// rawText recovers the source text a run of tokens was read from.
func rawText(line *LexerLine, tokens []*Lexeme) string {
	if len(tokens) == 0 {
		return ""
	}
	first, last := tokens[0], tokens[len(tokens)-1]
	src := []rune(line.Text)
	start := first.Column - 1
	end := last.Column - 1 + len([]rune(last.Name))
	if first.Column > 0 && last.Column > 0 && start <= end && end <= len(src) {
		return strings.TrimSpace(string(src[start:end]))
	}
	names := make([]string, len(tokens))
	for i, tok := range tokens {
		names[i] = tok.Name
	}
	return strings.Join(names, " ")
}
