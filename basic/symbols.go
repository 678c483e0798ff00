package basic

// DefType is the default type a DEFINT/DEFSTR/DEFSNG/DEFDBL statement
// assigns to a starting letter.
type DefType int

const (
	DefUnset DefType = iota
	DefNumeric
	DefString
	DefSingle
	DefDouble
)

func (d DefType) subtype() (LexemeSubtype, bool) {
	switch d {
	case DefNumeric:
		return SubtypeNumeric, true
	case DefString:
		return SubtypeString, true
	case DefSingle:
		return SubtypeSingleDecimal, true
	case DefDouble:
		return SubtypeDoubleDecimal, true
	}
	return SubtypeAny, false
}

func defTypeFor(keyword string) (DefType, bool) {
	switch keyword {
	case "INT":
		return DefNumeric, true
	case "STR":
		return DefString, true
	case "SNG":
		return DefSingle, true
	case "DBL":
		return DefDouble, true
	}
	return DefUnset, false
}

type symbolKey struct {
	typ   LexemeType
	sub   LexemeSubtype
	name  string
	value string
	array bool
}

func keyOf(l *Lexeme, array bool) symbolKey {
	return symbolKey{typ: l.Type, sub: l.Subtype, name: l.Name, value: l.Value, array: array}
}

// coalesce returns the canonical lexeme for identifier l, registering l
// itself on first sight.
func (c *ParserContext) coalesce(l *Lexeme) *Lexeme {
	return c.canonical(l, false)
}

// coalesceArray is coalesce for a subscripted use; arrays and scalars of
// the same name are different variables.
func (c *ParserContext) coalesceArray(l *Lexeme) *Lexeme {
	return c.canonical(l, true)
}

func (c *ParserContext) canonical(l *Lexeme, array bool) *Lexeme {
	if l == nil || l.Type != LexemeIdentifier {
		return l
	}
	key := keyOf(l, array)
	sym, ok := c.symbols[key]
	if !ok {
		sym = l
		sym.IsArray = array
		c.symbols[key] = sym
		c.symbolOrder = append(c.symbolOrder, sym)
	}
	c.applyDefType(sym)
	return sym
}

func (c *ParserContext) applyDefType(l *Lexeme) {
	name := l.Name
	if name == "" {
		return
	}
	switch name[len(name)-1] {
	case '%', '$', '!', '#':
		return
	}
	first := name[0]
	if first < 'A' || first > 'Z' {
		return
	}
	if st, ok := c.DefTypes[first-'A'].subtype(); ok {
		l.Subtype = st
	}
}

// SetDefType assigns t to every letter from first to last inclusive.
func (c *ParserContext) SetDefType(first, last byte, t DefType) {
	if first > last {
		first, last = last, first
	}
	for ch := first; ch <= last; ch++ {
		if ch >= 'A' && ch <= 'Z' {
			c.DefTypes[ch-'A'] = t
		}
	}
}

// DefTypeOf returns the DEF type registered for letter.
func (c *ParserContext) DefTypeOf(letter byte) DefType {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'Z' {
		return DefUnset
	}
	return c.DefTypes[letter-'A']
}

// Symbols returns the canonical identifiers in registration order.
func (c *ParserContext) Symbols() []*Lexeme {
	return append([]*Lexeme(nil), c.symbolOrder...)
}
