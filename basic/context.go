package basic

// Features records which runtime support the source needs, so the code
// generator can leave the rest out.
type Features struct {
	Traps           bool
	Data            bool
	IData           bool
	Play            bool
	Input           bool
	Font            bool
	MTF             bool
	PT3             bool
	AKM             bool
	ResourceRestore bool
}

// DataItem is one entry of the DATA or IDATA literal pool.
type DataItem struct {
	Name    string
	Value   string
	Integer bool
	Lexeme  *Lexeme
	Tag     *TagNode
}

// ParserContext is the mutable state of one parse run.
type ParserContext struct {
	Tags          []*TagNode
	Features      Features
	ResourceCount int
	Data          []DataItem
	DefTypes      [26]DefType

	symbols     map[symbolKey]*Lexeme
	symbolOrder []*Lexeme
	lines       *lineIndex

	tag   *TagNode
	stack []*ActionNode

	dataCount  int
	idataCount int
	includes   []string
}

// NewParserContext returns an empty context.
func NewParserContext() *ParserContext {
	c := &ParserContext{}
	c.Reset()
	return c
}

// Reset clears every table so the context can serve a new parse.
func (c *ParserContext) Reset() {
	c.Tags = nil
	c.Features = Features{}
	c.ResourceCount = 0
	c.Data = nil
	c.DefTypes = [26]DefType{}
	c.symbols = make(map[symbolKey]*Lexeme)
	c.symbolOrder = nil
	c.lines = newLineIndex()
	c.tag = nil
	c.stack = c.stack[:0]
	c.dataCount = 0
	c.idataCount = 0
	c.includes = nil
}

func (c *ParserContext) addTag(tag *TagNode) {
	c.Tags = append(c.Tags, tag)
	c.tag = tag
	c.stack = c.stack[:0]
}

// top returns the active parent node, nil at statement level.
func (c *ParserContext) top() *ActionNode {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// attach adds node under the active parent, or as a new top-level tree of
// the current tag.
func (c *ParserContext) attach(node *ActionNode) *ActionNode {
	if top := c.top(); top != nil {
		return top.Add(node)
	}
	if c.tag != nil {
		c.tag.Actions = append(c.tag.Actions, node)
	}
	return node
}

// attachSibling adds node next to the active parent.
func (c *ParserContext) attachSibling(node *ActionNode) *ActionNode {
	if n := len(c.stack); n >= 2 {
		return c.stack[n-2].Add(node)
	}
	if c.tag != nil {
		c.tag.Actions = append(c.tag.Actions, node)
	}
	return node
}

// push attaches a node for lex and makes it the active parent.
func (c *ParserContext) push(lex *Lexeme) *ActionNode {
	node := c.attach(newAction(lex))
	c.stack = append(c.stack, node)
	return node
}

func (c *ParserContext) pop() {
	if n := len(c.stack); n > 0 {
		c.stack = c.stack[:n-1]
	}
}

// add attaches a leaf for lex under the active parent.
func (c *ParserContext) add(lex *Lexeme) *ActionNode {
	return c.attach(newAction(lex))
}

// CurrentTag returns the tag statements are being attached to.
func (c *ParserContext) CurrentTag() *TagNode {
	return c.tag
}
