package basic

import (
	"fmt"
	"io"
	"strings"
)

// DirectiveTag names the tag that FILE and TEXT directives register.
const DirectiveTag = "DIRECTIVE"

// ActionNode is one node of the action tree: a lexeme plus ordered
// children. Leaves are operands; internal nodes are statements, operator
// applications or calls whose children follow argument order.
type ActionNode struct {
	Lexeme  *Lexeme
	Actions []*ActionNode
	// ParmCount is the number of parameters an operator or call was
	// resolved with at this use.
	ParmCount int
}

func newAction(lex *Lexeme) *ActionNode {
	return &ActionNode{Lexeme: lex}
}

// Add appends child and returns it.
func (n *ActionNode) Add(child *ActionNode) *ActionNode {
	n.Actions = append(n.Actions, child)
	return child
}

// Child returns the i-th child or nil.
func (n *ActionNode) Child(i int) *ActionNode {
	if n == nil || i < 0 || i >= len(n.Actions) {
		return nil
	}
	return n.Actions[i]
}

// Value is shorthand for the node lexeme's value.
func (n *ActionNode) Value() string {
	if n == nil || n.Lexeme == nil {
		return ""
	}
	return n.Lexeme.Value
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *ActionNode) Walk(fn func(*ActionNode) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Actions {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

func (n *ActionNode) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *ActionNode) write(w io.Writer, depth int) {
	fmt.Fprintf(w, "%s%s", strings.Repeat("  ", depth), n.Lexeme)
	if n.Lexeme.IsArray && n.ParmCount > 0 {
		fmt.Fprintf(w, " /%d", n.ParmCount)
	}
	fmt.Fprintln(w)
	for _, child := range n.Actions {
		child.write(w, depth+1)
	}
}

// TagNode is a named entry point in the tree: a program line keyed by its
// number, or a directive. Actions holds one tree per phrase on the line.
type TagNode struct {
	Name    string
	Value   string
	Actions []*ActionNode
}

func newTag(name string) *TagNode {
	return &TagNode{Name: name, Value: name}
}

// IsDirective reports whether the tag came from a FILE or TEXT directive.
func (t *TagNode) IsDirective() bool {
	return t.Name == DirectiveTag
}

func (t *TagNode) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TagNode) write(w io.Writer) {
	fmt.Fprintf(w, "TAG %s\n", t.Name)
	for _, action := range t.Actions {
		action.write(w, 1)
	}
}

// FormatTags renders tags in order, the format golden tests compare against.
func FormatTags(tags []*TagNode) string {
	var b strings.Builder
	for _, t := range tags {
		t.write(&b)
	}
	return b.String()
}
