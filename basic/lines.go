package basic

import (
	"strconv"

	"github.com/google/btree"
)

type lineItem struct {
	number int
	tag    *TagNode
}

func (l lineItem) Less(than btree.Item) bool {
	return l.number < than.(lineItem).number
}

// lineIndex orders program lines by number.
type lineIndex struct {
	tree *btree.BTree
}

func newLineIndex() *lineIndex {
	return &lineIndex{tree: btree.New(4)}
}

// insert indexes tag under number and reports whether a previous line with
// the same number was replaced.
func (x *lineIndex) insert(number int, tag *TagNode) bool {
	return x.tree.ReplaceOrInsert(lineItem{number, tag}) != nil
}

func (x *lineIndex) get(number int) *TagNode {
	item := x.tree.Get(lineItem{number: number})
	if item == nil {
		return nil
	}
	return item.(lineItem).tag
}

// next returns the first line numbered number or above.
func (x *lineIndex) next(number int) *TagNode {
	var found *TagNode
	x.tree.AscendGreaterOrEqual(lineItem{number: number}, func(item btree.Item) bool {
		found = item.(lineItem).tag
		return false
	})
	return found
}

func (x *lineIndex) ascend(fn func(number int, tag *TagNode) bool) {
	x.tree.Ascend(func(item btree.Item) bool {
		line := item.(lineItem)
		return fn(line.number, line.tag)
	})
}

// Line returns the program line numbered n, or nil.
func (c *ParserContext) Line(n int) *TagNode {
	return c.lines.get(n)
}

// NextLine returns the first program line numbered n or above, or nil.
func (c *ParserContext) NextLine(n int) *TagNode {
	return c.lines.next(n)
}

// LineNumbers returns the program line numbers in ascending order.
func (c *ParserContext) LineNumbers() []int {
	out := make([]int, 0, c.lines.tree.Len())
	c.lines.ascend(func(number int, _ *TagNode) bool {
		out = append(out, number)
		return true
	})
	return out
}

// JumpTarget is a reference from a statement to a program line.
type JumpTarget struct {
	From      *TagNode
	Statement string
	Target    *Lexeme
}

// Number returns the referenced line number.
func (j JumpTarget) Number() int {
	n, _ := strconv.Atoi(j.Target.Value)
	return n
}

var jumpStatements = map[string]bool{
	"GOTO": true, "GOSUB": true, "RETURN": true, "RESUME": true,
	"RESTORE": true, "IRESTORE": true, "RUN": true,
}

// JumpTargets collects every line-number operand of GOTO, GOSUB, THEN and
// ELSE shorthands, ON lists, RETURN, RESUME and RESTORE.
func (c *ParserContext) JumpTargets() []JumpTarget {
	var out []JumpTarget
	for _, tag := range c.Tags {
		for _, action := range tag.Actions {
			action.Walk(func(n *ActionNode) bool {
				if n.Lexeme == nil || n.Lexeme.Type != LexemeKeyword || !jumpStatements[n.Lexeme.Value] {
					return true
				}
				for _, child := range n.Actions {
					if child.Lexeme.IsLineNumber() {
						out = append(out, JumpTarget{From: tag, Statement: n.Lexeme.Value, Target: child.Lexeme})
					}
				}
				return true
			})
		}
	}
	return out
}

// UndefinedTargets returns the jump targets naming lines that do not exist.
func (c *ParserContext) UndefinedTargets() []JumpTarget {
	var out []JumpTarget
	for _, target := range c.JumpTargets() {
		if c.lines.get(target.Number()) == nil {
			out = append(out, target)
		}
	}
	return out
}
