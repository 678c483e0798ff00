package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/msxbasic/basic"
)

var (
	tagStyle        = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	keywordStyle    = lipgloss.NewStyle().Foreground(highlightColor)
	literalStyle    = lipgloss.NewStyle().Foreground(successColor)
	identifierStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
)

func renderTags(tags []*basic.TagNode, color bool) string {
	if !color {
		return basic.FormatTags(tags)
	}
	var b strings.Builder
	for _, tag := range tags {
		b.WriteString(tagStyle.Render("TAG "+tag.Name) + "\n")
		for _, action := range tag.Actions {
			renderAction(&b, action, 1)
		}
	}
	return b.String()
}

func renderAction(b *strings.Builder, n *basic.ActionNode, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(styleFor(n.Lexeme).Render(n.Lexeme.String()))
	b.WriteString("\n")
	for _, child := range n.Actions {
		renderAction(b, child, depth+1)
	}
}

func styleFor(l *basic.Lexeme) lipgloss.Style {
	switch l.Type {
	case basic.LexemeKeyword:
		return keywordStyle
	case basic.LexemeLiteral:
		return literalStyle
	case basic.LexemeIdentifier:
		return identifierStyle
	case basic.LexemeComment:
		return mutedStyle
	default:
		return lipgloss.NewStyle()
	}
}

func renderSummary(ctx *basic.ParserContext) string {
	var b strings.Builder
	features := enabledFeatures(ctx.Features)
	if len(features) == 0 {
		features = []string{"none"}
	}
	fmt.Fprintf(&b, "features: %s\n", strings.Join(features, ", "))
	fmt.Fprintf(&b, "resources: %d\n", ctx.ResourceCount)
	fmt.Fprintf(&b, "symbols: %d\n", len(ctx.Symbols()))
	for _, item := range ctx.Data {
		fmt.Fprintf(&b, "%s = %q (%s)\n", item.Name, item.Value, item.Lexeme.Subtype)
	}
	return b.String()
}

func enabledFeatures(f basic.Features) []string {
	var out []string
	add := func(on bool, name string) {
		if on {
			out = append(out, name)
		}
	}
	add(f.Traps, "traps")
	add(f.Data, "data")
	add(f.IData, "idata")
	add(f.Play, "play")
	add(f.Input, "input")
	add(f.Font, "font")
	add(f.MTF, "mtf")
	add(f.PT3, "pt3")
	add(f.AKM, "akm")
	add(f.ResourceRestore, "resource-restore")
	return out
}
