package basic

import (
	"fmt"
	"strconv"
	"strings"
)

func formatCodeFrame(line *LexerLine, column int) string {
	if line == nil || line.Text == "" {
		return ""
	}

	lineText := strings.TrimRight(line.Text, "\r\n")
	lineRunes := []rune(lineText)

	label := "line"
	if line.Number > 0 {
		label = strconv.Itoa(line.Number)
	}
	gutterPad := strings.Repeat(" ", len(label))

	var b strings.Builder
	if line.File != "" || line.Number > 0 {
		location := line.File
		if line.Number > 0 {
			location = fmt.Sprintf("%s:%d", location, line.Number)
		}
		fmt.Fprintf(&b, "  --> %s\n", strings.TrimPrefix(location, ":"))
	}
	fmt.Fprintf(&b, " %s | %s", label, lineText)

	if column > 0 {
		if column > len(lineRunes)+1 {
			column = len(lineRunes) + 1
		}
		fmt.Fprintf(&b, "\n %s | %s^", gutterPad, strings.Repeat(" ", column-1))
	}
	return b.String()
}
