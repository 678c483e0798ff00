package main

import (
	"errors"
	"flag"
	"fmt"
	"sort"
	"strconv"

	"github.com/mgomes/msxbasic/basic"
)

type lintWarning struct {
	Line    int
	Message string
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var includePaths pathList
	fs.Var(&includePaths, "include-path", "add an INCLUDE search directory (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("msxbasic analyze: source path required")
	}

	parser, sourcePath, err := newFileParser(remaining[0], includePaths, false)
	if err != nil {
		return err
	}
	if err := parser.ParseFile(sourcePath); err != nil {
		return fmt.Errorf("analysis parse failed: %w", err)
	}

	warnings := analyzeProgram(parser.Context())
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}
	for _, warning := range warnings {
		fmt.Printf("%s: line %d: %s\n", sourcePath, warning.Line, warning.Message)
	}
	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

func analyzeProgram(ctx *basic.ParserContext) []lintWarning {
	warnings := make([]lintWarning, 0)

	seen := make(map[string]bool)
	for _, tag := range ctx.Tags {
		if tag.IsDirective() {
			continue
		}
		if seen[tag.Name] {
			warnings = append(warnings, lintWarning{
				Line:    tagNumber(tag),
				Message: "duplicate line number",
			})
		}
		seen[tag.Name] = true
	}

	for _, target := range ctx.UndefinedTargets() {
		warnings = append(warnings, lintWarning{
			Line:    tagNumber(target.From),
			Message: fmt.Sprintf("%s %s: undefined line number", target.Statement, target.Target.Value),
		})
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Line < warnings[j].Line
	})
	return warnings
}

func tagNumber(tag *basic.TagNode) int {
	n, _ := strconv.Atoi(tag.Name)
	return n
}
