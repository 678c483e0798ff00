package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgomes/msxbasic/basic"
)

func fmtCommand(args []string) error {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	write := fs.Bool("w", false, "write result to source files instead of stdout")
	check := fs.Bool("check", false, "fail if any source file needs formatting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	targets := fs.Args()
	if len(targets) == 0 {
		return errors.New("msxbasic fmt: path required")
	}

	files, err := collectBasicFiles(targets)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	changedCount := 0
	for _, path := range files {
		originalBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		original := string(originalBytes)
		formatted := formatBasicSource(original)
		changed := formatted != original
		if changed {
			changedCount++
		}

		switch {
		case *write && changed:
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		case !*write && !*check:
			fmt.Print(formatted)
		}
	}

	if *check && changedCount > 0 {
		return fmt.Errorf("msxbasic fmt: %d file(s) need formatting", changedCount)
	}

	return nil
}

func collectBasicFiles(targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0)
	addFile := func(path string) {
		if !strings.EqualFold(filepath.Ext(path), ".bas") {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", target, err)
		}
		if !info.IsDir() {
			addFile(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			addFile(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", target, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func formatBasicSource(source string) string {
	lines := splitLines(source)
	for i, line := range lines {
		lines[i] = formatBasicLine(strings.TrimRight(line, " \t"))
	}
	return strings.Join(lines, "\n") + "\n"
}

// formatBasicLine upper-cases keywords, variables and radix constants.
// Strings, comments and DATA items are left as written; lines that do not
// tokenize are returned unchanged.
func formatBasicLine(text string) string {
	line, err := basic.Tokenize(text)
	if err != nil {
		return text
	}
	runes := []rune(text)
	inData := false
	for _, tok := range line.Tokens() {
		switch {
		case tok.IsSeparator(":"):
			inData = false
			continue
		case inData:
			continue
		case tok.IsKeyword("DATA"), tok.IsKeyword("IDATA"):
			inData = true
		}
		if tok.Column == 0 {
			continue
		}
		switch tok.Type {
		case basic.LexemeKeyword, basic.LexemeIdentifier, basic.LexemeOperator, basic.LexemeLiteral:
		default:
			continue
		}
		if tok.Type == basic.LexemeLiteral && tok.Subtype == basic.SubtypeString {
			continue
		}
		name := []rune(tok.Name)
		start := tok.Column - 1
		if start+len(name) > len(runes) {
			continue
		}
		if strings.EqualFold(string(runes[start:start+len(name)]), tok.Name) {
			copy(runes[start:], name)
		}
	}
	return string(runes)
}
