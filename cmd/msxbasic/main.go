package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgomes/msxbasic/basic"
)

var commands = []string{"parse", "tokens", "analyze", "fmt", "repl", "lsp", "help"}

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "parse":
		return parseCommand(args[2:])
	case "tokens":
		return tokensCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "repl":
		return runREPL()
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		if hint := basic.Suggest(args[1], commands); hint != "" {
			printUsage()
			return fmt.Errorf("invalid command %q (did you mean %s?)", args[1], hint)
		}
		return usageError()
	}
}

func parseCommand(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	verbose := fs.Bool("v", false, "log parser warnings to stderr")
	color := fs.Bool("color", false, "colour the tree dump")
	var includePaths pathList
	fs.Var(&includePaths, "include-path", "add an INCLUDE search directory (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("msxbasic parse: source path required")
	}

	parser, sourcePath, err := newFileParser(remaining[0], includePaths, *verbose)
	if err != nil {
		return err
	}
	if err := parser.ParseFile(sourcePath); err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	fmt.Print(renderTags(parser.Tags(), *color))
	fmt.Print(renderSummary(parser.Context()))
	return nil
}

func tokensCommand(args []string) error {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("msxbasic tokens: source path required")
	}
	input, err := os.ReadFile(remaining[0])
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	for i, text := range splitLines(string(input)) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		line := basic.NewLexerLine(text)
		line.Number = i + 1
		line.File = remaining[0]
		err := line.Evaluate()
		fmt.Printf("line %d: %s\n%s", line.Number, text, line.Dump())
		if err != nil {
			return fmt.Errorf("tokenize failed: %w", err)
		}
	}
	return nil
}

func newFileParser(path string, includePaths []string, verbose bool) (*basic.Parser, string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve source path: %w", err)
	}
	dirs, err := computeIncludePaths(absPath, includePaths)
	if err != nil {
		return nil, "", err
	}
	parser := basic.NewParser(basic.Config{
		IncludePaths: dirs,
		Logger:       newLogger(verbose),
	})
	return parser, absPath, nil
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func splitLines(source string) []string {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(strings.TrimRight(normalized, "\n"), "\n")
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] <source>\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  parse [-v] [-color] [-include-path <dir>] <file>")
	fmt.Fprintln(os.Stderr, "    print the tag tree, feature flags and DATA pool")
	fmt.Fprintln(os.Stderr, "  tokens <file>")
	fmt.Fprintln(os.Stderr, "    print the tokens of every line")
	fmt.Fprintln(os.Stderr, "  analyze <file>")
	fmt.Fprintln(os.Stderr, "    report jumps to missing lines and duplicate line numbers")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-check] <paths>")
	fmt.Fprintln(os.Stderr, "    upper-case keywords and variables, trim trailing whitespace")
	fmt.Fprintln(os.Stderr, "  repl")
	fmt.Fprintln(os.Stderr, "    enter program lines interactively")
	fmt.Fprintln(os.Stderr, "  lsp")
	fmt.Fprintln(os.Stderr, "    serve diagnostics, completion, hover and line definitions over stdio")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

type pathList []string

func (l *pathList) String() string {
	return strings.Join(*l, string(os.PathListSeparator))
}

func (l *pathList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// computeIncludePaths returns the absolute, de-duplicated INCLUDE search
// directories: the source file's own directory first, then extras.
func computeIncludePaths(sourcePath string, extras []string) ([]string, error) {
	sourceDir := filepath.Dir(sourcePath)
	seen := make(map[string]struct{})
	var dirs []string
	addPath := func(label, p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s %q: %w", label, p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("access %s %q: %w", label, abs, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s %q is not a directory", label, abs)
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}
		dirs = append(dirs, abs)
		return nil
	}
	if err := addPath("source directory", sourceDir); err != nil {
		return nil, err
	}
	for _, extra := range extras {
		if err := addPath("include path", extra); err != nil {
			return nil, err
		}
	}
	return dirs, nil
}
