package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/msxbasic/basic"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

// session is the program being typed in. Lines are kept as source text and
// the whole program is parsed again after every edit, so that replacing a
// line number replaces its tree and its symbols.
type session struct {
	lines  map[int]string
	parser *basic.Parser
}

func newSession() *session {
	return &session{
		lines:  make(map[int]string),
		parser: basic.NewParser(basic.Config{}),
	}
}

func (s *session) numbers() []int {
	out := make([]int, 0, len(s.lines))
	for n := range s.lines {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (s *session) source() string {
	var b strings.Builder
	for _, n := range s.numbers() {
		b.WriteString(s.lines[n])
		b.WriteString("\n")
	}
	return b.String()
}

// rebuild parses the stored program into a fresh parser. The previous
// parser is kept when the program does not parse.
func (s *session) rebuild() error {
	p := basic.NewParser(basic.Config{})
	if err := p.ParseSource("", strings.NewReader(s.source())); err != nil {
		return err
	}
	s.parser = p
	return nil
}

// enter stores, replaces or deletes one numbered line; a bare line number
// deletes. It returns "" when input is not a program line.
func (s *session) enter(input string) (string, error) {
	line, err := basic.Tokenize(input)
	if err != nil {
		return "", err
	}
	first := line.First()
	if first == nil || !first.IsLineNumber() {
		return "", nil
	}
	n, err := strconv.Atoi(first.Value)
	if err != nil {
		return "", fmt.Errorf("invalid line number %s", first.Name)
	}

	previous, existed := s.lines[n]
	if line.Len() == 1 {
		if !existed {
			return "", fmt.Errorf("line %d not found", n)
		}
		delete(s.lines, n)
		if err := s.rebuild(); err != nil {
			s.lines[n] = previous
			return "", err
		}
		return fmt.Sprintf("deleted line %d", n), nil
	}

	s.lines[n] = input
	if err := s.rebuild(); err != nil {
		if existed {
			s.lines[n] = previous
		} else {
			delete(s.lines, n)
		}
		return "", err
	}
	return strings.TrimRight(basic.FormatTags([]*basic.TagNode{s.parser.Line(n)}), "\n"), nil
}

func (s *session) reset() {
	s.lines = make(map[int]string)
	s.parser.Reset()
}

func (s *session) list() string {
	numbers := s.numbers()
	if len(numbers) == 0 {
		return "No lines entered"
	}
	out := make([]string, len(numbers))
	for i, n := range numbers {
		out[i] = s.lines[n]
	}
	return strings.Join(out, "\n")
}

// check reports jumps to lines the program does not have.
func (s *session) check() string {
	missing := s.parser.Context().UndefinedTargets()
	if len(missing) == 0 {
		return "No issues found"
	}
	out := make([]string, len(missing))
	for i, target := range missing {
		out[i] = fmt.Sprintf("line %s: %s %s: undefined line number", target.From.Name, target.Statement, target.Target.Value)
	}
	return strings.Join(out, "\n")
}

type transcriptEntry struct {
	input  string
	output string
	isErr  bool
}

type replPanel int

const (
	panelNone replPanel = iota
	panelHelp
	panelSymbols
)

type replModel struct {
	textInput  textinput.Model
	session    *session
	transcript []transcriptEntry
	recall     []string
	recallIdx  int
	width      int
	height     int
	panel      replPanel
	quitting   bool
	ready      bool
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Quit    key.Binding
	Clear   key.Binding
	Tab     key.Binding
	Symbols key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous entry"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next entry"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "store line"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+d"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "complete"),
	),
	Symbols: key.NewBinding(
		key.WithKeys("ctrl+v"),
		key.WithHelp("ctrl+v", "symbols"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "help"),
	),
}

func newREPLModel() replModel {
	ti := textinput.New()
	ti.Placeholder = `10 PRINT "HELLO"`
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "msx> "

	return replModel{
		textInput: ti,
		session:   newSession(),
		recallIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) togglePanel(p replPanel) replModel {
	if m.panel == p {
		m.panel = panelNone
	} else {
		m.panel = p
	}
	return m
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.transcript = nil
			return m, nil
		case key.Matches(msg, keys.Symbols):
			return m.togglePanel(panelSymbols), nil
		case key.Matches(msg, keys.Help):
			return m.togglePanel(panelHelp), nil
		case key.Matches(msg, keys.Up):
			return m.recallPrevious(), nil
		case key.Matches(msg, keys.Down):
			return m.recallNext(), nil
		case key.Matches(msg, keys.Tab):
			return m.complete(), nil
		case key.Matches(msg, keys.Enter):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) recallPrevious() replModel {
	if len(m.recall) == 0 {
		return m
	}
	switch {
	case m.recallIdx == -1:
		m.recallIdx = len(m.recall) - 1
	case m.recallIdx > 0:
		m.recallIdx--
	}
	m.textInput.SetValue(m.recall[m.recallIdx])
	m.textInput.CursorEnd()
	return m
}

func (m replModel) recallNext() replModel {
	if m.recallIdx == -1 {
		return m
	}
	if m.recallIdx < len(m.recall)-1 {
		m.recallIdx++
		m.textInput.SetValue(m.recall[m.recallIdx])
	} else {
		m.recallIdx = -1
		m.textInput.SetValue("")
	}
	m.textInput.CursorEnd()
	return m
}

func (m replModel) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textInput.Value())
	m.textInput.SetValue("")
	m.recallIdx = -1
	if input == "" {
		return m, nil
	}
	if strings.HasPrefix(input, ":") {
		return m.handleCommand(input)
	}

	output, isErr := m.evaluate(input)
	m.transcript = append(m.transcript, transcriptEntry{input: input, output: output, isErr: isErr})
	m.recall = append(m.recall, input)
	return m, nil
}

var replCommands = []string{":help", ":symbols", ":clear", ":list", ":tree", ":check", ":features", ":new", ":quit"}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	cmd := strings.Fields(input)[0]
	reply := func(output string, isErr bool) {
		m.transcript = append(m.transcript, transcriptEntry{input: input, output: output, isErr: isErr})
	}

	switch cmd {
	case ":help", ":h":
		m = m.togglePanel(panelHelp)
	case ":symbols", ":s":
		m = m.togglePanel(panelSymbols)
	case ":clear", ":c":
		m.transcript = nil
	case ":list", ":l":
		reply(m.session.list(), false)
	case ":tree", ":t":
		output := strings.TrimRight(basic.FormatTags(m.session.parser.Tags()), "\n")
		if output == "" {
			output = "No lines entered"
		}
		reply(output, false)
	case ":check":
		reply(m.session.check(), false)
	case ":features", ":f":
		features := enabledFeatures(m.session.parser.Context().Features)
		if len(features) == 0 {
			features = []string{"none"}
		}
		reply("features: "+strings.Join(features, ", "), false)
	case ":new", ":n":
		m.session.reset()
		reply("Program cleared", false)
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		msg := "Unknown command: " + cmd
		if s := basic.Suggest(cmd, replCommands); s != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", s)
		}
		reply(msg, true)
	}
	return m, nil
}

// complete extends the last word to a reserved word or a variable the
// program already uses.
func (m replModel) complete() replModel {
	input := m.textInput.Value()
	words := strings.Fields(input)
	if len(words) == 0 || strings.HasSuffix(input, " ") {
		return m
	}
	last := words[len(words)-1]
	prefix := strings.ToUpper(last)

	var matches []string
	for _, w := range basic.ReservedWords() {
		if strings.HasPrefix(w, prefix) {
			matches = append(matches, w)
		}
	}
	for _, sym := range m.session.parser.Context().Symbols() {
		if strings.HasPrefix(sym.Name, prefix) {
			matches = append(matches, sym.Name)
		}
	}

	switch {
	case len(matches) == 1:
		m.textInput.SetValue(input[:len(input)-len(last)] + matches[0])
		m.textInput.CursorEnd()
	case len(matches) > 1:
		m.transcript = append(m.transcript, transcriptEntry{output: "Completions: " + strings.Join(matches, ", ")})
	}
	return m
}

func (m replModel) evaluate(input string) (string, bool) {
	output, err := m.session.enter(input)
	if err != nil {
		return err.Error(), true
	}
	if output == "" {
		return "ignored: program lines start with a line number", false
	}
	return output, false
}

func (m replModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("MSX BASIC front end") + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width-2, 60))) + "\n\n")

	var panel string
	switch m.panel {
	case panelHelp:
		panel = renderHelpPanel()
	case panelSymbols:
		panel = renderSymbolsPanel(m.session.parser.Context().Symbols())
	}

	available := m.height - 8
	if panel != "" {
		available -= lipgloss.Height(panel)
	}
	start := 0
	if len(m.transcript) > available {
		start = max(0, len(m.transcript)-available)
	}
	for _, entry := range m.transcript[start:] {
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString("  " + errorStyle.Render("✗ "+entry.output) + "\n")
		} else {
			b.WriteString("  " + resultStyle.Render("→ "+entry.output) + "\n")
		}
		b.WriteString("\n")
	}

	if panel != "" {
		b.WriteString(panel + "\n")
	}
	b.WriteString(m.textInput.View() + "\n\n")

	bindings := []key.Binding{keys.Help, keys.Symbols, keys.Clear, keys.Quit}
	footer := make([]string, len(bindings))
	for i, kb := range bindings {
		h := kb.Help()
		footer[i] = helpKeyStyle.Render(h.Key) + helpDescStyle.Render(" "+h.Desc)
	}
	b.WriteString(strings.Join(footer, "  "))
	return b.String()
}

func renderSymbolsPanel(symbols []*basic.Lexeme) string {
	if len(symbols) == 0 {
		return panelStyle.Render(mutedStyle.Render("No variables yet"))
	}
	nameStyle := lipgloss.NewStyle().Foreground(highlightColor)
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Symbols")}
	for _, sym := range symbols {
		name := sym.Name
		if sym.IsArray {
			name += "()"
		}
		lines = append(lines, fmt.Sprintf("  %s %s", nameStyle.Render(fmt.Sprintf("%-10s", name)), sym.Subtype))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"10 ...", "Store or replace line 10"},
		{"10", "Delete line 10"},
		{"↑/↓", "Recall earlier entries"},
		{"Tab", "Complete keyword or variable"},
		{":list", "Show the program source"},
		{":tree", "Show the parsed program"},
		{":check", "Report undefined jump targets"},
		{":features", "Show required runtime support"},
		{":symbols", "Toggle the symbol table"},
		{":new", "Clear the program"},
		{":quit", "Exit"},
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help")}
	for _, h := range help {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-9s", h.key)),
			helpDescStyle.Render(h.desc)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func runREPL() error {
	p := tea.NewProgram(newREPLModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
