package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/mgomes/msxbasic/basic"
)

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspTextDocumentPositionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

const (
	severityError   = 1
	severityWarning = 2

	completionFunction = 3
	completionKeyword  = 14
	completionOperator = 24
)

type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	docs   map[string]string
}

func runLSP() error {
	server := &lspServer{
		reader: bufio.NewReader(os.Stdin),
		writer: bufio.NewWriter(os.Stdout),
		docs:   make(map[string]string),
	}
	return server.serve()
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			continue
		}
		for _, msg := range s.handleMessage(incoming) {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}
		if incoming.Method == "exit" {
			return nil
		}
	}
}

func lspReply(incoming lspInboundMessage, result any) []lspOutboundMessage {
	return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: result}}
}

func lspReplyError(incoming lspInboundMessage, code int, message string) []lspOutboundMessage {
	return []lspOutboundMessage{{
		JSONRPC: "2.0",
		ID:      incoming.ID,
		Error:   &lspResponseError{Code: code, Message: message},
	}}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	isRequest := incoming.ID != nil
	switch incoming.Method {
	case "initialize":
		return lspReply(incoming, map[string]any{
			"capabilities": map[string]any{
				"textDocumentSync":   1,
				"hoverProvider":      true,
				"definitionProvider": true,
				"completionProvider": map[string]any{"resolveProvider": false},
			},
		})
	case "initialized", "exit":
		return nil
	case "shutdown":
		if !isRequest {
			return nil
		}
		return lspReply(incoming, nil)
	case "textDocument/didOpen":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		return s.store(params.TextDocument.URI, params.TextDocument.Text)
	case "textDocument/didChange":
		var params lspDidChangeParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil || len(params.ContentChanges) == 0 {
			return nil
		}
		return s.store(params.TextDocument.URI, params.ContentChanges[len(params.ContentChanges)-1].Text)
	case "textDocument/completion":
		if !isRequest {
			return nil
		}
		return lspReply(incoming, map[string]any{"isIncomplete": false, "items": completionItems()})
	case "textDocument/hover", "textDocument/definition":
		if !isRequest {
			return nil
		}
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return lspReplyError(incoming, -32602, "invalid position params")
		}
		uri := params.TextDocument.URI
		source := s.docs[uri]
		word := wordAtPosition(source, params.Position.Line, params.Position.Character)
		if incoming.Method == "textDocument/hover" {
			return lspReply(incoming, hoverResult(source, word))
		}
		return lspReply(incoming, definitionResult(uri, source, word))
	default:
		if !isRequest {
			return nil
		}
		return lspReplyError(incoming, -32601, "method not found")
	}
}

func (s *lspServer) store(uri, text string) []lspOutboundMessage {
	s.docs[uri] = text
	return []lspOutboundMessage{{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(text),
		},
	}}
}

// parseBuffer parses an editor buffer. INCLUDE is not followed: the buffer
// has no reliable directory to resolve it against.
func parseBuffer(source string) (*basic.Parser, error) {
	parser := basic.NewParser(basic.Config{
		Open: func(name string) (io.ReadCloser, error) {
			return nil, fmt.Errorf("include %s not available in editor", name)
		},
	})
	return parser, parser.ParseSource("", strings.NewReader(source))
}

// diagnosticsForSource reports the parse error of source, or, when it
// parses, every jump to a line number the program does not define.
func diagnosticsForSource(source string) []map[string]any {
	parser, err := parseBuffer(source)
	if err != nil {
		var parseErr *basic.ParseError
		if !errors.As(err, &parseErr) {
			return []map[string]any{newDiagnostic(0, 0, 1, severityError, err.Error())}
		}
		if parseErr.Kind == basic.ErrResource {
			return []map[string]any{}
		}
		_, line, column := parseErr.Position()
		return []map[string]any{
			newDiagnostic(max(0, line-1), max(0, column-1), 1, severityError, parseErr.Kind.String()+" error: "+parseErr.Msg),
		}
	}

	rows := programRows(source)
	out := []map[string]any{}
	for _, target := range parser.Context().UndefinedTargets() {
		row, ok := rows[target.From.Name]
		if !ok {
			continue
		}
		out = append(out, newDiagnostic(row, max(0, target.Target.Column-1), len(target.Target.Name), severityWarning,
			fmt.Sprintf("%s %s: undefined line number", target.Statement, target.Target.Value)))
	}
	return out
}

// programRows maps program line numbers to their zero-based row in source.
func programRows(source string) map[string]int {
	rows := make(map[string]int)
	for i, text := range strings.Split(source, "\n") {
		line, err := basic.Tokenize(strings.TrimRight(text, "\r"))
		if err != nil {
			continue
		}
		if first := line.First(); first != nil && first.IsLineNumber() {
			rows[first.Value] = i
		}
	}
	return rows
}

func lspRange(line, character, length int) map[string]any {
	return map[string]any{
		"start": map[string]any{"line": line, "character": character},
		"end":   map[string]any{"line": line, "character": character + length},
	}
}

func newDiagnostic(line, character, length, severity int, message string) map[string]any {
	return map[string]any{
		"range":    lspRange(line, character, length),
		"severity": severity,
		"source":   "msxbasic-lsp",
		"message":  message,
	}
}

func completionItems() []map[string]any {
	words := basic.ReservedWords()
	items := make([]map[string]any, 0, len(words))
	for _, word := range words {
		kind, detail := completionKeyword, "keyword"
		switch {
		case basic.IsFunctionWord(word):
			kind, detail = completionFunction, "function"
		case basic.IsOperatorWord(word):
			kind, detail = completionOperator, "operator"
		}
		items = append(items, map[string]any{
			"label":  word,
			"kind":   kind,
			"detail": detail,
		})
	}
	return items
}

func classifyWord(word string) string {
	upper := strings.ToUpper(word)
	switch {
	case basic.IsFunctionWord(upper):
		return "function"
	case basic.IsOperatorWord(upper):
		return "operator"
	case basic.IsReserved(upper):
		return "keyword"
	case isLineNumber(upper):
		return "line number"
	default:
		return "variable"
	}
}

func isLineNumber(word string) bool {
	_, err := strconv.ParseUint(word, 10, 16)
	return err == nil
}

// hoverResult names the kind of word; variables also show the type the
// program gives them.
func hoverResult(source, word string) any {
	if word == "" {
		return nil
	}
	upper := strings.ToUpper(word)
	kind := classifyWord(upper)
	if kind == "variable" {
		if parser, err := parseBuffer(source); err == nil {
			for _, sym := range parser.Context().Symbols() {
				if sym.Name == upper && !sym.IsArray && sym.Subtype != basic.SubtypeAny {
					kind = fmt.Sprintf("variable (%s)", sym.Subtype)
					break
				}
			}
		}
	}
	return map[string]any{
		"contents": map[string]any{
			"kind":  "markdown",
			"value": fmt.Sprintf("`%s`\n\nMSX BASIC %s", upper, kind),
		},
	}
}

// definitionResult resolves a line number under the cursor to the line
// that carries it.
func definitionResult(uri, source, word string) any {
	if !isLineNumber(word) {
		return nil
	}
	n, _ := strconv.Atoi(word)
	row, ok := programRows(source)[strconv.Itoa(n)]
	if !ok {
		return nil
	}
	return map[string]any{
		"uri":   uri,
		"range": lspRange(row, 0, len(strconv.Itoa(n))),
	}
}

func wordAtPosition(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	runes := []rune(strings.TrimRight(lines[line], "\r"))
	if len(runes) == 0 {
		return ""
	}

	cursor := min(max(character, 0), len(runes))
	if cursor == len(runes) || !isWordRune(runes[cursor]) {
		if cursor == 0 || !isWordRune(runes[cursor-1]) {
			return ""
		}
		cursor--
	}

	start := cursor
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	end := cursor
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("$%!#", r)
}

func (s *lspServer) readPayload() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid Content-Length: %w", err)
		}
		contentLength = n
	}

	if contentLength < 0 {
		return nil, errors.New("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}
