package basic

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
)

// phrases renders every top-level tree of program line n.
func phrases(t *testing.T, p *Parser, n int) []string {
	t.Helper()
	tag := p.Line(n)
	if tag == nil {
		t.Fatalf("line %d not found", n)
	}
	out := make([]string, len(tag.Actions))
	for i, action := range tag.Actions {
		out[i] = sexpr(action)
	}
	return out
}

func assertPhrases(t *testing.T, source string, want ...string) *Parser {
	t.Helper()
	p := parseProgram(t, source+"\n")
	got := phrases(t, p, p.Context().LineNumbers()[0])
	if strings.Join(got, " | ") != strings.Join(want, " | ") {
		t.Fatalf("%s\n got: %s\nwant: %s", source, strings.Join(got, " | "), strings.Join(want, " | "))
	}
	return p
}

func TestStatementTrees(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"print sum", "10 PRINT A+B", []string{"(PRINT (+ A B))"}},
		{"implicit let", "10 A=1", []string{"(LET A 1)"}},
		{"explicit let", "10 LET A=1", []string{"(LET A 1)"}},
		{"function target", `10 MID$(A$,1,1)="X"`, []string{`(LET (MID$ A$ 1 1) "X")`}},
		{"time assignment", "10 TIME=0", []string{"(LET TIME 0)"}},
		{"colon phrases", "10 CLS:PRINT 1", []string{"CLS", "(PRINT 1)"}},
		{"print separators", `10 PRINT "HI";A`, []string{`(PRINT "HI" ; A)`}},
		{"print trailing separator", "10 PRINT A;", []string{"(PRINT A ;)"}},
		{"bare print", "10 PRINT", []string{"PRINT"}},
		{"question mark", "10 ?1,2", []string{"(PRINT 1 , 2)"}},
		{"print using", `10 PRINT USING "##";A`, []string{`(PRINT (USING$ "##" A))`}},
		{"print channel", "10 PRINT #1,A", []string{"(PRINT (# 1) A)"}},
		{"input", `10 INPUT "N";N`, []string{`(INPUT "N" ; N)`}},
		{"line input", "10 LINE INPUT A$", []string{"(LINE (INPUT A$))"}},
		{"goto", "10 GOTO 100", []string{"(GOTO 100)"}},
		{"for step", "10 FOR I=1 TO 10 STEP 2", []string{"(FOR (LET I 1) (TO 10) (STEP 2))"}},
		{"for", "10 FOR I=N TO N*2", []string{"(FOR (LET I N) (TO (* N 2)))"}},
		{"next list", "10 NEXT I,J", []string{"(NEXT I)", "(NEXT J)"}},
		{"bare next", "10 NEXT", []string{"NEXT"}},
		{"if jump", "10 IF A=1 THEN 100 ELSE 200", []string{"(IF (= A 1) (THEN (GOTO 100)) (ELSE (GOTO 200)))"}},
		{"if goto", "10 IF A GOTO 50", []string{"(IF A (THEN (GOTO 50)))"}},
		{"if statements", "10 IF A THEN PRINT 1:B=2", []string{"(IF A (THEN (PRINT 1) (LET B 2)))"}},
		{"dangling else", "10 IF A THEN IF B THEN 1 ELSE 2", []string{"(IF A (THEN (IF B (THEN (GOTO 1)) (ELSE (GOTO 2)))))"}},
		{"inner else", "10 IF A THEN IF B THEN 20 ELSE 30 ELSE 40", []string{"(IF A (THEN (IF B (THEN (GOTO 20)) (ELSE (GOTO 30)))) (ELSE (GOTO 40)))"}},
		{"two elses", "10 IF A THEN IF B THEN 1 ELSE 2 ELSE 3", []string{"(IF A (THEN (IF B (THEN (GOTO 1)) (ELSE (GOTO 2)))) (ELSE (GOTO 3)))"}},
		{"on goto", "10 ON X GOTO 100,,300", []string{"(ON X (GOTO 100 NULL 300))"}},
		{"on interval", "10 ON INTERVAL=60 GOSUB 100", []string{"(ON (INTERVAL 60) (GOSUB 100))"}},
		{"on key", "10 ON KEY GOSUB 100,200", []string{"(ON KEY (GOSUB 100 200))"}},
		{"key toggle", "10 KEY(1) ON", []string{"(KEY 1 ON)"}},
		{"strig toggle", "10 STRIG(0) OFF", []string{"(STRIG 0 OFF)"}},
		{"generic arguments", "10 LOCATE 10,,1", []string{"(LOCATE 10 NULL 1)"}},
		{"dim", "10 DIM A(10),B$(5,5)", []string{"(DIM (A 10) (B$ 5 5))"}},
		{"screen", "10 SCREEN 5", []string{"(SCREEN 5)"}},
		{"sprite toggle", "10 SPRITE ON", []string{"(SPRITE ON)"}},
		{"set page", "10 SET PAGE 1,0", []string{"(SET (PAGE 1 0))"}},
		{"put sprite", "10 PUT SPRITE 0,(10,20),15", []string{"(PUT (SPRITE 0 (( 10 20) 15))"}},
		{"pset raster", "10 PSET (10,20),15,XOR", []string{"(PSET (( 10 20) 15 3)"}},
		{"pset step", "10 PSET STEP(1,1)", []string{"(PSET (STEP 1 1))"}},
		{"circle", "10 CIRCLE (128,96),50,8", []string{"(CIRCLE (( 128 96) 50 8)"}},
		{"line box fill", "10 LINE (0,0)-(255,191),15,BF", []string{"(LINE (( 0 0) (( 255 191) 15 2)"}},
		{"line from last point", "10 LINE -(10,10),,B", []string{"(LINE NULL (( 10 10) NULL 1)"}},
		{"line raster", "10 LINE (0,0)-STEP(5,5),1,B,TPSET", []string{"(LINE (( 0 0) (STEP 5 5) 1 1 8)"}},
		{"copy", "10 COPY (0,0)-(10,10),1 TO (20,20),0,TPSET", []string{"(COPY (( 0 0) (( 10 10) 1 (TO (( 20 20) 0 8))"}},
		{"copy array", "10 COPY A TO (0,0)", []string{"(COPY A (TO (( 0 0)))"}},
		{"color list", "10 COLOR 15,,1", []string{"(COLOR 15 NULL 1)"}},
		{"color palette", "10 COLOR=(1,7,0,0)", []string{"(COLOR (RGB 1 7 0 0))"}},
		{"color new", "10 COLOR=NEW", []string{"(COLOR NEW)"}},
		{"color sprite", "10 COLOR SPRITE(2)=5", []string{"(COLOR (SPRITE 2 5))"}},
		{"defint", "10 DEFINT A-C,X", []string{"(DEF INT (- A C) X)"}},
		{"def usr", "10 DEFUSR=&HC000", []string{"(DEF (USR 0 -16384))"}},
		{"def usr index", "10 DEFUSR1=&HD000", []string{"(DEF (USR 1 -12288))"}},
		{"call shorthand", "10 _TURBO ON", []string{"(CALL (TURBO ON))"}},
		{"call params", "10 CALL MUSIC(1,0)", []string{"(CALL (MUSIC 1 0))"}},
		{"cmd joined name", "10 CMD AKMPLAY 0", []string{"(CMD (AKMPLAY 0))"}},
		{"cmd extension word", "10 CMD WRTSPRATR 0", []string{"(CMD (WRTSPRATR 0))"}},
		{"run", "10 RUN 100", []string{"(RUN 100)"}},
		{"set prompt", `10 SET PROMPT "OK"`, []string{`(SET (PROMPT "OK"))`}},
		{"open", `10 OPEN "GRP:" FOR OUTPUT AS #1`, []string{`(OPEN "GRP:" (FOR OUTPUT) (AS 1))`}},
		{"open len", `10 OPEN "F" AS 1 LEN=32`, []string{`(OPEN "F" (AS 1) (LEN 32))`}},
		{"close", "10 CLOSE #1,2", []string{"(CLOSE 1 2)"}},
		{"max files", "10 MAX FILES=2", []string{"(MAX (FILES 2))"}},
		{"rem", "10 REM hello", []string{"REM"}},
		{"apostrophe", "10 CLS ' clear", []string{"CLS", "'"}},
		{"directive comment", "10 '#pragma", []string{"(' #pragma)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPhrases(t, tt.src, tt.want...)
		})
	}
}

func TestPrintNewlineIsImplicit(t *testing.T) {
	p := parseProgram(t, "10 PRINT A+B\n20 PRINT A;\n")
	stmt := p.Line(10).Actions[0]
	if !stmt.Lexeme.IsKeyword("PRINT") || len(stmt.Actions) != 1 {
		t.Fatalf("expected PRINT with a single child, got %s", stmt)
	}
	if sum := stmt.Child(0); !sum.Lexeme.IsOperator("+") || sexpr(sum) != "(+ A B)" {
		t.Fatalf("expected + over A and B, got %s", sexpr(sum))
	}
	trailing := p.Line(20).Actions[0]
	if last := trailing.Child(len(trailing.Actions) - 1); !last.Lexeme.IsSeparator(";") {
		t.Fatalf("expected trailing ; to be the last child, got %s", last.Lexeme)
	}
}

func TestRasterOperations(t *testing.T) {
	tests := []struct {
		op   string
		code string
	}{
		{"PSET", "0"},
		{"AND", "1"},
		{"OR", "2"},
		{"XOR", "3"},
		{"PRESET", "4"},
		{"TPSET", "8"},
		{"TAND", "9"},
		{"TOR", "10"},
		{"TXOR", "11"},
		{"TPRESET", "12"},
	}
	if len(tests) != len(rasterOps) {
		t.Fatalf("expected %d raster operations, table has %d", len(tests), len(rasterOps))
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			assertPhrases(t, "10 PSET (0,0),1,"+tt.op, "(PSET (( 0 0) 1 "+tt.code+")")
			assertPhrases(t, "10 LINE (0,0)-(9,9),1,BF,"+tt.op, "(LINE (( 0 0) (( 9 9) 1 2 "+tt.code+")")
		})
	}
}

func TestStatementErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind ErrorKind
		want string
	}{
		{"10 FOR I=1 STEP 2", ErrSequencing, "STEP without TO"},
		{"10 FOR I=1 STEP 2 TO 5", ErrSequencing, "STEP without TO"},
		{"10 FOR I=1", ErrStructural, "missing TO"},
		{"10 FOR I=1 TO", ErrStructural, "missing expression after TO"},
		{"10 IF A PRINT 1", ErrStructural, "missing THEN"},
		{"10 IF A THEN 1 ELSE 2 ELSE 3", ErrSequencing, "ELSE without IF"},
		{"10 IF A THEN 10 THEN 20", ErrSequencing, "duplicate THEN"},
		{"10 IF A THEN 10 20", ErrSequencing, "unexpected 20 after IF statement"},
		{"10 ON ERROR GOTO 100", ErrUnsupported, "ON ERROR is not supported"},
		{"10 ON X GOTO A", ErrStructural, "line number expected after GOTO"},
		{"10 ON X", ErrStructural, "missing GOTO or GOSUB"},
		{"10 GOTO", ErrStructural, "missing line number after GOTO"},
		{"10 DEF FNA(X)=X*2", ErrUnsupported, "DEF FN is not supported"},
		{"10 X=FNA(1)", ErrUnsupported, "FN calls are not supported"},
		{"10 COLOR=(1,7)", ErrStructural, "at least three values"},
		{`10 OPEN "F" FOR READ AS 1`, ErrStructural, "invalid file mode"},
		{`10 OPEN "F" FOR INPUT`, ErrStructural, "missing AS"},
		{`10 OPEN "F" AS 1 CLOSE`, ErrStructural, "missing LEN"},
		{"10 MAX 2", ErrStructural, "missing FILES"},
		{"10 LINE (0,0)", ErrStructural, "missing -"},
		{"10 PSET 10,10", ErrStructural, "PSET expects a coordinate"},
		{"10 COPY (0,0)-(1,1)", ErrStructural, "missing TO"},
		{"10 AUTO 10", ErrUnsupported, "unsupported statement AUTO"},
		{"10 PRIN 1", ErrStructural, "missing = in assignment (did you mean PRINT?)"},
		{"10 3=A", ErrStructural, "unexpected literal 3 at start of statement"},
	}
	for _, tt := range tests {
		pe := parseFailure(t, tt.src+"\n")
		if pe.Kind != tt.kind {
			t.Errorf("%q: kind %s, want %s (%s)", tt.src, pe.Kind, tt.kind, pe.Msg)
		}
		if !strings.Contains(pe.Msg, tt.want) {
			t.Errorf("%q: got %q, want %q", tt.src, pe.Msg, tt.want)
		}
	}
}

func TestErrorPositionAndLine(t *testing.T) {
	pe := parseFailure(t, "10 PRINT 1\n20 A=(1\n")
	file, line, column := pe.Position()
	if file != "test.bas" || line != 2 || column != 6 {
		t.Fatalf("Position() = %s:%d:%d, want test.bas:2:6", file, line, column)
	}
	if pe.Tag() != "20" {
		t.Fatalf("Tag() = %q, want 20", pe.Tag())
	}
	msg := pe.Error()
	if !strings.Contains(msg, "syntax error in line 20: mismatched parentheses") {
		t.Fatalf("unexpected error text: %s", msg)
	}
	if !strings.Contains(msg, "  --> test.bas:2\n 2 | 20 A=(1\n   |      ^") {
		t.Fatalf("expected code frame, got:\n%s", msg)
	}
}

func TestUnclosedParenthesisPointsAtLine(t *testing.T) {
	p := NewParser(Config{})
	err := p.ParseSource("test.bas", strings.NewReader("10 PRINT (A\n"))
	if err == nil || !strings.Contains(err.Error(), "mismatched parentheses") {
		t.Fatalf("expected mismatched parentheses, got %v", err)
	}
	line := p.ErrorLine()
	if line == nil || line.First() == nil || line.First().Tag == nil || line.First().Tag.Name != "10" {
		t.Fatalf("error line must point at line 10")
	}
}

func TestEmptyDataSlotsKeepPositions(t *testing.T) {
	p := parseProgram(t, "10 DATA 1,,3\n")
	data := p.Context().Data
	if len(data) != 3 {
		t.Fatalf("expected 3 items, got %d", len(data))
	}
	if data[0].Value != "1" || data[1].Value != "" || data[2].Value != "3" {
		t.Fatalf("unexpected values %q %q %q", data[0].Value, data[1].Value, data[2].Value)
	}
	if data[1].Lexeme.Subtype != SubtypeString {
		t.Fatalf("empty slot must be an empty string, got %s", data[1].Lexeme.Subtype)
	}
}

func TestLinesWithoutNumbersAreIgnored(t *testing.T) {
	var logs bytes.Buffer
	p := NewParser(Config{Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))})
	src := "PRINT \"direct\"\n10 END\n\n   \n"
	if err := p.ParseSource("test.bas", strings.NewReader(src)); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(p.Tags()) != 1 || p.Tags()[0].Name != "10" {
		t.Fatalf("expected only line 10, got %d tags", len(p.Tags()))
	}
	if !strings.Contains(logs.String(), "ignoring line without line number") {
		t.Fatalf("expected debug log, got %q", logs.String())
	}
}

func TestDuplicateLineNumbersWarn(t *testing.T) {
	var logs bytes.Buffer
	p := NewParser(Config{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	if err := p.ParseSource("test.bas", strings.NewReader("10 CLS\n10 BEEP\n")); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(p.Tags()) != 2 {
		t.Fatalf("both lines must be kept as tags")
	}
	if got := phrases(t, p, 10); got[0] != "BEEP" {
		t.Fatalf("line index should point at the later line, got %v", got)
	}
	if !strings.Contains(logs.String(), "duplicate line number") {
		t.Fatalf("expected warning, got %q", logs.String())
	}
}

func TestFeatureFlags(t *testing.T) {
	p := parseProgram(t, strings.Join([]string{
		"10 ON SPRITE GOSUB 100",
		"20 DATA 1",
		"30 IDATA 2",
		`40 PLAY "CDE"`,
		"50 INPUT A",
		"60 CMD PT3LOAD 0",
		"70 CMD AKMPLAY 0",
		"80 CMD MTFLOAD 0",
		"90 CMD RESTORE 1",
		"100 RETURN",
	}, "\n"))
	want := Features{
		Traps: true, Data: true, IData: true, Play: true, Input: true,
		PT3: true, AKM: true, MTF: true, ResourceRestore: true,
	}
	if got := p.Context().Features; got != want {
		t.Fatalf("features = %+v, want %+v", got, want)
	}

	fonts := parseProgram(t, "10 CMD SETFNT 1\n")
	if !fonts.Context().Features.Font {
		t.Fatalf("CMD SETFNT must enable font support")
	}
	fonts = parseProgram(t, "10 SET FONT 1\n")
	if !fonts.Context().Features.Font {
		t.Fatalf("SET FONT must enable font support")
	}
}

func TestDataPool(t *testing.T) {
	var logs bytes.Buffer
	p := NewParser(Config{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	src := "10 DATA 1,\"A,B\",&H10,hello world,\n20 IDATA 7,-1\n30 DATA &HZZ\n"
	if err := p.ParseSource("test.bas", strings.NewReader(src)); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	data := p.Context().Data
	want := []struct {
		name    string
		value   string
		subtype LexemeSubtype
	}{
		{"_DATA_1", "1", SubtypeNumeric},
		{"_DATA_2", "A,B", SubtypeString},
		{"_DATA_3", "16", SubtypeNumeric},
		{"_DATA_4", "hello world", SubtypeString},
		{"_DATA_5", "", SubtypeString},
		{"_IDATA_1", "7", SubtypeIntegerData},
		{"_IDATA_2", "-1", SubtypeIntegerData},
		{"_DATA_6", "0", SubtypeNumeric},
	}
	if len(data) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(data))
	}
	for i, w := range want {
		item := data[i]
		if item.Name != w.name || item.Value != w.value || item.Lexeme.Subtype != w.subtype {
			t.Errorf("item %d = %s %q %s, want %s %q %s", i, item.Name, item.Value, item.Lexeme.Subtype, w.name, w.value, w.subtype)
		}
	}
	if data[0].Tag != p.Line(10) || !data[5].Integer {
		t.Fatalf("items must record their line and pool")
	}
	if stmt := p.Line(10).Actions[0]; len(stmt.Actions) != 5 || stmt.Child(1).Lexeme != data[1].Lexeme {
		t.Fatalf("DATA node must hold the pool lexemes")
	}
	if !strings.Contains(logs.String(), "invalid radix constant in DATA") {
		t.Fatalf("expected radix warning, got %q", logs.String())
	}
}

func TestDefTypesRetypeSymbols(t *testing.T) {
	p := parseProgram(t, "10 A=1:A%=2\n20 DEFSTR A-B\n30 C=A+A%\n40 B=1\n")
	ctx := p.Context()

	if ctx.DefTypeOf('a') != DefString || ctx.DefTypeOf('B') != DefString || ctx.DefTypeOf('C') != DefUnset {
		t.Fatalf("unexpected DEF table %v", ctx.DefTypes)
	}
	first := p.Line(10).Actions[0].Child(0).Lexeme
	if first.Subtype != SubtypeString {
		t.Fatalf("A must be retyped by DEFSTR, got %s", first.Subtype)
	}
	suffixed := p.Line(10).Actions[1].Child(0).Lexeme
	if suffixed.Subtype != SubtypeNumeric {
		t.Fatalf("A%% keeps its suffix type, got %s", suffixed.Subtype)
	}
	if b := p.Line(40).Actions[0].Child(0).Lexeme; b.Subtype != SubtypeString {
		t.Fatalf("B declared after DEFSTR must be a string, got %s", b.Subtype)
	}
	if c := p.Line(30).Actions[0].Child(0).Lexeme; c.Subtype != SubtypeAny {
		t.Fatalf("C has no DEF type, got %s", c.Subtype)
	}
}

func TestNextSiblingsShareLexeme(t *testing.T) {
	p := parseProgram(t, "10 NEXT I,J\n")
	actions := p.Line(10).Actions
	if len(actions) != 2 || actions[0].Lexeme != actions[1].Lexeme {
		t.Fatalf("NEXT I,J must produce sibling nodes sharing one lexeme")
	}
}

func TestResourceDirectives(t *testing.T) {
	p := parseProgram(t, "FILE \"sprites.bin\"\nTEXT \"intro.txt\"\n10 END\n")
	ctx := p.Context()
	if ctx.ResourceCount != 2 {
		t.Fatalf("expected 2 resources, got %d", ctx.ResourceCount)
	}
	tags := p.Tags()
	if len(tags) != 3 || !tags[0].IsDirective() || !tags[1].IsDirective() {
		t.Fatalf("expected two directive tags before line 10")
	}
	file := tags[0].Actions[0]
	if !file.Lexeme.IsKeyword("FILE") || file.Child(0).Lexeme.Subtype != SubtypeBinaryData {
		t.Fatalf("unexpected FILE tree %s", sexpr(file))
	}
	text := tags[1].Actions[0]
	if text.Child(0).Lexeme.Subtype != SubtypeBasicString || text.Child(0).Value() != `"intro.txt"` {
		t.Fatalf("unexpected TEXT tree %s", sexpr(text))
	}
	if got := ctx.LineNumbers(); len(got) != 1 || got[0] != 10 {
		t.Fatalf("directives must not enter the line index, got %v", got)
	}

	pe := parseFailure(t, "FILE sprites\n")
	if !strings.Contains(pe.Msg, "FILE expects a quoted name") {
		t.Fatalf("unexpected error %q", pe.Msg)
	}
}

func TestIncludeResolvesRelativeToIncludingFile(t *testing.T) {
	fsys := fstest.MapFS{
		"main.bas":      {Data: []byte("10 GOSUB 20\nINCLUDE \"lib/util.bas\"\n40 END\n")},
		"lib/util.bas":  {Data: []byte("20 PRINT 1\nINCLUDE \"more.bas\"\n")},
		"lib/more.bas":  {Data: []byte("30 RETURN\n")},
		"other/x.bas":   {Data: []byte("50 BEEP\n")},
		"program.bas":   {Data: []byte("10 CLS\nINCLUDE \"x.bas\"\n")},
		"unrelated.txt": {Data: []byte("not basic")},
	}
	p := NewParser(Config{Open: OpenFS(fsys)})
	if err := p.ParseFile("main.bas"); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := p.Context().LineNumbers(); len(got) != 4 || got[0] != 10 || got[3] != 40 {
		t.Fatalf("unexpected lines %v", got)
	}

	p = NewParser(Config{Open: OpenFS(fsys), IncludePaths: []string{"other"}})
	if err := p.ParseFile("program.bas"); err != nil {
		t.Fatalf("include path lookup failed: %v", err)
	}
	if p.Line(50) == nil {
		t.Fatalf("expected line 50 from other/x.bas")
	}
}

func TestIncludeCycleIsRejected(t *testing.T) {
	fsys := fstest.MapFS{
		"a.bas": {Data: []byte("10 CLS\nINCLUDE \"b.bas\"\n")},
		"b.bas": {Data: []byte("20 CLS\nINCLUDE \"a.bas\"\n")},
	}
	p := NewParser(Config{Open: OpenFS(fsys)})
	err := p.ParseFile("a.bas")
	if err == nil {
		t.Fatalf("expected circular include error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != ErrResource {
		t.Fatalf("expected resource error, got %v", err)
	}
	if !strings.Contains(err.Error(), `circular include of "a.bas"`) {
		t.Fatalf("unexpected error: %v", err)
	}
	file, line, _ := pe.Position()
	if file != "b.bas" || line != 2 {
		t.Fatalf("Position() = %s:%d, want b.bas:2", file, line)
	}
	if p.ErrorLine().File != "b.bas" {
		t.Fatalf("ErrorLine() should point into the included file")
	}
}

func TestIncludeMissingFile(t *testing.T) {
	p := NewParser(Config{Open: OpenFS(fstest.MapFS{
		"main.bas": {Data: []byte("INCLUDE \"gone.bas\"\n")},
	})})
	err := p.ParseFile("main.bas")
	if err == nil {
		t.Fatalf("expected include error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestLineIndexAndJumpTargets(t *testing.T) {
	p := parseProgram(t, "30 RESTORE 100\n10 GOTO 20\n20 IF A THEN 10 ELSE 40\n")
	ctx := p.Context()

	if got := ctx.LineNumbers(); len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Fatalf("LineNumbers() = %v", got)
	}
	if next := ctx.NextLine(15); next == nil || next.Name != "20" {
		t.Fatalf("NextLine(15) = %v", next)
	}
	if ctx.NextLine(31) != nil || ctx.Line(25) != nil {
		t.Fatalf("expected no line past 30 and no line 25")
	}

	var refs []string
	for _, j := range ctx.JumpTargets() {
		refs = append(refs, j.From.Name+":"+j.Statement+" "+j.Target.Value)
	}
	if got := strings.Join(refs, ", "); got != "30:RESTORE 100, 10:GOTO 20, 20:GOTO 10, 20:GOTO 40" {
		t.Fatalf("JumpTargets() = %s", got)
	}

	var missing []int
	for _, j := range ctx.UndefinedTargets() {
		missing = append(missing, j.Number())
	}
	if len(missing) != 2 || missing[0] != 100 || missing[1] != 40 {
		t.Fatalf("UndefinedTargets() = %v", missing)
	}
}

func TestRunTargetsAreChecked(t *testing.T) {
	p := parseProgram(t, "10 RUN 30\n20 RUN\n")
	targets := p.Context().UndefinedTargets()
	if len(targets) != 1 || targets[0].Statement != "RUN" || targets[0].Number() != 30 {
		t.Fatalf("UndefinedTargets() = %v", targets)
	}
}

func TestParseLineAndReset(t *testing.T) {
	p := NewParser(Config{})
	line, err := Tokenize("10 A=1")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if err := p.ParseLine(line); err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if p.Line(10) == nil || len(p.Context().Symbols()) != 1 {
		t.Fatalf("expected line 10 and one symbol")
	}
	if line.Token(1).Tag != p.Line(10) {
		t.Fatalf("tokens must point at their tag")
	}

	bad, _ := Tokenize("20 A=(")
	if err := p.ParseLine(bad); err == nil || p.Err() == nil {
		t.Fatalf("expected error to be recorded")
	}
	if p.ErrorLine() == nil {
		t.Fatalf("expected ErrorLine after failure")
	}

	p.Reset()
	if len(p.Tags()) != 0 || len(p.Context().Symbols()) != 0 || p.Err() != nil || p.Line(10) != nil {
		t.Fatalf("Reset must clear the context")
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"POKE", "PRINT", "LPRINT"}
	if got := Suggest("PRNT", candidates); got != "PRINT" {
		t.Fatalf("Suggest(PRNT) = %q", got)
	}
	if got := Suggest("POKR", candidates); got != "POKE" {
		t.Fatalf("Suggest(POKR) = %q", got)
	}
	if got := Suggest("XYZZY", candidates); got != "" {
		t.Fatalf("Suggest(XYZZY) = %q", got)
	}
}
