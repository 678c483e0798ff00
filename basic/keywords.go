package basic

import "sort"

// maxKeywordLookahead bounds how far the tokenizer extends a matched
// keyword while looking for a longer reserved word.
const maxKeywordLookahead = 20

var reservedWords = []string{
	"ABS", "ADJUST", "AKM", "AND", "APPEND", "AS", "ASC", "ATN", "ATTR$",
	"AUTO",
	"BASE", "BEEP", "BIN$", "BLOAD", "BSAVE",
	"CALL", "CDBL", "CHR$", "CINT", "CIRCLE", "CLEAR", "CLOAD", "CLOSE", "CLS",
	"CMD", "COLLISION", "COLOR", "CONT", "COPY", "COS", "CSAVE", "CSNG",
	"CSRLIN", "CVD", "CVI", "CVS",
	"DATA", "DATE", "DEF", "DELETE", "DIM", "DRAW", "DSKF", "DSKI$", "DSKO$",
	"ELSE", "END", "EOF", "EQV", "ERASE", "ERL", "ERR", "ERROR", "EXP",
	"FIELD", "FILE", "FILES", "FIX", "FLIP", "FN", "FONT", "FOR", "FPOS",
	"FRE",
	"GET", "GOSUB", "GOTO",
	"HEX$",
	"IDATA", "IF", "IMP", "INCLUDE", "INKEY$", "INP", "INPUT", "INPUT$",
	"INSTR", "INT", "INTERVAL", "IPL", "IREAD", "IRESTORE",
	"KEY", "KILL",
	"LEFT$", "LEN", "LET", "LFILES", "LINE", "LIST", "LLIST", "LOAD", "LOC",
	"LOCATE", "LOF", "LOG", "LPOS", "LPRINT", "LSET",
	"MAX", "MERGE", "MID$", "MKD$", "MKI$", "MKS$", "MOD", "MOTOR",
	"NAME", "NEW", "NEXT", "NOT",
	"OCT$", "OFF", "ON", "OPEN", "OR", "OUT", "OUTPUT",
	"PAD", "PAGE", "PAINT", "PASSWORD", "PASTE", "PATTERN", "PDL", "PEEK",
	"PLAY", "POINT", "POKE", "POS", "PRESET", "PRINT", "PROMPT", "PSET", "PUT",
	"READ", "REM", "RENUM", "RESTORE", "RESUME", "RETURN", "RIGHT$", "RND",
	"ROTATE", "RSET", "RUN",
	"SAVE", "SCREEN", "SCROLL", "SET", "SGN", "SHL", "SHR", "SIN", "SOUND",
	"SPACE$", "SPC", "SPRITE", "SPRITE$", "SQR", "STEP", "STICK", "STOP",
	"STR$", "STRIG", "STRING$", "SWAP",
	"TAB", "TAN", "TAND", "TEXT", "THEN", "TILE", "TIME", "TITLE", "TO", "TOR",
	"TPRESET", "TPSET", "TROFF", "TRON", "TXOR",
	"USING", "USR",
	"VAL", "VARPTR", "VDP", "VIDEO", "VPEEK", "VPOKE",
	"WAIT", "WIDTH",
	"XOR",
}

// cmdWords are the CMD extension commands. They are reserved so that
// longest-match keeps them whole when written without spaces.
var cmdWords = []string{
	"AKMMUTE", "AKMPLAY", "CLIPOFF", "CLIPON", "CLRKEY", "CLRSCR", "DISSCR",
	"ENASCR", "KEYCLKOFF", "MTFLOAD", "MTFMAP", "MTFPALETTE", "MTFSPRITE",
	"PT3LOAD", "PT3LOOP", "PT3MUTE", "PT3PLAY", "PT3REPLAY", "RAMTORAM",
	"RAMTOVRAM", "RSCTORAM", "RUNASM", "RUNBAS", "SETFNT", "UPDFNTCLR",
	"VRAMTORAM", "WRTCHR", "WRTCLR", "WRTFNT", "WRTSCR", "WRTSPR",
	"WRTSPRATR", "WRTSPRCLR", "WRTSPRPAT", "WRTVRAM",
}

// operatorWords are reserved words the tokenizer turns into operators.
var operatorWords = map[string]bool{
	"AND": true, "OR": true, "XOR": true, "MOD": true, "IMP": true,
	"EQV": true, "NOT": true, "SHR": true, "SHL": true,
}

// functionWords are the built-ins that take the function subtype. Those
// that may also appear on the left of "=" (MID$, TIME, VDP, BASE, SPRITE$)
// start an implicit LET.
var functionWords = map[string]bool{
	"ABS": true, "ASC": true, "ATN": true, "BASE": true, "BIN$": true,
	"CDBL": true, "CHR$": true, "CINT": true, "COLLISION": true, "COS": true,
	"CSNG": true, "CSRLIN": true, "CVD": true, "CVI": true, "CVS": true,
	"DSKF": true, "DSKI$": true, "EOF": true, "ERL": true, "ERR": true,
	"EXP": true, "FIX": true, "FPOS": true, "FRE": true, "HEX$": true,
	"INKEY$": true, "INP": true, "INPUT$": true, "INSTR": true, "INT": true,
	"LEFT$": true, "LEN": true, "LOC": true, "LOF": true, "LOG": true,
	"LPOS": true, "MID$": true, "MKD$": true, "MKI$": true, "MKS$": true,
	"OCT$": true, "PAD": true, "PDL": true, "PEEK": true, "POINT": true,
	"POS": true, "RIGHT$": true, "RND": true, "SGN": true, "SIN": true,
	"SPACE$": true, "SPC": true, "SPRITE$": true, "SQR": true, "STICK": true,
	"STR$": true, "STRIG": true, "STRING$": true, "TAB": true, "TAN": true,
	"TIME": true, "USR": true, "VAL": true, "VARPTR": true, "VDP": true,
	"VPEEK": true,
}

// operandWords are non-function keywords that may still appear as
// expression operands, such as PLAY(0) or the FILES count in MAX FILES.
var operandWords = map[string]bool{
	"PLAY": true, "TILE": true, "DATE": true,
}

var reservedSet = func() map[string]bool {
	set := make(map[string]bool, len(reservedWords)+len(cmdWords))
	for _, w := range reservedWords {
		set[w] = true
	}
	for _, w := range cmdWords {
		set[w] = true
	}
	return set
}()

// IsReserved reports whether word (upper case) is a reserved word.
func IsReserved(word string) bool {
	return reservedSet[word]
}

// IsFunctionWord reports whether word names a built-in function.
func IsFunctionWord(word string) bool {
	return functionWords[word]
}

// IsOperatorWord reports whether word is a boolean or bitwise operator word.
func IsOperatorWord(word string) bool {
	return operatorWords[word]
}

// ReservedWords returns the reserved words in sorted order.
func ReservedWords() []string {
	out := append([]string(nil), reservedWords...)
	out = append(out, cmdWords...)
	sort.Strings(out)
	return out
}

// rasterOps maps the optional trailing logical operation of graphic
// statements to its opcode.
var rasterOps = map[string]string{
	"PSET":    "0",
	"AND":     "1",
	"OR":      "2",
	"XOR":     "3",
	"PRESET":  "4",
	"TPSET":   "8",
	"TAND":    "9",
	"TOR":     "10",
	"TXOR":    "11",
	"TPRESET": "12",
}

func rasterOpcode(l *Lexeme) (string, bool) {
	if l == nil || (l.Type != LexemeKeyword && l.Type != LexemeOperator) {
		return "", false
	}
	code, ok := rasterOps[l.Name]
	return code, ok
}
