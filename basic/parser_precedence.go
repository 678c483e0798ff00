package basic

const (
	lowestPrec = iota
	precImp
	precEqv
	precXor
	precOr
	precAnd
	precNot
	precCompare
	precSum
	precProduct
	precPower
)

// precUnary is the binding of prefix + and -: tighter than addition so
// "-A*B" is "(-A)*B", looser than "^" so "-2^2" is "-(2^2)".
const precUnary = precProduct

var precedences = map[string]int{
	"IMP": precImp,
	"EQV": precEqv,
	"XOR": precXor,
	"OR":  precOr,
	"AND": precAnd,
	"NOT": precNot,
	"=":   precCompare,
	"<>":  precCompare,
	"<":   precCompare,
	">":   precCompare,
	"<=":  precCompare,
	">=":  precCompare,
	"+":   precSum,
	"-":   precSum,
	"*":   precProduct,
	"/":   precProduct,
	"\\":  precProduct,
	"MOD": precProduct,
	"SHR": precProduct,
	"SHL": precProduct,
	"^":   precPower,
}

// comparisonPairs merges an operator already on the stack with the one that
// follows it into a two-character comparison. MSX also accepts the
// reversed spellings.
var comparisonPairs = map[[2]string]string{
	{"<", "="}: "<=",
	{"<", ">"}: "<>",
	{">", "="}: ">=",
	{"=", "<"}: "<=",
	{"=", ">"}: ">=",
	{">", "<"}: "<>",
}

func binaryPrecedence(l *Lexeme) (int, bool) {
	if l == nil || l.Type != LexemeOperator || l.Value == "NOT" {
		return 0, false
	}
	prec, ok := precedences[l.Value]
	return prec, ok
}

func isPrefixOperator(l *Lexeme) bool {
	return l.IsOperator("+") || l.IsOperator("-") || l.IsOperator("NOT")
}

func prefixPrecedence(l *Lexeme) int {
	if l.Value == "NOT" {
		return precNot
	}
	return precUnary
}

// isOperand reports whether l can start an operand: a literal, a variable,
// a built-in function or one of the keywords usable as a value.
func isOperand(l *Lexeme) bool {
	switch l.Type {
	case LexemeLiteral:
		return l.Subtype != SubtypeUnknown
	case LexemeIdentifier:
		return l.Value != "?" && l.Value != "_"
	case LexemeKeyword:
		return l.Subtype == SubtypeFunction || operandWords[l.Value]
	}
	return false
}
