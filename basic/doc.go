// Package basic implements the front end of an MSX BASIC compiler. It turns
// numbered source lines into a tagged action tree for a code generator:
//   - LexerLine tokenizes one physical line with a character state machine,
//     greedy keyword matching and MSX literal rules (&H/&O/&B, type suffixes).
//   - Parser splits each line into phrases on top-level colons, routes each
//     phrase to an implicit LET or to a keyword grammar, and evaluates
//     expressions with a shunting-yard engine.
//   - Every numbered line becomes a TagNode holding one ActionNode tree per
//     phrase. FILE and TEXT directives become "DIRECTIVE" tags and INCLUDE
//     re-enters the parser for another file.
//
// Identifiers are coalesced so that every use of a variable shares one
// *Lexeme, and identifiers without a type suffix take their subtype from the
// DEFINT/DEFSTR/DEFSNG/DEFDBL table. A parse stops at the first error, which
// is kept as the parser's single last error.
package basic
