// Package token defines the tagged alphabet produced by the lexer and
// consumed by the parser.
package token

import "fmt"

// Kind identifies the lexical class of a Token. Kind is the projection
// used for equality checks in error reporting (spec: "each token
// carries a kind projection").
type Kind int

const (
	Invalid Kind = iota

	Identifier
	Constant

	KwInt
	KwVoid
	KwReturn

	LParen
	RParen
	LBrace
	RBrace
	Semicolon

	Tilde
	Hyphen
	DoubleHyphen
	Plus
	Star
	Slash
	Percent
	Bang

	AmpAmp
	PipePipe
	EqEq
	BangEq
	Lt
	Gt
	LtEq
	GtEq
)

var names = map[Kind]string{
	Invalid:      "invalid",
	Identifier:   "identifier",
	Constant:     "constant",
	KwInt:        "'int'",
	KwVoid:       "'void'",
	KwReturn:     "'return'",
	LParen:       "'('",
	RParen:       "')'",
	LBrace:       "'{'",
	RBrace:       "'}'",
	Semicolon:    "';'",
	Tilde:        "'~'",
	Hyphen:       "'-'",
	DoubleHyphen: "'--'",
	Plus:         "'+'",
	Star:         "'*'",
	Slash:        "'/'",
	Percent:      "'%'",
	Bang:         "'!'",
	AmpAmp:       "'&&'",
	PipePipe:     "'||'",
	EqEq:         "'=='",
	BangEq:       "'!='",
	Lt:           "'<'",
	Gt:           "'>'",
	LtEq:         "'<='",
	GtEq:         "'>='",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps the exact-match word forms to their keyword Kind. All
// other identifier-shaped words lex as Identifier.
var keywords = map[string]Kind{
	"int":    KwInt,
	"void":   KwVoid,
	"return": KwReturn,
}

// Keyword reports the Kind for a reserved word, or (Invalid, false) if
// word is an ordinary identifier.
func Keyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}

// Token is one lexeme: a Kind plus the source text it was matched
// from, and (for Constant) its parsed numeric value.
type Token struct {
	Kind  Kind
	Text  string
	Value int64 // valid when Kind == Constant
	Pos   int   // byte offset of the first byte of Text
}

func (t Token) String() string {
	if t.Kind == Invalid {
		return "<invalid>"
	}

	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
