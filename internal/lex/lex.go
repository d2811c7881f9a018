// Package lex turns C-- source text into a token sequence. The
// dispatch is a longest-match-wins scan over leading characters,
// grounded on slowlang-slow/src/compiler/front.State's hand-written
// character-class scanner (front.go's skipSpaces/skipIdent/next):
// no regexp, no external scanner, a plain byte-range switch.
package lex

import (
	"context"
	"fmt"
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/cmmc/cmmc/internal/token"
)

type (
	// UnknownCharacterError is returned when the scanner encounters a
	// byte that starts no valid token.
	UnknownCharacterError struct {
		Char       byte
		ByteOffset int
	}

	// InvalidIntegerLiteralError is returned for an integer literal
	// that does not fit in a signed 32-bit value, or that is
	// immediately followed by an identifier character.
	InvalidIntegerLiteralError struct {
		Text       string
		ByteOffset int
	}
)

func (e UnknownCharacterError) Error() string {
	return fmt.Sprintf("unknown character %q at byte %d", e.Char, e.ByteOffset)
}

func (e InvalidIntegerLiteralError) Error() string {
	return fmt.Sprintf("invalid integer literal %q at byte %d", e.Text, e.ByteOffset)
}

// Lex tokenizes src. Empty input (after whitespace) yields an empty,
// non-nil token slice.
func Lex(ctx context.Context, src string) (toks []token.Token, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lex: tokenize", "len", len(src))
	defer tr.Finish("err", &err)

	toks = []token.Token{}
	b := src

	i := 0
	for i < len(b) {
		i = skipSpaces(b, i)
		if i == len(b) {
			break
		}

		t, next, err := nextToken(b, i)
		if err != nil {
			return nil, errors.Wrap(err, "at byte %d", i)
		}

		if tr.If("dump_tokens") {
			tr.Printw("token", "kind", t.Kind, "text", t.Text, "pos", t.Pos)
		}

		toks = append(toks, t)
		i = next
	}

	return toks, nil
}

func skipSpaces(b string, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}

		break
	}

	return i
}

// twoCharOps lists multi-character punctuation that must be attempted
// before their single-character prefixes.
var twoCharOps = []struct {
	text string
	kind token.Kind
}{
	{"--", token.DoubleHyphen},
	{"&&", token.AmpAmp},
	{"||", token.PipePipe},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
}

var oneCharOps = map[byte]token.Kind{
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	';': token.Semicolon,
	'~': token.Tilde,
	'-': token.Hyphen,
	'+': token.Plus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'!': token.Bang,
	'<': token.Lt,
	'>': token.Gt,
}

func nextToken(b string, i int) (token.Token, int, error) {
	st := i

	for _, op := range twoCharOps {
		if hasPrefixAt(b, i, op.text) {
			return token.Token{Kind: op.kind, Text: op.text, Pos: st}, i + len(op.text), nil
		}
	}

	c := b[i]

	if isIdentStart(c) {
		e := i + 1
		for e < len(b) && isIdentCont(b[e]) {
			e++
		}

		word := b[i:e]

		if kw, ok := token.Keyword(word); ok {
			return token.Token{Kind: kw, Text: word, Pos: st}, e, nil
		}

		return token.Token{Kind: token.Identifier, Text: word, Pos: st}, e, nil
	}

	if isDigit(c) {
		e := i + 1
		for e < len(b) && isDigit(b[e]) {
			e++
		}

		// A digit run immediately followed by an identifier
		// character (e.g. "123abc") is a lex error, not two
		// tokens.
		if e < len(b) && isIdentStart(b[e]) {
			for e < len(b) && isIdentCont(b[e]) {
				e++
			}

			return token.Token{}, e, InvalidIntegerLiteralError{Text: b[i:e], ByteOffset: st}
		}

		text := b[i:e]

		v, ok := parseI32(text)
		if !ok {
			return token.Token{}, e, InvalidIntegerLiteralError{Text: text, ByteOffset: st}
		}

		return token.Token{Kind: token.Constant, Text: text, Value: v, Pos: st}, e, nil
	}

	if op, ok := oneCharOps[c]; ok {
		return token.Token{Kind: op, Text: b[i : i+1], Pos: st}, i + 1, nil
	}

	return token.Token{}, i, UnknownCharacterError{Char: c, ByteOffset: st}
}

func hasPrefixAt(b string, i int, prefix string) bool {
	if i+len(prefix) > len(b) {
		return false
	}

	return b[i:i+len(prefix)] == prefix
}

func isIdentStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// parseI32 parses a non-negative decimal literal, rejecting values
// that do not fit in a signed 32-bit integer (spec.md §9, open
// question: reject rather than wrap).
func parseI32(text string) (int64, bool) {
	var v int64

	for i := 0; i < len(text); i++ {
		v = v*10 + int64(text[i]-'0')

		if v > math.MaxInt32 {
			return 0, false
		}
	}

	return v, true
}
