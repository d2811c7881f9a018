// Package parse builds a SourceTree (internal/ast) from a token
// sequence: single-token-lookahead recursive descent with precedence
// climbing for binary expressions, grounded on
// slowlang-slow/src/compiler/front.State's own precedence-climbing
// parseSum/parseExprArg, generalized from the teacher's one operator
// (+) to the full C-- operator table.
package parse

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/cmmc/cmmc/internal/ast"
	"github.com/cmmc/cmmc/internal/token"
)

type (
	// UnexpectedEndOfInputError is returned when the token stream runs
	// out where at least one more token was required.
	UnexpectedEndOfInputError struct{}

	// UnexpectedTokenError is returned when the next token does not
	// match any of the expected kinds.
	UnexpectedTokenError struct {
		Expected []token.Kind
		Actual   token.Token
	}

	// UnexpectedTrailingTokensError is returned when tokens remain
	// after a complete Program has been parsed.
	UnexpectedTrailingTokensError struct {
		Remaining []token.Token
	}
)

func (UnexpectedEndOfInputError) Error() string { return "unexpected end of input" }

func (e UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token %s, expected one of %v", e.Actual, e.Expected)
}

func (e UnexpectedTrailingTokensError) Error() string {
	return fmt.Sprintf("unexpected trailing tokens: %d remaining", len(e.Remaining))
}

// precedence gives the binding power of each binary operator; tokens
// absent from the table are not binary operators at all (treated as
// precedence -inf, per spec.md §4.2).
var precedence = map[token.Kind]int{
	token.Star:     50,
	token.Slash:    50,
	token.Percent:  50,
	token.Plus:     45,
	token.Hyphen:   45,
	token.Lt:       35,
	token.Gt:       35,
	token.LtEq:     35,
	token.GtEq:     35,
	token.EqEq:     30,
	token.BangEq:   30,
	token.AmpAmp:   10,
	token.PipePipe: 5,
}

var binOps = map[token.Kind]ast.BinaryOp{
	token.Plus:     ast.Add,
	token.Hyphen:   ast.Sub,
	token.Star:     ast.Mul,
	token.Slash:    ast.Div,
	token.Percent:  ast.Rem,
	token.AmpAmp:   ast.And,
	token.PipePipe: ast.Or,
	token.EqEq:     ast.Eq,
	token.BangEq:   ast.Neq,
	token.Lt:       ast.Lt,
	token.Gt:       ast.Gt,
	token.LtEq:     ast.Le,
	token.GtEq:     ast.Ge,
}

var unaryOps = map[token.Kind]ast.UnaryOp{
	token.Hyphen: ast.Negate,
	token.Tilde:  ast.Complement,
	token.Bang:   ast.Not,
}

type parser struct {
	toks []token.Token
	pos  int
}

// Parse builds a Program from a complete token sequence.
func Parse(ctx context.Context, toks []token.Token) (prog *ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse: program", "tokens", len(toks))
	defer tr.Finish("err", &err)

	p := &parser{toks: toks}

	fn, err := p.parseFunction(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse function")
	}

	if p.pos != len(p.toks) {
		return nil, UnexpectedTrailingTokensError{Remaining: p.toks[p.pos:]}
	}

	return &ast.Program{Function: fn}, nil
}

func (p *parser) peek() (token.Token, bool) {
	if p.pos >= len(p.toks) {
		return token.Token{}, false
	}

	return p.toks[p.pos], true
}

func (p *parser) expect(kinds ...token.Kind) (token.Token, error) {
	t, ok := p.peek()
	if !ok {
		return token.Token{}, UnexpectedEndOfInputError{}
	}

	for _, k := range kinds {
		if t.Kind == k {
			p.pos++
			return t, nil
		}
	}

	return token.Token{}, UnexpectedTokenError{Expected: kinds, Actual: t}
}

func (p *parser) parseFunction(ctx context.Context) (*ast.Function, error) {
	if _, err := p.expect(token.KwInt); err != nil {
		return nil, err
	}

	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, errors.Wrap(err, "function name")
	}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.KwVoid); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	body, err := p.parseReturn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "function body")
	}

	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}

	return &ast.Function{Identifier: name.Text, Body: body}, nil
}

func (p *parser) parseReturn(ctx context.Context) (*ast.Return, error) {
	kw, err := p.expect(token.KwReturn)
	if err != nil {
		return nil, err
	}

	expr, err := p.parseExpression(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, "return expression")
	}

	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	return &ast.Return{Base: ast.Base{Pos: kw.Pos}, Expression: expr}, nil
}

// parseExpression implements the precedence-climbing loop of
// spec.md §4.2.
func (p *parser) parseExpression(ctx context.Context, minPrec int) (ast.Expression, error) {
	startPos := 0
	if t, ok := p.peek(); ok {
		startPos = t.Pos
	}

	left, err := p.parseFactor(ctx)
	if err != nil {
		return nil, err
	}

	for {
		t, ok := p.peek()
		if !ok {
			break
		}

		prec, isBinOp := precedence[t.Kind]
		if !isBinOp || prec < minPrec {
			break
		}

		p.pos++

		right, err := p.parseExpression(ctx, prec+1)
		if err != nil {
			return nil, errors.Wrap(err, "right operand of %s", t.Kind)
		}

		left = &ast.Binary{
			Base:  ast.Base{Pos: startPos},
			Op:    binOps[t.Kind],
			Left:  left,
			Right: right,
		}
	}

	return left, nil
}

func (p *parser) parseFactor(ctx context.Context) (ast.Expression, error) {
	t, ok := p.peek()
	if !ok {
		return nil, UnexpectedEndOfInputError{}
	}

	if op, isUnary := unaryOps[t.Kind]; isUnary {
		p.pos++

		inner, err := p.parseFactor(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "operand of %s", t.Kind)
		}

		return &ast.Unary{Base: ast.Base{Pos: t.Pos}, Op: op, Inner: inner}, nil
	}

	switch t.Kind {
	case token.Constant:
		p.pos++
		return &ast.Int{Base: ast.Base{Pos: t.Pos, End: t.Pos + len(t.Text)}, Value: t.Value}, nil
	case token.LParen:
		p.pos++

		inner, err := p.parseExpression(ctx, 0)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}

		return inner, nil
	default:
		return nil, UnexpectedTokenError{
			Expected: []token.Kind{token.Constant, token.LParen, token.Hyphen, token.Tilde, token.Bang},
			Actual:   t,
		}
	}
}
