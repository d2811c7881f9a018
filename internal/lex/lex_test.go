package lex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmc/cmmc/internal/token"
)

func TestEmptyInput(t *testing.T) {
	toks, err := Lex(context.Background(), "   \n\t ")
	require.NoError(t, err)
	assert.Empty(t, toks)
}

func TestSimpleFunction(t *testing.T) {
	toks, err := Lex(context.Background(), "int main(void) { return 2; }")
	require.NoError(t, err)

	kinds := make([]token.Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}

	assert.Equal(t, []token.Kind{
		token.KwInt, token.Identifier, token.LParen, token.KwVoid, token.RParen,
		token.LBrace, token.KwReturn, token.Constant, token.Semicolon, token.RBrace,
	}, kinds)

	assert.Equal(t, int64(2), toks[7].Value)
}

func TestDoubleHyphenIsSingleToken(t *testing.T) {
	toks, err := Lex(context.Background(), "--x")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.DoubleHyphen, toks[0].Kind)
	assert.Equal(t, token.Identifier, toks[1].Kind)
}

func TestMultiCharOperatorsBeforePrefixes(t *testing.T) {
	toks, err := Lex(context.Background(), "&& || == != <= >=")
	require.NoError(t, err)

	want := []token.Kind{token.AmpAmp, token.PipePipe, token.EqEq, token.BangEq, token.LtEq, token.GtEq}
	require.Len(t, toks, len(want))

	for i, k := range want {
		assert.Equal(t, k, toks[i].Kind)
	}
}

func TestMaxInt32Lexes(t *testing.T) {
	toks, err := Lex(context.Background(), "2147483647")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, int64(2147483647), toks[0].Value)
}

func TestOverflowingIntegerIsInvalid(t *testing.T) {
	_, err := Lex(context.Background(), "2147483648")
	require.Error(t, err)

	var ile InvalidIntegerLiteralError
	require.ErrorAs(t, err, &ile)
	assert.Equal(t, "2147483648", ile.Text)
}

func TestDigitFollowedByIdentCharIsInvalid(t *testing.T) {
	_, err := Lex(context.Background(), "123abc")
	require.Error(t, err)

	var ile InvalidIntegerLiteralError
	require.ErrorAs(t, err, &ile)
}

func TestUnknownCharacter(t *testing.T) {
	_, err := Lex(context.Background(), "@")
	require.Error(t, err)

	var uce UnknownCharacterError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, byte('@'), uce.Char)
}
