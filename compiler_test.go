package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileOk(t *testing.T, src string) string {
	t.Helper()

	res, err := Compile(context.Background(), src, nil, DefaultConfig())
	require.NoError(t, err)

	return res.Text
}

func TestS1ReturnConstant(t *testing.T) {
	out := compileOk(t, "int main(void) { return 2; }")

	assert.Contains(t, out, "movl\t$2, %eax")
	assert.Contains(t, out, "subq\t$0, %rsp")
}

func TestS2NestedNegation(t *testing.T) {
	out := compileOk(t, "int main(void) { return -(-2); }")

	assert.Contains(t, out, "subq\t$8, %rsp")
	assert.Contains(t, out, "negl\t-4(%rbp)")
	assert.Contains(t, out, "negl\t-8(%rbp)")
}

func TestS3Precedence(t *testing.T) {
	out := compileOk(t, "int main(void) { return 1 + 2 * 3; }")

	assert.Contains(t, out, "imull")
}

func TestS4Division(t *testing.T) {
	out := compileOk(t, "int main(void) { return 10 / 3; }")

	assert.Contains(t, out, "idivl\t%r10d")
}

func TestS5ShortCircuitAnd(t *testing.T) {
	out := compileOk(t, "int main(void) { return 1 && 0; }")

	assert.Contains(t, out, "Land_false0:")
	assert.Contains(t, out, "Land_end1:")
}

func TestS6Equality(t *testing.T) {
	out := compileOk(t, "int main(void) { return 2 == 2; }")

	assert.Contains(t, out, "sete\t")
}

func TestDeterminism(t *testing.T) {
	const src = "int main(void) { return (1 + 2) * 3 >= 4 && 5 != 6; }"

	a := compileOk(t, src)
	b := compileOk(t, src)

	assert.Equal(t, a, b)
}

func TestStopAtEachStage(t *testing.T) {
	const src = "int main(void) { return 2; }"

	for _, stage := range []Stage{StageLex, StageParse, StageTacky, StageCodegen} {
		stage := stage

		res, err := Compile(context.Background(), src, &stage, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, stage, res.Stage)
		assert.Empty(t, res.Text)
	}
}

func TestLexErrorPropagates(t *testing.T) {
	_, err := Compile(context.Background(), "int main(void) { return @; }", nil, DefaultConfig())
	require.Error(t, err)
}

func TestParseErrorPropagates(t *testing.T) {
	_, err := Compile(context.Background(), "int main(void) { return 2; };", nil, DefaultConfig())
	require.Error(t, err)
}
