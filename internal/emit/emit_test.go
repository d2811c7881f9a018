package emit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmc/cmmc/internal/asmtree"
	"github.com/cmmc/cmmc/internal/codegen"
	"github.com/cmmc/cmmc/internal/lex"
	"github.com/cmmc/cmmc/internal/parse"
	"github.com/cmmc/cmmc/internal/tackygen"
)

func compileToAsm(t *testing.T, src string) string {
	t.Helper()

	ctx := context.Background()

	toks, err := lex.Lex(ctx, src)
	require.NoError(t, err)

	prog, err := parse.Parse(ctx, toks)
	require.NoError(t, err)

	tp, err := tackygen.Lower(ctx, prog)
	require.NoError(t, err)

	asm, err := codegen.Codegen(ctx, tp)
	require.NoError(t, err)

	out, err := Emit(asm, DefaultConfig())
	require.NoError(t, err)

	return out
}

func TestS1ReturnConstant(t *testing.T) {
	out := compileToAsm(t, "int main(void) { return 2; }")

	assert.Contains(t, out, "\t.globl _main\n_main:\n")
	assert.Contains(t, out, "movl\t$2, %eax")
	assert.Contains(t, out, "subq\t$0, %rsp")
	assert.Contains(t, out, "\tret\n")
}

func TestS2NestedNegation(t *testing.T) {
	out := compileToAsm(t, "int main(void) { return -(-2); }")

	assert.Contains(t, out, "subq\t$8, %rsp")
	assert.Contains(t, out, "movl\t$2, -4(%rbp)")
	assert.Contains(t, out, "negl\t-4(%rbp)")
	assert.Contains(t, out, "negl\t-8(%rbp)")
	assert.Contains(t, out, "movl\t-8(%rbp), %eax")
}

func TestS3PrecedenceAndLegalizedMultiply(t *testing.T) {
	out := compileToAsm(t, "int main(void) { return 1 + 2 * 3; }")

	assert.Contains(t, out, "subq\t$8, %rsp")
	assert.Contains(t, out, "imull")
	assert.Contains(t, out, "%r11d")
}

func TestS4Division(t *testing.T) {
	out := compileToAsm(t, "int main(void) { return 10 / 3; }")

	assert.Contains(t, out, "movl\t$10, %eax")
	assert.Contains(t, out, "\tcdq\n")
	assert.Contains(t, out, "movl\t$3, %r10d")
	assert.Contains(t, out, "idivl\t%r10d")
	assert.Contains(t, out, "movl\t%eax,")
}

func TestS5ShortCircuitAnd(t *testing.T) {
	out := compileToAsm(t, "int main(void) { return 1 && 0; }")

	assert.Contains(t, out, "cmpl\t$0,")
	assert.Contains(t, out, "je\tLand_false0")
	assert.Contains(t, out, "movl\t$1,")
	assert.Contains(t, out, "jmp\tLand_end1")
	assert.Contains(t, out, "Land_false0:")
	assert.Contains(t, out, "movl\t$0,")
	assert.Contains(t, out, "Land_end1:")
}

func TestS6EqualityWithImmediateLegalizedViaR11(t *testing.T) {
	out := compileToAsm(t, "int main(void) { return 2 == 2; }")

	assert.Contains(t, out, "%r11d")
	assert.Contains(t, out, "sete\t")
	assert.True(t, strings.Contains(out, "%al") || strings.Contains(out, "-"))
}

func TestLinuxSymbolPrefixIsOmittable(t *testing.T) {
	ctx := context.Background()

	toks, err := lex.Lex(ctx, "int main(void) { return 0; }")
	require.NoError(t, err)

	prog, err := parse.Parse(ctx, toks)
	require.NoError(t, err)

	tp, err := tackygen.Lower(ctx, prog)
	require.NoError(t, err)

	asm, err := codegen.Codegen(ctx, tp)
	require.NoError(t, err)

	out, err := Emit(asm, Config{SymbolPrefix: ""})
	require.NoError(t, err)

	assert.Contains(t, out, ".globl main\nmain:\n")
}

func TestPseudoOperandIsFatal(t *testing.T) {
	prog := &asmtree.Program{
		Function: &asmtree.Function{
			Identifier: "main",
			Instructions: []asmtree.Instr{
				asmtree.Mov{Src: asmtree.Imm(1), Dst: asmtree.Pseudo("tmp.0")},
				asmtree.Ret{},
			},
		},
	}

	_, err := Emit(prog, DefaultConfig())
	require.Error(t, err)
}
