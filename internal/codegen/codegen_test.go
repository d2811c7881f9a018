package codegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmc/cmmc/internal/asmtree"
	"github.com/cmmc/cmmc/internal/lex"
	"github.com/cmmc/cmmc/internal/parse"
	"github.com/cmmc/cmmc/internal/tackygen"
)

func codegenSrc(t *testing.T, src string) *asmtree.Program {
	t.Helper()

	ctx := context.Background()

	toks, err := lex.Lex(ctx, src)
	require.NoError(t, err)

	prog, err := parse.Parse(ctx, toks)
	require.NoError(t, err)

	tp, err := tackygen.Lower(ctx, prog)
	require.NoError(t, err)

	asm, err := Codegen(ctx, tp)
	require.NoError(t, err)

	return asm
}

func TestNoPseudoOperandsSurvive(t *testing.T) {
	asm := codegenSrc(t, "int main(void) { return 1 + 2 * 3 - (4 / 2) % 3 == 1 && 0 || 1; }")

	for _, instr := range asm.Function.Instructions {
		for _, op := range operandsOf(instr) {
			_, isPseudo := op.(asmtree.Pseudo)
			assert.False(t, isPseudo, "pseudo operand leaked into final asm: %#v", instr)
		}
	}
}

func TestFirstInstructionIsAllocateStack(t *testing.T) {
	asm := codegenSrc(t, "int main(void) { return 2; }")

	require.NotEmpty(t, asm.Function.Instructions)
	as, ok := asm.Function.Instructions[0].(asmtree.AllocateStack)
	require.True(t, ok)
	assert.GreaterOrEqual(t, as.Bytes, 0)
}

func TestNoMemoryToMemoryMovesOrArith(t *testing.T) {
	asm := codegenSrc(t, "int main(void) { return (1 + 2) * (3 - 4) / (5 % 6); }")

	for _, instr := range asm.Function.Instructions {
		switch x := instr.(type) {
		case asmtree.Mov:
			assert.False(t, isStack(x.Src) && isStack(x.Dst))
		case asmtree.Binary:
			if x.Op == asmtree.BAdd || x.Op == asmtree.BSub {
				assert.False(t, isStack(x.Src) && isStack(x.Dst))
			}
			if x.Op == asmtree.BMult {
				assert.False(t, isStack(x.Dst))
			}
		case asmtree.Cmp:
			assert.False(t, isStack(x.Left) && isStack(x.Right))
			assert.False(t, isImm(x.Right))
		case asmtree.Idiv:
			assert.False(t, isImm(x.Operand))
		}
	}
}

func TestStackOffsetsAreDenseAndUnique(t *testing.T) {
	asm := codegenSrc(t, "int main(void) { return -(-(-5)); }")

	seen := map[int]bool{}

	for _, instr := range asm.Function.Instructions {
		for _, op := range operandsOf(instr) {
			if s, ok := op.(asmtree.Stack); ok {
				seen[int(s)] = true
			}
		}
	}

	require.Len(t, seen, 3)
	for _, off := range []int{-4, -8, -12} {
		assert.True(t, seen[off], "missing offset %d", off)
	}
}

func operandsOf(instr asmtree.Instr) []asmtree.Operand {
	switch x := instr.(type) {
	case asmtree.Mov:
		return []asmtree.Operand{x.Src, x.Dst}
	case asmtree.Unary:
		return []asmtree.Operand{x.Operand}
	case asmtree.Binary:
		return []asmtree.Operand{x.Src, x.Dst}
	case asmtree.Cmp:
		return []asmtree.Operand{x.Left, x.Right}
	case asmtree.Idiv:
		return []asmtree.Operand{x.Operand}
	case asmtree.SetCC:
		return []asmtree.Operand{x.Operand}
	default:
		return nil
	}
}
