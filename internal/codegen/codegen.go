// Package codegen lowers TACKY (internal/tacky) to the final
// AsmProgram (internal/asmtree), running the four sequential passes
// of spec.md §4.4 over one function. The orchestration mirrors
// slowlang-slow/src/compiler/back.Compiler.compileFunc's own
// multi-pass shape (life-range pass -> group-merge pass -> emission
// pass, run as sequential closures over one function).
package codegen

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/cmmc/cmmc/internal/asmtree"
	"github.com/cmmc/cmmc/internal/tacky"
)

// UnsupportedConditionCodeError is defensive: it is unreachable for
// any tacky.BinaryOp produced by internal/tackygen.
type UnsupportedConditionCodeError struct {
	Op tacky.BinaryOp
}

func (e UnsupportedConditionCodeError) Error() string {
	return fmt.Sprintf("unsupported condition code conversion: %v", int(e.Op))
}

// Codegen runs passes 1-4 over tp and returns the final, legal
// AsmProgram.
func Codegen(ctx context.Context, tp *tacky.Program) (prog *asmtree.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "codegen: compile", "func", tp.Function.Identifier)
	defer tr.Finish("err", &err)

	instrs, err := convertInstructions(tp.Function.Instructions)
	if err != nil {
		return nil, errors.Wrap(err, "pass1 instruction conversion")
	}

	instrs, bytes := replacePseudoRegisters(ctx, instrs)

	instrs = prependStackAllocation(instrs, bytes)

	instrs = legalize(ctx, instrs)

	return &asmtree.Program{
		Function: &asmtree.Function{
			Identifier:   tp.Function.Identifier,
			Instructions: instrs,
		},
	}, nil
}
