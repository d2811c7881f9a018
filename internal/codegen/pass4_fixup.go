package codegen

import (
	"context"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/cmmc/cmmc/internal/asmtree"
)

// legalize implements pass 4 of spec.md §4.4: rewrite each
// instruction so no illegal operand combination reaches the emitter.
func legalize(ctx context.Context, in []asmtree.Instr) []asmtree.Instr {
	tr := tlog.SpanFromContext(ctx)

	var out []asmtree.Instr

	rewrite := func(note string, instrs ...asmtree.Instr) {
		if tr.If("dump_fixup") {
			tr.Printw("legalized", "note", note, "from", loc.Caller(2))
		}

		out = append(out, instrs...)
	}

	for _, instr := range in {
		switch x := instr.(type) {
		case asmtree.Mov:
			if isStack(x.Src) && isStack(x.Dst) {
				rewrite("mov stack,stack",
					asmtree.Mov{Src: x.Src, Dst: asmtree.Reg(asmtree.R10)},
					asmtree.Mov{Src: asmtree.Reg(asmtree.R10), Dst: x.Dst},
				)
				continue
			}

			out = append(out, x)

		case asmtree.Binary:
			switch x.Op {
			case asmtree.BAdd, asmtree.BSub:
				if isStack(x.Src) && isStack(x.Dst) {
					rewrite("binary stack,stack",
						asmtree.Mov{Src: x.Src, Dst: asmtree.Reg(asmtree.R10)},
						asmtree.Binary{Op: x.Op, Src: asmtree.Reg(asmtree.R10), Dst: x.Dst},
					)
					continue
				}

				out = append(out, x)

			case asmtree.BMult:
				if isStack(x.Dst) {
					// imul can never target memory, regardless of
					// what its source operand is.
					rewrite("imul stack dst",
						asmtree.Mov{Src: x.Dst, Dst: asmtree.Reg(asmtree.R11)},
						asmtree.Binary{Op: asmtree.BMult, Src: x.Src, Dst: asmtree.Reg(asmtree.R11)},
						asmtree.Mov{Src: asmtree.Reg(asmtree.R11), Dst: x.Dst},
					)
					continue
				}

				out = append(out, x)

			default:
				out = append(out, x)
			}

		case asmtree.Idiv:
			if isImm(x.Operand) {
				rewrite("idiv imm",
					asmtree.Mov{Src: x.Operand, Dst: asmtree.Reg(asmtree.R10)},
					asmtree.Idiv{Operand: asmtree.Reg(asmtree.R10)},
				)
				continue
			}

			out = append(out, x)

		case asmtree.Cmp:
			if isStack(x.Left) && isStack(x.Right) {
				rewrite("cmp stack,stack",
					asmtree.Mov{Src: x.Left, Dst: asmtree.Reg(asmtree.R10)},
					asmtree.Cmp{Left: asmtree.Reg(asmtree.R10), Right: x.Right},
				)
				continue
			}

			if isImm(x.Right) {
				rewrite("cmp imm rhs",
					asmtree.Mov{Src: x.Right, Dst: asmtree.Reg(asmtree.R11)},
					asmtree.Cmp{Left: x.Left, Right: asmtree.Reg(asmtree.R11)},
				)
				continue
			}

			out = append(out, x)

		default:
			// Cdq, AllocateStack, Jmp, JmpCC, SetCC, Label, Ret never
			// need fixing up.
			out = append(out, x)
		}
	}

	return out
}

func isStack(op asmtree.Operand) bool {
	_, ok := op.(asmtree.Stack)
	return ok
}

func isImm(op asmtree.Operand) bool {
	_, ok := op.(asmtree.Imm)
	return ok
}
