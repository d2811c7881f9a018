package codegen

import (
	"context"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/cmmc/cmmc/internal/asmtree"
)

// replacePseudoRegisters implements pass 2 of spec.md §4.4: every
// Pseudo operand is replaced by a Stack slot, allocated on first use
// with a running offset that starts at 0 and decrements by 4 per
// distinct name. It returns the rewritten instructions and the total
// stack bytes required (|next_offset|).
func replacePseudoRegisters(ctx context.Context, in []asmtree.Instr) ([]asmtree.Instr, int) {
	offsets := map[asmtree.Pseudo]asmtree.Stack{}
	next := 0

	slot := func(name asmtree.Pseudo) asmtree.Stack {
		if s, ok := offsets[name]; ok {
			return s
		}

		next -= 4
		s := asmtree.Stack(next)
		offsets[name] = s

		tlog.V("pseudo_alloc").Printw("pseudo slot allocated", "name", name, "offset", int(s), "from", loc.Caller(1))

		return s
	}

	replace := func(op asmtree.Operand) asmtree.Operand {
		if p, ok := op.(asmtree.Pseudo); ok {
			return slot(p)
		}

		return op
	}

	out := make([]asmtree.Instr, len(in))

	for i, instr := range in {
		switch x := instr.(type) {
		case asmtree.Mov:
			out[i] = asmtree.Mov{Src: replace(x.Src), Dst: replace(x.Dst)}
		case asmtree.Unary:
			out[i] = asmtree.Unary{Op: x.Op, Operand: replace(x.Operand)}
		case asmtree.Binary:
			out[i] = asmtree.Binary{Op: x.Op, Src: replace(x.Src), Dst: replace(x.Dst)}
		case asmtree.Cmp:
			out[i] = asmtree.Cmp{Left: replace(x.Left), Right: replace(x.Right)}
		case asmtree.Idiv:
			out[i] = asmtree.Idiv{Operand: replace(x.Operand)}
		case asmtree.SetCC:
			out[i] = asmtree.SetCC{Cond: x.Cond, Operand: replace(x.Operand)}
		default:
			// Cdq, AllocateStack, Jmp, JmpCC, Label, Ret carry no
			// operand of interest and pass through unchanged.
			out[i] = instr
		}
	}

	return out, -next
}
