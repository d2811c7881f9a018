package codegen

import (
	"tlog.app/go/errors"

	"github.com/cmmc/cmmc/internal/asmtree"
	"github.com/cmmc/cmmc/internal/tacky"
)

// convertInstructions implements pass 1 of spec.md §4.4: map each
// TACKY instruction to one or more assembly instructions that may
// still reference Pseudo operands.
func convertInstructions(in []tacky.Instr) ([]asmtree.Instr, error) {
	var out []asmtree.Instr

	for _, ti := range in {
		switch ti := ti.(type) {
		case tacky.Return:
			out = append(out,
				asmtree.Mov{Src: lowerValue(ti.Value), Dst: asmtree.Reg(asmtree.AX)},
				asmtree.Ret{},
			)

		case tacky.Unary:
			switch ti.Op {
			case tacky.Not:
				dst := lowerValue(ti.Dst)
				out = append(out,
					asmtree.Cmp{Left: asmtree.Imm(0), Right: lowerValue(ti.Src)},
					asmtree.Mov{Src: asmtree.Imm(0), Dst: dst},
					asmtree.SetCC{Cond: asmtree.CE, Operand: dst},
				)
			case tacky.Negate:
				dst := lowerValue(ti.Dst)
				out = append(out,
					asmtree.Mov{Src: lowerValue(ti.Src), Dst: dst},
					asmtree.Unary{Op: asmtree.Neg, Operand: dst},
				)
			case tacky.Complement:
				dst := lowerValue(ti.Dst)
				out = append(out,
					asmtree.Mov{Src: lowerValue(ti.Src), Dst: dst},
					asmtree.Unary{Op: asmtree.Not, Operand: dst},
				)
			default:
				return nil, errors.New("unsupported unary op: %v", int(ti.Op))
			}

		case tacky.Binary:
			dst := lowerValue(ti.Dst)
			s1 := lowerValue(ti.Src1)
			s2 := lowerValue(ti.Src2)

			switch ti.Op {
			case tacky.Add:
				out = append(out, asmtree.Mov{Src: s1, Dst: dst}, asmtree.Binary{Op: asmtree.BAdd, Src: s2, Dst: dst})
			case tacky.Sub:
				out = append(out, asmtree.Mov{Src: s1, Dst: dst}, asmtree.Binary{Op: asmtree.BSub, Src: s2, Dst: dst})
			case tacky.Mul:
				out = append(out, asmtree.Mov{Src: s1, Dst: dst}, asmtree.Binary{Op: asmtree.BMult, Src: s2, Dst: dst})
			case tacky.Div:
				out = append(out,
					asmtree.Mov{Src: s1, Dst: asmtree.Reg(asmtree.AX)},
					asmtree.Cdq{},
					asmtree.Idiv{Operand: s2},
					asmtree.Mov{Src: asmtree.Reg(asmtree.AX), Dst: dst},
				)
			case tacky.Rem:
				out = append(out,
					asmtree.Mov{Src: s1, Dst: asmtree.Reg(asmtree.AX)},
					asmtree.Cdq{},
					asmtree.Idiv{Operand: s2},
					asmtree.Mov{Src: asmtree.Reg(asmtree.DX), Dst: dst},
				)
			case tacky.Eq, tacky.Neq, tacky.Lt, tacky.Gt, tacky.Le, tacky.Ge:
				cc, ok := condCodeFor(ti.Op)
				if !ok {
					return nil, UnsupportedConditionCodeError{Op: ti.Op}
				}

				// AT&T "cmp a, b" compares b against a; the second
				// TACKY source goes on the left so the chosen
				// condition code reads correctly (spec.md §4.4 note).
				out = append(out,
					asmtree.Cmp{Left: s2, Right: s1},
					asmtree.Mov{Src: asmtree.Imm(0), Dst: dst},
					asmtree.SetCC{Cond: cc, Operand: dst},
				)
			default:
				return nil, errors.New("unsupported binary op: %v", int(ti.Op))
			}

		case tacky.Copy:
			out = append(out, asmtree.Mov{Src: lowerValue(ti.Src), Dst: lowerValue(ti.Dst)})

		case tacky.Jump:
			out = append(out, asmtree.Jmp{Target: ti.Target})

		case tacky.JumpIfZero:
			out = append(out,
				asmtree.Cmp{Left: asmtree.Imm(0), Right: lowerValue(ti.Cond)},
				asmtree.JmpCC{Cond: asmtree.CE, Target: ti.Target},
			)

		case tacky.JumpIfNotZero:
			out = append(out,
				asmtree.Cmp{Left: asmtree.Imm(0), Right: lowerValue(ti.Cond)},
				asmtree.JmpCC{Cond: asmtree.CNE, Target: ti.Target},
			)

		case tacky.Label:
			out = append(out, asmtree.Label{Name: ti.Name})

		default:
			return nil, errors.New("unsupported tacky instruction: %T", ti)
		}
	}

	return out, nil
}

func lowerValue(v tacky.Value) asmtree.Operand {
	switch v := v.(type) {
	case tacky.Constant:
		return asmtree.Imm(v)
	case tacky.Variable:
		return asmtree.Pseudo(v)
	default:
		panic(errors.New("unsupported tacky value: %T", v))
	}
}

func condCodeFor(op tacky.BinaryOp) (asmtree.CondCode, bool) {
	switch op {
	case tacky.Eq:
		return asmtree.CE, true
	case tacky.Neq:
		return asmtree.CNE, true
	case tacky.Lt:
		return asmtree.CL, true
	case tacky.Gt:
		return asmtree.CG, true
	case tacky.Le:
		return asmtree.CLE, true
	case tacky.Ge:
		return asmtree.CGE, true
	default:
		return 0, false
	}
}
