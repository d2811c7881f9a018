// Package emit serializes an AsmProgram (internal/asmtree) to
// AT&T-syntax assembly text, built by appending into a growing []byte
// with hfmt.Appendf -- the same idiom
// slowlang-slow/src/compiler/front.State.compileFunc and
// back.Compiler.compileFunc use, never strings.Builder.
package emit

import (
	"fmt"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/cmmc/cmmc/internal/asmtree"
)

// Config controls emitter conventions that vary by target OS.
type Config struct {
	// SymbolPrefix is prepended to every global symbol: "_" for
	// macOS/Mach-O, "" for Linux/ELF.
	SymbolPrefix string
}

// DefaultConfig targets macOS (leading-underscore symbols).
func DefaultConfig() Config {
	return Config{SymbolPrefix: "_"}
}

// pseudoEncounteredError marks the programmer-invariant violation of
// emitting a Pseudo operand: it indicates a bug in codegen, not a
// user-facing compile error (spec.md §7).
type pseudoEncounteredError struct {
	Name asmtree.Pseudo
}

func (e pseudoEncounteredError) Error() string {
	return fmt.Sprintf("internal error: pseudo-register %q reached the emitter", string(e.Name))
}

// Emit renders prog as AT&T assembly text.
func Emit(prog *asmtree.Program, cfg Config) (_ string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(pseudoEncounteredError); ok {
				err = errors.Wrap(pe, "emit")
				return
			}

			panic(r)
		}
	}()

	var b []byte

	b, err = emitFunction(b, cfg, prog.Function)
	if err != nil {
		return "", errors.Wrap(err, "func %s", prog.Function.Identifier)
	}

	return string(b), nil
}

func emitFunction(b []byte, cfg Config, fn *asmtree.Function) ([]byte, error) {
	name := cfg.SymbolPrefix + fn.Identifier

	b = hfmt.Appendf(b, "\t.globl %s\n%s:\n", name, name)
	b = append(b, "\tpushq %rbp\n\tmovq %rsp, %rbp\n"...)

	for _, instr := range fn.Instructions {
		b = emitInstr(b, instr)
	}

	return b, nil
}

func emitInstr(b []byte, instr asmtree.Instr) []byte {
	switch x := instr.(type) {
	case asmtree.Mov:
		return hfmt.Appendf(b, "\tmovl\t%s, %s\n", operand(x.Src, false), operand(x.Dst, false))
	case asmtree.Unary:
		return hfmt.Appendf(b, "\t%s\t%s\n", unaryMnemonic(x.Op), operand(x.Operand, false))
	case asmtree.Binary:
		return hfmt.Appendf(b, "\t%s\t%s, %s\n", binaryMnemonic(x.Op), operand(x.Src, false), operand(x.Dst, false))
	case asmtree.Cmp:
		return hfmt.Appendf(b, "\tcmpl\t%s, %s\n", operand(x.Left, false), operand(x.Right, false))
	case asmtree.Idiv:
		return hfmt.Appendf(b, "\tidivl\t%s\n", operand(x.Operand, false))
	case asmtree.Cdq:
		return append(b, "\tcdq\n"...)
	case asmtree.AllocateStack:
		return hfmt.Appendf(b, "\tsubq\t$%d, %%rsp\n", x.Bytes)
	case asmtree.Jmp:
		return hfmt.Appendf(b, "\tjmp\tL%s\n", x.Target)
	case asmtree.JmpCC:
		return hfmt.Appendf(b, "\tj%s\tL%s\n", condSuffix(x.Cond), x.Target)
	case asmtree.SetCC:
		return hfmt.Appendf(b, "\tset%s\t%s\n", condSuffix(x.Cond), operand(x.Operand, true))
	case asmtree.Label:
		return hfmt.Appendf(b, "L%s:\n", x.Name)
	case asmtree.Ret:
		return append(b, "\tmovq %rbp, %rsp\n\tpopq %rbp\n\tret\n"...)
	default:
		panic(errors.New("unsupported instruction: %T", instr))
	}
}

// operand renders an operand. byte1 selects the 1-byte register
// spelling, used only by SetCC.
func operand(op asmtree.Operand, byte1 bool) string {
	switch op := op.(type) {
	case asmtree.Imm:
		return fmt.Sprintf("$%d", int64(op))
	case asmtree.Reg:
		return regName(asmtree.Register(op), byte1)
	case asmtree.Stack:
		return fmt.Sprintf("%d(%%rbp)", int(op))
	case asmtree.Pseudo:
		panic(pseudoEncounteredError{Name: op})
	default:
		panic(errors.New("unsupported operand: %T", op))
	}
}

func regName(r asmtree.Register, byte1 bool) string {
	switch r {
	case asmtree.AX:
		if byte1 {
			return "%al"
		}
		return "%eax"
	case asmtree.DX:
		if byte1 {
			return "%dl"
		}
		return "%edx"
	case asmtree.R10:
		if byte1 {
			return "%r10b"
		}
		return "%r10d"
	case asmtree.R11:
		if byte1 {
			return "%r11b"
		}
		return "%r11d"
	default:
		panic(errors.New("unsupported register: %v", int(r)))
	}
}

func unaryMnemonic(op asmtree.UnaryOp) string {
	switch op {
	case asmtree.Neg:
		return "negl"
	case asmtree.Not:
		return "notl"
	default:
		panic(errors.New("unsupported unary op: %v", int(op)))
	}
}

func binaryMnemonic(op asmtree.BinaryOp) string {
	switch op {
	case asmtree.BAdd:
		return "addl"
	case asmtree.BSub:
		return "subl"
	case asmtree.BMult:
		return "imull"
	default:
		panic(errors.New("unsupported binary op: %v", int(op)))
	}
}

func condSuffix(cc asmtree.CondCode) string {
	switch cc {
	case asmtree.CE:
		return "e"
	case asmtree.CNE:
		return "ne"
	case asmtree.CL:
		return "l"
	case asmtree.CLE:
		return "le"
	case asmtree.CG:
		return "g"
	case asmtree.CGE:
		return "ge"
	default:
		panic(errors.New("unsupported condition code: %v", int(cc)))
	}
}
