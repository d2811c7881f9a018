// Package tackygen lowers a SourceTree (internal/ast) to TACKY
// (internal/tacky). Fresh-name and fresh-label counters live on the
// Generator instance, never as package-level state (spec.md §9,
// "Counters, not globals" — grounded on slowlang-slow's own
// State/Compiler types, which never hold a package-level var either).
package tackygen

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/cmmc/cmmc/internal/ast"
	"github.com/cmmc/cmmc/internal/tacky"
)

// UnsupportedBinaryOperatorError is defensive: it is unreachable for
// any ast.Program produced by internal/parse, since the parser never
// emits a BinaryOp outside ast's closed operator set.
type UnsupportedBinaryOperatorError struct {
	Op ast.BinaryOp
}

func (e UnsupportedBinaryOperatorError) Error() string {
	return fmt.Sprintf("unsupported binary operator conversion: %v", e.Op)
}

// Generator owns the per-compilation temporary and label counters: two
// separate counters (spec.md §3), but the label counter is a single
// shared one bumped on every freshLabel call regardless of tag, not
// one counter per tag.
type Generator struct {
	tmpCount   int
	labelCount int
}

// Lower lowers prog to a TackyProgram using a fresh Generator.
func Lower(ctx context.Context, prog *ast.Program) (tp *tacky.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "tackygen: lower", "func", prog.Function.Identifier)
	defer tr.Finish("err", &err)

	g := &Generator{}

	fn, err := g.lowerFunction(ctx, prog.Function)
	if err != nil {
		return nil, errors.Wrap(err, "func %s", prog.Function.Identifier)
	}

	return &tacky.Program{Function: fn}, nil
}

func (g *Generator) freshVar() tacky.Variable {
	name := tacky.Variable(fmt.Sprintf("tmp.%d", g.tmpCount))
	g.tmpCount++

	return name
}

func (g *Generator) freshLabel(tag string) string {
	n := g.labelCount
	g.labelCount++

	return fmt.Sprintf("%s%d", tag, n)
}

func (g *Generator) lowerFunction(ctx context.Context, fn *ast.Function) (*tacky.Function, error) {
	var out []tacky.Instr

	v, err := g.lowerExpr(ctx, fn.Body.Expression, &out)
	if err != nil {
		return nil, errors.Wrap(err, "return expression")
	}

	out = append(out, tacky.Return{Value: v})

	return &tacky.Function{Identifier: fn.Identifier, Instructions: out}, nil
}

// lowerExpr appends zero or more instructions to *out and returns the
// Value holding the expression's result (spec.md §4.3's emit helper).
func (g *Generator) lowerExpr(ctx context.Context, e ast.Expression, out *[]tacky.Instr) (tacky.Value, error) {
	switch e := e.(type) {
	case *ast.Int:
		return tacky.Constant(e.Value), nil

	case *ast.Unary:
		src, err := g.lowerExpr(ctx, e.Inner, out)
		if err != nil {
			return nil, errors.Wrap(err, "operand of %s", e.Op)
		}

		dst := g.freshVar()
		*out = append(*out, tacky.Unary{Op: lowerUnaryOp(e.Op), Src: src, Dst: dst})

		return dst, nil

	case *ast.Binary:
		switch e.Op {
		case ast.And:
			return g.lowerAnd(ctx, e, out)
		case ast.Or:
			return g.lowerOr(ctx, e, out)
		default:
			a, err := g.lowerExpr(ctx, e.Left, out)
			if err != nil {
				return nil, errors.Wrap(err, "left operand")
			}

			b, err := g.lowerExpr(ctx, e.Right, out)
			if err != nil {
				return nil, errors.Wrap(err, "right operand")
			}

			op, ok := lowerBinaryOp(e.Op)
			if !ok {
				return nil, UnsupportedBinaryOperatorError{Op: e.Op}
			}

			dst := g.freshVar()
			*out = append(*out, tacky.Binary{Op: op, Src1: a, Src2: b, Dst: dst})

			return dst, nil
		}

	default:
		return nil, errors.New("unsupported expression node: %T", e)
	}
}

// lowerAnd implements spec.md §4.3's short-circuit AND lowering.
func (g *Generator) lowerAnd(ctx context.Context, e *ast.Binary, out *[]tacky.Instr) (tacky.Value, error) {
	falseLbl := g.freshLabel("and_false")
	endLbl := g.freshLabel("and_end")

	a, err := g.lowerExpr(ctx, e.Left, out)
	if err != nil {
		return nil, errors.Wrap(err, "left operand of &&")
	}

	*out = append(*out, tacky.JumpIfZero{Cond: a, Target: falseLbl})

	b, err := g.lowerExpr(ctx, e.Right, out)
	if err != nil {
		return nil, errors.Wrap(err, "right operand of &&")
	}

	*out = append(*out, tacky.JumpIfZero{Cond: b, Target: falseLbl})

	dst := g.freshVar()
	*out = append(*out,
		tacky.Copy{Src: tacky.Constant(1), Dst: dst},
		tacky.Jump{Target: endLbl},
		tacky.Label{Name: falseLbl},
		tacky.Copy{Src: tacky.Constant(0), Dst: dst},
		tacky.Label{Name: endLbl},
	)

	return dst, nil
}

// lowerOr implements spec.md §4.3's short-circuit OR lowering,
// symmetric to lowerAnd.
func (g *Generator) lowerOr(ctx context.Context, e *ast.Binary, out *[]tacky.Instr) (tacky.Value, error) {
	trueLbl := g.freshLabel("or_true")
	endLbl := g.freshLabel("or_end")

	a, err := g.lowerExpr(ctx, e.Left, out)
	if err != nil {
		return nil, errors.Wrap(err, "left operand of ||")
	}

	*out = append(*out, tacky.JumpIfNotZero{Cond: a, Target: trueLbl})

	b, err := g.lowerExpr(ctx, e.Right, out)
	if err != nil {
		return nil, errors.Wrap(err, "right operand of ||")
	}

	*out = append(*out, tacky.JumpIfNotZero{Cond: b, Target: trueLbl})

	dst := g.freshVar()
	*out = append(*out,
		tacky.Copy{Src: tacky.Constant(0), Dst: dst},
		tacky.Jump{Target: endLbl},
		tacky.Label{Name: trueLbl},
		tacky.Copy{Src: tacky.Constant(1), Dst: dst},
		tacky.Label{Name: endLbl},
	)

	return dst, nil
}

func lowerUnaryOp(op ast.UnaryOp) tacky.UnaryOp {
	switch op {
	case ast.Negate:
		return tacky.Negate
	case ast.Complement:
		return tacky.Complement
	case ast.Not:
		return tacky.Not
	default:
		panic(fmt.Sprintf("unreachable unary op %v", op))
	}
}

func lowerBinaryOp(op ast.BinaryOp) (tacky.BinaryOp, bool) {
	switch op {
	case ast.Add:
		return tacky.Add, true
	case ast.Sub:
		return tacky.Sub, true
	case ast.Mul:
		return tacky.Mul, true
	case ast.Div:
		return tacky.Div, true
	case ast.Rem:
		return tacky.Rem, true
	case ast.Eq:
		return tacky.Eq, true
	case ast.Neq:
		return tacky.Neq, true
	case ast.Lt:
		return tacky.Lt, true
	case ast.Gt:
		return tacky.Gt, true
	case ast.Le:
		return tacky.Le, true
	case ast.Ge:
		return tacky.Ge, true
	default:
		return 0, false
	}
}
