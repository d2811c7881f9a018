package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/cmmc/cmmc/internal/ast"
	"github.com/cmmc/cmmc/internal/asmtree"
	"github.com/cmmc/cmmc/internal/codegen"
	"github.com/cmmc/cmmc/internal/emit"
	"github.com/cmmc/cmmc/internal/lex"
	"github.com/cmmc/cmmc/internal/parse"
	"github.com/cmmc/cmmc/internal/tacky"
	"github.com/cmmc/cmmc/internal/tackygen"
	"github.com/cmmc/cmmc/internal/token"
)

// Stage selects an early exit point for Compile, matching spec.md §6's
// CLI stage flags.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageTacky
	StageCodegen
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageTacky:
		return "tacky"
	case StageCodegen:
		return "codegen"
	default:
		return "unknown"
	}
}

// Config holds the knobs Compile needs that are not part of the
// language itself.
type Config struct {
	Emit emit.Config
}

func DefaultConfig() Config {
	return Config{Emit: emit.DefaultConfig()}
}

// StageResult is a tagged union over the four tree types plus the
// final assembly text. After an early exit, Stage names the stage and
// only that stage's field is set. A full run sets Asm and Text and
// leaves Stage at its zero value, so Stage alone does not tell a full
// run from an early exit at StageLex.
type StageResult struct {
	Stage Stage

	Tokens []token.Token
	Tree   *ast.Program
	Tacky  *tacky.Program
	Asm    *asmtree.Program
	Text   string
}

// Compile runs the pipeline over src, stopping early if stopAt is
// non-nil.
func Compile(ctx context.Context, src string, stopAt *Stage, cfg Config) (res StageResult, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compiler: compile", "len", len(src))
	defer tr.Finish("err", &err)

	toks, err := lex.Lex(ctx, src)
	if err != nil {
		return res, errors.Wrap(err, "lex")
	}

	if stopAt != nil && *stopAt == StageLex {
		return StageResult{Stage: StageLex, Tokens: toks}, nil
	}

	tree, err := parse.Parse(ctx, toks)
	if err != nil {
		return res, errors.Wrap(err, "parse")
	}

	if stopAt != nil && *stopAt == StageParse {
		return StageResult{Stage: StageParse, Tree: tree}, nil
	}

	tp, err := tackygen.Lower(ctx, tree)
	if err != nil {
		return res, errors.Wrap(err, "lower ir")
	}

	if stopAt != nil && *stopAt == StageTacky {
		return StageResult{Stage: StageTacky, Tacky: tp}, nil
	}

	asm, err := codegen.Codegen(ctx, tp)
	if err != nil {
		return res, errors.Wrap(err, "codegen")
	}

	if stopAt != nil && *stopAt == StageCodegen {
		return StageResult{Stage: StageCodegen, Asm: asm}, nil
	}

	text, err := emit.Emit(asm, cfg.Emit)
	if err != nil {
		return res, errors.Wrap(err, "emit")
	}

	return StageResult{Asm: asm, Text: text}, nil
}
