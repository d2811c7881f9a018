// Command cmmc is the C-- compiler CLI (spec.md §6), built on
// nikand.dev/go/cli the same way slowlang-slow/src/cmd/slow/main.go
// wires its "parse"/"compile" subcommands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	compiler "github.com/cmmc/cmmc"
	"github.com/cmmc/cmmc/internal/driver"
)

func main() {
	app := &cli.Command{
		Name:        "cmmc",
		Description: "cmmc compiles a small C subset to x86-64 assembly",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

// stage flags are strictly mutually exclusive with each other and
// with -S (spec.md §9, open question resolved in favor of exclusivity
// rather than guessing at combined semantics).
func compileAct(c *cli.Command) (err error) {
	fs := flag.NewFlagSet("cmmc", flag.ContinueOnError)

	lexFlag := fs.Bool("lex", false, "print tokens and stop")
	parseFlag := fs.Bool("parse", false, "print the source tree and stop")
	tackyFlag := fs.Bool("tacky", false, "print the TACKY IR and stop")
	codegenFlag := fs.Bool("codegen", false, "print the assembly tree and stop")
	stopAsmFlag := fs.Bool("S", false, "stop after writing the .s file")
	linuxFlag := fs.Bool("linux", false, "omit the leading underscore from symbol names")

	if err := fs.Parse(c.Args); err != nil {
		os.Exit(1)
	}

	set := 0
	for _, b := range []bool{*lexFlag, *parseFlag, *tackyFlag, *codegenFlag, *stopAsmFlag} {
		if b {
			set++
		}
	}

	if set > 1 {
		fmt.Fprintln(os.Stderr, "cmmc: --lex, --parse, --tacky, --codegen and -S are mutually exclusive")
		os.Exit(1)
	}

	args := fs.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "cmmc: expected exactly one input file")
		os.Exit(1)
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg := compiler.DefaultConfig()
	if *linuxFlag {
		cfg.Emit.SymbolPrefix = ""
	}

	opts := driver.Options{
		StopAfterAssembly: *stopAsmFlag,
		Config:            cfg,
	}

	switch {
	case *lexFlag:
		s := compiler.StageLex
		opts.StopAt = &s
	case *parseFlag:
		s := compiler.StageParse
		opts.StopAt = &s
	case *tackyFlag:
		s := compiler.StageTacky
		opts.StopAt = &s
	case *codegenFlag:
		s := compiler.StageCodegen
		opts.StopAt = &s
	}

	res, err := driver.CompileFile(ctx, args[0], opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cmmc:", err)
		os.Exit(exitCodeFor(err))
	}

	if opts.StopAt != nil {
		dumpStage(res.Stage)
	}

	return nil
}

func dumpStage(res compiler.StageResult) {
	switch res.Stage {
	case compiler.StageLex:
		for _, t := range res.Tokens {
			fmt.Printf("%s\n", t)
		}
	case compiler.StageParse:
		fmt.Printf("%+v\n", res.Tree)
	case compiler.StageTacky:
		fmt.Printf("%+v\n", res.Tacky)
	case compiler.StageCodegen:
		fmt.Printf("%+v\n", res.Asm)
	}
}

func exitCodeFor(err error) int {
	var extErr driver.ExternalToolError
	if errors.As(err, &extErr) {
		return 3
	}

	var unsupExt driver.UnsupportedExtensionError
	if errors.As(err, &unsupExt) {
		return 1
	}

	return 2
}
