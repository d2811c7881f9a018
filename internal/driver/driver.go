// Package driver owns everything spec.md §1 calls an "external
// collaborator": reading source from disk, invoking an external
// preprocessor and linker, and the .i/.s intermediate file dance. The
// core compiler package never touches any of this, mirroring
// slowlang-slow/src/compiler.CompileFile's own thin
// read-file-then-call-the-core shape.
package driver

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	compiler "github.com/cmmc/cmmc"
)

// Options configures one end-to-end run of the driver.
type Options struct {
	// StopAt, if non-nil, selects an early-exit stage: the driver
	// writes nothing to disk and the caller is expected to print the
	// returned StageResult itself.
	StopAt *compiler.Stage

	// StopAfterAssembly corresponds to the CLI's -S flag: run the
	// whole pipeline and write the .s file, but do not assemble or
	// link.
	StopAfterAssembly bool

	Config compiler.Config

	// Preprocessor and Linker name the external tools to invoke.
	// Empty means "cc", matching common C toolchain conventions.
	Preprocessor string
	Linker       string
}

func (o Options) preprocessor() string {
	if o.Preprocessor != "" {
		return o.Preprocessor
	}

	return "cc"
}

func (o Options) linker() string {
	if o.Linker != "" {
		return o.Linker
	}

	return "cc"
}

// Result mirrors compiler.StageResult but also carries the paths of
// any files the driver wrote.
type Result struct {
	Stage      compiler.StageResult
	AsmPath    string
	OutputPath string
}

// CompileFile runs the full source->executable pipeline for one
// input file. inputPath must end in ".c"; UnsupportedExtensionError is
// returned otherwise (spec.md §6: "bad extension" is a user error,
// exit code 1).
func CompileFile(ctx context.Context, inputPath string, opts Options) (res Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "driver: compile file", "path", inputPath)
	defer tr.Finish("err", &err)

	if filepath.Ext(inputPath) != ".c" {
		return res, UnsupportedExtensionError{Path: inputPath}
	}

	base := strings.TrimSuffix(inputPath, ".c")
	iPath := base + ".i"
	sPath := base + ".s"

	if err := preprocess(ctx, opts.preprocessor(), inputPath, iPath); err != nil {
		return res, errors.Wrap(err, "preprocess")
	}
	defer os.Remove(iPath)

	text, err := os.ReadFile(iPath)
	if err != nil {
		return res, errors.Wrap(err, "read preprocessed source")
	}

	tr.Printw("read preprocessed source", "size", len(text), "path", iPath)

	stageRes, err := compiler.Compile(ctx, string(text), opts.StopAt, opts.Config)
	if err != nil {
		return res, errors.Wrap(err, "compile")
	}

	res.Stage = stageRes

	if opts.StopAt != nil {
		return res, nil
	}

	if err := os.WriteFile(sPath, []byte(stageRes.Text), 0o644); err != nil {
		return res, errors.Wrap(err, "write assembly")
	}

	res.AsmPath = sPath

	if opts.StopAfterAssembly {
		return res, nil
	}

	defer os.Remove(sPath)

	outPath := base
	if err := link(ctx, opts.linker(), sPath, outPath); err != nil {
		return res, errors.Wrap(err, "link")
	}

	res.OutputPath = outPath

	return res, nil
}

func preprocess(ctx context.Context, tool, inputPath, outPath string) error {
	cmd := exec.CommandContext(ctx, tool, "-E", "-P", inputPath, "-o", outPath)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return ExternalToolError{Tool: tool, Output: string(out), Err: err}
	}

	return nil
}

func link(ctx context.Context, tool, asmPath, outPath string) error {
	cmd := exec.CommandContext(ctx, tool, asmPath, "-o", outPath)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return ExternalToolError{Tool: tool, Output: string(out), Err: err}
	}

	return nil
}
