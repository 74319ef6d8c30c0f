package commands

import (
	"fmt"
	"time"

	"telepathy/internal/cliutil"
	"telepathy/internal/codegen"
	"telepathy/internal/pipeline"
)

// LLVMCommand implements "telepathy llvm [input] [output]". It bypasses
// pipeline.Emit since llir/llvm's *ir.Module renders itself rather than
// writing through an io.Writer-shaped emitter like the text targets.
func LLVMCommand(args []string) error {
	opts, err := parseEmitOptions(args)
	if err != nil {
		return err
	}
	inputs, outputs, err := resolvePaths(pipeline.TargetLLVM, opts.paths)
	if err != nil {
		return err
	}
	if len(inputs) != 1 {
		return fmt.Errorf("llvm: multi-file compilation is not supported for this target")
	}

	source, err := readSource(inputs[0])
	if err != nil {
		return err
	}

	start := time.Now()
	compiled, err := pipeline.Run(source, opts.families)
	if err != nil {
		return fmt.Errorf("%s: %w", displayName(inputs[0]), err)
	}

	if opts.dumpHIR {
		cliutil.Dump(stderrWriter, "hir", compiled.Graph)
	}
	if opts.dumpMIR {
		cliutil.Dump(stderrWriter, "mir", compiled.Program)
	}

	module := codegen.EmitLLVM(compiled.Program)
	if err := writeOutput(outputs[0], module.String()); err != nil {
		return err
	}
	reportStats(opts.stats, len(source), compiled.Program.Locals, len(compiled.Program.Bodies), time.Since(start))
	return nil
}
