package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"telepathy/internal/cache"
	"telepathy/internal/cliutil"
	"telepathy/internal/pipeline"
)

var stderrWriter = os.Stderr

// targetExtension maps a pipeline.Target to the file extension its
// output conventionally takes, for the multi-file form where an output
// path is derived rather than given explicitly.
var targetExtension = map[pipeline.Target]string{
	pipeline.TargetC:         ".c",
	pipeline.TargetLua:       ".lua",
	pipeline.TargetPython:    ".py",
	pipeline.TargetBrainfuck: ".bf",
	pipeline.TargetDot:       ".dot",
}

// EmitCommand implements "telepathy <target> [input] [output]" and its
// multi-file form "telepathy <target> a.bf b.bf c.bf", sharing the flag
// table documented for every text-emitting target.
func EmitCommand(target pipeline.Target, args []string) error {
	opts, err := parseEmitOptions(args)
	if err != nil {
		return err
	}

	inputs, outputs, err := resolvePaths(target, opts.paths)
	if err != nil {
		return err
	}

	var c *cache.Cache
	if c, err = opts.openCache(); err != nil {
		return err
	}
	if c != nil {
		defer c.Close()
	}

	if len(inputs) == 1 {
		return emitOne(c, opts, target, inputs[0], outputs[0])
	}

	var g errgroup.Group
	for i := range inputs {
		i := i
		g.Go(func() error {
			return emitOne(c, opts, target, inputs[i], outputs[i])
		})
	}
	return g.Wait()
}

// resolvePaths turns the positional arguments into parallel input/output
// slices: zero paths means stdin→stdout, one path is source-only
// (written to stdout), two paths are the classic [input] [output] form,
// and more than two are all treated as inputs with derived outputs.
func resolvePaths(target pipeline.Target, paths []string) (inputs, outputs []string, err error) {
	switch len(paths) {
	case 0:
		return []string{""}, []string{""}, nil
	case 1:
		return []string{paths[0]}, []string{""}, nil
	case 2:
		return []string{paths[0]}, []string{paths[1]}, nil
	default:
		ext := targetExtension[target]
		outputs = make([]string, len(paths))
		for i, p := range paths {
			outputs[i] = strings.TrimSuffix(p, filepath.Ext(p)) + ext
		}
		return paths, outputs, nil
	}
}

func emitOne(c *cache.Cache, opts emitOptions, target pipeline.Target, input, output string) error {
	source, err := readSource(input)
	if err != nil {
		return err
	}

	start := time.Now()

	if opts.dumpHIR || opts.dumpMIR {
		compiled, err := pipeline.Run(source, opts.families)
		if err != nil {
			return fmt.Errorf("%s: %w", displayName(input), err)
		}
		if opts.dumpHIR {
			cliutil.Dump(stderrWriter, "hir", compiled.Graph)
		}
		if opts.dumpMIR {
			cliutil.Dump(stderrWriter, "mir", compiled.Program)
		}
		var sb strings.Builder
		if err := pipeline.Emit(target, compiled, &sb); err != nil {
			return fmt.Errorf("%s: %w", displayName(input), err)
		}
		if err := writeOutput(output, sb.String()); err != nil {
			return err
		}
		reportStats(opts.stats, len(source), compiled.Program.Locals, len(compiled.Program.Bodies), time.Since(start))
		return nil
	}

	out, hit, err := pipeline.CachedEmit(c, source, opts.families, target)
	if err != nil {
		return fmt.Errorf("%s: %w", displayName(input), err)
	}
	if err := writeOutput(output, out); err != nil {
		return err
	}
	if opts.stats {
		fmt.Fprintf(stderrWriter, "%s: cache %s\n", displayName(input), cacheLabel(hit))
		reportStats(true, len(source), 0, 0, time.Since(start))
	}
	return nil
}

func cacheLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func displayName(input string) string {
	if input == "" {
		return "<stdin>"
	}
	return input
}

func readSource(input string) (string, error) {
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", input, err)
	}
	return string(data), nil
}

func writeOutput(output, text string) error {
	if output == "" {
		_, err := fmt.Print(text)
		return err
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}
