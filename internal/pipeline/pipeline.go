// Package pipeline wires the stages every telepathy subcommand shares:
// parse, rewrite to a fixed point, sequence into MIR, then hand off to a
// target emitter or the reference interpreter. It also owns the optional
// compile cache lookup/store around that pipeline.
package pipeline

import (
	"fmt"
	"strings"

	"telepathy/internal/cache"
	"telepathy/internal/codegen"
	"telepathy/internal/hir"
	"telepathy/internal/mir"
	"telepathy/internal/rewrite"
)

// Target names one of the emitting backends. "dot" renders the rewritten
// graph rather than the mir.Program, and "llvm" is not handled by Emit at
// all, since its module renders itself instead of writing through an
// io.Writer like the others.
type Target string

const (
	TargetC         Target = "c"
	TargetLua       Target = "lua"
	TargetPython    Target = "python"
	TargetBrainfuck Target = "brainfuck"
	TargetDot       Target = "dot"
	TargetLLVM      Target = "llvm"
)

// FamiliesKey renders families as a stable string for cache keys, since
// rewrite.Families has no natural string form of its own.
func FamiliesKey(f rewrite.Families) string {
	var sb strings.Builder
	if f.Identity {
		sb.WriteByte('i')
	}
	if f.Arithmetic {
		sb.WriteByte('a')
	}
	if f.MemElide {
		sb.WriteByte('m')
	}
	return sb.String()
}

// Compiled is what a full run produces before a target-specific writer
// turns it into text: the rewritten graph (needed by the "dot" target and
// --dump-hir) plus the sequenced program every other emitter consumes.
type Compiled struct {
	Graph   *hir.Graph
	Roots   []hir.Id
	Program mir.Program
}

// Run parses source, applies families to a fixed point, and sequences the
// result into MIR.
func Run(source string, families rewrite.Families) (Compiled, error) {
	parsed, err := hir.NewBuilder().Parse(source)
	if err != nil {
		return Compiled{}, err
	}
	g, roots := rewrite.Run(parsed.Graph, parsed.Roots(), families)
	program := mir.NewSequencer().Sequence(g, roots)
	return Compiled{Graph: g, Roots: roots, Program: program}, nil
}

// Emit renders compiled's program (or graph, for "dot") as target's text
// form.
func Emit(target Target, compiled Compiled, sb *strings.Builder) error {
	switch target {
	case TargetC:
		return codegen.WriteC89(sb, compiled.Program)
	case TargetLua:
		return codegen.WriteLua51(sb, compiled.Program)
	case TargetPython:
		return codegen.WritePython(sb, compiled.Program)
	case TargetBrainfuck:
		out, err := codegen.Decompile(compiled.Program)
		if err != nil {
			return err
		}
		sb.WriteString(out)
		return nil
	case TargetDot:
		return codegen.WriteDot(sb, compiled.Graph)
	default:
		return fmt.Errorf("pipeline: %q does not emit through a text writer", target)
	}
}

// CachedEmit wraps Run+Emit with a cache lookup keyed on (source,
// families, target), skipping both stages entirely on a hit. A nil c
// disables caching.
func CachedEmit(c *cache.Cache, source string, families rewrite.Families, target Target) (string, bool, error) {
	var digest string
	if c != nil {
		digest = cache.Key(source, FamiliesKey(families), string(target))
		if cached, ok, err := c.Lookup(digest); err == nil && ok {
			return cached, true, nil
		}
	}

	compiled, err := Run(source, families)
	if err != nil {
		return "", false, err
	}
	var sb strings.Builder
	if err := Emit(target, compiled, &sb); err != nil {
		return "", false, err
	}
	output := sb.String()

	if c != nil {
		if err := c.Store(digest, string(target), output); err != nil {
			return output, false, fmt.Errorf("pipeline: cache store: %w", err)
		}
	}
	return output, false, nil
}
