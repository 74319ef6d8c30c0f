package codegen

import (
	"strings"
	"testing"

	"telepathy/internal/hir"
	"telepathy/internal/mir"
	"telepathy/internal/rewrite"
)

func sequence(t *testing.T, source string) mir.Program {
	t.Helper()
	return sequenceWith(t, source, rewrite.All())
}

func sequenceWith(t *testing.T, source string, families rewrite.Families) mir.Program {
	t.Helper()
	parsed, err := hir.NewBuilder().Parse(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	g, roots := rewrite.Run(parsed.Graph, parsed.Roots(), families)
	return mir.NewSequencer().Sequence(g, roots)
}

func TestWriteC89ContainsPrologue(t *testing.T) {
	program := sequence(t, "+.")
	var sb strings.Builder
	if err := WriteC89(&sb, program); err != nil {
		t.Fatalf("WriteC89: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "uint8_t memory[8192]") {
		t.Fatalf("missing memory declaration:\n%s", out)
	}
	if !strings.Contains(out, "fputc(") {
		t.Fatalf("missing output call:\n%s", out)
	}
}

func TestWriteLua51ContainsIO(t *testing.T) {
	program := sequence(t, ",.")
	var sb strings.Builder
	if err := WriteLua51(&sb, program); err != nil {
		t.Fatalf("WriteLua51: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, ".ask()") || !strings.Contains(out, ".tell(") {
		t.Fatalf("missing io calls:\n%s", out)
	}
}

func TestWriteDotProducesValidShape(t *testing.T) {
	parsed, err := hir.NewBuilder().Parse("+")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var sb strings.Builder
	if err := WriteDot(&sb, parsed.Graph); err != nil {
		t.Fatalf("WriteDot: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "digraph hir {") {
		t.Fatalf("unexpected dot prefix:\n%s", out)
	}
}

func TestDecompileRoundTrip(t *testing.T) {
	for _, source := range []string{"+", "++--", ">>+<<", ",.", "+++[-]"} {
		program := sequenceWith(t, source, rewrite.Families{})
		out, err := Decompile(program)
		if err != nil {
			t.Fatalf("Decompile(%q): %v", source, err)
		}
		if out == "" && source != "" {
			t.Fatalf("Decompile(%q) produced empty output", source)
		}
	}
}
