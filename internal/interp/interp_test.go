package interp

import (
	"bytes"
	"strings"
	"testing"

	"telepathy/internal/hir"
	"telepathy/internal/mir"
	"telepathy/internal/rewrite"
)

func compile(t *testing.T, source string, families rewrite.Families) mir.Program {
	t.Helper()
	parsed, err := hir.NewBuilder().Parse(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	g, roots := rewrite.Run(parsed.Graph, parsed.Roots(), families)
	return mir.NewSequencer().Sequence(g, roots)
}

func TestRunPrintsIncrementedByte(t *testing.T) {
	source := strings.Repeat("+", 65) + "."
	program := compile(t, source, rewrite.All())

	var out bytes.Buffer
	if err := Run(program, strings.NewReader(""), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "A" {
		t.Fatalf("expected %q, got %q", "A", out.String())
	}
}

func TestRunEchoesInput(t *testing.T) {
	program := compile(t, ",.", rewrite.All())

	var out bytes.Buffer
	if err := Run(program, strings.NewReader("z"), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "z" {
		t.Fatalf("expected echo of 'z', got %q", out.String())
	}
}

func TestRunClearLoopZeroesCell(t *testing.T) {
	source := strings.Repeat("+", 5) + "[-]+."
	program := compile(t, source, rewrite.All())

	var out bytes.Buffer
	if err := Run(program, strings.NewReader(""), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "\x01" {
		t.Fatalf("expected byte 1 after clear-then-increment, got %q", out.String())
	}
}

func TestUnoptimizedAndOptimizedAgree(t *testing.T) {
	source := strings.Repeat("+", 10) + "[>+++<-]>."

	unopt := compile(t, source, rewrite.Families{})
	opt := compile(t, source, rewrite.All())

	var unoptOut, optOut bytes.Buffer
	if err := Run(unopt, strings.NewReader(""), &unoptOut); err != nil {
		t.Fatalf("Run unopt: %v", err)
	}
	if err := Run(opt, strings.NewReader(""), &optOut); err != nil {
		t.Fatalf("Run opt: %v", err)
	}
	if unoptOut.String() != optOut.String() {
		t.Fatalf("optimization changed observable behavior: %q vs %q", unoptOut.String(), optOut.String())
	}
}
