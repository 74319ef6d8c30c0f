package mir

import (
	"testing"

	"telepathy/internal/hir"
)

func TestSequenceIncrement(t *testing.T) {
	parsed, err := hir.NewBuilder().Parse("+")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	program := NewSequencer().Sequence(parsed.Graph, parsed.Roots())

	if len(program.Bodies) == 0 {
		t.Fatal("expected at least one body")
	}
	if program.Locals == 0 {
		t.Fatal("expected at least one register assigned")
	}

	var sawStore bool
	for _, inst := range program.Bodies[0] {
		if _, ok := inst.(Store); ok {
			sawStore = true
		}
	}
	if !sawStore {
		t.Fatal("expected a Store instruction in the entry body")
	}
}

func TestSequenceLoop(t *testing.T) {
	parsed, err := hir.NewBuilder().Parse("[-]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	program := NewSequencer().Sequence(parsed.Graph, parsed.Roots())

	var sawSelect, sawRepeat bool
	for _, body := range program.Bodies {
		for _, inst := range body {
			switch inst.(type) {
			case Select:
				sawSelect = true
			case Repeat:
				sawRepeat = true
			}
		}
	}
	if !sawSelect || !sawRepeat {
		t.Fatalf("expected both Select and Repeat, got select=%v repeat=%v", sawSelect, sawRepeat)
	}
}
