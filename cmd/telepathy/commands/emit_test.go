package commands

import (
	"testing"

	"telepathy/internal/pipeline"
)

func TestParseEmitOptionsOptimizeEnablesAllFamilies(t *testing.T) {
	opts, err := parseEmitOptions([]string{"-O", "--stats", "in.bf"})
	if err != nil {
		t.Fatalf("parseEmitOptions: %v", err)
	}
	if !opts.families.Identity || !opts.families.Arithmetic || !opts.families.MemElide {
		t.Fatalf("expected all families enabled, got %+v", opts.families)
	}
	if !opts.stats {
		t.Fatalf("expected stats flag set")
	}
	if len(opts.paths) != 1 || opts.paths[0] != "in.bf" {
		t.Fatalf("expected one positional path, got %v", opts.paths)
	}
}

func TestParseEmitOptionsCacheDSN(t *testing.T) {
	opts, err := parseEmitOptions([]string{"--cache-dsn=postgres://host/db"})
	if err != nil {
		t.Fatalf("parseEmitOptions: %v", err)
	}
	if opts.cacheDSN != "postgres://host/db" {
		t.Fatalf("expected dsn override, got %q", opts.cacheDSN)
	}
}

func TestParseEmitOptionsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseEmitOptions([]string{"--bogus"}); err == nil {
		t.Fatalf("expected an error for an unrecognized flag")
	}
}

func TestResolvePathsClassicForm(t *testing.T) {
	inputs, outputs, err := resolvePaths(pipeline.TargetC, []string{"in.bf", "out.c"})
	if err != nil {
		t.Fatalf("resolvePaths: %v", err)
	}
	if len(inputs) != 1 || inputs[0] != "in.bf" || outputs[0] != "out.c" {
		t.Fatalf("unexpected classic-form resolution: %v %v", inputs, outputs)
	}
}

func TestResolvePathsMultiFileDerivesOutputs(t *testing.T) {
	inputs, outputs, err := resolvePaths(pipeline.TargetLua, []string{"a.bf", "b.bf", "c.bf"})
	if err != nil {
		t.Fatalf("resolvePaths: %v", err)
	}
	want := []string{"a.lua", "b.lua", "c.lua"}
	for i, w := range want {
		if outputs[i] != w {
			t.Fatalf("output %d: expected %q, got %q", i, w, outputs[i])
		}
	}
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(inputs))
	}
}
