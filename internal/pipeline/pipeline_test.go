package pipeline

import (
	"strings"
	"testing"

	"telepathy/internal/rewrite"
)

func TestRunAndEmitC(t *testing.T) {
	compiled, err := Run("+.", rewrite.All())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var sb strings.Builder
	if err := Emit(TargetC, compiled, &sb); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(sb.String(), "int main") {
		t.Fatalf("expected a main entry point:\n%s", sb.String())
	}
}

func TestFamiliesKeyDiffersByFamily(t *testing.T) {
	none := FamiliesKey(rewrite.Families{})
	all := FamiliesKey(rewrite.All())
	if none == all {
		t.Fatalf("expected distinct keys, both were %q", none)
	}
}

func TestCachedEmitWithoutCache(t *testing.T) {
	out, hit, err := CachedEmit(nil, "+.", rewrite.All(), TargetLua)
	if err != nil {
		t.Fatalf("CachedEmit: %v", err)
	}
	if hit {
		t.Fatalf("expected a miss with no cache configured")
	}
	if !strings.Contains(out, ".tell(") {
		t.Fatalf("missing expected lua output:\n%s", out)
	}
}
