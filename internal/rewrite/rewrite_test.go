package rewrite

import (
	"testing"

	"telepathy/internal/hir"
)

func TestIdentityFoldsAddZero(t *testing.T) {
	g := hir.New()
	ptr := g.AddInteger(5)
	zero := g.AddInteger(0)
	add := g.AddSimple(hir.OpAdd, ptr, zero)
	// The folded node is retired to NoOp and its consumers are rewired, so
	// the result is observed through a Tell root reading it.
	io := g.AddSimple(hir.OpIO)
	tell := g.AddSimple(hir.OpTell, hir.Link{Node: io, Port: 0}, hir.Link{Node: add, Port: 0})

	out, roots := Run(g, []hir.Id{tell}, Families{Identity: true})

	if len(roots) != 1 {
		t.Fatalf("expected one root, got %d", len(roots))
	}
	n := out.Node(out.Node(roots[0]).Params[1].Node)
	if n.Kind != hir.KindSimple || n.Op != hir.OpInteger || n.Value != 5 {
		t.Fatalf("expected folded literal 5, got %+v", n)
	}
}

func TestArithmeticFoldsConstants(t *testing.T) {
	g := hir.New()
	a := g.AddInteger(3)
	b := g.AddInteger(4)
	add := g.AddSimple(hir.OpAdd, a, b)

	out, roots := Run(g, []hir.Id{add}, Families{Arithmetic: true})

	n := out.Node(roots[0])
	if n.Op != hir.OpInteger || n.Value != 7 {
		t.Fatalf("expected folded literal 7, got %+v", n)
	}
}

func TestMemElideDropsLoadAfterStore(t *testing.T) {
	g := hir.New()
	mem := g.AddSimple(hir.OpMemory)
	memLink := hir.Link{Node: mem, Port: 0}
	ptr := g.AddInteger(0)
	value := g.AddInteger(9)
	store := g.AddSimple(hir.OpStore, memLink, ptr, value)
	storeState := hir.Link{Node: store, Port: 0}
	load := g.AddSimple(hir.OpLoad, storeState, ptr)

	loaded := hir.Link{Node: load, Port: 1}
	use := g.AddSimple(hir.OpAdd, loaded, g.AddInteger(0))
	io := g.AddSimple(hir.OpIO)
	tell := g.AddSimple(hir.OpTell, hir.Link{Node: io, Port: 0}, hir.Link{Node: use, Port: 0})

	out, roots := Run(g, []hir.Id{tell}, Families{MemElide: true, Identity: true})

	n := out.Node(out.Node(roots[0]).Params[1].Node)
	if n.Op != hir.OpInteger || n.Value != 9 {
		t.Fatalf("expected elided load to fold through to literal 9, got %+v", n)
	}
}
