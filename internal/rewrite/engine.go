package rewrite

import (
	"telepathy/internal/analysis"
	"telepathy/internal/hir"
)

// Run applies the enabled rule families over g, starting from roots, to a
// fixed point, then sweeps dead nodes. It returns the rewritten graph and
// the remapped roots.
func Run(g *hir.Graph, roots []hir.Id, families Families) (*hir.Graph, []hir.Id) {
	var order analysis.Order
	var succ analysis.Successors

	for {
		live := order.Compute(g, roots)
		succ.Run(g, live)

		changed := false
		for _, id := range live {
			if families.Identity && applyIdentity(g, &succ, id) {
				changed = true
				continue
			}
			if families.Arithmetic && applyArithmetic(g, id) {
				changed = true
				continue
			}
			if families.MemElide && applyMemElide(g, &succ, id) {
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	out, newRoots, _ := analysis.Sweep(g, roots)
	return out, newRoots
}
