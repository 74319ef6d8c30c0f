// Package analysis provides the traversal support shared by the rewrite
// engine and the sequencer: a reverse-topological visitation order over
// live nodes, a successor (inverse-adjacency) index, and the dead-node
// sweep.
package analysis

import "telepathy/internal/hir"

// Order computes a visitation order over the nodes reachable backward from
// a set of roots, such that every node appears after all of its own
// parameter producers and, for a compound, after the full interior of each
// region it owns. The name mirrors the direction of the walk (it follows
// links from use to definition) rather than the direction of the result,
// which is a conventional producer-before-consumer schedule.
type Order struct {
	visited []bool
	order   []hir.Id
}

// Compute resets o and walks g backward from roots, returning the
// resulting node order. The returned slice is owned by o and is
// invalidated by the next call to Compute.
func (o *Order) Compute(g *hir.Graph, roots []hir.Id) []hir.Id {
	n := g.Len()
	if cap(o.visited) < n {
		o.visited = make([]bool, n)
	} else {
		o.visited = o.visited[:n]
		for i := range o.visited {
			o.visited[i] = false
		}
	}
	o.order = o.order[:0]

	for _, r := range roots {
		o.visit(g, r)
	}
	return o.order
}

func (o *Order) visit(g *hir.Graph, id hir.Id) {
	if o.visited[id] {
		return
	}
	o.visited[id] = true

	n := g.Node(id)
	for _, link := range n.Params {
		o.visit(g, link.Node)
	}
	if n.Kind == hir.KindCompound {
		for _, region := range n.Regions {
			o.visit(g, region.End)
		}
	}

	o.order = append(o.order, id)
}
