package analysis

import "telepathy/internal/hir"

// Sweep retains only nodes reachable backward from roots, compacting node
// ids so there are no holes. It returns the new graph, the remapped roots,
// and the old-id → new-id mapping (entries for dead ids are -1).
func Sweep(g *hir.Graph, roots []hir.Id) (*hir.Graph, []hir.Id, []hir.Id) {
	var order Order
	live := order.Compute(g, roots)

	mapping := make([]hir.Id, g.Len())
	for i := range mapping {
		mapping[i] = -1
	}
	for i, id := range live {
		mapping[id] = hir.Id(i)
	}

	out := hir.New()
	for _, id := range live {
		n := *g.Node(id)
		n.Params = remapLinks(n.Params, mapping)
		for i, r := range n.Regions {
			n.Regions[i] = hir.Region{Start: mapping[r.Start], End: mapping[r.End]}
		}
		out.Append(n)
	}

	newRoots := make([]hir.Id, len(roots))
	for i, r := range roots {
		newRoots[i] = mapping[r]
	}

	return out, newRoots, mapping
}

func remapLinks(links []hir.Link, mapping []hir.Id) []hir.Link {
	if links == nil {
		return nil
	}
	out := make([]hir.Link, len(links))
	for i, l := range links {
		out[i] = hir.Link{Node: mapping[l.Node], Port: l.Port}
	}
	return out
}
