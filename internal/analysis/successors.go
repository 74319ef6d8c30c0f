package analysis

import "telepathy/internal/hir"

// Successors is the inverse-adjacency index: for a producer node id, the
// (deduplicated) set of live node ids that hold at least one parameter
// referencing it.
type Successors struct {
	cache [][]hir.Id
	seen  map[hir.Id]bool
}

// Run rebuilds the index over the nodes in order, which must already be a
// live-node order (typically the result of Order.Compute over the same
// roots).
func (s *Successors) Run(g *hir.Graph, order []hir.Id) {
	n := g.Len()
	if cap(s.cache) < n {
		s.cache = make([][]hir.Id, n)
	} else {
		s.cache = s.cache[:n]
	}
	for i := range s.cache {
		s.cache[i] = s.cache[i][:0]
	}
	if s.seen == nil {
		s.seen = make(map[hir.Id]bool)
	}

	for _, id := range order {
		for k := range s.seen {
			delete(s.seen, k)
		}
		for _, link := range g.Node(id).Params {
			if s.seen[link.Node] {
				continue
			}
			s.seen[link.Node] = true
			s.cache[link.Node] = append(s.cache[link.Node], id)
		}
	}
}

// Of returns the consumer ids recorded against producer id.
func (s *Successors) Of(id hir.Id) []hir.Id {
	return s.cache[id]
}

// ReferencesCount counts, over the successor index, how many parameter
// slots of live successors reference exactly value.
func (s *Successors) ReferencesCount(g *hir.Graph, value hir.Link) int {
	count := 0
	for _, consumer := range s.Of(value.Node) {
		for _, link := range g.Node(consumer).Params {
			if link == value {
				count++
			}
		}
	}
	return count
}

// RedoPorts rewires every port of every live successor of id that
// currently points into id, replacing it with whatever choose returns for
// that exact link. choose returning ok=false leaves that port untouched.
func RedoPorts(g *hir.Graph, s *Successors, id hir.Id, choose func(old hir.Link) (hir.Link, bool)) {
	for _, consumer := range s.Of(id) {
		params := g.Node(consumer).Params
		for i, link := range params {
			if link.Node != id {
				continue
			}
			if newLink, ok := choose(link); ok {
				params[i] = newLink
			}
		}
	}
}

// RedoPortsInPlace rewires every port pointing into id to point to
// replacement instead, at the same port index.
func RedoPortsInPlace(g *hir.Graph, s *Successors, id, replacement hir.Id) {
	RedoPorts(g, s, id, func(old hir.Link) (hir.Link, bool) {
		return hir.Link{Node: replacement, Port: old.Port}, true
	})
}
