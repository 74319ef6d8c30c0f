package codegen

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"telepathy/internal/hir"
)

// WriteDot renders g as a Graphviz digraph: one node per graph node
// labeled with its op/marker/compound kind, and one edge per parameter
// link, port-labeled. Node ids are emitted in ascending order so the
// output is stable across runs regardless of map iteration order
// elsewhere in the pipeline.
func WriteDot(w io.Writer, g *hir.Graph) error {
	if _, err := fmt.Fprintln(w, "digraph hir {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\tnode [shape=box, fontname=monospace];"); err != nil {
		return err
	}

	ids := make([]hir.Id, g.Len())
	for i := range ids {
		ids[i] = hir.Id(i)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if err := writeDotNode(w, g, id); err != nil {
			return err
		}
	}
	for _, id := range ids {
		if err := writeDotEdges(w, g, id); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func writeDotNode(w io.Writer, g *hir.Graph, id hir.Id) error {
	n := g.Node(id)
	label := dotLabel(n)
	_, err := fmt.Fprintf(w, "\tn%d [label=\"%d: %s\"];\n", id, id, label)
	return err
}

func dotLabel(n *hir.Node) string {
	switch n.Kind {
	case hir.KindSimple:
		if n.Op == hir.OpInteger {
			return fmt.Sprintf("Integer(%d)", n.Value)
		}
		return n.Op.String()
	case hir.KindMarker:
		if n.Marker == hir.MarkerStart {
			return "Start"
		}
		return "End"
	case hir.KindCompound:
		if n.Compound == hir.CompoundGamma {
			return "Gamma"
		}
		return "Theta"
	default:
		return "?"
	}
}

func writeDotEdges(w io.Writer, g *hir.Graph, id hir.Id) error {
	n := g.Node(id)
	for i, link := range n.Params {
		if _, err := fmt.Fprintf(w, "\tn%d -> n%d [label=\"%d:%d\"];\n", link.Node, id, i, link.Port); err != nil {
			return err
		}
	}
	return nil
}
