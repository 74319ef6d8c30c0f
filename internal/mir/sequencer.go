package mir

import (
	"telepathy/internal/analysis"
	"telepathy/internal/diagnostics"
	"telepathy/internal/hir"
	"telepathy/internal/regalloc"
)

// Sequencer walks a rewritten HIR graph in reverse-topological order and
// lowers it into a Program: one flat instruction list per region body,
// with Select/Repeat nesting by body index.
type Sequencer struct {
	parents map[hir.Id]hir.Id
	regions []int
	bodies  [][]Instruction

	registers regalloc.Registers
	order     analysis.Order
	succ      analysis.Successors
}

// NewSequencer returns a ready-to-use sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{parents: make(map[hir.Id]hir.Id)}
}

func (s *Sequencer) reset(g *hir.Graph, live []hir.Id) {
	s.bodies = s.bodies[:0]
	s.bodies = append(s.bodies, nil)
	s.regions = s.regions[:0]
	s.regions = append(s.regions, 0)
	s.succ.Run(g, live)
	s.registers.Reset(g, &s.succ)
}

func (s *Sequencer) add(instruction Instruction) {
	index := s.regions[len(s.regions)-1]
	s.bodies[index] = append(s.bodies[index], instruction)
}

func (s *Sequencer) tryAddMove(from, to Register) {
	if from == to {
		return
	}
	s.add(Move{From: from, To: to})
}

func (s *Sequencer) addSimple(g *hir.Graph, id hir.Id) {
	n := g.Node(id)
	first := hir.Link{Node: id, Port: 0}

	switch n.Op {
	case hir.OpNoOp:
		return

	case hir.OpMerge:
		var result Register
		for i := len(n.Params) - 1; i >= 0; i-- {
			result = s.registers.Fetch(n.Params[i])
		}
		post := s.registers.ReuseOrReserve(g, first, result)
		s.tryAddMove(result, post)

	case hir.OpMemory:
		result := s.registers.Reserve(g, first)
		s.add(Memory{Result: result})

	case hir.OpIO:
		result := s.registers.Reserve(g, first)
		s.add(IO{Result: result})

	case hir.OpInteger:
		result := s.registers.Reserve(g, first)
		s.add(Integer{Result: result, Value: n.Value})

	case hir.OpAdd:
		lhs := s.registers.Fetch(n.Params[0])
		rhs := s.registers.Fetch(n.Params[1])
		result := s.registers.Reserve(g, first)
		s.add(Add{Result: result, Lhs: lhs, Rhs: rhs})

	case hir.OpSub:
		lhs := s.registers.Fetch(n.Params[0])
		rhs := s.registers.Fetch(n.Params[1])
		result := s.registers.Reserve(g, first)
		s.add(Sub{Result: result, Lhs: lhs, Rhs: rhs})

	case hir.OpLoad:
		state := s.registers.Fetch(n.Params[0])
		post := s.registers.ReuseOrReserve(g, first, state)
		pointer := s.registers.Fetch(n.Params[1])
		result := s.registers.Reserve(g, hir.Link{Node: id, Port: 1})
		s.tryAddMove(state, post)
		s.add(Load{Result: result, Pointer: pointer, State: state})

	case hir.OpStore:
		state := s.registers.Fetch(n.Params[0])
		pointer := s.registers.Fetch(n.Params[1])
		value := s.registers.Fetch(n.Params[2])
		s.add(Store{Pointer: pointer, Value: value, State: state})
		post := s.registers.ReuseOrReserve(g, first, state)
		s.tryAddMove(state, post)

	case hir.OpAsk:
		state := s.registers.Fetch(n.Params[0])
		post := s.registers.ReuseOrReserve(g, first, state)
		result := s.registers.Reserve(g, hir.Link{Node: id, Port: 1})
		s.tryAddMove(state, post)
		s.add(Ask{Result: result, State: state})

	case hir.OpTell:
		state := s.registers.Fetch(n.Params[0])
		value := s.registers.Fetch(n.Params[1])
		s.add(Tell{Value: value, State: state})
		post := s.registers.ReuseOrReserve(g, first, state)
		s.tryAddMove(state, post)
	}
}

func (s *Sequencer) addStartMarker(g *hir.Graph, id, parent hir.Id) {
	p := g.Node(parent)

	switch p.Compound {
	case hir.CompoundGamma:
		if p.Regions[0].Start == id {
			for _, link := range p.Params {
				s.registers.Fetch(link)
			}
			results := g.RegionEndArity(p.Regions[0])
			next := hir.LinksFrom(parent)
			for i := 0; i < results; i++ {
				s.registers.Reserve(g, next())
			}
		}

		next := hir.LinksFrom(id)
		for _, link := range p.Params {
			out := next()
			predecessor := s.registers.Assigned().Get(link)
			s.registers.Reuse(g, out, predecessor)
		}

	case hir.CompoundTheta:
		outs := hir.LinksFrom(id)
		ends := hir.LinksFrom(parent)
		for _, link := range p.Params {
			out := outs()
			end := ends()
			from := s.registers.Fetch(link)
			to := s.registers.ReuseOrReserve(g, out, from)
			s.registers.Reuse(g, end, to)
			s.tryAddMove(from, to)
		}
	}

	s.regions = append(s.regions, len(s.bodies))
	s.bodies = append(s.bodies, nil)
}

func (s *Sequencer) addEndMarker(g *hir.Graph, parameters []hir.Link, parent hir.Id) {
	p := g.Node(parent)
	if p.Compound == hir.CompoundTheta {
		parameters = parameters[:len(parameters)-1]
	}

	next := hir.LinksFrom(parent)
	for _, from := range parameters {
		to := next()
		toReg := s.registers.Assigned().Get(to)
		fromReg := s.registers.Fetch(from)
		s.tryAddMove(fromReg, toReg)
	}
}

func (s *Sequencer) addMarker(g *hir.Graph, id hir.Id) {
	parent := s.parents[id]
	n := g.Node(id)

	if n.Marker == hir.MarkerStart {
		s.addStartMarker(g, id, parent)
	} else {
		s.addEndMarker(g, n.Params, parent)
	}
}

func (s *Sequencer) addGamma(g *hir.Graph, id hir.Id) {
	n := g.Node(id)
	condition := n.Params[len(n.Params)-1]
	conditionReg := s.registers.Assigned().Get(condition)

	count := len(n.Regions)
	code := append([]int(nil), s.regions[len(s.regions)-count:]...)
	s.regions = s.regions[:len(s.regions)-count]

	s.add(Select{Condition: conditionReg, Code: code})
}

func (s *Sequencer) addTheta(g *hir.Graph, region hir.Region) {
	code := s.regions[len(s.regions)-1]
	s.regions = s.regions[:len(s.regions)-1]

	endParams := g.Node(region.End).Params
	condition := endParams[len(endParams)-1]
	conditionReg := s.registers.Assigned().Get(condition)

	s.add(Repeat{Code: code, Condition: conditionReg})
}

func (s *Sequencer) addCompound(g *hir.Graph, id hir.Id) {
	n := g.Node(id)
	switch n.Compound {
	case hir.CompoundGamma:
		s.addGamma(g, id)
	case hir.CompoundTheta:
		s.addTheta(g, n.Regions[0])
	default:
		// Every compound node constructed by the builder or a rewrite is
		// either a Gamma or a Theta; reaching neither here means the
		// graph was corrupted upstream rather than that a third
		// lowering rule is simply missing.
		panic(diagnostics.NewFault("sequencer: node %d has unrecognized compound kind %v", id, n.Compound))
	}
}

func (s *Sequencer) findParents(g *hir.Graph) {
	for k := range s.parents {
		delete(s.parents, k)
	}
	for id := 0; id < g.Len(); id++ {
		n := g.Node(hir.Id(id))
		if n.Kind != hir.KindCompound {
			continue
		}
		for _, region := range n.Regions {
			s.parents[region.Start] = hir.Id(id)
			s.parents[region.End] = hir.Id(id)
		}
	}
}

// Sequence lowers g (already rewritten and swept) into a Program.
func (s *Sequencer) Sequence(g *hir.Graph, roots []hir.Id) Program {
	s.findParents(g)
	live := s.order.Compute(g, roots)
	s.reset(g, live)

	for _, id := range live {
		n := g.Node(id)
		switch n.Kind {
		case hir.KindSimple:
			s.addSimple(g, id)
		case hir.KindMarker:
			s.addMarker(g, id)
		case hir.KindCompound:
			s.addCompound(g, id)
		}
	}

	bodies := s.bodies
	s.bodies = nil

	return Program{Bodies: bodies, Locals: s.registers.RegisterCount()}
}
