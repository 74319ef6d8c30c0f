package codegen

import (
	"fmt"
	"strings"

	"telepathy/internal/mir"
)

// decompiler re-synthesizes plain brainfuck source from a sequenced
// program by symbolically tracking which register currently names the
// pointer, the memory state, and the IO state, and recognizing the
// fixed instruction shapes the sequencer emits for each source token. It
// only understands the un-rewritten (or lightly rewritten) shapes this
// compiler itself produces; anything else is reported as an error rather
// than silently mistranslated. A loop is recognized only when its Select
// has an empty skip arm and a taken arm holding nothing but the Repeat;
// the sequencer usually places register moves in those arms, and such
// loops are reported as errors.
type decompiler struct {
	alias   map[mir.Register]mir.Register
	literal map[mir.Register]uint64

	ptr                      mir.Register
	mem                      mir.Register
	io                       mir.Register
	ptrSeen, memSeen, ioSeen bool

	// pendingCell maps a register holding a not-yet-stored cell value to
	// the source fragment that produced it: "+", "-", or ",".
	pendingCell  map[mir.Register]string
	pendingDelta map[mir.Register]uint64
	// freshLoad marks a register as a just-loaded, unmodified cell value,
	// eligible to be the operand of a "." without further arithmetic.
	freshLoad map[mir.Register]bool
}

// Decompile attempts to recover brainfuck source from program.
func Decompile(program mir.Program) (string, error) {
	d := &decompiler{
		alias:        make(map[mir.Register]mir.Register),
		literal:      make(map[mir.Register]uint64),
		pendingCell:  make(map[mir.Register]string),
		pendingDelta: make(map[mir.Register]uint64),
		freshLoad:    make(map[mir.Register]bool),
	}

	var sb strings.Builder
	if err := d.block(&sb, program.Bodies, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (d *decompiler) resolve(r mir.Register) mir.Register {
	for {
		next, ok := d.alias[r]
		if !ok {
			return r
		}
		r = next
	}
}

func (d *decompiler) block(sb *strings.Builder, bodies [][]mir.Instruction, index int) error {
	for _, insn := range bodies[index] {
		if err := d.insn(sb, bodies, insn); err != nil {
			return err
		}
	}
	return nil
}

func (d *decompiler) insn(sb *strings.Builder, bodies [][]mir.Instruction, insn mir.Instruction) error {
	switch v := insn.(type) {
	case mir.Memory:
		d.mem, d.memSeen = v.Result, true
		return nil
	case mir.IO:
		d.io, d.ioSeen = v.Result, true
		return nil
	case mir.Integer:
		d.literal[v.Result] = v.Value
		return nil
	case mir.Move:
		d.alias[v.To] = d.resolve(v.From)
		return nil
	case mir.Add:
		return d.arith(sb, v.Result, v.Lhs, v.Rhs, "+", ">")
	case mir.Sub:
		return d.arith(sb, v.Result, v.Lhs, v.Rhs, "-", "<")
	case mir.Load:
		return d.load(v)
	case mir.Store:
		return d.store(sb, v)
	case mir.Ask:
		return d.ask(v)
	case mir.Tell:
		return d.tell(sb, v)
	case mir.Select:
		return d.selectInsn(sb, bodies, v)
	case mir.Repeat:
		return fmt.Errorf("codegen: brainfuck: repeat reached outside a select arm")
	}
	return nil
}

// arith classifies an Add/Sub with a literal operand as either a pointer
// shift (when its non-literal operand is the current pointer register,
// emitting ptrToken repeated k times and rebasing the pointer) or a
// pending cell update (recorded for the Store that consumes it, emitting
// cellToken repeated k times).
func (d *decompiler) arith(sb *strings.Builder, result, lhs, rhs mir.Register, cellToken, ptrToken string) error {
	k, ok := d.literal[d.resolve(rhs)]
	if !ok {
		return fmt.Errorf("codegen: brainfuck: arithmetic on register %d has a non-literal operand", result)
	}

	// A pointer shift can only be told apart from a cell update by
	// context: cell arithmetic always consumes a just-loaded cell value,
	// which in turn requires a pointer to already exist. So before the
	// pointer is bootstrapped, this must be the pointer's own first
	// shift; afterward, it's a shift only if it continues the pointer's
	// own register thread.
	isPointer := !d.ptrSeen || d.resolve(lhs) == d.resolve(d.ptr)
	if isPointer {
		sb.WriteString(strings.Repeat(ptrToken, int(k)))
		d.ptr, d.ptrSeen = result, true
		return nil
	}

	if !d.freshLoad[d.resolve(lhs)] {
		return fmt.Errorf("codegen: brainfuck: arithmetic on register %d does not consume a bare cell read", result)
	}
	d.pendingCell[result] = cellToken
	d.pendingDelta[result] = k
	return nil
}

func (d *decompiler) load(v mir.Load) error {
	if !d.ptrSeen {
		d.ptr, d.ptrSeen = d.resolve(v.Pointer), true
	}
	if d.resolve(v.Pointer) != d.resolve(d.ptr) || d.resolve(v.State) != d.resolve(d.mem) {
		return fmt.Errorf("codegen: brainfuck: load at register %d does not address the canonical cell", v.Result)
	}
	d.freshLoad[v.Result] = true
	return nil
}

func (d *decompiler) store(sb *strings.Builder, v mir.Store) error {
	if !d.ptrSeen {
		d.ptr, d.ptrSeen = d.resolve(v.Pointer), true
	}
	if d.resolve(v.Pointer) != d.resolve(d.ptr) || d.resolve(v.State) != d.resolve(d.mem) {
		return fmt.Errorf("codegen: brainfuck: store does not address the canonical cell")
	}
	value := d.resolve(v.Value)
	kind, ok := d.pendingCell[value]
	if !ok || (kind != "+" && kind != "-" && kind != ",") {
		return fmt.Errorf("codegen: brainfuck: store value at register %d is not a recognized cell update", v.Value)
	}
	if kind == "," {
		sb.WriteString(",")
		return nil
	}
	sb.WriteString(strings.Repeat(kind, int(d.pendingDelta[value])))
	return nil
}

func (d *decompiler) ask(v mir.Ask) error {
	if d.resolve(v.State) != d.resolve(d.io) {
		return fmt.Errorf("codegen: brainfuck: ask at register %d does not use the canonical io state", v.Result)
	}
	d.pendingCell[v.Result] = ","
	return nil
}

func (d *decompiler) tell(sb *strings.Builder, v mir.Tell) error {
	if d.resolve(v.State) != d.resolve(d.io) {
		return fmt.Errorf("codegen: brainfuck: tell does not use the canonical io state")
	}
	if !d.freshLoad[d.resolve(v.Value)] {
		return fmt.Errorf("codegen: brainfuck: tell operand is not a bare cell read")
	}
	sb.WriteString(".")
	return nil
}

func (d *decompiler) selectInsn(sb *strings.Builder, bodies [][]mir.Instruction, v mir.Select) error {
	if len(v.Code) != 2 {
		return fmt.Errorf("codegen: brainfuck: select with %d arms has no brainfuck equivalent", len(v.Code))
	}
	if len(bodies[v.Code[0]]) != 0 {
		return fmt.Errorf("codegen: brainfuck: select's skip arm is not empty")
	}

	body := bodies[v.Code[1]]
	if len(body) != 1 {
		return fmt.Errorf("codegen: brainfuck: select's taken arm is not a single loop")
	}
	repeat, ok := body[0].(mir.Repeat)
	if !ok {
		return fmt.Errorf("codegen: brainfuck: select's taken arm does not wrap a loop")
	}

	sb.WriteString("[")
	if err := d.block(sb, bodies, repeat.Code); err != nil {
		return err
	}
	sb.WriteString("]")
	return nil
}
