// Package interp executes a sequenced mir.Program directly, without
// emitting any target's text form. It backs the "run" subcommand and the
// differential tests that compare a program's output with and without
// the rewrite families enabled.
package interp

import (
	"bufio"
	"fmt"
	"io"

	"telepathy/internal/mir"
)

// Machine holds the register file and sparse tape a running Program
// needs. Registers are typed uint64 to match the wrapping 64-bit
// arithmetic the HIR's Add/Sub nodes assume; the tape is a sparse map
// since a brainfuck program's reachable cell range is unbounded in
// either direction from the origin.
type Machine struct {
	registers []uint64
	tape      map[uint64]byte

	in  *bufio.Reader
	out *bufio.Writer
}

// NewMachine allocates a machine with enough registers for program and
// IO wired to in/out.
func NewMachine(locals int, in io.Reader, out io.Writer) *Machine {
	return &Machine{
		registers: make([]uint64, locals),
		tape:      make(map[uint64]byte),
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
	}
}

// Run executes program to completion, flushing any buffered output
// before returning.
func Run(program mir.Program, in io.Reader, out io.Writer) error {
	m := NewMachine(program.Locals, in, out)
	if err := m.runBody(program.Bodies, 0); err != nil {
		return err
	}
	return m.out.Flush()
}

func (m *Machine) runBody(bodies [][]mir.Instruction, index int) error {
	for _, insn := range bodies[index] {
		switch v := insn.(type) {
		case mir.Memory:
			m.registers[v.Result] = 0
		case mir.IO:
			m.registers[v.Result] = 0
		case mir.Integer:
			m.registers[v.Result] = v.Value
		case mir.Move:
			m.registers[v.To] = m.registers[v.From]
		case mir.Add:
			m.registers[v.Result] = m.registers[v.Lhs] + m.registers[v.Rhs]
		case mir.Sub:
			m.registers[v.Result] = m.registers[v.Lhs] - m.registers[v.Rhs]
		case mir.Load:
			addr := m.registers[v.Pointer] + m.registers[v.State]
			m.registers[v.Result] = uint64(m.tape[addr])
		case mir.Store:
			addr := m.registers[v.Pointer] + m.registers[v.State]
			m.tape[addr] = byte(m.registers[v.Value])
		case mir.Ask:
			b, err := m.in.ReadByte()
			if err == io.EOF {
				// Widened -1, matching the C89 target's fgetc-at-EOF convention.
				m.registers[v.Result] = ^uint64(0)
			} else if err != nil {
				return fmt.Errorf("interp: read: %w", err)
			} else {
				m.registers[v.Result] = uint64(b)
			}
		case mir.Tell:
			if err := m.out.WriteByte(byte(m.registers[v.Value])); err != nil {
				return fmt.Errorf("interp: write: %w", err)
			}
		case mir.Select:
			condition := m.registers[v.Condition]
			target := len(v.Code) - 1
			if int(condition) < len(v.Code)-1 {
				target = int(condition)
			}
			if err := m.runBody(bodies, v.Code[target]); err != nil {
				return err
			}
		case mir.Repeat:
			for {
				if err := m.runBody(bodies, v.Code); err != nil {
					return err
				}
				if m.registers[v.Condition] == 0 {
					break
				}
			}
		}
	}
	return nil
}
