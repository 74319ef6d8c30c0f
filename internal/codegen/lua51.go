package codegen

import (
	"fmt"
	"io"

	"telepathy/internal/mir"
)

const (
	lua51Memory = "setmetatable({}, { __index = function() return 0 end })"
	lua51IO     = "{ tell = function(n) io.write(string.char(n)) end, ask = function() return string.byte(io.read(1)) end }"
)

// WriteLua51 renders program as Lua 5.1 source: the tape is a sparse
// table defaulting unset cells to zero, and IO is a closure pair. Reading
// past EOF lets string.byte(nil) raise rather than returning a sentinel,
// an asymmetry with the C89 target's -1 convention kept deliberately.
func WriteLua51(w io.Writer, program mir.Program) error {
	for i := 0; i < program.Locals; i++ {
		if _, err := fmt.Fprintf(w, "local loc_%d\n", i); err != nil {
			return err
		}
	}
	return writeLua51Block(w, Tab{}, program.Bodies, 0)
}

func writeLua51Block(w io.Writer, tab Tab, bodies [][]mir.Instruction, index int) error {
	for _, insn := range bodies[index] {
		if _, err := fmt.Fprint(w, tab.String()); err != nil {
			return err
		}
		if err := writeLua51Insn(w, tab, bodies, insn); err != nil {
			return err
		}
	}
	return nil
}

func writeLua51Insn(w io.Writer, tab Tab, bodies [][]mir.Instruction, insn mir.Instruction) error {
	switch v := insn.(type) {
	case mir.Memory:
		_, err := fmt.Fprintf(w, "loc_%d = %s\n", v.Result, lua51Memory)
		return err
	case mir.IO:
		_, err := fmt.Fprintf(w, "loc_%d = %s\n", v.Result, lua51IO)
		return err
	case mir.Integer:
		_, err := fmt.Fprintf(w, "loc_%d = %d\n", v.Result, v.Value)
		return err
	case mir.Move:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d\n", v.To, v.From)
		return err
	case mir.Add:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d + loc_%d\n", v.Result, v.Lhs, v.Rhs)
		return err
	case mir.Sub:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d - loc_%d\n", v.Result, v.Lhs, v.Rhs)
		return err
	case mir.Load:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d[loc_%d]\n", v.Result, v.State, v.Pointer)
		return err
	case mir.Store:
		_, err := fmt.Fprintf(w, "loc_%d[loc_%d] = loc_%d\n", v.State, v.Pointer, v.Value)
		return err
	case mir.Ask:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d.ask()\n", v.Result, v.State)
		return err
	case mir.Tell:
		_, err := fmt.Fprintf(w, "loc_%d.tell(loc_%d)\n", v.State, v.Value)
		return err
	case mir.Select:
		return writeLua51Select(w, tab, bodies, v)
	case mir.Repeat:
		return writeLua51Repeat(w, tab, bodies, v)
	}
	return nil
}

func writeLua51Select(w io.Writer, tab Tab, bodies [][]mir.Instruction, v mir.Select) error {
	last := v.Code[len(v.Code)-1]

	for i, code := range v.Code[:len(v.Code)-1] {
		if _, err := fmt.Fprintf(w, "if loc_%d == %d then\n", v.Condition, i); err != nil {
			return err
		}
		if err := writeLua51Block(w, tab.Add(), bodies, code); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%selse", tab); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writeLua51Block(w, tab.Add(), bodies, last); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%send\n", tab)
	return err
}

func writeLua51Repeat(w io.Writer, tab Tab, bodies [][]mir.Instruction, v mir.Repeat) error {
	if _, err := fmt.Fprintln(w, "repeat"); err != nil {
		return err
	}
	if err := writeLua51Block(w, tab.Add(), bodies, v.Code); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%suntil loc_%d == 0\n", tab, v.Condition)
	return err
}
