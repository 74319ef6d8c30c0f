package codegen

import (
	"fmt"
	"io"

	"telepathy/internal/mir"
)

// WritePython renders program as Python 3 source backed by a dict tape
// (unset cells default to zero via a subclassed mapping), matching the
// sparse-tape convention the HIR's Load/Store already assume.
func WritePython(w io.Writer, program mir.Program) error {
	lines := []string{
		"import sys",
		"",
		"class Tape(dict):",
		"\tdef __missing__(self, key):",
		"\t\treturn 0",
		"",
		"memory = Tape()",
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for i := 0; i < program.Locals; i++ {
		if _, err := fmt.Fprintf(w, "loc_%d = None\n", i); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return writePythonBlock(w, Tab{}, program.Bodies, 0)
}

func writePythonBlock(w io.Writer, tab Tab, bodies [][]mir.Instruction, index int) error {
	if len(bodies[index]) == 0 {
		_, err := fmt.Fprintf(w, "%spass\n", tab)
		return err
	}
	for _, insn := range bodies[index] {
		if _, err := fmt.Fprint(w, tab.String()); err != nil {
			return err
		}
		if err := writePythonInsn(w, tab, bodies, insn); err != nil {
			return err
		}
	}
	return nil
}

func writePythonInsn(w io.Writer, tab Tab, bodies [][]mir.Instruction, insn mir.Instruction) error {
	switch v := insn.(type) {
	case mir.Memory:
		_, err := fmt.Fprintf(w, "loc_%d = 0\n", v.Result)
		return err
	case mir.IO:
		_, err := fmt.Fprintf(w, "loc_%d = 0\n", v.Result)
		return err
	case mir.Integer:
		_, err := fmt.Fprintf(w, "loc_%d = %d\n", v.Result, v.Value)
		return err
	case mir.Move:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d\n", v.To, v.From)
		return err
	case mir.Add:
		_, err := fmt.Fprintf(w, "loc_%d = (loc_%d + loc_%d) & 0xFFFFFFFFFFFFFFFF\n", v.Result, v.Lhs, v.Rhs)
		return err
	case mir.Sub:
		_, err := fmt.Fprintf(w, "loc_%d = (loc_%d - loc_%d) & 0xFFFFFFFFFFFFFFFF\n", v.Result, v.Lhs, v.Rhs)
		return err
	case mir.Load:
		_, err := fmt.Fprintf(w, "loc_%d = memory[loc_%d + loc_%d]\n", v.Result, v.Pointer, v.State)
		return err
	case mir.Store:
		_, err := fmt.Fprintf(w, "memory[loc_%d + loc_%d] = loc_%d & 0xFF\n", v.Pointer, v.State, v.Value)
		return err
	case mir.Ask:
		_, err := fmt.Fprintf(w, "loc_%d = ord(sys.stdin.read(1) or '\\xff')\n", v.Result)
		return err
	case mir.Tell:
		_, err := fmt.Fprintf(w, "sys.stdout.write(chr(loc_%d & 0xFF))\n", v.Value)
		return err
	case mir.Select:
		return writePythonSelect(w, tab, bodies, v)
	case mir.Repeat:
		return writePythonRepeat(w, tab, bodies, v)
	}
	return nil
}

func writePythonSelect(w io.Writer, tab Tab, bodies [][]mir.Instruction, v mir.Select) error {
	last := v.Code[len(v.Code)-1]

	for i, code := range v.Code[:len(v.Code)-1] {
		// The caller has already written the indent of the first line.
		keyword, indent := "if", ""
		if i > 0 {
			keyword, indent = "elif", tab.String()
		}
		if _, err := fmt.Fprintf(w, "%s%s loc_%d == %d:\n", indent, keyword, v.Condition, i); err != nil {
			return err
		}
		if err := writePythonBlock(w, tab.Add(), bodies, code); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%selse:\n", tab); err != nil {
		return err
	}
	return writePythonBlock(w, tab.Add(), bodies, last)
}

func writePythonRepeat(w io.Writer, tab Tab, bodies [][]mir.Instruction, v mir.Repeat) error {
	if _, err := fmt.Fprintln(w, "while True:"); err != nil {
		return err
	}
	if err := writePythonBlock(w, tab.Add(), bodies, v.Code); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\tif loc_%d == 0:\n%s\t\tbreak\n", tab, v.Condition, tab)
	return err
}
