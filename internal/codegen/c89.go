package codegen

import (
	"fmt"
	"io"

	"telepathy/internal/mir"
)

const (
	c89MemorySize  = 8192
	c89MemoryStart = c89MemorySize / 2
)

// WriteC89 renders program as a freestanding C89 translation unit with an
// 8192-byte static tape, the pointer starting at its midpoint.
func WriteC89(w io.Writer, program mir.Program) error {
	if _, err := fmt.Fprintln(w, "#include <stdint.h>"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "#include <stdio.h>\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "int main() {"); err != nil {
		return err
	}
	if err := writeC89Entry(w, Tab{}.Add(), program); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func writeC89Entry(w io.Writer, tab Tab, program mir.Program) error {
	if _, err := fmt.Fprintf(w, "%suint8_t memory[%d] = { 0 };\n", tab, c89MemorySize); err != nil {
		return err
	}
	for i := 0; i < program.Locals; i++ {
		if _, err := fmt.Fprintf(w, "%suint32_t loc_%d;\n", tab, i); err != nil {
			return err
		}
	}
	if err := writeC89Block(w, tab, program.Bodies, 0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%sreturn 0;\n", tab)
	return err
}

func writeC89Block(w io.Writer, tab Tab, bodies [][]mir.Instruction, index int) error {
	for _, insn := range bodies[index] {
		if _, err := fmt.Fprint(w, tab.String()); err != nil {
			return err
		}
		if err := writeC89Insn(w, tab, bodies, insn); err != nil {
			return err
		}
	}
	return nil
}

func writeC89Insn(w io.Writer, tab Tab, bodies [][]mir.Instruction, insn mir.Instruction) error {
	switch v := insn.(type) {
	case mir.Memory:
		_, err := fmt.Fprintf(w, "loc_%d = %d;\n", v.Result, c89MemoryStart)
		return err
	case mir.IO:
		_, err := fmt.Fprintf(w, "loc_%d = 0; /* io state is no-op in C */\n", v.Result)
		return err
	case mir.Integer:
		_, err := fmt.Fprintf(w, "loc_%d = %d;\n", v.Result, v.Value)
		return err
	case mir.Move:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d;\n", v.To, v.From)
		return err
	case mir.Add:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d + loc_%d;\n", v.Result, v.Lhs, v.Rhs)
		return err
	case mir.Sub:
		_, err := fmt.Fprintf(w, "loc_%d = loc_%d - loc_%d;\n", v.Result, v.Lhs, v.Rhs)
		return err
	case mir.Load:
		_, err := fmt.Fprintf(w, "loc_%d = memory[loc_%d + loc_%d];\n", v.Result, v.Pointer, v.State)
		return err
	case mir.Store:
		_, err := fmt.Fprintf(w, "memory[loc_%d + loc_%d] = loc_%d;\n", v.Pointer, v.State, v.Value)
		return err
	case mir.Ask:
		_, err := fmt.Fprintf(w, "loc_%d = fgetc(stdin);\n", v.Result)
		return err
	case mir.Tell:
		_, err := fmt.Fprintf(w, "fputc(loc_%d, stdout);\n", v.Value)
		return err
	case mir.Select:
		return writeC89Select(w, tab, bodies, v)
	case mir.Repeat:
		return writeC89Repeat(w, tab, bodies, v)
	}
	return nil
}

func writeC89Select(w io.Writer, tab Tab, bodies [][]mir.Instruction, v mir.Select) error {
	last := v.Code[len(v.Code)-1]

	if _, err := fmt.Fprintf(w, "switch (loc_%d) {\n", v.Condition); err != nil {
		return err
	}
	for i, code := range v.Code[:len(v.Code)-1] {
		if _, err := fmt.Fprintf(w, "%scase %d:\n", tab, i); err != nil {
			return err
		}
		if err := writeC89Block(w, tab.Add(), bodies, code); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%sbreak;\n", tab); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%sdefault:\n", tab); err != nil {
		return err
	}
	if err := writeC89Block(w, tab.Add(), bodies, last); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s}\n", tab)
	return err
}

func writeC89Repeat(w io.Writer, tab Tab, bodies [][]mir.Instruction, v mir.Repeat) error {
	if _, err := fmt.Fprintln(w, "do {"); err != nil {
		return err
	}
	if err := writeC89Block(w, tab.Add(), bodies, v.Code); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s} while (loc_%d);\n", tab, v.Condition)
	return err
}
