package commands

import (
	"fmt"
	"os"

	"telepathy/internal/interp"
	"telepathy/internal/pipeline"
	"telepathy/internal/rewrite"
)

// RunCommand implements "telepathy run [input]": compile with every
// rewrite family enabled and execute directly via the reference
// interpreter, with the process's own stdin/stdout wired through.
func RunCommand(args []string) error {
	var input string
	if len(args) > 0 {
		input = args[0]
	}

	source, err := readSource(input)
	if err != nil {
		return err
	}

	compiled, err := pipeline.Run(source, rewrite.All())
	if err != nil {
		return fmt.Errorf("%s: %w", displayName(input), err)
	}

	if err := interp.Run(compiled.Program, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("%s: %w", displayName(input), err)
	}
	return nil
}
