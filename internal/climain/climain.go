// Package climain implements telepathy's command dispatch as an
// importable function, so both cmd/telepathy/main.go and the testscript
// integration harness under tests/ can drive the same logic without
// shelling out to a built binary.
package climain

import (
	"fmt"
	"os"

	"telepathy/cmd/telepathy/commands"
	"telepathy/internal/pipeline"
)

const version = "0.1.0"

var targetAliases = map[string]string{
	"c":         "c",
	"lua":       "lua",
	"python":    "python",
	"py":        "python",
	"brainfuck": "brainfuck",
	"bf":        "brainfuck",
	"dot":       "dot",
}

var commandTargets = map[string]pipeline.Target{
	"c":         pipeline.TargetC,
	"lua":       pipeline.TargetLua,
	"python":    pipeline.TargetPython,
	"brainfuck": pipeline.TargetBrainfuck,
	"dot":       pipeline.TargetDot,
}

// Main runs one telepathy invocation given its argument vector (excluding
// the program name) and returns the process exit code.
func Main(args []string) int {
	if len(args) == 0 {
		showUsage()
		return 1
	}

	cmd := args[0]
	rest := args[1:]

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return 0
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println("telepathy", version)
		return 0
	}

	switch cmd {
	case "run":
		return report(commands.RunCommand(rest))
	case "serve":
		return report(commands.ServeCommand(rest))
	case "llvm":
		return report(commands.LLVMCommand(rest))
	}

	resolved, ok := targetAliases[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "telepathy: unknown command %q\n", cmd)
		showUsage()
		return 1
	}

	return report(commands.EmitCommand(commandTargets[resolved], rest))
}

func report(err error) int {
	if err != nil {
		fmt.Fprintf(os.Stderr, "telepathy: %v\n", err)
		return 1
	}
	return 0
}

func showUsage() {
	fmt.Println(`telepathy <dot|c|lua|python|brainfuck|llvm> [input] [output]
  --fold-identity          enable identity-folding rewrites
  --fold-arithmetic        enable pure-arithmetic folding
  --elide-memory           enable load/store elision
  --optimize / -O          enable all three rewrite families
  --cache-dsn=<dsn>        compile cache location (default sqlite file)
  --no-cache               disable the compile cache
  --dump-hir / --dump-mir  debug dumps via kr/pretty
  --stats                  print humanized timing/size summary

telepathy run [input]      execute via the reference interpreter
telepathy serve [addr]     start the websocket live-compile server`)
}
