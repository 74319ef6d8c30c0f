package commands

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"telepathy/internal/pipeline"
	"telepathy/internal/rewrite"
	"telepathy/internal/server"
)

const defaultServeAddr = "localhost:7627"

// ServeCommand implements "telepathy serve [addr]": a websocket endpoint
// that compiles whatever source text it receives to the C89 target and
// reports the result (or diagnostics) back on the same connection.
// --stats prints a periodic connected-session count to stderr.
func ServeCommand(args []string) error {
	addr := defaultServeAddr
	stats := false
	for _, arg := range args {
		switch {
		case arg == "--stats":
			stats = true
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unrecognized flag %q", arg)
		default:
			addr = arg
		}
	}

	compile := func(source string) server.Result {
		compiled, err := pipeline.Run(source, rewrite.All())
		if err != nil {
			return server.Result{OK: false, Error: err.Error()}
		}
		var sb strings.Builder
		if err := pipeline.Emit(pipeline.TargetC, compiled, &sb); err != nil {
			return server.Result{OK: false, Error: err.Error()}
		}
		return server.Result{
			OK:        true,
			BodyCount: len(compiled.Program.Bodies),
			Locals:    compiled.Program.Locals,
			Output:    sb.String(),
		}
	}

	httpServer, srv, err := server.ListenAndServe(addr, compile)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderrWriter, "telepathy: live-compile server listening on %s\n", addr)

	var statsTick <-chan time.Time
	if stats {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		statsTick = ticker.C
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	for {
		select {
		case <-statsTick:
			fmt.Fprintf(stderrWriter, "telepathy: %d session(s) connected\n", srv.SessionCount())
		case <-stop:
			if err := httpServer.Close(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		}
	}
}
