// Package cliutil holds the small ergonomic helpers the telepathy command
// shares across subcommands: color-on-a-real-terminal detection, humanized
// stats output, and pretty-printed debug dumps.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether w is a real terminal, so escape codes are
// only written when something will actually render them.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Stats is the summary printed by --stats: how much source went in, how
// long compilation took, and how large the sequenced program came out.
type Stats struct {
	SourceBytes int
	Locals      int
	Bodies      int
	Elapsed     time.Duration
}

// Fprint writes a humanized one-line summary of s to w.
func Fprint(w io.Writer, s Stats) {
	fmt.Fprintf(w, "%s source, %d registers, %d bodies, compiled in %s\n",
		humanize.Bytes(uint64(s.SourceBytes)), s.Locals, s.Bodies, s.Elapsed.Round(time.Microsecond))
}

// Dump pretty-prints v (typically a *hir.Graph or mir.Program) to w for
// --dump-hir/--dump-mir, one field per line rather than go's default
// single-line %#v rendering.
func Dump(w io.Writer, label string, v any) {
	fmt.Fprintf(w, "%s:\n", label)
	fmt.Fprintf(w, "%# v\n", pretty.Formatter(v))
}
