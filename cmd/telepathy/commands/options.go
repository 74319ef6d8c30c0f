// Package commands implements one function per telepathy subcommand,
// each taking the subcommand's own argument slice and returning an error
// for main to report, mirroring the teacher CLI's dispatch convention.
package commands

import (
	"fmt"
	"strings"
	"time"

	"telepathy/internal/cache"
	"telepathy/internal/cliutil"
	"telepathy/internal/rewrite"
)

// emitOptions holds the flags shared by every target subcommand
// (dot/c/lua/python/brainfuck/llvm), parsed manually since telepathy has
// no dependency on the stdlib flag package's GNU-style behavior.
type emitOptions struct {
	families rewrite.Families
	cacheDSN string
	noCache  bool
	dumpHIR  bool
	dumpMIR  bool
	stats    bool
	paths    []string
}

const defaultCacheDSN = "telepathy-cache.db"

func parseEmitOptions(args []string) (emitOptions, error) {
	opts := emitOptions{cacheDSN: defaultCacheDSN}
	for _, arg := range args {
		switch arg {
		case "--fold-identity":
			opts.families.Identity = true
		case "--fold-arithmetic":
			opts.families.Arithmetic = true
		case "--elide-memory":
			opts.families.MemElide = true
		case "--optimize", "-O":
			opts.families = rewrite.All()
		case "--no-cache":
			opts.noCache = true
		case "--dump-hir":
			opts.dumpHIR = true
		case "--dump-mir":
			opts.dumpMIR = true
		case "--stats":
			opts.stats = true
		default:
			if strings.HasPrefix(arg, "--cache-dsn=") {
				opts.cacheDSN = strings.TrimPrefix(arg, "--cache-dsn=")
				continue
			}
			if strings.HasPrefix(arg, "-") {
				return emitOptions{}, fmt.Errorf("unrecognized flag %q", arg)
			}
			opts.paths = append(opts.paths, arg)
		}
	}
	return opts, nil
}

// openCache honors --no-cache, returning a nil *cache.Cache when caching
// is disabled so pipeline.CachedEmit falls back to uncached compilation.
func (o emitOptions) openCache() (*cache.Cache, error) {
	if o.noCache {
		return nil, nil
	}
	c, err := cache.Open(o.cacheDSN)
	if err != nil {
		return nil, fmt.Errorf("opening compile cache: %w", err)
	}
	return c, nil
}

func reportStats(enabled bool, sourceBytes, locals, bodies int, elapsed time.Duration) {
	if !enabled {
		return
	}
	cliutil.Fprint(stderrWriter, cliutil.Stats{
		SourceBytes: sourceBytes,
		Locals:      locals,
		Bodies:      bodies,
		Elapsed:     elapsed,
	})
}
