package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/lunalang/luna/internal/gc"
)

// gcTraceEnabled is read once per process; LUNA_GC_TRACE=1 turns on the
// verbose collector-cycle tracing SPEC_FULL.md §1.2 describes.
var gcTraceEnabled = os.Getenv("LUNA_GC_TRACE") == "1"

// traceCompile prints the byte-count/phase snapshot for the compile about
// to run, tagged with runID so interleaved REPL/import diagnostics in
// verbose mode can be correlated back to the compile that produced them.
func traceCompile(runID uuid.UUID, c *gc.Collector) {
	if !gcTraceEnabled {
		return
	}
	fmt.Fprintf(os.Stderr, "[gc %s] phase=%d allocated=%s\n",
		runID, c.Phase(), humanize.Bytes(c.BytesAllocated()))
}
