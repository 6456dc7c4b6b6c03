package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/lunalang/luna/internal/compiler"
	"github.com/lunalang/luna/internal/config"
	"github.com/lunalang/luna/internal/gc"
)

// runREPL mirrors the original repl()'s shape exactly: one line read into a
// fixed-size buffer, compiled (and, by a conforming runtime.Interpreter,
// run) on its own, with no cross-line source accumulation. SPEC_FULL.md §3
// documents one deliberate deviation: an overlong line gets a reported
// usage diagnostic rather than the original's silent truncation.
func runREPL(rc config.RC) int {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	collector := newCollector(rc)
	alloc := gc.NewAllocator(collector)
	comp := compiler.New(alloc, collector, fsModuleReader{baseDir: "."})

	in := bufio.NewReaderSize(os.Stdin, config.ReplLineLimit)

	if interactive {
		fmt.Println(versionBanner())
	}

	for {
		if interactive {
			fmt.Print("> ")
		}

		line, overlong, err := readLine(in, config.ReplLineLimit)
		if err != nil {
			fmt.Println()
			return exitSuccess
		}
		if line == "exit" {
			return exitSuccess
		}
		if overlong {
			fmt.Fprintf(os.Stderr, "luna: line exceeds %d bytes, discarding remainder.\n", config.ReplLineLimit)
		}

		// A run ID correlates this line's compile-time GC trace output with
		// the compile that produced it, per SPEC_FULL.md §1.2's use of
		// google/uuid — only emitted when tracing is on.
		traceCompile(uuid.New(), collector)

		fn, diags := comp.Compile("<repl>", line)
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		if fn == nil {
			continue
		}
		// As in runFile, actually executing fn is a conforming
		// runtime.Interpreter's job (internal/runtime), out of scope here.
	}
}

// readLine reads one line (up to and excluding the trailing '\n') from r,
// capping the retained prefix at limit bytes. Bytes beyond limit are still
// consumed from r (so the next readLine call starts at the next line) but
// are not returned; overlong reports whether any were discarded.
func readLine(r *bufio.Reader, limit int) (line string, overlong bool, err error) {
	var buf []byte
	for {
		b, e := r.ReadByte()
		if e != nil {
			if len(buf) > 0 {
				return string(buf), overlong, nil
			}
			return "", overlong, e
		}
		if b == '\n' {
			break
		}
		if len(buf) < limit {
			buf = append(buf, b)
		} else {
			overlong = true
		}
	}
	if n := len(buf); n > 0 && buf[n-1] == '\r' {
		buf = buf[:n-1]
	}
	return string(buf), overlong, nil
}
