// Command luna is the CLI driver for the Luna scripting language: a REPL,
// a file interpreter, and a --version banner. Grounded on
// _examples/funvibe-funxy/cmd/funxy/main.go's argument-dispatch shape and
// exit-code conventions, trimmed to the surface spec.md §6 actually asks
// for — the interpreter loop itself is an external collaborator (see
// internal/runtime), so this driver only compiles and reports diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/lunalang/luna/internal/config"
	"github.com/lunalang/luna/internal/gc"
)

// Exit codes, matching spec.md §6 exactly.
const (
	exitSuccess      = 0
	exitUsageError   = 64
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// runMain is the entry point testscript's in-process harness calls for the
// "luna" command it registers — it reads os.Args the same way main does,
// just without calling os.Exit itself (the harness handles that).
func runMain() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	rc, err := config.LoadRC()
	if err != nil {
		fmt.Fprintf(os.Stderr, "luna: reading ~/.lunarc.yaml: %v\n", err)
		return exitIOError
	}

	switch len(args) {
	case 0:
		return runREPL(rc)
	case 1:
		if args[0] == "--version" {
			fmt.Println(versionBanner())
			return exitSuccess
		}
		return runFile(args[0], rc)
	default:
		fmt.Fprintln(os.Stderr, "Usage: luna [path]")
		return exitUsageError
	}
}

func versionBanner() string {
	return fmt.Sprintf("luna %s", config.Version)
}

// newCollector builds a collector honoring the rc file's tuning overrides,
// the same ~/.lunarc.yaml-driven knob SPEC_FULL.md §1.3 assigns to
// gopkg.in/yaml.v3.
func newCollector(rc config.RC) *gc.Collector {
	return gc.NewWithTuning(config.DefaultInitialHeapThreshold, rc.GCGrowFactor)
}
