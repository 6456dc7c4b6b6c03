package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lunalang/luna/internal/compiler"
	"github.com/lunalang/luna/internal/config"
	"github.com/lunalang/luna/internal/gc"
	"github.com/lunalang/luna/internal/utils"
)

// fsModuleReader resolves `import "name"` against the directory containing
// the file currently being interpreted, matching the original's
// import-relative-to-script behavior. BOM stripping for imported files
// happens inside internal/compiler (see statements.go's stripBOM), not
// here — SPEC_FULL.md §3 keeps that asymmetry with the top-level file,
// which never has its BOM touched.
type fsModuleReader struct {
	baseDir string
}

func (r fsModuleReader) ReadModule(filename string) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.baseDir, filename))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// runFile compiles and (were a runtime.Interpreter wired in) would execute
// the named script. Unlike the REPL's single-line-at-a-time buffering, a
// file is read and compiled as one unit, matching the original's `readFile`
// + single `interpret` call.
func runFile(path string, rc config.RC) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "luna: can't open file '%s'.\n", path)
		return exitIOError
	}

	moduleName := utils.ExtractModuleName(path)
	reader := fsModuleReader{baseDir: filepath.Dir(path)}

	collector := newCollector(rc)
	alloc := gc.NewAllocator(collector)
	comp := compiler.New(alloc, collector, reader)

	fn, diags := comp.Compile(moduleName, string(data))
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if fn == nil {
		return exitCompileError
	}

	// Execution is out of this repository's scope (spec.md §1: the VM loop
	// is an external collaborator specified only by internal/runtime's
	// Interpreter interface). A conforming embedder plugs one in here;
	// compiling successfully is this driver's own contract.
	return exitSuccess
}
