// Package config centralizes Luna's ambient, process-wide constants: the
// recognized source extension, the REPL/version banner, and the GC tuning
// knobs an embedder can override from ~/.lunarc.yaml. Grounded on
// _examples/funvibe-funxy/internal/config, which plays the same role for
// Funxy's own source extensions and version string.
package config

// Version is the current Luna version, reported by `luna --version`.
var Version = "0.1.0"

// SourceExt is Luna's single recognized source file extension. Unlike the
// teacher (which recognizes several interchangeable extensions), Luna's
// grammar names exactly one: `import "name"` always resolves to
// "name"+SourceExt (spec.md §4.3/§6).
const SourceExt = ".luna"

// TrimSourceExt removes a trailing SourceExt from name, if present.
func TrimSourceExt(name string) string {
	if len(name) >= len(SourceExt) && name[len(name)-len(SourceExt):] == SourceExt {
		return name[:len(name)-len(SourceExt)]
	}
	return name
}

// HasSourceExt reports whether path ends with SourceExt.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceExt) && path[len(path)-len(SourceExt):] == SourceExt
}

// GC tuning defaults, overridable by ~/.lunarc.yaml. InitialHeapThreshold
// mirrors the collector's built-in starting nextGC (see internal/gc.New);
// GrowFactor mirrors GC_HEAP_GROW_FACTOR (internal/gc.heapGrowFactor).
const (
	DefaultInitialHeapThreshold = 1 << 20
	DefaultGrowFactor           = 1.5
	DefaultReplHistorySize      = 1000
)

// ReplLineLimit is the REPL's per-line input buffer size (spec.md §6: "line
// buffer <= 1024 bytes"), carried over from the original `repl()`'s fixed
// `char line[1024]`.
const ReplLineLimit = 1024
