// Package gc implements Luna's incremental tri-color mark-sweep collector.
// It is grounded directly on LunaVM/src/lmemory.c: the same Idle→Mark→Sweep
// phase machine, the same resumable 8-item mark step, and the same
// marked/on-current-gc bit pair used to tell "survived this cycle" apart
// from "allocated after this cycle started" during sweep.
package gc

import (
	"golang.org/x/exp/slices"

	"github.com/lunalang/luna/internal/object"
)

// Phase is the collector's current state.
type Phase int

const (
	Idle Phase = iota
	Mark
	Sweep
)

// heapGrowFactor matches GC_HEAP_GROW_FACTOR in the source exactly.
const heapGrowFactor = 1.5

// markChunkSize is how many items (roots and gray-worklist entries
// together) a single Mark step handles before yielding back to the allocator, so a long compilation still makes
// incremental progress instead of stopping the world.
const markChunkSize = 8

// RootSource lets an embedding interpreter (the VM, out of scope here)
// contribute its own roots — stack values, call frames, the open-upvalue
// list, globals, the init-string constant — without the collector needing
// to know about VM internals. A nil RootSource means only compiler roots
// and pinned objects are marked, which is the case while this repository
// is used purely as a compiler front end.
type RootSource interface {
	GCRoots() []object.Managed
}

// CompilerRoots is implemented by the active compiler chain. markCompilerRoots
// in the source walks the enclosing-compiler chain marking each function;
// here the compiler supplies that same list directly.
type CompilerRoots interface {
	CompilerRoots() []object.Managed
}

// Collector owns the heap list, the gray worklist, and the phase state
// machine. One Collector is shared by a single compile (and, in a full
// interpreter, its VM).
type Collector struct {
	phase          Phase
	bytesAllocated uint64
	nextGC         uint64
	growFactor     float64

	heap object.Managed // head of the intrusive allocation list

	gray       []object.Managed
	markCursor int // resumes markRoots across calls, mirroring currentMarkIndex

	pinned []object.Managed // stand-in for "push on the VM stack"

	Roots     RootSource
	Compiler  CompilerRoots
	InitName  object.Managed // vm.initString equivalent; may be nil
}

// New returns an idle collector ready to track allocations, with the
// threshold and grow factor the source hard-codes as its starting point.
func New() *Collector {
	return &Collector{nextGC: 1 << 20, growFactor: heapGrowFactor}
}

// NewWithTuning returns an idle collector using caller-supplied starting
// threshold and grow factor, letting an embedder (cmd/luna, honoring
// ~/.lunarc.yaml) override the source's hard-coded constants without the
// collector itself needing to know about configuration files.
func NewWithTuning(initialThreshold uint64, growFactor float64) *Collector {
	c := New()
	c.nextGC = initialThreshold
	if growFactor > 0 {
		c.growFactor = growFactor
	}
	return c
}

// Track registers a freshly allocated object in the heap list and accounts
// for its size, invoking a collection step exactly when reallocate() would:
// when bytesAllocated exceeds nextGC, or when a cycle is already underway
// (so that cycle keeps progressing on every allocation, not just the ones
// that cross the threshold).
func (c *Collector) Track(obj object.Managed, size uint64) {
	obj.GCHeader().Next = c.heap
	c.heap = obj
	c.bytesAllocated += size

	if c.bytesAllocated > c.nextGC || c.phase != Idle {
		c.Step()
	}
}

// Pin pushes obj onto the pin stack, protecting it from being swept away
// by a collection step triggered while it is held transiently — before it
// has been installed in a constant pool, a global, or anywhere else a mark
// pass would find it. Mirrors the push(OBJ_VAL(string)) around
// tableSet(&vm.strings, ...) in allocateString.
func (c *Collector) Pin(obj object.Managed) {
	c.pinned = append(c.pinned, obj)
}

// Unpin pops the most recently pinned object. Callers pin immediately
// before an allocating operation and unpin immediately after, bracketing
// exactly the window where the object has no other root.
func (c *Collector) Unpin() {
	if len(c.pinned) == 0 {
		return
	}
	c.pinned = slices.Delete(c.pinned, len(c.pinned)-1, len(c.pinned))
}

// Step advances the collector by exactly one unit of work, matching
// collectGarbage's single-entry-point, switch-on-phase design:
//
//   - Idle:  transition to Mark and reset the mark cursor. No marking work
//     happens in this call — the source does none either, and spec.md §9
//     flags this as a latent bug that implementations should preserve, not
//     silently fix.
//   - Mark:  resume markRoots for up to markChunkSize items; once roots and
//     the gray worklist are drained, advance to Sweep.
//   - Sweep: perform one full sweep pass and return to Idle.
//
// nextGC is recomputed on every call, exactly as reallocate does it, not
// only at cycle boundaries.
func (c *Collector) Step() {
	c.nextGC = uint64(float64(c.bytesAllocated) * c.growFactor)

	switch c.phase {
	case Idle:
		c.phase = Mark
		c.markCursor = 0
		// Every object already on the heap takes part in this cycle;
		// objects tracked from here on are left alone by the sweep.
		for obj := c.heap; obj != nil; obj = obj.GCHeader().Next {
			obj.GCHeader().OnCurrentGC = true
		}
	case Mark:
		if c.markRootsStep() {
			c.phase = Sweep
		}
	case Sweep:
		c.sweep()
		c.phase = Idle
	}
}

// Collect runs the collector to completion (Mark through Sweep), for
// callers — tests, a CLI driver — that want a synchronous full cycle
// rather than the incremental one-step-per-allocation discipline.
func (c *Collector) Collect() {
	if c.phase == Idle {
		c.Step() // Idle -> Mark, matching the no-op-first-step behavior
	}
	for c.phase != Idle {
		c.Step()
	}
}

// Phase reports the collector's current state, for tests and diagnostics.
func (c *Collector) Phase() Phase { return c.phase }

// BytesAllocated reports the live accounting total.
func (c *Collector) BytesAllocated() uint64 { return c.bytesAllocated }

// markRootsStep marks up to markChunkSize newly-discovered roots/gray
// objects and reports whether the mark phase is now complete. Root
// sources are collected once per call in a fixed order (pinned, compiler,
// embedding RootSource, InitName) and walked from `markCursor`, at most
// markChunkSize items per call, so a very large root set still yields
// control after a bounded amount of work.
func (c *Collector) markRootsStep() bool {
	roots := c.allRoots()

	remaining := markChunkSize
	for remaining > 0 && c.markCursor < len(roots) {
		c.mark(roots[c.markCursor])
		c.markCursor++
		remaining--
	}

	for remaining > 0 && len(c.gray) > 0 {
		obj := c.gray[len(c.gray)-1]
		c.gray = slices.Delete(c.gray, len(c.gray)-1, len(c.gray))
		c.blacken(obj)
		remaining--
	}

	return c.markCursor >= len(roots) && len(c.gray) == 0
}

func (c *Collector) allRoots() []object.Managed {
	var roots []object.Managed
	roots = append(roots, c.pinned...)
	if c.Compiler != nil {
		roots = append(roots, c.Compiler.CompilerRoots()...)
	}
	if c.Roots != nil {
		roots = append(roots, c.Roots.GCRoots()...)
	}
	if c.InitName != nil {
		roots = append(roots, c.InitName)
	}
	return roots
}

// mark marks obj reachable this cycle and pushes it on the gray worklist
// for blackening (tracing its own outgoing references). A no-op if obj is
// nil or already marked this cycle.
func (c *Collector) mark(obj object.Managed) {
	if obj == nil {
		return
	}
	h := obj.GCHeader()
	if h.Marked {
		return
	}
	h.Marked = true
	h.OnCurrentGC = true
	c.gray = append(c.gray, obj)
}

// MarkObject is the exported form of mark, for a RootSource implementation
// (a real VM, or a test harness) that has already unwrapped its own
// stack/frame/upvalue values down to object references.
func (c *Collector) MarkObject(obj object.Managed) {
	c.mark(obj)
}

// sweep walks the intrusive heap list once. An object with Marked clears
// both bits and survives (it was reachable this cycle). An object with
// OnCurrentGC but not Marked existed before this cycle and is now
// unreachable: unlink and discard it. An object with neither bit set was
// allocated during this very cycle, after the heap list was already being
// walked conceptually — Track always links at the head, so such objects
// are ahead of the sweep cursor and are left untouched either way.
func (c *Collector) sweep() {
	var prev object.Managed
	obj := c.heap

	for obj != nil {
		h := obj.GCHeader()
		next := h.Next

		switch {
		case h.Marked:
			h.Marked = false
			h.OnCurrentGC = false
			prev = obj
		case h.OnCurrentGC:
			if prev == nil {
				c.heap = next
			} else {
				prev.GCHeader().Next = next
			}
		default:
			prev = obj
		}

		obj = next
	}
}
