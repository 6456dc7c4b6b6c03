package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunalang/luna/internal/object"
	"github.com/lunalang/luna/internal/value"
)

// linkOnly is a minimal Managed for exercising the collector directly,
// without going through this package's Allocator.
type linkOnly struct {
	object.Header
}

func (l *linkOnly) Kind() value.ObjectKind { return 0 }
func (l *linkOnly) Inspect() string         { return "<obj>" }
func (l *linkOnly) Hash() uint32            { return 0 }
func (l *linkOnly) GCHeader() *object.Header { return &l.Header }

type staticRoots struct{ roots []object.Managed }

func (s staticRoots) GCRoots() []object.Managed { return s.roots }

func TestSweepFreesOnlyUnreachable(t *testing.T) {
	c := New()
	reachable := &linkOnly{}
	garbage := &linkOnly{}

	c.Track(reachable, 8)
	c.Track(garbage, 8)

	c.Roots = staticRoots{roots: []object.Managed{reachable}}
	c.Collect()

	assert.False(t, reachable.Marked, "marked bit must be cleared after a completed cycle")
	assert.False(t, reachable.OnCurrentGC)

	// garbage was unlinked by sweep; walking the heap from the head must
	// not find it anymore.
	found := false
	for o := c.heap; o != nil; o = o.GCHeader().Next {
		if o == object.Managed(garbage) {
			found = true
		}
	}
	assert.False(t, found, "unreachable object must be unlinked by sweep")
}

func TestIdleToMarkDoesNoWorkInSameStep(t *testing.T) {
	c := New()
	require.Equal(t, Idle, c.Phase())
	c.Step()
	assert.Equal(t, Mark, c.Phase(), "spec.md §9: the Idle->Mark transition performs no marking work in the same call")
}

func TestPinProtectsTransientObject(t *testing.T) {
	c := New()
	obj := &linkOnly{}
	c.Pin(obj)
	c.Track(obj, 8)
	c.Roots = staticRoots{} // nothing else roots it
	c.Collect()
	assert.False(t, obj.Marked)

	found := false
	for o := c.heap; o != nil; o = o.GCHeader().Next {
		if o == object.Managed(obj) {
			found = true
		}
	}
	assert.True(t, found, "a pinned object must survive the sweep")
	c.Unpin()
}

func TestNextGCGrowsByConfiguredFactor(t *testing.T) {
	c := NewWithTuning(100, 2.0)
	obj := &linkOnly{}
	c.Track(obj, 200) // exceeds the 100-byte threshold, triggers a step
	assert.Equal(t, uint64(400), c.nextGC)
}
