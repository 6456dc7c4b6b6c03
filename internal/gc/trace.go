package gc

import (
	"github.com/lunalang/luna/internal/object"
	"github.com/lunalang/luna/internal/value"
)

// blacken traces one object's outgoing references, matching
// blanckenObject's switch in the source almost verbatim. Native and String
// have no outgoing object edges. List tracing is added here rather than
// left out: spec.md §9 flags its absence in the source as a correctness
// gap ("Lists can only safely hold non-object values across a
// collection" otherwise), and tracing element values is the straightforward
// fix.
func (c *Collector) blacken(obj object.Managed) {
	switch o := obj.(type) {
	case *object.BoundMethod:
		c.markValue(o.Receiver)
		c.mark(o.Method)
	case *object.Struct:
		if o.Name != nil {
			c.mark(o.Name)
		}
		for _, m := range o.Methods {
			c.mark(m)
		}
	case *object.Instance:
		c.mark(o.Struct)
		for _, v := range o.Fields {
			c.markValue(v)
		}
	case *object.Closure:
		c.mark(o.Function)
		for _, uv := range o.Upvalues {
			if uv != nil {
				c.mark(uv)
			}
		}
	case *object.Function:
		if o.Name != nil {
			c.mark(o.Name)
		}
		for _, v := range o.Chunk.Constants {
			c.markValue(v)
		}
	case *object.Upvalue:
		c.markValue(o.Closed)
	case *object.List:
		for _, v := range o.Elements {
			c.markValue(v)
		}
	case *object.Native, *object.String:
		// no outgoing edges
	}
}

// markValue marks the object a Value carries, if it carries one.
func (c *Collector) markValue(v value.Value) {
	if !v.IsObject() {
		return
	}
	if m, ok := v.AsObject().(object.Managed); ok {
		c.mark(m)
	}
}
