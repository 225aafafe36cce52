package observer

// RenderNode marks values owned by the rendering layer. They are never
// observed, even when they embed a container.
type RenderNode interface {
	RenderNode()
}

// container is implemented by *Object and *Array, and by any type embedding
// one of them.
type container interface {
	observer() *Observer
	setObserver(ob *Observer)
	extensible() bool
	raw() bool
	walk(ob *Observer)
	touch(fn func(v any))
}

// Observer is attached to each observed container. It owns the container
// level Dep, used for key additions/removals and array mutations.
type Observer struct {
	sys     *System
	value   any
	dep     *Dep
	vmCount int
}

func newObserver(sys *System, c container) *Observer {
	ob := &Observer{
		sys:   sys,
		value: c,
		dep:   newDep(sys),
	}
	c.setObserver(ob)
	c.walk(ob)
	return ob
}

func (ob *Observer) Value() any {
	return ob.value
}

func (ob *Observer) Dep() *Dep {
	return ob.dep
}

// RootCount is the number of hosts using this container as their root data.
func (ob *Observer) RootCount() int {
	return ob.vmCount
}

// ObserveArray observes every item of a freshly inserted batch.
func (ob *Observer) ObserveArray(items []any) {
	for _, item := range items {
		ob.sys.Observe(item, false)
	}
}

// Observe attaches an Observer to value if it is an observable container,
// or returns the one it already carries. asRoot counts value as the root
// data of one more host. Non-containers yield nil.
func (s *System) Observe(value any, asRoot bool) *Observer {
	c, ok := value.(container)
	if !ok || isNilContainer(value) {
		return nil
	}
	if _, isNode := value.(RenderNode); isNode {
		return nil
	}

	ob := c.observer()
	if ob == nil && s.shouldObserve && c.extensible() && !c.raw() {
		ob = newObserver(s, c)
	}
	if asRoot && ob != nil {
		ob.vmCount++
	}
	return ob
}

// ObserverOf returns the Observer attached to value, or nil.
func ObserverOf(value any) *Observer {
	c, ok := value.(container)
	if !ok || isNilContainer(value) {
		return nil
	}
	return c.observer()
}

func isNilContainer(v any) bool {
	switch c := v.(type) {
	case *Object:
		return c == nil
	case *Array:
		return c == nil
	}
	return false
}

// dependArray collects dependencies on array elements when the array is
// touched, since element access by index cannot be intercepted.
func dependArray(a *Array) {
	for _, e := range a.items {
		if ob := ObserverOf(e); ob != nil {
			ob.dep.Depend()
		}
		if nested := asArray(e); nested != nil {
			dependArray(nested)
		}
	}
}

type arrayContainer interface {
	array() *Array
}

func asArray(v any) *Array {
	if a, ok := v.(arrayContainer); ok && !isNilContainer(v) {
		return a.array()
	}
	return nil
}

type objectContainer interface {
	object() *Object
}

func asObject(v any) *Object {
	if o, ok := v.(objectContainer); ok && !isNilContainer(v) {
		return o.object()
	}
	return nil
}
