package observer

// Ref is a single typed reactive cell. It behaves like one reactive property
// of an observed object: reads register the active computation, writes of a
// different value notify.
type Ref[T any] struct {
	sys   *System
	dep   *Dep
	value T
	child *Observer
}

func NewRef[T any](s *System, initial T) *Ref[T] {
	return &Ref[T]{
		sys:   s,
		dep:   newDep(s),
		value: initial,
		child: s.Observe(initial, false),
	}
}

func (r *Ref[T]) Get() T {
	if r.sys.target != nil {
		r.dep.Depend()
		if r.child != nil {
			r.child.dep.Depend()
			if a := asArray(r.value); a != nil {
				dependArray(a)
			}
		}
	}
	return r.value
}

// Peek returns the value without tracking.
func (r *Ref[T]) Peek() T {
	return r.value
}

func (r *Ref[T]) Set(v T) {
	if sameValue(v, r.value) {
		return
	}
	r.value = v
	r.child = r.sys.Observe(v, false)
	r.dep.Notify()
}

func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.value))
}

func (r *Ref[T]) Dep() *Dep {
	return r.dep
}

// Computed is a cached value derived from reactive state. It recomputes
// lazily, the first time it is read after one of its dependencies changed.
type Computed[T any] struct {
	w *Watcher
}

// NewComputed creates a computed value evaluated by fn. Only the watcher
// options Expression and Host-scoping apply.
func NewComputed[T any](s *System, fn func() T, opts ...WatcherOption) *Computed[T] {
	o := watcherOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	o.lazy = true
	o.sync, o.deep, o.user = false, false, false
	w, _ := newWatcher(s, func() (any, error) {
		return fn(), nil
	}, nil, o)
	return &Computed[T]{w: w}
}

// HostComputed creates a computed value registered with h, torn down when h
// is destroyed.
func HostComputed[T any](h *Host, fn func() T, opts ...WatcherOption) *Computed[T] {
	return NewComputed(h.sys, fn, append(opts, inHost(h))...)
}

// Get returns the cached value, recomputing it if stale, and makes the
// active computation depend on everything the computed value depends on.
func (c *Computed[T]) Get() T {
	if c.w.dirty {
		// the getter never fails
		_ = c.w.Evaluate()
	}
	if c.w.sys.target != nil {
		c.w.Depend()
	}
	v, _ := c.w.value.(T)
	return v
}

func (c *Computed[T]) Dirty() bool {
	return c.w.dirty
}

func (c *Computed[T]) Watcher() *Watcher {
	return c.w
}
