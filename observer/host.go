package observer

import "fmt"

// Host is the owner of a root data object and of the watchers created for
// it, standing in for a component instance. Hosts themselves are never
// observed.
type Host struct {
	sys            *System
	data           *Object
	watchers       []*Watcher
	beingDestroyed bool
	destroyed      bool
}

func inHost(h *Host) WatcherOption {
	return func(o *watcherOptions) {
		o.host = h
	}
}

// NewHost observes data as a root and returns a host owning it. data may be
// nil.
func (s *System) NewHost(data *Object) *Host {
	h := &Host{sys: s, data: data}
	if data != nil {
		s.Observe(data, true)
	}
	return h
}

func (h *Host) System() *System {
	return h.sys
}

func (h *Host) Data() *Object {
	return h.data
}

// Watchers returns the live watchers registered with h.
func (h *Host) Watchers() []*Watcher {
	ws := make([]*Watcher, len(h.watchers))
	copy(ws, h.watchers)
	return ws
}

func (h *Host) remove(w *Watcher) {
	for i, x := range h.watchers {
		if x == w {
			h.watchers = append(h.watchers[:i], h.watchers[i+1:]...)
			return
		}
	}
}

// NewWatcher registers a watcher owned by h. It is not a user watcher unless
// User is passed.
func (h *Host) NewWatcher(getter Getter, cb Callback, opts ...WatcherOption) (*Watcher, error) {
	var o watcherOptions
	for _, opt := range opts {
		opt(&o)
	}
	o.host = h
	return newWatcher(h.sys, getter, cb, o)
}

// Watch watches a dot-delimited path of the host data and calls cb when the
// value changes. The returned function tears the watcher down.
func (h *Host) Watch(path string, cb Callback, opts ...WatcherOption) (func(), error) {
	var root any
	if h.data != nil {
		root = h.data
	}
	return h.watch(h.sys.pathGetter(root, path), cb, append([]WatcherOption{Expression(path)}, opts...))
}

// WatchFunc watches the value returned by getter.
func (h *Host) WatchFunc(getter Getter, cb Callback, opts ...WatcherOption) (func(), error) {
	return h.watch(getter, cb, opts)
}

func (h *Host) watch(getter Getter, cb Callback, opts []WatcherOption) (func(), error) {
	var o watcherOptions
	for _, opt := range opts {
		opt(&o)
	}
	o.host = h
	o.user = true

	w, err := newWatcher(h.sys, getter, cb, o)
	if err != nil {
		return nil, fmt.Errorf("watch %q: %w", o.expression, err)
	}
	if o.immediate {
		if err := w.invoke(w.value, nil); err != nil {
			h.sys.handleError(err)
		}
	}
	return w.Teardown, nil
}

// Set is SetProperty scoped to the host's system.
func (h *Host) Set(target any, key any, val any) any {
	return h.sys.SetProperty(target, key, val)
}

// Delete is DeleteProperty scoped to the host's system.
func (h *Host) Delete(target any, key any) {
	h.sys.DeleteProperty(target, key)
}

// Destroy tears down every watcher of h and releases its root data.
func (h *Host) Destroy() {
	if h.beingDestroyed || h.destroyed {
		return
	}
	h.beingDestroyed = true
	for i := len(h.watchers) - 1; i >= 0; i-- {
		h.watchers[i].Teardown()
	}
	h.watchers = nil
	if h.data != nil {
		if ob := h.data.ob; ob != nil && ob.vmCount > 0 {
			ob.vmCount--
		}
	}
	h.destroyed = true
}

func (h *Host) Destroyed() bool {
	return h.destroyed
}
