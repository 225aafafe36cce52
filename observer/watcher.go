package observer

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Getter computes a watcher's value. Reactive reads inside it become the
// watcher's dependencies.
type Getter func() (any, error)

// Callback receives the new and previous value after a run that changed it.
type Callback func(value, oldValue any) error

type watcherOptions struct {
	lazy       bool
	sync       bool
	deep       bool
	user       bool
	immediate  bool
	before     func()
	expression string
	host       *Host
}

type WatcherOption func(*watcherOptions)

// Lazy defers evaluation until the value is asked for; updates only mark the
// watcher dirty.
func Lazy() WatcherOption {
	return func(o *watcherOptions) {
		o.lazy = true
	}
}

// Sync runs the watcher immediately on every update instead of queueing it.
func Sync() WatcherOption {
	return func(o *watcherOptions) {
		o.sync = true
	}
}

// Deep traverses the value after each run so nested changes are tracked.
func Deep() WatcherOption {
	return func(o *watcherOptions) {
		o.deep = true
	}
}

// User marks a user-registered watcher whose getter and callback errors are
// reported instead of returned.
func User() WatcherOption {
	return func(o *watcherOptions) {
		o.user = true
	}
}

// Immediate invokes the callback once with the initial value. Only honored by
// Host.Watch and Host.WatchFunc.
func Immediate() WatcherOption {
	return func(o *watcherOptions) {
		o.immediate = true
	}
}

// Before is called by the scheduler right before each queued run.
func Before(fn func()) WatcherOption {
	return func(o *watcherOptions) {
		o.before = fn
	}
}

// Expression names the watcher in reported errors.
func Expression(expr string) WatcherOption {
	return func(o *watcherOptions) {
		o.expression = expr
	}
}

// Watcher evaluates a getter, collects the Deps it reads, and is re-run when
// any of them notifies.
type Watcher struct {
	sys  *System
	host *Host

	id         uint64
	expression string
	getter     Getter
	cb         Callback
	before     func()

	deep   bool
	user   bool
	lazy   bool
	sync   bool
	dirty  bool
	active bool

	deps      []*Dep
	newDeps   []*Dep
	depIDs    mapset.Set[uint64]
	newDepIDs mapset.Set[uint64]

	value any
}

// NewWatcher registers a computation. Unless Lazy is given the getter runs
// immediately; a failing first run of a non-user watcher tears it down and
// returns the error.
func (s *System) NewWatcher(getter Getter, cb Callback, opts ...WatcherOption) (*Watcher, error) {
	var o watcherOptions
	for _, opt := range opts {
		opt(&o)
	}
	return newWatcher(s, getter, cb, o)
}

func newWatcher(s *System, getter Getter, cb Callback, o watcherOptions) (*Watcher, error) {
	if getter == nil {
		getter = func() (any, error) { return nil, nil }
	}
	w := &Watcher{
		sys:        s,
		host:       o.host,
		id:         s.nextWatcherID(),
		expression: o.expression,
		getter:     getter,
		cb:         cb,
		before:     o.before,
		deep:       o.deep,
		user:       o.user,
		lazy:       o.lazy,
		sync:       o.sync,
		dirty:      o.lazy,
		active:     true,
		depIDs:     mapset.NewThreadUnsafeSet[uint64](),
		newDepIDs:  mapset.NewThreadUnsafeSet[uint64](),
	}
	if w.host != nil {
		w.host.watchers = append(w.host.watchers, w)
	}
	if w.lazy {
		return w, nil
	}

	value, err := w.get()
	if err != nil {
		w.Teardown()
		return nil, err
	}
	w.value = value
	return w, nil
}

func (w *Watcher) ID() uint64 {
	return w.id
}

func (w *Watcher) Expression() string {
	return w.expression
}

// Value returns the value of the last evaluation.
func (w *Watcher) Value() any {
	return w.value
}

func (w *Watcher) Dirty() bool {
	return w.dirty
}

func (w *Watcher) Active() bool {
	return w.active
}

func (w *Watcher) Lazy() bool {
	return w.lazy
}

// Deps returns the Deps the watcher is subscribed to.
func (w *Watcher) Deps() []*Dep {
	deps := make([]*Dep, len(w.deps))
	copy(deps, w.deps)
	return deps
}

// get evaluates the getter and re-collects dependencies.
func (w *Watcher) get() (value any, err error) {
	w.sys.pushTarget(w)
	defer func() {
		// touch every property so they are all tracked as dependencies
		if w.deep {
			traverse(value)
		}
		w.sys.popTarget()
		w.cleanupDeps()
	}()

	value, err = w.getter()
	if err != nil && w.user {
		w.sys.handleError(&WatcherError{Expression: w.expression, Phase: "getter", Err: err})
		return nil, nil
	}
	return value, err
}

func (w *Watcher) addDep(dep *Dep) {
	id := dep.id
	if w.newDepIDs.Contains(id) {
		return
	}
	w.newDepIDs.Add(id)
	w.newDeps = append(w.newDeps, dep)
	if !w.depIDs.Contains(id) {
		dep.Subscribe(w)
	}
}

func (w *Watcher) cleanupDeps() {
	for i := len(w.deps) - 1; i >= 0; i-- {
		dep := w.deps[i]
		if !w.newDepIDs.Contains(dep.id) {
			dep.Unsubscribe(w)
		}
	}
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	w.newDepIDs.Clear()
	w.deps, w.newDeps = w.newDeps, w.deps
	clear(w.newDeps)
	w.newDeps = w.newDeps[:0]
}

// Update is called by a Dep when one of the watcher's dependencies changed.
func (w *Watcher) Update() {
	switch {
	case w.lazy:
		w.dirty = true
	case w.sync:
		if err := w.run(); err != nil {
			w.sys.handleError(err)
		}
	default:
		w.sys.queueWatcher(w)
	}
}

// run re-evaluates the watcher and fires its callback when the value
// changed. Errors of user watchers are reported, not returned.
func (w *Watcher) run() error {
	if !w.active {
		return nil
	}
	value, err := w.get()
	if err != nil {
		return err
	}
	// objects and deep watchers fire even when the value is the same,
	// because the value may have mutated
	if !sameValue(value, w.value) || isObject(value) || w.deep {
		oldValue := w.value
		w.value = value
		return w.invoke(value, oldValue)
	}
	return nil
}

func (w *Watcher) invoke(value, oldValue any) error {
	if w.cb == nil {
		return nil
	}
	err := w.cb(value, oldValue)
	if err == nil {
		return nil
	}
	werr := &WatcherError{Expression: w.expression, Phase: "callback", Err: err}
	if w.user {
		w.sys.handleError(werr)
		return nil
	}
	return werr
}

// Evaluate recomputes a lazy watcher's value and clears its dirty flag.
func (w *Watcher) Evaluate() error {
	value, err := w.get()
	if err != nil {
		return err
	}
	w.value = value
	w.dirty = false
	return nil
}

// Depend makes the active computation depend on every Dep held by w.
func (w *Watcher) Depend() {
	for i := len(w.deps) - 1; i >= 0; i-- {
		w.deps[i].Depend()
	}
}

// Teardown unsubscribes w from all of its Deps. It is safe to call more
// than once.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	// removal from the host list is skipped while the host is being
	// destroyed
	if w.host != nil && !w.host.beingDestroyed {
		w.host.remove(w)
	}
	for i := len(w.deps) - 1; i >= 0; i-- {
		w.deps[i].Unsubscribe(w)
	}
	w.active = false
}
