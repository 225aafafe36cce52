package observer

import "sort"

// Dep is a publish point that watchers subscribe to. One exists per reactive
// property and one per observed container.
type Dep struct {
	sys  *System
	id   uint64
	subs []*Watcher
}

func newDep(sys *System) *Dep {
	return &Dep{
		sys: sys,
		id:  sys.nextDepID(),
	}
}

// NewDep creates a standalone Dep for custom reactive sources.
func (s *System) NewDep() *Dep {
	return newDep(s)
}

func (d *Dep) ID() uint64 {
	return d.id
}

// Subscribers returns a copy of the current subscriber list.
func (d *Dep) Subscribers() []*Watcher {
	subs := make([]*Watcher, len(d.subs))
	copy(subs, d.subs)
	return subs
}

// Subscribe appends w. Duplicates are prevented by the watcher, not here.
func (d *Dep) Subscribe(w *Watcher) {
	d.subs = append(d.subs, w)
}

// Unsubscribe removes the first occurrence of w.
func (d *Dep) Unsubscribe(w *Watcher) {
	for i, sub := range d.subs {
		if sub == w {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Depend registers this Dep with the active computation, if there is one.
func (d *Dep) Depend() {
	if t := d.sys.target; t != nil {
		t.addDep(d)
	}
}

func (d *Dep) Notify() {
	// stabilize the subscriber list first
	subs := d.Subscribers()
	if !d.sys.cfg.Async {
		// the scheduler does not sort when running synchronously
		sort.Slice(subs, func(i, j int) bool {
			return subs[i].id < subs[j].id
		})
	}
	for _, sub := range subs {
		sub.Update()
	}
}
