package observer

// Field is one key/value pair used to build an Object.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

type property struct {
	value any
	get   func() any
	set   func(v any)
	fixed bool

	// set once the property is made reactive
	dep   *Dep
	child *Observer
}

// Object is a keyed container with ordered keys. Until it is observed it is a
// plain value; once observed, every configurable key reads and writes through
// a reactive cell.
type Object struct {
	ob     *Observer
	keys   []string
	props  map[string]*property
	sealed bool
	isRaw  bool
}

func NewObject(fields ...Field) *Object {
	o := &Object{
		props: make(map[string]*property, len(fields)),
	}
	for _, f := range fields {
		o.Put(f.Key, f.Value)
	}
	return o
}

func (o *Object) observer() *Observer     { return o.ob }
func (o *Object) setObserver(ob *Observer) { o.ob = ob }
func (o *Object) extensible() bool         { return !o.sealed }
func (o *Object) raw() bool                { return o.isRaw }
func (o *Object) object() *Object          { return o }

func (o *Object) walk(ob *Observer) {
	for _, key := range o.keys {
		defineReactive(ob.sys, o, key)
	}
}

func (o *Object) touch(fn func(v any)) {
	for _, key := range o.Keys() {
		fn(o.Get(key))
	}
}

// MarkRaw excludes the object from observation.
func (o *Object) MarkRaw() *Object {
	o.isRaw = true
	return o
}

// PreventExtensions makes the object non-extensible: it will not be observed
// and new keys are ignored.
func (o *Object) PreventExtensions() *Object {
	o.sealed = true
	return o
}

func (o *Object) Extensible() bool {
	return !o.sealed
}

// Put defines or overwrites a plain, non-reactive property. Existing
// reactive cells are replaced as well, so it never notifies.
func (o *Object) Put(key string, value any) {
	if p, ok := o.props[key]; ok {
		if p.fixed {
			p.value = value
			return
		}
		*p = property{value: value}
		return
	}
	if o.sealed {
		return
	}
	o.keys = append(o.keys, key)
	o.props[key] = &property{value: value}
}

// DefineFixed defines a non-configurable data property. It is never made
// reactive.
func (o *Object) DefineFixed(key string, value any) {
	if _, ok := o.props[key]; !ok {
		if o.sealed {
			return
		}
		o.keys = append(o.keys, key)
	}
	o.props[key] = &property{value: value, fixed: true}
}

// DefineAccessor defines a property backed by get and an optional set. A nil
// set makes the property read-only.
func (o *Object) DefineAccessor(key string, get func() any, set func(v any)) {
	if _, ok := o.props[key]; !ok {
		if o.sealed {
			return
		}
		o.keys = append(o.keys, key)
	}
	o.props[key] = &property{get: get, set: set}
}

func (o *Object) Has(key string) bool {
	_, ok := o.props[key]
	return ok
}

// Reactive reports whether key is backed by a reactive cell.
func (o *Object) Reactive(key string) bool {
	p, ok := o.props[key]
	return ok && p.dep != nil
}

// Dep returns the Dep behind a reactive key, or nil.
func (o *Object) Dep(key string) *Dep {
	if p, ok := o.props[key]; ok {
		return p.dep
	}
	return nil
}

// Keys returns the own keys in insertion order. It does not track.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Get reads key, registering the active computation when the property is
// reactive.
func (o *Object) Get(key string) any {
	p, ok := o.props[key]
	if !ok {
		return nil
	}
	if p.dep == nil {
		return p.current()
	}
	return p.reactiveGet()
}

// Set writes key. Missing keys are added as plain properties; use
// System.SetProperty to add a reactive one.
func (o *Object) Set(key string, value any) {
	p, ok := o.props[key]
	if !ok {
		o.Put(key, value)
		return
	}
	if p.dep != nil {
		p.reactiveSet(value)
		return
	}
	if p.get != nil {
		if p.set != nil {
			p.set(value)
		}
		return
	}
	p.value = value
}

// Delete removes key without notifying. Non-configurable keys stay.
func (o *Object) Delete(key string) bool {
	p, ok := o.props[key]
	if !ok || p.fixed {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

func (p *property) current() any {
	if p.get != nil {
		return p.get()
	}
	return p.value
}

func (p *property) reactiveGet() any {
	value := p.current()
	if p.dep.sys.target != nil {
		p.dep.Depend()
		if p.child != nil {
			p.child.dep.Depend()
			if a := asArray(value); a != nil {
				dependArray(a)
			}
		}
	}
	return value
}

func (p *property) reactiveSet(newVal any) {
	value := p.current()
	if sameValue(newVal, value) {
		return
	}
	// accessor without setter
	if p.get != nil && p.set == nil {
		return
	}
	if p.set != nil {
		p.set(newVal)
	} else {
		p.value = newVal
	}
	p.child = p.dep.sys.Observe(newVal, false)
	p.dep.Notify()
}

// defineReactive turns key of o into a reactive cell. A missing key is
// created with value.
func defineReactive(sys *System, o *Object, key string, value ...any) {
	p, ok := o.props[key]
	if ok && p.fixed {
		return
	}
	if !ok {
		if o.sealed {
			return
		}
		p = &property{}
		o.keys = append(o.keys, key)
		o.props[key] = p
	}
	if len(value) > 0 && (p.get == nil || p.set != nil) {
		if p.set != nil {
			p.set(value[0])
		} else {
			p.value = value[0]
		}
	}
	p.dep = newDep(sys)
	// a get-only accessor is not read until something asks for it
	if p.get == nil || p.set != nil {
		p.child = sys.Observe(p.current(), false)
	}
}
