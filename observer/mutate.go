package observer

import "fmt"

// SetProperty sets key on target. For a new key on an observed object it
// installs a reactive property and notifies the object's Dep. Array indexes
// go through Splice so the change is observed.
//
// Existing keys of a Host's data are assigned directly. New keys added at
// runtime to a root data object (or a Host) are assigned as plain,
// non-reactive properties after an ErrRootProperty diagnostic.
func (s *System) SetProperty(target any, key any, val any) any {
	if h, ok := target.(*Host); ok {
		k, isKey := key.(string)
		if isKey && h.data != nil && h.data.Has(k) {
			h.data.Set(k, val)
			return val
		}
		s.warn(fmt.Errorf("%w: %v", ErrRootProperty, key))
		if isKey && h.data != nil {
			h.data.Put(k, val)
		}
		return val
	}

	if a := asArray(target); a != nil {
		i, ok := key.(int)
		if !ok || i < 0 {
			s.warn(fmt.Errorf("%w: %v (%T) on array", ErrInvalidKey, key, key))
			return val
		}
		a.grow(i)
		a.Splice(i, 1, val)
		return val
	}

	o := asObject(target)
	if o == nil {
		s.warn(fmt.Errorf("%w: %v", ErrPrimitiveTarget, target))
		return val
	}
	k, ok := key.(string)
	if !ok {
		s.warn(fmt.Errorf("%w: %v (%T) on object", ErrInvalidKey, key, key))
		return val
	}
	if o.Has(k) {
		o.Set(k, val)
		return val
	}

	ob := o.ob
	if ob != nil && ob.vmCount > 0 {
		s.warn(fmt.Errorf("%w: %q, declare it upfront", ErrRootProperty, k))
		o.Put(k, val)
		return val
	}
	if ob == nil {
		o.Put(k, val)
		return val
	}
	if !o.extensible() {
		return val
	}
	defineReactive(ob.sys, o, k, val)
	ob.dep.Notify()
	return val
}

// DeleteProperty removes key from target and notifies the container's Dep
// when the target is observed.
func (s *System) DeleteProperty(target any, key any) {
	if _, ok := target.(*Host); ok {
		s.warn(fmt.Errorf("%w: %v, set it to nil instead", ErrRootProperty, key))
		return
	}

	if a := asArray(target); a != nil {
		i, ok := key.(int)
		if !ok || i < 0 {
			s.warn(fmt.Errorf("%w: %v (%T) on array", ErrInvalidKey, key, key))
			return
		}
		a.Splice(i, 1)
		return
	}

	o := asObject(target)
	if o == nil {
		s.warn(fmt.Errorf("%w: %v", ErrPrimitiveTarget, target))
		return
	}
	k, ok := key.(string)
	if !ok {
		s.warn(fmt.Errorf("%w: %v (%T) on object", ErrInvalidKey, key, key))
		return
	}

	ob := o.ob
	if ob != nil && ob.vmCount > 0 {
		s.warn(fmt.Errorf("%w: %q, set it to nil instead", ErrRootProperty, k))
		return
	}
	if !o.Delete(k) {
		return
	}
	if ob != nil {
		ob.dep.Notify()
	}
}
