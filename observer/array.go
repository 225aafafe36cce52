package observer

import (
	"fmt"
	"sort"
)

// Array is a growable sequence whose mutating methods notify the array's
// own Dep once it is observed. Index reads and SetAt are not intercepted;
// use System.SetProperty to replace an element reactively.
type Array struct {
	ob     *Observer
	items  []any
	sealed bool
	isRaw  bool
}

func NewArray(items ...any) *Array {
	a := &Array{items: make([]any, len(items))}
	copy(a.items, items)
	return a
}

func (a *Array) observer() *Observer     { return a.ob }
func (a *Array) setObserver(ob *Observer) { a.ob = ob }
func (a *Array) extensible() bool         { return !a.sealed }
func (a *Array) raw() bool                { return a.isRaw }
func (a *Array) array() *Array            { return a }

func (a *Array) walk(ob *Observer) {
	ob.ObserveArray(a.items)
}

func (a *Array) touch(fn func(v any)) {
	for _, item := range a.items {
		fn(item)
	}
}

func (a *Array) MarkRaw() *Array {
	a.isRaw = true
	return a
}

func (a *Array) PreventExtensions() *Array {
	a.sealed = true
	return a
}

func (a *Array) Len() int {
	return len(a.items)
}

// At returns the element at i, or nil when out of range.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// SetAt replaces the element at i without notifying.
func (a *Array) SetAt(i int, v any) {
	if i >= 0 && i < len(a.items) {
		a.items[i] = v
	}
}

// Items returns a copy of the elements.
func (a *Array) Items() []any {
	items := make([]any, len(a.items))
	copy(items, a.items)
	return items
}

func (a *Array) mutated(inserted []any) {
	if a.ob == nil {
		return
	}
	if len(inserted) > 0 {
		a.ob.ObserveArray(inserted)
	}
	a.ob.dep.Notify()
}

// Push appends items and returns the new length.
func (a *Array) Push(items ...any) int {
	a.items = append(a.items, items...)
	a.mutated(items)
	return len(a.items)
}

// Pop removes and returns the last element.
func (a *Array) Pop() any {
	var v any
	if n := len(a.items); n > 0 {
		v = a.items[n-1]
		a.items[n-1] = nil
		a.items = a.items[:n-1]
	}
	a.mutated(nil)
	return v
}

// Shift removes and returns the first element.
func (a *Array) Shift() any {
	var v any
	if len(a.items) > 0 {
		v = a.items[0]
		n := len(a.items)
		copy(a.items, a.items[1:])
		a.items[n-1] = nil
		a.items = a.items[:n-1]
	}
	a.mutated(nil)
	return v
}

// Unshift prepends items and returns the new length.
func (a *Array) Unshift(items ...any) int {
	next := make([]any, 0, len(a.items)+len(items))
	next = append(next, items...)
	a.items = append(next, a.items...)
	a.mutated(items)
	return len(a.items)
}

// Splice removes deleteCount elements starting at start, inserts items in
// their place and returns the removed elements. A negative start counts from
// the end.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	n := len(a.items)
	if start < 0 {
		start = max(n+start, 0)
	} else if start > n {
		start = n
	}
	deleteCount = min(max(deleteCount, 0), n-start)

	removed := make([]any, deleteCount)
	copy(removed, a.items[start:start+deleteCount])

	next := make([]any, 0, n-deleteCount+len(items))
	next = append(next, a.items[:start]...)
	next = append(next, items...)
	next = append(next, a.items[start+deleteCount:]...)
	a.items = next

	a.mutated(items)
	return removed
}

// Sort sorts the elements in place with a stable sort. A nil less compares
// the elements' default string forms.
func (a *Array) Sort(less func(x, y any) bool) {
	if less == nil {
		less = func(x, y any) bool {
			return fmt.Sprint(x) < fmt.Sprint(y)
		}
	}
	sort.SliceStable(a.items, func(i, j int) bool {
		return less(a.items[i], a.items[j])
	})
	a.mutated(nil)
}

func (a *Array) Reverse() {
	for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
		a.items[i], a.items[j] = a.items[j], a.items[i]
	}
	a.mutated(nil)
}

// grow extends the array with nils up to n elements.
func (a *Array) grow(n int) {
	for len(a.items) < n {
		a.items = append(a.items, nil)
	}
}
