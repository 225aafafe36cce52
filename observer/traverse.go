package observer

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// traverse recursively reads every nested property and element of val so
// that all of them are collected as dependencies of the active computation.
func traverse(val any) {
	seen := mapset.NewThreadUnsafeSet[uint64]()
	doTraverse(val, seen)
}

func doTraverse(val any, seen mapset.Set[uint64]) {
	c, ok := val.(container)
	if !ok || isNilContainer(val) {
		return
	}
	if _, isNode := val.(RenderNode); isNode || !c.extensible() {
		return
	}
	if ob := c.observer(); ob != nil {
		if !seen.Add(ob.dep.id) {
			return
		}
	}
	c.touch(func(v any) {
		doTraverse(v, seen)
	})
}
