package observer_test

import (
	"testing"

	"github.com/delaneyj/depwatch/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vnode struct {
	*observer.Object
}

func (vnode) RenderNode() {}

func TestObserveIsIdempotent(t *testing.T) {
	sys, _ := newSystem()
	state := observer.NewObject(observer.F("a", 1))

	ob := sys.Observe(state, false)
	require.NotNil(t, ob)
	assert.Same(t, ob, sys.Observe(state, false))
	assert.Same(t, ob, observer.ObserverOf(state))
	assert.Equal(t, state, ob.Value())
	assert.Equal(t, 0, ob.RootCount())

	sys.Observe(state, true)
	sys.Observe(state, true)
	assert.Equal(t, 2, ob.RootCount())
}

func TestObserveMakesKeysReactive(t *testing.T) {
	sys, _ := newSystem()
	state := observer.NewObject(
		observer.F("a", 1),
		observer.F("nested", observer.NewObject(observer.F("b", 2))),
		observer.F("list", observer.NewArray(observer.NewObject(observer.F("c", 3)), 4)),
	)
	assert.False(t, state.Reactive("a"))

	sys.Observe(state, false)
	for _, k := range state.Keys() {
		assert.True(t, state.Reactive(k), k)
	}

	nested := state.Get("nested").(*observer.Object)
	assert.NotNil(t, observer.ObserverOf(nested))
	assert.True(t, nested.Reactive("b"))

	list := state.Get("list").(*observer.Array)
	assert.NotNil(t, observer.ObserverOf(list))
	assert.NotNil(t, observer.ObserverOf(list.At(0)))
	assert.Nil(t, observer.ObserverOf(list.At(1)))
}

func TestObserveSkips(t *testing.T) {
	sys, _ := newSystem()

	assert.Nil(t, sys.Observe(42, false))
	assert.Nil(t, sys.Observe("str", false))
	assert.Nil(t, sys.Observe(nil, false))
	assert.Nil(t, sys.Observe((*observer.Object)(nil), false))
	assert.Nil(t, sys.Observe(map[string]any{"a": 1}, false))

	node := vnode{observer.NewObject(observer.F("a", 1))}
	assert.Nil(t, sys.Observe(node, false), "render nodes are never observed")

	sealed := observer.NewObject(observer.F("a", 1)).PreventExtensions()
	assert.Nil(t, sys.Observe(sealed, false))

	raw := observer.NewObject(observer.F("a", 1)).MarkRaw()
	assert.Nil(t, sys.Observe(raw, false))

	rawList := observer.NewArray(1, 2).MarkRaw()
	assert.Nil(t, sys.Observe(rawList, false))

	sys.SetObserving(false)
	assert.Nil(t, sys.Observe(observer.NewObject(), false))
	sys.SetObserving(true)
	assert.NotNil(t, sys.Observe(observer.NewObject(), false))

	sys.WithoutObserving(func() {
		assert.False(t, sys.Observing())
		assert.Nil(t, sys.Observe(observer.NewArray(), false))
	})
	assert.True(t, sys.Observing())
}

func TestObserveLeavesFixedKeysAlone(t *testing.T) {
	sys, _ := newSystem()
	state := observer.NewObject(observer.F("a", 1))
	state.DefineFixed("id", 7)
	sys.Observe(state, false)

	assert.True(t, state.Reactive("a"))
	assert.False(t, state.Reactive("id"))
	assert.Nil(t, state.Dep("id"))

	runs := 0
	_, err := sys.NewWatcher(func() (any, error) {
		runs++
		return state.Get("id"), nil
	}, nil)
	require.NoError(t, err)

	state.Set("id", 8)
	sys.Drain()
	assert.Equal(t, 8, state.Get("id"))
	assert.Equal(t, 1, runs, "non-configurable keys are not reactive")
}

func TestObservePreExistingAccessor(t *testing.T) {
	sys, _ := newSystem()
	backing := 1
	state := observer.NewObject()
	state.DefineAccessor("rw", func() any { return backing }, func(v any) { backing = v.(int) })
	state.DefineAccessor("ro", func() any { return backing * 10 }, nil)
	sys.Observe(state, false)

	var calls []pair
	_, err := sys.NewWatcher(func() (any, error) {
		return state.Get("rw"), nil
	}, collect(&calls))
	require.NoError(t, err)

	state.Set("rw", 5)
	assert.Equal(t, 5, backing, "writes go through the existing setter")
	sys.Drain()
	assert.Equal(t, []pair{{5, 1}}, calls)

	state.Set("ro", 99)
	assert.Equal(t, 50, state.Get("ro"), "read-only accessors drop writes")
	assert.Zero(t, sys.QueueLen())
}

func TestObserveSkipsGetOnlyAccessor(t *testing.T) {
	sys, _ := newSystem()
	reads := 0
	child := observer.NewObject(observer.F("n", 1))
	state := observer.NewObject()
	state.DefineAccessor("lazy", func() any {
		reads++
		return child
	}, nil)

	sys.Observe(state, false)
	assert.Zero(t, reads, "observing does not call a get-only accessor")
	assert.True(t, state.Reactive("lazy"))
	assert.Nil(t, observer.ObserverOf(child))

	assert.Same(t, child, state.Get("lazy"))
	assert.Equal(t, 1, reads)
}

func TestSealedObjectIgnoresNewKeys(t *testing.T) {
	o := observer.NewObject(observer.F("a", 1)).PreventExtensions()
	o.Set("b", 2)
	assert.False(t, o.Has("b"))
	assert.False(t, o.Extensible())
}

func TestObjectPlainOperations(t *testing.T) {
	o := observer.NewObject(observer.F("a", 1), observer.F("b", 2))
	assert.Equal(t, []string{"a", "b"}, o.Keys())
	assert.Equal(t, 2, o.Len())
	assert.Nil(t, o.Get("missing"))

	o.Set("c", 3)
	assert.Equal(t, []string{"a", "b", "c"}, o.Keys())

	assert.True(t, o.Delete("a"))
	assert.False(t, o.Delete("a"))
	assert.Equal(t, []string{"b", "c"}, o.Keys())

	o.DefineFixed("id", 1)
	assert.False(t, o.Delete("id"))
}
