package observer_test

import (
	"testing"

	"github.com/delaneyj/depwatch/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPropertyAddsReactiveKey(t *testing.T) {
	sys, rec := newSystem()
	state := observer.NewObject(observer.F("user", observer.NewObject()))
	sys.Observe(state, false)
	user := state.Get("user").(*observer.Object)

	var calls []pair
	_, err := sys.NewWatcher(func() (any, error) {
		return state.Get("user").(*observer.Object).Get("name"), nil
	}, collect(&calls))
	require.NoError(t, err)

	assert.Equal(t, "ada", sys.SetProperty(user, "name", "ada"))
	assert.True(t, user.Reactive("name"))
	sys.Drain()
	assert.Equal(t, []pair{{"ada", nil}}, calls)

	sys.SetProperty(user, "name", "grace")
	sys.Drain()
	assert.Equal(t, []pair{{"ada", nil}, {"grace", "ada"}}, calls)
	assert.Empty(t, rec.warns)
}

func TestSetPropertyOnArray(t *testing.T) {
	sys, rec := newSystem()
	list := observer.NewArray("a", "b")
	sys.Observe(list, false)

	item := observer.NewObject()
	sys.SetProperty(list, 1, item)
	assert.Equal(t, []any{"a", item}, list.Items())
	assert.NotNil(t, observer.ObserverOf(item))

	sys.SetProperty(list, 4, "e")
	assert.Equal(t, []any{"a", item, nil, nil, "e"}, list.Items())

	sys.SetProperty(list, "x", 1)
	sys.SetProperty(list, -1, 1)
	require.Len(t, rec.warns, 2)
	assert.ErrorIs(t, rec.warns[0], observer.ErrInvalidKey)
	assert.Equal(t, 5, list.Len())
}

func TestSetPropertyEdgeCases(t *testing.T) {
	t.Run("primitive target", func(t *testing.T) {
		sys, rec := newSystem()
		assert.Equal(t, 1, sys.SetProperty(42, "a", 1))
		sys.SetProperty(nil, "a", 1)
		require.Len(t, rec.warns, 2)
		assert.ErrorIs(t, rec.warns[0], observer.ErrPrimitiveTarget)
		assert.ErrorIs(t, rec.warns[1], observer.ErrPrimitiveTarget)
	})

	t.Run("non string key", func(t *testing.T) {
		sys, rec := newSystem()
		o := observer.NewObject()
		sys.SetProperty(o, 1, "v")
		require.Len(t, rec.warns, 1)
		assert.ErrorIs(t, rec.warns[0], observer.ErrInvalidKey)
		assert.False(t, o.Has("1"))
	})

	t.Run("existing key assigns", func(t *testing.T) {
		sys, _ := newSystem()
		o := observer.NewObject(observer.F("a", 1))
		sys.Observe(o, false)
		runs := 0
		_, err := sys.NewWatcher(func() (any, error) {
			runs++
			return o.Get("a"), nil
		}, nil, observer.Sync())
		require.NoError(t, err)

		sys.SetProperty(o, "a", 2)
		assert.Equal(t, 2, runs)
	})

	t.Run("unobserved target", func(t *testing.T) {
		sys, rec := newSystem()
		o := observer.NewObject()
		sys.SetProperty(o, "a", 1)
		assert.Equal(t, 1, o.Get("a"))
		assert.False(t, o.Reactive("a"))
		assert.Empty(t, rec.warns)
	})

	t.Run("non extensible target", func(t *testing.T) {
		sys, _ := newSystem()
		o := observer.NewObject()
		sys.Observe(o, false)
		o.PreventExtensions()
		sys.SetProperty(o, "a", 1)
		assert.False(t, o.Has("a"))
	})

	t.Run("root data", func(t *testing.T) {
		sys, rec := newSystem()
		data := observer.NewObject(observer.F("a", 1))
		host := sys.NewHost(data)

		host.Set(data, "late", 1)
		assert.Equal(t, 1, data.Get("late"))
		assert.False(t, data.Reactive("late"), "late root keys are plain")

		host.Set(host, "other", 2)
		assert.Equal(t, 2, data.Get("other"))

		require.Len(t, rec.warns, 2)
		assert.ErrorIs(t, rec.warns[0], observer.ErrRootProperty)
		assert.ErrorIs(t, rec.warns[1], observer.ErrRootProperty)
	})

	t.Run("root data existing key", func(t *testing.T) {
		sys, rec := newSystem()
		data := observer.NewObject(observer.F("a", 1))
		host := sys.NewHost(data)

		var calls []pair
		_, err := host.WatchFunc(func() (any, error) {
			return data.Get("a"), nil
		}, collect(&calls))
		require.NoError(t, err)

		sys.SetProperty(host, "a", 2)
		sys.Drain()
		assert.True(t, data.Reactive("a"))
		assert.Equal(t, []pair{{2, 1}}, calls)

		data.Set("a", 3)
		sys.Drain()
		assert.Equal(t, []pair{{2, 1}, {3, 2}}, calls)
		assert.Empty(t, rec.warns)
	})
}

func TestDeletePropertyNotifies(t *testing.T) {
	sys, rec := newSystem()
	user := observer.NewObject(observer.F("name", "ada"))
	state := observer.NewObject(observer.F("user", user))
	sys.Observe(state, false)

	runs := 0
	_, err := sys.NewWatcher(func() (any, error) {
		runs++
		return state.Get("user"), nil
	}, nil)
	require.NoError(t, err)

	sys.DeleteProperty(user, "name")
	assert.False(t, user.Has("name"))
	sys.Drain()
	assert.Equal(t, 2, runs)

	sys.DeleteProperty(user, "missing")
	sys.Drain()
	assert.Equal(t, 2, runs, "deleting a missing key is silent")
	assert.Empty(t, rec.warns)
}

func TestDeletePropertyEdgeCases(t *testing.T) {
	t.Run("array index", func(t *testing.T) {
		sys, _ := newSystem()
		list := observer.NewArray(1, 2, 3)
		runs := watchArray(t, sys, list)
		sys.DeleteProperty(list, 1)
		assert.Equal(t, []any{1, 3}, list.Items())
		assert.Equal(t, 1, *runs)
	})

	t.Run("unobserved target", func(t *testing.T) {
		sys, _ := newSystem()
		o := observer.NewObject(observer.F("a", 1))
		sys.DeleteProperty(o, "a")
		assert.False(t, o.Has("a"))
	})

	t.Run("root data refuses", func(t *testing.T) {
		sys, rec := newSystem()
		data := observer.NewObject(observer.F("a", 1))
		host := sys.NewHost(data)

		host.Delete(data, "a")
		host.Delete(host, "a")
		assert.True(t, data.Has("a"))
		require.Len(t, rec.warns, 2)
		assert.ErrorIs(t, rec.warns[0], observer.ErrRootProperty)
	})

	t.Run("invalid targets", func(t *testing.T) {
		sys, rec := newSystem()
		sys.DeleteProperty("str", "a")
		sys.DeleteProperty(observer.NewObject(), 3)
		sys.DeleteProperty(observer.NewArray(), "a")
		require.Len(t, rec.warns, 3)
		assert.ErrorIs(t, rec.warns[0], observer.ErrPrimitiveTarget)
		assert.ErrorIs(t, rec.warns[1], observer.ErrInvalidKey)
		assert.ErrorIs(t, rec.warns[2], observer.ErrInvalidKey)
	})
}
