package observer_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/depwatch/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushInsertsWatchersQueuedDuringFlush(t *testing.T) {
	sys, _ := newSystem()
	state := observer.NewObject(observer.F("a", 1), observer.F("b", 1), observer.F("c", 1))
	sys.Observe(state, false)

	var order []string
	watch := func(name, key string, cb func()) {
		_, err := sys.NewWatcher(func() (any, error) {
			return state.Get(key), nil
		}, func(_, _ any) error {
			order = append(order, name)
			if cb != nil {
				cb()
			}
			return nil
		})
		require.NoError(t, err)
	}

	// w1 re-queues w3, which has a higher id, and w2, which has already
	// been passed by the time w4 runs.
	watch("w1", "a", func() { state.Set("c", 2) })
	watch("w2", "b", nil)
	watch("w3", "c", nil)
	watch("w4", "a", func() { state.Set("b", 2) })

	state.Set("a", 2)
	sys.Drain()
	assert.Equal(t, []string{"w1", "w3", "w4", "w2"}, order)
	assert.Zero(t, sys.QueueLen())
	assert.False(t, sys.Flushing())
}

func TestFlushRunsInIDOrder(t *testing.T) {
	sys, _ := newSystem()
	state := observer.NewObject(observer.F("a", 1), observer.F("b", 1))
	sys.Observe(state, false)

	var order []int
	for i, key := range []string{"a", "b", "a"} {
		i, key := i, key
		_, err := sys.NewWatcher(func() (any, error) {
			return state.Get(key), nil
		}, func(_, _ any) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}

	state.Set("b", 2)
	state.Set("a", 2)
	sys.Drain()
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestInfiniteUpdateIsAborted(t *testing.T) {
	sys, rec := newSystem()
	state := observer.NewObject(observer.F("a", 0), observer.F("b", 0))
	sys.Observe(state, false)

	loops := 0
	_, err := sys.NewWatcher(func() (any, error) {
		return state.Get("a"), nil
	}, func(value, _ any) error {
		loops++
		state.Set("a", value.(int)+1)
		return nil
	}, observer.Expression("a"))
	require.NoError(t, err)

	var sibling []pair
	_, err = sys.NewWatcher(func() (any, error) {
		return state.Get("b"), nil
	}, collect(&sibling))
	require.NoError(t, err)

	state.Set("a", 1)
	state.Set("b", 1)
	sys.Drain()

	assert.Equal(t, observer.DefaultMaxUpdateCount, loops)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], observer.ErrInfiniteUpdate)

	var werr *observer.WatcherError
	require.ErrorAs(t, rec.errs[0], &werr)
	assert.Equal(t, "scheduler", werr.Phase)
	assert.Equal(t, "a", werr.Expression)

	assert.Equal(t, []pair{{1, 0}}, sibling, "other watchers keep running")
	assert.False(t, sys.Flushing())

	// the guard resets with the next flush
	state.Set("b", 2)
	sys.Drain()
	assert.Len(t, sibling, 2)
}

func TestMaxUpdateCountOption(t *testing.T) {
	sys, rec := newSystem(observer.WithMaxUpdateCount(3))
	state := observer.NewObject(observer.F("a", 0))
	sys.Observe(state, false)

	loops := 0
	_, err := sys.NewWatcher(func() (any, error) {
		return state.Get("a"), nil
	}, func(value, _ any) error {
		loops++
		state.Set("a", value.(int)+1)
		return nil
	})
	require.NoError(t, err)

	state.Set("a", 1)
	sys.Drain()
	assert.Equal(t, 3, loops)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], observer.ErrInfiniteUpdate)
}

func TestBeforeRunsAheadOfQueuedRuns(t *testing.T) {
	sys, _ := newSystem()
	state := observer.NewObject(observer.F("a", 1))
	sys.Observe(state, false)

	var order []string
	_, err := sys.NewWatcher(func() (any, error) {
		order = append(order, "get")
		return state.Get("a"), nil
	}, nil, observer.Before(func() {
		order = append(order, "before")
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"get"}, order)

	state.Set("a", 2)
	sys.Drain()
	assert.Equal(t, []string{"get", "before", "get"}, order)
}

func TestFlushHooks(t *testing.T) {
	var queued []int
	var updated [][]uint64
	var hookErrs []error
	sys, rec := newSystem(observer.WithHooks(observer.Hooks{
		BeforeFlush: func(n int) {
			queued = append(queued, n)
		},
		AfterFlush: func(ws []*observer.Watcher) {
			ids := make([]uint64, 0, len(ws))
			for _, w := range ws {
				ids = append(ids, w.ID())
			}
			updated = append(updated, ids)
		},
		Error: func(err error) {
			hookErrs = append(hookErrs, err)
		},
	}))
	state := observer.NewObject(observer.F("a", 1))
	sys.Observe(state, false)

	boom := errors.New("boom")
	w1, err := sys.NewWatcher(func() (any, error) {
		return state.Get("a"), nil
	}, nil)
	require.NoError(t, err)
	w2, err := sys.NewWatcher(func() (any, error) {
		return state.Get("a"), nil
	}, func(_, _ any) error {
		return boom
	})
	require.NoError(t, err)

	state.Set("a", 2)
	sys.Drain()
	assert.Equal(t, []int{2}, queued)
	assert.Equal(t, [][]uint64{{w1.ID(), w2.ID()}}, updated)

	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], boom)
	assert.Equal(t, rec.errs, hookErrs)
}

func TestSynchronousMode(t *testing.T) {
	sys, _ := newSystem(observer.WithSync())
	assert.False(t, sys.Async())
	state := observer.NewObject(observer.F("a", 1))
	sys.Observe(state, false)

	var calls []pair
	_, err := sys.NewWatcher(func() (any, error) {
		return state.Get("a"), nil
	}, collect(&calls))
	require.NoError(t, err)

	state.Set("a", 2)
	assert.Equal(t, []pair{{2, 1}}, calls, "flushed before Set returns")
	assert.Zero(t, sys.QueueLen())
}

func TestNextTickRunsAfterFlush(t *testing.T) {
	sys, _ := newSystem()
	state := observer.NewObject(observer.F("a", 1))
	sys.Observe(state, false)

	var order []string
	_, err := sys.NewWatcher(func() (any, error) {
		return state.Get("a"), nil
	}, func(_, _ any) error {
		order = append(order, "watcher")
		return nil
	})
	require.NoError(t, err)

	state.Set("a", 2)
	done := sys.NextTick(func() {
		order = append(order, "tick")
	})
	sys.Drain()
	assert.Equal(t, []string{"watcher", "tick"}, order)

	select {
	case <-done:
	default:
		t.Fatal("next tick not resolved")
	}
}
