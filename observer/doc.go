// Package observer tracks which computations read which reactive state and
// re-runs them, batched and in creation order, when that state changes.
//
// State lives in Objects, Arrays and Refs. Observing a container turns its
// keys into reactive cells, each with its own Dep:
//
//	sys := observer.New()
//	state := observer.NewObject(observer.F("a", 1))
//	host := sys.NewHost(state)
//
//	host.Watch("a", func(v, old any) error {
//		log.Printf("a: %v -> %v", old, v)
//		return nil
//	})
//	state.Set("a", 2)
//	sys.Drain() // a: 1 -> 2
//
// A Watcher evaluates its getter with itself pushed on the system's target
// stack; every reactive read subscribes it to the Dep behind the read. After
// each run the watcher drops Deps it no longer read. Updates are queued,
// deduplicated by watcher id and flushed once per tick through the system's
// tick.Queue.
package observer
