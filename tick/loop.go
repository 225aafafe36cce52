package tick

import (
	"context"
	"sync"
)

// Scheduler is the asynchronous primitive a Queue uses to defer its flush.
type Scheduler interface {
	Schedule(fn func())
}

// Loop is a single goroutine event loop with a task queue and a microtask
// queue. Microtasks scheduled while a task is running only run after that
// task returns, so everything done synchronously within one task is observed
// as a single turn.
//
// Schedule and Drain must be called from the loop goroutine. Post is the only
// method safe to call from other goroutines.
type Loop struct {
	microtasks []func()
	draining   bool

	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Schedule queues fn as a microtask.
func (l *Loop) Schedule(fn func()) {
	l.microtasks = append(l.microtasks, fn)
}

// Pending reports how many microtasks are waiting.
func (l *Loop) Pending() int {
	return len(l.microtasks)
}

// Drain runs microtasks until none are left, including ones scheduled while
// draining. Reentrant calls return immediately.
func (l *Loop) Drain() {
	if l.draining {
		return
	}
	l.draining = true
	defer func() {
		l.draining = false
	}()

	for len(l.microtasks) > 0 {
		fn := l.microtasks[0]
		l.microtasks[0] = nil
		l.microtasks = l.microtasks[1:]
		fn()
	}
	l.microtasks = l.microtasks[:0]
}

// Post queues fn as a task. Safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RunPending runs every task posted so far, draining microtasks after each.
// It returns the number of tasks run.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
		l.Drain()
	}
	l.Drain()
	return len(tasks)
}

// Run processes posted tasks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
