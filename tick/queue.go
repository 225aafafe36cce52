package tick

import (
	"errors"
	"fmt"
)

var ErrCallbackPanic = errors.New("tick: callback panicked")

type ErrorFunc func(err error)

// Queue batches callbacks into one deferred flush per turn.
type Queue struct {
	sched     Scheduler
	onError   ErrorFunc
	callbacks []func()
	pending   bool
}

func NewQueue(sched Scheduler, onError ErrorFunc) *Queue {
	if sched == nil {
		sched = NewLoop()
	}
	return &Queue{
		sched:   sched,
		onError: onError,
	}
}

// NextTick queues cb to run in the next flush and returns a channel closed
// once it ran. cb may be nil, in which case the channel only marks the flush.
func (q *Queue) NextTick(cb func()) <-chan struct{} {
	done := make(chan struct{})
	q.callbacks = append(q.callbacks, func() {
		defer close(done)
		if cb != nil {
			q.invoke(cb)
		}
	})
	if !q.pending {
		q.pending = true
		q.sched.Schedule(q.flush)
	}
	return done
}

// Pending reports whether a flush has been scheduled and not yet run.
func (q *Queue) Pending() bool {
	return q.pending
}

func (q *Queue) flush() {
	q.pending = false
	copies := q.callbacks
	q.callbacks = nil
	for _, cb := range copies {
		cb()
	}
}

func (q *Queue) invoke(cb func()) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrCallbackPanic, r)
			if q.onError != nil {
				q.onError(err)
				return
			}
			panic(err)
		}
	}()
	cb()
}
