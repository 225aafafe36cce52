package observer

import (
	"fmt"
	"sort"
)

// queueWatcher pushes w into the pending queue. Watchers with an id already
// queued are skipped unless the queue is being flushed and w already ran.
func (s *System) queueWatcher(w *Watcher) {
	id := w.id
	if s.has.Contains(id) || (s.flushing && s.aborted.Contains(id)) {
		return
	}
	s.has.Add(id)

	if !s.flushing {
		s.queue = append(s.queue, w)
	} else {
		// if already flushing, splice the watcher based on its id; if it is
		// already past its position it will run next
		i := len(s.queue) - 1
		for i > s.index && s.queue[i].id > id {
			i--
		}
		s.queue = append(s.queue, nil)
		copy(s.queue[i+2:], s.queue[i+1:])
		s.queue[i+1] = w
	}

	if s.waiting {
		return
	}
	s.waiting = true
	if !s.cfg.Async {
		s.flushSchedulerQueue()
		return
	}
	s.ticks.NextTick(s.flushSchedulerQueue)
}

// flushSchedulerQueue runs every queued watcher in id order.
//
// Sorting makes sure that parents update before children (parents are
// created first), that a host's user watchers run before its render watcher,
// and that watchers of a host destroyed by its parent's run are skipped.
func (s *System) flushSchedulerQueue() {
	defer func() {
		// a panicking watcher must not leave the scheduler stuck in a flush
		if r := recover(); r != nil {
			s.resetSchedulerState()
			panic(r)
		}
	}()

	s.flushing = true
	for _, h := range s.cfg.Hooks {
		if h.BeforeFlush != nil {
			h.BeforeFlush(len(s.queue))
		}
	}

	sort.SliceStable(s.queue, func(i, j int) bool {
		return s.queue[i].id < s.queue[j].id
	})

	// the queue may grow while watchers run, so its length is not cached
	for s.index = 0; s.index < len(s.queue); s.index++ {
		w := s.queue[s.index]
		id := w.id
		s.has.Remove(id)
		if s.aborted.Contains(id) {
			continue
		}
		s.circular[id]++
		if s.circular[id] > s.cfg.MaxUpdateCount {
			s.aborted.Add(id)
			s.handleError(&WatcherError{
				Expression: w.expression,
				Phase:      "scheduler",
				Err:        fmt.Errorf("%w: watcher ran more than %d times in one flush", ErrInfiniteUpdate, s.cfg.MaxUpdateCount),
			})
			continue
		}
		if w.before != nil {
			w.before()
		}
		if err := w.run(); err != nil {
			s.handleError(err)
		}
	}

	updated := make([]*Watcher, 0, len(s.queue))
	seen := make(map[uint64]bool, len(s.queue))
	for _, w := range s.queue {
		if !seen[w.id] && !s.aborted.Contains(w.id) {
			seen[w.id] = true
			updated = append(updated, w)
		}
	}
	s.resetSchedulerState()

	for _, h := range s.cfg.Hooks {
		if h.AfterFlush != nil {
			h.AfterFlush(updated)
		}
	}
}

func (s *System) resetSchedulerState() {
	clear(s.queue)
	s.queue = s.queue[:0]
	s.index = 0
	s.has.Clear()
	clear(s.circular)
	s.aborted.Clear()
	s.waiting = false
	s.flushing = false
}

// QueueLen is the number of watchers waiting for the next flush.
func (s *System) QueueLen() int {
	return len(s.queue)
}

// Flushing reports whether a flush is in progress.
func (s *System) Flushing() bool {
	return s.flushing
}
