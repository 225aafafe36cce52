package scenario

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/delaneyj/depwatch/observer"
)

// Event is one watcher callback.
type Event struct {
	// Step is the 1-based step after which the event fired; 0 for
	// immediate callbacks.
	Step  int
	Watch string
	Value interface{}
	Old   interface{}
}

type Result struct {
	Events []Event

	// State is the root data after the last step.
	State *observer.Object

	// Digest is the xxhash of the final state, see Digest.
	Digest uint64

	Steps int
}

// Runner executes scripts. Each Run gets a fresh System built from the
// runner's options.
type Runner struct {
	opts []observer.Option
}

func NewRunner(opts ...observer.Option) *Runner {
	return &Runner{opts: opts}
}

// Run executes s. Steps are applied in order and pending watchers flush at
// every tick step and once more after the last step. It stops early when
// ctx is done.
func (r *Runner) Run(ctx context.Context, s *Script) (*Result, error) {
	sys := observer.New(r.opts...)
	state, _ := Build(s.State).(*observer.Object)
	if state == nil {
		state = observer.NewObject()
	}
	host := sys.NewHost(state)
	defer host.Destroy()

	res := &Result{State: state}
	step := 0
	for _, w := range s.Watches {
		label := w.label()
		opts := []observer.WatcherOption{observer.Expression(w.Path)}
		if w.Deep {
			opts = append(opts, observer.Deep())
		}
		if w.Immediate {
			opts = append(opts, observer.Immediate())
		}
		if w.Sync {
			opts = append(opts, observer.Sync())
		}
		_, err := host.Watch(w.Path, func(value, old interface{}) error {
			res.Events = append(res.Events, Event{
				Step:  step,
				Watch: label,
				Value: Plain(value),
				Old:   Plain(old),
			})
			return nil
		}, opts...)
		if err != nil {
			return nil, err
		}
	}

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step = i + 1
		if err := apply(sys, state, st); err != nil {
			return nil, fmt.Errorf("step %d (%s %s): %w", step, st.Op, st.Path, err)
		}
		res.Steps++
	}
	sys.Drain()

	digest, err := Digest(state)
	if err != nil {
		return nil, err
	}
	res.Digest = digest
	return res, nil
}

func apply(sys *observer.System, root *observer.Object, st Step) error {
	switch st.Op {
	case OpTick:
		sys.Drain()
		return nil
	case OpSet, OpDelete:
		parent, key, err := resolveParent(root, st.Path)
		if err != nil {
			return err
		}
		if st.Op == OpSet {
			sys.SetProperty(parent, key, Build(st.Value))
		} else {
			sys.DeleteProperty(parent, key)
		}
		return nil
	}

	a, err := resolveArray(root, st.Path)
	if err != nil {
		return err
	}
	switch st.Op {
	case OpPush:
		a.Push(buildAll(st.Values)...)
	case OpPop:
		a.Pop()
	case OpSplice:
		a.Splice(st.Start, st.Count, buildAll(st.Values)...)
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, st.Op)
	}
	return nil
}

func buildAll(vs []interface{}) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = Build(v)
	}
	return out
}

func resolve(root *observer.Object, path string) (interface{}, error) {
	if path == "" {
		return root, nil
	}
	get, ok := observer.ParsePath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", observer.ErrBadPath, path)
	}
	return get(root), nil
}

// resolveParent splits path into the container holding its last segment
// and the key of that segment within it.
func resolveParent(root *observer.Object, path string) (interface{}, interface{}, error) {
	if _, ok := observer.ParsePath(path); !ok || path == "" {
		return nil, nil, fmt.Errorf("%w: %q", observer.ErrBadPath, path)
	}
	parentPath, last := "", path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		parentPath, last = path[:i], path[i+1:]
	}
	parent, err := resolve(root, parentPath)
	if err != nil {
		return nil, nil, err
	}
	switch parent.(type) {
	case *observer.Array:
		i, err := strconv.Atoi(last)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q is not an index", ErrBadTarget, last)
		}
		return parent, i, nil
	case *observer.Object:
		return parent, last, nil
	}
	return nil, nil, fmt.Errorf("%w: %q is %T", ErrBadTarget, parentPath, parent)
}

func resolveArray(root *observer.Object, path string) (*observer.Array, error) {
	v, err := resolve(root, path)
	if err != nil {
		return nil, err
	}
	a, ok := v.(*observer.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, not an array", ErrBadTarget, path, v)
	}
	return a, nil
}
