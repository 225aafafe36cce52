package observer

import (
	"errors"
	"fmt"
)

var (
	// ErrInfiniteUpdate is reported when a watcher keeps re-queueing itself
	// within one flush.
	ErrInfiniteUpdate = errors.New("depwatch: infinite update loop")

	// ErrPrimitiveTarget is a diagnostic for SetProperty/DeleteProperty on a
	// value that is not a container.
	ErrPrimitiveTarget = errors.New("depwatch: cannot set reactive property on nil or primitive value")

	// ErrRootProperty is a diagnostic for adding or deleting properties on a
	// root data object or a host instance at runtime. Declare the key upfront.
	ErrRootProperty = errors.New("depwatch: avoid adding or deleting reactive properties on a root data object at runtime")

	// ErrBadPath is a diagnostic for a watch expression that is not a simple
	// dot-delimited path.
	ErrBadPath = errors.New("depwatch: failed watching path")

	// ErrInvalidKey is a diagnostic for a key whose type does not fit the
	// container, such as a string key on an Array.
	ErrInvalidKey = errors.New("depwatch: invalid key for container")
)

// WatcherError wraps a failure reported from a watcher getter or callback.
type WatcherError struct {
	Expression string
	Phase      string
	Err        error
}

func (e *WatcherError) Error() string {
	return fmt.Sprintf("%s for watcher %q: %v", e.Phase, e.Expression, e.Err)
}

func (e *WatcherError) Unwrap() error {
	return e.Err
}
