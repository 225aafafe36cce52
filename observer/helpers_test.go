package observer_test

import (
	"github.com/delaneyj/depwatch/observer"
)

type recorder struct {
	errs  []error
	warns []error
}

func newSystem(opts ...observer.Option) (*observer.System, *recorder) {
	rec := &recorder{}
	base := []observer.Option{
		observer.WithErrorHandler(func(err error) {
			rec.errs = append(rec.errs, err)
		}),
		observer.WithWarnHandler(func(err error) {
			rec.warns = append(rec.warns, err)
		}),
	}
	return observer.New(append(base, opts...)...), rec
}

func depIDs(deps []*observer.Dep) []uint64 {
	ids := make([]uint64, 0, len(deps))
	for _, d := range deps {
		ids = append(ids, d.ID())
	}
	return ids
}

type pair struct {
	value, old any
}

func collect(calls *[]pair) observer.Callback {
	return func(value, oldValue any) error {
		*calls = append(*calls, pair{value, oldValue})
		return nil
	}
}
