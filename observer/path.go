package observer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var bailRE = regexp.MustCompile(`[^\w.$]`)

// ParsePath compiles a dot-delimited path such as "user.tags.0" into a
// function reading it from a root value. ok is false when the path contains
// anything other than word characters, dots and dollar signs.
func ParsePath(path string) (get func(root any) any, ok bool) {
	if bailRE.MatchString(path) {
		return nil, false
	}
	segments := strings.Split(path, ".")
	return func(root any) any {
		obj := root
		for _, seg := range segments {
			if obj == nil {
				return nil
			}
			obj = lookup(obj, seg)
		}
		return obj
	}, true
}

func lookup(v any, seg string) any {
	if o := asObject(v); o != nil {
		return o.Get(seg)
	}
	if a := asArray(v); a != nil {
		if i, err := strconv.Atoi(seg); err == nil {
			return a.At(i)
		}
		if seg == "length" {
			return a.Len()
		}
	}
	return nil
}

// pathGetter builds a Getter reading path from root. A malformed path yields
// a getter that always returns nil, after a diagnostic.
func (s *System) pathGetter(root any, path string) Getter {
	get, ok := ParsePath(path)
	if !ok {
		s.warn(fmt.Errorf("%w: %q, only simple dot-delimited paths are accepted, use a function instead", ErrBadPath, path))
		return func() (any, error) { return nil, nil }
	}
	return func() (any, error) {
		return get(root), nil
	}
}
