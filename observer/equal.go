package observer

import (
	"math"
	"reflect"
)

// sameValue reports whether b is identical to a. Comparable values compare
// with ==, slices/maps/funcs by reference, and NaN equals NaN.
func sameValue(a, b any) (same bool) {
	if isNaN(a) && isNaN(b) {
		return true
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		// interface fields holding uncomparable values still panic
		defer func() {
			if recover() != nil {
				same = false
			}
		}()
		return a == b
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && (va.Len() == 0 || va.Pointer() == vb.Pointer())
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

// isObject reports whether v may be mutated in place without its identity
// changing.
func isObject(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(container); ok {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		return true
	}
	return false
}
