package scenario

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/depwatch/observer"
)

// Digest hashes a state tree in key order. Two trees with the same keys,
// order and scalar values have the same digest.
func Digest(v interface{}) (uint64, error) {
	h := xxhash.New()
	if err := writeCanonical(h, v); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func writeCanonical(w io.StringWriter, v interface{}) error {
	var err error
	switch x := v.(type) {
	case *observer.Object:
		if _, err = w.WriteString("{"); err != nil {
			return err
		}
		for i, k := range x.Keys() {
			if i > 0 {
				w.WriteString(",")
			}
			w.WriteString(strconv.Quote(k))
			w.WriteString(":")
			if err = writeCanonical(w, x.Get(k)); err != nil {
				return err
			}
		}
		_, err = w.WriteString("}")
	case *observer.Array:
		if _, err = w.WriteString("["); err != nil {
			return err
		}
		for i, item := range x.Items() {
			if i > 0 {
				w.WriteString(",")
			}
			if err = writeCanonical(w, item); err != nil {
				return err
			}
		}
		_, err = w.WriteString("]")
	case string:
		_, err = w.WriteString(strconv.Quote(x))
	case nil:
		_, err = w.WriteString("null")
	default:
		_, err = w.WriteString(fmt.Sprintf("%T(%v)", x, x))
	}
	return err
}
