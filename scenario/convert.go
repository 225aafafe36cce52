package scenario

import (
	"fmt"
	"sort"

	"github.com/delaneyj/depwatch/observer"
	"gopkg.in/yaml.v2"
)

// Build turns decoded YAML into containers: mappings become Objects and
// sequences become Arrays. Scalars are returned as is.
func Build(v interface{}) interface{} {
	switch x := v.(type) {
	case yaml.MapSlice:
		o := observer.NewObject()
		for _, item := range x {
			o.Put(fmt.Sprint(item.Key), Build(item.Value))
		}
		return o
	case map[interface{}]interface{}:
		keys := make([]string, 0, len(x))
		values := make(map[string]interface{}, len(x))
		for k, v := range x {
			key := fmt.Sprint(k)
			keys = append(keys, key)
			values[key] = v
		}
		sort.Strings(keys)
		o := observer.NewObject()
		for _, k := range keys {
			o.Put(k, Build(values[k]))
		}
		return o
	case []interface{}:
		items := make([]interface{}, len(x))
		for i, item := range x {
			items[i] = Build(item)
		}
		return observer.NewArray(items...)
	default:
		return v
	}
}

// Plain converts containers back into YAML-encodable values.
func Plain(v interface{}) interface{} {
	switch x := v.(type) {
	case *observer.Object:
		keys := x.Keys()
		out := make(yaml.MapSlice, 0, len(keys))
		for _, k := range keys {
			out = append(out, yaml.MapItem{Key: k, Value: Plain(x.Get(k))})
		}
		return out
	case *observer.Array:
		items := x.Items()
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = Plain(item)
		}
		return out
	default:
		return v
	}
}
