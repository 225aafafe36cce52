package report

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// FormatValue renders an event value on one line, mappings and sequences in
// YAML flow style.
func FormatValue(v interface{}) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func writeValue(sb *strings.Builder, v interface{}) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		sb.WriteString(strconv.Quote(x))
	case yaml.MapSlice:
		sb.WriteString("{")
		for i, item := range x {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprint(sb, item.Key)
			sb.WriteString(": ")
			writeValue(sb, item.Value)
		}
		sb.WriteString("}")
	case []interface{}:
		sb.WriteString("[")
		for i, item := range x {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, item)
		}
		sb.WriteString("]")
	default:
		fmt.Fprint(sb, x)
	}
}

func digestHex(d uint64) string {
	return fmt.Sprintf("%016x", d)
}
