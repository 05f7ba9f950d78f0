package protocol

import "strconv"

// Truthy converts an output value to the boolean that gates connection
// follow-through. The rules mirror dynamic-language truthiness: explicit
// booleans win, boolean-looking strings parse, other strings are truthy
// when non-empty, numbers when non-zero, collections when non-empty. Nil
// and unknown types are falsy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}

		return v != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case nil:
		return false
	default:
		return false
	}
}
