package entitle

import (
	"encoding/json"
	"strconv"
)

// CoerceString converts a heterogeneous scalar value (as produced by
// decoding provider JSON into interface{}) to its string form. Non-scalar
// values report false; they never contribute to extraction.
func CoerceString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case float64:
		// JSON numbers decode as float64. Render integers without the
		// trailing ".0" so numeric identifiers survive round trips.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}
