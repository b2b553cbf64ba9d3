// internal/analysis/validator/nan.go
package validator

import (
	"math"
	"strings"
)

// The explicit-NaN vs absent distinction is the central contract of the
// slot and settings checks, so it lives in two separate predicates.
// Conflating them behind one nullability check produced false positives
// on legitimately optional fields in earlier versions of the source data
// pipeline.

// IsAbsent reports whether a value is genuinely unset: nil, or an empty
// container. Absent values on optional fields are never defects.
func IsAbsent(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// IsExplicitNaN reports whether a value is structurally present but marks
// invalid numeric data: a floating-point NaN or the literal text "NaN".
// nil is NOT explicit NaN.
func IsExplicitNaN(v interface{}) bool {
	switch val := v.(type) {
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "nan")
	default:
		return false
	}
}

// isMissingOrNaN reports whether a required field is unusable: absent,
// explicit NaN, or one of the textual null markers the source exporter
// emits.
func isMissingOrNaN(v interface{}) bool {
	if IsAbsent(v) || IsExplicitNaN(v) {
		return true
	}
	if s, ok := v.(string); ok {
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "", "NONE", "NULL":
			return true
		}
	}
	return false
}
