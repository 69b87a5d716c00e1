package alerts

import (
	"strconv"
	"strings"

	"github.com/pagetrend/pagetrend/internal/trend"
)

// evalCondition evaluates a rule condition string against one delta record.
//
// Supported expressions (field operator value):
//
//	percent_delta < -0.5
//	absolute_delta < -1000
//	absolute_delta > 500
//	recent_count < 10
//	prior_count >= 100
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, rec trend.Record) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	v, ok := numericField(field, rec)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the record.
func numericField(field string, rec trend.Record) (float64, bool) {
	switch field {
	case "percent_delta":
		return rec.Pct, true
	case "absolute_delta":
		return float64(rec.Abs), true
	case "recent_count":
		return float64(rec.Recent), true
	case "prior_count":
		return float64(rec.Prior), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
