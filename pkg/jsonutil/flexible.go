// Package jsonutil tolerantly coerces loosely-typed JSON fields.
// Text-analysis services routinely return numbers as strings ("4") or
// strings as numbers, so classification parsing never trusts field types.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling
// cases where the model returns numbers or booleans instead of strings.
// Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	// Fallback: return raw string representation
	return string(raw)
}

// FlexibleIntValue converts a json.RawMessage to an int, accepting JSON
// numbers, numeric strings, and floats (truncated). The second return is
// false when no integer could be recovered.
func FlexibleIntValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return int(numVal), true
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(strVal)); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64); err == nil {
			return int(f), true
		}
	}

	return 0, false
}

// FlexibleFloatValue converts a json.RawMessage to a float64, accepting
// JSON numbers and numeric strings. The second return is false when no
// number could be recovered.
func FlexibleFloatValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numVal, true
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64); err == nil {
			return f, true
		}
	}

	return 0, false
}

// FlexibleBoolValue converts a json.RawMessage to a bool, accepting JSON
// booleans and "true"/"false" strings. Defaults to def when absent or
// unrecognizable.
func FlexibleBoolValue(raw json.RawMessage, def bool) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return def
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return boolVal
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		if b, err := strconv.ParseBool(strings.TrimSpace(strVal)); err == nil {
			return b
		}
	}

	return def
}
