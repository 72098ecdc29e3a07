// Package jsonutil coerces loosely-typed JSON values from model responses
// into the types the engine expects. Models occasionally return numbers as
// strings, strings as numbers, or a single string where an array was asked
// for.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// String converts a raw value to a string, tolerating numbers and booleans.
// Returns the empty string for null or empty input.
func String(raw json.RawMessage) string {
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

	return string(raw)
}

// Float converts a raw value to a float pointer, tolerating quoted numbers.
// Returns nil when the value is absent or not a number.
func Float(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return &numVal
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64); err == nil {
			return &parsed
		}
	}

	return nil
}

// StringList converts a raw value to a string slice. Arrays coerce per
// element; a bare scalar becomes a one-element slice. Empty elements are
// dropped.
func StringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err == nil {
		var items []string
		for _, item := range rawItems {
			if s := strings.TrimSpace(String(item)); s != "" {
				items = append(items, s)
			}
		}
		return items
	}

	if s := strings.TrimSpace(String(raw)); s != "" {
		return []string{s}
	}
	return nil
}
