package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Helpers for decoded JSON values (map[string]any), where numbers arrive as
// float64 or json.Number and clients often send numbers as strings.

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// idValue accepts positive integers as numbers or numeric strings.
func idValue(v any) (uint64, bool) {
	switch n := v.(type) {
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(n), 10, 64)
		return id, err == nil && id > 0
	case json.Number:
		id, err := strconv.ParseUint(n.String(), 10, 64)
		return id, err == nil && id > 0
	}

	f, ok := numberValue(v)
	if !ok || f <= 0 || f != math.Trunc(f) || f >= 1<<63 {
		return 0, false
	}
	return uint64(f), true
}

// stringValue returns v as a string. Null counts as empty.
func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	default:
		return "", false
	}
}

// hasValue reports whether key is present with a non-empty value.
func hasValue(raw map[string]any, key string) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}
