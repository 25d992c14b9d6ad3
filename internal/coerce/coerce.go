// Package coerce converts the loosely-typed values in simulator payloads to
// the types the engine needs. Every function is total: malformed input
// degrades to the caller's fallback, never to an error or panic, because a
// bad field from the producer must not take the visualization down.
package coerce

import (
	"math"
	"strconv"
	"strings"
)

// Number converts v to a finite float64, or returns fallback.
func Number(v any, fallback float64) float64 {
	f, ok := numeric(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

// Bool converts v to a bool, or returns fallback. Accepts native bools,
// the string tokens true/yes/1 and false/no/0 (case-insensitive), and
// numeric 0/1.
func Bool(v any, fallback bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
		return fallback
	default:
		if f, ok := numeric(v); ok {
			switch f {
			case 0:
				return false
			case 1:
				return true
			}
		}
		return fallback
	}
}

// Color returns v as a non-empty color string, or fallback.
func Color(v any, fallback string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// String returns the stringified non-empty value of v, or fallback.
func String(v any, fallback string) string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return fallback
		}
		return t
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return fallback
	default:
		if f, ok := numeric(v); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return fallback
	}
}

// numeric widens any Go numeric (or numeric string) to float64.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
