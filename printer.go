package questicle

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// FormatValue renders a runtime value for display: numbers without
// trailing zeros, strings quoted, lists bracketed, maps braced with
// keys in sorted order, functions as an opaque marker.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTNumber:
		return formatNumber(v.AsNumber())
	case VTBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case VTString:
		return "\"" + v.AsString() + "\""
	case VTList:
		items := v.AsList()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTMap:
		m := v.AsMap()
		keys := sortedKeys(m)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + FormatValue(m[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case VTFunc:
		return "<fn>"
	}
	return "null"
}

// displayString is FormatValue except strings are unquoted; this is
// what print and string concatenation use.
func displayString(v Value) string {
	if v.Tag == VTString {
		return v.AsString()
	}
	return FormatValue(v)
}

func formatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	// decimal notation throughout, no exponent form
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
