// Package coerce provides deterministic, total conversion of raw cell
// values into typed values. Every parse either succeeds or reports
// failure explicitly; nothing relies on implicit runtime coercion.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

// Coercer handles deterministic type coercion of raw values
type Coercer struct{}

// New creates a coercer
func New() *Coercer {
	return &Coercer{}
}

// Value deterministically converts an unknown raw value to a typed Value
func (c *Coercer) Value(rawValue interface{}) tabular.Value {
	if rawValue == nil {
		return tabular.NewMissingValue()
	}

	switch v := rawValue.(type) {
	case bool:
		return tabular.NewBooleanValue(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return tabular.NewMissingValue()
		}
		return tabular.NewNumericValue(v)
	case float32:
		return c.Value(float64(v))
	case int:
		return tabular.NewNumericValue(float64(v))
	case int64:
		return tabular.NewNumericValue(float64(v))
	case time.Time:
		return tabular.NewTimestampValue(v)
	}

	strVal := toString(rawValue)
	if strings.TrimSpace(strVal) == "" {
		return tabular.NewMissingValue()
	}

	// Numeric first (most restrictive), then timestamp, then string
	if num, ok := ParseNumber(strVal); ok {
		return tabular.NewNumericValue(num)
	}
	if ts, ok := ParseDate(strVal); ok {
		return tabular.NewTimestampValue(ts)
	}
	if b, ok := parseBoolean(strVal); ok {
		return tabular.NewBooleanValue(b)
	}

	return tabular.NewStringValue(strings.TrimSpace(strVal))
}

// ParseNumber attempts to parse a string as a finite number.
// Handles thousands separators, currency symbols, percent signs and
// parenthesized negatives.
func ParseNumber(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.ReplaceAll(cleanVal, ",", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// dateLayouts is the literal library of accepted date shapes:
// ISO, US, EU and written-month forms.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// ParseDate attempts to parse a string as a date using the layout library
func ParseDate(strVal string) (time.Time, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleanVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LooksLikeDate reports whether the string passes either a direct date
// parse or one of the literal date-shape patterns.
func LooksLikeDate(strVal string) bool {
	_, ok := ParseDate(strVal)
	return ok
}

// CanonicalDate renders a parsed date in the canonical YYYY-MM-DD form
func CanonicalDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseBoolean(strVal string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true", "yes", "y", "on":
		return true, true
	case "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

// toString converts interface{} to string safely
func toString(val interface{}) string {
	if val == nil {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
