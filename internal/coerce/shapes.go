package coerce

import (
	"strconv"
	"strings"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

// ValueShape is the surface form of a single cell, used for
// mixed-type detection and rule mining.
type ValueShape string

const (
	ShapeInteger  ValueShape = "integer"
	ShapeDecimal  ValueShape = "decimal"
	ShapeDate     ValueShape = "date"
	ShapeLongText ValueShape = "long_text"
	ShapeText     ValueShape = "text"
)

// longTextThreshold separates free text from short labels
const longTextThreshold = 100

// ShapeOf classifies a single cell's surface form
func ShapeOf(v tabular.Value) ValueShape {
	switch {
	case v.IsNumeric():
		f := v.AsFloat64()
		if f == float64(int64(f)) {
			return ShapeInteger
		}
		return ShapeDecimal
	case v.IsTimestamp():
		return ShapeDate
	case v.IsBoolean():
		return ShapeText
	}

	s := v.AsString()
	if len(s) > longTextThreshold {
		return ShapeLongText
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return ShapeInteger
	}
	if _, ok := ParseNumber(s); ok {
		return ShapeDecimal
	}
	if LooksLikeDate(s) {
		return ShapeDate
	}
	return ShapeText
}

// DistinctShapes counts the distinct surface forms across values
func DistinctShapes(values []tabular.Value) map[ValueShape]int {
	shapes := make(map[ValueShape]int)
	for _, v := range values {
		if v.IsMissing {
			continue
		}
		shapes[ShapeOf(v)]++
	}
	return shapes
}

// DominantShape returns the most frequent shape, or ShapeText when
// there are no non-missing values.
func DominantShape(values []tabular.Value) ValueShape {
	shapes := DistinctShapes(values)
	best := ShapeText
	bestCount := 0
	for shape, count := range shapes {
		if count > bestCount {
			best = shape
			bestCount = count
		}
	}
	return best
}
