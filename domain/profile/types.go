// Package profile holds the column profiling and semantic
// classification types shared by the analysis engines.
package profile

// SemanticType is the inferred logical kind of a column's values,
// as opposed to its raw storage representation.
type SemanticType string

const (
	TypeNumeric     SemanticType = "numeric"
	TypeDate        SemanticType = "date"
	TypeCategorical SemanticType = "categorical"
	TypeText        SemanticType = "text"
)

// IsValid reports whether t is one of the known semantic types
func (t SemanticType) IsValid() bool {
	switch t {
	case TypeNumeric, TypeDate, TypeCategorical, TypeText:
		return true
	}
	return false
}

// AnomalyTag flags a structural quality issue detected during profiling
type AnomalyTag string

const (
	AnomalyHighNulls          AnomalyTag = "high_nulls"
	AnomalyHighCardinality    AnomalyTag = "high_cardinality"
	AnomalyLowVariance        AnomalyTag = "low_variance"
	AnomalyMixedTypes         AnomalyTag = "mixed_types"
	AnomalyInvalidDateFormats AnomalyTag = "invalid_date_formats"
)

// ColumnProfile carries per-column descriptive statistics and anomaly
// flags. Computed fresh per analysis call, never mutated afterwards.
type ColumnProfile struct {
	Name             string       `json:"name"`
	Count            int          `json:"count"`
	NullCount        int          `json:"null_count"`
	NullPercentage   float64      `json:"null_percentage"`
	UniqueCount      int          `json:"unique_count"`
	CardinalityRatio float64      `json:"cardinality_ratio"`
	Mean             *float64     `json:"mean,omitempty"`
	Median           *float64     `json:"median,omitempty"`
	StdDev           *float64     `json:"std_dev,omitempty"`
	Min              string       `json:"min"`
	Max              string       `json:"max"`
	Anomalies        []AnomalyTag `json:"anomalies"`
}

// HasAnomaly reports whether the profile carries the given tag
func (p ColumnProfile) HasAnomaly(tag AnomalyTag) bool {
	for _, a := range p.Anomalies {
		if a == tag {
			return true
		}
	}
	return false
}

// ConfidenceBand groups a numeric confidence score for presentation.
// The numeric score stays authoritative so thresholds are not
// hard-coded downstream.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// BandFor maps a confidence score to its presentation band
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= 0.8:
		return BandHigh
	case confidence >= 0.6:
		return BandMedium
	default:
		return BandLow
	}
}

// ColumnClassification is the classifier's verdict for one column
type ColumnClassification struct {
	ColumnName string       `json:"column_name"`
	Type       SemanticType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// Band returns the presentation band for the classification confidence
func (c ColumnClassification) Band() ConfidenceBand {
	return BandFor(c.Confidence)
}
