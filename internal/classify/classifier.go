// Package classify assigns semantic types to columns from value
// shapes, learned rules and manual overrides.
package classify

import (
	"math"
	"sync"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/coerce"
)

// Config holds classification thresholds
type Config struct {
	// NumericThreshold is the parse success rate above which a column
	// classifies as numeric.
	NumericThreshold float64
	// DateThreshold is the parse success rate above which a column
	// classifies as date.
	DateThreshold float64
	// CategoricalUniqueRatio is the distinct-value ratio below which a
	// string column reads as categorical rather than free text.
	CategoricalUniqueRatio float64
	// SampleSize caps how many values feed the shape heuristic
	SampleSize int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		NumericThreshold:       0.8,
		DateThreshold:          0.6,
		CategoricalUniqueRatio: 0.5,
		SampleSize:             1000,
	}
}

// Classifier assigns a semantic type and confidence to columns. The
// rule set is passed in per call, never held as ambient state.
type Classifier struct {
	config    Config
	overrides *OverrideRegistry
}

// NewClassifier creates a classifier with the given config
func NewClassifier(config Config) *Classifier {
	if config.SampleSize <= 0 {
		config.SampleSize = 1000
	}
	return &Classifier{
		config:    config,
		overrides: NewOverrideRegistry(),
	}
}

// Overrides exposes the manual override registry
func (c *Classifier) Overrides() *OverrideRegistry {
	return c.overrides
}

// Classify assigns a semantic type to the column. A manual override
// takes precedence until superseded; otherwise the shape baseline is
// adjusted by any matching learned rules. Repeated calls with the same
// dataset and rule set return identical results.
func (c *Classifier) Classify(ds *tabular.Dataset, columnName string, rules []learning.LearnedRule) profile.ColumnClassification {
	if forced, ok := c.overrides.Get(columnName); ok {
		return profile.ColumnClassification{
			ColumnName: columnName,
			Type:       forced,
			Confidence: 1.0,
		}
	}

	values := c.sample(ds, columnName)
	baseline := c.baseline(columnName, values)
	return c.applyRules(baseline, string(coerce.DominantShape(values)), rules)
}

func (c *Classifier) sample(ds *tabular.Dataset, columnName string) []tabular.Value {
	values := ds.NonNullValues(columnName)
	if len(values) > c.config.SampleSize {
		values = values[:c.config.SampleSize]
	}
	return values
}

// baseline derives the initial type and confidence from value shapes
func (c *Classifier) baseline(columnName string, values []tabular.Value) profile.ColumnClassification {
	out := profile.ColumnClassification{ColumnName: columnName}
	if len(values) == 0 {
		// All-null column: best-effort text verdict flagged for review
		out.Type = profile.TypeText
		out.Confidence = 0.3
		return out
	}

	numericRate := parseRate(values, func(v tabular.Value) bool {
		if v.IsNumeric() {
			return true
		}
		_, ok := coerce.ParseNumber(v.String())
		return ok
	})
	dateRate := parseRate(values, func(v tabular.Value) bool {
		return v.IsTimestamp() || coerce.LooksLikeDate(v.String())
	})
	distinctRatio := distinctRatio(values)

	switch {
	case numericRate >= c.config.NumericThreshold:
		out.Type = profile.TypeNumeric
		// Fully unambiguous parses score 0.9, borderline ones 0.6
		out.Confidence = scaleConfidence(numericRate, c.config.NumericThreshold)
	case dateRate >= c.config.DateThreshold:
		out.Type = profile.TypeDate
		out.Confidence = scaleConfidence(dateRate, c.config.DateThreshold)
	case distinctRatio <= c.config.CategoricalUniqueRatio:
		out.Type = profile.TypeCategorical
		out.Confidence = 0.6 + 0.3*(1-distinctRatio)
	default:
		out.Type = profile.TypeText
		if coerce.DominantShape(values) == coerce.ShapeLongText {
			out.Confidence = 0.8
		} else {
			out.Confidence = 0.5
		}
	}

	out.Confidence = clamp01(out.Confidence)
	return out
}

// applyRules lets matching learned rules override or reinforce the
// baseline verdict. A rule matches on the column name or on the
// column's dominant value shape.
func (c *Classifier) applyRules(baseline profile.ColumnClassification, shape string, rules []learning.LearnedRule) profile.ColumnClassification {
	result := baseline
	for _, rule := range rules {
		if rule.TargetType == "" || !rule.TargetType.IsValid() {
			continue
		}
		if !rule.Pattern.MatchesName(baseline.ColumnName) && !rule.Pattern.MatchesShape(shape) {
			continue
		}
		if rule.TargetType == result.Type {
			// Agreement boosts confidence toward the rule's score
			boosted := result.Confidence + (1-result.Confidence)*rule.ConfidenceScore*0.5
			result.Confidence = clamp01(math.Max(result.Confidence, boosted))
			continue
		}
		if rule.ConfidenceScore > result.Confidence {
			result.Type = rule.TargetType
			result.Confidence = clamp01(rule.ConfidenceScore)
		}
	}
	return result
}

func parseRate(values []tabular.Value, ok func(tabular.Value) bool) float64 {
	matched := 0
	for _, v := range values {
		if ok(v) {
			matched++
		}
	}
	return float64(matched) / float64(len(values))
}

func distinctRatio(values []tabular.Value) float64 {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v.String()] = struct{}{}
	}
	return float64(len(seen)) / float64(len(values))
}

// scaleConfidence maps a parse rate in [threshold,1] onto [0.6,0.9]
func scaleConfidence(rate, threshold float64) float64 {
	if rate >= 1 {
		return 0.9
	}
	span := 1 - threshold
	if span <= 0 {
		return 0.9
	}
	return 0.6 + 0.3*(rate-threshold)/span
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// OverrideRegistry tracks user-forced column types. An override wins
// over every heuristic until it is superseded by a newer one.
type OverrideRegistry struct {
	mu    sync.RWMutex
	types map[string]profile.SemanticType
}

// NewOverrideRegistry creates an empty registry
func NewOverrideRegistry() *OverrideRegistry {
	return &OverrideRegistry{types: make(map[string]profile.SemanticType)}
}

// Set forces the type for a column
func (r *OverrideRegistry) Set(columnName string, t profile.SemanticType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[columnName] = t
}

// Get returns the forced type for a column, if any
func (r *OverrideRegistry) Get(columnName string) (profile.SemanticType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[columnName]
	return t, ok
}

// Clear removes the forced type for a column
func (r *OverrideRegistry) Clear(columnName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, columnName)
}
