package classify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

func stringColumn(name string, values []string) *tabular.Dataset {
	rows := make([]tabular.Row, len(values))
	for i, v := range values {
		rows[i] = tabular.Row{name: tabular.NewStringValue(v)}
	}
	return tabular.NewDataset("test", []string{name}, rows)
}

func TestClassifyBaselines(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		values   []string
		wantType profile.SemanticType
		wantBand profile.ConfidenceBand
	}{
		{
			name:     "clean numeric",
			column:   "amount",
			values:   []string{"1200", "980.5", "1,450", "$2,000", "310"},
			wantType: profile.TypeNumeric,
			wantBand: profile.BandHigh,
		},
		{
			name:     "clean dates",
			column:   "order_date",
			values:   []string{"2024-01-15", "01/20/2024", "2024-03-02", "2024-04-11"},
			wantType: profile.TypeDate,
			wantBand: profile.BandHigh,
		},
		{
			name:     "repeated labels",
			column:   "region",
			values:   []string{"North", "South", "North", "North", "South", "North", "North", "South"},
			wantType: profile.TypeCategorical,
			wantBand: profile.BandHigh,
		},
		{
			name:     "free text",
			column:   "notes",
			values:   []string{"call back tuesday", "left voicemail", "asked for manager", "prefers email", "no answer", "sent brochure"},
			wantType: profile.TypeText,
			wantBand: profile.BandLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(DefaultConfig())
			got := c.Classify(stringColumn(tt.column, tt.values), tt.column, nil)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantBand, got.Band())
		})
	}
}

func TestClassifyAllNullColumn(t *testing.T) {
	rows := []tabular.Row{
		{"v": tabular.NewMissingValue()},
		{"v": tabular.NewMissingValue()},
	}
	ds := tabular.NewDataset("test", []string{"v"}, rows)

	got := NewClassifier(DefaultConfig()).Classify(ds, "v", nil)
	assert.Equal(t, profile.TypeText, got.Type)
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)
	assert.Equal(t, profile.BandLow, got.Band())
}

func TestClassifyIsDeterministic(t *testing.T) {
	ds := stringColumn("mixed", []string{"12", "hello", "2024-01-15", "42", "world", "99"})
	c := NewClassifier(DefaultConfig())
	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "mixed"},
		TargetType:      profile.TypeNumeric,
		ConfidenceScore: 0.7,
	}}

	first := c.Classify(ds, "mixed", rules)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify(ds, "mixed", rules))
	}
}

func TestOverridePrecedence(t *testing.T) {
	values := make([]string, 20)
	for i := range values {
		values[i] = fmt.Sprintf("%d", 1000+i)
	}
	ds := stringColumn("code", values)
	c := NewClassifier(DefaultConfig())

	before := c.Classify(ds, "code", nil)
	assert.Equal(t, profile.TypeNumeric, before.Type)

	c.Overrides().Set("code", profile.TypeCategorical)
	forced := c.Classify(ds, "code", nil)
	assert.Equal(t, profile.TypeCategorical, forced.Type)
	assert.Equal(t, 1.0, forced.Confidence)

	// Overrides beat learned rules too
	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "code"},
		TargetType:      profile.TypeNumeric,
		ConfidenceScore: 0.99,
	}}
	assert.Equal(t, profile.TypeCategorical, c.Classify(ds, "code", rules).Type)

	c.Overrides().Clear("code")
	after := c.Classify(ds, "code", nil)
	assert.Equal(t, profile.TypeNumeric, after.Type)
}

func TestRuleFlipsLowConfidenceBaseline(t *testing.T) {
	ds := stringColumn("dob", []string{"unknown", "pending", "tbd", "n/a", "missing", "later"})
	c := NewClassifier(DefaultConfig())

	baseline := c.Classify(ds, "dob", nil)
	require.Equal(t, profile.TypeText, baseline.Type)

	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "dob"},
		TargetType:      profile.TypeDate,
		ConfidenceScore: 0.9,
	}}
	got := c.Classify(ds, "dob", rules)
	assert.Equal(t, profile.TypeDate, got.Type)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestRuleAgreementBoostsConfidence(t *testing.T) {
	ds := stringColumn("signup_date", []string{"2024-01-15", "2024-02-01", "not yet", "2024-03-10", "2024-04-22"})
	c := NewClassifier(DefaultConfig())

	baseline := c.Classify(ds, "signup_date", nil)
	require.Equal(t, profile.TypeDate, baseline.Type)

	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "signup"},
		TargetType:      profile.TypeDate,
		ConfidenceScore: 0.8,
	}}
	got := c.Classify(ds, "signup_date", rules)
	assert.Equal(t, profile.TypeDate, got.Type)
	assert.Greater(t, got.Confidence, baseline.Confidence)
	assert.LessOrEqual(t, got.Confidence, 1.0)
}

func TestRuleFiresOnValueShape(t *testing.T) {
	// Integer-coded enum: the baseline reads it as numeric
	ds := stringColumn("flags", []string{"1", "2", "1", "3", "2", "1"})
	c := NewClassifier(DefaultConfig())

	baseline := c.Classify(ds, "flags", nil)
	require.Equal(t, profile.TypeNumeric, baseline.Type)

	// Name pattern misses, shape pattern matches the dominant shape
	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "status", ShapePattern: "integer"},
		TargetType:      profile.TypeCategorical,
		ConfidenceScore: 0.95,
	}}
	got := c.Classify(ds, "flags", rules)
	assert.Equal(t, profile.TypeCategorical, got.Type)
	assert.InDelta(t, 0.95, got.Confidence, 1e-9)

	// A different dominant shape leaves the rule dormant
	other := stringColumn("flags", []string{"2024-01-01", "2024-02-01", "2024-03-01"})
	assert.Equal(t, profile.TypeDate, c.Classify(other, "flags", rules).Type)
}

func TestWeakRuleDoesNotFlipStrongBaseline(t *testing.T) {
	ds := stringColumn("price", []string{"10.50", "22.00", "7.25", "99.99"})
	c := NewClassifier(DefaultConfig())

	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "price"},
		TargetType:      profile.TypeCategorical,
		ConfidenceScore: 0.5,
	}}
	got := c.Classify(ds, "price", rules)
	assert.Equal(t, profile.TypeNumeric, got.Type)
}

func TestRuleWithInvalidTargetIgnored(t *testing.T) {
	ds := stringColumn("region", []string{"North", "South", "North", "South"})
	c := NewClassifier(DefaultConfig())

	rules := []learning.LearnedRule{{
		Pattern:         learning.RulePattern{NamePattern: "region"},
		TargetType:      profile.SemanticType("geo"),
		ConfidenceScore: 0.99,
	}}
	got := c.Classify(ds, "region", rules)
	assert.Equal(t, profile.TypeCategorical, got.Type)
}

func TestBandThresholds(t *testing.T) {
	assert.Equal(t, profile.BandHigh, profile.BandFor(0.8))
	assert.Equal(t, profile.BandHigh, profile.BandFor(0.95))
	assert.Equal(t, profile.BandMedium, profile.BandFor(0.6))
	assert.Equal(t, profile.BandMedium, profile.BandFor(0.79))
	assert.Equal(t, profile.BandLow, profile.BandFor(0.59))
	assert.Equal(t, profile.BandLow, profile.BandFor(0))
}
