package coerce

import (
	"math"
	"testing"
	"time"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"42", 42, true},
		{"-3.5", -3.5, true},
		{"1,234,567.89", 1234567.89, true},
		{"$1,200", 1200, true},
		{"€99.50", 99.5, true},
		{"45%", 45, true},
		{"(123)", -123, true},
		{"($1,000)", -1000, true},
		{"  7  ", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"12abc", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseNumber(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2024-03-15", "2024-03-15", true},
		{"2024/03/15", "2024-03-15", true},
		{"03/15/2024", "2024-03-15", true},
		{"Mar 15, 2024", "2024-03-15", true},
		{"15 March 2024", "2024-03-15", true},
		{"2024-03-15T10:30:00Z", "2024-03-15", true},
		{"not a date", "", false},
		{"15", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && CanonicalDate(got) != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.input, CanonicalDate(got), tt.want)
		}
	}
}

func TestCoercerValue(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		input interface{}
		want  tabular.ValueType
	}{
		{"nil", nil, tabular.ValueTypeMissing},
		{"empty string", "", tabular.ValueTypeMissing},
		{"whitespace", "   ", tabular.ValueTypeMissing},
		{"native bool", true, tabular.ValueTypeBoolean},
		{"native float", 3.14, tabular.ValueTypeNumeric},
		{"native int", 7, tabular.ValueTypeNumeric},
		{"native time", time.Now(), tabular.ValueTypeTimestamp},
		{"numeric string", "1200", tabular.ValueTypeNumeric},
		{"currency string", "$99.95", tabular.ValueTypeNumeric},
		{"date string", "2024-01-15", tabular.ValueTypeTimestamp},
		{"bool string", "yes", tabular.ValueTypeBoolean},
		{"plain string", "hello world", tabular.ValueTypeString},
		{"NaN", math.NaN(), tabular.ValueTypeMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Value(tt.input)
			if got.Type != tt.want {
				t.Errorf("Value(%v).Type = %s, want %s", tt.input, got.Type, tt.want)
			}
		})
	}
}

func TestCoercionIsDeterministic(t *testing.T) {
	c := New()
	inputs := []interface{}{"42", "2024-01-15", "yes", "text", 3.5}
	for _, in := range inputs {
		first := c.Value(in)
		for i := 0; i < 3; i++ {
			if got := c.Value(in); got.Type != first.Type {
				t.Fatalf("coercion of %v not deterministic: %s then %s", in, first.Type, got.Type)
			}
		}
	}
}

func TestShapeOf(t *testing.T) {
	c := New()

	tests := []struct {
		input interface{}
		want  ValueShape
	}{
		{"42", ShapeInteger},
		{"3.14", ShapeDecimal},
		{"2024-01-15", ShapeDate},
		{"short text", ShapeText},
	}
	for _, tt := range tests {
		if got := ShapeOf(c.Value(tt.input)); got != tt.want {
			t.Errorf("ShapeOf(%v) = %s, want %s", tt.input, got, tt.want)
		}
	}

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	if got := ShapeOf(c.Value(string(long))); got != ShapeLongText {
		t.Errorf("ShapeOf(long string) = %s, want %s", got, ShapeLongText)
	}
}
