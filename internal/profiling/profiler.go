// Package profiling computes per-column descriptive statistics and
// anomaly flags from raw row data.
package profiling

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/coerce"
)

// Config holds profiling thresholds
type Config struct {
	// NumericThreshold is the fraction of non-null values that must
	// parse as numbers for a column to profile numerically.
	NumericThreshold float64
	// DateThreshold is the fraction of non-null values that must parse
	// as dates for a column to profile chronologically.
	DateThreshold float64
	// Concurrency bounds the per-column fan-out in ProfileDataset
	Concurrency int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		NumericThreshold: 0.8,
		DateThreshold:    0.6,
		Concurrency:      4,
	}
}

// Profiler computes column profiles from dataset snapshots. Profiling
// is pure: quality issues become anomaly tags, never errors.
type Profiler struct {
	config Config
}

// NewProfiler creates a profiler with the given config
func NewProfiler(config Config) *Profiler {
	if config.NumericThreshold <= 0 {
		config.NumericThreshold = 0.8
	}
	if config.DateThreshold <= 0 {
		config.DateThreshold = 0.6
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &Profiler{config: config}
}

// Profile computes the descriptive profile for one column. Degenerate
// input (zero rows, all nulls) yields a zeroed profile, not an error.
func (p *Profiler) Profile(ds *tabular.Dataset, columnName string) profile.ColumnProfile {
	total := ds.RowCount()
	nonNull := ds.NonNullValues(columnName)
	nullCount := total - len(nonNull)

	prof := profile.ColumnProfile{
		Name:      columnName,
		Count:     total,
		NullCount: nullCount,
		Anomalies: []profile.AnomalyTag{},
	}
	if total > 0 {
		prof.NullPercentage = float64(nullCount) / float64(total) * 100
	}
	if len(nonNull) == 0 {
		prof.Anomalies = p.detectAnomalies(prof, nonNull, columnKindOther, 0)
		return prof
	}

	prof.UniqueCount = countUnique(nonNull)
	prof.CardinalityRatio = float64(prof.UniqueCount) / float64(len(nonNull))

	numericVals, numericRate := numericSubset(nonNull)
	dateVals, dateRate := dateSubset(nonNull)

	kind := columnKindOther
	switch {
	case numericRate >= p.config.NumericThreshold:
		kind = columnKindNumeric
	case dateRate >= p.config.DateThreshold:
		kind = columnKindDate
	}

	switch kind {
	case columnKindNumeric:
		p.fillNumericStats(&prof, numericVals)
	case columnKindDate:
		p.fillDateStats(&prof, dateVals)
	default:
		p.fillLexicographicStats(&prof, nonNull)
	}

	prof.Anomalies = p.detectAnomalies(prof, nonNull, kind, dateRate)
	return prof
}

// ProfileDataset profiles every column, fanning out across columns.
// Column computations share no mutable state, so plain data
// parallelism is safe.
func (p *Profiler) ProfileDataset(ctx context.Context, ds *tabular.Dataset) (map[string]profile.ColumnProfile, error) {
	results := make([]profile.ColumnProfile, len(ds.Columns))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)
	for i, col := range ds.Columns {
		i, col := i, col
		g.Go(func() error {
			results[i] = p.Profile(ds, col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]profile.ColumnProfile, len(results))
	for _, prof := range results {
		out[prof.Name] = prof
	}
	return out, nil
}

type columnKind int

const (
	columnKindOther columnKind = iota
	columnKindNumeric
	columnKindDate
)

func (p *Profiler) fillNumericStats(prof *profile.ColumnProfile, values []float64) {
	if len(values) == 0 {
		return
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	minVal, _ := stats.Min(values)
	maxVal, _ := stats.Max(values)
	stdDev, _ := stats.StandardDeviation(values)

	prof.Mean = &mean
	prof.Median = &median
	prof.StdDev = &stdDev
	prof.Min = formatNumber(minVal)
	prof.Max = formatNumber(maxVal)
}

func (p *Profiler) fillDateStats(prof *profile.ColumnProfile, dates []time.Time) {
	if len(dates) == 0 {
		return
	}

	minDate, maxDate := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	prof.Min = coerce.CanonicalDate(minDate)
	prof.Max = coerce.CanonicalDate(maxDate)
}

func (p *Profiler) fillLexicographicStats(prof *profile.ColumnProfile, values []tabular.Value) {
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = v.String()
	}
	sort.Strings(strs)
	prof.Min = strs[0]
	prof.Max = strs[len(strs)-1]
}

// detectAnomalies applies the independent anomaly rules; every
// matching rule is recorded.
func (p *Profiler) detectAnomalies(prof profile.ColumnProfile, nonNull []tabular.Value, kind columnKind, dateRate float64) []profile.AnomalyTag {
	anomalies := []profile.AnomalyTag{}

	if prof.NullPercentage > 50 {
		anomalies = append(anomalies, profile.AnomalyHighNulls)
	}

	// High cardinality applies to category-like columns. Integer-code
	// columns qualify once they look identifier-like: near-unique with
	// more distinct values than any plausible category set.
	if highCardinality(prof, nonNull, kind) {
		anomalies = append(anomalies, profile.AnomalyHighCardinality)
	}

	if kind == columnKindNumeric && prof.UniqueCount < 5 && prof.Count > 20 {
		anomalies = append(anomalies, profile.AnomalyLowVariance)
	}

	if kind != columnKindNumeric {
		if len(coerce.DistinctShapes(nonNull)) > 2 {
			anomalies = append(anomalies, profile.AnomalyMixedTypes)
		}
	}

	if kind == columnKindDate {
		if failRate := 1 - dateRate; failRate > 0.10 {
			anomalies = append(anomalies, profile.AnomalyInvalidDateFormats)
		}
	}

	return anomalies
}

func highCardinality(prof profile.ColumnProfile, nonNull []tabular.Value, kind columnKind) bool {
	limit := 100
	if byRows := int(0.8 * float64(prof.Count)); byRows < limit {
		limit = byRows
	}

	switch kind {
	case columnKindDate:
		return false
	case columnKindNumeric:
		if !allIntegerShaped(nonNull) {
			return false
		}
		return prof.UniqueCount > 100 && prof.CardinalityRatio > 0.9
	default:
		return prof.UniqueCount > limit
	}
}

func allIntegerShaped(nonNull []tabular.Value) bool {
	for _, v := range nonNull {
		if coerce.ShapeOf(v) != coerce.ShapeInteger {
			return false
		}
	}
	return true
}

func numericSubset(values []tabular.Value) ([]float64, float64) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsNumeric() {
			nums = append(nums, v.AsFloat64())
			continue
		}
		if n, ok := coerce.ParseNumber(v.String()); ok {
			nums = append(nums, n)
		}
	}
	if len(values) == 0 {
		return nums, 0
	}
	return nums, float64(len(nums)) / float64(len(values))
}

func dateSubset(values []tabular.Value) ([]time.Time, float64) {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		if v.IsTimestamp() {
			dates = append(dates, v.AsTime())
			continue
		}
		if t, ok := coerce.ParseDate(v.String()); ok {
			dates = append(dates, t)
		}
	}
	if len(values) == 0 {
		return dates, 0
	}
	return dates, float64(len(dates)) / float64(len(values))
}

func countUnique(values []tabular.Value) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v.String()] = struct{}{}
	}
	return len(seen)
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", f), "0"), ".")
}
