// Package hierarchy infers parent/child structure between columns
// from value co-occurrence and builds bounded navigable trees.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/hierarchy"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

// Config holds detection thresholds
type Config struct {
	// MinConfidence is the single-parent containment fraction below
	// which a pair is not reported.
	MinConfidence float64
	// MaxCardinality rejects columns with too many distinct values to
	// make a useful hierarchy level.
	MaxCardinality int
	// MaxListedValues caps the parent/child value samples on relations
	MaxListedValues int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.8,
		MaxCardinality:  50,
		MaxListedValues: 20,
	}
}

// Detector discovers many-to-one containment between column pairs
type Detector struct {
	config Config
}

// NewDetector creates a detector with the given config
func NewDetector(config Config) *Detector {
	if config.MinConfidence <= 0 {
		config.MinConfidence = 0.8
	}
	if config.MaxCardinality <= 0 {
		config.MaxCardinality = 50
	}
	if config.MaxListedValues <= 0 {
		config.MaxListedValues = 20
	}
	return &Detector{config: config}
}

// Detect analyzes every ordered pair of categorical-like columns and
// reports the containment relations found. No qualifying pairs yields
// an empty slice, never an error.
func (d *Detector) Detect(ds *tabular.Dataset, columns []profile.ColumnClassification) []hierarchy.Relation {
	candidates := d.candidateColumns(ds, columns)

	relations := []hierarchy.Relation{}
	for _, parent := range candidates {
		for _, child := range candidates {
			if parent == child {
				continue
			}
			if rel, ok := d.analyzePair(ds, parent, child); ok {
				relations = append(relations, rel)
			}
		}
	}

	sort.SliceStable(relations, func(i, j int) bool {
		return relations[i].Confidence > relations[j].Confidence
	})
	return relations
}

// candidateColumns keeps categorical-like columns with workable cardinality
func (d *Detector) candidateColumns(ds *tabular.Dataset, columns []profile.ColumnClassification) []string {
	out := []string{}
	for _, col := range columns {
		if col.Type != profile.TypeCategorical && col.Type != profile.TypeText {
			continue
		}
		unique := uniqueStrings(ds.NonNullValues(col.ColumnName))
		if len(unique) < 2 || len(unique) > d.config.MaxCardinality {
			continue
		}
		out = append(out, col.ColumnName)
	}
	return out
}

// analyzePair tests whether each child value maps to exactly one
// parent value for a large majority of rows.
func (d *Detector) analyzePair(ds *tabular.Dataset, parentCol, childCol string) (hierarchy.Relation, bool) {
	// childValue -> parentValue -> count
	mapping := make(map[string]map[string]int)
	pairedRows := 0

	for _, row := range ds.Rows {
		pv, cv := row[parentCol], row[childCol]
		if pv.IsMissing || cv.IsMissing {
			continue
		}
		parentVal, childVal := pv.String(), cv.String()
		if mapping[childVal] == nil {
			mapping[childVal] = make(map[string]int)
		}
		mapping[childVal][parentVal]++
		pairedRows++
	}

	if pairedRows == 0 || len(mapping) == 0 {
		return hierarchy.Relation{}, false
	}

	// Rows whose child value points at its dominant parent satisfy the
	// single-parent constraint; the rest violate it.
	satisfied := 0
	parentSet := make(map[string]struct{})
	for _, parents := range mapping {
		best := 0
		for parentVal, count := range parents {
			parentSet[parentVal] = struct{}{}
			if count > best {
				best = count
			}
		}
		satisfied += best
	}

	confidence := float64(satisfied) / float64(pairedRows)
	if confidence < d.config.MinConfidence {
		return hierarchy.Relation{}, false
	}

	// A hierarchy needs the parent level to be strictly coarser
	if len(parentSet) >= len(mapping) {
		return hierarchy.Relation{}, false
	}

	rel := hierarchy.Relation{
		ParentColumn: parentCol,
		ChildColumn:  childCol,
		Type:         relationType(parentCol, childCol),
		Confidence:   confidence,
		ParentValues: sortedSample(parentSet, d.config.MaxListedValues),
		ChildValues:  sortedSampleKeys(mapping, d.config.MaxListedValues),
	}
	return rel, true
}

// levelKeywords marks column names that read as explicit hierarchy levels
var levelKeywords = []string{
	"region", "country", "state", "province", "city", "district",
	"category", "subcategory", "department", "division", "group",
	"class", "subclass", "level", "tier", "segment",
}

func relationType(parentCol, childCol string) hierarchy.RelationType {
	if matchesLevelKeyword(parentCol) && matchesLevelKeyword(childCol) {
		return hierarchy.RelationLeveled
	}
	return hierarchy.RelationCategoricalTree
}

func matchesLevelKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range levelKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func uniqueStrings(values []tabular.Value) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v.String()] = struct{}{}
	}
	return out
}

func sortedSample(set map[string]struct{}, limit int) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedSampleKeys(m map[string]map[string]int, limit int) []string {
	out := make([]string, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
