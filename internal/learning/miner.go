package learning

import (
	"sort"
	"strings"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/chart"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/core"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/learning"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/profile"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/coerce"
)

// minePatterns groups corrections by shared column name and by the
// original-to-corrected type transition, then keeps the groups with
// enough support. Chart preferences mine the same way, grouped per
// column name.
func minePatterns(records []learning.FeedbackRecord, minSupport int) []learning.MinedPattern {
	type groupKey struct {
		namePattern   string
		originalType  profile.SemanticType
		correctedType profile.SemanticType
	}
	type nameOriginal struct {
		namePattern  string
		originalType profile.SemanticType
	}
	type chartKey struct {
		namePattern string
		chartType   chart.Type
	}

	groups := make(map[groupKey][]learning.FeedbackRecord)
	// corrections per (name, originalType) regardless of target, used
	// to compute how often the group's target actually won
	totals := make(map[nameOriginal]int)
	chartGroups := make(map[chartKey][]learning.FeedbackRecord)
	chartTotals := make(map[string]int)

	for _, rec := range records {
		name := normalizeName(rec.ColumnName)
		if name == "" {
			continue
		}
		if rec.CorrectsType() {
			key := groupKey{
				namePattern:   name,
				originalType:  rec.OriginalType,
				correctedType: rec.CorrectedType,
			}
			groups[key] = append(groups[key], rec)
			totals[nameOriginal{name, rec.OriginalType}]++
		}
		if rec.CorrectsChart() {
			key := chartKey{namePattern: name, chartType: rec.CorrectedChartType}
			chartGroups[key] = append(chartGroups[key], rec)
			chartTotals[name]++
		}
	}

	patterns := make([]learning.MinedPattern, 0, len(groups)+len(chartGroups))
	for key, recs := range groups {
		if len(recs) < minSupport {
			continue
		}
		total := totals[nameOriginal{key.namePattern, key.originalType}]
		patterns = append(patterns, learning.MinedPattern{
			Pattern: learning.RulePattern{
				NamePattern:  key.namePattern,
				ShapePattern: sharedShape(recs),
			},
			OriginalType:  key.originalType,
			CorrectedType: key.correctedType,
			Support:       len(recs),
			Agreement:     float64(len(recs)) / float64(total),
		})
	}
	for key, recs := range chartGroups {
		if len(recs) < minSupport {
			continue
		}
		patterns = append(patterns, learning.MinedPattern{
			Pattern: learning.RulePattern{
				NamePattern:  key.namePattern,
				ShapePattern: sharedShape(recs),
			},
			CorrectedChartType: key.chartType,
			Support:            len(recs),
			Agreement:          float64(len(recs)) / float64(chartTotals[key.namePattern]),
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Support != patterns[j].Support {
			return patterns[i].Support > patterns[j].Support
		}
		return patterns[i].Pattern.NamePattern < patterns[j].Pattern.NamePattern
	})
	return patterns
}

// buildRules converts mined patterns into learned rules, carrying over
// usage counters from any previous rule with the same pattern and
// target type.
func buildRules(patterns []learning.MinedPattern, previous []learning.LearnedRule) []learning.LearnedRule {
	now := core.Now()

	prior := make(map[string]learning.LearnedRule, len(previous))
	for _, rule := range previous {
		prior[ruleKey(rule.Pattern, rule.TargetType, rule.TargetChartType)] = rule
	}

	rules := make([]learning.LearnedRule, 0, len(patterns))
	for _, pat := range patterns {
		rule := learning.LearnedRule{
			ID:              core.RuleID(core.NewID()),
			Pattern:         pat.Pattern,
			TargetType:      pat.CorrectedType,
			TargetChartType: pat.CorrectedChartType,
			ConfidenceScore: pat.Agreement,
			SuccessRate:     pat.Agreement,
			UsageCount:      pat.Support,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if old, ok := prior[ruleKey(pat.Pattern, pat.CorrectedType, pat.CorrectedChartType)]; ok {
			rule.ID = old.ID
			rule.CreatedAt = old.CreatedAt
			if old.UsageCount > rule.UsageCount {
				rule.UsageCount = old.UsageCount
			}
			rule.SuccessRate = old.SuccessRate
		}
		rules = append(rules, rule)
	}
	return rules
}

func ruleKey(p learning.RulePattern, target profile.SemanticType, chartTarget chart.Type) string {
	return p.NamePattern + "|" + p.ShapePattern + "|" + string(target) + "|" + string(chartTarget)
}

// normalizeName lowercases and trims a column name into a name pattern
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// sharedShape returns the dominant value shape when every record's
// samples agree on one, empty otherwise.
func sharedShape(records []learning.FeedbackRecord) string {
	coercer := coerce.New()
	shared := ""
	for _, rec := range records {
		if len(rec.SampleValues) == 0 {
			continue
		}
		values := make([]tabular.Value, 0, len(rec.SampleValues))
		for _, s := range rec.SampleValues {
			values = append(values, coercer.Value(s))
		}
		shape := string(coerce.DominantShape(values))
		if shared == "" {
			shared = shape
		} else if shared != shape {
			return ""
		}
	}
	return shared
}
