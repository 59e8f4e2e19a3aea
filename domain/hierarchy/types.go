// Package hierarchy holds the parent/child column relationship types
// produced by co-occurrence analysis.
package hierarchy

// RelationType labels the structural shape of a detected hierarchy
type RelationType string

const (
	// RelationCategoricalTree is a generic many-to-one containment
	// between two categorical columns.
	RelationCategoricalTree RelationType = "categorical-tree"
	// RelationLeveled marks pairs whose names suggest explicit levels
	// (region/country, category/subcategory and the like).
	RelationLeveled RelationType = "leveled"
)

// Relation records a detected many-to-one structural dependency
// between two columns' values. ParentColumn != ChildColumn always.
type Relation struct {
	ParentColumn string       `json:"parent_column"`
	ChildColumn  string       `json:"child_column"`
	Type         RelationType `json:"type"`
	Confidence   float64      `json:"confidence"`
	ParentValues []string     `json:"parent_values"`
	ChildValues  []string     `json:"child_values"`
}

// Node is one level of a navigable hierarchy tree, built on demand
// from a Relation plus the dataset. Not persisted.
type Node struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Children  []Node `json:"children,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}
