package hierarchy

import (
	"sort"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/hierarchy"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/domain/tabular"
)

// TreeOptions bounds the rendered tree
type TreeOptions struct {
	MaxDepth   int
	MaxBreadth int
}

// DefaultTreeOptions returns the standard navigation bounds
func DefaultTreeOptions() TreeOptions {
	return TreeOptions{MaxDepth: 3, MaxBreadth: 10}
}

// BuildTree groups rows by the given column chain and returns the root
// nodes. Nodes are ordered by descending row count with ties broken by
// first appearance in the data. Breadth beyond MaxBreadth collapses
// into a single truncation marker node carrying the remaining count.
func BuildTree(ds *tabular.Dataset, columns []string, opts TreeOptions) []hierarchy.Node {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 3
	}
	if opts.MaxBreadth <= 0 {
		opts.MaxBreadth = 10
	}
	if len(columns) > opts.MaxDepth {
		columns = columns[:opts.MaxDepth]
	}
	if len(columns) == 0 {
		return []hierarchy.Node{}
	}
	return buildLevel(ds.Rows, columns, opts.MaxBreadth)
}

type bucket struct {
	name      string
	rows      []tabular.Row
	firstSeen int
}

func buildLevel(rows []tabular.Row, columns []string, maxBreadth int) []hierarchy.Node {
	col := columns[0]

	buckets := make(map[string]*bucket)
	order := []*bucket{}
	for i, row := range rows {
		v := row[col]
		if v.IsMissing {
			continue
		}
		key := v.String()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: key, firstSeen: i}
			buckets[key] = b
			order = append(order, b)
		}
		b.rows = append(b.rows, row)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if len(order[i].rows) != len(order[j].rows) {
			return len(order[i].rows) > len(order[j].rows)
		}
		return order[i].firstSeen < order[j].firstSeen
	})

	kept := order
	var overflow []*bucket
	if len(order) > maxBreadth {
		kept = order[:maxBreadth]
		overflow = order[maxBreadth:]
	}

	nodes := make([]hierarchy.Node, 0, len(kept)+1)
	for _, b := range kept {
		node := hierarchy.Node{Name: b.name, Count: len(b.rows)}
		if len(columns) > 1 {
			node.Children = buildLevel(b.rows, columns[1:], maxBreadth)
		}
		nodes = append(nodes, node)
	}

	if len(overflow) > 0 {
		remaining := 0
		for _, b := range overflow {
			remaining += len(b.rows)
		}
		nodes = append(nodes, hierarchy.Node{
			Name:      "(other)",
			Count:     remaining,
			Truncated: true,
		})
	}
	return nodes
}
