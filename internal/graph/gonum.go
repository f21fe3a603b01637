package graph

import (
	"cmp"
	"slices"
	"strconv"

	gonum "gonum.org/v1/gonum/graph"
)

// FromGonum copies a gonum graph. Node ids become decimal strings and nodes
// are added in ascending id order. Each edge of an undirected graph becomes
// a single link from the lower to the higher id.
func FromGonum(src gonum.Graph) *Graph {
	g := New()
	g.BeginUpdate()
	defer g.EndUpdate()

	nodes := sortedNodes(src.Nodes())
	for _, n := range nodes {
		g.AddNode(strconv.FormatInt(n.ID(), 10))
	}

	_, undirected := src.(gonum.Undirected)
	for _, u := range nodes {
		for _, v := range sortedNodes(src.From(u.ID())) {
			if undirected && v.ID() < u.ID() {
				continue
			}
			g.AddLink(strconv.FormatInt(u.ID(), 10), strconv.FormatInt(v.ID(), 10))
		}
	}
	return g
}

func sortedNodes(it gonum.Nodes) []gonum.Node {
	nodes := gonum.NodesOf(it)
	slices.SortFunc(nodes, func(a, b gonum.Node) int { return cmp.Compare(a.ID(), b.ID()) })
	return nodes
}
