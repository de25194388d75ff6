package graph

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	dgraph "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Labeler maps a node index to a display label
type Labeler func(node int) string

// IndexLabeler labels nodes with their index
func IndexLabeler(node int) string {
	return strconv.Itoa(node)
}

// directed copies g into a dominikbraun/graph directed graph. Vertices are
// keyed by their decimal index (string keys, since the zero key is treated as
// "no vertex" by parts of that library) and carry a "label" attribute.
func (g *Graph) directed(label Labeler) (dgraph.Graph[string, string], error) {
	if label == nil {
		label = IndexLabeler
	}

	dg := dgraph.New(dgraph.StringHash, dgraph.Directed())
	for node := range g.edges {
		if err := dg.AddVertex(strconv.Itoa(node), dgraph.VertexAttribute("label", label(node))); err != nil {
			return nil, fmt.Errorf("failed to add vertex %d: %w", node, err)
		}
	}
	for from, targets := range g.edges {
		for _, to := range targets {
			if err := dg.AddEdge(strconv.Itoa(from), strconv.Itoa(to)); err != nil {
				return nil, fmt.Errorf("failed to add edge %d -> %d: %w", from, to, err)
			}
		}
	}
	return dg, nil
}

// WriteDOT renders the graph in Graphviz DOT format
func (g *Graph) WriteDOT(w io.Writer, label Labeler) error {
	dg, err := g.directed(label)
	if err != nil {
		return err
	}
	if err := draw.DOT(dg, w, draw.GraphAttribute("rankdir", "LR")); err != nil {
		return fmt.Errorf("failed to render DOT: %w", err)
	}
	return nil
}

// Cycles returns the groups of nodes that take part in a cycle: every
// strongly connected component with more than one node, plus every node
// with a self-loop. Each group is sorted and groups are ordered by their
// lowest node.
func (g *Graph) Cycles() ([][]int, error) {
	dg, err := g.directed(nil)
	if err != nil {
		return nil, err
	}

	components, err := dgraph.StronglyConnectedComponents(dg)
	if err != nil {
		return nil, fmt.Errorf("failed to compute strongly connected components: %w", err)
	}

	var cycles [][]int
	for _, component := range components {
		nodes := make([]int, 0, len(component))
		for _, key := range component {
			node, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("unexpected vertex key %q: %w", key, err)
			}
			nodes = append(nodes, node)
		}
		if len(nodes) == 1 && !g.ContainsEdge(nodes[0], nodes[0]) {
			continue
		}
		slices.Sort(nodes)
		cycles = append(cycles, nodes)
	}
	slices.SortFunc(cycles, func(a, b []int) int {
		return a[0] - b[0]
	})
	return cycles, nil
}
