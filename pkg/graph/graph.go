package graph

import (
	"fmt"
	"io"
	"slices"
)

// color marks the DFS visitation state of a node
type color uint8

const (
	white color = iota
	gray
	black
)

// Graph is a directed graph over a fixed set of nodes identified by the
// indices [0, NodeCount()). An edge (from, to) means from must be emitted
// before to.
//
// Graph is not safe for concurrent mutation. Concurrent TopologicalSort calls
// on a graph that is no longer mutated are safe.
type Graph struct {
	// edges[i] holds the targets of node i, sorted ascending and unique
	edges [][]int
}

// NewGraph creates a graph with numNodes nodes and no edges
func NewGraph(numNodes int) *Graph {
	if numNodes < 0 {
		panic(fmt.Sprintf("graph: negative node count %d", numNodes))
	}
	return &Graph{
		edges: make([][]int, numNodes),
	}
}

// NodeCount returns the number of nodes in the graph
func (g *Graph) NodeCount() int {
	return len(g.edges)
}

// AddEdge inserts the edge from -> to. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(from, to int) {
	g.checkIndex(from)
	g.checkIndex(to)

	targets := g.edges[from]
	i, found := slices.BinarySearch(targets, to)
	if found {
		return
	}
	g.edges[from] = slices.Insert(targets, i, to)
}

// RemoveEdge removes the edge from -> to if present
func (g *Graph) RemoveEdge(from, to int) {
	g.checkIndex(from)
	g.checkIndex(to)

	targets := g.edges[from]
	if i, found := slices.BinarySearch(targets, to); found {
		g.edges[from] = slices.Delete(targets, i, i+1)
	}
}

// ContainsEdge reports whether the edge from -> to exists
func (g *Graph) ContainsEdge(from, to int) bool {
	g.checkIndex(from)
	g.checkIndex(to)

	_, found := slices.BinarySearch(g.edges[from], to)
	return found
}

// Successors returns a copy of the targets of node, in ascending order
func (g *Graph) Successors(node int) []int {
	g.checkIndex(node)
	return slices.Clone(g.edges[node])
}

// EdgeCount returns the total number of edges
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.edges {
		count += len(targets)
	}
	return count
}

// checkIndex panics when node is outside [0, NodeCount())
func (g *Graph) checkIndex(node int) {
	if node < 0 || node >= len(g.edges) {
		panic(fmt.Sprintf("graph: node index %d out of range [0, %d)", node, len(g.edges)))
	}
}

// frame is one level of the explicit DFS stack
type frame struct {
	node int
	next int // position in edges[node] of the next successor to try
}

// TopologicalSort returns every node index such that for each edge
// (from, to), from appears before to. It returns an empty slice when the
// graph contains a cycle, self-loops included.
//
// Roots are tried in ascending index order and successors in ascending target
// order, so the result is deterministic.
func (g *Graph) TopologicalSort() []int {
	n := len(g.edges)
	colors := make([]color, n)

	// Finished nodes are appended and the slice is reversed at the end,
	// which is the same as prepending each node as it finishes.
	finished := make([]int, 0, n)
	stack := make([]frame, 0)

	for root := 0; root < n; root++ {
		if colors[root] != white {
			continue
		}
		colors[root] = gray
		stack = append(stack, frame{node: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			targets := g.edges[top.node]

			if top.next >= len(targets) {
				colors[top.node] = black
				finished = append(finished, top.node)
				stack = stack[:len(stack)-1]
				continue
			}

			succ := targets[top.next]
			top.next++

			switch colors[succ] {
			case white:
				colors[succ] = gray
				stack = append(stack, frame{node: succ})
			case gray:
				// Back-edge: abandon this node without finishing it. The
				// length check below turns the short result into a cycle.
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(finished) != n {
		return []int{}
	}

	slices.Reverse(finished)
	return finished
}

// Dump writes a plain-text listing of the adjacency sets to w
func (g *Graph) Dump(w io.Writer) error {
	for node, targets := range g.edges {
		if _, err := fmt.Fprintf(w, "%d -> %v\n", node, targets); err != nil {
			return err
		}
	}
	return nil
}
