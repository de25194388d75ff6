package graph

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"

	"github.com/chazu/bindgraph/pkg/metrics"
)

// Ordering is a set of declarations arranged dependency-first
type Ordering struct {
	// decls holds the declarations in input order; node i is decls[i]
	decls []Declaration

	// index provides quick lookup of node indices by name
	index map[string]int

	// graph holds an edge dep -> decl for every resolved dependency
	graph *Graph

	// deps holds the resolved dependencies of each node, ascending
	deps [][]int

	// order contains the topologically sorted node indices
	order []int

	// unresolved maps a declaration name to dependencies outside the set
	unresolved map[string][]string
}

// Order validates decls, resolves their dependencies, and computes an
// emission order in which every declaration follows the declarations it
// depends on. A circular dependency yields a *CycleError.
func Order(ctx context.Context, decls []Declaration) (*Ordering, error) {
	logger := logr.FromContextOrDiscard(ctx)
	start := time.Now()

	if err := ValidateDeclarations(decls); err != nil {
		metrics.RecordSort(metrics.ResultInvalid, time.Since(start).Seconds())
		return nil, fmt.Errorf("declaration validation failed: %w", err)
	}

	o := &Ordering{
		decls:      slices.Clone(decls),
		index:      make(map[string]int, len(decls)),
		graph:      NewGraph(len(decls)),
		deps:       make([][]int, len(decls)),
		unresolved: make(map[string][]string),
	}
	for i, decl := range decls {
		o.index[decl.Name] = i
	}

	// A declaration depending on another means the dependency is emitted
	// first, so the edge runs dep -> decl.
	for i, decl := range decls {
		for _, depName := range decl.DependsOn {
			dep, found := o.index[depName]
			if !found {
				if !slices.Contains(o.unresolved[decl.Name], depName) {
					o.unresolved[decl.Name] = append(o.unresolved[decl.Name], depName)
				}
				continue
			}
			o.graph.AddEdge(dep, i)
			if !slices.Contains(o.deps[i], dep) {
				o.deps[i] = append(o.deps[i], dep)
			}
		}
		slices.Sort(o.deps[i])
	}

	o.order = o.graph.TopologicalSort()
	if len(o.order) == 0 && len(decls) > 0 {
		metrics.RecordSort(metrics.ResultCycle, time.Since(start).Seconds())
		cycleErr, err := o.cycleError()
		if err != nil {
			return nil, err
		}
		logger.V(1).Info("dependency cycle detected", "cycles", cycleErr.Cycles)
		return nil, cycleErr
	}

	metrics.RecordSort(metrics.ResultSuccess, time.Since(start).Seconds())
	logger.V(1).Info("ordered declarations",
		"count", len(decls), "edges", o.graph.EdgeCount(), "unresolved", len(o.unresolved))

	return o, nil
}

// cycleError names the declarations of every cyclic group
func (o *Ordering) cycleError() (*CycleError, error) {
	cycles, err := o.graph.Cycles()
	if err != nil {
		return nil, fmt.Errorf("failed to find cycles: %w", err)
	}

	named := make([][]string, 0, len(cycles))
	for _, cycle := range cycles {
		names := make([]string, len(cycle))
		for i, node := range cycle {
			names[i] = o.decls[node].Name
		}
		named = append(named, names)
	}
	return &CycleError{Cycles: named}, nil
}

// Declarations returns the declarations in emission order
func (o *Ordering) Declarations() []Declaration {
	result := make([]Declaration, len(o.order))
	for i, node := range o.order {
		result[i] = o.decls[node]
	}
	return result
}

// Names returns the declaration names in emission order
func (o *Ordering) Names() []string {
	return o.names(o.order)
}

// Index returns the position of name in the emission order
func (o *Ordering) Index(name string) (int, bool) {
	node, found := o.index[name]
	if !found {
		return -1, false
	}
	return slices.Index(o.order, node), true
}

// Declaration retrieves a declaration by name
func (o *Ordering) Declaration(name string) (Declaration, bool) {
	node, found := o.index[name]
	if !found {
		return Declaration{}, false
	}
	return o.decls[node], true
}

// Dependencies returns the names of declarations that name depends on,
// excluding unresolved ones
func (o *Ordering) Dependencies(name string) ([]string, error) {
	node, found := o.index[name]
	if !found {
		return nil, fmt.Errorf("declaration %s not found", name)
	}
	return o.names(o.deps[node]), nil
}

// Dependents returns the names of declarations that depend on name
func (o *Ordering) Dependents(name string) ([]string, error) {
	node, found := o.index[name]
	if !found {
		return nil, fmt.Errorf("declaration %s not found", name)
	}
	return o.names(o.graph.Successors(node)), nil
}

// Unresolved returns dependencies of name that are not part of the set
func (o *Ordering) Unresolved(name string) []string {
	return slices.Clone(o.unresolved[name])
}

// Size returns the number of declarations
func (o *Ordering) Size() int {
	return len(o.decls)
}

// Graph returns the underlying index graph. Node i is the i-th declaration
// passed to Order.
func (o *Ordering) Graph() *Graph {
	return o.graph
}

// Label is a Labeler naming nodes after their declarations
func (o *Ordering) Label(node int) string {
	return o.decls[node].Name
}

// GetRootNodes returns declarations with no resolved dependencies, in
// emission order
func (o *Ordering) GetRootNodes() []string {
	var roots []int
	for _, node := range o.order {
		if len(o.deps[node]) == 0 {
			roots = append(roots, node)
		}
	}
	return o.names(roots)
}

// GetLeafNodes returns declarations no other declaration depends on, in
// emission order
func (o *Ordering) GetLeafNodes() []string {
	var leaves []int
	for _, node := range o.order {
		if len(o.graph.edges[node]) == 0 {
			leaves = append(leaves, node)
		}
	}
	return o.names(leaves)
}

// Waves groups the declarations by dependency depth. Every declaration in
// wave k depends only on declarations of earlier waves, so a wave can be
// emitted in parallel once the previous ones are done.
func (o *Ordering) Waves() [][]string {
	level := make([]int, len(o.decls))
	var waves [][]int
	for _, node := range o.order {
		l := 0
		for _, dep := range o.deps[node] {
			if level[dep]+1 > l {
				l = level[dep] + 1
			}
		}
		level[node] = l
		if l == len(waves) {
			waves = append(waves, nil)
		}
		waves[l] = append(waves[l], node)
	}

	result := make([][]string, len(waves))
	for i, wave := range waves {
		result[i] = o.names(wave)
	}
	return result
}

func (o *Ordering) names(nodes []int) []string {
	names := make([]string, len(nodes))
	for i, node := range nodes {
		names[i] = o.decls[node].Name
	}
	return names
}
