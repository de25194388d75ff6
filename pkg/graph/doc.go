// Package graph provides the dependency graph used to order generated
// declarations. It includes the integer-indexed Graph with its topological
// sort, name-based ordering of declarations, and a wave executor that emits
// declarations in dependency order.
package graph
