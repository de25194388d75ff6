package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrCycle is returned when declarations cannot be ordered because of a
// circular dependency
var ErrCycle = errors.New("circular dependency")

// Declaration is a named definition that must be emitted after the
// declarations it depends on
type Declaration struct {
	// Name uniquely identifies the declaration, e.g. a qualified class name
	Name string `json:"name"`

	// DependsOn lists the names this declaration needs emitted first.
	// Names that do not belong to the declaration set are ignored when
	// ordering.
	DependsOn []string `json:"dependsOn,omitempty"`
}

// CycleError reports the declarations that form circular dependencies
type CycleError struct {
	// Cycles holds one entry per cyclic group, each listing declaration names
	Cycles [][]string
}

func (e *CycleError) Error() string {
	groups := make([]string, 0, len(e.Cycles))
	for _, cycle := range e.Cycles {
		groups = append(groups, "["+strings.Join(cycle, ", ")+"]")
	}
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(groups, " "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// ComputeHash computes a digest of the declarations for change detection.
// The digest depends on declaration order and dependency order.
func ComputeHash(decls []Declaration) string {
	data, err := json.Marshal(decls)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", xxhash.Sum64(data))
}
