package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/go-logr/logr"

	"github.com/chazu/bindgraph/pkg/graph"
	"github.com/chazu/bindgraph/pkg/typesig"
)

// Class is a class to bind
type Class struct {
	// Name is the qualified class name, e.g. "QtGui::QWidget"
	Name string `json:"name"`

	// Bases are the direct base classes as type signatures
	Bases []string `json:"bases,omitempty"`

	// Signatures are the types the class uses in its members and methods
	Signatures []string `json:"signatures,omitempty"`
}

// Manifest is a decoded class manifest
type Manifest struct {
	Name    string  `json:"name,omitempty"`
	Classes []Class `json:"classes"`
}

// Digest returns a content digest of the manifest for change detection
func (m *Manifest) Digest() string {
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", xxhash.Sum64(data))
}

// Class looks up a class by name
func (m *Manifest) Class(name string) (Class, bool) {
	for _, class := range m.Classes {
		if class.Name == name {
			return class, true
		}
	}
	return Class{}, false
}

// Names returns the class names in manifest order
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Classes))
	for i, class := range m.Classes {
		names[i] = class.Name
	}
	return names
}

func (m *Manifest) clone() *Manifest {
	c := &Manifest{Name: m.Name, Classes: make([]Class, len(m.Classes))}
	for i, class := range m.Classes {
		c.Classes[i] = Class{
			Name:       class.Name,
			Bases:      slices.Clone(class.Bases),
			Signatures: slices.Clone(class.Signatures),
		}
	}
	return c
}

// Declarations derives one graph declaration per class. A class depends on
// every name referenced by its bases and signatures, template arguments
// included. References to the class itself are dropped and busted
// signatures contribute nothing. If cache is nil signatures are parsed
// without caching.
func (m *Manifest) Declarations(ctx context.Context, cache *typesig.Cache) ([]graph.Declaration, error) {
	logger := logr.FromContextOrDiscard(ctx)

	parseAll := typesig.ParseAll
	if cache != nil {
		parseAll = cache.ParseAll
	}

	// Parse everything in one batch; offsets[i] is where class i starts
	var sigs []string
	offsets := make([]int, len(m.Classes)+1)
	for i, class := range m.Classes {
		offsets[i] = len(sigs)
		sigs = append(sigs, class.Bases...)
		sigs = append(sigs, class.Signatures...)
	}
	offsets[len(m.Classes)] = len(sigs)

	infos, err := parseAll(ctx, sigs, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest signatures: %w", err)
	}

	decls := make([]graph.Declaration, len(m.Classes))
	for i, class := range m.Classes {
		seen := map[string]bool{class.Name: true}
		var deps []string

		for n := offsets[i]; n < offsets[i+1]; n++ {
			if infos[n].IsBusted {
				logger.V(1).Info("Skipping unsupported signature", "class", class.Name, "signature", sigs[n])
				continue
			}
			for _, name := range infos[n].ReferencedNames() {
				if !seen[name] {
					seen[name] = true
					deps = append(deps, name)
				}
			}
		}

		decls[i] = graph.Declaration{Name: class.Name, DependsOn: deps}
	}

	logger.V(1).Info("Derived declarations", "manifest", m.Name, "classes", len(decls), "signatures", len(sigs))
	return decls, nil
}
