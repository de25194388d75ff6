package graph

import (
	"fmt"
)

// ValidateDeclarations checks that every declaration has a unique, non-empty
// name and no empty dependency names
func ValidateDeclarations(decls []Declaration) error {
	names := make(map[string]bool, len(decls))
	for i, decl := range decls {
		if decl.Name == "" {
			return fmt.Errorf("declaration %d: name is required", i)
		}
		if names[decl.Name] {
			return fmt.Errorf("duplicate declaration: %s", decl.Name)
		}
		names[decl.Name] = true
	}

	for _, decl := range decls {
		if err := decl.Validate(); err != nil {
			return fmt.Errorf("declaration %s: %w", decl.Name, err)
		}
	}

	return nil
}

// Validate checks the integrity of a single Declaration
func (d *Declaration) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	for i, dep := range d.DependsOn {
		if dep == "" {
			return fmt.Errorf("dependsOn[%d] is empty", i)
		}
	}
	return nil
}
