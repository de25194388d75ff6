package graph

import (
	"testing"
)

func TestComputeHash(t *testing.T) {
	decls := []Declaration{
		{Name: "Base"},
		{Name: "Derived", DependsOn: []string{"Base"}},
	}

	hash1 := ComputeHash(decls)
	if hash1 == "" {
		t.Error("Expected non-empty hash")
	}

	// Same declarations should produce same hash
	hash2 := ComputeHash(decls)
	if hash1 != hash2 {
		t.Errorf("Expected same hash for same declarations, got %s and %s", hash1, hash2)
	}

	// Different declarations should produce different hash
	decls[1].DependsOn = append(decls[1].DependsOn, "Other")
	hash3 := ComputeHash(decls)
	if hash1 == hash3 {
		t.Error("Expected different hash for different declarations")
	}
}

func TestComputeHashEmpty(t *testing.T) {
	if ComputeHash(nil) == "" {
		t.Error("Expected non-empty hash for empty declarations")
	}
	if ComputeHash(nil) == ComputeHash([]Declaration{{Name: "a"}}) {
		t.Error("Expected different hash")
	}
}
