// Package manifest loads the class manifests that drive binding generation.
//
// A manifest is a CUE (or JSON) document listing the classes to bind, their
// base classes and the type signatures they use. Every manifest is unified
// with an embedded #Manifest schema and must be concrete after unification.
package manifest
