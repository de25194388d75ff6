// Package typesig parses C++ type signatures such as
// "const Foo<Bar::Baz<int>*, int[4]>&" into a structured Info tree holding the
// qualified name, qualifiers, pointer and reference level, array bounds and
// template arguments of each type.
//
// The parser is deliberately permissive: anything that lexes is turned into a
// best-effort tree. The only rejected syntax is function-pointer notation,
// reported through Info.IsBusted, and characters that are not part of a type
// signature, reported as a *SyntaxError.
package typesig
