package typesig

import (
	"slices"
	"strings"
)

// Info is the parsed form of a type signature. Template arguments are Info
// values themselves, so a signature parses into a tree.
type Info struct {
	// QualifiedName holds the "::"-separated name segments. A segment may
	// contain several space-separated words, e.g. "unsigned int".
	QualifiedName []string `json:"qualifiedName,omitempty"`

	// IsConstant is set when a const qualifier applies at this level
	IsConstant bool `json:"isConstant,omitempty"`

	// IsReference is set when '&' applies at this level
	IsReference bool `json:"isReference,omitempty"`

	// Indirections counts the '*' applied at this level
	Indirections int `json:"indirections,omitempty"`

	// Arrays holds the raw array bounds in declaration order; "" for "[]"
	Arrays []string `json:"arrays,omitempty"`

	// TemplateInstantiations holds the template arguments of the last
	// name segment
	TemplateInstantiations []Info `json:"templateInstantiations,omitempty"`

	// IsBusted marks a signature that could not be parsed
	IsBusted bool `json:"isBusted,omitempty"`
}

// Clone returns a deep copy of i
func (i Info) Clone() Info {
	c := i
	c.QualifiedName = slices.Clone(i.QualifiedName)
	c.Arrays = slices.Clone(i.Arrays)
	if i.TemplateInstantiations != nil {
		c.TemplateInstantiations = make([]Info, len(i.TemplateInstantiations))
		for n, arg := range i.TemplateInstantiations {
			c.TemplateInstantiations[n] = arg.Clone()
		}
	}
	return c
}

// IsTemplate reports whether the type is a template instantiation
func (i Info) IsTemplate() bool {
	return len(i.TemplateInstantiations) > 0
}

// BaseName returns the last qualified-name segment
func (i Info) BaseName() string {
	if len(i.QualifiedName) == 0 {
		return ""
	}
	return i.QualifiedName[len(i.QualifiedName)-1]
}

// InstantiationName renders the qualified name followed by the template
// arguments, e.g. "std::map< int, QString >"
func (i Info) InstantiationName() string {
	var b strings.Builder
	i.writeInstantiationName(&b)
	return b.String()
}

// String renders a canonical form of the type. Spacing is normalized, so the
// result is not necessarily identical to the parsed input.
func (i Info) String() string {
	var b strings.Builder
	i.write(&b)
	return b.String()
}

func (i Info) write(b *strings.Builder) {
	if i.IsConstant {
		b.WriteString("const ")
	}
	i.writeInstantiationName(b)
	for _, bound := range i.Arrays {
		b.WriteByte('[')
		b.WriteString(bound)
		b.WriteByte(']')
	}
	for n := 0; n < i.Indirections; n++ {
		b.WriteByte('*')
	}
	if i.IsReference {
		b.WriteByte('&')
	}
}

func (i Info) writeInstantiationName(b *strings.Builder) {
	b.WriteString(strings.Join(i.QualifiedName, "::"))
	if len(i.TemplateInstantiations) == 0 {
		return
	}
	b.WriteString("< ")
	for n, arg := range i.TemplateInstantiations {
		if n > 0 {
			b.WriteString(", ")
		}
		arg.write(b)
	}
	b.WriteString(" >")
}

// ReferencedNames returns the "::"-joined qualified name of the type and of
// every template argument, depth first, without duplicates. Empty names are
// skipped.
func (i Info) ReferencedNames() []string {
	var names []string
	seen := make(map[string]bool)

	stack := []*Info{&i}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if name := strings.Join(top.QualifiedName, "::"); name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		for n := len(top.TemplateInstantiations) - 1; n >= 0; n-- {
			stack = append(stack, &top.TemplateInstantiations[n])
		}
	}
	return names
}
