package typesig

import (
	"fmt"
)

// node is an arena entry under construction. Template arguments refer to
// other arena entries by index, so growing the arena never invalidates the
// parser's stack.
type node struct {
	info Info
	args []int
}

// parser holds the state of a single Parse call
type parser struct {
	arena []node

	// stack holds arena indices; the top is the type being built
	stack []int

	// colonPrefix is set after "::", so the next identifier starts a new
	// name segment
	colonPrefix bool

	inArray bool
	bound   string
}

// Parse parses a C++ type signature. Function-pointer syntax yields an Info
// with IsBusted set and a nil error; characters that cannot appear in a type
// signature yield a *SyntaxError.
func Parse(sig string) (Info, error) {
	p := &parser{
		arena: []node{{}},
		stack: []int{0},
	}

	scanner := NewScanner(sig)
	for {
		tok, err := scanner.Next()
		if err != nil {
			return Info{}, err
		}

		switch tok {
		case NoToken:
			return p.build(), nil
		case OpenParenToken, CloseParenToken:
			return Info{IsBusted: true}, nil
		default:
			p.apply(tok, scanner.Text())
		}
	}
}

// MustParse is like Parse but panics on a syntax error
func MustParse(sig string) Info {
	info, err := Parse(sig)
	if err != nil {
		panic(fmt.Sprintf("typesig: %v", err))
	}
	return info
}

func (p *parser) top() *Info {
	return &p.arena[p.stack[len(p.stack)-1]].info
}

// push appends a new template argument to the current top and makes it the
// new top
func (p *parser) push() {
	owner := p.stack[len(p.stack)-1]
	p.arena = append(p.arena, node{})
	child := len(p.arena) - 1
	p.arena[owner].args = append(p.arena[owner].args, child)
	p.stack = append(p.stack, child)
}

// pop leaves the current template argument. The root is never popped, so
// unbalanced '>' or ',' at the outermost level are ignored.
func (p *parser) pop() bool {
	if len(p.stack) == 1 {
		return false
	}
	p.stack = p.stack[:len(p.stack)-1]
	return true
}

func (p *parser) apply(tok Token, text string) {
	switch tok {
	case StarToken:
		p.top().Indirections++
	case AmpersandToken:
		p.top().IsReference = true
	case ConstToken:
		p.top().IsConstant = true
	case LessThanToken:
		p.push()
	case CommaToken:
		if p.pop() {
			p.push()
		}
	case GreaterThanToken:
		p.pop()
	case ColonToken:
		p.colonPrefix = true
	case SquareBeginToken:
		p.inArray = true
		p.bound = ""
	case SquareEndToken:
		p.inArray = false
		p.top().Arrays = append(p.top().Arrays, p.bound)
		p.bound = ""
	case IdentifierToken:
		p.identifier(text)
	}
}

func (p *parser) identifier(text string) {
	top := p.top()
	switch {
	case p.inArray:
		p.bound = text
	case p.colonPrefix || len(top.QualifiedName) == 0:
		top.QualifiedName = append(top.QualifiedName, text)
		p.colonPrefix = false
	default:
		last := len(top.QualifiedName) - 1
		top.QualifiedName[last] += " " + text
	}
}

// build assembles the Info tree from the arena. Arguments always sit at
// higher indices than their owner, so walking the arena backwards builds
// every argument before the type that holds it.
func (p *parser) build() Info {
	infos := make([]Info, len(p.arena))
	for i := len(p.arena) - 1; i >= 0; i-- {
		info := p.arena[i].info
		if args := p.arena[i].args; len(args) > 0 {
			info.TemplateInstantiations = make([]Info, len(args))
			for n, arg := range args {
				info.TemplateInstantiations[n] = infos[arg]
			}
		}
		infos[i] = info
	}
	return infos[0]
}
