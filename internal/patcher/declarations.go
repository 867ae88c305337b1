package patcher

import (
	"regexp"
	"strings"
)

var declarationHead = regexp.MustCompile(`export type (\w+) = `)

// Declaration is a type alias found in a generated file. Start and End delimit
// the whole declaration, semicolon included.
type Declaration struct {
	Name  string
	Body  string
	Start int
	End   int
}

// Empty reports whether the generator emitted the declaration without a body.
func (d Declaration) Empty() bool {
	return strings.TrimSpace(d.Body) == ""
}

// ParseDeclarations lists the type aliases of src in source order. A declaration
// whose terminating semicolon cannot be found is ignored.
func ParseDeclarations(src string) []Declaration {
	var decls []Declaration
	for _, m := range declarationHead.FindAllStringSubmatchIndex(src, -1) {
		bodyStart := m[1]
		semi := bodyEnd(src, bodyStart)
		if semi < 0 {
			continue
		}
		decls = append(decls, Declaration{
			Name:  src[m[2]:m[3]],
			Body:  src[bodyStart:semi],
			Start: m[0],
			End:   semi + 1,
		})
	}
	return decls
}

// bodyEnd returns the index of the first semicolon at nesting depth zero at or
// after from, skipping string literals.
func bodyEnd(src string, from int) int {
	depth := 0
	var quote byte
	for i := from; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		case ';':
			if depth <= 0 {
				return i
			}
		}
	}
	return -1
}
