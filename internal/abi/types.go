package abi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TypeExpr is a parsed contract-language type annotation:
// uint256, HashMap[address, uint256], DynArray[Foo, 10], uint8[3], (uint256, bool).
type TypeExpr struct {
	Name  string      // "uint256", "HashMap", "lib.Foo"; пусто для кортежа
	Args  []*TypeExpr // аргументы в квадратных скобках
	Len   int         // длина для размерных аргументов (String[100], DynArray[T, 10])
	Elem  *TypeExpr   // элемент статического массива T[N]
	Tuple []*TypeExpr
}

var errBadType = errors.New("malformed type")

// ParseType parses a type annotation. Whitespace is insignificant.
func ParseType(text string) (*TypeExpr, error) {
	p := typeParser{src: strings.Join(strings.Fields(text), "")}
	t, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%q: %w", text, err)
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%q: %w: trailing %q", text, errBadType, p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) parse() (*TypeExpr, error) {
	var t *TypeExpr
	if p.peek() == '(' {
		p.pos++
		t = &TypeExpr{}
		for p.peek() != ')' {
			elem, err := p.parse()
			if err != nil {
				return nil, err
			}
			t.Tuple = append(t.Tuple, elem)
			if p.peek() == ',' {
				p.pos++
				continue
			}
			if p.peek() != ')' {
				return nil, errBadType
			}
		}
		p.pos++
	} else {
		name := p.ident()
		if name == "" {
			return nil, errBadType
		}
		t = &TypeExpr{Name: name}
		if p.peek() == '[' && isParametric(name) {
			p.pos++
			for {
				if n, ok := p.number(); ok {
					t.Len = n
				} else {
					arg, err := p.parse()
					if err != nil {
						return nil, err
					}
					t.Args = append(t.Args, arg)
				}
				if p.peek() == ',' {
					p.pos++
					continue
				}
				if p.peek() != ']' {
					return nil, errBadType
				}
				p.pos++
				break
			}
		}
	}
	// статические массивы: T[N][M]
	for p.peek() == '[' {
		p.pos++
		n, ok := p.number()
		if !ok || p.peek() != ']' {
			return nil, errBadType
		}
		p.pos++
		t = &TypeExpr{Elem: t, Len: n}
	}
	return t, nil
}

func isParametric(name string) bool {
	switch name {
	case "HashMap", "DynArray", "String", "Bytes":
		return true
	}
	return false
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '.' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || (p.pos > start && c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) number() (int, bool) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '_') {
		p.pos++
	}
	if start == p.pos {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(p.src[start:p.pos], "_", ""))
	if err != nil {
		p.pos = start
		return 0, false
	}
	return n, true
}

// String prints the type back in source form without whitespace.
func (t *TypeExpr) String() string {
	if t == nil {
		return ""
	}
	switch {
	case t.Elem != nil:
		return t.Elem.String() + "[" + strconv.Itoa(t.Len) + "]"
	case t.Name == "":
		parts := make([]string, len(t.Tuple))
		for i, e := range t.Tuple {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	case len(t.Args) > 0 || t.Len > 0:
		parts := make([]string, 0, len(t.Args)+1)
		for _, a := range t.Args {
			parts = append(parts, a.String())
		}
		if t.Len > 0 {
			parts = append(parts, strconv.Itoa(t.Len))
		}
		return t.Name + "[" + strings.Join(parts, ",") + "]"
	}
	return t.Name
}

// NamedKind says what a user-defined type name denotes.
type NamedKind uint8

const (
	NamedUnknown NamedKind = iota
	NamedStruct
	NamedInterface
	NamedFlag
)

// Resolver looks up user-defined type names. For structs it returns the
// field types in declaration order.
type Resolver func(name string) (kind NamedKind, fields []*TypeExpr, next Resolver)

// Canonical returns the ABI type string: String -> string, Bytes -> bytes,
// DynArray[T, N] -> T[], decimal -> int168, structs -> (f1,f2), interfaces -> address.
func Canonical(t *TypeExpr, resolve Resolver) (string, error) {
	return canonical(t, resolve, 0)
}

const maxTypeDepth = 32

func canonical(t *TypeExpr, resolve Resolver, depth int) (string, error) {
	if t == nil {
		return "", nil
	}
	if depth > maxTypeDepth {
		return "", fmt.Errorf("%s: %w: recursive type", t, errBadType)
	}
	if t.Elem != nil {
		inner, err := canonical(t.Elem, resolve, depth+1)
		if err != nil {
			return "", err
		}
		return inner + "[" + strconv.Itoa(t.Len) + "]", nil
	}
	if t.Name == "" {
		parts := make([]string, len(t.Tuple))
		for i, e := range t.Tuple {
			s, err := canonical(e, resolve, depth+1)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, ",") + ")", nil
	}
	switch t.Name {
	case "String":
		return "string", nil
	case "Bytes":
		return "bytes", nil
	case "decimal":
		return "int168", nil
	case "DynArray":
		if len(t.Args) != 1 {
			return "", fmt.Errorf("%s: %w", t, errBadType)
		}
		inner, err := canonical(t.Args[0], resolve, depth+1)
		if err != nil {
			return "", err
		}
		return inner + "[]", nil
	case "HashMap":
		return "", fmt.Errorf("%s: %w: HashMap is not an ABI type", t, errBadType)
	}
	if isElementary(t.Name) {
		return t.Name, nil
	}
	if resolve != nil {
		kind, fields, next := resolve(t.Name)
		switch kind {
		case NamedInterface:
			return "address", nil
		case NamedFlag:
			return "uint256", nil
		case NamedStruct:
			if next == nil {
				next = resolve
			}
			return canonical(&TypeExpr{Tuple: fields}, next, depth+1)
		}
	}
	return "", fmt.Errorf("%s: %w: unknown type", t, errBadType)
}

func isElementary(name string) bool {
	switch name {
	case "address", "bool", "bytes", "string":
		return true
	}
	for _, prefix := range []string{"uint", "int", "bytes"} {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if prefix == "bytes" {
			return n >= 1 && n <= 32
		}
		return n >= 8 && n <= 256 && n%8 == 0
	}
	return false
}

// GetterShape unrolls a public variable type into getter parameters and
// return type: HashMap[K, V] adds K, arrays add uint256, recursively.
func GetterShape(t *TypeExpr) (params []*TypeExpr, ret *TypeExpr) {
	uint256 := &TypeExpr{Name: "uint256"}
	for {
		switch {
		case t.Name == "HashMap" && len(t.Args) == 2:
			params = append(params, t.Args[0])
			t = t.Args[1]
		case t.Name == "DynArray" && len(t.Args) == 1:
			params = append(params, uint256)
			t = t.Args[0]
		case t.Elem != nil:
			params = append(params, uint256)
			t = t.Elem
		default:
			return params, t
		}
	}
}
