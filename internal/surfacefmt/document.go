// Package surfacefmt renders the external surface of a checked module as
// JSON, YAML or a terminal table.
package surfacefmt

import (
	"strings"

	"modlink/internal/sema"
	"modlink/internal/symbols"
)

// Selector is one 4-byte method ID with the signature it hashes.
type Selector struct {
	ID        string `json:"id" yaml:"id"`
	Signature string `json:"signature" yaml:"signature"`
}

// Method is an ABI-like description of one surface entry.
type Method struct {
	Name            string     `json:"name" yaml:"name"`
	Inputs          []string   `json:"inputs" yaml:"inputs"`
	Output          string     `json:"output,omitempty" yaml:"output,omitempty"`
	StateMutability string     `json:"stateMutability" yaml:"stateMutability"`
	Selectors       []Selector `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	Origin          string     `json:"origin" yaml:"origin"`
	Via             string     `json:"via,omitempty" yaml:"via,omitempty"`
	// Source is the module that implements the method.
	Source string `json:"source" yaml:"source"`
}

// Grant is a `uses:` or `initializes:` declaration.
type Grant struct {
	Module string `json:"module" yaml:"module"`
	Mode   string `json:"mode" yaml:"mode"`
}

// Document is the serialisable surface of one module.
type Document struct {
	Module     string   `json:"module" yaml:"module"`
	Methods    []Method `json:"methods" yaml:"methods"`
	Grants     []Grant  `json:"grants,omitempty" yaml:"grants,omitempty"`
	Implements []string `json:"implements,omitempty" yaml:"implements,omitempty"`
}

// Build converts s; arena maps module IDs back to bundle paths.
func Build(arena *symbols.Arena, s *sema.Surface) Document {
	doc := Document{Module: s.Path, Methods: make([]Method, 0, len(s.Entries))}
	for _, e := range s.Entries {
		m := Method{
			Name:            e.Name,
			Inputs:          append([]string{}, e.Sig.Params...),
			Output:          e.Sig.Return,
			StateMutability: e.Sig.Mutability.String(),
			Origin:          e.Origin.String(),
			Via:             e.Via,
			Source:          modulePath(arena, e.Impl.Module),
		}
		for _, id := range e.Selectors {
			m.Selectors = append(m.Selectors, Selector{ID: id.Selector.Hex(), Signature: id.Signature})
		}
		doc.Methods = append(doc.Methods, m)
	}
	for _, g := range s.Grants {
		doc.Grants = append(doc.Grants, Grant{Module: modulePath(arena, g.To), Mode: g.Mode.String()})
	}
	for _, ref := range s.Implements {
		doc.Implements = append(doc.Implements, interfaceName(arena, ref))
	}
	return doc
}

func modulePath(arena *symbols.Arena, id symbols.ModuleID) string {
	if m := arena.Get(id); m != nil {
		return m.Path
	}
	return ""
}

// interfaceName is the file path of an interface file or "path:Name" for
// an inline interface.
func interfaceName(arena *symbols.Arena, ref sema.InterfaceRef) string {
	if ref.File.IsValid() {
		return modulePath(arena, ref.File)
	}
	var sb strings.Builder
	sb.WriteString(modulePath(arena, ref.Inline.Module))
	if decl := arena.Interface(ref.Inline); decl != nil {
		sb.WriteString(":" + decl.Name)
	}
	return sb.String()
}
