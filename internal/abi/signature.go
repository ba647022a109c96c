package abi

import (
	"slices"
	"strings"
)

// Signature is an externally callable function shape with canonical ABI types.
type Signature struct {
	Name       string
	Params     []string
	Return     string // пусто, если функция ничего не возвращает
	Mutability Mutability
	// Defaults is the number of trailing parameters that have default values.
	Defaults int
}

// String returns "name(t1,t2)" for the full parameter list.
func (s Signature) String() string {
	return s.Name + "(" + strings.Join(s.Params, ",") + ")"
}

// Arities lists the canonical strings for every callable arity, shortest first.
func (s Signature) Arities() []string {
	n := len(s.Params)
	d := min(max(s.Defaults, 0), n)
	out := make([]string, 0, d+1)
	for k := n - d; k <= n; k++ {
		out = append(out, s.Name+"("+strings.Join(s.Params[:k], ",")+")")
	}
	return out
}

// Equivalent reports whether name, parameter types and return type match exactly.
// Mutability is compared separately with Compatible.
func (s Signature) Equivalent(other Signature) bool {
	return s.Name == other.Name && s.Return == other.Return && slices.Equal(s.Params, other.Params)
}

// Satisfies reports whether s can stand in for the interface method req.
func (s Signature) Satisfies(req Signature) bool {
	return s.Equivalent(req) && Compatible(s.Mutability, req.Mutability)
}
