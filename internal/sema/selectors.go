package sema

import (
	"fmt"
	"strings"

	"modlink/internal/abi"
	"modlink/internal/diag"
	"modlink/internal/source"
)

type selectorGroup struct {
	sel   abi.Selector
	sigs  []string
	spans []source.Span
}

// CheckSelectors groups every method ID of the surface by selector and
// reports each group with more than one member. Members are listed in merge
// order: locals first, then exports.
func CheckSelectors(s *Surface, r diag.Reporter) bool {
	var groups []*selectorGroup
	index := make(map[abi.Selector]*selectorGroup)
	for _, e := range s.Entries {
		for _, id := range e.Selectors {
			g, ok := index[id.Selector]
			if !ok {
				g = &selectorGroup{sel: id.Selector}
				index[id.Selector] = g
				groups = append(groups, g)
			}
			g.sigs = append(g.sigs, id.Signature)
			g.spans = append(g.spans, e.Span)
		}
	}
	ok := true
	for _, g := range groups {
		if len(g.sigs) < 2 {
			continue
		}
		ok = false
		b := diag.NewReportBuilder(r, diag.StructureException, g.spans[len(g.spans)-1],
			fmt.Sprintf("Methods produce colliding method ID `%s`: %s", g.sel.Hex(), strings.Join(g.sigs, ", ")))
		b.WithPrev(g.spans[0])
		b.Emit()
	}
	return ok
}
