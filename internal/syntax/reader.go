package syntax

import (
	"fmt"
	"path"
	"strings"

	"modlink/internal/abi"
	"modlink/internal/ast"
	"modlink/internal/diag"
	"modlink/internal/source"
)

// Parse reads the top-level declarations of one contract (.vy) or interface
// (.vyi) file. Syntax problems are reported as StructureException; the
// returned module holds everything that could be read.
func Parse(fs *source.FileSet, id source.FileID, r diag.Reporter) *ast.Module {
	f := fs.Get(id)
	kind := ast.ModuleContract
	if path.Ext(f.Path) == ".vyi" {
		kind = ast.ModuleInterface
	}
	p := &reader{
		mod: ast.NewModule(f.Path, f.ModuleName(), id, kind),
		rep: r,
	}
	p.mod.Span = source.Span{File: id, Start: 0, End: uint32(len(f.Content))}
	lines, errs := splitLines(f)
	for _, e := range errs {
		p.errorf(e.span, "%s", e.msg)
	}
	p.lines = lines
	p.run()
	return p.mod
}

type reader struct {
	mod   *ast.Module
	rep   diag.Reporter
	lines []line
	pos   int
}

func (p *reader) errorf(sp source.Span, format string, args ...any) {
	diag.NewReportBuilder(p.rep, diag.StructureException, sp, "invalid syntax: "+fmt.Sprintf(format, args...)).Emit()
}

// block returns the indented lines that follow lines[p.pos].
func (p *reader) block() []line {
	start := p.pos + 1
	end := start
	for end < len(p.lines) && p.lines[end].indent > 0 {
		end++
	}
	return p.lines[start:end]
}

func (p *reader) run() {
	var decorators []ast.Decorator
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.indent > 0 {
			p.errorf(ln.span, "unexpected indent")
			p.pos++
			continue
		}
		head := ln.toks[0]
		if head.is("@") {
			if d, ok := p.decorator(ln); ok {
				decorators = append(decorators, d)
			}
			p.pos++
			continue
		}
		if len(decorators) > 0 && !head.isIdent("def") {
			p.errorf(ln.span, "decorator must precede a function")
			decorators = nil
		}
		switch {
		case head.kind == tokString && len(ln.toks) == 1:
			// docstring
		case head.isIdent("import"):
			p.importStmt(ln)
		case head.isIdent("from"):
			p.fromImport(ln)
		case head.isIdent("def"):
			body := p.block()
			p.funcDecl(ln, body, decorators)
			decorators = nil
			p.pos += len(body)
		case (head.isIdent("interface") || head.isIdent("struct") || head.isIdent("event") ||
			head.isIdent("flag") || head.isIdent("enum")) && len(ln.toks) >= 3 && ln.toks[1].kind == tokIdent:
			body := p.block()
			p.typeBlock(ln, body)
			p.pos += len(body)
		case head.kind == tokIdent && len(ln.toks) >= 2 && ln.toks[1].is(":"):
			p.colonStmt(ln)
		default:
			p.errorf(ln.span, "unexpected `%s`", head.text)
			p.pos += len(p.block())
		}
		p.pos++
	}
	if len(decorators) > 0 {
		p.errorf(decorators[len(decorators)-1].Span, "decorator must precede a function")
	}
}

func (p *reader) decorator(ln line) (ast.Decorator, bool) {
	if len(ln.toks) < 2 || ln.toks[1].kind != tokIdent {
		p.errorf(ln.span, "expected decorator name")
		return ast.Decorator{}, false
	}
	return ast.Decorator{Name: ln.toks[1].text, Span: ln.span}, true
}

// dotted reads `a.b.c` starting at toks[i] and returns the path and the next index.
func dotted(toks []token, i int) (string, int) {
	var parts []string
	for i < len(toks) && toks[i].kind == tokIdent {
		parts = append(parts, toks[i].text)
		i++
		if i < len(toks) && toks[i].is(".") {
			i++
			continue
		}
		break
	}
	return strings.Join(parts, "."), i
}

func (p *reader) importStmt(ln line) {
	modPath, i := dotted(ln.toks, 1)
	if modPath == "" {
		p.errorf(ln.span, "expected module path after `import`")
		return
	}
	alias := modPath[strings.LastIndexByte(modPath, '.')+1:]
	if i+1 < len(ln.toks) && ln.toks[i].isIdent("as") && ln.toks[i+1].kind == tokIdent {
		alias = ln.toks[i+1].text
		i += 2
	}
	if i != len(ln.toks) {
		p.errorf(ln.toks[i].span, "unexpected `%s` in import", ln.toks[i].text)
		return
	}
	p.mod.Imports = append(p.mod.Imports, ast.Import{Path: modPath, Alias: alias, Span: ln.span})
}

// fromImport handles `from pkg import a, b as c` and `from . import a`.
func (p *reader) fromImport(ln line) {
	i := 1
	for i < len(ln.toks) && ln.toks[i].is(".") {
		i++
	}
	pkg, i := dotted(ln.toks, i)
	if i >= len(ln.toks) || !ln.toks[i].isIdent("import") {
		p.errorf(ln.span, "expected `import`")
		return
	}
	i++
	if i < len(ln.toks) && ln.toks[i].is("(") {
		i++
	}
	for i < len(ln.toks) {
		t := ln.toks[i]
		if t.is(",") || t.is(")") {
			i++
			continue
		}
		if t.kind != tokIdent {
			p.errorf(t.span, "unexpected `%s` in import", t.text)
			return
		}
		name, alias := t.text, t.text
		i++
		if i+1 < len(ln.toks) && ln.toks[i].isIdent("as") && ln.toks[i+1].kind == tokIdent {
			alias = ln.toks[i+1].text
			i += 2
		}
		full := name
		if pkg != "" {
			full = pkg + "." + name
		}
		p.mod.Imports = append(p.mod.Imports, ast.Import{Path: full, Alias: alias, Span: ln.span})
	}
}

// colonStmt handles `uses:`, `initializes:`, `implements:`, `exports:` and
// variable declarations, which all look like `name: ...`.
func (p *reader) colonStmt(ln line) {
	rest := ln.toks[2:]
	if len(rest) == 0 {
		p.errorf(ln.span, "expected expression after `:`")
		return
	}
	switch ln.toks[0].text {
	case "uses":
		names := nameList(rest)
		if len(names) == 0 {
			p.errorf(cover(rest), "expected module name")
		}
		p.mod.Uses = append(p.mod.Uses, names...)
	case "initializes":
		p.initializes(ln, rest)
	case "implements":
		e, err := parseExpr(rest)
		if err != nil {
			p.errorf(err.span, "%s", err.msg)
			return
		}
		p.mod.Implements = append(p.mod.Implements, ast.ImplementsDecl{Target: e, Span: ln.span})
	case "exports":
		e, err := parseExpr(rest)
		if err != nil {
			p.errorf(err.span, "%s", err.msg)
			return
		}
		p.mod.Exports = append(p.mod.Exports, ast.ExportsDecl{Item: e, Span: ln.span})
	default:
		p.varDecl(ln)
	}
}

// nameList reads `a` or `(a, b)`.
func nameList(toks []token) []ast.NameRef {
	var out []ast.NameRef
	for _, t := range toks {
		switch {
		case t.kind == tokIdent:
			out = append(out, ast.NameRef{Name: t.text, Span: t.span})
		case t.is("(") || t.is(")") || t.is(","):
		default:
			return nil
		}
	}
	return out
}

func (p *reader) initializes(ln line, rest []token) {
	if rest[0].kind != tokIdent {
		p.errorf(rest[0].span, "expected module name")
		return
	}
	decl := ast.InitializesDecl{Module: ast.NameRef{Name: rest[0].text, Span: rest[0].span}, Span: ln.span}
	if len(rest) > 1 {
		if !rest[1].is("[") || !rest[len(rest)-1].is("]") {
			p.errorf(cover(rest[1:]), "expected `[dep := dep, ...]`")
			return
		}
		inner := rest[2 : len(rest)-1]
		for i := 0; i+1 < len(inner); i++ {
			if inner[i].kind == tokIdent && inner[i+1].is(":=") {
				decl.Deps = append(decl.Deps, ast.NameRef{Name: inner[i].text, Span: inner[i].span})
			}
		}
	}
	p.mod.Initializes = append(p.mod.Initializes, decl)
}

func (p *reader) varDecl(ln line) {
	name := ln.toks[0]
	typeToks := ln.toks[2:]
	if eq := findTop(typeToks, "="); eq >= 0 {
		typeToks = typeToks[:eq]
	}
	decl := ast.VarDecl{Name: name.text, NameSpan: name.span, Span: ln.span}
	for len(typeToks) >= 3 && typeToks[0].kind == tokIdent && typeToks[1].is("(") && typeToks[len(typeToks)-1].is(")") {
		switch typeToks[0].text {
		case "public":
			decl.Public = true
		case "constant":
			decl.Constant = true
		case "immutable":
			decl.Immutable = true
		case "transient":
			decl.Transient = true
		default:
			p.errorf(typeToks[0].span, "unknown type wrapper `%s`", typeToks[0].text)
			return
		}
		typeToks = typeToks[2 : len(typeToks)-1]
	}
	if len(typeToks) == 0 {
		p.errorf(ln.span, "expected type for `%s`", name.text)
		return
	}
	decl.Type = joinTexts(typeToks)
	p.mod.Vars.Allocate(decl)
}

// findTop returns the index of the first op token at bracket depth 0, or -1.
func findTop(toks []token, op string) int {
	depth := 0
	for i, t := range toks {
		switch {
		case t.is("(") || t.is("[") || t.is("{"):
			depth++
		case t.is(")") || t.is("]") || t.is("}"):
			depth--
		case depth == 0 && t.is(op):
			return i
		}
	}
	return -1
}

func (p *reader) funcDecl(ln line, body []line, decorators []ast.Decorator) {
	fn, inline, ok := p.funcHeader(ln)
	if !ok {
		return
	}
	fn.Decorators = decorators
	for _, d := range decorators {
		switch d.Name {
		case "external":
			fn.Visibility = ast.VisExternal
		case "internal":
			fn.Visibility = ast.VisInternal
		case "deploy":
			fn.Visibility = ast.VisDeploy
		case "nonreentrant":
			fn.Nonreentrant = true
		default:
			if m, ok := abi.ParseMutability(d.Name); ok {
				fn.Mutability = m
				continue
			}
			p.errorf(d.Span, "unknown decorator `@%s`", d.Name)
		}
	}
	if p.mod.Kind == ast.ModuleInterface && fn.Visibility != ast.VisExternal {
		p.errorf(fn.NameSpan, "interface functions must be `@external`")
	}
	stmts := make([][]token, 0, len(body)+1)
	if len(inline) > 0 {
		stmts = append(stmts, inline)
	}
	for _, b := range body {
		stmts = append(stmts, b.toks)
	}
	if len(stmts) == 0 {
		p.errorf(ln.span, "function `%s` has no body", fn.Name)
	}
	fn.Body = scanBody(stmts)
	fn.Span = ln.toks[0].span
	if len(body) > 0 {
		fn.Span = fn.Span.Cover(body[len(body)-1].span)
	} else {
		fn.Span = fn.Span.Cover(ln.span)
	}
	p.mod.Funcs.Allocate(fn)
}

// funcHeader parses `def name(params) -> ret:` and returns the tokens that
// follow the colon on the same line.
func (p *reader) funcHeader(ln line) (ast.FuncDecl, []token, bool) {
	toks := ln.toks
	if len(toks) < 4 || toks[1].kind != tokIdent || !toks[2].is("(") {
		p.errorf(ln.span, "expected `def name(...)`")
		return ast.FuncDecl{}, nil, false
	}
	fn := ast.FuncDecl{Name: toks[1].text, NameSpan: toks[1].span}
	closeIdx := matching(toks, 2)
	if closeIdx < 0 {
		p.errorf(ln.span, "unclosed parameter list")
		return fn, nil, false
	}
	params, ok := p.params(toks[3:closeIdx])
	if !ok {
		return fn, nil, false
	}
	fn.Params = params
	rest := toks[closeIdx+1:]
	colon := findTop(rest, ":")
	if colon < 0 {
		p.errorf(ln.span, "expected `:` after function signature")
		return fn, nil, false
	}
	if colon > 0 {
		if !rest[0].is("->") || colon == 1 {
			p.errorf(cover(rest[:colon]), "expected `-> type`")
			return fn, nil, false
		}
		fn.Return = joinTexts(rest[1:colon])
	}
	return fn, rest[colon+1:], true
}

func (p *reader) params(toks []token) ([]ast.Param, bool) {
	var out []ast.Param
	for len(toks) > 0 {
		end := findTop(toks, ",")
		if end < 0 {
			end = len(toks)
		}
		part := toks[:end]
		if len(part) > 0 {
			if len(part) < 3 || part[0].kind != tokIdent || !part[1].is(":") {
				p.errorf(cover(part), "expected `name: type`")
				return nil, false
			}
			param := ast.Param{Name: part[0].text, Span: cover(part)}
			typ := part[2:]
			if eq := findTop(typ, "="); eq >= 0 {
				param.HasDefault = true
				typ = typ[:eq]
			}
			param.Type = joinTexts(typ)
			out = append(out, param)
		}
		if end == len(toks) {
			break
		}
		toks = toks[end+1:]
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].HasDefault && !out[i].HasDefault {
			p.errorf(out[i].Span, "non-default argument follows default argument")
			return nil, false
		}
	}
	return out, true
}

// matching returns the index of the bracket closing toks[open].
func matching(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].is("(") || toks[i].is("[") || toks[i].is("{"):
			depth++
		case toks[i].is(")") || toks[i].is("]") || toks[i].is("}"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *reader) typeBlock(ln line, body []line) {
	kw, name := ln.toks[0].text, ln.toks[1]
	if !ln.toks[2].is(":") {
		p.errorf(ln.span, "expected `:` after `%s %s`", kw, name.text)
		return
	}
	sp := ln.span
	if len(body) > 0 {
		sp = sp.Cover(body[len(body)-1].span)
	}
	switch kw {
	case "interface":
		decl := ast.InterfaceDecl{Name: name.text, Span: sp}
		for _, b := range body {
			if !b.toks[0].isIdent("def") {
				if b.toks[0].kind == tokString && len(b.toks) == 1 {
					continue
				}
				p.errorf(b.span, "expected `def` in interface body")
				continue
			}
			fn, rest, ok := p.funcHeader(b)
			if !ok {
				continue
			}
			fn.Span = b.span
			fn.Visibility = ast.VisExternal
			if len(rest) != 1 || rest[0].kind != tokIdent {
				p.errorf(b.span, "expected mutability after interface method")
				continue
			}
			m, ok := abi.ParseMutability(rest[0].text)
			if !ok {
				p.errorf(rest[0].span, "unknown mutability `%s`", rest[0].text)
				continue
			}
			fn.Mutability = m
			decl.Methods = append(decl.Methods, fn)
		}
		p.mod.Interfaces.Allocate(decl)
	case "struct":
		decl := ast.StructDecl{Name: name.text, Span: sp}
		for _, b := range body {
			if len(b.toks) < 3 || b.toks[0].kind != tokIdent || !b.toks[1].is(":") {
				p.errorf(b.span, "expected `field: type`")
				continue
			}
			decl.Fields = append(decl.Fields, ast.Field{Name: b.toks[0].text, Type: joinTexts(b.toks[2:]), Span: b.span})
		}
		p.mod.Structs.Allocate(decl)
	case "flag", "enum":
		p.mod.Flags = append(p.mod.Flags, ast.NameRef{Name: name.text, Span: name.span})
	}
}
