package driver

import (
	"errors"
	"fmt"

	"modlink/internal/ast"
	"modlink/internal/diag"
	"modlink/internal/project"
	"modlink/internal/source"
	"modlink/internal/syntax"
)

// loadedModule is one parsed file before it enters the symbol arena.
type loadedModule struct {
	meta     project.ModuleMeta
	ast      *ast.Module
	file     source.FileID
	reporter *diag.FirstReporter
}

// broken reports whether anything was reported against the module so far.
func (m *loadedModule) broken() bool { return m.reporter.First != nil }

type loader struct {
	bundle project.Bundle
	fs     *source.FileSet
	sink   diag.Reporter
	byPath map[string]*loadedModule
	order  []*loadedModule
}

// load reads main and everything reachable from it breadth-first. Missing
// imports are diagnostics of the importer; unreadable files are errors.
func (l *loader) load(main string) error {
	queue := []string{main}
	l.byPath[main] = nil
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		m, err := l.parse(p)
		if err != nil {
			return err
		}
		l.byPath[p] = m
		l.order = append(l.order, m)
		for _, dep := range m.meta.Imports {
			if dep.Path == "" {
				continue
			}
			if _, seen := l.byPath[dep.Path]; seen {
				continue
			}
			l.byPath[dep.Path] = nil
			queue = append(queue, dep.Path)
		}
	}
	return nil
}

func (l *loader) parse(bundlePath string) (*loadedModule, error) {
	content, err := l.bundle.Read(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", bundlePath, err)
	}
	id := l.fs.AddVirtual(bundlePath, content)
	file := l.fs.Get(id)
	file.Abs = l.bundle.Abs(bundlePath)

	m := &loadedModule{file: id, reporter: diag.NewFirstReporter(l.sink)}
	m.ast = syntax.Parse(l.fs, id, m.reporter)
	m.meta = project.ModuleMeta{
		Name:        project.ModuleName(bundlePath),
		Path:        bundlePath,
		Span:        m.ast.Span,
		ContentHash: project.Hash(file.Content),
	}
	for _, imp := range m.ast.Imports {
		resolved, err := l.bundle.Find(bundlePath, imp.Path)
		switch {
		case err == nil:
		case errors.Is(err, project.ErrModuleNotFound):
			diag.NewReportBuilder(m.reporter, diag.StructureException, imp.Span,
				fmt.Sprintf("module `%s` not found", imp.Path)).Emit()
		default:
			return nil, err
		}
		m.meta.Imports = append(m.meta.Imports, project.ImportMeta{Path: resolved, As: imp.Path, Span: imp.Span})
	}
	return m, nil
}
