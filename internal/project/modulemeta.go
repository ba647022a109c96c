package project

import (
	"path"
	"strings"

	"modlink/internal/source"
)

const (
	// ContractExt is the extension of contract sources.
	ContractExt = ".vy"
	// InterfaceExt is the extension of interface files.
	InterfaceExt = ".vyi"
)

type ImportMeta struct {
	Path string // путь в бандле после разрешения: "lib/math.vy"; пусто, если не найден
	As   string // как написано в исходнике: "lib.math"
	Span source.Span
}

// ModuleMeta is what the import graph needs to know about one module.
type ModuleMeta struct {
	Name        string
	Path        string      // путь в бандле: "lib/math.vy"
	Span        source.Span // span всего файла
	Imports     []ImportMeta
	ContentHash Digest // хеш содержимого файла
	ModuleHash  Digest // агрегированный хеш модуля с учётом зависимостей
}

// ModuleName returns the short module name of a bundle path: "lib/math.vy" -> "math".
func ModuleName(bundlePath string) string {
	base := path.Base(bundlePath)
	return strings.TrimSuffix(strings.TrimSuffix(base, InterfaceExt), ContractExt)
}

// IsInterfacePath reports whether a bundle path names an interface file.
func IsInterfacePath(bundlePath string) bool {
	return strings.HasSuffix(bundlePath, InterfaceExt)
}

// Candidates lists bundle paths an import may resolve to, in lookup order:
// next to the importer first, then under every search path, then the bundle
// root. Leading dots of relative imports are not part of importPath.
func Candidates(from, importPath string, searchPaths []string) []string {
	rel := strings.ReplaceAll(importPath, ".", "/")
	dirs := make([]string, 0, len(searchPaths)+2)
	dirs = append(dirs, path.Dir(from))
	dirs = append(dirs, searchPaths...)
	dirs = append(dirs, ".")

	out := make([]string, 0, 2*len(dirs))
	seen := make(map[string]struct{}, 2*len(dirs))
	for _, dir := range dirs {
		for _, ext := range []string{ContractExt, InterfaceExt} {
			p := path.Clean(path.Join(dir, rel+ext))
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
