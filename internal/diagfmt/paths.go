package diagfmt

import (
	"path"

	"modlink/internal/diag"
	"modlink/internal/source"
)

func displayPath(fs *source.FileSet, sp source.Span, loc diag.Location, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if fs != nil && int(sp.File) < fs.Len() {
			return fs.Get(sp.File).Abs
		}
	case PathModeBasename:
		return path.Base(loc.ModulePath)
	}
	return loc.ModulePath
}
