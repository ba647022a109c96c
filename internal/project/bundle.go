package project

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// ErrModuleNotFound means no candidate file exists for an import.
var ErrModuleNotFound = errors.New("module not found")

// Bundle is the set of sources a compilation may read. Paths are
// slash-separated and relative to the bundle root.
type Bundle interface {
	// Find resolves `import importPath` written in module from.
	Find(from, importPath string) (string, error)
	Read(bundlePath string) ([]byte, error)
	// Abs is the absolute location used in diagnostics.
	Abs(bundlePath string) string
}

// MemoryBundle serves sources from a map; used by tests and tooling.
type MemoryBundle struct {
	root  string
	files map[string][]byte
	paths []string
}

// NewMemoryBundle creates a bundle rooted at root (used only for Abs).
func NewMemoryBundle(root string, files map[string]string, searchPaths ...string) *MemoryBundle {
	b := &MemoryBundle{root: filepath.ToSlash(root), files: make(map[string][]byte, len(files)), paths: searchPaths}
	for p, content := range files {
		b.files[path.Clean(p)] = []byte(content)
	}
	return b
}

func (b *MemoryBundle) Find(from, importPath string) (string, error) {
	for _, c := range Candidates(from, importPath, b.paths) {
		if _, ok := b.files[c]; ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("%s: %w", importPath, ErrModuleNotFound)
}

func (b *MemoryBundle) Read(bundlePath string) ([]byte, error) {
	content, ok := b.files[path.Clean(bundlePath)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", bundlePath, os.ErrNotExist)
	}
	return content, nil
}

func (b *MemoryBundle) Abs(bundlePath string) string {
	if b.root == "" {
		return bundlePath
	}
	return path.Join(b.root, bundlePath)
}

// Paths returns the bundle's files in sorted order.
func (b *MemoryBundle) Paths() []string {
	out := make([]string, 0, len(b.files))
	for p := range b.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// DiskBundle reads sources below root.
type DiskBundle struct {
	root  string
	paths []string
}

// NewDiskBundle creates a bundle over directory root. Search paths are
// relative to root and must stay inside it.
func NewDiskBundle(root string, searchPaths []string) (*DiskBundle, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bundle root: %w", err)
	}
	clean := make([]string, 0, len(searchPaths))
	for _, p := range searchPaths {
		rel, err := relWithin(abs, p)
		if err != nil {
			return nil, err
		}
		clean = append(clean, rel)
	}
	return &DiskBundle{root: abs, paths: clean}, nil
}

func (b *DiskBundle) Root() string { return b.root }

func (b *DiskBundle) Find(from, importPath string) (string, error) {
	for _, c := range Candidates(from, importPath, b.paths) {
		info, err := os.Stat(b.Abs(c))
		if err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%s: %w", importPath, ErrModuleNotFound)
}

func (b *DiskBundle) Read(bundlePath string) ([]byte, error) {
	return os.ReadFile(b.Abs(bundlePath))
}

func (b *DiskBundle) Abs(bundlePath string) string {
	return filepath.ToSlash(filepath.Join(b.root, filepath.FromSlash(bundlePath)))
}

// Rel maps a filesystem path to a bundle path.
func (b *DiskBundle) Rel(file string) (string, error) {
	return relWithin(b.root, file)
}

// relWithin returns p relative to root, slash-separated; p may be relative
// to root or absolute.
func relWithin(root, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, filepath.FromSlash(p))
	}
	p = filepath.Clean(p)
	if !pathWithin(root, p) {
		return "", fmt.Errorf("path %q escapes bundle root %q", p, root)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func pathWithin(root, p string) bool {
	if root == "" || p == "" {
		return false
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
