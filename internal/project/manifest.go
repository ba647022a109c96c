package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file FindManifest looks for.
const ManifestName = "modlink.toml"

// ErrMainMissing indicates that [project].main is required but absent.
var ErrMainMissing = errors.New("missing [project].main")

// Manifest is a parsed modlink.toml.
type Manifest struct {
	Path    string `toml:"-"`
	Root    string `toml:"-"`
	Project struct {
		Name  string   `toml:"name"`
		Main  string   `toml:"main"`
		Paths []string `toml:"paths"`
	} `toml:"project"`
	Check struct {
		Jobs           int  `toml:"jobs"`
		DiskCache      bool `toml:"disk_cache"`
		MaxDiagnostics int  `toml:"max_diagnostics"`
	} `toml:"check"`
}

// FindManifest walks up from startDir to locate modlink.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses modlink.toml at path.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	m.Path = path
	m.Root = filepath.Dir(path)
	m.Project.Main = strings.TrimSpace(m.Project.Main)
	if m.Check.Jobs < 0 {
		return nil, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	for _, p := range m.Project.Paths {
		if _, err := relWithin(m.Root, p); err != nil {
			return nil, fmt.Errorf("%s: invalid [project].paths entry: %w", path, err)
		}
	}
	return &m, nil
}

// MainPath returns [project].main relative to the manifest root.
func (m *Manifest) MainPath() (string, error) {
	if m == nil || m.Project.Main == "" {
		return "", ErrMainMissing
	}
	return relWithin(m.Root, m.Project.Main)
}
