package version

import (
	"strings"
	"testing"
)

func TestPrettyWithoutColor(t *testing.T) {
	if got := Pretty(false); got != Version {
		t.Fatalf("Pretty(false) = %q, want %q", got, Version)
	}
}

func TestPrettyColoursEachPart(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc1"
	got := Pretty(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc1") {
		t.Fatalf("Pretty(true) = %q", got)
	}
	Version = "nightly"
	if got := Pretty(true); got != "nightly" {
		t.Fatalf("non-semver version must stay as is, got %q", got)
	}
}
