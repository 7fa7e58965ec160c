package version

import (
	"strings"
	"testing"

	"golang.org/x/mod/semver"
)

func TestVersionOrdering(t *testing.T) {
	tests := []struct {
		name     string
		v1       string
		v2       string
		expected int
	}{
		{name: "same release", v1: "v0.3.0", v2: "v0.3.0", expected: 0},
		{name: "patch bump", v1: "v0.3.0", v2: "v0.3.1", expected: -1},
		{name: "minor bump", v1: "v0.3.1", v2: "v0.4.0", expected: -1},
		{name: "double digit minor", v1: "v0.9.0", v2: "v0.10.0", expected: -1},
		{name: "prerelease before release", v1: "v1.0.0-rc1", v2: "v1.0.0", expected: -1},
		{name: "newer major", v1: "v2.0.0", v2: "v1.9.9", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := semver.Compare(tt.v1, tt.v2); got != tt.expected {
				t.Errorf("semver.Compare(%s, %s) = %d, want %d", tt.v1, tt.v2, got, tt.expected)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Error("Version() must not be empty")
	}
}

func TestVersionFromBuildFlags(t *testing.T) {
	oldVersion := version
	defer func() { version = oldVersion }()

	version = "v0.3.0"
	if got := Version(); got != "v0.3.0" {
		t.Errorf("expected ldflags version returned verbatim, got %q", got)
	}
	if !semver.IsValid(version) {
		t.Errorf("release version %q must be valid semver", version)
	}
}

func TestVersionCommitFallback(t *testing.T) {
	oldVersion, oldCommit := version, commit
	defer func() { version, commit = oldVersion, oldCommit }()

	version = "dev"
	commit = "0123456789abcdef"

	got := Version()
	if got == "dev" {
		t.Fatal("expected a revision, got dev")
	}
	if len(got) != 7 {
		t.Errorf("expected a short hash, got %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "tariffsentinel/") {
		t.Errorf("UserAgent() = %s, should start with 'tariffsentinel/'", ua)
	}
}
