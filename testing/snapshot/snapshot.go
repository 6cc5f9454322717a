// Package snapshot provides golden file testing for projected screens.
// It captures a session's text projection and compares it against
// known-good files.
package snapshot

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// GoldenDir is the default directory for golden files.
const GoldenDir = "testdata/golden"

// Snap provides snapshot testing functionality.
type Snap struct {
	t         *testing.T
	goldenDir string
	update    bool
}

// New creates a new Snap instance for the given test.
func New(t *testing.T) *Snap {
	return &Snap{
		t:         t,
		goldenDir: GoldenDir,
		update:    os.Getenv("UPDATE_GOLDEN") == "1",
	}
}

// WithDir sets a custom golden file directory.
func (s *Snap) WithDir(dir string) *Snap {
	s.goldenDir = dir
	return s
}

// Assert compares a projected screen against a golden file.
// If UPDATE_GOLDEN=1, updates the golden file instead.
func (s *Snap) Assert(name, actual string) {
	s.t.Helper()

	goldenPath := filepath.Join(s.goldenDir, name+".golden")
	normalized := Normalize(actual)

	if s.update {
		if err := os.MkdirAll(s.goldenDir, 0o755); err != nil {
			s.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(normalized), 0o644); err != nil {
			s.t.Fatalf("failed to write golden file: %v", err)
		}
		s.t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.t.Fatalf("Golden file not found: %s\nRun with UPDATE_GOLDEN=1 to create it.\nActual output:\n%s", goldenPath, normalized)
		}
		s.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != normalized {
		s.t.Errorf("Snapshot mismatch for %s\n\nExpected:\n%s\n\nActual:\n%s\n\nRun with UPDATE_GOLDEN=1 to update.",
			name, string(expected), normalized)
	}
}

// Normalize prepares a projection for stable golden diffs: trailing spaces
// go, trailing blank lines go, and the content ends with a single newline.
// The projector's leading newline is dropped so golden files read naturally.
func Normalize(s string) string {
	s = strings.TrimPrefix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n") + "\n"
}

var (
	ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	oscRegex  = regexp.MustCompile(`\x1b\]8;[^;]*;[^\x1b\x07]*(?:\x1b\\|\x07)`)
)

// StripANSI removes ANSI escape codes and OSC 8 hyperlink sequences from a
// raw PTY capture.
func StripANSI(s string) string {
	s = ansiRegex.ReplaceAllString(s, "")
	return oscRegex.ReplaceAllString(s, "")
}
