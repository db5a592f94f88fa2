package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/compass-labs/compass-engine/internal/branding"
)

func TestLoadMissing(t *testing.T) {
	paths := Load(t.TempDir())
	if len(paths) != 0 {
		t.Errorf("expected empty set for missing manifest, got %v", paths)
	}
}

func TestLoadCorrupt(t *testing.T) {
	project := t.TempDir()
	if err := os.MkdirAll(filepath.Join(project, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(project), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	// Corruption is an empty set, never an error.
	paths := Load(project)
	if len(paths) != 0 {
		t.Errorf("expected empty set for corrupt manifest, got %v", paths)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	project := t.TempDir()
	if err := os.MkdirAll(filepath.Join(project, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{"AGENTS.md": true, "CLAUDE.md": true}
	if err := Save(project, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := Load(project)
	if len(got) != len(want) {
		t.Fatalf("expected %d paths, got %d", len(want), len(got))
	}
	for p := range want {
		if !got[p] {
			t.Errorf("expected %s in loaded manifest", p)
		}
	}
}

func TestPathSelection(t *testing.T) {
	gitProject := t.TempDir()
	if err := os.MkdirAll(filepath.Join(gitProject, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	if got, want := Path(gitProject), filepath.Join(gitProject, ".git", gitFileName); got != want {
		t.Errorf("git project manifest path = %s, want %s", got, want)
	}

	plainProject := t.TempDir()
	if got, want := Path(plainProject), filepath.Join(plainProject, branding.HomeDir(), fallbackFileName); got != want {
		t.Errorf("non-git project manifest path = %s, want %s", got, want)
	}
}

func TestSaveNonGitCreatesParents(t *testing.T) {
	project := t.TempDir()
	if err := Save(project, map[string]bool{"AGENTS.md": true}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(Path(project)); err != nil {
		t.Fatalf("manifest not written to fallback path: %v", err)
	}
}
