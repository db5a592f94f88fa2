package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newSourceTree lays out a minimal valid asset source tree.
func newSourceTree(t *testing.T) string {
	t.Helper()
	src := t.TempDir()

	files := map[string]string{
		"agents/reviewer.md":       "# Reviewer",
		"commands/ship.md":         "# Ship",
		"skills/refactor/SKILL.md": "# Refactor",
		"rules/style.md":           "# Style",
		"hooks/pre-commit.sh":      "#!/bin/sh\n",
		"codex/AGENTS.md":          "# Codex agents",
		"opencode/opencode.json":   "{}",
		"cursor/rules.md":          "# Cursor",
		"root/CLAUDE.md":           "# Project instructions",
	}
	for rel, content := range files {
		path := filepath.Join(src, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return src
}

func TestBuild(t *testing.T) {
	src := newSourceTree(t)
	out := filepath.Join(t.TempDir(), "bundle")

	res, err := Build(Options{SourceRoot: src, BundleRoot: out, Version: "1.2.3"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Composed subtrees.
	for _, rel := range []string{
		"claude/agents/reviewer.md",
		"claude/commands/ship.md",
		"claude/skills/refactor/SKILL.md",
		"claude/rules/style.md",
		"claude/hooks/pre-commit.sh",
		"claude/settings.json",
		"codex/AGENTS.md",
		"root/CLAUDE.md",
		"README.md",
		MetaFileName,
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s in bundle: %v", rel, err)
		}
	}

	if res.SubtreeCounts["claude"] == 0 {
		t.Error("expected claude subtree count > 0")
	}

	// Staging directory must not linger.
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Error("staging directory left behind after successful build")
	}

	meta, err := ReadMeta(out)
	if err != nil {
		t.Fatalf("ReadMeta failed: %v", err)
	}
	if meta.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3 in metadata, got %s", meta.Version)
	}
}

func TestBuildEmptyRequiredSubtreeAborts(t *testing.T) {
	src := newSourceTree(t)
	if err := os.RemoveAll(filepath.Join(src, "agents")); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(src, "agents"), 0755); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "bundle")

	_, err := Build(Options{SourceRoot: src, BundleRoot: out, Version: "1.0.0"})
	if err == nil {
		t.Fatal("expected build to abort on empty agents/ subtree")
	}
	if !strings.Contains(err.Error(), "agents") {
		t.Errorf("error should name the offending subtree: %v", err)
	}

	// Nothing may be written to the output path.
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("aborted build left files at the bundle output path")
	}
}

func TestBuildIsFullyRegenerated(t *testing.T) {
	src := newSourceTree(t)
	out := filepath.Join(t.TempDir(), "bundle")

	if _, err := Build(Options{SourceRoot: src, BundleRoot: out, Version: "1.0.0"}); err != nil {
		t.Fatalf("first build failed: %v", err)
	}

	// Plant a stale file in the bundle; a rebuild must not carry it over.
	stale := filepath.Join(out, "claude", "agents", "stale.md")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Build(Options{SourceRoot: src, BundleRoot: out, Version: "1.0.0"}); err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file survived a rebuild")
	}
}

func TestSettingsMergeOverrides(t *testing.T) {
	src := newSourceTree(t)
	override := `{"includeCoAuthoredBy": true, "model": "opus"}`
	if err := os.MkdirAll(filepath.Join(src, "config"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "config", "settings.json"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "bundle")

	if _, err := Build(Options{SourceRoot: src, BundleRoot: out, Version: "1.0.0"}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "claude", "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("generated settings is not valid JSON: %v", err)
	}

	if settings["includeCoAuthoredBy"] != true {
		t.Error("override key not applied")
	}
	if settings["model"] != "opus" {
		t.Error("new override key missing")
	}
	if _, ok := settings["permissions"]; !ok {
		t.Error("default key dropped by merge")
	}
}

func TestReadMetaMissing(t *testing.T) {
	if _, err := ReadMeta(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing bundle metadata")
	}
}

func TestCheckCompat(t *testing.T) {
	tests := []struct {
		bundleVer string
		cliVer    string
		wantErr   bool
	}{
		{"1.2.3", "1.5.0", false},
		{"1.9.0", "1.2.0", false},
		{"2.0.0", "1.9.9", true},
		{"dev", "1.0.0", false},
		{"1.0.0", "dev", false},
	}

	for _, tt := range tests {
		meta := &Meta{Version: tt.bundleVer}
		err := CheckCompat(meta, tt.cliVer)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckCompat(%s, %s) err = %v, wantErr %v", tt.bundleVer, tt.cliVer, err, tt.wantErr)
		}
	}
}
