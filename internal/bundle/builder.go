package bundle

import (
	"fmt"
	"os"
	"path/filepath"
)

// composeEntry maps one source subdirectory to its location in the bundle.
type composeEntry struct {
	src      string
	dst      string
	required bool
}

// composeTable defines how the bundle is assembled from the source tree.
// The claude subtree is composed from the asset-category directories; the
// other runtime subtrees and the root subtree are copied verbatim.
var composeTable = []composeEntry{
	{src: "agents", dst: "claude/agents", required: true},
	{src: "commands", dst: "claude/commands", required: true},
	{src: "skills", dst: "claude/skills", required: true},
	{src: "rules", dst: "claude/rules"},
	{src: "codex", dst: "codex"},
	{src: "opencode", dst: "opencode"},
	{src: "cursor", dst: "cursor"},
	{src: "root", dst: "root"},
}

// hooksDir is the source directory for hook scripts; they land in the
// bundle's scripts subtree under claude.
const (
	hooksDir    = "hooks"
	hooksDstDir = "claude/hooks"
	configDir   = "config"
	readmeName  = "README.md"
)

// Options configures a build.
type Options struct {
	SourceRoot string
	BundleRoot string
	Version    string // CLI version stamped into bundle.json
}

// Result summarizes a successful build.
type Result struct {
	BundleRoot    string
	SubtreeCounts map[string]int
	Warnings      []string
}

// Build regenerates the bundle from scratch. It composes into a temporary
// sibling directory and renames it into place only after every step has
// succeeded, so an aborted build never leaves a plausible-looking bundle
// behind. bundle.json is written last and is the completeness marker push
// checks for.
func Build(opts Options) (*Result, error) {
	res := &Result{
		BundleRoot:    opts.BundleRoot,
		SubtreeCounts: make(map[string]int),
	}

	// Validate required source subtrees before anything is written.
	for _, entry := range composeTable {
		if !entry.required {
			continue
		}
		src := filepath.Join(opts.SourceRoot, entry.src)
		n := countFiles(src)
		if n == 0 {
			return nil, fmt.Errorf("required source subtree %s is missing or empty", src)
		}
	}

	stage := opts.BundleRoot + ".tmp"
	if err := os.RemoveAll(stage); err != nil {
		return nil, fmt.Errorf("clearing staging directory %s: %w", stage, err)
	}
	if err := os.MkdirAll(stage, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory %s: %w", stage, err)
	}
	// Staging is removed on any failure below.
	defer os.RemoveAll(stage)

	// Copy the configured subtrees.
	for _, entry := range composeTable {
		src := filepath.Join(opts.SourceRoot, entry.src)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("source subtree %s not present, skipped", entry.src))
			continue
		}
		dst := filepath.Join(stage, filepath.FromSlash(entry.dst))
		if err := copyDir(src, dst); err != nil {
			return nil, fmt.Errorf("copying %s: %w", src, err)
		}
	}

	// Generate the settings file from the fixed defaults, overlaid with
	// any project-provided overrides.
	if err := writeSettings(opts.SourceRoot, stage); err != nil {
		return nil, err
	}

	// Copy hook scripts into the scripts subtree.
	hooksSrc := filepath.Join(opts.SourceRoot, hooksDir)
	if _, err := os.Stat(hooksSrc); err == nil {
		if err := copyDir(hooksSrc, filepath.Join(stage, filepath.FromSlash(hooksDstDir))); err != nil {
			return nil, fmt.Errorf("copying hooks: %w", err)
		}
	} else {
		res.Warnings = append(res.Warnings, "no hooks directory, skipped")
	}

	// Count files per top-level subtree for the README and metadata.
	entries, err := os.ReadDir(stage)
	if err != nil {
		return nil, fmt.Errorf("reading staged bundle: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			res.SubtreeCounts[entry.Name()] = countFiles(filepath.Join(stage, entry.Name()))
		}
	}

	// Generate the README. Informational only, never parsed downstream.
	if err := writeReadme(stage, res.SubtreeCounts); err != nil {
		return nil, err
	}

	// Metadata goes in last: its presence marks the bundle complete.
	if err := writeMeta(stage, opts.Version, res.SubtreeCounts); err != nil {
		return nil, err
	}

	// Swap the staged tree into place.
	if err := os.RemoveAll(opts.BundleRoot); err != nil {
		return nil, fmt.Errorf("removing previous bundle %s: %w", opts.BundleRoot, err)
	}
	if err := os.Rename(stage, opts.BundleRoot); err != nil {
		return nil, fmt.Errorf("moving bundle into place: %w", err)
	}

	return res, nil
}
