package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/compass-labs/compass-engine/internal/branding"
)

const (
	gitFileName      = "compass-engine-root-sync.json"
	fallbackFileName = "root-sync-manifest.json"
)

// manifestFile is the on-disk shape: { "paths": [ ... ] }.
type manifestFile struct {
	Paths []string `json:"paths"`
}

// Path returns the manifest location for a project: inside .git/ when the
// project is a git repository (kept out of the user's worktree), otherwise
// under the tool's dot-directory.
func Path(projectRoot string) string {
	if isGitRepo(projectRoot) {
		return filepath.Join(projectRoot, ".git", gitFileName)
	}
	return filepath.Join(projectRoot, branding.HomeDir(), fallbackFileName)
}

// Load reads the set of paths the tool wrote during the last successful
// merge sync of the project. A missing or unparsable manifest is an empty
// set: corruption here must never block a sync, it only forfeits stale-file
// cleanup for one run.
func Load(projectRoot string) map[string]bool {
	paths := make(map[string]bool)

	data, err := os.ReadFile(Path(projectRoot))
	if err != nil {
		return paths
	}

	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return paths
	}

	for _, p := range file.Paths {
		paths[p] = true
	}
	return paths
}

// Save records the set of paths written by the merge sync that just
// completed, creating parent directories as needed.
func Save(projectRoot string, paths map[string]bool) error {
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	data, err := json.MarshalIndent(manifestFile{Paths: sorted}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	dst := Path(projectRoot)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(dst, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", dst, err)
	}
	return nil
}

// isGitRepo reports whether projectRoot has a .git directory. Linked
// worktrees and submodules mark themselves with a .git file instead; they
// get the fallback manifest location, since there is no .git directory to
// write into.
func isGitRepo(projectRoot string) bool {
	info, err := os.Stat(filepath.Join(projectRoot, ".git"))
	return err == nil && info.IsDir()
}
