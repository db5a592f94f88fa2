package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Source records how a project reference was resolved.
type Source string

const (
	SourceExplicit  Source = "explicit"
	SourceConfig    Source = "config"
	SourceEnv       Source = "env"
	SourceHeuristic Source = "heuristic"
)

// ProjectRef is one destination project root and how it was found.
type ProjectRef struct {
	Path   string
	Source Source
}

// Options carries every input the resolver consults, populated by the
// caller. Discovery itself reads no ambient state beyond the filesystem:
// precedence lives here, in one place, and tests can exercise it directly.
type Options struct {
	// ExplicitProject short-circuits discovery to exactly one project.
	ExplicitProject string
	// ProjectsFile is a YAML file listing project roots.
	ProjectsFile string
	// EnvList is a PathListSeparator-delimited list of project roots
	// (the value of COMPASS_PROJECTS).
	EnvList string
	// WorkspaceRoots are directories whose immediate subdirectories are
	// candidate projects for heuristic discovery.
	WorkspaceRoots []string
}

// projectsFile is the on-disk shape of a projects list.
type projectsFile struct {
	Projects []string `yaml:"projects"`
}

// Discover resolves the ordered, deduplicated set of project roots. The
// first non-empty source wins: explicit project, projects file, environment
// list, then workspace heuristics. Resolving zero projects is not an error;
// callers report the returned warnings and proceed.
func Discover(opts Options) ([]ProjectRef, []string, error) {
	var warnings []string

	if opts.ExplicitProject != "" {
		// An explicit project is taken as-is, existing or not; the sync
		// engine reports per-target failures for unusable destinations.
		return dedupe([]ProjectRef{{Path: opts.ExplicitProject, Source: SourceExplicit}}), warnings, nil
	}

	if opts.ProjectsFile != "" {
		refs, w, err := fromProjectsFile(opts.ProjectsFile)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		if len(refs) > 0 {
			return dedupe(refs), warnings, nil
		}
	}

	if opts.EnvList != "" {
		refs, w := filterGit(splitEnvList(opts.EnvList), SourceEnv)
		warnings = append(warnings, w...)
		if len(refs) > 0 {
			return dedupe(refs), warnings, nil
		}
	}

	var candidates []string
	for _, root := range opts.WorkspaceRoots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				candidates = append(candidates, filepath.Join(root, entry.Name()))
			}
		}
	}
	refs, _ := filterGit(candidates, SourceHeuristic)
	if len(refs) == 0 {
		warnings = append(warnings, "no git repositories found in any discovery source")
	}
	return dedupe(refs), warnings, nil
}

// fromProjectsFile reads a YAML projects list and keeps the entries that
// are git repositories, warning about the rest: a listed project is
// deliberate, so skipping one deserves a mention.
func fromProjectsFile(path string) ([]ProjectRef, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading projects file: %w", err)
	}

	var file projectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parsing projects file %s: %w", path, err)
	}

	var refs []ProjectRef
	var warnings []string
	for _, p := range file.Projects {
		if !isGitRepo(p) {
			warnings = append(warnings, fmt.Sprintf("projects file entry %s is not a git repository, skipped", p))
			continue
		}
		refs = append(refs, ProjectRef{Path: p, Source: SourceConfig})
	}
	return refs, warnings, nil
}

// splitEnvList splits a PathListSeparator-delimited list of paths.
func splitEnvList(list string) []string {
	var paths []string
	for _, p := range strings.Split(list, string(os.PathListSeparator)) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// filterGit keeps the candidates that contain a .git marker. Non-git
// directories are silently skipped for heuristic candidates and warned
// about otherwise.
func filterGit(candidates []string, source Source) ([]ProjectRef, []string) {
	var refs []ProjectRef
	var warnings []string
	for _, c := range candidates {
		if !isGitRepo(c) {
			if source != SourceHeuristic {
				warnings = append(warnings, fmt.Sprintf("%s is not a git repository, skipped", c))
			}
			continue
		}
		refs = append(refs, ProjectRef{Path: c, Source: source})
	}
	return refs, warnings
}

// isGitRepo reports whether dir contains a .git marker (directory, or file
// for linked worktrees).
func isGitRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// dedupe removes duplicate projects by canonicalized absolute path, keeping
// first-seen order so the same repository reached via two names or symlinks
// is only synced once.
func dedupe(refs []ProjectRef) []ProjectRef {
	seen := make(map[string]bool, len(refs))
	var out []ProjectRef
	for _, ref := range refs {
		key := canonical(ref.Path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ref)
	}
	return out
}

// canonical resolves symlinks and relative segments where possible, falling
// back to the absolute path for targets that do not exist yet.
func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
