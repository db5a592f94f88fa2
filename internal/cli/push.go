package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/compass-labs/compass-engine/internal/branding"
	"github.com/compass-labs/compass-engine/internal/bundle"
	"github.com/compass-labs/compass-engine/internal/config"
	"github.com/compass-labs/compass-engine/internal/discovery"
	"github.com/compass-labs/compass-engine/internal/syncer"
	"github.com/compass-labs/compass-engine/internal/targets"
	"github.com/spf13/cobra"
)

var (
	pushAll            bool
	pushProject        string
	pushTargets        string
	pushDryRun         bool
	pushProjectsConfig string
	pushBundleRoot     string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Sync the built bundle into destination projects",
	Long: `Replicate the built bundle into each destination project. Replace
targets converge their directory to exactly the bundle's content; the root
target merges and removes previously-managed files that disappeared
upstream. Files matching a target's preserve patterns survive untouched.`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

func init() {
	pushCmd.Flags().BoolVar(&pushAll, "all", false, "Discover and sync every known project")
	pushCmd.Flags().StringVar(&pushProject, "project", "", "Sync exactly one project at the given path")
	pushCmd.Flags().StringVar(&pushTargets, "targets", "", "Comma-separated target names (default: all targets)")
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Print the sync plan without touching the filesystem")
	pushCmd.Flags().StringVar(&pushProjectsConfig, "projects-config", "", "YAML file listing project roots")
	pushCmd.Flags().StringVar(&pushBundleRoot, "bundle", "", "Bundle directory (default: bundle_root config key, else ~/.compass-engine/bundle)")
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if pushProject == "" && !pushAll {
		return fmt.Errorf("nothing to push: pass --project <path> or --all")
	}

	bundleRoot := pushBundleRoot
	if bundleRoot == "" {
		bundleRoot = config.Get(config.KeyBundleRoot)
	}
	if bundleRoot == "" {
		bundleRoot = defaultBundleRoot()
	}

	// A bundle without metadata is absent or half-built; never push it.
	meta, err := bundle.ReadMeta(bundleRoot)
	if err != nil {
		return err
	}
	if err := bundle.CheckCompat(meta, buildVersion); err != nil {
		return err
	}

	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	targetNames := registry.Names()
	if pushTargets != "" {
		targetNames = parseTargetList(pushTargets)
	}

	projects, warnings, err := discovery.Discover(discoveryOptions())
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(out, "⚠️  %s\n", w)
	}
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects to sync.")
		return nil
	}

	engine := &syncer.Engine{
		BundleRoot: bundleRoot,
		Registry:   registry,
		DryRun:     pushDryRun,
	}

	summary, err := engine.Run(projects, targetNames)
	if err != nil {
		return err
	}

	printSummary(out, summary, pushDryRun)

	if summary.Failed() {
		failed := 0
		for i := range summary.Pairs {
			if summary.Pairs[i].Failed() {
				failed++
			}
		}
		return fmt.Errorf("%d of %d target syncs failed", failed, len(summary.Pairs))
	}
	return nil
}

// parseTargetList splits a comma-separated --targets value, trimming
// whitespace and dropping duplicates so a repeated name cannot sync the same
// (project, target) pair twice.
func parseTargetList(list string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// discoveryOptions assembles the discovery inputs from flags, config, and
// environment in one place, so precedence is explicit and testable rather
// than scattered through the call chain.
func discoveryOptions() discovery.Options {
	opts := discovery.Options{
		ExplicitProject: pushProject,
		ProjectsFile:    pushProjectsConfig,
		EnvList:         os.Getenv(branding.EnvVar("PROJECTS")),
		WorkspaceRoots:  config.GetStrings(config.KeyWorkspaceRoots),
	}
	if opts.ProjectsFile == "" {
		opts.ProjectsFile = config.Get(config.KeyProjectsFile)
	}
	if opts.ProjectsFile == "" {
		opts.ProjectsFile = os.Getenv(branding.EnvVar("PROJECTS_FILE"))
	}
	if len(opts.WorkspaceRoots) == 0 {
		opts.WorkspaceRoots = defaultWorkspaceRoots()
	}
	return opts
}

// defaultWorkspaceRoots are the directories scanned by heuristic discovery
// when no workspace_roots are configured.
func defaultWorkspaceRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	var roots []string
	for _, name := range []string{"workspace", "projects", "src"} {
		roots = append(roots, filepath.Join(home, name))
	}
	return roots
}

// loadRegistry compiles the target table, honoring a configured override
// file.
func loadRegistry() (*targets.Registry, error) {
	if path := config.Get(config.KeyTargetsFile); path != "" {
		return targets.LoadFile(path)
	}
	return targets.Load()
}

// printSummary renders the per-pair result table and, in dry-run, each
// pair's planned actions.
func printSummary(out io.Writer, summary *syncer.Summary, dryRun bool) {
	if dryRun {
		fmt.Fprintln(out, "Dry run: no files were changed. Plan:")
	}

	for i := range summary.Pairs {
		pair := &summary.Pairs[i]
		switch {
		case pair.Critical:
			fmt.Fprintf(out, "  ✗ %s [%s] CRITICAL: %v\n", pair.Project, pair.Target, pair.Err)
		case pair.Failed():
			fmt.Fprintf(out, "  ✗ %s [%s] %v\n", pair.Project, pair.Target, pair.Err)
		default:
			fmt.Fprintf(out, "  ✓ %s [%s] %d actions, %d preserved\n", pair.Project, pair.Target, len(pair.Actions), pair.Preserved)
		}
		for _, w := range pair.Warnings {
			fmt.Fprintf(out, "      ⚠️  %s\n", w)
		}
		if dryRun {
			for _, a := range pair.Actions {
				fmt.Fprintf(out, "      would %s\n", a)
			}
		}
	}
}
