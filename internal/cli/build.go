package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/compass-labs/compass-engine/internal/bundle"
	"github.com/compass-labs/compass-engine/internal/config"
	"github.com/spf13/cobra"
)

var (
	buildSource string
	buildOutput string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble the distributable bundle from the asset source tree",
	Long: `Compose the canonical bundle from the asset source directories.
The bundle is fully regenerated on every build: stale files in an
incrementally-patched bundle would silently propagate to every project.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildSource, "source", "", "Asset source tree (default: source_root config key, else current directory)")
	buildCmd.Flags().StringVar(&buildOutput, "output", "", "Bundle output directory (default: bundle_root config key, else ~/.compass-engine/bundle)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts := bundle.Options{
		SourceRoot: buildSource,
		BundleRoot: buildOutput,
		Version:    buildVersion,
	}
	if opts.SourceRoot == "" {
		opts.SourceRoot = config.Get(config.KeySourceRoot)
	}
	if opts.SourceRoot == "" {
		opts.SourceRoot = "."
	}
	if opts.BundleRoot == "" {
		opts.BundleRoot = config.Get(config.KeyBundleRoot)
	}
	if opts.BundleRoot == "" {
		opts.BundleRoot = defaultBundleRoot()
	}

	res, err := bundle.Build(opts)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Bundle built at %s\n", res.BundleRoot)

	names := make([]string, 0, len(res.SubtreeCounts))
	for name := range res.SubtreeCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d files\n", name, res.SubtreeCounts[name])
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "  ⚠️  %s\n", w)
	}

	return nil
}

// defaultBundleRoot places the bundle under the tool's home directory.
func defaultBundleRoot() string {
	return filepath.Join(config.Dir(), "bundle")
}
