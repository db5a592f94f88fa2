package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Show the compiled target table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		for _, def := range registry.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-8s %s -> %s\n",
				def.Name, def.Strategy, def.SourceSubtree, def.DestinationDir)
			if len(def.PreservePatterns) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "           preserves: %s\n",
					strings.Join(def.PreservePatterns, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
