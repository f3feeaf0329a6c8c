package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeOutput(cmd, "htmlutils version "+version+"\n")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
