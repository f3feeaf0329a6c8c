// Package cli implements the htmlutils command line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jscodecleaner/htmlutils/internal/config"
	"github.com/jscodecleaner/htmlutils/internal/logger"
)

var (
	version = "dev"

	configPath string
	verbose    bool

	// Set by the root command before any subcommand runs.
	cfg = config.Default()
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "htmlutils",
	Short: "Sanitize and rewrite note HTML",
	Long: `htmlutils removes active content from HTML notes, extracts their text
and resolves links to attached resources.

Commands read HTML from the given file, or from stdin when no file (or "-")
is given, and write the result to stdout.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default ~/.htmlutils/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug messages to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

func setup(cmd *cobra.Command, _ []string) error {
	log = logger.New(logger.Options{
		Verbose: verbose,
		Output:  cmd.ErrOrStderr(),
	})

	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = c

	log.Debug().
		Str("path", configPath).
		Int("resources", len(cfg.Resources.Items)).
		Msg("Configuration loaded")
	return nil
}

// readInput returns the content of the file named in args, or stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func writeOutput(cmd *cobra.Command, s string) error {
	_, err := io.WriteString(cmd.OutOrStdout(), s)
	return err
}
