package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jscodecleaner/htmlutils/internal/protocol"
)

var callbackCmd = &cobra.Command{
	Use:   "callback-url",
	Short: "Build or parse x-callback-url links",
}

var callbackParseCmd = &cobra.Command{
	Use:   "parse [url]",
	Short: "Print the command and parameters of a callback URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runCallbackParse,
}

func init() {
	builders := []struct {
		name  string
		short string
		build func(string) string
	}{
		{"note", "Print the callback URL of a note", protocol.NoteURL},
		{"folder", "Print the callback URL of a notebook", protocol.FolderURL},
		{"tag", "Print the callback URL of a tag", protocol.TagURL},
	}

	for _, b := range builders {
		build := b.build
		callbackCmd.AddCommand(&cobra.Command{
			Use:   b.name + " [id]",
			Short: b.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeOutput(cmd, build(args[0])+"\n")
			},
		})
	}

	callbackCmd.AddCommand(callbackParseCmd)
	rootCmd.AddCommand(callbackCmd)
}

func runCallbackParse(cmd *cobra.Command, args []string) error {
	info, err := protocol.ParseCallbackURL(args[0])
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "command: %s\n", info.Command)

	keys := make([]string, 0, len(info.Params))
	for k := range info.Params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, info.Params[k])
	}

	return writeOutput(cmd, sb.String())
}
