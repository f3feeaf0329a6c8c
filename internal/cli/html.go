package cli

import (
	"github.com/spf13/cobra"

	"github.com/jscodecleaner/htmlutils"
	"github.com/jscodecleaner/htmlutils/internal/resource"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [file]",
	Short: "Remove scripts and other active content from HTML",
	Long: `Removes scripts, embedded objects, form controls, event handlers and
unsafe links. All other markup is kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSanitize,
}

var stripCmd = &cobra.Command{
	Use:   "strip [file]",
	Short: "Print the text content of HTML on a single line",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStrip,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Resolve resource images and links",
	Long: `Rewrites <img> and <a> tags that point to resources (":/<id>") using
the resources listed in the configuration file. Links to unknown IDs are
turned into note callback URLs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

// Flags. They can only enable options; the configuration file provides
// the defaults.
var (
	noMdConvClass   bool
	linkify         bool
	resolveBaseURL  string
	resolveSanitize bool
)

func init() {
	sanitizeCmd.Flags().BoolVar(&noMdConvClass, "no-md-conv-class", false, "Add the jop-noMdConv class to every tag")
	sanitizeCmd.Flags().BoolVar(&linkify, "linkify", false, "Turn plain-text URLs into links")

	resolveCmd.Flags().StringVar(&resolveBaseURL, "base-url", "", "URL of the resource directory (overrides the config)")
	resolveCmd.Flags().BoolVar(&resolveSanitize, "sanitize", false, "Sanitize the HTML before resolving")

	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(stripCmd)
	rootCmd.AddCommand(resolveCmd)
}

func runSanitize(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	opts := cfg.SanitizeOptions()
	opts.AddNoMdConvClass = opts.AddNoMdConvClass || noMdConvClass
	opts.Linkify = opts.Linkify || linkify

	log.Debug().
		Int("bytes", len(input)).
		Bool("no_md_conv_class", opts.AddNoMdConvClass).
		Bool("linkify", opts.Linkify).
		Msg("Sanitizing HTML")

	return writeOutput(cmd, htmlutils.SanitizeHTML(input, opts))
}

func runStrip(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	log.Debug().Int("bytes", len(input)).Msg("Stripping HTML")
	return writeOutput(cmd, htmlutils.StripHTML(input))
}

func runResolve(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	if resolveSanitize {
		input = htmlutils.SanitizeHTML(input, cfg.SanitizeOptions())
	}

	baseURL := cfg.Resources.BaseURL
	if resolveBaseURL != "" {
		baseURL = resolveBaseURL
	}

	resolver := resource.NewResolver(cfg.ResourceList(), baseURL, log)
	out, err := resolver.Rewrite(input)
	if err != nil {
		return err
	}
	return writeOutput(cmd, out)
}
