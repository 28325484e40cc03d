// Package cmd implements the command-line interface of the sitemap extractor.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masoudtahsiri/sitemap-extractor/cmd/extract"
	"github.com/masoudtahsiri/sitemap-extractor/cmd/serve"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sitemap-extractor",
		Short:         "Extract page URLs from a website's sitemap",
		Long:          `Resolve a sitemap or sitemap index into the sorted, deduplicated list of page URLs it references.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("config", "", "config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(
		serve.Command(),
		extract.Command(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "sitemap-extractor version %s\n", Version)
			},
		},
	)

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}
