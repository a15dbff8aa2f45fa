package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/teller/internal/buildinfo"
)

type rootOptions struct {
	repoDir  string
	logLevel string
	pretty   bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "teller",
		Short:   "Client registration and account opening",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.repoDir, "repo", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled); overrides teller.yaml")
	rootCmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "human readable logs")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newClientCommand(opts))
	rootCmd.AddCommand(newAccountCommand(opts))
	rootCmd.AddCommand(newProductsCommand(opts))

	return rootCmd
}
