package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the projtool application
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projtool",
		Short: "Project archive tools - inspect and update project files",
		Long: `projtool works with the zip archives written by compressed project documents.
It lists and extracts members, fingerprints archives, replaces single members
and generates sample configuration files.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewExtractCommand())
	cmd.AddCommand(NewFingerprintCommand())
	cmd.AddCommand(NewReplaceCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), PrintVersion())
		},
	})

	return cmd
}

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// PrintVersion prints version information
func PrintVersion() string {
	return fmt.Sprintf("projtool v%s (commit: %s, built on: %s)", Version, Commit, Date)
}
