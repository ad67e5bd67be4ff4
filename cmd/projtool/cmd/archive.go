package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/projects/archive"
)

// NewListCommand creates the 'list' command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list ARCHIVE",
		Short: "List the members of a project archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := archive.ListMembers(args[0])
			if err != nil {
				return err
			}
			for _, member := range members {
				fmt.Fprintln(cmd.OutOrStdout(), member)
			}
			return nil
		},
	}
}

// NewExtractCommand creates the 'extract' command
func NewExtractCommand() *cobra.Command {
	var tempRoot string

	cmd := &cobra.Command{
		Use:   "extract ARCHIVE",
		Short: "Extract a project archive into a directory beside it",
		Long: `Extract unpacks every member of the archive into a directory named after the
archive without its extension, e.g. plan.proj extracts into plan/.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := archive.ExtractBeside(args[0], archive.WithTempRoot(tempRoot))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s into %s\n", args[0], dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&tempRoot, "temp-root", "", "Root for temporary staging directories")
	return cmd
}

// NewFingerprintCommand creates the 'fingerprint' command
func NewFingerprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint ARCHIVE...",
		Short: "Print a content fingerprint of each archive",
		Long: `Fingerprint hashes the member names and contents of an archive. Two archives
with the same fingerprint hold the same members with the same content,
regardless of compression settings or timestamps.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				sum, err := archive.Fingerprint(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
			}
			return nil
		},
	}
}

// NewReplaceCommand creates the 'replace' command
func NewReplaceCommand() *cobra.Command {
	var from string
	var inPlace bool
	var level int

	cmd := &cobra.Command{
		Use:   "replace ARCHIVE MEMBER",
		Short: "Replace one archive member with the content of a file",
		Long: `Replace swaps the content of one member for the content of --from. The result
is written to "<name> - Updated<ext>" unless --in-place is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				return fmt.Errorf("--from is required")
			}
			copyFrom := func(_ io.Reader, out io.Writer) error {
				f, err := os.Open(from)
				if err != nil {
					return err
				}
				defer f.Close()
				_, err = io.Copy(out, f)
				return err
			}
			written, err := archive.ReplaceMember(args[0], args[1], copyFrom, inPlace, archive.WithCompressionLevel(level))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", written)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "File holding the new member content")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Replace the archive instead of writing a copy")
	cmd.Flags().IntVar(&level, "level", 0, "Deflate level, 1-9 (0 keeps the default)")
	return cmd
}
