// Command projtool inspects and updates project archives from the shell: it
// lists, extracts, fingerprints and patches archive members, and generates or
// checks document configuration files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/GoCodeAlone/projects/cmd/projtool/cmd"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes projtool with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}
