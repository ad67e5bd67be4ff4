package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/projects"
	"github.com/GoCodeAlone/projects/feeders"
)

// NewConfigCommand creates the 'config' command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with document configuration files",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(NewConfigSampleCommand())
	cmd.AddCommand(NewConfigCheckCommand())
	return cmd
}

// NewConfigSampleCommand creates the 'config sample' command
func NewConfigSampleCommand() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a sample configuration with every default filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if err := projects.SaveSampleConfig(&projects.Config{}, format, output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample %s config to %s\n", format, output)
				return nil
			}
			data, err := projects.GenerateSampleConfig(&projects.Config{}, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, toml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// NewConfigCheckCommand creates the 'config check' command
func NewConfigCheckCommand() *cobra.Command {
	var useEnv bool
	var section string
	var envPrefix string

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Load and validate a configuration file",
		Long: `Check loads FILE (yaml, yml, toml or json, chosen by extension), optionally
overlays PROJECTS_* environment variables, validates the result and prints the
effective configuration as YAML. With --section the settings are read from one
top level key of FILE; with --env-prefix variables are read as
<PREFIX>_PROJECTS_*.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := fileFeeder(args[0])
			if err != nil {
				return err
			}
			var file projects.Feeder = source
			if section != "" {
				file = feeders.Section{Source: source, Key: section}
			}
			feederList := []projects.Feeder{file}
			if useEnv {
				if envPrefix != "" {
					feederList = append(feederList, feeders.NewAffixedEnvFeeder(envPrefix, ""))
				} else {
					feederList = append(feederList, feeders.NewEnvFeeder())
				}
			}

			cfg, err := projects.LoadConfig(feederList...)
			if err != nil {
				return err
			}
			data, err := projects.GenerateSampleConfig(cfg, "yaml")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&useEnv, "env", true, "Overlay environment variables")
	cmd.Flags().StringVar(&section, "section", "", "Read settings from this top level key")
	cmd.Flags().StringVar(&envPrefix, "env-prefix", "", "Prefix added to environment variable names")
	return cmd
}

func fileFeeder(path string) (feeders.KeyFeeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return feeders.NewYamlFeeder(path), nil
	case ".toml":
		return feeders.NewTomlFeeder(path), nil
	case ".json":
		return feeders.NewJSONFeeder(path), nil
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}
