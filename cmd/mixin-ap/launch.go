package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mixin-ap/internal/launch"
)

func (a *app) launchCmd() *cobra.Command {
	var agents []string

	cmd := &cobra.Command{
		Use:   "launch <manifest>...",
		Short: "Run the launch agents over container manifests",
		Long: `Reads each MANIFEST.MF, runs the named launch agents over it and prints
the mixin configurations, token providers and launch target they found.
Agent failures are reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLaunch(cmd.OutOrStdout(), args, agents)
		},
	}

	cmd.Flags().StringSliceVar(&agents, "agent", []string{launch.DefaultAgentName}, "launch agents to run, in order")

	return cmd
}

func (a *app) runLaunch(out io.Writer, paths, agents []string) error {
	reg := launch.NewRegistry()
	factories := launch.DefaultFactories()
	logger := a.logger.Slog()

	var target string

	for _, path := range paths {
		attrs, err := readManifest(path)
		if err != nil {
			return err
		}

		c := launch.NewContainer(launch.Source{URI: path, Attributes: attrs}, factories, agents, logger)
		c.Prepare(reg)

		if t := c.LaunchTarget(); t != "" && target == "" {
			target = t
		}

		for _, f := range c.Failures() {
			fmt.Fprintf(out, "warning: %s: %v\n", path, f)
		}
	}

	fmt.Fprintf(out, "configs: %s\n", strings.Join(reg.DrainConfigurations(), ","))
	fmt.Fprintf(out, "token providers: %s\n", strings.Join(reg.TokenProviders(), ","))

	if level := reg.CompatibilityLevel(); level != "" {
		fmt.Fprintf(out, "compatibility: %s\n", level)
	}

	fmt.Fprintf(out, "launch target: %s\n", target)

	return nil
}

func readManifest(path string) (launch.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := launch.ReadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}
