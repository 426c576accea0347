package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mixin-ap/internal/targets"
)

func (a *app) targetsCmd() *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "targets <class>",
		Short: "List the mixins targeting a class",
		Long: `Prints the mixins recorded against a target class, one per line, either
from target association files or from the configured session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmap, closeStore, err := a.openTargets(files)
			if err != nil {
				return err
			}
			defer closeStore()

			for _, mixin := range tmap.MixinsTargeting(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), mixin)
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&files, "file", nil, "target association files to read instead of the session")

	return cmd
}

// openTargets reads files into a detached map, or opens the configured
// session when no files are given.
func (a *app) openTargets(files []string) (*targets.Map, func(), error) {
	if len(files) > 0 {
		tmap, err := targets.Create("", nil, nil)
		if err != nil {
			return nil, nil, err
		}

		for _, f := range files {
			if err := tmap.ReadImportsFile(f); err != nil {
				return nil, nil, err
			}
		}

		return tmap, func() {}, nil
	}

	if a.cfg.Session == "" {
		return nil, nil, errors.New("either --file or a session is required")
	}

	store, closer, err := a.cfg.OpenStore(a.logger.Slog())
	if err != nil {
		return nil, nil, err
	}

	tmap, err := targets.Create(a.cfg.Session, store, nil)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	return tmap, func() { closer.Close() }, nil
}
