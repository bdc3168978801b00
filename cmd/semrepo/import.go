package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semrepo/config"
	"github.com/c360studio/semrepo/repository"
)

// importer is implemented by the persistent backends.
type importer interface {
	Import(ctx context.Context, recs []*repository.Record) error
}

func importCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Load a YAML seed document into the configured kv or sqlite repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Repository.Backend == config.BackendMemory {
				return fmt.Errorf("import needs a persistent backend (repository.backend is %s)", a.cfg.Repository.Backend)
			}
			target, ok := a.session.(importer)
			if !ok {
				return fmt.Errorf("backend %s does not support import", a.cfg.Repository.Backend)
			}

			seed, err := repository.LoadYAMLFile(args[0])
			if err != nil {
				return err
			}
			recs := seed.Records()
			if err := target.Import(ctx, recs); err != nil {
				return fmt.Errorf("import: %w", err)
			}

			a.logger.Info("Import complete",
				"nodes", len(recs),
				"backend", a.cfg.Repository.Backend)
			return nil
		},
	}
}
