package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/whatupfoo/h2-dev-plus/internal/adapters/repo/postgres"
	"github.com/whatupfoo/h2-dev-plus/internal/config"
)

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:         "migrate",
		Short:       "Create the postgres catalog tables",
		Annotations: map[string]string{backendAnnotation: config.BackendPostgres},
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := e.app()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.Migrate(); err != nil {
				return err
			}
			log.Info().Msg("migraciones aplicadas")
			return nil
		},
	}
}

func seedCmd(e *env) *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:         "seed",
		Short:       "Load a YAML catalog into the postgres backend",
		Annotations: map[string]string{backendAnnotation: config.BackendPostgres},
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			products, err := postgres.ParseCatalog(f)
			if err != nil {
				return errors.Wrapf(err, "catálogo %s", file)
			}

			a, err := e.app()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.Migrate(); err != nil {
				return err
			}
			if err := postgres.Seed(cmd.Context(), a.Products, products); err != nil {
				return err
			}
			log.Info().Int("products", len(products)).Str("file", file).Msg("seed listo")
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "YAML catalog file")
	return c
}

func deleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:         "delete <handle>",
		Short:       "Remove a product and its variants from the postgres backend",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{backendAnnotation: config.BackendPostgres},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.app()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.Products.DeleteByHandle(cmd.Context(), args[0]); err != nil {
				return errors.Wrapf(err, "borrar %s", args[0])
			}
			log.Info().Str("handle", args[0]).Msg("producto borrado")
			return nil
		},
	}
}
