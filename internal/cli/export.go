package cli

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/whatupfoo/h2-dev-plus/internal/adapters/export"
)

func exportVariantsCmd(e *env) *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "export-variants <handle>",
		Short: "Write every variant of a product to an XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.app()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			p, variants, err := a.ProductUC.Variants(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = p.Handle + "-variants.xlsx"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteVariants(f, p, variants); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Info().Str("file", out).Int("variants", len(variants)).Msg("export listo")
			return nil
		},
	}

	c.Flags().StringVarP(&out, "output", "o", "", "output file (default <handle>-variants.xlsx)")
	return c
}
