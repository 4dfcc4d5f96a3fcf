package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
	"github.com/whatupfoo/h2-dev-plus/internal/usecase"
)

func productCmd(e *env) *cobra.Command {
	var options []string

	c := &cobra.Command{
		Use:   "product <handle>",
		Short: "Print the product page payload as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseOptions(options)
			if err != nil {
				return err
			}
			a, err := e.app()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			page, err := a.ProductUC.Page(cmd.Context(), args[0], sel)
			if err != nil {
				return err
			}
			return printPage(os.Stdout, page)
		},
	}

	c.Flags().StringArrayVarP(&options, "option", "o", nil, "selected option as Name=Value (repeatable)")
	return c
}

// parseOptions arma la selección con la misma semántica que el query string.
func parseOptions(raw []string) (domain.Selection, error) {
	parts := make([]string, 0, len(raw))
	for _, o := range raw {
		name, value, ok := strings.Cut(o, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("option %q: expected Name=Value", o)
		}
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}
	return domain.ParseSelection(strings.Join(parts, "&")), nil
}

func printPage(w io.Writer, page *usecase.PageData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"shop":            page.Shop,
		"product":         page.Product,
		"selectedVariant": page.SelectedVariant,
	})
}
