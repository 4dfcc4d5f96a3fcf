package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

const sheetName = "Variantes"

var header = []any{"ID", "Título", "SKU", "Opciones", "Precio", "Compare at", "Moneda", "Disponible"}

// WriteVariants escribe un xlsx con una fila por variante.
func WriteVariants(w io.Writer, p *domain.Product, variants []domain.Variant) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	title := ""
	if p != nil {
		title = p.Title
	}
	if err := f.SetSheetRow(sheetName, "A1", &[]any{title}); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A2", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(sheetName, "A1", "H2", bold)
	}

	for i, v := range variants {
		opts := make([]string, 0, len(v.SelectedOptions))
		for _, so := range v.SelectedOptions {
			opts = append(opts, so.Name+": "+so.Value)
		}
		price, _ := v.Price.Amount.Float64()
		var compareAt any
		if v.CompareAtPrice != nil {
			compareAt, _ = v.CompareAtPrice.Amount.Float64()
		}
		available := "no"
		if v.AvailableForSale {
			available = "sí"
		}
		row := []any{v.ID, v.Title, v.SKU, strings.Join(opts, ", "), price, compareAt, v.Price.CurrencyCode, available}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("fila %d: %w", i, err)
		}
	}
	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "D", "D", 30)

	_, err = f.WriteTo(w)
	return err
}
