package usecase

import (
	"context"
	"errors"
	"html/template"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/whatupfoo/h2-dev-plus/internal/adapters/sanitize"
	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

type ProductUC struct {
	Storefront domain.Storefront
}

// PageData es todo lo que necesita el template de producto.
type PageData struct {
	Shop               domain.Shop
	Product            *domain.Product
	SelectedVariant    *domain.Variant
	Orderable          bool
	Image              *domain.Image
	Options            []OptionView
	DescriptionHTML    template.HTML
	Summary            string // texto plano, para <meta name="description">
	AdditionalFeatures *string
	Manufacturer       *ManufacturerView
}

// ManufacturerView: cada línea es opcional por separado.
type ManufacturerView struct {
	Name        *string
	Description *string
}

type OptionView struct {
	Name   string
	Values []OptionValueView
}

type OptionValueView struct {
	Name     string
	Selected bool
	URL      string
}

func (uc *ProductUC) Page(ctx context.Context, handle string, sel domain.Selection) (*PageData, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, domain.ErrInvalidHandle
	}
	log.Debug().Str("handle", handle).Interface("selectedOptions", sel).Msg("product request")

	page, err := uc.Storefront.ProductByHandle(ctx, handle, sel)
	if err != nil {
		return nil, err
	}
	if page == nil || page.Product == nil || page.Product.ID == "" {
		return nil, domain.ErrNotFound
	}
	p := page.Product

	data := &PageData{Shop: page.Shop, Product: p}
	v, err := domain.ResolveVariant(p)
	switch {
	case err == nil:
		data.SelectedVariant = v
		data.Orderable = true
	case errors.Is(err, domain.ErrNotOrderable):
		log.Warn().Str("handle", handle).Msg("producto sin variantes")
	default:
		return nil, err
	}

	data.Image = p.FeaturedImage
	if v != nil && v.Image != nil {
		data.Image = v.Image
	}
	data.Options = BuildOptionViews(p, v, "/products/"+p.Handle)

	data.Summary = strings.Join(strings.Fields(p.Description), " ")
	if data.Summary == "" {
		data.Summary = sanitize.PlainText(p.DescriptionHTML)
	}
	desc := sanitize.DescriptionHTML(p.DescriptionHTML)
	if desc == "" && data.Summary != "" {
		desc = template.HTMLEscapeString(data.Summary)
	}
	data.DescriptionHTML = template.HTML(desc)

	if mf, ok := p.Metafield(domain.MetafieldAdditionalFeature); ok {
		val := mf.Value
		data.AdditionalFeatures = &val
	}
	if mf, ok := p.Metafield(domain.MetafieldManufacturerInfo); ok && mf.Reference != nil {
		m := &ManufacturerView{}
		if name, ok := mf.Field("name"); ok {
			m.Name = &name
		}
		if d, ok := mf.Field("description"); ok {
			m.Description = &d
		}
		data.Manufacturer = m
	}
	return data, nil
}

// Variants devuelve el producto y todas sus variantes (exportación).
func (uc *ProductUC) Variants(ctx context.Context, handle string) (*domain.Product, []domain.Variant, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, nil, domain.ErrInvalidHandle
	}
	page, err := uc.Storefront.ProductByHandle(ctx, handle, nil)
	if err != nil {
		return nil, nil, err
	}
	if page == nil || page.Product == nil || page.Product.ID == "" {
		return nil, nil, domain.ErrNotFound
	}
	variants, err := uc.Storefront.ProductVariants(ctx, handle)
	if err != nil {
		return nil, nil, err
	}
	return page.Product, variants, nil
}

// BuildOptionViews arma los links de cada valor de opción partiendo de las
// opciones de la variante actual.
func BuildOptionViews(p *domain.Product, current *domain.Variant, basePath string) []OptionView {
	base := domain.Selection{}
	if current != nil {
		base = append(base, current.SelectedOptions...)
	}
	views := make([]OptionView, 0, len(p.Options))
	for _, o := range p.Options {
		// una opción con un único valor no aporta nada en la UI
		if len(o.Values) <= 1 {
			continue
		}
		ov := OptionView{Name: o.Name, Values: make([]OptionValueView, 0, len(o.Values))}
		cur, _ := base.Get(o.Name)
		for _, val := range o.Values {
			ov.Values = append(ov.Values, OptionValueView{
				Name:     val,
				Selected: val == cur,
				URL:      basePath + "?" + base.With(o.Name, val).Encode(),
			})
		}
		views = append(views, ov)
	}
	return views
}
