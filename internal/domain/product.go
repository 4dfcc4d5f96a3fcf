package domain

import (
	"github.com/shopspring/decimal"
)

type Shop struct {
	PrimaryDomainURL string `json:"primaryDomainUrl"`
}

type Product struct {
	ID              string      `json:"id"`
	Handle          string      `json:"handle"`
	Title           string      `json:"title"`
	Vendor          string      `json:"vendor"`
	Description     string      `json:"description"`
	DescriptionHTML string      `json:"descriptionHtml"`
	FeaturedImage   *Image      `json:"featuredImage,omitempty"`
	Options         []Option    `json:"options"`
	SelectedVariant *Variant    `json:"selectedVariant,omitempty"` // match del backend para la selección
	Variants        []Variant   `json:"variants"`
	Metafields      []Metafield `json:"metafields"`
}

type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	Price            Money            `json:"price"`
	CompareAtPrice   *Money           `json:"compareAtPrice,omitempty"`
	SKU              string           `json:"sku"`
	Image            *Image           `json:"image,omitempty"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	UnitPrice        *Money           `json:"unitPrice,omitempty"`
	ProductTitle     string           `json:"productTitle,omitempty"`
	ProductHandle    string           `json:"productHandle,omitempty"`
}

// OptionValue devuelve el valor de la opción name para la variante.
func (v *Variant) OptionValue(name string) (string, bool) {
	for _, so := range v.SelectedOptions {
		if so.Name == name {
			return so.Value, true
		}
	}
	return "", false
}

// OnSale indica si hay un compare-at mayor al precio actual.
func (v *Variant) OnSale() bool {
	if v.CompareAtPrice == nil {
		return false
	}
	return v.CompareAtPrice.Amount.GreaterThan(v.Price.Amount)
}

type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

type Image struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// ProductPage es lo que devuelve el backend para una vista de producto.
type ProductPage struct {
	Shop    Shop     `json:"shop"`
	Product *Product `json:"product"`
}

// OptionNames devuelve los nombres de opciones del producto. Si el backend no
// informó opciones se derivan de las variantes, respetando el orden de aparición.
func (p *Product) OptionNames() []string {
	names := make([]string, 0, len(p.Options))
	seen := map[string]struct{}{}
	for _, o := range p.Options {
		if _, ok := seen[o.Name]; ok {
			continue
		}
		seen[o.Name] = struct{}{}
		names = append(names, o.Name)
	}
	if len(names) > 0 {
		return names
	}
	for _, v := range p.Variants {
		for _, so := range v.SelectedOptions {
			if _, ok := seen[so.Name]; ok {
				continue
			}
			seen[so.Name] = struct{}{}
			names = append(names, so.Name)
		}
	}
	return names
}
