package postgres

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

// catalogFile es el formato yaml del catálogo de ejemplo.
type catalogFile struct {
	Currency string        `yaml:"currency"`
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID              string          `yaml:"id"`
	Handle          string          `yaml:"handle"`
	Title           string          `yaml:"title"`
	Vendor          string          `yaml:"vendor"`
	Description     string          `yaml:"description"`
	DescriptionHTML string          `yaml:"descriptionHtml"`
	Image           *seedImage      `yaml:"image"`
	Options         []domain.Option `yaml:"options"`
	Variants        []seedVariant   `yaml:"variants"`
	Metafields      []seedMetafield `yaml:"metafields"`
}

type seedImage struct {
	URL     string `yaml:"url"`
	AltText string `yaml:"altText"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

type seedVariant struct {
	ID             string            `yaml:"id"`
	Title          string            `yaml:"title"`
	SKU            string            `yaml:"sku"`
	Available      *bool             `yaml:"availableForSale"`
	Price          string            `yaml:"price"`
	CompareAtPrice string            `yaml:"compareAtPrice"`
	UnitPrice      string            `yaml:"unitPrice"`
	Image          *seedImage        `yaml:"image"`
	Options        []seedOptionValue `yaml:"options"`
}

type seedOptionValue struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type seedMetafield struct {
	Namespace string             `yaml:"namespace"`
	Key       string             `yaml:"key"`
	Value     string             `yaml:"value"`
	Type      string             `yaml:"type"`
	Reference *domain.Metaobject `yaml:"reference"`
}

// ParseCatalog lee el yaml del catálogo. Los ids que faltan se derivan del
// handle para que re-seedear sea idempotente.
func ParseCatalog(r io.Reader) ([]domain.Product, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, pkgerrors.Wrap(err, "decode catalog")
	}
	currency := strings.ToUpper(strings.TrimSpace(f.Currency))
	if currency == "" {
		currency = "USD"
	}

	out := make([]domain.Product, 0, len(f.Products))
	for _, sp := range f.Products {
		if strings.TrimSpace(sp.Handle) == "" {
			return nil, fmt.Errorf("producto sin handle: %q", sp.Title)
		}
		p := domain.Product{
			ID:              sp.ID,
			Handle:          sp.Handle,
			Title:           sp.Title,
			Vendor:          sp.Vendor,
			Description:     sp.Description,
			DescriptionHTML: sp.DescriptionHTML,
			Options:         sp.Options,
			FeaturedImage:   sp.Image.toDomain(),
		}
		if p.ID == "" {
			p.ID = "gid://h2/Product/" + stableID(sp.Handle)
		}
		for i, sv := range sp.Variants {
			v, err := sv.toDomain(currency)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "%s variante %d", sp.Handle, i)
			}
			if v.ID == "" {
				v.ID = "gid://h2/ProductVariant/" + stableID(fmt.Sprintf("%s/%d", sp.Handle, i))
			}
			p.Variants = append(p.Variants, v)
		}
		for _, m := range sp.Metafields {
			ns := m.Namespace
			if ns == "" {
				ns = domain.MetafieldNamespace
			}
			p.Metafields = append(p.Metafields, domain.Metafield{Namespace: ns, Key: m.Key, Value: m.Value, Type: m.Type, Reference: m.Reference})
		}
		out = append(out, p)
	}
	return out, nil
}

// Seed guarda todos los productos del catálogo.
func Seed(ctx context.Context, repo *ProductRepo, products []domain.Product) error {
	for i := range products {
		if err := repo.Save(ctx, &products[i]); err != nil {
			return pkgerrors.Wrapf(err, "seed %s", products[i].Handle)
		}
		log.Info().Str("handle", products[i].Handle).Int("variants", len(products[i].Variants)).Msg("producto cargado")
	}
	return nil
}

func stableID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func (s *seedImage) toDomain() *domain.Image {
	if s == nil || s.URL == "" {
		return nil
	}
	return &domain.Image{URL: s.URL, AltText: s.AltText, Width: s.Width, Height: s.Height}
}

func (sv seedVariant) toDomain(currency string) (domain.Variant, error) {
	price, err := decimal.NewFromString(sv.Price)
	if err != nil {
		return domain.Variant{}, pkgerrors.Wrapf(err, "precio %q", sv.Price)
	}
	v := domain.Variant{
		ID:               sv.ID,
		Title:            sv.Title,
		SKU:              sv.SKU,
		AvailableForSale: sv.Available == nil || *sv.Available,
		Price:            domain.Money{Amount: price, CurrencyCode: currency},
		Image:            sv.Image.toDomain(),
	}
	if sv.CompareAtPrice != "" {
		cmp, err := decimal.NewFromString(sv.CompareAtPrice)
		if err != nil {
			return domain.Variant{}, pkgerrors.Wrapf(err, "compareAtPrice %q", sv.CompareAtPrice)
		}
		v.CompareAtPrice = &domain.Money{Amount: cmp, CurrencyCode: currency}
	}
	if sv.UnitPrice != "" {
		up, err := decimal.NewFromString(sv.UnitPrice)
		if err != nil {
			return domain.Variant{}, pkgerrors.Wrapf(err, "unitPrice %q", sv.UnitPrice)
		}
		v.UnitPrice = &domain.Money{Amount: up, CurrencyCode: currency}
	}
	titles := make([]string, 0, len(sv.Options))
	for _, o := range sv.Options {
		v.SelectedOptions = append(v.SelectedOptions, domain.SelectedOption{Name: o.Name, Value: o.Value})
		titles = append(titles, o.Value)
	}
	if v.Title == "" {
		v.Title = strings.Join(titles, " / ")
	}
	if v.Title == "" {
		v.Title = "Default Title"
	}
	return v, nil
}
